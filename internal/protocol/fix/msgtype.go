package fix

// MsgType is the FIX message-type code carried in tag 35.
type MsgType string

const (
	MsgTypeHeartbeat       MsgType = "0"
	MsgTypeTestRequest     MsgType = "1"
	MsgTypeResendRequest   MsgType = "2"
	MsgTypeReject          MsgType = "3"
	MsgTypeSequenceReset   MsgType = "4"
	MsgTypeLogout          MsgType = "5"
	MsgTypeExecutionReport MsgType = "8"
	MsgTypeOrderCancelReject MsgType = "9"
	MsgTypeLogon           MsgType = "A"
	MsgTypeNewOrderSingle  MsgType = "D"
	MsgTypeOrderCancelRequest MsgType = "F"
	MsgTypeOrderCancelReplaceRequest MsgType = "G"
	MsgTypeXMLnonFIX       MsgType = "n"

	// MsgTypeUnknown is the placeholder type of a message under decode
	// before tag 35 has been seen.
	MsgTypeUnknown MsgType = "UNKNOWN"
)

func (m MsgType) String() string {
	return string(m)
}

// sessionMessageTypes is the set of administrative (session-level) message
// types the engine handles itself rather than delivering to the application.
var sessionMessageTypes = map[MsgType]struct{}{
	MsgTypeHeartbeat:     {},
	MsgTypeTestRequest:   {},
	MsgTypeResendRequest: {},
	MsgTypeReject:        {},
	MsgTypeSequenceReset: {},
	MsgTypeLogout:        {},
	MsgTypeLogon:         {},
	MsgTypeXMLnonFIX:     {},
}

// IsSessionMessage reports whether t is an administrative message type.
func IsSessionMessage(t MsgType) bool {
	_, ok := sessionMessageTypes[t]
	return ok
}
