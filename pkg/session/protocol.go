package session

import (
	"github.com/marmos91/fixlink/internal/protocol/fix"
)

// Builders for the administrative messages the engine emits itself.

// LogonMsg builds a Logon with EncryptMethod=0 and the given heartbeat
// interval in seconds.
func LogonMsg(heartBtInt int) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeLogon)
	_ = m.Set(fix.TagEncryptMethod, 0)
	_ = m.Set(fix.TagHeartBtInt, heartBtInt)
	return m
}

// LogoutMsg builds a Logout, optionally carrying diagnostic text.
func LogoutMsg(text string) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeLogout)
	if text != "" {
		_ = m.Set(fix.TagText, text)
	}
	return m
}

// HeartbeatMsg builds a Heartbeat, echoing testReqID when answering a
// TestRequest.
func HeartbeatMsg(testReqID string) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeHeartbeat)
	if testReqID != "" {
		_ = m.Set(fix.TagTestReqID, testReqID)
	}
	return m
}

// TestRequestMsg builds a TestRequest with the given id.
func TestRequestMsg(testReqID string) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeTestRequest)
	_ = m.Set(fix.TagTestReqID, testReqID)
	return m
}

// ResendRequestMsg asks the peer to replay beginSeqNo..endSeqNo; endSeqNo 0
// means "through the latest sent".
func ResendRequestMsg(beginSeqNo, endSeqNo int) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeResendRequest)
	_ = m.Set(fix.TagBeginSeqNo, beginSeqNo)
	_ = m.Set(fix.TagEndSeqNo, endSeqNo)
	return m
}

// GapFillMsg builds the SequenceReset-GapFill replacing the administrative
// frames msgSeqNum..newSeqNo-1 during a replay.
func GapFillMsg(msgSeqNum, newSeqNo int) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeSequenceReset)
	_ = m.Set(fix.TagGapFillFlag, "Y")
	_ = m.Set(fix.TagMsgSeqNum, msgSeqNum)
	_ = m.Set(fix.TagNewSeqNo, newSeqNo)
	return m
}
