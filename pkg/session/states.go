package session

// ConnectionState is the lifecycle state of one FIX connection.
type ConnectionState int

const (
	// StateDisconnectedNoConnToday: initial state, never connected today.
	StateDisconnectedNoConnToday ConnectionState = iota
	// StateAwaitingConnection: acceptor is listening.
	StateAwaitingConnection
	// StateInitiateConnection: initiator is dialling.
	StateInitiateConnection
	// StateNetworkConnEstablished: TCP is up, no Logon exchanged yet.
	StateNetworkConnEstablished
	// StateLogonInitialSent: initiator sent Logon, awaiting the reply.
	StateLogonInitialSent
	// StateLogonResponse: acceptor received Logon and is replying.
	StateLogonResponse
	// StateActive: Logon exchanged, session messages flow.
	StateActive
	// StateResendReqHandling: replaying or awaiting a sequence gap.
	StateResendReqHandling
	// StateDisconnectedBrokenConn: abnormal disconnect.
	StateDisconnectedBrokenConn
	// StateDisconnectedWConnToday: clean disconnect, may reconnect.
	StateDisconnectedWConnToday
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnectedNoConnToday:
		return "disconnected_noconn_today"
	case StateAwaitingConnection:
		return "awaiting_connection"
	case StateInitiateConnection:
		return "initiate_connection"
	case StateNetworkConnEstablished:
		return "network_conn_established"
	case StateLogonInitialSent:
		return "logon_initial_sent"
	case StateLogonResponse:
		return "logon_response"
	case StateActive:
		return "active"
	case StateResendReqHandling:
		return "resendreq_handling"
	case StateDisconnectedBrokenConn:
		return "disconnected_broken_conn"
	case StateDisconnectedWConnToday:
		return "disconnected_wconn_today"
	default:
		return "unknown"
	}
}

// IsDisconnected reports whether the state is any of the disconnected ones.
func (s ConnectionState) IsDisconnected() bool {
	switch s {
	case StateDisconnectedNoConnToday, StateDisconnectedBrokenConn, StateDisconnectedWConnToday:
		return true
	}
	return false
}

// Role distinguishes the dialling side from the listening side.
type Role int

const (
	RoleUnknown Role = iota
	RoleInitiator
	RoleAcceptor
)

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleAcceptor:
		return "acceptor"
	default:
		return "unknown"
	}
}
