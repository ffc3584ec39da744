package logger

// Standard field keys for structured logging. Use these consistently across
// all log statements so session logs can be aggregated and queried.
const (
	// Session identity
	KeySession      = "session"       // "SENDER->TARGET" pair
	KeySenderCompID = "sender_comp_id"
	KeyTargetCompID = "target_comp_id"
	KeyConnectionID = "connection_id" // uuid assigned per TCP connection
	KeyRole         = "role"          // initiator or acceptor

	// Connection lifecycle
	KeyState      = "state"       // connection state name
	KeyRemoteAddr = "remote_addr" // peer TCP endpoint

	// Message fields
	KeyMsgType   = "msg_type"    // tag 35
	KeySeqNum    = "seq_num"     // tag 34
	KeyNextNumIn = "next_num_in" // expected inbound sequence
	KeyBeginSeq  = "begin_seq"   // tag 7 on resend requests
	KeyEndSeq    = "end_seq"     // tag 16 on resend requests
	KeyNewSeqNo  = "new_seq_no"  // tag 36 on sequence resets

	// Journal
	KeyDirection  = "direction" // inbound or outbound
	KeyJournal    = "journal"   // backend path or ":memory:"
	KeyFrameBytes = "frame_bytes"

	// Errors
	KeyError = "error"
)
