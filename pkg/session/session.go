// Package session implements the FIX session layer: sequence-number state,
// the connection state machine, heartbeat/liveness timers and resend
// handling, for both initiator and acceptor roles.
package session

import (
	"fmt"

	"github.com/marmos91/fixlink/internal/protocol/fix"
	"github.com/marmos91/fixlink/pkg/journal"
)

// Session is the sequence-number state of one comp-id pair. It owns no I/O;
// a Connection drives it while connected and the journal recovers it across
// restarts.
type Session struct {
	// Key is the journal's opaque session key.
	Key int64

	SenderCompID string
	TargetCompID string

	// NextNumOut is the sequence number the next outbound frame will
	// carry. Starts at 1.
	NextNumOut int

	// NextNumIn is the expected sequence number of the next inbound
	// frame. Starts at 1.
	NextNumIn int
}

// NewSession returns a fresh session with both counters at 1.
func NewSession(key int64, targetCompID, senderCompID string) *Session {
	return &Session{
		Key:          key,
		SenderCompID: senderCompID,
		TargetCompID: targetCompID,
		NextNumOut:   1,
		NextNumIn:    1,
	}
}

// FromRecord rebuilds a session from its journal registry row: both
// counters resume one past the last journaled sequence number.
func FromRecord(rec journal.SessionRecord) *Session {
	return &Session{
		Key:          rec.Key,
		SenderCompID: rec.SenderCompID,
		TargetCompID: rec.TargetCompID,
		NextNumOut:   rec.LastNumOut + 1,
		NextNumIn:    rec.LastNumIn + 1,
	}
}

func (s *Session) String() string {
	return fmt.Sprintf("Session(key=%d, target=%s sender=%s InSN=%d OutSN=%d)",
		s.Key, s.TargetCompID, s.SenderCompID, s.NextNumIn, s.NextNumOut)
}

// Equal reports whether two sessions address the same comp-id pair.
func (s *Session) Equal(o *Session) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.TargetCompID == o.TargetCompID && s.SenderCompID == o.SenderCompID
}

// CompIDs implements fix.Sequencer.
func (s *Session) CompIDs() (sender, target string) {
	return s.SenderCompID, s.TargetCompID
}

// AllocateNextNumOut implements fix.Sequencer: it returns the next outbound
// sequence number and advances the counter.
func (s *Session) AllocateNextNumOut() int {
	n := s.NextNumOut
	s.NextNumOut++
	return n
}

// ValidatePeer checks an inbound frame's comp ids against the session.
// Comp ids are mirrored on the wire: the peer's sender is our target.
func (s *Session) ValidatePeer(msgSender, msgTarget string) bool {
	return msgSender == s.TargetCompID && msgTarget == s.SenderCompID
}

// SetNextNumIn advances the inbound counter for msg.
//
// For a SequenceReset (either variant) the counter jumps to NewSeqNo and the
// result is NewSeqNo-1. For any other message the result is the accepted
// sequence number. A result of 0 means the relevant tag was missing; -1
// means the frame is out of sequence. The counter only moves on success.
func (s *Session) SetNextNumIn(msg *fix.Message) int {
	if msg.Type == fix.MsgTypeSequenceReset {
		newSeqNo, err := msg.GetInt(fix.TagNewSeqNo)
		if err != nil {
			return 0
		}
		s.NextNumIn = newSeqNo
		return newSeqNo - 1
	}

	seqNum, err := msg.GetInt(fix.TagMsgSeqNum)
	if err != nil {
		return 0
	}
	if seqNum != s.NextNumIn {
		return -1
	}
	s.NextNumIn = seqNum + 1
	return seqNum
}

// Reset rewinds both counters to the start of a sequence day.
func (s *Session) Reset() {
	s.NextNumOut = 1
	s.NextNumIn = 1
}
