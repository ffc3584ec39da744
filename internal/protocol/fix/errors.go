package fix

import (
	"errors"
	"fmt"
)

// Error kinds for message and codec operations. Callers match them with
// errors.Is; the wrapped form carries the offending tag.
var (
	// ErrTagNotFound is returned when a requested tag is absent.
	ErrTagNotFound = errors.New("tag not found")

	// ErrDuplicatedTag is returned when a scalar tag or group is set twice
	// without an explicit replace.
	ErrDuplicatedTag = errors.New("tag already exists")

	// ErrRepeatingTag is returned when reading a tag the decoder marked
	// ambiguous (repeated at top level without a matching group in the
	// dictionary, or a malformed message).
	ErrRepeatingTag = errors.New("tag was repeated, possible undefined repeating group or malformed fix message")

	// ErrUnmappedGroup is returned when group access is attempted on a tag
	// that holds a scalar value.
	ErrUnmappedGroup = errors.New("tag exists but is not a repeating group")

	// ErrInvalidTag is returned when a tag number is not positive, or when a
	// nil group is added.
	ErrInvalidTag = errors.New("tags must be integers")

	// ErrEncoding is returned when a message violates pre-send
	// requirements, such as a replayed message without MsgSeqNum.
	ErrEncoding = errors.New("encoding error")

	// Soft decode failures. The decoder consumes what it can and reports
	// why no message was produced; callers treat these as "wait for more
	// bytes" or "frame dropped" depending on the kind.
	ErrNoFixHeader   = errors.New("no fix header in buffer")
	ErrIncomplete    = errors.New("incomplete message")
	ErrBadChecksum   = errors.New("invalid checksum")
	ErrGarbledFrame  = errors.New("garbled frame")
)

func tagErr(kind error, tag Tag) error {
	return fmt.Errorf("%w: tag=%d", kind, tag)
}
