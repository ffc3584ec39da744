package fix

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sequencer supplies the comp ids and outbound sequence allocation the codec
// needs to build a frame header. *session.Session implements it.
type Sequencer interface {
	CompIDs() (sender, target string)
	AllocateNextNumOut() int
}

// timeNow is stubbed in tests to produce deterministic SendingTime values.
var timeNow = func() time.Time { return time.Now().UTC() }

// SendingTimeFormat is the UTC millisecond layout of tag 52.
const SendingTimeFormat = "20060102-15:04:05.000"

// headerManaged are the envelope tags the codec owns. They are skipped when
// walking user-set tags so a decoded or replayed message re-encodes cleanly.
var headerManaged = map[Tag]struct{}{
	TagBeginString:  {},
	TagBodyLength:   {},
	TagCheckSum:     {},
	TagMsgType:      {},
	TagMsgSeqNum:    {},
	TagSenderCompID: {},
	TagTargetCompID: {},
	TagSendingTime:  {},
}

// Encode serialises msg into a complete FIX 4.4 frame for the given session.
//
// The sequence number is freshly allocated unless the message is a replayed
// frame (PossDupFlag=Y) or a gap fill (SequenceReset with GapFillFlag=Y), in
// which case tag 34 must already be set by the caller.
func Encode(msg *Message, sess Sequencer) ([]byte, error) {
	return encode(msg, sess, false)
}

// EncodeRawSeq serialises msg using the MsgSeqNum already present on the
// message instead of allocating one. Used when replaying journaled frames
// and by test harnesses injecting explicit sequence numbers.
func EncodeRawSeq(msg *Message, sess Sequencer) ([]byte, error) {
	return encode(msg, sess, true)
}

func encode(msg *Message, sess Sequencer, rawSeq bool) ([]byte, error) {
	sender, target := sess.CompIDs()

	seqNum, err := encodeSeqNum(msg, sess, rawSeq)
	if err != nil {
		return nil, err
	}

	var body []string
	body = append(body,
		TagSenderCompID.String()+"="+sender,
		TagTargetCompID.String()+"="+target,
		TagMsgSeqNum.String()+"="+seqNum,
		TagSendingTime.String()+"="+timeNow().Format(SendingTimeFormat),
	)

	for _, f := range msg.fields {
		if _, managed := headerManaged[f.tag]; managed {
			continue
		}
		body, err = appendField(body, &msg.Container, f.tag)
		if err != nil {
			return nil, err
		}
	}

	soh := string(SOH)
	bodyStr := strings.Join(body, soh) + soh
	msgTypeTok := TagMsgType.String() + "=" + string(msg.Type)

	header := strings.Join([]string{
		TagBeginString.String() + "=" + BeginString,
		TagBodyLength.String() + "=" + strconv.Itoa(len(bodyStr)+len(msgTypeTok)+1),
		msgTypeTok,
	}, soh)

	frame := header + soh + bodyStr

	var sum int
	for i := 0; i < len(frame); i++ {
		sum += int(frame[i])
	}
	frame += fmt.Sprintf("%s=%03d%s", TagCheckSum, sum%256, soh)

	return []byte(frame), nil
}

func encodeSeqNum(msg *Message, sess Sequencer, rawSeq bool) (string, error) {
	gapFill, _ := msg.Get(TagGapFillFlag)
	possDup, _ := msg.Get(TagPossDupFlag)

	switch {
	case msg.Type == MsgTypeSequenceReset && gapFill == "Y":
		seq, err := msg.Get(TagMsgSeqNum)
		if err != nil {
			return "", fmt.Errorf("%w: SequenceReset with GapFillFlag=Y must have MsgSeqNum already populated", ErrEncoding)
		}
		return seq, nil
	case possDup == "Y":
		seq, err := msg.Get(TagMsgSeqNum)
		if err != nil {
			return "", fmt.Errorf("%w: PossDupFlag=Y but no previous MsgSeqNum", ErrEncoding)
		}
		return seq, nil
	case rawSeq:
		seq, err := msg.Get(TagMsgSeqNum)
		if err != nil {
			return "", fmt.Errorf("%w: raw sequence requested but MsgSeqNum not set", ErrEncoding)
		}
		return seq, nil
	default:
		return strconv.Itoa(sess.AllocateNextNumOut()), nil
	}
}

// appendField renders one container slot, expanding repeating groups as
// "parent=count" followed by each instance's fields in order.
func appendField(body []string, c *Container, tag Tag) ([]string, error) {
	i, ok := c.index[tag]
	if !ok {
		return body, tagErr(ErrTagNotFound, tag)
	}
	f := c.fields[i]
	switch f.kind {
	case kindRepeatErr:
		return body, fmt.Errorf("%w: tag=%d is marked ambiguous", ErrEncoding, tag)
	case kindScalar:
		return append(body, tag.String()+"="+f.value), nil
	default:
		body = append(body, tag.String()+"="+strconv.Itoa(len(f.groups)))
		for _, g := range f.groups {
			var err error
			for _, gf := range g.fields {
				body, err = appendField(body, g, gf.tag)
				if err != nil {
					return body, err
				}
			}
		}
		return body, nil
	}
}

// fixHeaderPrefix locates frame starts during resynchronisation.
var fixHeaderPrefix = []byte("8=FIX.")

// checksumTrailerLen is len("10=NNN" + SOH).
const checksumTrailerLen = 7

// Decode extracts the first complete frame from buf.
//
// It returns the decoded message, the number of bytes consumed (including
// any leading garbage), and the raw frame bytes. When no message could be
// produced the message and raw frame are nil and the error reports why:
//
//   - ErrNoFixHeader: no frame start anywhere; the whole buffer is consumed.
//   - ErrIncomplete: a frame has started but not fully arrived; only leading
//     garbage is consumed, the caller should read more bytes and retry.
//   - ErrBadChecksum, ErrGarbledFrame: the frame is consumed and dropped.
//
// Callers repeatedly invoke Decode over an accumulating receive buffer and
// trim the consumed prefix after every call.
func Decode(buf []byte) (*Message, int, []byte, error) {
	start := bytes.Index(buf, fixHeaderPrefix)
	if start == -1 {
		return nil, len(buf), nil, ErrNoFixHeader
	}
	work := buf[start:]

	// At a minimum BeginString, BodyLength and CheckSum must be present.
	tokens := bytes.Split(work, []byte{SOH})
	if len(tokens) < 4 { // 3 complete tokens + remainder
		return nil, start, nil, ErrIncomplete
	}

	bodyLen, err := parseBodyLength(tokens[1])
	if err != nil {
		// Drop the bogus header token so a later frame can resync.
		return nil, start + len(tokens[0]) + 1, nil, err
	}

	frameLen := len(tokens[0]) + 1 + len(tokens[1]) + 1 + bodyLen + checksumTrailerLen
	if frameLen > len(work) {
		return nil, start, nil, ErrIncomplete
	}

	frame := work[:frameLen]
	consumed := start + frameLen

	if err := verifyChecksum(frame); err != nil {
		return nil, consumed, nil, err
	}

	msg, err := parseFrame(frame)
	if err != nil {
		return nil, consumed, nil, err
	}
	return msg, consumed, frame, nil
}

func parseBodyLength(tok []byte) (int, error) {
	tag, value, ok := bytes.Cut(tok, []byte{'='})
	if !ok || string(tag) != TagBodyLength.String() {
		return 0, fmt.Errorf("%w: BodyLength(9) missing or not 2nd field", ErrGarbledFrame)
	}
	n, err := strconv.Atoi(string(value))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad BodyLength %q", ErrGarbledFrame, value)
	}
	return n, nil
}

func verifyChecksum(frame []byte) error {
	trailer := frame[len(frame)-checksumTrailerLen:]
	if !bytes.HasPrefix(trailer, []byte("10=")) || trailer[len(trailer)-1] != SOH {
		return fmt.Errorf("%w: checksum tag missing or misplaced", ErrGarbledFrame)
	}
	want, err := strconv.Atoi(string(trailer[3:6]))
	if err != nil {
		return fmt.Errorf("%w: bad checksum value", ErrGarbledFrame)
	}

	var sum int
	for _, b := range frame[:len(frame)-checksumTrailerLen] {
		sum += int(b)
	}
	if sum%256 != want {
		return fmt.Errorf("%w: got %03d, frame declares %03d", ErrBadChecksum, sum%256, want)
	}
	return nil
}

// rgContext is one open repeating-group instance during decode.
type rgContext struct {
	tag      Tag
	children []Tag
	cont     *Container
	parent   *rgContext // nil when the parent is the message root
}

func (ctx *rgContext) accepts(tag Tag) bool {
	for _, t := range ctx.children {
		if t == tag {
			return true
		}
	}
	return false
}

// parseFrame walks the SOH-separated tokens reconstructing nested repeating
// groups. A known group tag opens a context; a tag outside the open
// context's child list closes contexts from the top until it fits; a child
// tag repeated within one instance closes that instance and starts the next.
func parseFrame(frame []byte) (*Message, error) {
	msg := NewMessage(MsgTypeUnknown)

	var current *rgContext

	closeTop := func() {
		target := &msg.Container
		if current.parent != nil {
			target = current.parent.cont
		}
		_ = target.AddGroup(current.tag, current.cont, -1)
		current = current.parent
	}

	tokens := bytes.Split(frame, []byte{SOH})
	tokens = tokens[:len(tokens)-1] // trailing SOH leaves an empty tail

	for _, tok := range tokens {
		tagRaw, value, ok := bytes.Cut(tok, []byte{'='})
		if !ok {
			return nil, fmt.Errorf("%w: token %q has no separator", ErrGarbledFrame, tok)
		}
		tagNum, err := strconv.Atoi(string(tagRaw))
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric tag %q", ErrGarbledFrame, tagRaw)
		}
		tag := Tag(tagNum)
		val := string(value)

		if tag == TagMsgType {
			msg.Type = MsgType(val)
		}

		switch {
		case IsGroupTag(tag):
			// Start of a repeating group; the declared count is advisory
			// and dropped, instances are delimited by the child tags.
			for current != nil && !current.accepts(tag) {
				closeTop()
			}
			current = &rgContext{
				tag:      tag,
				children: GroupChildren(tag),
				cont:     NewContainer(),
				parent:   current,
			}

		case current != nil:
			for current != nil && !current.accepts(tag) {
				closeTop()
			}
			if current == nil {
				setRootTag(msg, tag, val)
				continue
			}
			if current.cont.Contains(tag) {
				// Same child twice in one instance: close it, open the next.
				parent := current.parent
				children := current.children
				gtag := current.tag
				closeTop()
				current = &rgContext{tag: gtag, children: children, cont: NewContainer(), parent: parent}
			}
			_ = current.cont.Set(tag, val)

		default:
			setRootTag(msg, tag, val)
		}
	}

	return msg, nil
}

func setRootTag(msg *Message, tag Tag, val string) {
	if msg.Contains(tag) {
		// Repeated top-level tag with no matching group in the dictionary:
		// record the ambiguity, reads of this tag will fail.
		msg.markRepeated(tag)
		return
	}
	_ = msg.Set(tag, val)
}
