package fix

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSession is a minimal Sequencer for codec tests.
type stubSession struct {
	sender, target string
	next           int
}

func (s *stubSession) CompIDs() (string, string) { return s.sender, s.target }

func (s *stubSession) AllocateNextNumOut() int {
	if s.next == 0 {
		s.next = 1
	}
	n := s.next
	s.next++
	return n
}

func frozenClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

func TestEncode(t *testing.T) {
	frozenClock(t, time.Date(2015, 6, 19, 11, 8, 54, 0, time.UTC))

	msg := NewMessage(MsgTypeNewOrderSingle)
	require.NoError(t, msg.Set(TagPrice, "123.45"))
	require.NoError(t, msg.Set(TagOrderQty, 9876))
	require.NoError(t, msg.Set(TagSymbol, "VOD.L"))
	require.NoError(t, msg.Set(TagSecurityID, "GB00BH4HKS39"))
	require.NoError(t, msg.Set(TagSecurityIDSource, "4"))
	require.NoError(t, msg.Set(TagAccount, "TEST"))
	require.NoError(t, msg.Set(TagHandlInst, "1"))
	require.NoError(t, msg.Set(TagExDestination, "XLON"))
	require.NoError(t, msg.Set(TagSide, 1))
	require.NoError(t, msg.Set(TagClOrdID, "abcdefg"))
	require.NoError(t, msg.Set(TagCurrency, "GBP"))

	require.NoError(t, msg.AddGroup(444, NewGroup(Tag(611), "aaa", Tag(612), "bbb", Tag(613), "ccc"), 0))
	require.NoError(t, msg.AddGroup(444, NewGroup(Tag(611), "zzz", Tag(612), "yyy", Tag(613), "xxx"), 1))

	raw, err := Encode(msg, &stubSession{sender: "sender", target: "target"})
	require.NoError(t, err)

	expected := "8=FIX.4.4\x019=201\x0135=D\x0149=sender\x0156=target\x0134=1\x0152=20150619-11:08:54.000\x01" +
		"44=123.45\x0138=9876\x0155=VOD.L\x0148=GB00BH4HKS39\x0122=4\x011=TEST\x0121=1\x01100=XLON\x01" +
		"54=1\x0111=abcdefg\x0115=GBP\x01444=2\x01611=aaa\x01612=bbb\x01613=ccc\x01611=zzz\x01612=yyy\x01613=xxx\x0110=255\x01"
	assert.Equal(t, expected, string(raw))
}

func TestEncodeChecksumInvariant(t *testing.T) {
	msg := NewMessage(MsgTypeNewOrderSingle)
	require.NoError(t, msg.Set(TagClOrdID, "id-1"))
	require.NoError(t, msg.Set(TagSymbol, "VOD.L"))

	raw, err := Encode(msg, &stubSession{sender: "a", target: "b"})
	require.NoError(t, err)

	// sum(bytes before tag 10) mod 256 == value of tag 10
	var sum int
	for _, b := range raw[:len(raw)-checksumTrailerLen] {
		sum += int(b)
	}
	trailer := raw[len(raw)-checksumTrailerLen:]
	assert.Equal(t, []byte("10="), trailer[:3])
	assert.Equal(t, byte(SOH), trailer[6])
	assert.Equal(t, []byte{
		'0' + byte(sum%256/100),
		'0' + byte(sum%256/10%10),
		'0' + byte(sum%256%10),
	}, trailer[3:6])
}

func TestEncodeReplayRequiresSeqNum(t *testing.T) {
	sess := &stubSession{sender: "a", target: "b"}

	t.Run("GapFillWithoutSeqNum", func(t *testing.T) {
		msg := NewMessage(MsgTypeSequenceReset)
		require.NoError(t, msg.Set(TagGapFillFlag, "Y"))
		require.NoError(t, msg.Set(TagNewSeqNo, 12))
		_, err := Encode(msg, sess)
		assert.ErrorIs(t, err, ErrEncoding)
	})

	t.Run("PossDupWithoutSeqNum", func(t *testing.T) {
		msg := NewMessage(MsgTypeNewOrderSingle)
		require.NoError(t, msg.Set(TagPossDupFlag, "Y"))
		_, err := Encode(msg, sess)
		assert.ErrorIs(t, err, ErrEncoding)
	})

	t.Run("GapFillWithSeqNum", func(t *testing.T) {
		msg := NewMessage(MsgTypeSequenceReset)
		require.NoError(t, msg.Set(TagGapFillFlag, "Y"))
		require.NoError(t, msg.Set(TagMsgSeqNum, 7))
		require.NoError(t, msg.Set(TagNewSeqNo, 12))
		raw, err := Encode(msg, sess)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "\x0134=7\x01")
		// No fresh allocation happened.
		assert.Equal(t, 0, sess.next)
	})
}

// validFrame is the canned frame from the decoder test corpus (checksum 100
// is correct for the standard byte sum).
var validFrame = []byte("8=FIX.4.4\x019=82\x0135=D\x0149=sender\x0156=target\x0134=1\x0152=20230919-07:13:26.808\x0144=123.45\x0138=9876\x0155=VOD.L\x0110=100\x01")

func TestDecodeValid(t *testing.T) {
	msg, consumed, raw, err := Decode(validFrame)
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, len(validFrame), consumed)
	assert.Equal(t, validFrame, raw)
	assert.Equal(t, MsgTypeNewOrderSingle, msg.Type)

	for tag, want := range map[Tag]string{
		TagBeginString: "FIX.4.4",
		TagPrice:       "123.45",
		TagOrderQty:    "9876",
		TagSymbol:      "VOD.L",
		TagMsgSeqNum:   "1",
		TagCheckSum:    "100",
	} {
		v, err := msg.Get(tag)
		require.NoError(t, err, "tag %d", tag)
		assert.Equal(t, want, v, "tag %d", tag)
	}
}

func TestDecodeInvalidChecksum(t *testing.T) {
	bad := bytes.Replace(validFrame, []byte("10=100"), []byte("10=110"), 1)

	msg, consumed, raw, err := Decode(bad)
	assert.Nil(t, msg)
	assert.Nil(t, raw)
	assert.Equal(t, len(bad), consumed)
	assert.ErrorIs(t, err, ErrBadChecksum)
}

func TestDecodeNoFixHeader(t *testing.T) {
	buf := []byte("my_some string without any ")
	msg, consumed, _, err := Decode(buf)
	assert.Nil(t, msg)
	assert.Equal(t, len(buf), consumed)
	assert.ErrorIs(t, err, ErrNoFixHeader)
}

func TestDecodeGarbageResync(t *testing.T) {
	buf := append([]byte("somejunk\n"), validFrame...)

	msg, consumed, raw, err := Decode(buf)
	require.NoError(t, err)
	require.NotNil(t, msg)

	// The whole buffer is consumed and the raw frame excludes the junk.
	assert.Equal(t, len(buf), consumed)
	assert.Equal(t, validFrame, raw)
}

func TestDecodeJunkWithIncompleteFrame(t *testing.T) {
	buf := []byte("somejunk\n8=FIX.4.4\x019=82\x0135=D")

	msg, consumed, _, err := Decode(buf)
	assert.Nil(t, msg)
	assert.Equal(t, len("somejunk\n"), consumed)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.True(t, bytes.HasPrefix(buf[consumed:], []byte("8=FIX")))
}

func TestDecodeStopsAtSecondFrame(t *testing.T) {
	buf := append(append([]byte("somejunk\n"), validFrame...), []byte("8=FIX.4.4\x019=82\x0135=D")...)

	msg, consumed, _, err := Decode(buf)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, len("somejunk\n")+len(validFrame), consumed)
	assert.True(t, bytes.HasPrefix(buf[consumed:], []byte("8=FIX")))
}

func TestDecodePartialHeaderThenFrame(t *testing.T) {
	buf := append([]byte("35=D\x0149=sender\x0156=target\x0134=1\x01"), validFrame...)

	msg, consumed, _, err := Decode(buf)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, len(buf), consumed)
}

func TestDecodeBodyLengthBoundary(t *testing.T) {
	t.Run("OneByteShort", func(t *testing.T) {
		msg, consumed, _, err := Decode(validFrame[:len(validFrame)-1])
		assert.Nil(t, msg)
		assert.Equal(t, 0, consumed)
		assert.ErrorIs(t, err, ErrIncomplete)
	})

	t.Run("Exact", func(t *testing.T) {
		msg, consumed, _, err := Decode(validFrame)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, len(validFrame), consumed)
	})
}

func TestRoundTripGroups(t *testing.T) {
	msgIn := NewMessage(MsgTypeNewOrderSingle)
	require.NoError(t, msgIn.Set(TagPrice, "123.45"))
	require.NoError(t, msgIn.Set(TagOrderQty, 9876))
	require.NoError(t, msgIn.Set(TagSymbol, "VOD.L"))

	require.NoError(t, msgIn.AddGroup(TagNoSecurityAltID,
		NewGroup(TagSecurityAltID, "abc", TagSecurityAltIDSource, "bbb"), -1))
	require.NoError(t, msgIn.AddGroup(TagNoSecurityAltID,
		NewGroup(TagSecurityAltID, "zzz", TagSecurityAltIDSource, "xxx"), -1))

	// 20228 is not in the dictionary: its members decode as repeated root
	// tags and get the ambiguity marker.
	require.NoError(t, msgIn.AddGroup(20228, NewGroup(Tag(20323), "1", Tag(20324), "3"), -1))
	require.NoError(t, msgIn.AddGroup(20228, NewGroup(Tag(20323), "1", Tag(20324), "3"), -1))

	raw, err := Encode(msgIn, &stubSession{sender: "sender", target: "target"})
	require.NoError(t, err)

	msgOut, consumed, _, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, msgOut)
	assert.Equal(t, len(raw), consumed)

	groups, err := msgOut.GetGroupList(TagNoSecurityAltID)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	v, _ := groups[0].Get(TagSecurityAltID)
	assert.Equal(t, "abc", v)
	v, _ = groups[0].Get(TagSecurityAltIDSource)
	assert.Equal(t, "bbb", v)
	v, _ = groups[1].Get(TagSecurityAltID)
	assert.Equal(t, "zzz", v)
	v, _ = groups[1].Get(TagSecurityAltIDSource)
	assert.Equal(t, "xxx", v)

	_, err = msgOut.Get(20323)
	assert.ErrorIs(t, err, ErrRepeatingTag)
	_, err = msgOut.Get(20324)
	assert.ErrorIs(t, err, ErrRepeatingTag)
}

func TestDecodeNestedGroups(t *testing.T) {
	inMsg := []byte(
		"8=FIX.4.4\x019=817\x0135=J\x0134=953\x0149=FIX_ALAUDIT\x0156=BFUT_ALAUDIT\x0143=N\x0152=20150615-09:21:42.459\x01" +
			"70=00000002664ASLO1001\x01626=2\x0110626=5\x0171=0\x0160=20150615-10:21:42\x01857=1\x01" +
			"73=1\x0111=00000006321ORLO1\x0138=100.0\x01800=100.0\x01" +
			"124=1\x0132=100.0\x0117=00000009758TRLO1\x0131=484.50\x01" +
			"54=2\x0153=100.0\x0155=FTI\x01207=XEUE\x01454=1\x01455=EOM5\x01456=A\x01200=201506\x01541=20150619\x01" +
			"461=FXXXXX\x016=484.50\x0174=2\x0175=20150615\x0178=2\x0179=TEST123\x0130009=12345\x01467=00000014901CALO1001\x01" +
			"9520=00000014898CALO1\x0180=33.0\x01366=484.50\x0181=0\x01153=484.50\x0110626=5\x0179=TEST124\x0130009=12345\x01" +
			"467=00000014903CALO1001\x019520=00000014899CALO1\x0180=67.0\x01366=484.50\x0181=0\x01153=484.50\x0110626=5\x01" +
			"453=3\x01448=TEST1\x01447=D\x01452=3\x01802=2\x01523=12345\x01803=3\x01523=TEST1\x01803=19\x01" +
			"448=TEST1WA\x01447=D\x01452=38\x01802=4\x01523=Test1 Wait\x01803=10\x01523= \x01803=26\x01523=\x01803=3\x01" +
			"523=TestWaCRF2\x01803=28\x01448=hagap\x01447=D\x01452=11\x01802=2\x01523=GB\x01803=25\x01" +
			"523=BarCapFutures.FETService\x01803=24\x0110=033\x01")

	msg, consumed, _, err := Decode(inMsg)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, len(inMsg), consumed)

	expected := "8=FIX.4.4|9=817|35=J|34=953|49=FIX_ALAUDIT|56=BFUT_ALAUDIT|43=N|52=20150615-09:21:42.459|" +
		"70=00000002664ASLO1001|626=2|10626=#err#|71=0|60=20150615-10:21:42|857=1|" +
		"73=1=>[11=00000006321ORLO1|38=100.0|800=100.0]|" +
		"124=1=>[32=100.0|17=00000009758TRLO1|31=484.50]|" +
		"54=2|53=100.0|55=FTI|207=XEUE|454=1=>[455=EOM5|456=A]|200=201506|541=20150619|461=FXXXXX|6=484.50|74=2|" +
		"75=20150615|78=1=>[79=TEST123]|30009=#err#|467=#err#|9520=#err#|80=#err#|366=#err#|81=#err#|153=#err#|" +
		"79=TEST124|453=3=>[448=TEST1|447=D|452=3|802=2=>[523=12345|803=3, 523=TEST1|803=19], " +
		"448=TEST1WA|447=D|452=38|802=4=>[523=Test1 Wait|803=10, 523= |803=26, 523=|803=3, 523=TestWaCRF2|803=28], " +
		"448=hagap|447=D|452=11|802=2=>[523=GB|803=25, 523=BarCapFutures.FETService|803=24]]|10=033"
	assert.Equal(t, expected, msg.String())
}

func TestRoundTripNormalised(t *testing.T) {
	frozenClock(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	msgIn := NewMessage(MsgTypeNewOrderSingle)
	require.NoError(t, msgIn.Set(TagClOrdID, "ord-1"))
	require.NoError(t, msgIn.Set(TagSymbol, "VOD.L"))
	require.NoError(t, msgIn.Set(TagSide, SideBuy))
	require.NoError(t, msgIn.Set(TagPrice, 200.0))
	require.NoError(t, msgIn.Set(TagOrderQty, 10.0))

	raw, err := Encode(msgIn, &stubSession{sender: "sender", target: "target"})
	require.NoError(t, err)

	msgOut, _, _, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, msgOut)

	// Normalise the injected envelope fields, then compare canonical forms.
	for _, tag := range []Tag{TagBeginString, TagBodyLength, TagMsgType, TagMsgSeqNum,
		TagSenderCompID, TagSendingTime, TagTargetCompID, TagCheckSum} {
		msgOut.Remove(tag)
	}
	assert.Equal(t, msgIn.Type, msgOut.Type)
	assert.Equal(t, msgIn.String(), msgOut.String())
}
