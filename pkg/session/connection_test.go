package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/fixlink/internal/protocol/fix"
	"github.com/marmos91/fixlink/internal/protocol/fix/fixtest"
	"github.com/marmos91/fixlink/pkg/journal"
	"github.com/marmos91/fixlink/pkg/journal/memory"
)

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// recordingHandler captures delivered application messages.
type recordingHandler struct {
	msgs []*fix.Message
}

func (*recordingHandler) OnConnect(*Connection)    {}
func (*recordingHandler) OnDisconnect(*Connection) {}
func (h *recordingHandler) OnMessage(_ *Connection, m *fix.Message) {
	h.msgs = append(h.msgs, m)
}

// harness pairs an initiator and an acceptor connection over an in-memory
// transport. Frames written by the initiator queue until processAcceptor
// drains them; frames written by the acceptor deliver to the initiator
// immediately. Loops are never started, tests drive everything directly.
type harness struct {
	t      *testing.T
	init   *Connection
	accept *Connection

	initSent   []*fix.Message
	acceptSent []*fix.Message
	que        [][]byte
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t}

	mk := func(target, sender string) *Connection {
		eng, err := NewEngine(memory.New())
		require.NoError(t, err)
		sess, err := eng.CreateSession(target, sender)
		require.NoError(t, err)
		c := newConnection(eng, sess, NopHandler{}, Options{})
		c.state = StateNetworkConnEstablished
		return c
	}

	h.init = mk("ACCEPTOR", "INITIATOR")
	h.accept = mk("INITIATOR", "ACCEPTOR")
	h.init.writer = writerFunc(h.writeFromInitiator)
	h.accept.writer = writerFunc(h.writeFromAcceptor)
	return h
}

func (h *harness) writeFromInitiator(p []byte) (int, error) {
	msg, consumed, raw, err := fix.Decode(p)
	require.NoError(h.t, err)
	require.NotNil(h.t, msg)
	require.Equal(h.t, len(p), consumed)

	h.initSent = append(h.initSent, msg)
	h.que = append(h.que, append([]byte(nil), raw...))
	return len(p), nil
}

func (h *harness) writeFromAcceptor(p []byte) (int, error) {
	msg, _, raw, err := fix.Decode(p)
	require.NoError(h.t, err)
	require.NotNil(h.t, msg)

	h.acceptSent = append(h.acceptSent, msg)
	h.init.processMessageLocked(msg, raw)
	return len(p), nil
}

// processAcceptor drains every frame the initiator queued.
func (h *harness) processAcceptor() {
	require.NotEmpty(h.t, h.que, "no frames queued for the acceptor")
	for len(h.que) > 0 {
		raw := h.que[0]
		h.que = h.que[1:]
		msg, _, frame, err := fix.Decode(raw)
		require.NoError(h.t, err)
		h.accept.processMessageLocked(msg, frame)
	}
}

// processAcceptorOne delivers exactly one queued frame to the acceptor.
func (h *harness) processAcceptorOne() {
	require.NotEmpty(h.t, h.que, "no frames queued for the acceptor")
	raw := h.que[0]
	h.que = h.que[1:]
	msg, _, frame, err := fix.Decode(raw)
	require.NoError(h.t, err)
	h.accept.processMessageLocked(msg, frame)
}

// dropQueued discards frames in flight, simulating wire loss.
func (h *harness) dropQueued() {
	h.que = nil
}

// logon completes the handshake and leaves both sides active.
func (h *harness) logon() {
	require.NoError(h.t, h.init.Send(fixtest.MsgLogon()))
	h.processAcceptor()
	require.Equal(h.t, StateActive, h.init.State())
	require.Equal(h.t, StateActive, h.accept.State())
}

func TestConnectionSendNotConnected(t *testing.T) {
	h := newHarness(t)

	for _, state := range []ConnectionState{
		StateDisconnectedNoConnToday,
		StateDisconnectedBrokenConn,
		StateDisconnectedWConnToday,
		StateAwaitingConnection,
		StateInitiateConnection,
	} {
		h.init.state = state
		err := h.init.Send(fixtest.MsgLogon())
		assert.ErrorIs(t, err, ErrNotConnected, "state=%s", state)
	}
}

func TestConnectionFirstSendMustBeLogon(t *testing.T) {
	h := newHarness(t)

	err := h.init.Send(fixtest.MsgSequenceReset(1, 12, false))
	assert.ErrorIs(t, err, ErrFirstMessageNotLogon)
	assert.Equal(t, StateNetworkConnEstablished, h.init.State())
}

func TestConnectionNoSendsWhileAwaitingLogon(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.init.Send(fixtest.MsgLogon()))
	assert.Equal(t, StateLogonInitialSent, h.init.State())
	assert.Equal(t, RoleInitiator, h.init.Role())

	err := h.init.Send(fixtest.MsgHeartbeat(""))
	assert.ErrorIs(t, err, ErrWaitingLogon)
}

func TestConnectionLogonHandshake(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.init.Send(fixtest.MsgLogon()))
	require.Len(t, h.initSent, 1)
	assert.Equal(t, map[fix.Tag]string{
		fix.TagSenderCompID: "INITIATOR",
		fix.TagTargetCompID: "ACCEPTOR",
	}, h.initSent[0].Query(fix.TagSenderCompID, fix.TagTargetCompID))
	assert.Equal(t, map[fix.Tag]string{
		fix.TagMsgType:   "A",
		fix.TagMsgSeqNum: "1",
	}, h.initSent[0].Query(fix.TagMsgType, fix.TagMsgSeqNum))

	h.processAcceptor()

	assert.Equal(t, RoleAcceptor, h.accept.Role())
	assert.Equal(t, StateActive, h.accept.State())
	assert.Equal(t, StateActive, h.init.State())

	// The acceptor's reply mirrors the comp ids.
	require.Len(t, h.acceptSent, 1)
	assert.Equal(t, map[fix.Tag]string{
		fix.TagSenderCompID: "ACCEPTOR",
		fix.TagTargetCompID: "INITIATOR",
		fix.TagMsgType:      "A",
	}, h.acceptSent[0].Query(fix.TagSenderCompID, fix.TagTargetCompID, fix.TagMsgType))

	// The acceptor journaled the inbound Logon.
	frames, err := h.accept.engine.Journal().Recover(h.accept.sess.Key, journal.Inbound, 1, 0)
	require.NoError(t, err)
	assert.Len(t, frames, 1)
}

func TestConnectionAcceptorFirstMessageMustBeLogon(t *testing.T) {
	h := newHarness(t)

	raw, err := fix.Encode(fixtest.MsgSequenceReset(1, 2, false), h.init.sess)
	require.NoError(t, err)
	msg, _, frame, err := fix.Decode(raw)
	require.NoError(t, err)

	h.accept.processMessageLocked(msg, frame)
	assert.Equal(t, StateDisconnectedBrokenConn, h.accept.State())
}

func TestConnectionLowSeqNumByInitiator(t *testing.T) {
	h := newHarness(t)

	h.init.sess.NextNumOut = 20
	h.accept.sess.NextNumIn = 21

	require.NoError(t, h.init.Send(fixtest.MsgLogon()))
	assert.Equal(t, "20", h.initSent[0].Query(fix.TagMsgSeqNum)[fix.TagMsgSeqNum])

	h.processAcceptor()

	assert.Equal(t, StateDisconnectedBrokenConn, h.accept.State())
	assert.Equal(t, StateDisconnectedBrokenConn, h.init.State())

	last := h.acceptSent[len(h.acceptSent)-1]
	assert.Equal(t, map[fix.Tag]string{
		fix.TagMsgType: "5",
		fix.TagText:    "MsgSeqNum is too low, expected 21, got 20",
	}, last.Query(fix.TagMsgType, fix.TagText))
}

func TestConnectionLowSeqNumByAcceptor(t *testing.T) {
	h := newHarness(t)

	h.init.sess.NextNumIn = 10
	h.accept.sess.NextNumOut = 4

	require.NoError(t, h.init.Send(fixtest.MsgLogon()))
	h.processAcceptor()

	// The acceptor answered with seq 4; the initiator expected 10.
	require.GreaterOrEqual(t, len(h.initSent), 2)
	assert.Equal(t, map[fix.Tag]string{
		fix.TagMsgType: "5",
		fix.TagText:    "MsgSeqNum is too low, expected 10, got 4",
	}, h.initSent[len(h.initSent)-1].Query(fix.TagMsgType, fix.TagText))

	assert.Equal(t, StateDisconnectedBrokenConn, h.init.State())

	// The acceptor saw the diagnostic Logout in the same drain and closed
	// cleanly.
	assert.Equal(t, StateDisconnectedWConnToday, h.accept.State())
}

func TestConnectionValidateIntegrity(t *testing.T) {
	h := newHarness(t)
	h.logon()

	sent := func(mutate func(*fix.Message)) *fix.Message {
		require.NoError(t, h.init.Send(fixtest.MsgHeartbeat("")))
		m := h.initSent[len(h.initSent)-1]
		if mutate != nil {
			mutate(m)
		}
		return m
	}

	t.Run("MissingSeqNum", func(t *testing.T) {
		m := sent(func(m *fix.Message) { m.Remove(fix.TagMsgSeqNum) })
		assert.Equal(t, "MsgSeqNum(34) tag is missing", h.accept.validateIntegrityLocked(m))
	})

	t.Run("SeqNumTooLow", func(t *testing.T) {
		m := sent(nil)
		h.accept.sess.NextNumIn = 21
		seq, _ := m.Get(fix.TagMsgSeqNum)
		assert.Equal(t,
			fmt.Sprintf("MsgSeqNum is too low, expected 21, got %s", seq),
			h.accept.validateIntegrityLocked(m))
		h.accept.sess.NextNumIn = 2
	})

	t.Run("BeginString", func(t *testing.T) {
		m := sent(func(m *fix.Message) { m.Replace(fix.TagBeginString, "FIX4.8") })
		assert.Equal(t,
			"Protocol BeginString(8) mismatch, expected FIX.4.4, got FIX4.8",
			h.accept.validateIntegrityLocked(m))
	})

	t.Run("SenderMismatch", func(t *testing.T) {
		m := sent(func(m *fix.Message) { m.Replace(fix.TagSenderCompID, "as") })
		assert.Equal(t, "TargetCompID / SenderCompID mismatch",
			h.accept.validateIntegrityLocked(m))
	})

	t.Run("MissingCompIDsNotValidated", func(t *testing.T) {
		m := sent(func(m *fix.Message) {
			m.Remove(fix.TagSenderCompID)
			m.Replace(fix.TagMsgSeqNum, h.accept.sess.NextNumIn)
		})
		assert.Empty(t, h.accept.validateIntegrityLocked(m))
	})
}

func TestConnectionTestRequestAnsweredWithHeartbeat(t *testing.T) {
	h := newHarness(t)
	h.logon()

	require.NoError(t, h.accept.Send(fixtest.MsgTestRequest("TR-77")))

	// The initiator's answer is the last frame it wrote.
	last := h.initSent[len(h.initSent)-1]
	assert.Equal(t, map[fix.Tag]string{
		fix.TagMsgType:   "0",
		fix.TagTestReqID: "TR-77",
	}, last.Query(fix.TagMsgType, fix.TagTestReqID))
}

func TestConnectionLogoutExchange(t *testing.T) {
	h := newHarness(t)
	h.logon()

	require.NoError(t, h.init.Logout(""))
	h.processAcceptor()

	// The acceptor replies with its own Logout and closes cleanly.
	assert.Equal(t, StateDisconnectedWConnToday, h.accept.State())
	last := h.acceptSent[len(h.acceptSent)-1]
	assert.Equal(t, "5", last.Query(fix.TagMsgType)[fix.TagMsgType])
}

func TestConnectionSequenceReset(t *testing.T) {
	t.Run("NoGapFill", func(t *testing.T) {
		h := newHarness(t)
		h.logon()

		require.NoError(t, h.init.Send(fixtest.MsgSequenceReset(h.init.sess.NextNumOut, 10, false)))
		h.processAcceptor()

		assert.Equal(t, 10, h.accept.sess.NextNumIn)
		assert.Equal(t, StateActive, h.accept.State())
	})

	t.Run("GapFill", func(t *testing.T) {
		h := newHarness(t)
		h.logon()

		require.NoError(t, h.init.Send(fixtest.MsgSequenceReset(h.init.sess.NextNumOut, 10, true)))
		h.processAcceptor()

		assert.Equal(t, 10, h.accept.sess.NextNumIn)
	})

	t.Run("LowerIsViolation", func(t *testing.T) {
		h := newHarness(t)
		h.logon()

		h.accept.sess.NextNumIn = 20
		raw, err := fix.EncodeRawSeq(fixtest.MsgSequenceReset(20, 10, false), h.init.sess)
		require.NoError(t, err)
		msg, _, frame, err := fix.Decode(raw)
		require.NoError(t, err)

		h.accept.processMessageLocked(msg, frame)

		assert.Equal(t, StateDisconnectedBrokenConn, h.accept.State())
		last := h.acceptSent[len(h.acceptSent)-1]
		assert.Equal(t, "5", last.Query(fix.TagMsgType)[fix.TagMsgType])
	})
}

func TestConnectionResendRequestInvalidRange(t *testing.T) {
	h := newHarness(t)
	h.logon()

	require.NoError(t, h.init.Send(fixtest.MsgResendRequest(5, 2)))
	h.processAcceptor()

	assert.Equal(t, StateDisconnectedBrokenConn, h.accept.State())
}

// Scenario: the outbound journal holds Logon, Heartbeat, NewOrderSingle,
// Heartbeat, TestRequest, ResendRequest, SequenceReset at sequences 10..16.
// A ResendRequest(1, 0) must produce exactly three frames: a gap fill
// covering 1..11, the NewOrderSingle replayed with PossDupFlag at its
// original sequence 12, and a gap fill covering 13..16.
func TestConnectionProcessResendMixedContent(t *testing.T) {
	h := newHarness(t)
	h.init.state = StateActive
	h.init.sess.NextNumOut = 10

	nos := fix.NewMessageWith(fix.MsgTypeNewOrderSingle,
		fix.TagClOrdID, "test--1",
		fix.TagSymbol, "ticker",
		fix.TagSide, fix.SideBuy,
		fix.TagPrice, 10.0,
		fix.TagOrderQty, 10.0,
	)
	msgs := []*fix.Message{
		fixtest.MsgLogon(),
		fixtest.MsgHeartbeat(""),
		nos,
		fixtest.MsgHeartbeat(""),
		fixtest.MsgTestRequest("tr"),
		fixtest.MsgResendRequest(1, 0),
		fix.NewMessageWith(fix.MsgTypeSequenceReset, fix.TagNewSeqNo, 8),
	}
	for _, m := range msgs {
		raw, err := fix.Encode(m, h.init.sess)
		require.NoError(t, err)
		require.NoError(t, h.init.engine.Journal().Persist(raw, h.init.sess.Key, journal.Outbound))
	}
	require.Equal(t, 17, h.init.sess.NextNumOut)

	h.init.processResendLocked(fixtest.MsgResendRequest(1, 0))

	require.Len(t, h.initSent, 3)

	assert.Equal(t, map[fix.Tag]string{
		fix.TagMsgType:     "4",
		fix.TagMsgSeqNum:   "1",
		fix.TagNewSeqNo:    "12",
		fix.TagGapFillFlag: "Y",
	}, h.initSent[0].Query(fix.TagMsgType, fix.TagMsgSeqNum, fix.TagNewSeqNo, fix.TagGapFillFlag))

	assert.Equal(t, map[fix.Tag]string{
		fix.TagMsgType:     "D",
		fix.TagMsgSeqNum:   "12",
		fix.TagPossDupFlag: "Y",
	}, h.initSent[1].Query(fix.TagMsgType, fix.TagMsgSeqNum, fix.TagPossDupFlag))

	assert.Equal(t, map[fix.Tag]string{
		fix.TagMsgType:     "4",
		fix.TagMsgSeqNum:   "13",
		fix.TagNewSeqNo:    "17",
		fix.TagGapFillFlag: "Y",
	}, h.initSent[2].Query(fix.TagMsgType, fix.TagMsgSeqNum, fix.TagNewSeqNo, fix.TagGapFillFlag))

	assert.Equal(t, StateActive, h.init.State())
}

// Lost application frames trigger a ResendRequest; the replay delivers them
// in order and both sides settle back to active.
func TestConnectionGapRecovery(t *testing.T) {
	h := newHarness(t)
	rec := &recordingHandler{}
	h.accept.handler = rec
	h.logon()

	nos := func(id string) *fix.Message {
		return fix.NewMessageWith(fix.MsgTypeNewOrderSingle,
			fix.TagClOrdID, id,
			fix.TagSymbol, "VOD.L",
			fix.TagSide, fix.SideBuy,
			fix.TagPrice, 100.0,
			fix.TagOrderQty, 5.0,
		)
	}

	// Two orders vanish on the wire.
	require.NoError(t, h.init.Send(nos("a--1")))
	require.NoError(t, h.init.Send(nos("b--1")))
	h.dropQueued()

	// The third one arrives and exposes the gap.
	require.NoError(t, h.init.Send(nos("c--1")))
	h.processAcceptorOne()

	// Nothing delivered out of order, and a replay was requested.
	assert.Empty(t, rec.msgs)
	assert.Equal(t, StateResendReqHandling, h.accept.State())

	// The initiator's replay is already queued; deliver it.
	h.processAcceptor()

	require.Len(t, rec.msgs, 3)
	for i, want := range []string{"2", "3", "4"} {
		q := rec.msgs[i].Query(fix.TagMsgSeqNum, fix.TagPossDupFlag)
		assert.Equal(t, want, q[fix.TagMsgSeqNum])
		assert.Equal(t, "Y", q[fix.TagPossDupFlag])
	}

	assert.Equal(t, StateActive, h.accept.State())
	assert.Equal(t, StateActive, h.init.State())
	assert.Equal(t, 5, h.accept.sess.NextNumIn)
}

// Both sides connect with mismatched counters in both directions; the
// bidirectional resend conversation must converge with both sides active.
func TestConnectionBidirectionalSeqMismatch(t *testing.T) {
	h := newHarness(t)

	h.init.sess.NextNumOut = 20
	h.init.sess.NextNumIn = 25
	h.accept.sess.NextNumIn = 15
	h.accept.sess.NextNumOut = 30

	require.NoError(t, h.init.Send(fixtest.MsgLogon()))
	for len(h.que) > 0 {
		h.processAcceptor()
	}

	assert.Equal(t, StateActive, h.init.State())
	assert.Equal(t, StateActive, h.accept.State())
}

func TestConnectionHeartbeatTimer(t *testing.T) {
	h := newHarness(t)
	h.logon()

	base := time.Now()
	clock := base
	prev := timeNow
	timeNow = func() time.Time { return clock }
	t.Cleanup(func() { timeNow = prev })

	t.Run("PeriodicHeartbeat", func(t *testing.T) {
		h.init.lastSendTime = base.Add(-31 * time.Second)
		h.init.lastRecvTime = base
		sent := len(h.initSent)

		h.init.heartbeatTickLocked()

		require.Len(t, h.initSent, sent+1)
		assert.Equal(t, "0", h.initSent[sent].Query(fix.TagMsgType)[fix.TagMsgType])
	})

	t.Run("SilentPeerGetsTestRequest", func(t *testing.T) {
		h.init.lastSendTime = base
		h.init.lastRecvTime = base.Add(-61 * time.Second)
		sent := len(h.initSent)

		h.init.heartbeatTickLocked()

		require.Len(t, h.initSent, sent+1)
		assert.Equal(t, "1", h.initSent[sent].Query(fix.TagMsgType)[fix.TagMsgType])
		assert.False(t, h.init.testRequestAt.IsZero())
	})

	t.Run("StillSilentDisconnects", func(t *testing.T) {
		clock = base.Add(31 * time.Second)
		h.init.lastSendTime = clock

		h.init.heartbeatTickLocked()

		assert.Equal(t, StateDisconnectedBrokenConn, h.init.State())
	})
}

func TestConnectionLogonTimeout(t *testing.T) {
	h := newHarness(t)

	base := time.Now()
	clock := base
	prev := timeNow
	timeNow = func() time.Time { return clock }
	t.Cleanup(func() { timeNow = prev })

	require.NoError(t, h.init.Send(fixtest.MsgLogon()))
	require.Equal(t, StateLogonInitialSent, h.init.State())

	clock = base.Add(59 * time.Second)
	h.init.heartbeatTickLocked()
	assert.Equal(t, StateLogonInitialSent, h.init.State())

	clock = base.Add(61 * time.Second)
	h.init.heartbeatTickLocked()
	assert.Equal(t, StateDisconnectedBrokenConn, h.init.State())
}

func TestConnectionDuplicateOutboundSeqIsFatal(t *testing.T) {
	h := newHarness(t)
	h.logon()

	// Rewind the counter so the next send collides in the journal.
	h.init.sess.NextNumOut = 1

	err := h.init.Send(fixtest.MsgHeartbeat(""))
	assert.ErrorIs(t, err, journal.ErrDuplicateSeqNo)
	assert.Equal(t, StateDisconnectedBrokenConn, h.init.State())
}
