package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/fixlink/internal/logger"
	"github.com/marmos91/fixlink/internal/protocol/fix"
	"github.com/marmos91/fixlink/pkg/journal"
	"github.com/marmos91/fixlink/pkg/metrics"
)

// timeNow is stubbed in tests to drive the heartbeat and liveness timers.
var timeNow = time.Now

// Handler receives connection lifecycle events and application messages.
// Session-level messages never reach the handler; the engine answers them
// itself.
type Handler interface {
	OnConnect(c *Connection)
	OnDisconnect(c *Connection)
	OnMessage(c *Connection, msg *fix.Message)
}

// NopHandler ignores every event.
type NopHandler struct{}

func (NopHandler) OnConnect(*Connection)              {}
func (NopHandler) OnDisconnect(*Connection)           {}
func (NopHandler) OnMessage(*Connection, *fix.Message) {}

// Options tune one connection.
type Options struct {
	// HeartbeatPeriod is the HeartBtInt this side proposes (and mirrors
	// as acceptor). Default 30s.
	HeartbeatPeriod time.Duration

	// LogonTimeout bounds the wait for the peer's Logon answer.
	// Default 2 x HeartbeatPeriod.
	LogonTimeout time.Duration

	// Metrics collects session counters; nil disables collection.
	Metrics *metrics.SessionMetrics
}

// Connection binds a Session to one TCP endpoint and runs the FIX session
// state machine over it.
//
// Two goroutines drive a live connection: the socket read loop, which feeds
// the codec and dispatches decoded messages, and the heartbeat timer. Both
// serialise through mu together with application Send calls, so the session
// counters have a single writer at a time.
type Connection struct {
	mu sync.Mutex

	id     string
	engine *Engine
	sess   *Session
	role   Role
	state  ConnectionState

	conn   net.Conn
	writer io.Writer
	rbuf   []byte

	heartbeatPeriod time.Duration
	logonTimeout    time.Duration

	lastSendTime  time.Time
	lastRecvTime  time.Time
	testRequestAt time.Time // zero while no TestRequest is outstanding
	logonSentAt   time.Time
	logoutSent    bool

	handler Handler
	log     *slog.Logger
	metrics *metrics.SessionMetrics

	cancel context.CancelFunc
	loops  sync.WaitGroup
}

// newConnection wires a connection in the initial disconnected state. sess
// may be nil for acceptor connections; it is resolved from the engine on the
// first Logon.
func newConnection(engine *Engine, sess *Session, handler Handler, opts Options) *Connection {
	if opts.HeartbeatPeriod <= 0 {
		opts.HeartbeatPeriod = 30 * time.Second
	}
	if opts.LogonTimeout <= 0 {
		opts.LogonTimeout = 2 * opts.HeartbeatPeriod
	}
	if handler == nil {
		handler = NopHandler{}
	}

	id := uuid.NewString()
	return &Connection{
		id:              id,
		engine:          engine,
		sess:            sess,
		state:           StateDisconnectedNoConnToday,
		heartbeatPeriod: opts.HeartbeatPeriod,
		logonTimeout:    opts.LogonTimeout,
		handler:         handler,
		log:             logger.With(logger.KeyConnectionID, id),
		metrics:         opts.Metrics,
	}
}

// ID returns the connection's uuid, used to correlate log lines.
func (c *Connection) ID() string { return c.id }

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Role returns the connection role, known once a Logon was sent or received.
func (c *Connection) Role() Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// Session returns the bound session (nil on an acceptor connection before
// the first Logon).
func (c *Connection) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// attach takes ownership of a freshly established socket and starts the read
// and heartbeat loops.
func (c *Connection) attach(ctx context.Context, conn net.Conn) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.conn = conn
	c.writer = conn
	c.rbuf = nil
	c.logoutSent = false
	c.state = StateNetworkConnEstablished
	now := timeNow()
	c.lastRecvTime = now
	c.lastSendTime = now
	c.cancel = cancel
	if conn != nil {
		c.log = c.log.With(logger.KeyRemoteAddr, conn.RemoteAddr().String())
	}
	c.mu.Unlock()

	c.loops.Add(2)
	go c.readLoop(ctx)
	go c.heartbeatLoop(ctx)

	c.handler.OnConnect(c)
}

// Send encodes, journals and writes one application or session message.
//
// The send gate follows the state machine: nothing may be sent while
// disconnected; the first message after connecting must be Logon or Logout;
// the initiator must stay quiet until its Logon is answered; and while a
// sequence gap is being replayed only session-level messages and replayed
// (PossDupFlag=Y) frames pass.
func (c *Connection) Send(msg *fix.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateDisconnectedNoConnToday, StateDisconnectedBrokenConn,
		StateDisconnectedWConnToday, StateAwaitingConnection, StateInitiateConnection:
		return ErrNotConnected
	case StateNetworkConnEstablished:
		if msg.Type != fix.MsgTypeLogon && msg.Type != fix.MsgTypeLogout {
			return ErrFirstMessageNotLogon
		}
	case StateLogonInitialSent:
		return ErrWaitingLogon
	case StateResendReqHandling:
		if !fix.IsSessionMessage(msg.Type) && !isReplayFrame(msg) {
			return ErrResendInProgress
		}
	}

	first := c.state == StateNetworkConnEstablished

	if err := c.writeMsgLocked(msg); err != nil {
		return err
	}

	if first && msg.Type == fix.MsgTypeLogon {
		if c.role == RoleUnknown {
			c.role = RoleInitiator
		}
		c.state = StateLogonInitialSent
		c.logonSentAt = timeNow()
	}
	return nil
}

// Logon sends the initial Logon carrying this side's heartbeat interval.
func (c *Connection) Logon() error {
	return c.Send(LogonMsg(int(c.heartbeatPeriod / time.Second)))
}

// Logout sends a Logout, optionally carrying text.
func (c *Connection) Logout(text string) error {
	return c.Send(LogoutMsg(text))
}

// Disconnect tears the connection down cleanly. Idempotent.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	c.teardownLocked(StateDisconnectedWConnToday)
	c.mu.Unlock()
	c.loops.Wait()
}

// isReplayFrame reports whether msg is a replayed frame or gap fill whose
// sequence number must be preserved and which must not be re-journaled.
func isReplayFrame(msg *fix.Message) bool {
	if v, err := msg.Get(fix.TagPossDupFlag); err == nil && v == "Y" {
		return true
	}
	if msg.Type == fix.MsgTypeSequenceReset {
		if v, err := msg.Get(fix.TagGapFillFlag); err == nil && v == "Y" {
			return true
		}
	}
	return false
}

// writeMsgLocked encodes msg, journals it (frame-before-wire) and writes it
// to the socket. No send gates; internal replies use this directly.
func (c *Connection) writeMsgLocked(msg *fix.Message) error {
	if c.sess == nil {
		return ErrNotConnected
	}
	raw, err := fix.Encode(msg, c.sess)
	if err != nil {
		return err
	}

	if !isReplayFrame(msg) {
		if err := c.engine.Journal().Persist(raw, c.sess.Key, journal.Outbound); err != nil {
			if errors.Is(err, journal.ErrDuplicateSeqNo) {
				c.log.Error("outbound journal conflict, dropping connection",
					logger.KeyError, err)
				c.teardownLocked(StateDisconnectedBrokenConn)
			}
			return err
		}
	}

	if _, err := c.writer.Write(raw); err != nil {
		c.teardownLocked(StateDisconnectedBrokenConn)
		return fmt.Errorf("socket write failed: %w", err)
	}

	if msg.Type == fix.MsgTypeLogout {
		c.logoutSent = true
	}
	c.lastSendTime = timeNow()
	c.metrics.IncFramesOut()
	return nil
}

// processMessageLocked runs the inbound state machine for one decoded frame.
func (c *Connection) processMessageLocked(msg *fix.Message, raw []byte) {
	if c.state.IsDisconnected() {
		return
	}
	c.lastRecvTime = timeNow()
	c.testRequestAt = time.Time{}
	c.metrics.IncFramesIn()

	c.log.Debug("processing message",
		logger.KeyMsgType, string(msg.Type),
		logger.KeyState, c.state.String())

	if c.state == StateNetworkConnEstablished {
		// We are the acceptor and this is the peer's first frame.
		if msg.Type != fix.MsgTypeLogon {
			c.log.Warn("first message after connect is not a Logon, dropping connection",
				logger.KeyMsgType, string(msg.Type))
			c.teardownLocked(StateDisconnectedBrokenConn)
			return
		}
		c.role = RoleAcceptor
		c.state = StateLogonResponse
		c.acceptLogonLocked(msg, raw)
		return
	}

	if diag := c.validateIntegrityLocked(msg); diag != "" {
		c.protocolViolationLocked(diag)
		return
	}

	if fix.IsSessionMessage(msg.Type) {
		c.handleSessionMessageLocked(msg)
		if c.state.IsDisconnected() {
			return
		}
	} else if seq, err := msg.GetInt(fix.TagMsgSeqNum); err == nil && seq == c.sess.NextNumIn {
		// Application messages are delivered strictly in sequence; a
		// frame ahead of the gap waits for the replay.
		c.handler.OnMessage(c, msg)
	}

	c.finalizeLocked(msg, raw)
}

// acceptLogonLocked answers the peer's initial Logon: resolve the session,
// validate, mirror HeartBtInt, go active.
func (c *Connection) acceptLogonLocked(msg *fix.Message, raw []byte) {
	msgSender, _ := msg.Get(fix.TagSenderCompID)
	msgTarget, _ := msg.Get(fix.TagTargetCompID)

	if c.sess == nil {
		// Comp ids are mirrored: the peer's sender is our target.
		s, err := c.engine.GetOrCreate(msgSender, msgTarget)
		if err != nil {
			c.log.Error("failed to resolve session for logon", logger.KeyError, err)
			c.teardownLocked(StateDisconnectedBrokenConn)
			return
		}
		if s == nil {
			c.log.Warn("rejected logon attempt for invalid session",
				logger.KeySenderCompID, msgSender,
				logger.KeyTargetCompID, msgTarget)
			c.teardownLocked(StateDisconnectedBrokenConn)
			return
		}
		c.sess = s
	}
	c.log = c.log.With(logger.KeySession, c.sess.TargetCompID+"<-"+c.sess.SenderCompID)

	if diag := c.validateIntegrityLocked(msg); diag != "" {
		c.protocolViolationLocked(diag)
		return
	}

	if hb, err := msg.GetInt(fix.TagHeartBtInt); err == nil && hb > 0 {
		c.heartbeatPeriod = time.Duration(hb) * time.Second
	}

	if err := c.writeMsgLocked(LogonMsg(int(c.heartbeatPeriod / time.Second))); err != nil {
		c.log.Error("failed to answer logon", logger.KeyError, err)
		c.teardownLocked(StateDisconnectedBrokenConn)
		return
	}
	c.state = StateActive
	c.log.Info("logon accepted", logger.KeySession, c.sess.String())

	c.finalizeLocked(msg, raw)
}

// validateIntegrityLocked checks the envelope of an inbound frame. An empty
// result means the frame passes; otherwise the result is the diagnostic sent
// back on the Logout. Missing comp ids are not validated.
func (c *Connection) validateIntegrityLocked(msg *fix.Message) string {
	if bs, err := msg.Get(fix.TagBeginString); err == nil && bs != fix.BeginString {
		return fmt.Sprintf("Protocol BeginString(8) mismatch, expected %s, got %s", fix.BeginString, bs)
	}

	msgSender, serr := msg.Get(fix.TagSenderCompID)
	msgTarget, terr := msg.Get(fix.TagTargetCompID)
	if serr == nil && terr == nil && !c.sess.ValidatePeer(msgSender, msgTarget) {
		return "TargetCompID / SenderCompID mismatch"
	}

	seqNum, err := msg.GetInt(fix.TagMsgSeqNum)
	if err != nil {
		return "MsgSeqNum(34) tag is missing"
	}
	if seqNum < c.sess.NextNumIn {
		return fmt.Sprintf("MsgSeqNum is too low, expected %d, got %d", c.sess.NextNumIn, seqNum)
	}
	return ""
}

// protocolViolationLocked sends the diagnostic Logout (best effort) and
// drops the connection.
func (c *Connection) protocolViolationLocked(diag string) {
	c.log.Error("protocol violation", logger.KeyError, diag)
	if !c.state.IsDisconnected() {
		if err := c.writeMsgLocked(LogoutMsg(diag)); err != nil {
			c.log.Debug("failed to send diagnostic logout", logger.KeyError, err)
		}
	}
	c.teardownLocked(StateDisconnectedBrokenConn)
}

// handleSessionMessageLocked answers the administrative conversation.
func (c *Connection) handleSessionMessageLocked(msg *fix.Message) {
	switch msg.Type {
	case fix.MsgTypeLogon:
		switch c.state {
		case StateLogonInitialSent:
			if hb, err := msg.GetInt(fix.TagHeartBtInt); err == nil && hb > 0 {
				c.heartbeatPeriod = time.Duration(hb) * time.Second
			}
			c.state = StateActive
			c.log.Info("logon confirmed", logger.KeySession, c.sess.String())
		default:
			c.log.Warn("session already logged in - ignoring logon")
		}

	case fix.MsgTypeLogout:
		if c.state == StateLogonInitialSent {
			// A Logout instead of the expected Logon means the peer
			// rejected us.
			text, _ := msg.Get(fix.TagText)
			c.log.Error("logon rejected by peer", logger.KeyError, text)
			c.teardownLocked(StateDisconnectedBrokenConn)
			return
		}
		if !c.logoutSent {
			if err := c.writeMsgLocked(LogoutMsg("")); err != nil {
				c.log.Debug("failed to answer logout", logger.KeyError, err)
			}
		}
		c.teardownLocked(StateDisconnectedWConnToday)

	case fix.MsgTypeTestRequest:
		id, _ := msg.Get(fix.TagTestReqID)
		if err := c.writeMsgLocked(HeartbeatMsg(id)); err != nil {
			c.log.Debug("failed to answer test request", logger.KeyError, err)
		}

	case fix.MsgTypeHeartbeat:
		// Liveness already recorded.

	case fix.MsgTypeResendRequest:
		c.processResendLocked(msg)

	case fix.MsgTypeSequenceReset:
		newSeqNo, err := msg.GetInt(fix.TagNewSeqNo)
		if err == nil && newSeqNo < c.sess.NextNumIn {
			c.protocolViolationLocked(fmt.Sprintf(
				"SequenceReset may only increase, NewSeqNo %d is below expected %d",
				newSeqNo, c.sess.NextNumIn))
		}

	case fix.MsgTypeReject:
		text, _ := msg.Get(fix.TagText)
		c.log.Warn("session-level reject from peer", logger.KeyError, text)
	}
}

// processResendLocked replays the requested outbound range from the journal.
// Administrative frames collapse into SequenceReset-GapFills; application
// frames go out again with PossDupFlag=Y and their original sequence number.
func (c *Connection) processResendLocked(req *fix.Message) {
	beginSeqNo, berr := req.GetInt(fix.TagBeginSeqNo)
	endSeqNo, eerr := req.GetInt(fix.TagEndSeqNo)
	if berr != nil || eerr != nil {
		c.protocolViolationLocked("ResendRequest without BeginSeqNo(7)/EndSeqNo(16)")
		return
	}
	if endSeqNo != 0 && beginSeqNo > endSeqNo {
		c.protocolViolationLocked(fmt.Sprintf(
			"ResendRequest range invalid, BeginSeqNo %d above EndSeqNo %d", beginSeqNo, endSeqNo))
		return
	}

	c.log.Info("replaying outbound frames",
		logger.KeyBeginSeq, beginSeqNo,
		logger.KeyEndSeq, endSeqNo)

	prev := c.state
	c.state = StateResendReqHandling

	frames, err := c.engine.Journal().Recover(c.sess.Key, journal.Outbound, beginSeqNo, endSeqNo)
	if err != nil {
		c.log.Error("journal recovery failed", logger.KeyError, err)
		c.teardownLocked(StateDisconnectedBrokenConn)
		return
	}

	gapBegin, gapEnd := beginSeqNo, beginSeqNo
	for _, rawFrame := range frames {
		m, _, _, derr := fix.Decode(rawFrame)
		if derr != nil || m == nil {
			c.log.Error("corrupt frame in journal, skipping", logger.KeyError, derr)
			continue
		}
		seqNum, err := m.GetInt(fix.TagMsgSeqNum)
		if err != nil {
			continue
		}

		if fix.IsSessionMessage(m.Type) {
			gapEnd = seqNum + 1
			continue
		}

		if gapBegin < gapEnd {
			if err := c.writeMsgLocked(GapFillMsg(gapBegin, gapEnd)); err != nil {
				return
			}
			c.metrics.IncGapFills()
		}

		// Strip the codec-owned envelope so the frame re-encodes with a
		// fresh SendingTime; the original MsgSeqNum is kept.
		m.Remove(fix.TagBeginString)
		m.Remove(fix.TagBodyLength)
		m.Remove(fix.TagSendingTime)
		m.Remove(fix.TagSenderCompID)
		m.Remove(fix.TagTargetCompID)
		m.Remove(fix.TagCheckSum)
		m.Replace(fix.TagPossDupFlag, "Y")

		if err := c.writeMsgLocked(m); err != nil {
			return
		}
		c.metrics.IncResendFrames()
		gapBegin = seqNum + 1
	}

	if gapBegin < gapEnd {
		if err := c.writeMsgLocked(GapFillMsg(gapBegin, gapEnd)); err != nil {
			return
		}
		c.metrics.IncGapFills()
	}

	if c.state == StateResendReqHandling {
		c.state = prev
	}
}

// finalizeLocked advances the inbound counter and journals the frame when it
// was accepted in sequence. A frame running ahead of expectation leaves the
// counter alone and triggers one ResendRequest for the gap.
func (c *Connection) finalizeLocked(msg *fix.Message, raw []byte) {
	accepted := c.sess.SetNextNumIn(msg)
	if accepted > 0 {
		if err := c.engine.Journal().Persist(raw, c.sess.Key, journal.Inbound); err != nil {
			c.log.Error("inbound journal conflict, dropping connection", logger.KeyError, err)
			c.teardownLocked(StateDisconnectedBrokenConn)
			return
		}
		// An accepted in-sequence frame closes any inbound gap window.
		if c.state == StateResendReqHandling {
			c.state = StateActive
		}
		return
	}

	if accepted != -1 || c.state != StateActive {
		return
	}
	seqNum, err := msg.GetInt(fix.TagMsgSeqNum)
	if err != nil || seqNum <= c.sess.NextNumIn {
		return
	}

	c.log.Warn("inbound sequence gap",
		logger.KeySeqNum, seqNum,
		logger.KeyNextNumIn, c.sess.NextNumIn)

	if err := c.writeMsgLocked(ResendRequestMsg(c.sess.NextNumIn, 0)); err != nil {
		return
	}
	c.state = StateResendReqHandling
}

// teardownLocked closes the socket and stops the loops. Idempotent.
func (c *Connection) teardownLocked(newState ConnectionState) {
	if c.state.IsDisconnected() {
		return
	}
	c.state = newState
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.metrics.IncDisconnects()
	c.log.Info("disconnected", logger.KeyState, newState.String())

	// The handler runs outside the lock.
	go c.handler.OnDisconnect(c)
}

// readLoop pulls bytes from the socket, drives the codec over the
// accumulating buffer and dispatches every decoded frame.
func (c *Connection) readLoop(ctx context.Context) {
	defer c.loops.Done()

	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			c.mu.Lock()
			if !c.state.IsDisconnected() {
				c.log.Info("connection closed by peer", logger.KeyError, err)
				c.teardownLocked(StateDisconnectedBrokenConn)
			}
			c.mu.Unlock()
			return
		}

		c.mu.Lock()
		c.rbuf = append(c.rbuf, buf[:n]...)
		for !c.state.IsDisconnected() {
			msg, consumed, raw, derr := fix.Decode(c.rbuf)
			if consumed > 0 {
				c.rbuf = c.rbuf[consumed:]
			}
			if msg == nil {
				if errors.Is(derr, fix.ErrIncomplete) || errors.Is(derr, fix.ErrNoFixHeader) {
					break
				}
				// A complete but unusable frame was consumed; keep
				// scanning the remainder.
				c.metrics.IncDecodeErrors()
				c.log.Warn("dropped inbound frame", logger.KeyError, derr)
				continue
			}
			c.processMessageLocked(msg, raw)
		}
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// heartbeatLoop services outbound heartbeats, peer liveness probing and the
// logon deadline, once per second.
func (c *Connection) heartbeatLoop(ctx context.Context) {
	defer c.loops.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.heartbeatTickLocked()
			c.mu.Unlock()
		}
	}
}

func (c *Connection) heartbeatTickLocked() {
	now := timeNow()

	switch c.state {
	case StateActive, StateResendReqHandling:
		if now.Sub(c.lastSendTime) > c.heartbeatPeriod-time.Second {
			if err := c.writeMsgLocked(HeartbeatMsg("")); err != nil {
				return
			}
		}

		if c.testRequestAt.IsZero() {
			if now.Sub(c.lastRecvTime) > 2*c.heartbeatPeriod {
				id := strconv.FormatInt(now.UnixMilli(), 10)
				if err := c.writeMsgLocked(TestRequestMsg(id)); err != nil {
					return
				}
				c.testRequestAt = now
			}
		} else if now.Sub(c.testRequestAt) > c.heartbeatPeriod {
			c.log.Warn("peer silent after test request, dropping connection")
			c.teardownLocked(StateDisconnectedBrokenConn)
		}

	case StateLogonInitialSent:
		if now.Sub(c.logonSentAt) > c.logonTimeout {
			c.log.Warn("logon not answered in time, dropping connection")
			c.teardownLocked(StateDisconnectedBrokenConn)
		}
	}
}
