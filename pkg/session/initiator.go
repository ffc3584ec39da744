package session

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/marmos91/fixlink/internal/logger"
)

// Initiator dials the counterparty and runs one connection over a fixed
// session.
type Initiator struct {
	*Connection
	host string
	port int
}

// NewInitiator builds an initiator for the given comp-id pair. The session
// is resolved through the engine (recovered from the journal or created on
// first use).
func NewInitiator(engine *Engine, senderCompID, targetCompID, host string, port int, handler Handler, opts Options) (*Initiator, error) {
	// The initiator's session is keyed the way the acceptor sees it:
	// our target is the registry's target.
	sess, err := engine.GetOrCreate(targetCompID, senderCompID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionRejected
	}

	c := newConnection(engine, sess, handler, opts)
	c.role = RoleInitiator
	c.log = c.log.With(
		logger.KeyRole, RoleInitiator.String(),
		logger.KeySession, senderCompID+"->"+targetCompID,
	)
	return &Initiator{Connection: c, host: host, port: port}, nil
}

// Connect dials the acceptor and starts the connection loops. The caller
// follows up with Logon() to start the session conversation.
func (i *Initiator) Connect(ctx context.Context) error {
	i.mu.Lock()
	if !i.state.IsDisconnected() {
		i.mu.Unlock()
		return fmt.Errorf("already connected (state %s)", i.state)
	}
	i.state = StateInitiateConnection
	i.mu.Unlock()

	addr := net.JoinHostPort(i.host, fmt.Sprintf("%d", i.port))
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		i.mu.Lock()
		i.state = StateDisconnectedBrokenConn
		i.mu.Unlock()
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	i.log.Info("connected", logger.KeyRemoteAddr, addr)
	i.attach(ctx, conn)
	return nil
}
