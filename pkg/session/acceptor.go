package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/marmos91/fixlink/internal/logger"
)

// Acceptor listens for initiators. Each accepted socket gets its own
// Connection; the session is resolved from the engine when the peer's Logon
// arrives, so one acceptor serves every comp-id pair the engine knows (or
// permits via Engine.ValidateSession).
type Acceptor struct {
	engine  *Engine
	handler Handler
	opts    Options

	mu       sync.Mutex
	listener net.Listener
	conns    []*Connection
	shutdown bool
}

// NewAcceptor builds an acceptor around the shared engine.
func NewAcceptor(engine *Engine, handler Handler, opts Options) *Acceptor {
	return &Acceptor{engine: engine, handler: handler, opts: opts}
}

// ListenAndServe accepts connections on addr until ctx is cancelled or Stop
// is called.
func (a *Acceptor) ListenAndServe(ctx context.Context, host string, port int) error {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	a.mu.Lock()
	if a.shutdown {
		a.mu.Unlock()
		ln.Close()
		return errors.New("acceptor already stopped")
	}
	a.listener = ln
	a.mu.Unlock()

	logger.Info("awaiting connections", logger.KeyRemoteAddr, addr)

	go func() {
		<-ctx.Done()
		a.Stop()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			a.mu.Lock()
			stopped := a.shutdown
			a.mu.Unlock()
			if stopped || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		c := newConnection(a.engine, nil, a.handler, a.opts)
		c.role = RoleAcceptor
		c.log = c.log.With(logger.KeyRole, RoleAcceptor.String())

		a.mu.Lock()
		a.conns = append(a.conns, c)
		a.mu.Unlock()

		logger.Info("connection accepted",
			logger.KeyRemoteAddr, conn.RemoteAddr().String(),
			logger.KeyConnectionID, c.ID())
		c.attach(ctx, conn)
	}
}

// Stop closes the listener and tears down every live connection.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	a.shutdown = true
	ln := a.listener
	conns := append([]*Connection(nil), a.conns...)
	a.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	for _, c := range conns {
		c.Disconnect()
	}
}

// Connections returns a snapshot of the acceptor's connections.
func (a *Acceptor) Connections() []*Connection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Connection(nil), a.conns...)
}
