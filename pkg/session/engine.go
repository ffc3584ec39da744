package session

import (
	"fmt"
	"sync"

	"github.com/marmos91/fixlink/internal/logger"
	"github.com/marmos91/fixlink/pkg/journal"
)

// Engine is the session registry of one process: every known comp-id pair
// with its recovered counters, backed by a shared journal store. Connections
// of both roles resolve their session through the engine; the acceptor
// creates sessions lazily on first Logon.
type Engine struct {
	mu       sync.Mutex
	store    journal.Store
	sessions map[int64]*Session

	// ValidateSession, when set, gates acceptor-side session creation.
	// The default accepts every comp-id pair.
	ValidateSession func(targetCompID, senderCompID string) bool
}

// NewEngine loads all journaled sessions from store.
func NewEngine(store journal.Store) (*Engine, error) {
	recs, err := store.Sessions()
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions from journal: %w", err)
	}

	e := &Engine{
		store:    store,
		sessions: make(map[int64]*Session, len(recs)),
	}
	for _, rec := range recs {
		s := FromRecord(rec)
		e.sessions[s.Key] = s
		logger.Debug("recovered session from journal",
			logger.KeySession, s.String())
	}
	return e, nil
}

// Journal returns the shared journal store.
func (e *Engine) Journal() journal.Store {
	return e.store
}

// CreateSession registers a new comp-id pair. Fails when the pair exists.
func (e *Engine) CreateSession(targetCompID, senderCompID string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.findLocked(targetCompID, senderCompID) != nil {
		return nil, fmt.Errorf("%w: TargetCompID=%s SenderCompID=%s",
			journal.ErrSessionExists, targetCompID, senderCompID)
	}
	rec, err := e.store.CreateSession(targetCompID, senderCompID)
	if err != nil {
		return nil, err
	}
	s := NewSession(rec.Key, targetCompID, senderCompID)
	e.sessions[s.Key] = s
	return s, nil
}

// FindByCompIDs returns the session for the pair, or nil.
func (e *Engine) FindByCompIDs(targetCompID, senderCompID string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findLocked(targetCompID, senderCompID)
}

func (e *Engine) findLocked(targetCompID, senderCompID string) *Session {
	for _, s := range e.sessions {
		if s.TargetCompID == targetCompID && s.SenderCompID == senderCompID {
			return s
		}
	}
	return nil
}

// GetOrCreate resolves the session for a pair, creating it when allowed.
// Returns nil when ValidateSession rejects the pair.
func (e *Engine) GetOrCreate(targetCompID, senderCompID string) (*Session, error) {
	if s := e.FindByCompIDs(targetCompID, senderCompID); s != nil {
		return s, nil
	}
	if e.ValidateSession != nil && !e.ValidateSession(targetCompID, senderCompID) {
		return nil, nil
	}
	return e.CreateSession(targetCompID, senderCompID)
}

// Sessions returns a snapshot of all known sessions.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		out = append(out, s)
	}
	return out
}
