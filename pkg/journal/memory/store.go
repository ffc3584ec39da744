// Package memory implements an in-process journal for tests and ephemeral
// sessions. Same semantics as the durable backends, no persistence.
package memory

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/marmos91/fixlink/pkg/journal"
)

type msgKey struct {
	session int64
	dir     journal.Direction
	seq     int
}

// Store is a map-backed journal.Store.
type Store struct {
	mu       sync.Mutex
	messages map[msgKey][]byte
	order    []msgKey // insertion order for Entries
	sessions map[int64]*journal.SessionRecord
	byComp   map[[2]string]int64
	nextKey  int64
}

var _ journal.Store = (*Store)(nil)

// New returns an empty in-memory journal.
func New() *Store {
	return &Store{
		messages: make(map[msgKey][]byte),
		sessions: make(map[int64]*journal.SessionRecord),
		byComp:   make(map[[2]string]int64),
	}
}

// Sessions lists every registered session.
func (s *Store) Sessions() ([]journal.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]journal.SessionRecord, 0, len(s.sessions))
	for _, rec := range s.sessions {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// CreateSession registers a new comp-id pair.
func (s *Store) CreateSession(targetCompID, senderCompID string) (journal.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ck := [2]string{targetCompID, senderCompID}
	if _, ok := s.byComp[ck]; ok {
		return journal.SessionRecord{}, fmt.Errorf(
			"%w: TargetCompID=%s SenderCompID=%s", journal.ErrSessionExists, targetCompID, senderCompID)
	}

	s.nextKey++
	rec := &journal.SessionRecord{Key: s.nextKey, TargetCompID: targetCompID, SenderCompID: senderCompID}
	s.sessions[rec.Key] = rec
	s.byComp[ck] = rec.Key
	return *rec, nil
}

// Persist journals one raw frame.
func (s *Store) Persist(raw []byte, sessionKey int64, dir journal.Direction) error {
	seqNo, err := journal.SeqNumFromRaw(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := msgKey{session: sessionKey, dir: dir, seq: seqNo}
	if _, ok := s.messages[k]; ok {
		return fmt.Errorf("%w: seq=%d session=%d direction=%s",
			journal.ErrDuplicateSeqNo, seqNo, sessionKey, dir)
	}
	s.messages[k] = append([]byte(nil), raw...)
	s.order = append(s.order, k)

	if rec, ok := s.sessions[sessionKey]; ok {
		if dir == journal.Outbound {
			rec.LastNumOut = seqNo
		} else {
			rec.LastNumIn = seqNo
		}
	}
	return nil
}

// Recover returns the raw frames with startSeq <= seq <= endSeq in order.
func (s *Store) Recover(sessionKey int64, dir journal.Direction, startSeq, endSeq int) ([][]byte, error) {
	if endSeq <= 0 {
		endSeq = math.MaxInt32
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var seqs []int
	for k := range s.messages {
		if k.session == sessionKey && k.dir == dir && k.seq >= startSeq && k.seq <= endSeq {
			seqs = append(seqs, k.seq)
		}
	}
	sort.Ints(seqs)

	out := make([][]byte, 0, len(seqs))
	for _, seq := range seqs {
		out = append(out, s.messages[msgKey{session: sessionKey, dir: dir, seq: seq}])
	}
	return out, nil
}

// Entries dumps journaled frames in insertion order.
func (s *Store) Entries(sessionKey int64, dir *journal.Direction) ([]journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []journal.Entry
	for _, k := range s.order {
		if sessionKey != 0 && k.session != sessionKey {
			continue
		}
		if dir != nil && k.dir != *dir {
			continue
		}
		out = append(out, journal.Entry{
			SeqNum:     k.seq,
			SessionKey: k.session,
			Direction:  k.dir,
			Raw:        s.messages[k],
		})
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
