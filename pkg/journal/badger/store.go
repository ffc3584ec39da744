// Package badger implements the journal on a BadgerDB key-value store.
//
// Keys:
//
//	m/<session>/<direction>/<seq>  -> raw frame (fixed-width numeric parts,
//	                                  so lexical order equals numeric order)
//	s/<session>                    -> session record (JSON)
//	i/<target>\x00<sender>         -> session key
//	next_session_key               -> counter
//
// Frames, counter updates and registry rows commit in one transaction, so
// the duplicate-seq guarantee matches the sqlite backend.
package badger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/fixlink/pkg/journal"
)

// Store is a journal.Store backed by BadgerDB.
type Store struct {
	db *badger.DB
}

var _ journal.Store = (*Store)(nil)

// Open opens (or creates) a badger journal under dir. Pass inMemory=true for
// an ephemeral store.
func Open(dir string, inMemory bool) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if inMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger journal %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func keyMsg(session int64, dir journal.Direction, seq int) []byte {
	return []byte(fmt.Sprintf("m/%020d/%d/%020d", session, int(dir), seq))
}

func keyMsgPrefix(session int64, dir journal.Direction) []byte {
	return []byte(fmt.Sprintf("m/%020d/%d/", session, int(dir)))
}

func keySession(session int64) []byte {
	return []byte(fmt.Sprintf("s/%020d", session))
}

func keyCompIndex(target, sender string) []byte {
	k := append([]byte("i/"), target...)
	k = append(k, 0)
	return append(k, sender...)
}

var keyNextSession = []byte("next_session_key")

// Sessions lists every registered session.
func (s *Store) Sessions() ([]journal.SessionRecord, error) {
	var out []journal.SessionRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte("s/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec journal.SessionRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("corrupt session record: %w", err)
				}
				out = append(out, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// CreateSession registers a new comp-id pair.
func (s *Store) CreateSession(targetCompID, senderCompID string) (journal.SessionRecord, error) {
	var rec journal.SessionRecord
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyCompIndex(targetCompID, senderCompID)); err == nil {
			return fmt.Errorf("%w: TargetCompID=%s SenderCompID=%s",
				journal.ErrSessionExists, targetCompID, senderCompID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		key, err := nextSessionKey(txn)
		if err != nil {
			return err
		}
		rec = journal.SessionRecord{Key: key, TargetCompID: targetCompID, SenderCompID: senderCompID}

		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := txn.Set(keySession(key), raw); err != nil {
			return err
		}

		var kb [8]byte
		binary.BigEndian.PutUint64(kb[:], uint64(key))
		return txn.Set(keyCompIndex(targetCompID, senderCompID), kb[:])
	})
	return rec, err
}

func nextSessionKey(txn *badger.Txn) (int64, error) {
	var key int64 = 1
	item, err := txn.Get(keyNextSession)
	switch {
	case err == nil:
		err = item.Value(func(val []byte) error {
			key = int64(binary.BigEndian.Uint64(val))
			return nil
		})
		if err != nil {
			return 0, err
		}
	case !errors.Is(err, badger.ErrKeyNotFound):
		return 0, err
	}

	var kb [8]byte
	binary.BigEndian.PutUint64(kb[:], uint64(key+1))
	if err := txn.Set(keyNextSession, kb[:]); err != nil {
		return 0, err
	}
	return key, nil
}

// Persist journals one raw frame and advances the session counter in the
// same transaction.
func (s *Store) Persist(raw []byte, sessionKey int64, dir journal.Direction) error {
	seqNo, err := journal.SeqNumFromRaw(raw)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		mk := keyMsg(sessionKey, dir, seqNo)
		if _, err := txn.Get(mk); err == nil {
			return fmt.Errorf("%w: seq=%d session=%d direction=%s",
				journal.ErrDuplicateSeqNo, seqNo, sessionKey, dir)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(mk, raw); err != nil {
			return err
		}

		item, err := txn.Get(keySession(sessionKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // unregistered session, nothing to advance
		}
		if err != nil {
			return err
		}
		var rec journal.SessionRecord
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
			return err
		}
		if dir == journal.Outbound {
			rec.LastNumOut = seqNo
		} else {
			rec.LastNumIn = seqNo
		}
		out, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(keySession(sessionKey), out)
	})
}

// Recover returns the raw frames with startSeq <= seq <= endSeq in order.
func (s *Store) Recover(sessionKey int64, dir journal.Direction, startSeq, endSeq int) ([][]byte, error) {
	if endSeq <= 0 {
		endSeq = math.MaxInt32
	}

	var out [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := keyMsgPrefix(sessionKey, dir)
		for it.Seek(keyMsg(sessionKey, dir, startSeq)); it.ValidForPrefix(prefix); it.Next() {
			var seq int
			if _, err := fmt.Sscanf(string(it.Item().Key()[len(prefix):]), "%d", &seq); err != nil {
				return fmt.Errorf("corrupt journal key %q: %w", it.Item().Key(), err)
			}
			if seq > endSeq {
				break
			}
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, raw)
		}
		return nil
	})
	return out, err
}

// Entries dumps journaled frames ordered by (session, direction, seq).
func (s *Store) Entries(sessionKey int64, dir *journal.Direction) ([]journal.Entry, error) {
	var out []journal.Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("m/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session int64
			var d, seq int
			if _, err := fmt.Sscanf(string(it.Item().Key()), "m/%d/%d/%d", &session, &d, &seq); err != nil {
				return fmt.Errorf("corrupt journal key %q: %w", it.Item().Key(), err)
			}
			if sessionKey != 0 && session != sessionKey {
				continue
			}
			if dir != nil && journal.Direction(d) != *dir {
				continue
			}
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, journal.Entry{
				SeqNum:     seq,
				SessionKey: session,
				Direction:  journal.Direction(d),
				Raw:        raw,
			})
		}
		return nil
	})
	return out, err
}
