// Package journaltest runs the Store conformance suite against a backend.
// Every journal backend must pass exactly the same contract, so the suite
// lives here and the backend test files only provide a constructor.
package journaltest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/fixlink/pkg/journal"
)

// Frame builds a minimal journalable frame carrying seqNum.
func Frame(seqNum int, body string) []byte {
	return []byte(fmt.Sprintf("8=FIX.4.4\x019=30\x0135=AB\x0134=%d\x01%s\x0110=000\x01", seqNum, body))
}

// Run executes the conformance suite. newStore must return a fresh, empty
// store for every call.
func Run(t *testing.T, newStore func(t *testing.T) journal.Store) {
	t.Run("SessionRegistry", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		rec, err := s.CreateSession("T1", "S1")
		require.NoError(t, err)
		assert.NotZero(t, rec.Key)
		assert.Equal(t, "T1", rec.TargetCompID)
		assert.Equal(t, "S1", rec.SenderCompID)

		_, err = s.CreateSession("T2", "S2")
		require.NoError(t, err)

		_, err = s.CreateSession("T1", "S1")
		assert.ErrorIs(t, err, journal.ErrSessionExists)

		sessions, err := s.Sessions()
		require.NoError(t, err)
		assert.Len(t, sessions, 2)
	})

	t.Run("PersistAndRecover", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		rec, err := s.CreateSession("T1", "S1")
		require.NoError(t, err)

		for i := 1; i <= 5; i++ {
			require.NoError(t, s.Persist(Frame(i, fmt.Sprintf("58=msg%d", i)), rec.Key, journal.Outbound))
		}

		frames, err := s.Recover(rec.Key, journal.Outbound, 2, 4)
		require.NoError(t, err)
		require.Len(t, frames, 3)
		assert.Equal(t, Frame(2, "58=msg2"), frames[0])
		assert.Equal(t, Frame(4, "58=msg4"), frames[2])

		// endSeq 0 means "through the latest".
		frames, err = s.Recover(rec.Key, journal.Outbound, 1, 0)
		require.NoError(t, err)
		assert.Len(t, frames, 5)

		// The other direction is empty.
		frames, err = s.Recover(rec.Key, journal.Inbound, 1, 0)
		require.NoError(t, err)
		assert.Empty(t, frames)
	})

	t.Run("DuplicateSeqNo", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		rec, err := s.CreateSession("T1", "S1")
		require.NoError(t, err)

		require.NoError(t, s.Persist(Frame(7, "58=a"), rec.Key, journal.Outbound))
		err = s.Persist(Frame(7, "58=b"), rec.Key, journal.Outbound)
		assert.ErrorIs(t, err, journal.ErrDuplicateSeqNo)

		// The same seq in the other direction is a distinct key.
		require.NoError(t, s.Persist(Frame(7, "58=c"), rec.Key, journal.Inbound))
	})

	t.Run("CountersAdvance", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		rec, err := s.CreateSession("T1", "S1")
		require.NoError(t, err)

		require.NoError(t, s.Persist(Frame(1, "58=a"), rec.Key, journal.Outbound))
		require.NoError(t, s.Persist(Frame(2, "58=b"), rec.Key, journal.Outbound))
		require.NoError(t, s.Persist(Frame(9, "58=c"), rec.Key, journal.Inbound))

		sessions, err := s.Sessions()
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, 2, sessions[0].LastNumOut)
		assert.Equal(t, 9, sessions[0].LastNumIn)
	})

	t.Run("MissingSeqNumRejected", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		rec, err := s.CreateSession("T1", "S1")
		require.NoError(t, err)

		err = s.Persist([]byte("8=FIX.4.4\x0135=AB\x0110=000\x01"), rec.Key, journal.Outbound)
		assert.ErrorIs(t, err, journal.ErrMissingSeqNum)
	})

	t.Run("Entries", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		rec1, err := s.CreateSession("T1", "S1")
		require.NoError(t, err)
		rec2, err := s.CreateSession("T2", "S2")
		require.NoError(t, err)

		require.NoError(t, s.Persist(Frame(1, "58=a"), rec1.Key, journal.Outbound))
		require.NoError(t, s.Persist(Frame(1, "58=b"), rec1.Key, journal.Inbound))
		require.NoError(t, s.Persist(Frame(1, "58=c"), rec2.Key, journal.Outbound))

		all, err := s.Entries(0, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		bySession, err := s.Entries(rec1.Key, nil)
		require.NoError(t, err)
		assert.Len(t, bySession, 2)

		dir := journal.Outbound
		byDir, err := s.Entries(rec1.Key, &dir)
		require.NoError(t, err)
		require.Len(t, byDir, 1)
		assert.Equal(t, journal.Outbound, byDir[0].Direction)
		assert.Equal(t, 1, byDir[0].SeqNum)
	})
}
