package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/fixlink/pkg/journal"
	"github.com/marmos91/fixlink/pkg/journal/journaltest"
)

func TestBadgerStoreInMemory(t *testing.T) {
	journaltest.Run(t, func(t *testing.T) journal.Store {
		s, err := Open("", true)
		require.NoError(t, err)
		return s
	})
}

func TestBadgerStoreOnDisk(t *testing.T) {
	journaltest.Run(t, func(t *testing.T) journal.Store {
		s, err := Open(t.TempDir(), false)
		require.NoError(t, err)
		return s
	})
}

func TestBadgerStoreReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, false)
	require.NoError(t, err)

	rec, err := s.CreateSession("T1", "S1")
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Persist(journaltest.Frame(i, "58=x"), rec.Key, journal.Outbound))
	}
	require.NoError(t, s.Close())

	s2, err := Open(dir, false)
	require.NoError(t, err)
	defer s2.Close()

	sessions, err := s2.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 3, sessions[0].LastNumOut)

	// Session keys keep incrementing after reopen.
	rec2, err := s2.CreateSession("T2", "S2")
	require.NoError(t, err)
	assert.Greater(t, rec2.Key, rec.Key)
}
