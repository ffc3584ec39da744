package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
session:
  sender_comp_id: CLIENT
  target_comp_id: SERVER
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "CLIENT", cfg.Session.SenderCompID)
	assert.Equal(t, "SERVER", cfg.Session.TargetCompID)

	// Defaults fill everything else.
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "localhost", cfg.Session.Host)
	assert.Equal(t, 9898, cfg.Session.Port)
	assert.Equal(t, "initiator", cfg.Session.Role)
	assert.Equal(t, 30, cfg.Session.HeartbeatPeriod)
	assert.Equal(t, "sqlite", cfg.Journal.Backend)
	assert.Equal(t, "fixlink-journal.db", cfg.Journal.Path)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFullFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
logging:
  level: DEBUG
  format: json
session:
  sender_comp_id: CLIENT
  target_comp_id: SERVER
  host: fix.example.com
  port: 9123
  role: acceptor
  heartbeat_period: 10
journal:
  backend: badger
  path: /var/lib/fixlink/journal
metrics:
  enabled: true
  port: 9091
`))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "fix.example.com", cfg.Session.Host)
	assert.Equal(t, 9123, cfg.Session.Port)
	assert.Equal(t, "acceptor", cfg.Session.Role)
	assert.Equal(t, 10, cfg.Session.HeartbeatPeriod)
	assert.Equal(t, "badger", cfg.Journal.Backend)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9091, cfg.Metrics.Port)
}

func TestLoadValidation(t *testing.T) {
	t.Run("MissingCompIDs", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
session:
  host: localhost
`))
		assert.Error(t, err)
	})

	t.Run("BadRole", func(t *testing.T) {
		_, err := Load(writeConfig(t, minimalConfig+`
  role: spectator
`))
		assert.Error(t, err)
	})

	t.Run("BadBackend", func(t *testing.T) {
		_, err := Load(writeConfig(t, minimalConfig+`
journal:
  backend: papertape
`))
		assert.Error(t, err)
	})

	t.Run("MissingJournalPath", func(t *testing.T) {
		_, err := Load(writeConfig(t, minimalConfig+`
journal:
  backend: sqlite
  path: ""
`))
		assert.Error(t, err)
	})

	t.Run("MemoryBackendNeedsNoPath", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, minimalConfig+`
journal:
  backend: memory
  path: ""
`))
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.Journal.Backend)
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
