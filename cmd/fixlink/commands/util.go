package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/fixlink/internal/logger"
	"github.com/marmos91/fixlink/internal/protocol/fix"
	"github.com/marmos91/fixlink/pkg/config"
	"github.com/marmos91/fixlink/pkg/journal"
	journalbadger "github.com/marmos91/fixlink/pkg/journal/badger"
	journalmemory "github.com/marmos91/fixlink/pkg/journal/memory"
	journalsqlite "github.com/marmos91/fixlink/pkg/journal/sqlite"
	"github.com/marmos91/fixlink/pkg/metrics"
	"github.com/marmos91/fixlink/pkg/session"
)

// initLogger configures the process logger from config.
func initLogger(cfg *config.Config) error {
	return logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// openJournal opens the configured journal backend.
func openJournal(cfg config.JournalConfig) (journal.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return journalsqlite.Open(cfg.Path)
	case "badger":
		return journalbadger.Open(cfg.Path, false)
	case "memory":
		return journalmemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
	}
}

// setupMetrics registers the session collectors and, when enabled, serves
// /metrics on the configured port.
func setupMetrics(cfg config.MetricsConfig) *metrics.SessionMetrics {
	if !cfg.Enabled {
		return nil
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewSessionMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("metrics endpoint up", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics endpoint failed", logger.KeyError, err)
		}
	}()
	return m
}

// connectionOptions maps the session config onto connection options.
func connectionOptions(cfg config.SessionConfig, m *metrics.SessionMetrics) session.Options {
	return session.Options{
		HeartbeatPeriod: time.Duration(cfg.HeartbeatPeriod) * time.Second,
		LogonTimeout:    time.Duration(cfg.LogonTimeout) * time.Second,
		Metrics:         m,
	}
}

// logHandler prints application messages; the default handler for the
// example endpoints.
type logHandler struct{}

func (logHandler) OnConnect(c *session.Connection) {
	logger.Info("connected", logger.KeyConnectionID, c.ID())
}

func (logHandler) OnDisconnect(c *session.Connection) {
	logger.Info("disconnected", logger.KeyConnectionID, c.ID(), logger.KeyState, c.State().String())
}

func (logHandler) OnMessage(c *session.Connection, msg *fix.Message) {
	logger.Info("application message",
		logger.KeyConnectionID, c.ID(),
		logger.KeyMsgType, string(msg.Type),
		"body", msg.String())
}
