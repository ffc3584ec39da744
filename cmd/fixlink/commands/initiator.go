package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/fixlink/internal/logger"
	"github.com/marmos91/fixlink/pkg/config"
	"github.com/marmos91/fixlink/pkg/session"
)

var initiatorCmd = &cobra.Command{
	Use:   "initiator",
	Short: "Run an initiator endpoint",
	Long: `Dial the configured acceptor, exchange Logon and keep the session
alive until interrupted. Application messages received from the peer are
logged.

Examples:
  fixlink initiator --config config.yaml
  FIXLINK_SESSION_SENDER_COMP_ID=CLIENT fixlink initiator --config config.yaml`,
	RunE: runInitiator,
}

func runInitiator(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}

	store, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := session.NewEngine(store)
	if err != nil {
		return err
	}

	m := setupMetrics(cfg.Metrics)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fixInit, err := session.NewInitiator(
		engine,
		cfg.Session.SenderCompID,
		cfg.Session.TargetCompID,
		cfg.Session.Host,
		cfg.Session.Port,
		logHandler{},
		connectionOptions(cfg.Session, m),
	)
	if err != nil {
		return err
	}

	if err := fixInit.Connect(ctx); err != nil {
		return err
	}
	if err := fixInit.Logon(); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")
	if err := fixInit.Logout(""); err != nil {
		logger.Warn("logout failed", logger.KeyError, err)
	}
	fixInit.Disconnect()
	return nil
}
