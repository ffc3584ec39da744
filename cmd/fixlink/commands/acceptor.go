package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/fixlink/pkg/config"
	"github.com/marmos91/fixlink/pkg/session"
)

var acceptorCmd = &cobra.Command{
	Use:   "acceptor",
	Short: "Run an acceptor endpoint",
	Long: `Listen for initiators on the configured address. Every comp-id
pair known to the journal (or newly seen) gets its own session; sequence
numbers survive restarts through the journal.

Examples:
  fixlink acceptor --config config.yaml`,
	RunE: runAcceptor,
}

func runAcceptor(cmd *cobra.Command, args []string) error {
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

	acceptor := session.NewAcceptor(engine, logHandler{}, connectionOptions(cfg.Session, m))
	return acceptor.ListenAndServe(ctx, cfg.Session.Host, cfg.Session.Port)
}
