package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/fixlink/pkg/config"
	"github.com/marmos91/fixlink/pkg/journal"
)

var (
	journalSession   int64
	journalDirection string
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect a message journal",
	Long: `Dump the sessions and frames of a journal. SOH delimiters are
rendered as '|' for readability.

Examples:
  fixlink journal --config config.yaml
  fixlink journal --config config.yaml --session 1 --direction outbound`,
	RunE: runJournal,
}

func init() {
	journalCmd.Flags().Int64Var(&journalSession, "session", 0, "restrict to one session key (0 = all)")
	journalCmd.Flags().StringVar(&journalDirection, "direction", "", "restrict to one direction (inbound or outbound)")
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	store, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.Sessions()
	if err != nil {
		return err
	}
	fmt.Println("Sessions:")
	for _, s := range sessions {
		fmt.Printf("  key=%d target=%s sender=%s last_out=%d last_in=%d\n",
			s.Key, s.TargetCompID, s.SenderCompID, s.LastNumOut, s.LastNumIn)
	}

	var dir *journal.Direction
	switch strings.ToLower(journalDirection) {
	case "":
	case "inbound":
		d := journal.Inbound
		dir = &d
	case "outbound":
		d := journal.Outbound
		dir = &d
	default:
		return fmt.Errorf("unknown direction %q (want inbound or outbound)", journalDirection)
	}

	entries, err := store.Entries(journalSession, dir)
	if err != nil {
		return err
	}

	fmt.Println("Messages:")
	for _, e := range entries {
		fmt.Printf("  [%d] %s session=%d %s\n",
			e.SeqNum, e.Direction, e.SessionKey,
			strings.ReplaceAll(string(e.Raw), "\x01", "|"))
	}
	return nil
}
