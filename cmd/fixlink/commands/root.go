// Package commands implements the fixlink CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fixlink",
	Short: "fixlink - FIX 4.4 session engine",
	Long: `fixlink speaks the FIX 4.4 session layer over a persistent TCP
connection: framing and checksums, sequence-number discipline, heartbeats,
resend handling with gap fills, and a durable per-session message journal.

Run an endpoint with "fixlink initiator" or "fixlink acceptor", and inspect
a journal with "fixlink journal".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Called once from main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initiatorCmd)
	rootCmd.AddCommand(acceptorCmd)
	rootCmd.AddCommand(journalCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
