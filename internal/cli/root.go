// Package cli implements the chatrelic command surface: the presence
// daemon, event feed replay, CSV exports, and configuration checks.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the chatrelic CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chatrelic",
		Short: "Group message archive and presence notification daemon",
		Long:  "chatrelic archives group chat messages as typed segments in SQLite,\nreconciles message recalls, and watches live rooms for presence changes.",
		// Errors surface once, printed by main with the exit code.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath(), "path to YAML configuration")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewExportHistoryCommand(opts))
	cmd.AddCommand(NewExportLogCommand(opts))
	cmd.AddCommand(NewCheckConfigCommand(opts))
	cmd.AddCommand(NewRoomCommand(opts))

	return cmd
}

// defaultConfigPath honors CHATRELIC_CONFIG so dev shells can point every
// command at an alternate file without repeating --config.
func defaultConfigPath() string {
	if v := os.Getenv("CHATRELIC_CONFIG"); v != "" {
		return v
	}
	return "chatrelic.yaml"
}
