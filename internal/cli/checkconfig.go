package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebisawa/chatrelic/internal/config"
)

// NewCheckConfigCommand creates the check-config command.
func NewCheckConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and print a summary",
		Long: `Validate the configuration file and print the normalized settings.

Schema violations are reported with their YAML positions. Exit code 2
means the configuration would not start the daemon.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckConfig(rootOpts, cmd)
		},
	}

	return cmd
}

func runCheckConfig(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration invalid", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration OK: %s\n", opts.ConfigPath)
	fmt.Fprintf(out, "  bot id:       %d\n", cfg.Bot.ID)
	fmt.Fprintf(out, "  database:     %s (max %d conns)\n", cfg.Database.Path, cfg.Database.MaxConnections)
	fmt.Fprintf(out, "  log table:    %s\n", cfg.Database.LogTableName)
	fmt.Fprintf(out, "  table prefix: %s\n", cfg.Database.GroupTablePrefix)
	if cfg.Debug.Listen != "" {
		fmt.Fprintf(out, "  debug listen: %s\n", cfg.Debug.Listen)
	} else {
		fmt.Fprintf(out, "  debug listen: disabled\n")
	}
	for _, room := range cfg.Rooms {
		if room.Live != nil {
			fmt.Fprintf(out, "  room %d: %d known members, watches live room %s every %s\n",
				room.ID, len(room.KnownMembers), room.Live.RoomID,
				time.Duration(room.Live.PollInterval))
		} else {
			fmt.Fprintf(out, "  room %d: %d known members\n",
				room.ID, len(room.KnownMembers))
		}
	}
	return nil
}
