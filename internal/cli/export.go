package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ebisawa/chatrelic/internal/config"
	"github.com/ebisawa/chatrelic/internal/store"
)

// ExportOptions holds flags for the export commands.
type ExportOptions struct {
	*RootOptions
	Channel int64
	Last    int
	Out     string
}

// NewExportHistoryCommand creates the export-history command.
func NewExportHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export-history",
		Short: "Export a channel's recent segments to CSV",
		Long: `Export a channel's recent segments to CSV.

Selects the segments of the --last most-recent distinct timestamps,
oldest first, and writes them with a header row. The archive itself is
untouched; delivering or deleting the file is up to the caller.

Example:
  chatrelic export-history --channel 123456 --last 200 --out history.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd, func(st *store.Store) store.Query {
				return st.HistoryQuery(opts.Channel, opts.Last)
			})
		},
	}

	cmd.Flags().Int64Var(&opts.Channel, "channel", 0, "channel id (required)")
	_ = cmd.MarkFlagRequired("channel")
	cmd.Flags().IntVar(&opts.Last, "last", 100, "number of most-recent distinct timestamps")
	cmd.Flags().StringVar(&opts.Out, "out", "", "destination CSV file (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// NewExportLogCommand creates the export-log command.
func NewExportLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export-log",
		Short: "Export recent operation log entries to CSV",
		Long: `Export recent operation log entries to CSV.

Selects the entries of the --last most-recent distinct timestamps,
oldest first, and writes them with a header row.

Example:
  chatrelic export-log --last 50 --out bot_log.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd, func(st *store.Store) store.Query {
				return st.LogQuery(opts.Last)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Last, "last", 100, "number of most-recent distinct timestamps")
	cmd.Flags().StringVar(&opts.Out, "out", "", "destination CSV file (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command, query func(*store.Store) store.Query) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load configuration", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("close store", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := st.ExportCSV(ctx, query(st), opts.Out); err != nil {
		return WrapExitError(ExitCommandError, "export csv", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s.\n", opts.Out)
	return nil
}
