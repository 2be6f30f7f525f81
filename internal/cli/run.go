package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebisawa/chatrelic/internal/bilibili"
	"github.com/ebisawa/chatrelic/internal/config"
	"github.com/ebisawa/chatrelic/internal/presence"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the presence daemon",
		Long: `Start the presence daemon.

Opens the SQLite archive, routes the process log through it, and polls
every configured live room for presence changes. Edge transitions are
announced through the notification log. With debug.listen set, a debug
HTTP listener serves /healthz and Prometheus /metrics.

Example:
  chatrelic run --config ./chatrelic.yaml
  chatrelic run -c ./chatrelic.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(opts, cmd)
		},
	}

	return cmd
}

func runDaemon(opts *RunOptions, cmd *cobra.Command) error {
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

	logger := newLogger(st, opts.Verbose)
	slog.SetDefault(logger)

	rooms := watchedRooms(cfg)
	notifier := &logNotifier{logger: logger}
	probe := bilibili.New()
	watcher := presence.New(probe, notifier, rooms, presence.WithLogger(logger))

	// Use the command's context if available (for testing), otherwise
	// create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	var srv *http.Server
	if cfg.Debug.Listen != "" {
		srv = newDebugServer(cfg.Debug.Listen)
		go func() {
			logger.Info("debug listener started", "addr", cfg.Debug.Listen)
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("debug listener failed", "error", serveErr)
			}
		}()
	}

	logger.Info("presence daemon started",
		"db", cfg.Database.Path, "rooms", len(rooms))
	fmt.Fprintln(cmd.OutOrStdout(), "Daemon started. Press Ctrl-C to stop.")

	if len(rooms) == 0 {
		logger.Warn("no live rooms configured; nothing to watch")
		<-ctx.Done()
	} else {
		watcher.Run(ctx)
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("debug listener shutdown", "error", shutdownErr)
		}
	}

	logger.Info("daemon stopped")
	return nil
}
