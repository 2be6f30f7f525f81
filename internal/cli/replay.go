package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ebisawa/chatrelic/internal/config"
	"github.com/ebisawa/chatrelic/internal/ingest"
	"github.com/ebisawa/chatrelic/internal/notice"
	"github.com/ebisawa/chatrelic/internal/recall"
	"github.com/ebisawa/chatrelic/internal/segment"
)

// maxEventLine bounds a single feed line. Platform events stay well under
// this even with embedded media references.
const maxEventLine = 1 << 20

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
}

// ReplayResult counts what a feed produced.
type ReplayResult struct {
	Lines    int
	Messages int
	Notices  int
	Skipped  int
	Failed   int
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <events-file>",
		Short: "Feed a recorded event log through the archive engine",
		Long: `Feed a recorded platform event log through the archive engine.

Reads line-delimited JSON events, archives group messages as segments,
and dispatches notices (recalls, membership changes, honors) exactly as
a live connection would. Announcements go to the notification log and
are archived as outbound segments. Pass "-" to read from stdin.

Exit codes:
  0 - All events applied
  1 - Some notices failed to apply (store errors)
  2 - Command error (bad config, unreadable feed, etc.)

Examples:
  chatrelic replay ./events.jsonl
  zcat events.jsonl.gz | chatrelic replay -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
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

	roster, err := cfg.Roster()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve member roster", err)
	}
	names := nameResolver(roster)

	ing := ingest.New(st, cfg.Bot.ID, names, ingest.WithLogger(logger))
	notifier := &logNotifier{logger: logger}
	announcer := notice.NewAnnouncer(names, notifier, ing, logger)
	reconciler := recall.New(st, cfg.Bot.ID, recall.WithLogger(logger))
	dispatcher := notice.NewDispatcher(cfg.Bot.ID, names, announcer, reconciler,
		notice.WithLogger(logger))

	var in io.Reader
	if path == "-" {
		in = cmd.InOrStdin()
	} else {
		f, openErr := os.Open(path)
		if openErr != nil {
			return WrapExitError(ExitCommandError, "open events file", openErr)
		}
		defer f.Close()
		in = f
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := feedEvents(ctx, in, ing, dispatcher, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay events", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Replayed %d events: %d messages, %d notices, %d skipped, %d failed.\n",
		result.Lines, result.Messages, result.Notices, result.Skipped, result.Failed)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d notices failed to apply", result.Failed))
	}
	return nil
}

// eventEnvelope is the platform event frame. Message events carry the
// part array; notice events are re-dispatched from the raw line so the
// notice decoder sees the full document.
type eventEnvelope struct {
	PostType    string        `json:"post_type"`
	MessageType string        `json:"message_type"`
	GroupID     int64         `json:"group_id"`
	MessageID   int64         `json:"message_id"`
	UserID      int64         `json:"user_id"`
	Time        int64         `json:"time"`
	Message     []messagePart `json:"message"`
}

type messagePart struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// feedEvents applies each feed line in order. Malformed lines and
// non-group events are skipped and counted; only an unreadable feed
// stops the run.
func feedEvents(ctx context.Context, r io.Reader, ing *ingest.Ingestor, dispatcher *notice.Dispatcher, logger *slog.Logger) (ReplayResult, error) {
	var res ReplayResult
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventLine)

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		res.Lines++

		var env eventEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			res.Skipped++
			logger.Warn("skip undecodable event line", "line", res.Lines, "error", err)
			continue
		}

		switch env.PostType {
		case "message":
			if env.MessageType != "group" {
				res.Skipped++
				continue
			}
			ing.HandleMessage(ctx, inboundFromEnvelope(env))
			res.Messages++
		case "notice":
			// Scanner reuses its buffer; Dispatch keeps the raw bytes
			// past this iteration.
			raw := append([]byte(nil), line...)
			if err := dispatcher.Dispatch(ctx, raw); err != nil {
				res.Failed++
				logger.Error("dispatch notice", "line", res.Lines, "error", err)
				continue
			}
			res.Notices++
		default:
			res.Skipped++
			logger.Warn("skip event with unhandled post_type",
				"line", res.Lines, "post_type", env.PostType)
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read events: %w", err)
	}
	return res, nil
}

func inboundFromEnvelope(env eventEnvelope) ingest.InboundMessage {
	parts := make([]segment.Part, 0, len(env.Message))
	for _, p := range env.Message {
		parts = append(parts, segment.Part{Kind: p.Type, Payload: p.Data})
	}
	return ingest.InboundMessage{
		ChannelID: env.GroupID,
		MessageID: env.MessageID,
		SenderID:  env.UserID,
		Time:      segment.UnixTime(env.Time),
		Parts:     parts,
	}
}
