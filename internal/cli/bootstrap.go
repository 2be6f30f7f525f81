package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ebisawa/chatrelic/internal/config"
	"github.com/ebisawa/chatrelic/internal/ingest"
	"github.com/ebisawa/chatrelic/internal/logsink"
	"github.com/ebisawa/chatrelic/internal/presence"
	"github.com/ebisawa/chatrelic/internal/store"
)

// openStore opens the configured SQLite archive.
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Database.Path,
		store.WithTablePrefix(cfg.Database.GroupTablePrefix),
		store.WithLogTable(cfg.Database.LogTableName),
		store.WithMaxConns(cfg.Database.MaxConnections),
	)
}

// newLogger builds the process logger: a console handler teed into the
// store's log table.
func newLogger(st *store.Store, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	console := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(logsink.NewHandler(console, st))
}

// nameResolver resolves display names from the configured rosters,
// falling back to the decimal sender id.
func nameResolver(roster map[int64]map[int64]string) ingest.NameResolver {
	fallback := ingest.IDResolver{}
	return ingest.ResolverFunc(func(ctx context.Context, channelID, userID int64) string {
		if members, ok := roster[channelID]; ok {
			if name, ok := members[userID]; ok {
				return name
			}
		}
		return fallback.Resolve(ctx, channelID, userID)
	})
}

// watchedRooms converts config entries with a live block into presence
// watcher rooms.
func watchedRooms(cfg *config.Config) []presence.Room {
	rooms := make([]presence.Room, 0, len(cfg.Rooms))
	for _, rc := range cfg.Rooms {
		if rc.Live == nil {
			continue
		}
		rooms = append(rooms, presence.Room{
			ChannelID:      rc.ID,
			RoomID:         rc.Live.RoomID,
			OnlineMessage:  rc.Live.OnlineMessage,
			OfflineMessage: rc.Live.OfflineMessage,
			PollInterval:   time.Duration(rc.Live.PollInterval),
		})
	}
	return rooms
}

// logNotifier delivers outbound notifications to the process log. The
// daemon carries no chat platform connection; the log row is the
// delivery record, durable through the logsink like everything else.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) Notify(_ context.Context, channelID int64, text, imageURL string) error {
	args := []any{"channel", channelID, "text", text}
	if imageURL != "" {
		args = append(args, "image", imageURL)
	}
	n.logger.Info("outbound notification", args...)
	return nil
}
