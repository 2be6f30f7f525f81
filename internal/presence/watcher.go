// Package presence watches live rooms and notifies chat channels on
// liveness edges.
//
// Each configured room runs its own poll loop; a slow or failing room
// never delays another. Notifications are at-most-once per edge: a failed
// send is logged and the transition commits anyway, it is never retried.
package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ebisawa/chatrelic/internal/ident"
	"github.com/ebisawa/chatrelic/internal/ingest"
	"github.com/ebisawa/chatrelic/internal/metrics"
)

// DefaultPollInterval is used when a room does not configure its own.
const DefaultPollInterval = 60 * time.Second

// RoomStatus is one probe observation.
type RoomStatus struct {
	Exists      bool
	Live        bool
	Title       string
	AreaName    string
	Description string
	Keyframe    string
	UserCover   string
	Online      int64
	Attention   int64
}

// Probe checks a live room. Implemented by bilibili.Client.
type Probe interface {
	Status(ctx context.Context, roomID string) (RoomStatus, error)
}

// Room binds one live room to the chat channel it reports into.
type Room struct {
	ChannelID      int64
	RoomID         string
	OnlineMessage  string
	OfflineMessage string
	PollInterval   time.Duration
}

// Watcher polls rooms and raises edge notifications.
type Watcher struct {
	probe    Probe
	notifier ingest.Notifier
	rooms    []Room
	cells    []*stateCell
	tokens   ident.Generator
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithTokenSource sets the notification token generator.
func WithTokenSource(g ident.Generator) Option {
	return func(w *Watcher) { w.tokens = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a Watcher over rooms. Every room starts in Init.
func New(probe Probe, notifier ingest.Notifier, rooms []Room, opts ...Option) *Watcher {
	w := &Watcher{
		probe:    probe,
		notifier: notifier,
		rooms:    rooms,
		cells:    make([]*stateCell, len(rooms)),
		tokens:   ident.UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for i := range w.cells {
		w.cells[i] = &stateCell{}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// RoomState reports the current state of the i-th configured room.
func (w *Watcher) RoomState(i int) State {
	return w.cells[i].load()
}

// Run polls every room until ctx is done. The first tick of each room
// fires immediately; in-flight notifications are abandoned on shutdown.
func (w *Watcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := range w.rooms {
		wg.Add(1)
		go func(room Room, cell *stateCell) {
			defer wg.Done()
			w.watchRoom(ctx, room, cell)
		}(w.rooms[i], w.cells[i])
	}
	wg.Wait()
}

func (w *Watcher) watchRoom(ctx context.Context, room Room, cell *stateCell) {
	interval := room.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		w.tick(ctx, room, cell)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// tick runs one observation. Probe failures and unknown rooms skip the
// tick entirely; the state machine only advances on a real observation.
func (w *Watcher) tick(ctx context.Context, room Room, cell *stateCell) {
	log := w.logger.With("room", room.RoomID)

	status, err := w.probe.Status(ctx, room.RoomID)
	if err != nil {
		metrics.PollTicks.WithLabelValues(room.RoomID, "probe_error").Inc()
		log.Warn("probe live room", "error", err)
		return
	}
	if !status.Exists {
		metrics.PollTicks.WithLabelValues(room.RoomID, "missing").Inc()
		log.Warn("live room does not exist")
		return
	}

	state := cell.load()
	if state == StateTrap {
		metrics.PollTicks.WithLabelValues(room.RoomID, "trap").Inc()
		log.Error("presence state machine trapped")
		return
	}

	next, event := step(state, status.Live)
	cell.store(next)
	metrics.PollTicks.WithLabelValues(room.RoomID, "ok").Inc()
	if event == EventNone {
		return
	}
	w.notify(ctx, log, room, event, status)
}

// notify sends one edge notification. The transition has already
// committed, so a send failure means this edge is lost, not replayed.
func (w *Watcher) notify(ctx context.Context, log *slog.Logger, room Room, event Event, status RoomStatus) {
	log = log.With("event", w.tokens.Generate(), "edge", event.String())

	var text, image string
	switch event {
	case EventWentLive:
		text = RenderOnline(room.OnlineMessage, room.RoomID, status)
		image = coverImage(status)
	case EventWentOffline:
		text = room.OfflineMessage
	}
	if text == "" {
		// No offline message configured means silence on that edge.
		log.Debug("no message configured for edge")
		return
	}

	if err := w.notifier.Notify(ctx, room.ChannelID, text, image); err != nil {
		log.Error("send presence notification", "error", err)
		return
	}
	metrics.Notifications.WithLabelValues(room.RoomID, event.String()).Inc()
	log.Info("presence notification sent")
}
