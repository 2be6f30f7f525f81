// Package recall reconciles the archive after a message retraction.
//
// The platform deletes the message; the archive does not. Reconciliation
// appends a tombstone naming who retracted whose message, then re-inserts
// the original segments after it so the retracted content stays readable
// in storage order. Nothing is ever updated or deleted.
package recall

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ebisawa/chatrelic/internal/ident"
	"github.com/ebisawa/chatrelic/internal/metrics"
	"github.com/ebisawa/chatrelic/internal/notice"
	"github.com/ebisawa/chatrelic/internal/segment"
)

// SegmentStore is the slice of the store reconciliation needs.
// Implemented by store.Store.
type SegmentStore interface {
	FindByMessageID(ctx context.Context, channelID, messageID int64) ([]segment.Segment, error)
	Insert(ctx context.Context, channelID int64, seg segment.Segment) error
}

// Reconciler replays retracted messages behind a tombstone.
type Reconciler struct {
	store  SegmentStore
	botID  int64
	tokens ident.Generator
	logger *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithTokenSource sets the event token generator.
func WithTokenSource(g ident.Generator) Option {
	return func(r *Reconciler) { r.tokens = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// New creates a Reconciler. botID is the sender of record for tombstones.
func New(s SegmentStore, botID int64, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:  s,
		botID:  botID,
		tokens: ident.UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile handles one retraction notice. operatorName and userName are
// the resolved display names of the retracting member and the original
// sender.
//
// A store read failure propagates. A message with no archived segments is
// warned about and dropped; it may simply never have been persisted. Each
// replayed segment is its own insert: one failure is logged and skipped
// while the rest continue. Running the same notice twice appends a second
// tombstone; duplicates are tolerated, not deduplicated.
func (r *Reconciler) Reconcile(ctx context.Context, n notice.GroupRecall, operatorName, userName string) error {
	log := r.logger.With(
		"event", r.tokens.Generate(),
		"channel", n.GroupID,
		"message_id", n.MessageID)

	originals, err := r.store.FindByMessageID(ctx, n.GroupID, n.MessageID)
	if err != nil {
		metrics.Recalls.WithLabelValues("error").Inc()
		log.Error("find recalled segments", "error", err)
		return fmt.Errorf("reconcile recall: %w", err)
	}
	if len(originals) == 0 {
		metrics.Recalls.WithLabelValues("missing").Inc()
		log.Warn("recalled message not found")
		return nil
	}

	ts, err := segment.FormatUnix(n.Time)
	if err != nil {
		metrics.Recalls.WithLabelValues("error").Inc()
		log.Error("recall notice timestamp", "value", n.Time, "error", err)
		return nil
	}

	content := fmt.Sprintf("%s 撤回了 %s 的消息, id=%d", operatorName, userName, n.MessageID)
	tombstone := segment.Tombstone(r.botID, ts, content)

	replay := make([]segment.Segment, 0, len(originals)+1)
	replay = append(replay, tombstone)
	replay = append(replay, originals...)
	for _, seg := range replay {
		if err := r.store.Insert(ctx, n.GroupID, seg); err != nil {
			metrics.SegmentInsertFailures.Inc()
			log.Error("replay segment",
				"kind", seg.Kind,
				"error", err)
			continue
		}
	}

	metrics.Recalls.WithLabelValues("replayed").Inc()
	return nil
}
