// Package logsink provides a slog.Handler that tees records to a console
// handler and to the store's operational log table.
//
// Database delivery is best effort: a failed append is reported once on the
// console and otherwise disappears. Handle never returns a storage error,
// so diagnostics are never on any operation's critical failure path.
package logsink

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ebisawa/chatrelic/internal/metrics"
	"github.com/ebisawa/chatrelic/internal/segment"
	"github.com/ebisawa/chatrelic/internal/store"
)

// Appender is the slice of the store the handler writes through.
type Appender interface {
	AppendLog(ctx context.Context, e store.LogEntry) error
}

// Handler tees records to console and database.
type Handler struct {
	console slog.Handler
	db      Appender
	clock   segment.Clock
	dbLevel slog.Leveler

	// prefix carries resolved WithAttrs/WithGroup state for the database
	// rendering; the console handler tracks its own copy.
	prefix string
}

// Option configures a Handler.
type Option func(*Handler)

// WithDBLevel sets the minimum level stored in the database.
// Records below it still reach the console handler. Default is Info.
func WithDBLevel(l slog.Leveler) Option {
	return func(h *Handler) { h.dbLevel = l }
}

// WithClock sets the clock used when a record carries no time.
func WithClock(c segment.Clock) Option {
	return func(h *Handler) { h.clock = c }
}

// NewHandler wraps a console handler with database teeing.
// A nil db disables the database side entirely (console only).
func NewHandler(console slog.Handler, db Appender, opts ...Option) *Handler {
	h := &Handler{
		console: console,
		db:      db,
		clock:   segment.SystemClock{},
		dbLevel: slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether either destination wants the record.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.console.Enabled(ctx, level) {
		return true
	}
	return h.db != nil && level >= h.dbLevel.Level()
}

// Handle forwards the record to the console handler and appends it to the
// log table when it meets the database level. A database failure degrades
// to one console error; it is never returned.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var consoleErr error
	if h.console.Enabled(ctx, r.Level) {
		consoleErr = h.console.Handle(ctx, r.Clone())
	}

	if h.db == nil || r.Level < h.dbLevel.Level() {
		return consoleErr
	}

	t := r.Time
	if t.IsZero() {
		t = h.clock.Now()
	}
	entry := store.LogEntry{
		Timestamp: segment.FormatTime(t),
		Level:     r.Level.String(),
		Content:   h.renderContent(r),
	}

	if err := h.db.AppendLog(ctx, entry); err != nil {
		metrics.LogFallbacks.Inc()
		h.reportFallback(ctx, err)
	}

	return consoleErr
}

// WithAttrs returns a handler whose console side carries the attrs and whose
// database rendering prefixes them onto every content line.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.console = h.console.WithAttrs(attrs)
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		appendAttr(&b, "", a)
	}
	clone.prefix = b.String()
	return &clone
}

// WithGroup delegates grouping to the console handler. Database rendering
// flattens groups into dotted keys, which WithAttrs already produces, so
// the group itself only affects subsequent WithAttrs calls on the console
// side.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.console = h.console.WithGroup(name)
	return &clone
}

// renderContent flattens the message and attrs into one self-contained
// content column value.
func (h *Handler) renderContent(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, "", a)
		return true
	})
	return b.String()
}

// reportFallback surfaces a failed database append on the console.
func (h *Handler) reportFallback(ctx context.Context, err error) {
	r := slog.NewRecord(h.clock.Now(), slog.LevelError,
		"write log entry to database failed", 0)
	r.AddAttrs(slog.Any("error", err))
	_ = h.console.Handle(ctx, r)
}

// appendAttr writes one attr as " key=value", flattening groups to dotted
// keys.
func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		groupPrefix := a.Key
		if prefix != "" {
			groupPrefix = prefix + "." + a.Key
		}
		for _, ga := range v.Group() {
			appendAttr(b, groupPrefix, ga)
		}
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	fmt.Fprintf(b, " %s=%v", key, v.Any())
}
