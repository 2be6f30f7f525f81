// Package ingest turns inbound chat messages into stored segments.
//
// The pipeline is lossy by design at the segment level and lossless at the
// message level: a segment that cannot be interpreted or inserted is logged
// and skipped while its siblings continue. Only an unrenderable message time
// aborts a whole message.
package ingest

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ebisawa/chatrelic/internal/metrics"
	"github.com/ebisawa/chatrelic/internal/segment"
	"github.com/ebisawa/chatrelic/internal/store"
)

// NameResolver maps a user id to a display name within a channel.
//
// Resolution is best effort and never errors; every implementation must
// fall back to the decimal user id when nothing better is known.
type NameResolver interface {
	Resolve(ctx context.Context, channelID, userID int64) string
}

// ResolverFunc adapts a function to the NameResolver interface.
type ResolverFunc func(ctx context.Context, channelID, userID int64) string

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, channelID, userID int64) string {
	return f(ctx, channelID, userID)
}

// IDResolver resolves every user to their decimal id. It is the end of
// every fallback chain and the default when no platform client is wired.
type IDResolver struct{}

// Resolve returns userID in decimal.
func (IDResolver) Resolve(_ context.Context, _, userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// MediaResolver localizes a platform file reference to a usable path.
type MediaResolver interface {
	Localize(ctx context.Context, kind segment.Kind, ref string) (string, error)
}

// NopMediaResolver returns every reference unchanged.
type NopMediaResolver struct{}

// Localize returns ref as is.
func (NopMediaResolver) Localize(_ context.Context, _ segment.Kind, ref string) (string, error) {
	return ref, nil
}

// Uploader publishes a local file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// NopUploader returns the local path unchanged. With no object storage
// configured nothing is lost, there is just no public URL.
type NopUploader struct{}

// Upload returns path as is.
func (NopUploader) Upload(_ context.Context, path string) (string, error) {
	return path, nil
}

// Notifier sends a message into a channel. Implementations wrap the chat
// platform client; text is required, imageURL may be empty.
type Notifier interface {
	Notify(ctx context.Context, channelID int64, text, imageURL string) error
}

// InboundMessage is one platform message addressed to a channel.
type InboundMessage struct {
	ChannelID int64
	MessageID int64
	SenderID  int64
	Time      segment.TimeRef
	Parts     []segment.Part
}

// Ingestor decomposes, interprets and persists inbound messages.
type Ingestor struct {
	store    *store.Store
	botID    int64
	names    NameResolver
	codec    *segment.Codec
	clock    segment.Clock
	media    MediaResolver
	uploader Uploader
	logger   *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithClock sets the clock used for default message times.
func WithClock(c segment.Clock) Option {
	return func(in *Ingestor) { in.clock = c }
}

// WithCodec sets the part codec.
func WithCodec(c *segment.Codec) Option {
	return func(in *Ingestor) { in.codec = c }
}

// WithMediaResolver sets the media localizer.
func WithMediaResolver(m MediaResolver) Option {
	return func(in *Ingestor) { in.media = m }
}

// WithUploader sets the media uploader.
func WithUploader(u Uploader) Option {
	return func(in *Ingestor) { in.uploader = u }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(in *Ingestor) { in.logger = l }
}

// New creates an Ingestor writing to s. botID identifies the bot's own
// account; it is the sender of record for outbound messages. names must
// not be nil.
func New(s *store.Store, botID int64, names NameResolver, opts ...Option) *Ingestor {
	in := &Ingestor{
		store:    s,
		botID:    botID,
		names:    names,
		clock:    segment.SystemClock{},
		media:    NopMediaResolver{},
		uploader: NopUploader{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.codec == nil {
		in.codec = segment.NewCodec(in.logger)
	}
	return in
}

// HandleMessage persists every interpretable segment of msg.
//
// All failure modes are logged rather than returned: a bad segment is
// skipped, a failed insert is skipped, and only an unrenderable message
// time aborts the message.
func (in *Ingestor) HandleMessage(ctx context.Context, msg InboundMessage) {
	ts, err := msg.Time.Render(in.clock)
	if err != nil {
		in.logger.Error("render message time",
			"channel", msg.ChannelID,
			"message_id", msg.MessageID,
			"error", err)
		return
	}

	senderName := in.names.Resolve(ctx, msg.ChannelID, msg.SenderID)

	for _, draft := range in.codec.Decompose(msg.Parts) {
		content, interpretation, ok := in.interpret(ctx, msg.ChannelID, draft)
		if !ok {
			continue
		}
		seg := segment.Segment{
			MessageID:      msg.MessageID,
			Timestamp:      ts,
			SenderID:       msg.SenderID,
			SenderName:     senderName,
			Kind:           draft.Kind,
			Content:        content,
			Interpretation: interpretation,
		}
		if err := in.store.Insert(ctx, msg.ChannelID, seg); err != nil {
			metrics.SegmentInsertFailures.Inc()
			in.logger.Error("insert segment",
				"channel", msg.ChannelID,
				"message_id", msg.MessageID,
				"kind", draft.Kind,
				"error", err)
			continue
		}
		metrics.SegmentsInserted.WithLabelValues(string(draft.Kind)).Inc()
	}
}

// RecordOutbound persists text the bot itself sent to a channel. Outbound
// messages carry message id 0, the bot as sender and the current time.
func (in *Ingestor) RecordOutbound(ctx context.Context, channelID int64, text string) {
	in.HandleMessage(ctx, InboundMessage{
		ChannelID: channelID,
		MessageID: 0,
		SenderID:  in.botID,
		Parts: []segment.Part{
			{Kind: "text", Payload: map[string]any{"text": text}},
		},
	})
}

// interpret computes the stored (content, interpretation) pair for one
// draft. ok is false when the draft must be dropped.
func (in *Ingestor) interpret(ctx context.Context, channelID int64, d segment.Draft) (string, string, bool) {
	switch d.Kind {
	case segment.KindText:
		return d.Content, "text", true
	case segment.KindShare:
		return d.Content, "url", true
	case segment.KindVideo:
		return d.Content, "not supported", true
	case segment.KindReply:
		return d.Content, "message_id", true
	case segment.KindAt:
		target, err := strconv.ParseInt(d.Content, 10, 64)
		if err != nil {
			in.logger.Error("mention target is not an integer",
				"channel", channelID,
				"content", d.Content)
			return "", "", false
		}
		return strconv.FormatInt(target, 10), in.names.Resolve(ctx, channelID, target), true
	case segment.KindImage, segment.KindRecord:
		return in.interpretMedia(ctx, d)
	default:
		// contact, reply-chain forwards and nodes carry an id with no
		// further reading.
		return d.Content, "", true
	}
}

// interpretMedia localizes and optionally publishes a media reference.
// Only absolute local paths are offered to the uploader; remote references
// stay as they are with an empty interpretation.
func (in *Ingestor) interpretMedia(ctx context.Context, d segment.Draft) (string, string, bool) {
	path, err := in.media.Localize(ctx, d.Kind, d.Content)
	if err != nil {
		in.logger.Warn("localize media",
			"kind", d.Kind,
			"ref", d.Content,
			"error", err)
		return d.Content, "", true
	}
	if !strings.HasPrefix(path, "/") {
		return path, "", true
	}
	url, err := in.uploader.Upload(ctx, path)
	if err != nil {
		in.logger.Warn("upload media",
			"path", path,
			"error", err)
		return path, "", true
	}
	return path, url, true
}
