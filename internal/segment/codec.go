package segment

import (
	"log/slog"

	"golang.org/x/text/unicode/norm"
)

// Part is one raw fragment of an inbound platform message before decoding.
// Payload keys and value shapes vary by kind; the codec extracts only the
// field the kind defines.
type Part struct {
	Kind    string
	Payload map[string]any
}

// Codec decomposes raw message parts into ordered segment drafts.
type Codec struct {
	logger *slog.Logger
}

// NewCodec returns a codec logging through the given logger.
// A nil logger falls back to slog.Default.
func NewCodec(logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{logger: logger}
}

// Decompose converts parts into drafts in input order.
//
// A part with an unrecognized kind, a missing payload field, or a
// non-string payload value is skipped with a warning; the remaining parts
// are still decoded. One bad part never discards the whole message.
// Text content is normalized to Unicode NFC so equal-looking strings
// compare and sort identically in storage.
func (c *Codec) Decompose(parts []Part) []Draft {
	drafts := make([]Draft, 0, len(parts))
	for _, p := range parts {
		kind, ok := ParseKind(p.Kind)
		if !ok {
			c.logger.Warn("skip segment with unrecognized kind", "kind", p.Kind)
			continue
		}
		field := payloadField(kind)
		raw, ok := p.Payload[field]
		if !ok {
			c.logger.Warn("skip segment missing payload field",
				"kind", kind, "field", field)
			continue
		}
		content, ok := raw.(string)
		if !ok {
			c.logger.Warn("skip segment with non-string payload",
				"kind", kind, "field", field)
			continue
		}
		if kind == KindText {
			content = norm.NFC.String(content)
		}
		drafts = append(drafts, Draft{Kind: kind, Content: content})
	}
	return drafts
}
