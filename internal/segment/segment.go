// Package segment defines the stored message segment model and the codec
// that decomposes raw multi-part chat messages into typed segments.
package segment

// Kind identifies the type of one message segment.
//
// The set is closed: unknown kinds never construct a Segment. Decoding an
// unrecognized kind is handled by the codec (skip with a warning), not here.
type Kind string

const (
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindRecord  Kind = "record"
	KindVideo   Kind = "video"
	KindShare   Kind = "share"
	KindAt      Kind = "at"
	KindReply   Kind = "reply"
	KindContact Kind = "contact"
	KindForward Kind = "forward"
	KindNode    Kind = "node"
)

// ParseKind maps a wire kind string to a Kind.
// The second return is false for kinds outside the closed set.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindText, KindImage, KindRecord, KindVideo, KindShare,
		KindAt, KindReply, KindContact, KindForward, KindNode:
		return Kind(s), true
	}
	return "", false
}

// payloadField returns the wire payload field carrying the content for a kind.
func payloadField(k Kind) string {
	switch k {
	case KindText:
		return "text"
	case KindImage, KindRecord, KindVideo:
		return "file"
	case KindAt:
		return "qq"
	case KindShare:
		return "url"
	case KindReply, KindContact, KindForward, KindNode:
		return "id"
	}
	return ""
}

// Segment is one typed fragment of a chat message as stored.
//
// Segments are immutable once written. Rows are ordered by the
// storage-assigned auto id; Timestamp repeats across segments that fan out
// from one source message.
type Segment struct {
	MessageID      int64
	Timestamp      string
	SenderID       int64
	SenderName     string
	Kind           Kind
	Content        string
	Interpretation string
}

// Draft is a decomposed (kind, content) pair before interpretation and
// storage metadata are attached.
type Draft struct {
	Kind    Kind
	Content string
}

// RecallIndicator is the sentinel sender name and interpretation carried by
// tombstone segments that record a retraction.
const RecallIndicator = "RECALL_INDICATOR"

// Tombstone builds the synthetic segment recording that a message was
// retracted. MessageID is always zero so tombstones never collide with a
// real message id lookup.
func Tombstone(botID int64, timestamp, content string) Segment {
	return Segment{
		MessageID:      0,
		Timestamp:      timestamp,
		SenderID:       botID,
		SenderName:     RecallIndicator,
		Kind:           KindText,
		Content:        content,
		Interpretation: RecallIndicator,
	}
}
