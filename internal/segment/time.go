package segment

import (
	"fmt"
	"time"
)

// TimeLayout is the sortable timestamp layout used for every stored row.
// Lexicographic order equals chronological order, which the distinct-time
// window queries rely on.
const TimeLayout = "2006-01-02 15:04:05"

// storeZone is the fixed civil-time zone timestamps are rendered in.
// The deployment's audience lives in UTC+8; using one fixed zone keeps
// stored strings comparable regardless of host timezone.
var storeZone = time.FixedZone("UTC+8", 8*60*60)

// Clock supplies wall time. Production code uses SystemClock; tests inject
// a deterministic implementation.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FormatTime renders t in the store zone and layout.
func FormatTime(t time.Time) string {
	return t.In(storeZone).Format(TimeLayout)
}

// FormatUnix converts a unix timestamp in seconds to the store layout.
// Negative values (before 1970) are rejected.
func FormatUnix(sec int64) (string, error) {
	if sec < 0 {
		return "", fmt.Errorf("unix timestamp before 1970: %d", sec)
	}
	return FormatTime(time.Unix(sec, 0)), nil
}

// TimeRef selects where a stored timestamp comes from: a platform-supplied
// unix timestamp, an already-rendered wall string, or (zero value) the
// injected clock. Conversion is one-way; the store only ever holds the
// rendered layout.
type TimeRef struct {
	mode timeMode
	unix int64
	wall string
}

type timeMode uint8

const (
	timeNow timeMode = iota
	timeUnix
	timeWall
)

// UnixTime references a platform unix timestamp in seconds.
func UnixTime(sec int64) TimeRef { return TimeRef{mode: timeUnix, unix: sec} }

// WallTime references an already-rendered store-layout timestamp.
func WallTime(s string) TimeRef { return TimeRef{mode: timeWall, wall: s} }

// Render produces the stored timestamp string for this reference.
func (r TimeRef) Render(c Clock) (string, error) {
	switch r.mode {
	case timeUnix:
		return FormatUnix(r.unix)
	case timeWall:
		return r.wall, nil
	default:
		return FormatTime(c.Now()), nil
	}
}
