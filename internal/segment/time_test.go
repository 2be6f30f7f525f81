package segment

import (
	"testing"
	"time"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestFormatTimeUsesStoreZone(t *testing.T) {
	// 2024-05-01 16:00:00 UTC is 2024-05-02 00:00:00 in UTC+8
	utc := time.Date(2024, 5, 1, 16, 0, 0, 0, time.UTC)
	got := FormatTime(utc)
	want := "2024-05-02 00:00:00"
	if got != want {
		t.Errorf("FormatTime = %q, want %q", got, want)
	}
}

func TestFormatUnix(t *testing.T) {
	got, err := FormatUnix(1714579200) // 2024-05-01 16:00:00 UTC
	if err != nil {
		t.Fatalf("FormatUnix: %v", err)
	}
	if got != "2024-05-02 00:00:00" {
		t.Errorf("FormatUnix = %q", got)
	}
}

func TestFormatUnixRejectsPre1970(t *testing.T) {
	if _, err := FormatUnix(-1); err == nil {
		t.Error("expected error for negative timestamp")
	}
}

func TestTimeRefRender(t *testing.T) {
	clock := fixedClock{t: time.Date(2024, 5, 1, 16, 0, 0, 0, time.UTC)}

	tests := []struct {
		name string
		ref  TimeRef
		want string
	}{
		{name: "zero value uses clock", ref: TimeRef{}, want: "2024-05-02 00:00:00"},
		{name: "unix converts", ref: UnixTime(1714579200), want: "2024-05-02 00:00:00"},
		{name: "wall passes through", ref: WallTime("2023-01-01 08:30:00"), want: "2023-01-01 08:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ref.Render(clock)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimeRefRenderRejectsBadUnix(t *testing.T) {
	if _, err := UnixTime(-5).Render(SystemClock{}); err == nil {
		t.Error("expected error for pre-1970 unix ref")
	}
}

func TestTimestampOrderIsLexicographic(t *testing.T) {
	a := FormatTime(time.Date(2024, 5, 1, 9, 59, 59, 0, time.UTC))
	b := FormatTime(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	if !(a < b) {
		t.Errorf("timestamps not lexicographically ordered: %q >= %q", a, b)
	}
}

func TestTombstone(t *testing.T) {
	seg := Tombstone(424242, "2024-05-02 00:00:00", "someone retracted a message")
	if seg.MessageID != 0 {
		t.Errorf("tombstone MessageID = %d, want 0", seg.MessageID)
	}
	if seg.SenderID != 424242 {
		t.Errorf("tombstone SenderID = %d", seg.SenderID)
	}
	if seg.SenderName != RecallIndicator || seg.Interpretation != RecallIndicator {
		t.Errorf("tombstone sentinel missing: %+v", seg)
	}
	if seg.Kind != KindText {
		t.Errorf("tombstone Kind = %s, want text", seg.Kind)
	}
}
