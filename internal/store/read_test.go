package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ebisawa/chatrelic/internal/segment"
)

func TestLoadRecent_DistinctTimestampWindow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Three message events: the middle one fans out into three segments
	// sharing one timestamp.
	mustInsert(t, s, 42, makeSegment(1, "2024-05-01 10:00:00", segment.KindText, "first"))
	mustInsert(t, s, 42, makeSegment(2, "2024-05-01 10:01:00", segment.KindAt, "99"))
	mustInsert(t, s, 42, makeSegment(2, "2024-05-01 10:01:00", segment.KindText, "multi"))
	mustInsert(t, s, 42, makeSegment(2, "2024-05-01 10:01:00", segment.KindImage, "a.png"))
	mustInsert(t, s, 42, makeSegment(3, "2024-05-01 10:02:00", segment.KindText, "last"))

	tests := []struct {
		name    string
		n       int
		wantIDs []int64
	}{
		{name: "window of 1", n: 1, wantIDs: []int64{3}},
		{name: "window of 2 keeps fanned-out message whole", n: 2, wantIDs: []int64{2, 2, 2, 3}},
		{name: "window of 3 is full history", n: 3, wantIDs: []int64{1, 2, 2, 2, 3}},
		{name: "window larger than history", n: 10, wantIDs: []int64{1, 2, 2, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.LoadRecent(ctx, 42, tt.n)
			if err != nil {
				t.Fatalf("LoadRecent() failed: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d segments, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].MessageID != want {
					t.Errorf("segment[%d].MessageID = %d, want %d", i, got[i].MessageID, want)
				}
			}
		})
	}
}

func TestLoadRecent_AscendingOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Insert out of chronological order; reads must come back ascending.
	mustInsert(t, s, 42, makeSegment(2, "2024-05-01 10:05:00", segment.KindText, "later"))
	mustInsert(t, s, 42, makeSegment(1, "2024-05-01 10:00:00", segment.KindText, "earlier"))

	got, err := s.LoadRecent(ctx, 42, 10)
	if err != nil {
		t.Fatalf("LoadRecent() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Timestamp > got[i].Timestamp {
			t.Errorf("segments not ascending: %q before %q",
				got[i-1].Timestamp, got[i].Timestamp)
		}
	}
}

func TestLoadRecent_StableWithinTimestamp(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, 42, makeSegment(5, "2024-05-01 10:00:00", segment.KindAt, "7"))
	mustInsert(t, s, 42, makeSegment(5, "2024-05-01 10:00:00", segment.KindText, "hello"))
	mustInsert(t, s, 42, makeSegment(5, "2024-05-01 10:00:00", segment.KindImage, "cat.png"))

	got, err := s.LoadRecent(ctx, 42, 1)
	if err != nil {
		t.Fatalf("LoadRecent() failed: %v", err)
	}

	wantKinds := []segment.Kind{segment.KindAt, segment.KindText, segment.KindImage}
	if len(got) != len(wantKinds) {
		t.Fatalf("expected %d segments, got %d", len(wantKinds), len(got))
	}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("segment[%d].Kind = %s, want %s (insertion order lost)", i, got[i].Kind, k)
		}
	}
}

func TestLoadRecent_MissingTableIsEmpty(t *testing.T) {
	s := createTestStore(t)

	got, err := s.LoadRecent(context.Background(), 999, 5)
	if err != nil {
		t.Fatalf("LoadRecent() on missing table: %v", err)
	}
	if got == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no segments, got %d", len(got))
	}
}

func TestFindByMessageID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, 42, makeSegment(100, "2024-05-01 10:00:00", segment.KindText, "a"))
	mustInsert(t, s, 42, makeSegment(100, "2024-05-01 10:00:00", segment.KindImage, "b.png"))
	mustInsert(t, s, 42, makeSegment(200, "2024-05-01 10:01:00", segment.KindText, "other"))

	got, err := s.FindByMessageID(ctx, 42, 100)
	if err != nil {
		t.Fatalf("FindByMessageID() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	if got[0].Content != "a" || got[1].Content != "b.png" {
		t.Errorf("segments out of storage order: %+v", got)
	}
}

func TestFindByMessageID_NoMatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, 42, makeSegment(100, "2024-05-01 10:00:00", segment.KindText, "a"))

	got, err := s.FindByMessageID(ctx, 42, 12345)
	if err != nil {
		t.Fatalf("FindByMessageID() failed: %v", err)
	}
	if got == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no segments, got %d", len(got))
	}
}

func TestFindByMessageID_MissingTable(t *testing.T) {
	s := createTestStore(t)

	_, err := s.FindByMessageID(context.Background(), 999, 1)
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("expected ErrNoTable, got %v", err)
	}
}

func TestRecentLog_DistinctTimestampWindow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	entries := []LogEntry{
		{Timestamp: "2024-05-01 10:00:00", Level: "INFO", Content: "one"},
		{Timestamp: "2024-05-01 10:00:00", Level: "WARN", Content: "two"},
		{Timestamp: "2024-05-01 10:01:00", Level: "ERROR", Content: "three"},
	}
	for _, e := range entries {
		if err := s.AppendLog(ctx, e); err != nil {
			t.Fatalf("AppendLog() failed: %v", err)
		}
	}

	got, err := s.RecentLog(ctx, 1)
	if err != nil {
		t.Fatalf("RecentLog() failed: %v", err)
	}
	if len(got) != 1 || got[0].Content != "three" {
		t.Errorf("RecentLog(1) = %+v", got)
	}

	got, err = s.RecentLog(ctx, 2)
	if err != nil {
		t.Fatalf("RecentLog() failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("RecentLog(2) returned %d entries, want 3", len(got))
	}
}

func TestRecentLog_Empty(t *testing.T) {
	s := createTestStore(t)

	got, err := s.RecentLog(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentLog() failed: %v", err)
	}
	if got == nil {
		t.Error("expected empty slice, got nil")
	}
}
