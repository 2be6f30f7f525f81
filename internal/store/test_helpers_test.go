package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ebisawa/chatrelic/internal/segment"
)

// createTestStore creates a file-backed store in a temp dir for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeSegment creates a test segment with the fields that matter for
// ordering and lookup; the rest get fixed filler values.
func makeSegment(messageID int64, timestamp string, kind segment.Kind, content string) segment.Segment {
	return segment.Segment{
		MessageID:      messageID,
		Timestamp:      timestamp,
		SenderID:       7,
		SenderName:     "Alice",
		Kind:           kind,
		Content:        content,
		Interpretation: "text",
	}
}

// mustInsert inserts a segment or fails the test.
func mustInsert(t *testing.T, s *Store, channelID int64, seg segment.Segment) {
	t.Helper()
	if err := s.Insert(context.Background(), channelID, seg); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
}

// getTableIndexes returns the names of all indexes on a table.
func getTableIndexes(t *testing.T, s *Store, table string) []string {
	t.Helper()
	rows, err := s.db.Query(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND name NOT LIKE 'sqlite_%'
	`, table)
	if err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan index name: %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate indexes: %v", err)
	}
	return names
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
