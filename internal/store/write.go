package store

import (
	"context"
	"fmt"

	"github.com/ebisawa/chatrelic/internal/segment"
)

// EnsureChannelTable creates a channel's segment table and its two indexes
// if they do not exist yet.
//
// Safe under concurrent first-writers for the same new channel: the DDL is
// IF NOT EXISTS, so exactly one logical table results and no caller observes
// a "table exists" error. Results are memoized so steady-state writes skip
// the DDL round trip.
func (s *Store) EnsureChannelTable(ctx context.Context, channelID int64) error {
	s.mu.Lock()
	_, done := s.ensured[channelID]
	s.mu.Unlock()
	if done {
		return nil
	}

	table := s.ChannelTable(channelID)
	if _, err := s.db.ExecContext(ctx, createChannelTableSQL(table)); err != nil {
		return fmt.Errorf("ensure channel table %s: %w", table, err)
	}

	s.mu.Lock()
	s.ensured[channelID] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Insert appends one segment row to the channel's table, creating the table
// first if needed.
//
// Fails only on underlying I/O error, which is propagated (never swallowed)
// so callers can log and skip. Each insert is its own transaction; no
// cross-insert atomicity is provided.
func (s *Store) Insert(ctx context.Context, channelID int64, seg segment.Segment) error {
	if err := s.EnsureChannelTable(ctx, channelID); err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}

	_, err := s.db.ExecContext(ctx, insertSegmentSQL(s.ChannelTable(channelID)),
		seg.MessageID,
		seg.Timestamp,
		seg.SenderID,
		seg.SenderName,
		string(seg.Kind),
		seg.Content,
		seg.Interpretation,
	)
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}

	return nil
}

// LogEntry is one operational log row.
type LogEntry struct {
	Timestamp string
	Level     string
	Content   string
}

// AppendLog inserts one entry into the shared log table.
// The log table always exists after Open, so there is no ensure step.
func (s *Store) AppendLog(ctx context.Context, e LogEntry) error {
	_, err := s.db.ExecContext(ctx, insertLogSQL(s.logTable),
		e.Timestamp,
		e.Level,
		e.Content,
	)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}
