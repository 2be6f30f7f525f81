package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ebisawa/chatrelic/internal/segment"
)

// LoadRecent returns every segment whose timestamp is among the n
// most-recent distinct timestamps of the channel, oldest first.
//
// "Recent n" counts message events, not raw rows: segments fanned out from
// one message share a timestamp and are returned together, never truncated.
// A channel that was never written returns an empty slice, not an error.
func (s *Store) LoadRecent(ctx context.Context, channelID int64, n int) ([]segment.Segment, error) {
	table := s.ChannelTable(channelID)
	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("load recent: %w", err)
	}
	if !exists {
		return []segment.Segment{}, nil
	}

	rows, err := s.db.QueryContext(ctx, recentSegmentsSQL(table), n)
	if err != nil {
		return nil, fmt.Errorf("query recent segments: %w", err)
	}
	defer rows.Close()

	return collectSegments(rows)
}

// FindByMessageID returns all segments sharing a message id, in storage
// order. Returns ErrNoTable if the channel was never written, so callers
// can distinguish "no table" from "message not stored".
func (s *Store) FindByMessageID(ctx context.Context, channelID, messageID int64) ([]segment.Segment, error) {
	table := s.ChannelTable(channelID)
	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("find by message id: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("find by message id: %s: %w", table, ErrNoTable)
	}

	rows, err := s.db.QueryContext(ctx, findByMessageIDSQL(table), messageID)
	if err != nil {
		return nil, fmt.Errorf("query segments by message id: %w", err)
	}
	defer rows.Close()

	return collectSegments(rows)
}

// RecentLog returns log entries from the n most-recent distinct timestamps,
// oldest first.
func (s *Store) RecentLog(ctx context.Context, n int) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, recentLogSQL(s.logTable), n)
	if err != nil {
		return nil, fmt.Errorf("query recent log: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Timestamp, &e.Level, &e.Content); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}

	if entries == nil {
		entries = []LogEntry{}
	}

	return entries, nil
}

// collectSegments drains rows into a slice, returning an empty slice
// instead of nil for zero results.
func collectSegments(rows *sql.Rows) ([]segment.Segment, error) {
	var segs []segment.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}

	if segs == nil {
		segs = []segment.Segment{}
	}

	return segs, nil
}

// scanSegment scans a row into a Segment.
func scanSegment(rows *sql.Rows) (segment.Segment, error) {
	var seg segment.Segment
	var kind string

	if err := rows.Scan(
		&seg.MessageID, &seg.Timestamp, &seg.SenderID,
		&seg.SenderName, &kind, &seg.Content, &seg.Interpretation,
	); err != nil {
		return segment.Segment{}, fmt.Errorf("scan segment: %w", err)
	}

	seg.Kind = segment.Kind(kind)
	return seg, nil
}
