package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Query is a read query handed to ExportCSV. The two canonical exports are
// built by HistoryQuery and LogQuery; ad hoc queries work as long as they
// only read.
type Query struct {
	SQL  string
	Args []any
}

// HistoryQuery selects a channel's segments over the n most-recent distinct
// timestamps, oldest first, with the stored column names as CSV header.
func (s *Store) HistoryQuery(channelID int64, n int) Query {
	return Query{SQL: recentSegmentsSQL(s.ChannelTable(channelID)), Args: []any{n}}
}

// LogQuery selects log entries over the n most-recent distinct timestamps,
// oldest first.
func (s *Store) LogQuery(n int) Query {
	return Query{SQL: recentLogSQL(s.logTable), Args: []any{n}}
}

// ExportCSV runs the query and writes its header and rows as CSV to dest.
//
// The whole result is drained into memory first and the file is written in
// one call, so a query or scan failure never leaves a partial file behind.
// An empty result set still produces the header row. The export is a copy;
// nothing is deleted from the store.
func (s *Store) ExportCSV(ctx context.Context, q Query, dest string) error {
	rows, err := s.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return fmt.Errorf("export csv: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("export csv: columns: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cols); err != nil {
		return fmt.Errorf("export csv: write header: %w", err)
	}

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	record := make([]string, len(cols))

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("export csv: scan: %w", err)
		}
		for i, v := range vals {
			record[i] = fieldString(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("export csv: write record: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("export csv: iterate: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export csv: flush: %w", err)
	}

	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("export csv: write file: %w", err)
	}

	return nil
}

// fieldString renders one scanned SQLite value for CSV output.
func fieldString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
