package store

import "fmt"

// Channel tables and the log table are created with IF NOT EXISTS so DDL is
// idempotent and safe under racing first-writers. Index names are derived
// from the table name: SQLite index names share one namespace per database,
// so a fixed name would leave every table after the first unindexed.

func createChannelTableSQL(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			auto_id INTEGER PRIMARY KEY,
			message_id INTEGER,
			time TEXT,
			sender_id INTEGER,
			sender_name TEXT,
			type TEXT,
			content TEXT,
			interpret TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_message_id ON %[1]s(message_id);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_time ON %[1]s(time);
	`, table)
}

func createLogTableSQL(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			auto_id INTEGER PRIMARY KEY,
			time TEXT,
			level TEXT,
			content TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_time ON %[1]s(time);
	`, table)
}

func insertSegmentSQL(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s
		(message_id, time, sender_id, sender_name, type, content, interpret)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, table)
}

func insertLogSQL(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (time, level, content)
		VALUES (?, ?, ?)
	`, table)
}

// recentSegmentsSQL selects every segment whose time falls in the n
// most-recent distinct times, oldest first. Selecting by distinct time
// instead of LIMIT over rows keeps multi-segment messages whole: one
// inbound message fans out into several rows sharing one timestamp, and a
// row limit would silently truncate its tail.
func recentSegmentsSQL(table string) string {
	return fmt.Sprintf(`
		SELECT message_id, time, sender_id, sender_name, type, content, interpret
		FROM %[1]s
		WHERE time IN (
			SELECT DISTINCT time
			FROM %[1]s
			ORDER BY time DESC
			LIMIT ?
		)
		ORDER BY time ASC, auto_id ASC
	`, table)
}

func findByMessageIDSQL(table string) string {
	return fmt.Sprintf(`
		SELECT message_id, time, sender_id, sender_name, type, content, interpret
		FROM %s
		WHERE message_id = ?
		ORDER BY auto_id ASC
	`, table)
}

func recentLogSQL(table string) string {
	return fmt.Sprintf(`
		SELECT time, level, content
		FROM %[1]s
		WHERE time IN (
			SELECT DISTINCT time
			FROM %[1]s
			ORDER BY time DESC
			LIMIT ?
		)
		ORDER BY time ASC, auto_id ASC
	`, table)
}
