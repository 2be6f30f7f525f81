package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Defaults match the historical deployment; Options override them.
const (
	DefaultTablePrefix = "message"
	DefaultLogTable    = "bot_log"
	DefaultMaxConns    = 5
)

// ErrNoTable reports a read against a channel that was never written.
// Readers can treat it as an empty history; writers never see it because
// every write ensures the table first.
var ErrNoTable = errors.New("channel table does not exist")

// identPattern constrains configurable table names. Channel table names are
// interpolated into DDL and queries, so the prefix must stay a plain
// identifier.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store provides durable storage for chat segments and the operational log.
// One SQLite file holds one lazily created table per channel plus a shared
// log table. Uses WAL mode for concurrent read access.
type Store struct {
	db          *sql.DB
	tablePrefix string
	logTable    string
	maxConns    int

	// ensured memoizes channel tables whose DDL already ran in this
	// process. It is a cache only; the DDL itself is IF NOT EXISTS, so a
	// cold cache or a racing writer is still correct.
	mu      sync.Mutex
	ensured map[int64]struct{}
}

// Option configures a Store before it opens.
type Option func(*Store)

// WithTablePrefix sets the channel table name prefix.
func WithTablePrefix(prefix string) Option {
	return func(s *Store) { s.tablePrefix = prefix }
}

// WithLogTable sets the operational log table name.
func WithLogTable(name string) Option {
	return func(s *Store) { s.logTable = name }
}

// WithMaxConns sets the connection pool size.
func WithMaxConns(n int) Option {
	return func(s *Store) { s.maxConns = n }
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and creates the log table automatically; channel
// tables are created lazily on first write.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		tablePrefix: DefaultTablePrefix,
		logTable:    DefaultLogTable,
		maxConns:    DefaultMaxConns,
		ensured:     make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !identPattern.MatchString(s.tablePrefix) {
		return nil, fmt.Errorf("invalid table prefix %q", s.tablePrefix)
	}
	if !identPattern.MatchString(s.logTable) {
		return nil, fmt.Errorf("invalid log table name %q", s.logTable)
	}
	if s.maxConns < 1 {
		return nil, fmt.Errorf("invalid max connections %d", s.maxConns)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(s.maxConns)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	// The log table is known at startup; only channel tables are lazy.
	if _, err := db.Exec(createLogTableSQL(s.logTable)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create log table: %w", err)
	}

	s.db = db
	return s, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// TablePrefix returns the configured channel table prefix.
func (s *Store) TablePrefix() string { return s.tablePrefix }

// LogTable returns the configured log table name.
func (s *Store) LogTable() string { return s.logTable }

// ChannelTable returns the table name backing a channel's segment log.
func (s *Store) ChannelTable(channelID int64) string {
	return fmt.Sprintf("%s%d", s.tablePrefix, channelID)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// tableExists reports whether a table is present in the schema.
func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = ?
	`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return count > 0, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
