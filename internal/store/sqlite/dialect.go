package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/loykin/occaccept/internal/constants"
	_ "modernc.org/sqlite"
)

// Dialect implements the journal SQL dialect for SQLite
type Dialect struct{}

// NewDialect creates a new SQLite dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

// Placeholder returns SQLite-style placeholders (?)
func (s *Dialect) Placeholder(int) string {
	return "?"
}

// storageLayout keeps every fraction digit so stored values sort as text.
const storageLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ConvertTimeToStorage converts time to SQLite storage format (fixed width UTC string)
func (s *Dialect) ConvertTimeToStorage(t time.Time) interface{} {
	return t.UTC().Format(storageLayout)
}

// ConvertTimeFromStorage converts SQLite string storage to RFC3339Nano string
func (s *Dialect) ConvertTimeFromStorage(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	}
	return ""
}

// Connect opens the database and applies single writer pool settings
func (s *Dialect) Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	db.SetMaxOpenConns(constants.DefaultSQLiteMaxConnections)
	db.SetMaxIdleConns(constants.DefaultSQLiteMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultSQLiteLifetime)
	db.SetConnMaxIdleTime(constants.DefaultSQLiteIdleTime)

	return db, nil
}

// EnsureStatements returns SQLite-specific table creation statements
func (s *Dialect) EnsureStatements(runs, commands string) []string {
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, scenario TEXT NOT NULL, feature TEXT NOT NULL, status TEXT NOT NULL, error TEXT NULL, started_at TEXT NOT NULL, finished_at TEXT NULL)", runs),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, run_id TEXT NOT NULL, command TEXT NOT NULL, exit_code INTEGER NOT NULL, stdout TEXT NULL, stderr TEXT NULL, ran_at TEXT NOT NULL)", commands),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_run_id_idx ON %s (run_id)", commands, commands),
	}
}

// DriverName returns the driver name for logging
func (s *Dialect) DriverName() string {
	return "sqlite"
}
