package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// table names, one per cached entity kind
const (
	usersTable       = "cached_users"
	exercisesTable   = "cached_exercises"
	workoutsTable    = "cached_workouts"
	assignmentsTable = "cached_assignments"
)

var allTables = []string{usersTable, exercisesTable, workoutsTable, assignmentsTable}

// Open opens (and creates if needed) the local cache database at path.
// Use ":memory:" for tests. WAL keeps the UI read path from blocking behind
// the background sync writer.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// A single connection sidesteps SQLITE_BUSY between the read path and the
	// sync writer; per-record upserts are short.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initSchema creates the per-kind record tables. Every row carries the common
// sync metadata next to the JSON payload.
func initSchema(db *sql.DB) error {
	for _, table := range allTables {
		stmt := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id            TEXT PRIMARY KEY,
				payload       TEXT NOT NULL,
				sort_key      TEXT NOT NULL DEFAULT '',
				sync_status   TEXT NOT NULL DEFAULT 'synced',
				last_modified TIMESTAMP NOT NULL,
				is_deleted    INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_%s_status ON %s(sync_status);
		`, table, table, table)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}
