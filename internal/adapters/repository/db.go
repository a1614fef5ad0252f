package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// OpenDB opens the SQLite database at path and runs migrations. An in-memory
// database is pinned to a single connection so every query sees the same data.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS students (
		seq          INTEGER PRIMARY KEY AUTOINCREMENT,
		id           TEXT NOT NULL DEFAULT '',
		name         TEXT NOT NULL DEFAULT '',
		branch       TEXT NOT NULL DEFAULT '',
		attendance   TEXT NOT NULL DEFAULT '',
		internal_avg TEXT NOT NULL DEFAULT '',
		cert_type    TEXT NOT NULL DEFAULT '',
		cert_source  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_id ON students(id)`,

	`CREATE TABLE IF NOT EXISTS outcomes (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		id        TEXT NOT NULL DEFAULT '',
		cert_type TEXT NOT NULL DEFAULT '',
		placed    TEXT NOT NULL DEFAULT '',
		salary    TEXT NOT NULL DEFAULT '',
		days      TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS skill_demand (
		seq     INTEGER PRIMARY KEY AUTOINCREMENT,
		payload TEXT NOT NULL
	)`,
}

// Migrate creates the feed tables. It is safe to run repeatedly.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
