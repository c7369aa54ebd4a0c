package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'todo' CHECK(status IN ('todo','doing','done')),
		notes       TEXT NOT NULL DEFAULT '',
		due_date    TEXT,
		priority    TEXT NOT NULL DEFAULT 'P2' CHECK(priority IN ('P0','P1','P2')),
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		task_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		kind         TEXT NOT NULL CHECK(kind IN ('work','break')),
		start_ts     INTEGER NOT NULL,
		end_ts       INTEGER,
		duration_sec INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_task  ON sessions(task_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_ts);

	CREATE TABLE IF NOT EXISTS task_deps (
		task_id     TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		dep_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		kind        TEXT NOT NULL CHECK(kind IN ('blocker','waiting')),
		created_at  INTEGER NOT NULL,
		PRIMARY KEY(task_id, dep_id, kind)
	);

	CREATE TABLE IF NOT EXISTS app_state (
		key   TEXT PRIMARY KEY,
		value TEXT
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('pomodoro_work',  '1500'),
		('pomodoro_break', '300');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/pomotrack/pomotrack.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "pomotrack", "pomotrack.db"), nil
}
