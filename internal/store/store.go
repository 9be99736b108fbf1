package store

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store handles all database operations and owns post identity. It is the
// only writer to the posts table; callers must not share one Store across
// concurrent review sessions.
type Store struct {
	db             *sql.DB
	screenshotsDir string
}

// New creates a new Store with a SQLite backend at dbPath. screenshotsDir is
// where collection saves screenshot artifacts; DeletePost removes them from
// there alongside the record.
func New(dbPath, screenshotsDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, err
	}
	if screenshotsDir != "" {
		if err := os.MkdirAll(screenshotsDir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, screenshotsDir: screenshotsDir}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target_name TEXT NOT NULL,
		url TEXT,
		author TEXT,
		post_timestamp TEXT,
		text_content TEXT NOT NULL,
		screenshot_path TEXT,
		status TEXT NOT NULL DEFAULT 'queued',
		misinfo_score INTEGER,
		tags TEXT,
		rationale TEXT NOT NULL DEFAULT '',
		fact_check_questions TEXT,
		drafts TEXT,
		collected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status);
	CREATE INDEX IF NOT EXISTS idx_posts_score ON posts(misinfo_score);
	CREATE INDEX IF NOT EXISTS idx_posts_target ON posts(target_name);
	CREATE INDEX IF NOT EXISTS idx_posts_collected_at ON posts(collected_at);
	`

	_, err := s.db.Exec(schema)
	return err
}
