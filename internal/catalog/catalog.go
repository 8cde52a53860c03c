// Package catalog provides a SQLite sidecar that tracks vault topics and
// per-session statistics. It is a liveness and reporting aid only: the
// markdown documents stay the source of truth, and the catalog is rebuilt
// from them at any time by Sync.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS topics (
	slug         TEXT PRIMARY KEY,
	type         TEXT NOT NULL DEFAULT 'concept',
	created      TEXT NOT NULL DEFAULT '',
	last_session TEXT NOT NULL DEFAULT '',
	checksum     TEXT NOT NULL DEFAULT '',
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	topic              TEXT NOT NULL,
	recorded_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	concepts_added     INTEGER NOT NULL DEFAULT 0,
	sources_added      INTEGER NOT NULL DEFAULT 0,
	synthesis_entries  INTEGER NOT NULL DEFAULT 0,
	understanding      TEXT NOT NULL DEFAULT '[]',
	subtopics          TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_sessions_topic ON sessions(topic);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
