// Package store provides SQLite-backed persistence for users, spaces,
// documents, permissions, comments, versions, notifications, and sessions.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name    TEXT NOT NULL DEFAULT '',
	last_name     TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS spaces (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	slug        TEXT NOT NULL UNIQUE,
	owner_id    INTEGER NOT NULL REFERENCES users(id),
	is_private  INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS space_members (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	space_id   INTEGER NOT NULL REFERENCES spaces(id),
	user_id    INTEGER NOT NULL REFERENCES users(id),
	role       TEXT NOT NULL DEFAULT 'member',
	created_at DATETIME NOT NULL,
	UNIQUE(space_id, user_id)
);

CREATE TABLE IF NOT EXISTS documents (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	slug       TEXT NOT NULL,
	author_id  INTEGER NOT NULL REFERENCES users(id),
	space_id   INTEGER REFERENCES spaces(id),
	visibility TEXT NOT NULL DEFAULT 'private',
	is_deleted INTEGER NOT NULL DEFAULT 0,
	views      INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_author ON documents(author_id);
CREATE INDEX IF NOT EXISTS idx_documents_space  ON documents(space_id);

CREATE TABLE IF NOT EXISTS document_permissions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id   INTEGER NOT NULL REFERENCES documents(id),
	user_id       INTEGER NOT NULL REFERENCES users(id),
	permission    TEXT NOT NULL,
	granted_by_id INTEGER NOT NULL REFERENCES users(id),
	created_at    DATETIME NOT NULL,
	UNIQUE(document_id, user_id)
);

CREATE TABLE IF NOT EXISTS comments (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES documents(id),
	author_id   INTEGER NOT NULL REFERENCES users(id),
	content     TEXT NOT NULL,
	mentions    TEXT NOT NULL DEFAULT '[]',
	is_deleted  INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_document ON comments(document_id);

CREATE TABLE IF NOT EXISTS document_versions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES documents(id),
	title       TEXT NOT NULL,
	content     TEXT NOT NULL,
	author_id   INTEGER NOT NULL REFERENCES users(id),
	version     INTEGER NOT NULL,
	created_at  DATETIME NOT NULL,
	UNIQUE(document_id, version)
);

CREATE TABLE IF NOT EXISTS notifications (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	data       TEXT NOT NULL DEFAULT '{}',
	is_read    INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL
);
`

// DB wraps a sql.DB with knowledge-base operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// nullableID maps the zero id to SQL NULL for optional foreign keys.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
