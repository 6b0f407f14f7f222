package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/calloway/vellum/internal/apperr"
)

// CreateSession inserts a session token for the user.
func (db *DB) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		token, userID, expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: create session: %w", err)
	}
	return nil
}

// SessionUser resolves an unexpired session token to its user.
func (db *DB) SessionUser(ctx context.Context, token string) (*User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ? AND s.expires_at > ?`,
		token, time.Now().UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: session user: %w", err)
	}
	return u, nil
}

// DeleteSession removes a session token if present.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("store: delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (db *DB) PurgeExpiredSessions(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: purge sessions: %w", err)
	}
	return nil
}
