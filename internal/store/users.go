package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/calloway/vellum/internal/apperr"
)

const userCols = `id, username, email, password_hash, first_name, last_name, created_at, updated_at`

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user and fills in its id and timestamps.
// A taken username or email yields apperr.ErrAlreadyExists.
func (db *DB) CreateUser(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: create user: %w", err)
	}
	u.ID, _ = res.LastInsertId()
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

// GetUser returns the user with the given id.
func (db *DB) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns the user with the given username (exact match).
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user by username: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the user with the given email (exact match).
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user by email: %w", err)
	}
	return u, nil
}

// SearchUsers matches the query as a substring of username, email, first or
// last name, capped at 10 results.
func (db *DB) SearchUsers(ctx context.Context, query string) ([]User, error) {
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+userCols+` FROM users
		WHERE username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?
		ORDER BY username
		LIMIT 10`,
		like, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("store: search users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
