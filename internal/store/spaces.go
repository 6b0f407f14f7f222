package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/calloway/vellum/internal/apperr"
)

const spaceCols = `id, name, description, slug, owner_id, is_private, created_at, updated_at`

func scanSpace(row rowScanner) (*Space, error) {
	var s Space
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Slug,
		&s.OwnerID, &s.IsPrivate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSpace inserts a new space. A taken slug yields
// apperr.ErrAlreadyExists.
func (db *DB) CreateSpace(ctx context.Context, s *Space) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO spaces (name, description, slug, owner_id, is_private, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Name, s.Description, s.Slug, s.OwnerID, s.IsPrivate, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: create space: %w", err)
	}
	s.ID, _ = res.LastInsertId()
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

// GetSpace returns the space with the given id.
func (db *DB) GetSpace(ctx context.Context, id int64) (*Space, error) {
	s, err := scanSpace(db.conn.QueryRowContext(ctx,
		`SELECT `+spaceCols+` FROM spaces WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get space: %w", err)
	}
	return s, nil
}

// ListSpaces returns the spaces the user owns or belongs to, most recently
// updated first.
func (db *DB) ListSpaces(ctx context.Context, userID int64) ([]Space, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT s.id, s.name, s.description, s.slug, s.owner_id, s.is_private, s.created_at, s.updated_at
		FROM spaces s
		LEFT JOIN space_members m ON m.space_id = s.id
		WHERE s.owner_id = ? OR m.user_id = ?
		ORDER BY s.updated_at DESC`,
		userID, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list spaces: %w", err)
	}
	defer rows.Close()

	var out []Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// AddSpaceMember inserts a membership row. A duplicate (space, user) pair
// yields apperr.ErrAlreadyExists.
func (db *DB) AddSpaceMember(ctx context.Context, m *SpaceMember) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO space_members (space_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)`,
		m.SpaceID, m.UserID, m.Role, now)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: add space member: %w", err)
	}
	m.ID, _ = res.LastInsertId()
	m.CreatedAt = now
	return nil
}

// RemoveSpaceMember deletes a membership row if present.
func (db *DB) RemoveSpaceMember(ctx context.Context, spaceID, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM space_members WHERE space_id = ? AND user_id = ?`, spaceID, userID)
	if err != nil {
		return fmt.Errorf("store: remove space member: %w", err)
	}
	return nil
}

// IsSpaceMember reports whether the user has a membership row in the space.
func (db *DB) IsSpaceMember(ctx context.Context, spaceID, userID int64) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM space_members WHERE space_id = ? AND user_id = ?`, spaceID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: is space member: %w", err)
	}
	return true, nil
}

// ListSpaceMembers returns the space's membership roster with users joined.
func (db *DB) ListSpaceMembers(ctx context.Context, spaceID int64) ([]SpaceMemberWithUser, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT m.id, m.space_id, m.user_id, m.role, m.created_at,
		       u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.created_at, u.updated_at
		FROM space_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.space_id = ?
		ORDER BY m.created_at`,
		spaceID)
	if err != nil {
		return nil, fmt.Errorf("store: list space members: %w", err)
	}
	defer rows.Close()

	var out []SpaceMemberWithUser
	for rows.Next() {
		var m SpaceMemberWithUser
		err := rows.Scan(&m.ID, &m.SpaceID, &m.UserID, &m.Role, &m.CreatedAt,
			&m.User.ID, &m.User.Username, &m.User.Email, &m.User.PasswordHash,
			&m.User.FirstName, &m.User.LastName, &m.User.CreatedAt, &m.User.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
