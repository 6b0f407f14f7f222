package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/calloway/vellum/internal/access"
	"github.com/calloway/vellum/internal/apperr"
)

// Permission returns the explicit permission for a (document, user) pair,
// with ok false when no row exists. This is the evaluator's
// access.PermissionSource.
func (db *DB) Permission(ctx context.Context, documentID, userID int64) (string, bool, error) {
	var perm string
	err := db.conn.QueryRowContext(ctx,
		`SELECT permission FROM document_permissions WHERE document_id = ? AND user_id = ?`,
		documentID, userID).Scan(&perm)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get permission: %w", err)
	}
	return perm, true, nil
}

// GetPermission returns the full permission row for a (document, user) pair.
func (db *DB) GetPermission(ctx context.Context, documentID, userID int64) (*DocumentPermission, error) {
	var p DocumentPermission
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, document_id, user_id, permission, granted_by_id, created_at
		FROM document_permissions WHERE document_id = ? AND user_id = ?`,
		documentID, userID).
		Scan(&p.ID, &p.DocumentID, &p.UserID, &p.Permission, &p.GrantedByID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get permission row: %w", err)
	}
	return &p, nil
}

// ListPermissions returns every grant on the document with grantees joined.
func (db *DB) ListPermissions(ctx context.Context, documentID int64) ([]PermissionWithUser, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.id, p.document_id, p.user_id, p.permission, p.granted_by_id, p.created_at,
		       u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.created_at, u.updated_at
		FROM document_permissions p
		JOIN users u ON u.id = p.user_id
		WHERE p.document_id = ?
		ORDER BY p.created_at`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("store: list permissions: %w", err)
	}
	defer rows.Close()

	var out []PermissionWithUser
	for rows.Next() {
		var p PermissionWithUser
		err := rows.Scan(&p.ID, &p.DocumentID, &p.UserID, &p.Permission, &p.GrantedByID, &p.CreatedAt,
			&p.User.ID, &p.User.Username, &p.User.Email, &p.User.PasswordHash,
			&p.User.FirstName, &p.User.LastName, &p.User.CreatedAt, &p.User.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertPermission inserts or replaces the grant for a (document, user)
// pair. The unique constraint keeps at most one row per pair; re-sharing
// overwrites permission kind and granter.
func (db *DB) UpsertPermission(ctx context.Context, documentID, userID int64, permission string, grantedByID int64) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO document_permissions (document_id, user_id, permission, granted_by_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id, user_id) DO UPDATE SET
			permission    = excluded.permission,
			granted_by_id = excluded.granted_by_id`,
		documentID, userID, permission, grantedByID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: upsert permission: %w", err)
	}
	return nil
}

// GrantViewIfAbsent inserts a view grant only when no row exists for the
// pair. An existing row of either kind is left untouched, so a mention never
// downgrades an edit grant.
func (db *DB) GrantViewIfAbsent(ctx context.Context, documentID, userID, grantedByID int64) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO document_permissions (document_id, user_id, permission, granted_by_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id, user_id) DO NOTHING`,
		documentID, userID, access.PermissionView, grantedByID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: grant view: %w", err)
	}
	return nil
}

// RemovePermission deletes the grant for a (document, user) pair if present.
func (db *DB) RemovePermission(ctx context.Context, documentID, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM document_permissions WHERE document_id = ? AND user_id = ?`,
		documentID, userID)
	if err != nil {
		return fmt.Errorf("store: remove permission: %w", err)
	}
	return nil
}
