package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/calloway/vellum/internal/apperr"
)

// docVisibleCond filters documents down to what a user may see in listings:
// public, authored by the user, explicitly shared with the user, or
// space-visible in a space the user belongs to. Takes three userID args.
const docVisibleCond = `(d.visibility = 'public'
	OR d.author_id = ?
	OR EXISTS (SELECT 1 FROM document_permissions p
	           WHERE p.document_id = d.id AND p.user_id = ?)
	OR (d.visibility = 'space' AND d.space_id IS NOT NULL
	    AND EXISTS (SELECT 1 FROM space_members sm
	                WHERE sm.space_id = d.space_id AND sm.user_id = ?)))`

const docJoinSelect = `
	SELECT d.id, d.title, d.content, d.slug, d.author_id, d.space_id,
	       d.visibility, d.is_deleted, d.views, d.created_at, d.updated_at,
	       u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.created_at, u.updated_at,
	       s.id, s.name, s.description, s.slug, s.owner_id, s.is_private, s.created_at, s.updated_at
	FROM documents d
	JOIN users u ON u.id = d.author_id
	LEFT JOIN spaces s ON s.id = d.space_id`

func scanDocWithRefs(row rowScanner) (*DocumentWithRefs, error) {
	var (
		d       DocumentWithRefs
		spaceID sql.NullInt64

		sID      sql.NullInt64
		sName    sql.NullString
		sDesc    sql.NullString
		sSlug    sql.NullString
		sOwner   sql.NullInt64
		sPrivate sql.NullBool
		sCreated sql.NullTime
		sUpdated sql.NullTime
	)
	err := row.Scan(&d.ID, &d.Title, &d.Content, &d.Slug, &d.AuthorID, &spaceID,
		&d.Visibility, &d.IsDeleted, &d.Views, &d.CreatedAt, &d.UpdatedAt,
		&d.Author.ID, &d.Author.Username, &d.Author.Email, &d.Author.PasswordHash,
		&d.Author.FirstName, &d.Author.LastName, &d.Author.CreatedAt, &d.Author.UpdatedAt,
		&sID, &sName, &sDesc, &sSlug, &sOwner, &sPrivate, &sCreated, &sUpdated)
	if err != nil {
		return nil, err
	}
	d.SpaceID = spaceID.Int64
	if sID.Valid {
		d.Space = &Space{
			ID:          sID.Int64,
			Name:        sName.String,
			Description: sDesc.String,
			Slug:        sSlug.String,
			OwnerID:     sOwner.Int64,
			IsPrivate:   sPrivate.Bool,
			CreatedAt:   sCreated.Time,
			UpdatedAt:   sUpdated.Time,
		}
	}
	return &d, nil
}

func (db *DB) queryDocs(ctx context.Context, query string, args ...any) ([]DocumentWithRefs, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentWithRefs
	for rows.Next() {
		d, err := scanDocWithRefs(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// ListDocuments returns the documents visible to the user, optionally scoped
// to a space, most recently updated first. userID 0 restricts the result to
// public documents.
func (db *DB) ListDocuments(ctx context.Context, userID, spaceID int64) ([]DocumentWithRefs, error) {
	q := docJoinSelect + ` WHERE d.is_deleted = 0 AND ` + docVisibleCond
	args := []any{userID, userID, userID}
	if spaceID != 0 {
		q += ` AND d.space_id = ?`
		args = append(args, spaceID)
	}
	q += ` ORDER BY d.updated_at DESC`
	return db.queryDocs(ctx, q, args...)
}

// SearchDocuments matches the query as a substring of title or content among
// the documents visible to the user, capped at 50 results.
func (db *DB) SearchDocuments(ctx context.Context, userID int64, query string) ([]DocumentWithRefs, error) {
	like := "%" + query + "%"
	q := docJoinSelect + `
		WHERE d.is_deleted = 0
		  AND (d.title LIKE ? OR d.content LIKE ?)
		  AND ` + docVisibleCond + `
		ORDER BY d.updated_at DESC
		LIMIT 50`
	return db.queryDocs(ctx, q, like, like, userID, userID, userID)
}

// RecentDocuments returns the most recently updated documents visible to the
// user, capped at limit (default 10).
func (db *DB) RecentDocuments(ctx context.Context, userID int64, limit int) ([]DocumentWithRefs, error) {
	if limit <= 0 {
		limit = 10
	}
	q := docJoinSelect + `
		WHERE d.is_deleted = 0 AND ` + docVisibleCond + `
		ORDER BY d.updated_at DESC
		LIMIT ?`
	return db.queryDocs(ctx, q, userID, userID, userID, limit)
}

// GetDocument returns one document with author and space joined.
// Soft-deleted documents are reported as not found.
func (db *DB) GetDocument(ctx context.Context, id int64) (*DocumentWithRefs, error) {
	d, err := scanDocWithRefs(db.conn.QueryRowContext(ctx,
		docJoinSelect+` WHERE d.id = ? AND d.is_deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document: %w", err)
	}
	return d, nil
}

// GetDocumentBySlug returns at most one document matching the slug,
// optionally scoped to a space. Document slugs are not unique; which match
// is returned is unspecified.
func (db *DB) GetDocumentBySlug(ctx context.Context, slug string, spaceID int64) (*DocumentWithRefs, error) {
	q := docJoinSelect + ` WHERE d.slug = ? AND d.is_deleted = 0`
	args := []any{slug}
	if spaceID != 0 {
		q += ` AND d.space_id = ?`
		args = append(args, spaceID)
	}
	q += ` LIMIT 1`
	d, err := scanDocWithRefs(db.conn.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document by slug: %w", err)
	}
	return d, nil
}

// CreateDocument inserts a new document and fills in its id and timestamps.
func (db *DB) CreateDocument(ctx context.Context, d *Document) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO documents (title, content, slug, author_id, space_id, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Title, d.Content, d.Slug, d.AuthorID, nullableID(d.SpaceID), d.Visibility, now, now)
	if err != nil {
		return fmt.Errorf("store: create document: %w", err)
	}
	d.ID, _ = res.LastInsertId()
	d.CreatedAt, d.UpdatedAt = now, now
	return nil
}

// DocumentUpdate carries the optional fields of a document update. Nil
// fields are left unchanged.
type DocumentUpdate struct {
	Title      *string
	Content    *string
	Slug       *string
	Visibility *string
	SpaceID    *int64 // 0 clears the space
}

// UpdateDocument snapshots the pre-update title and content as the next
// numbered version attributed to editorID, then applies the update. Both
// steps run in one transaction so concurrent updates cannot duplicate or
// skip version numbers. The snapshot is taken on every call, whether or not
// title or content change.
func (db *DB) UpdateDocument(ctx context.Context, id int64, upd DocumentUpdate, editorID int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var title, content string
	err = tx.QueryRowContext(ctx,
		`SELECT title, content FROM documents WHERE id = ? AND is_deleted = 0`, id).
		Scan(&title, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: read document: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_versions (document_id, title, content, author_id, version, created_at)
		SELECT ?, ?, ?, ?, COALESCE(MAX(version), 0) + 1, ?
		FROM document_versions WHERE document_id = ?`,
		id, title, content, editorID, now, id)
	if err != nil {
		return fmt.Errorf("store: snapshot version: %w", err)
	}

	set := []string{"updated_at = ?"}
	args := []any{now}
	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.Slug != nil {
		set = append(set, "slug = ?")
		args = append(args, *upd.Slug)
	}
	if upd.Visibility != nil {
		set = append(set, "visibility = ?")
		args = append(args, *upd.Visibility)
	}
	if upd.SpaceID != nil {
		set = append(set, "space_id = ?")
		args = append(args, nullableID(*upd.SpaceID))
	}
	args = append(args, id)
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...); err != nil {
		return fmt.Errorf("store: update document: %w", err)
	}

	return tx.Commit()
}

// SoftDeleteDocument marks a document deleted. The row is never removed.
func (db *DB) SoftDeleteDocument(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE documents SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: soft delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the document's view counter by one.
func (db *DB) IncrementViews(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE documents SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: increment views: %w", err)
	}
	return nil
}
