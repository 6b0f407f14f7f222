package store

import (
	"context"
	"fmt"
)

// ListVersions returns a document's version history, newest first, with the
// editing author joined.
func (db *DB) ListVersions(ctx context.Context, documentID int64) ([]VersionWithAuthor, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT v.id, v.document_id, v.title, v.content, v.author_id, v.version, v.created_at,
		       u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.created_at, u.updated_at
		FROM document_versions v
		JOIN users u ON u.id = v.author_id
		WHERE v.document_id = ?
		ORDER BY v.version DESC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("store: list versions: %w", err)
	}
	defer rows.Close()

	var out []VersionWithAuthor
	for rows.Next() {
		var v VersionWithAuthor
		err := rows.Scan(&v.ID, &v.DocumentID, &v.Title, &v.Content, &v.AuthorID, &v.Version, &v.CreatedAt,
			&v.Author.ID, &v.Author.Username, &v.Author.Email, &v.Author.PasswordHash,
			&v.Author.FirstName, &v.Author.LastName, &v.Author.CreatedAt, &v.Author.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
