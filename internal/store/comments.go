package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CreateComment inserts a comment, marshaling the captured mention usernames
// alongside it.
func (db *DB) CreateComment(ctx context.Context, c *Comment) error {
	mentions := c.Mentions
	if mentions == nil {
		mentions = []string{}
	}
	mentionsJSON, err := json.Marshal(mentions)
	if err != nil {
		return fmt.Errorf("store: marshal mentions: %w", err)
	}

	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO comments (document_id, author_id, content, mentions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.DocumentID, c.AuthorID, c.Content, string(mentionsJSON), now, now)
	if err != nil {
		return fmt.Errorf("store: create comment: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

// ListComments returns a document's comments oldest first, authors joined,
// soft-deleted rows excluded.
func (db *DB) ListComments(ctx context.Context, documentID int64) ([]CommentWithAuthor, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.author_id, c.content, c.mentions, c.is_deleted, c.created_at, c.updated_at,
		       u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.created_at, u.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.document_id = ? AND c.is_deleted = 0
		ORDER BY c.created_at`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("store: list comments: %w", err)
	}
	defer rows.Close()

	var out []CommentWithAuthor
	for rows.Next() {
		var (
			c            CommentWithAuthor
			mentionsJSON string
		)
		err := rows.Scan(&c.ID, &c.DocumentID, &c.AuthorID, &c.Content, &mentionsJSON,
			&c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
			&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.PasswordHash,
			&c.Author.FirstName, &c.Author.LastName, &c.Author.CreatedAt, &c.Author.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(mentionsJSON), &c.Mentions); err != nil {
			c.Mentions = nil
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SoftDeleteComment marks a comment deleted.
func (db *DB) SoftDeleteComment(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET is_deleted = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: soft delete comment: %w", err)
	}
	return nil
}
