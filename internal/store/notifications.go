package store

import (
	"context"
	"fmt"
	"time"

	"github.com/calloway/vellum/internal/apperr"
)

// CreateNotification inserts a notification. Rows are append-only.
func (db *DB) CreateNotification(ctx context.Context, n *Notification) error {
	if n.Data == "" {
		n.Data = "{}"
	}
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO notifications (user_id, type, title, message, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Type, n.Title, n.Message, n.Data, now)
	if err != nil {
		return fmt.Errorf("store: create notification: %w", err)
	}
	n.ID, _ = res.LastInsertId()
	n.CreatedAt = now
	return nil
}

// ListNotifications returns the user's newest 50 notifications.
func (db *DB) ListNotifications(ctx context.Context, userID int64) ([]Notification, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, type, title, message, data, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 50`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("store: list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead marks one of the user's notifications read. A
// notification belonging to another user is reported as not found.
func (db *DB) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("store: mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead marks every notification of the user read.
func (db *DB) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("store: mark all notifications read: %w", err)
	}
	return nil
}
