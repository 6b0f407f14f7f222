// Package notify creates and delivers user notifications, pushing each new
// one over SSE to the recipient's open connections.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/calloway/vellum/internal/sse"
	"github.com/calloway/vellum/internal/store"
)

// Notification types.
const (
	TypeMention = "mention"
	TypeShare   = "share"
)

// Item is the JSON shape of a notification.
type Item struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	IsRead    bool            `json:"isRead"`
	CreatedAt time.Time       `json:"createdAt"`
}

type payload struct {
	DocumentID int64 `json:"documentId"`
	CommentID  int64 `json:"commentId,omitempty"`
}

// Notifier persists notifications and pushes them to recipients.
type Notifier struct {
	db     *store.DB
	broker *sse.Broker
}

// New creates a Notifier. The broker may be nil, in which case notifications
// are persisted without live delivery.
func New(db *store.DB, broker *sse.Broker) *Notifier {
	return &Notifier{db: db, broker: broker}
}

func (n *Notifier) create(ctx context.Context, userID int64, typ, title, message string, data payload) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("notify: marshal data: %w", err)
	}
	row := &store.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    string(raw),
	}
	if err := n.db.CreateNotification(ctx, row); err != nil {
		return err
	}
	if n.broker != nil {
		n.broker.PublishTo(userID, sse.Event{Type: "notification.created", Data: toItem(*row)})
	}
	return nil
}

// Mention notifies a user they were mentioned by actor in the given document.
// commentID 0 means the mention appeared in the document body; otherwise it
// appeared in that comment.
func (n *Notifier) Mention(ctx context.Context, userID int64, actor, docTitle string, docID, commentID int64) error {
	title := "You were mentioned in a document"
	message := fmt.Sprintf("%s mentioned you in %q", actor, docTitle)
	if commentID != 0 {
		title = "You were mentioned in a comment"
		message = fmt.Sprintf("%s mentioned you in a comment on %q", actor, docTitle)
	}
	return n.create(ctx, userID, TypeMention, title, message,
		payload{DocumentID: docID, CommentID: commentID})
}

// Share notifies a user that actor shared a document with them.
func (n *Notifier) Share(ctx context.Context, userID int64, actor string, docID int64) error {
	return n.create(ctx, userID, TypeShare,
		"Document shared with you",
		fmt.Sprintf("%s shared a document with you", actor),
		payload{DocumentID: docID})
}

// List returns the user's recent notifications, newest first.
func (n *Notifier) List(ctx context.Context, userID int64) ([]Item, error) {
	rows, err := n.db.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(rows))
	for i, row := range rows {
		items[i] = toItem(row)
	}
	return items, nil
}

// MarkRead marks one of the user's notifications read.
func (n *Notifier) MarkRead(ctx context.Context, id, userID int64) error {
	return n.db.MarkNotificationRead(ctx, id, userID)
}

// MarkAllRead marks all of the user's notifications read.
func (n *Notifier) MarkAllRead(ctx context.Context, userID int64) error {
	return n.db.MarkAllNotificationsRead(ctx, userID)
}

func toItem(row store.Notification) Item {
	return Item{
		ID:        row.ID,
		Type:      row.Type,
		Title:     row.Title,
		Message:   row.Message,
		Data:      json.RawMessage(row.Data),
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt,
	}
}
