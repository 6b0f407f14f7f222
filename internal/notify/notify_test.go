package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/calloway/vellum/internal/sse"
	"github.com/calloway/vellum/internal/store"
	"github.com/calloway/vellum/internal/testutil"
)

func TestMentionPersistsAndDelivers(t *testing.T) {
	db := testutil.TestDB(t)
	broker := sse.NewBroker()
	defer broker.Close()
	n := New(db, broker)
	ctx := context.Background()

	bob := &store.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x"}
	if err := db.CreateUser(ctx, bob); err != nil {
		t.Fatal(err)
	}
	ch := broker.Subscribe(bob.ID)
	defer broker.Unsubscribe(ch)

	if err := n.Mention(ctx, bob.ID, "alice", "Release Plan", 42, 0); err != nil {
		t.Fatalf("Mention: %v", err)
	}

	items, err := n.List(ctx, bob.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	it := items[0]
	if it.Type != TypeMention {
		t.Errorf("type = %q, want mention", it.Type)
	}
	if it.Title != "You were mentioned in a document" {
		t.Errorf("title = %q", it.Title)
	}
	if want := `alice mentioned you in "Release Plan"`; it.Message != want {
		t.Errorf("message = %q, want %q", it.Message, want)
	}
	if string(it.Data) != `{"documentId":42}` {
		t.Errorf("data = %s", it.Data)
	}

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: notification.created") {
			t.Errorf("sse payload = %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for sse delivery")
	}
}

func TestCommentMentionVariant(t *testing.T) {
	db := testutil.TestDB(t)
	n := New(db, nil)
	ctx := context.Background()

	bob := &store.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x"}
	if err := db.CreateUser(ctx, bob); err != nil {
		t.Fatal(err)
	}
	if err := n.Mention(ctx, bob.ID, "alice", "Release Plan", 42, 7); err != nil {
		t.Fatalf("Mention: %v", err)
	}

	items, _ := n.List(ctx, bob.ID)
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].Title != "You were mentioned in a comment" {
		t.Errorf("title = %q", items[0].Title)
	}
	if string(items[0].Data) != `{"documentId":42,"commentId":7}` {
		t.Errorf("data = %s", items[0].Data)
	}
}

func TestShareAndMarkRead(t *testing.T) {
	db := testutil.TestDB(t)
	n := New(db, nil)
	ctx := context.Background()

	bob := &store.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x"}
	if err := db.CreateUser(ctx, bob); err != nil {
		t.Fatal(err)
	}
	if err := n.Share(ctx, bob.ID, "alice", 42); err != nil {
		t.Fatalf("Share: %v", err)
	}

	items, _ := n.List(ctx, bob.ID)
	if len(items) != 1 || items[0].Type != TypeShare {
		t.Fatalf("items = %+v, want one share", items)
	}
	if want := "alice shared a document with you"; items[0].Message != want {
		t.Errorf("message = %q, want %q", items[0].Message, want)
	}
	if items[0].IsRead {
		t.Error("new notification already read")
	}

	if err := n.MarkRead(ctx, items[0].ID, bob.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	items, _ = n.List(ctx, bob.ID)
	if !items[0].IsRead {
		t.Error("notification not marked read")
	}
}
