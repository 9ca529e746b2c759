package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cubeworld/supportbot/internal/queue"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "supportbot_test.sqlite")
	sqlStore, err := New(dbPath)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = sqlStore.Close() })
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	return sqlStore
}

func TestEnsureUserIdempotent(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	first, err := sqlStore.EnsureUser(ctx, "telegram", "42")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	second, err := sqlStore.EnsureUser(ctx, "telegram", "42")
	if err != nil {
		t.Fatalf("ensure user again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("same platform identity must map to one user: %s vs %s", first.ID, second.ID)
	}

	other, err := sqlStore.EnsureUser(ctx, "vk", "42")
	if err != nil {
		t.Fatalf("ensure vk user: %v", err)
	}
	if other.ID == first.ID {
		t.Fatal("different platforms must map to different users")
	}
}

func TestOpenTicketReuse(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	user, err := sqlStore.EnsureUser(ctx, "telegram", "42")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	first, err := sqlStore.OpenTicket(ctx, user.ID)
	if err != nil {
		t.Fatalf("open ticket: %v", err)
	}
	second, err := sqlStore.OpenTicket(ctx, user.ID)
	if err != nil {
		t.Fatalf("open ticket again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("open ticket must be reused while it stays open")
	}

	if err := sqlStore.CloseTicket(ctx, first.ID); err != nil {
		t.Fatalf("close ticket: %v", err)
	}
	third, err := sqlStore.OpenTicket(ctx, user.ID)
	if err != nil {
		t.Fatalf("open ticket after close: %v", err)
	}
	if third.ID == first.ID {
		t.Fatal("closed ticket must not be reused")
	}
}

func TestCloseTicketTwice(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	user, _ := sqlStore.EnsureUser(ctx, "telegram", "42")
	ticket, _ := sqlStore.OpenTicket(ctx, user.ID)

	if err := sqlStore.CloseTicket(ctx, ticket.ID); err != nil {
		t.Fatalf("close ticket: %v", err)
	}
	if err := sqlStore.CloseTicket(ctx, ticket.ID); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("second close = %v, want ErrTicketNotFound", err)
	}
}

func TestPersistFullFlow(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	items := []queue.Item{
		{Platform: "telegram", UserID: "42", Text: "не пришёл донат"},
		{Platform: "telegram", UserID: "42", Text: "получатель Agent, чек прилагаю", CallSpecialist: true},
		{Platform: "telegram", UserID: "42", Text: "подтвердить", CloseTicket: true},
	}
	for _, item := range items {
		if err := sqlStore.Persist(ctx, item); err != nil {
			t.Fatalf("persist %q: %v", item.Text, err)
		}
	}

	user, err := sqlStore.EnsureUser(ctx, "telegram", "42")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	// The close flag closed the ticket, so this opens a fresh one.
	fresh, err := sqlStore.OpenTicket(ctx, user.ID)
	if err != nil {
		t.Fatalf("open ticket: %v", err)
	}
	if fresh.NeedsSpecialist {
		t.Fatal("fresh ticket must not inherit the specialist flag")
	}

	messages, err := sqlStore.ListMessages(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("fresh ticket must be empty, got %d messages", len(messages))
	}
}

func TestPersistMarksSpecialist(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	if err := sqlStore.Persist(ctx, queue.Item{Platform: "vk", UserID: "7", Text: "меня взломали", CallSpecialist: true}); err != nil {
		t.Fatalf("persist: %v", err)
	}

	user, _ := sqlStore.EnsureUser(ctx, "vk", "7")
	ticket, err := sqlStore.OpenTicket(ctx, user.ID)
	if err != nil {
		t.Fatalf("open ticket: %v", err)
	}
	if !ticket.NeedsSpecialist {
		t.Fatal("ticket must carry the specialist flag")
	}

	messages, err := sqlStore.ListMessages(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "меня взломали" {
		t.Fatalf("messages = %+v", messages)
	}
	if messages[0].Direction != DirectionIncoming {
		t.Fatalf("direction = %q", messages[0].Direction)
	}
}
