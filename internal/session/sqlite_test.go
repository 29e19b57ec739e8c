package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/agri-advisor/internal/domain"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return store
}

func TestTokenLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	token, err := store.GetToken(ctx)
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if token != "" {
		t.Errorf("Expected empty token in a fresh store, got %q", token)
	}

	if err := store.SetToken(ctx, "token-one"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if err := store.SetToken(ctx, "token-two"); err != nil {
		t.Fatalf("Second SetToken failed: %v", err)
	}

	token, err = store.GetToken(ctx)
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if token != "token-two" {
		t.Errorf("Expected latest token to win, got %q", token)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	token, err = store.GetToken(ctx)
	if err != nil {
		t.Fatalf("GetToken after clear failed: %v", err)
	}
	if token != "" {
		t.Errorf("Expected empty token after clear, got %q", token)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty store failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Second Clear failed: %v", err)
	}
}

func TestContactRoster(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	if err := store.UpsertContact(ctx, domain.Contact{UserID: 1, Label: "Aminah", LastSeen: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("UpsertContact failed: %v", err)
	}
	if err := store.UpsertContact(ctx, domain.Contact{UserID: 2, Label: "Wei Ming", LastSeen: now}); err != nil {
		t.Fatalf("UpsertContact failed: %v", err)
	}

	contacts, err := store.Contacts(ctx)
	if err != nil {
		t.Fatalf("Contacts failed: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("Expected 2 contacts, got %d", len(contacts))
	}
	if contacts[0].UserID != 2 {
		t.Errorf("Expected most recent contact first, got user %d", contacts[0].UserID)
	}
	if contacts[0].Label != "Wei Ming" {
		t.Errorf("Expected label to persist, got %q", contacts[0].Label)
	}
}

func TestUnreadMarkers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Unknown sender gets a placeholder entry.
	if err := store.MarkUnread(ctx, 7); err != nil {
		t.Fatalf("MarkUnread failed: %v", err)
	}

	contacts, err := store.Contacts(ctx)
	if err != nil {
		t.Fatalf("Contacts failed: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("Expected 1 contact, got %d", len(contacts))
	}
	if !contacts[0].Unread {
		t.Error("Expected unread marker to be set")
	}
	if contacts[0].Label != "User 7" {
		t.Errorf("Expected placeholder label 'User 7', got %q", contacts[0].Label)
	}

	if err := store.ClearUnread(ctx, 7); err != nil {
		t.Fatalf("ClearUnread failed: %v", err)
	}
	contacts, err = store.Contacts(ctx)
	if err != nil {
		t.Fatalf("Contacts failed: %v", err)
	}
	if contacts[0].Unread {
		t.Error("Expected unread marker to be cleared")
	}
}

func TestUpsertPreservesUnread(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.MarkUnread(ctx, 3); err != nil {
		t.Fatalf("MarkUnread failed: %v", err)
	}
	if err := store.UpsertContact(ctx, domain.Contact{UserID: 3, Label: "Siti"}); err != nil {
		t.Fatalf("UpsertContact failed: %v", err)
	}

	contacts, err := store.Contacts(ctx)
	if err != nil {
		t.Fatalf("Contacts failed: %v", err)
	}
	if !contacts[0].Unread {
		t.Error("Expected upsert to preserve the unread marker")
	}
	if contacts[0].Label != "Siti" {
		t.Errorf("Expected label to refresh, got %q", contacts[0].Label)
	}
}
