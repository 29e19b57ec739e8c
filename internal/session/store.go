// Package session provides the durable client-side session state: the
// bearer token slot and the chat roster.
package session

import (
	"context"

	"github.com/ashureev/agri-advisor/internal/domain"
)

// Store defines the interface for persisting session state across runs.
type Store interface {
	// GetToken returns the persisted bearer token, or "" when logged out.
	GetToken(ctx context.Context) (string, error)

	// SetToken persists the bearer token.
	SetToken(ctx context.Context, token string) error

	// Clear removes the bearer token. Called on explicit logout and on
	// session expiry.
	Clear(ctx context.Context) error

	// Contacts returns the chat roster, most recently seen first.
	Contacts(ctx context.Context) ([]domain.Contact, error)

	// UpsertContact inserts or refreshes a roster entry.
	UpsertContact(ctx context.Context, contact domain.Contact) error

	// MarkUnread sets the new-message indicator on a roster entry,
	// creating the entry if the sender is unknown.
	MarkUnread(ctx context.Context, userID int64) error

	// ClearUnread removes the new-message indicator.
	ClearUnread(ctx context.Context, userID int64) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the underlying database.
	Close() error
}
