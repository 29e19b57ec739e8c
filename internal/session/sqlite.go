package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/agri-advisor/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed session store.
func NewSQLite(dbPath string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single client process; no need for a large pool.
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		token TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contacts (
		user_id INTEGER PRIMARY KEY,
		label TEXT NOT NULL,
		unread INTEGER NOT NULL DEFAULT 0,
		last_seen_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_contacts_last_seen ON contacts(last_seen_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetToken returns the persisted bearer token, or "" when absent.
func (s *SQLiteStore) GetToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM session WHERE id = 1`).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

// SetToken persists the bearer token, replacing any previous one.
func (s *SQLiteStore) SetToken(ctx context.Context, token string) error {
	query := `
		INSERT INTO session (id, token, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, token, time.Now().Unix()); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// Clear removes the bearer token.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Contacts returns the roster ordered by most recent activity.
func (s *SQLiteStore) Contacts(ctx context.Context) ([]domain.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, label, unread, last_seen_at FROM contacts ORDER BY last_seen_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		var unread int
		var lastSeen int64
		if err := rows.Scan(&c.UserID, &c.Label, &unread, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		c.Unread = unread != 0
		c.LastSeen = time.Unix(lastSeen, 0)
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// UpsertContact inserts or refreshes a roster entry, preserving an
// existing unread marker.
func (s *SQLiteStore) UpsertContact(ctx context.Context, contact domain.Contact) error {
	lastSeen := contact.LastSeen
	if lastSeen.IsZero() {
		lastSeen = time.Now()
	}
	query := `
		INSERT INTO contacts (user_id, label, unread, last_seen_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			label = excluded.label,
			last_seen_at = excluded.last_seen_at`
	unread := 0
	if contact.Unread {
		unread = 1
	}
	if _, err := s.db.ExecContext(ctx, query, contact.UserID, contact.Label, unread, lastSeen.Unix()); err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	return nil
}

// MarkUnread flags a roster entry with a new-message indicator. Unknown
// senders get a fresh entry so the roster can surface them.
func (s *SQLiteStore) MarkUnread(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO contacts (user_id, label, unread, last_seen_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET unread = 1, last_seen_at = excluded.last_seen_at`
	label := fmt.Sprintf("User %d", userID)
	if _, err := s.db.ExecContext(ctx, query, userID, label, time.Now().Unix()); err != nil {
		return fmt.Errorf("mark unread: %w", err)
	}
	return nil
}

// ClearUnread removes the new-message indicator from a roster entry.
func (s *SQLiteStore) ClearUnread(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE contacts SET unread = 0 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear unread: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
