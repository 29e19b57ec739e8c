package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ashureev/agri-advisor/internal/app"
	"github.com/ashureev/agri-advisor/internal/config"
	"github.com/ashureev/agri-advisor/internal/domain"
	"github.com/ashureev/agri-advisor/internal/gateway"
	"github.com/ashureev/agri-advisor/internal/realtime"
	tea "github.com/charmbracelet/bubbletea"
)

const gatedNotice = "This feature is not available for your current subscription plan."

type memStore struct {
	mu    sync.Mutex
	token string
}

func (s *memStore) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *memStore) Contacts(ctx context.Context) ([]domain.Contact, error) { return nil, nil }

func (s *memStore) UpsertContact(ctx context.Context, c domain.Contact) error { return nil }

func (s *memStore) MarkUnread(ctx context.Context, userID int64) error { return nil }

func (s *memStore) ClearUnread(ctx context.Context, userID int64) error { return nil }

func (s *memStore) Ping(ctx context.Context) error { return nil }

func (s *memStore) Close() error { return nil }

// newGatedModel builds a shell around a router whose user lacks every
// optional capability, so chat navigation trips the plan gate.
func newGatedModel(t *testing.T) Model {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 1,
			"email": "farmer@example.com",
			"user_type": "public",
			"subscription_tier": "free",
			"permissions": {"can_post": false, "can_chat": false, "can_shop": false, "can_comment": false, "can_like_share": false}
		}`))
	}))
	t.Cleanup(srv.Close)

	store := &memStore{token: "test-token"}
	gw := gateway.New(srv.URL, store)
	channel, err := realtime.NewManager(srv.URL)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	cfg := &config.Config{BaseURL: srv.URL, Language: "en", StatePath: "unused"}
	router := app.NewRouter(cfg, gw, store, channel, app.NewRegistry())
	if err := router.Init(context.Background(), "", ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return New(router, store)
}

// runGatedNavigate performs the gated navigation and returns the model
// plus the completion message the command produced.
func runGatedNavigate(t *testing.T, m Model) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.navigate(app.ViewChat, "")
	if cmd == nil {
		t.Fatal("Expected a navigation command")
	}
	return next.(Model), cmd()
}

func TestGatedNoticeSurvivesRefreshThenNavDone(t *testing.T) {
	m, done := runGatedNavigate(t, newGatedModel(t))

	// The router's update hook delivers a repaint before the command
	// result lands.
	next, _ := m.Update(refreshMsg{})
	next, _ = next.Update(done)

	if got := next.(Model).notice; got != gatedNotice {
		t.Errorf("Expected gated notice to survive, got %q", got)
	}
}

func TestGatedNoticeSurvivesNavDoneThenRefresh(t *testing.T) {
	m, done := runGatedNavigate(t, newGatedModel(t))

	next, _ := m.Update(done)
	next, _ = next.Update(refreshMsg{})

	if got := next.(Model).notice; got != gatedNotice {
		t.Errorf("Expected gated notice to survive, got %q", got)
	}
}

func TestNoticeClearsOnNextNavigation(t *testing.T) {
	m, done := runGatedNavigate(t, newGatedModel(t))
	next, _ := m.Update(done)

	// Navigating somewhere allowed drops the stale notice.
	model, cmd := next.(Model).navigate(app.ViewProfile, "")
	next, _ = model.Update(cmd())

	if got := next.(Model).notice; got != "" {
		t.Errorf("Expected notice to clear on the next navigation, got %q", got)
	}
}
