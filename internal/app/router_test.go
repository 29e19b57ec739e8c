package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashureev/agri-advisor/internal/config"
	"github.com/ashureev/agri-advisor/internal/domain"
	"github.com/ashureev/agri-advisor/internal/gateway"
	"github.com/ashureev/agri-advisor/internal/realtime"
)

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

// stubRenderer returns a fixed panel, optionally blocking until released.
type stubRenderer struct {
	markup  string
	release chan struct{}
}

func (r *stubRenderer) Render(ctx context.Context, env *Env) (Panel, error) {
	if r.release != nil {
		<-r.release
	}
	return Panel{Markup: r.markup}, nil
}

func freeUserJSON() string {
	return `{
		"id": 1,
		"email": "farmer@example.com",
		"user_type": "public",
		"subscription_tier": "free",
		"permissions": {"can_post": false, "can_chat": false, "can_shop": false, "can_comment": false, "can_like_share": false}
	}`
}

func newTestRouter(t *testing.T, handler http.HandlerFunc, registry *Registry) (*Router, *memStore, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store := &memStore{token: "test-token"}
	gw := gateway.New(srv.URL, store)
	channel, err := realtime.NewManager(srv.URL)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if registry == nil {
		registry = NewRegistry()
	}
	cfg := &config.Config{BaseURL: srv.URL, Language: "en", StatePath: "unused"}
	return NewRouter(cfg, gw, store, channel, registry), store, &calls
}

func TestInitWithoutSession(t *testing.T) {
	router, store, calls := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(freeUserJSON()))
	}, nil)
	store.token = ""

	err := router.Init(context.Background(), "", "")
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("Expected ErrNoSession, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("Expected zero backend calls without a session, got %d", calls.Load())
	}
}

func TestInitDeepLink(t *testing.T) {
	router, _, _ := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(freeUserJSON()))
	}, nil)

	if err := router.Init(context.Background(), "diagnosis-history", ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	view, _ := router.Current()
	if view != ViewHistory {
		t.Errorf("Expected deep link to land on history, got %v", view)
	}
}

func TestNavigateGatedViewShortCircuits(t *testing.T) {
	router, _, calls := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(freeUserJSON()))
	}, nil)

	if err := router.Init(context.Background(), "", ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	before := calls.Load()

	if err := router.Navigate(context.Background(), ViewChat, ""); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	if calls.Load() != before {
		t.Errorf("Expected no backend calls for a gated view, got %d new", calls.Load()-before)
	}
	if got := router.Notice(); got != disabledNotice {
		t.Errorf("Expected disabled notice, got %q", got)
	}
	if view, _ := router.Current(); view != ViewDiagnosis {
		t.Errorf("Expected view to stay on diagnosis, got %v", view)
	}
}

func TestNoticeClearsOnRead(t *testing.T) {
	router, _, _ := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(freeUserJSON()))
	}, nil)

	if err := router.Init(context.Background(), "", ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := router.Navigate(context.Background(), ViewShopping, ""); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	if got := router.Notice(); got != disabledNotice {
		t.Fatalf("Expected disabled notice, got %q", got)
	}
	if got := router.Notice(); got != "" {
		t.Errorf("Expected notice to clear after read, got %q", got)
	}
}

func TestChangePlanRebuildsShell(t *testing.T) {
	router, _, _ := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/users/me/subscription" {
			w.Write([]byte(`{
				"id": 1,
				"email": "farmer@example.com",
				"user_type": "public",
				"subscription_tier": "tier_15",
				"permissions": {"can_post": true, "can_chat": true, "can_shop": true, "can_comment": true, "can_like_share": true}
			}`))
			return
		}
		w.Write([]byte(freeUserJSON()))
	}, nil)

	if err := router.Init(context.Background(), "", ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := router.ChangePlan(context.Background(), domain.Tier15); err != nil {
		t.Fatalf("ChangePlan failed: %v", err)
	}

	user := router.User()
	if user.SubscriptionTier != domain.Tier15 {
		t.Errorf("Expected tier_15 after plan change, got %q", user.SubscriptionTier)
	}
	if !user.Permissions.CanChat {
		t.Error("Expected chat capability after upgrade")
	}
	if view, _ := router.Current(); view != ViewProfile {
		t.Errorf("Expected plan change to land on profile, got %v", view)
	}
	if !strings.Contains(router.Shell(), "farmer@example.com") {
		t.Error("Expected shell to show the signed-in email")
	}
}

func TestSupersededRenderDiscarded(t *testing.T) {
	slow := &stubRenderer{markup: "stale panel", release: make(chan struct{})}
	fast := &stubRenderer{markup: "fresh panel"}
	registry := NewRegistry()
	registry.Register(ViewDiagnosis, slow)
	registry.Register(ViewProfile, fast)

	router, _, _ := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(freeUserJSON()))
	}, registry)

	// Init navigates to diagnosis, which blocks in the slow renderer.
	done := make(chan error, 1)
	go func() {
		done <- router.Init(context.Background(), "", "")
	}()

	// Wait until the slow render is in flight, then supersede it.
	for {
		if view, _ := router.Current(); view == ViewDiagnosis {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := router.Navigate(context.Background(), ViewProfile, ""); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	close(slow.release)
	if err := <-done; err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if got := router.Content(); got != "fresh panel" {
		t.Errorf("Expected superseded render to be discarded, got %q", got)
	}
}

func TestSessionExpiryClearsStoreAndChannel(t *testing.T) {
	router, store, _ := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/me" && r.Header.Get("Authorization") == "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(freeUserJSON()))
	}, nil)

	err := router.Init(context.Background(), "", "")
	if !errors.Is(err, gateway.ErrSessionExpired) {
		t.Fatalf("Expected ErrSessionExpired, got %v", err)
	}

	token, _ := store.GetToken(context.Background())
	if token != "" {
		t.Error("Expected token to be cleared on expiry")
	}
}

func TestParseViewIDRoundTrip(t *testing.T) {
	for _, v := range navOrder {
		got, ok := ParseViewID(v.String())
		if !ok || got != v {
			t.Errorf("Expected %q to parse back to %v, got %v (ok=%v)", v.String(), v, got, ok)
		}
	}
	if _, ok := ParseViewID("unknown-view"); ok {
		t.Error("Expected unknown view to report ok=false")
	}
}

func TestAllowedGating(t *testing.T) {
	business := &domain.User{
		UserType: domain.UserTypeBusiness,
		Permissions: domain.Permissions{
			CanPost: true, CanChat: true, CanShop: true,
		},
	}
	free := &domain.User{UserType: domain.UserTypePublic}

	if Allowed(ViewChat, free) {
		t.Error("Expected chat to be gated for a free user")
	}
	if !Allowed(ViewChat, business) {
		t.Error("Expected chat to be allowed with the capability flag")
	}
	if Allowed(ViewBusinessProfile, free) {
		t.Error("Expected business profile to be gated for public accounts")
	}
	if !Allowed(ViewDiagnosis, free) {
		t.Error("Expected diagnosis to be open to every plan")
	}
	if visible(ViewBusinessProfile, free) {
		t.Error("Expected business profile to be hidden from public accounts")
	}
}
