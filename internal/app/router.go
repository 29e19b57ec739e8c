package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ashureev/agri-advisor/internal/config"
	"github.com/ashureev/agri-advisor/internal/domain"
	"github.com/ashureev/agri-advisor/internal/gateway"
	"github.com/ashureev/agri-advisor/internal/realtime"
	"github.com/ashureev/agri-advisor/internal/session"
)

// ErrNoSession is returned by Init when no token is persisted. The caller
// redirects to the login entry point; no backend call is made.
var ErrNoSession = errors.New("no session; login required")

// disabledNotice is shown when a navigation target is gated off by the
// user's plan.
const disabledNotice = "This feature is not available for your current subscription plan."

// Navigator is the narrow router surface exposed to view renderers for
// their bound actions.
type Navigator interface {
	Navigate(ctx context.Context, v ViewID, param string) error
	ChangePlan(ctx context.Context, tier domain.SubscriptionTier) error
	RefreshUser(ctx context.Context) (*domain.User, error)
	OpenChannel(ctx context.Context) error
	Notify()
}

// Router owns the dashboard's view state and drives navigation. All
// mutable session-scoped state (current user, active view, live channel)
// lives here with a defined lifecycle: Init, Navigate, Teardown.
type Router struct {
	cfg      *config.Config
	gw       *gateway.Client
	store    session.Store
	channel  *realtime.Manager
	registry *Registry

	mu      sync.Mutex
	user    *domain.User
	view    ViewID
	param   string
	gen     uint64
	shell   string
	content string
	notice  string
	actions []Action
	ready   bool

	onUpdate func()
}

// NewRouter wires the router and installs the single 401 handler: on
// session expiry the token is cleared, then the channel is closed.
func NewRouter(cfg *config.Config, gw *gateway.Client, store session.Store, channel *realtime.Manager, registry *Registry) *Router {
	r := &Router{
		cfg:      cfg,
		gw:       gw,
		store:    store,
		channel:  channel,
		registry: registry,
	}
	gw.OnSessionExpired(func(ctx context.Context) {
		if err := store.Clear(ctx); err != nil {
			slog.Error("Failed to clear session on expiry", "error", err)
		}
		channel.Close()
	})
	return r
}

// SetUpdateHook registers a callback fired whenever rendered state
// changes outside a Navigate call (e.g. an inbound chat message).
func (r *Router) SetUpdateHook(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = fn
}

// Init is the sole authentication guard: it reads the session and fails
// with ErrNoSession before any backend call when the token is absent.
// On success it fetches the current user, renders the shell, and
// navigates to the initial view (deep links honored).
func (r *Router) Init(ctx context.Context, deepView, deepParam string) error {
	token, err := r.store.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if token == "" {
		return ErrNoSession
	}

	user, err := r.gw.Me(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.user = user
	r.ready = true
	r.shell = r.renderShellLocked()
	r.mu.Unlock()

	view, ok := ParseViewID(deepView)
	if !ok {
		slog.Warn("Unknown deep-link view, falling back to diagnosis", "view", deepView)
	}
	return r.Navigate(ctx, view, deepParam)
}

// Navigate is the core operation: capability gate, view-state update,
// channel cleanup on view exit, render dispatch, action binding.
// Navigating to the already-active view re-runs the steps (refresh).
func (r *Router) Navigate(ctx context.Context, v ViewID, param string) error {
	r.mu.Lock()
	if !r.ready {
		r.mu.Unlock()
		return fmt.Errorf("router not initialized")
	}

	// A disabled control short-circuits: notice only, no state change,
	// no fetch.
	if !Allowed(v, r.user) {
		r.notice = disabledNotice
		r.mu.Unlock()
		r.notify()
		return nil
	}

	r.gen++
	gen := r.gen
	r.view = v
	r.param = param
	r.notice = ""
	r.actions = nil
	r.shell = r.renderShellLocked()
	r.content = loadingPanel()

	// Channels are scoped to the view that owns them.
	if v != ViewChat && r.channel.IsOpen() {
		r.channel.Close()
	}

	renderer := r.registry.Lookup(v)
	env := &Env{
		Config:   r.cfg,
		Gateway:  r.gw,
		Sessions: r.store,
		Channel:  r.channel,
		User:     r.user,
		Param:    param,
		Nav:      r,
	}
	r.mu.Unlock()
	r.notify()

	if renderer == nil {
		r.apply(gen, Panel{Markup: comingSoonPanel(v)}, nil)
		return nil
	}

	panel, err := renderer.Render(ctx, env)
	if errors.Is(err, gateway.ErrSessionExpired) {
		// Handled once, centrally: never re-displayed as a panel error.
		return err
	}
	r.apply(gen, panel, err)
	return nil
}

// apply installs a render result unless a later navigation superseded it.
func (r *Router) apply(gen uint64, panel Panel, err error) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		slog.Debug("Discarding superseded render", "generation", gen)
		return
	}
	if err != nil {
		r.content = errorPanel(err)
		r.actions = nil
	} else {
		r.content = panel.Markup
		r.actions = panel.Actions
	}
	r.mu.Unlock()
	r.notify()
}

// ChangePlan updates the subscription and re-renders the entire shell:
// the plan change may have flipped capability flags, so the navigation
// itself must be rebuilt, not just the content slot.
func (r *Router) ChangePlan(ctx context.Context, tier domain.SubscriptionTier) error {
	user, err := r.gw.UpdateSubscription(ctx, tier)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.user = user
	r.shell = r.renderShellLocked()
	r.mu.Unlock()

	return r.Navigate(ctx, ViewProfile, "")
}

// RefreshUser re-fetches the current user snapshot and rebuilds the
// shell from it. The profile view refreshes on entry; everywhere else
// staleness between refreshes is accepted.
func (r *Router) RefreshUser(ctx context.Context) (*domain.User, error) {
	user, err := r.gw.Me(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.user = user
	r.shell = r.renderShellLocked()
	r.mu.Unlock()
	return user, nil
}

// OpenChannel opens the realtime channel with the persisted token.
func (r *Router) OpenChannel(ctx context.Context) error {
	token, err := r.store.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if token == "" {
		return ErrNoSession
	}
	return r.channel.Open(ctx, token)
}

// Teardown releases resources on exit or logout.
func (r *Router) Teardown() {
	r.channel.Close()
}

// Notify fires the update hook; renderers call it when async events
// change what should be on screen.
func (r *Router) Notify() {
	r.notify()
}

func (r *Router) notify() {
	r.mu.Lock()
	fn := r.onUpdate
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// User returns the current user snapshot.
func (r *Router) User() *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.user
}

// Current returns the active view and its parameter.
func (r *Router) Current() (ViewID, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view, r.param
}

// Shell returns the rendered navigation shell.
func (r *Router) Shell() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shell
}

// Content returns the rendered content panel.
func (r *Router) Content() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

// Notice returns the transient user-facing notice, clearing it.
func (r *Router) Notice() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.notice
	r.notice = ""
	return n
}

// Actions returns the active view's bound actions.
func (r *Router) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.actions
}
