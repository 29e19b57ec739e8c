// Package app owns the dashboard's client state: the current user
// snapshot, the active view, and the realtime channel lifecycle. The
// Router drives navigation between view renderers.
package app

import (
	"context"
	"fmt"

	"github.com/ashureev/agri-advisor/internal/config"
	"github.com/ashureev/agri-advisor/internal/domain"
	"github.com/ashureev/agri-advisor/internal/gateway"
	"github.com/ashureev/agri-advisor/internal/realtime"
	"github.com/ashureev/agri-advisor/internal/session"
)

// ViewID identifies one dashboard panel.
type ViewID int

const (
	ViewDiagnosis ViewID = iota
	ViewHistory
	ViewPosts
	ViewChat
	ViewShopping
	ViewProfile
	ViewBusinessProfile
)

// String returns the view's wire identifier, as used in deep links.
func (v ViewID) String() string {
	switch v {
	case ViewDiagnosis:
		return "ai-diagnosis"
	case ViewHistory:
		return "diagnosis-history"
	case ViewPosts:
		return "posts"
	case ViewChat:
		return "chat"
	case ViewShopping:
		return "shopping"
	case ViewProfile:
		return "profile"
	case ViewBusinessProfile:
		return "business-profile"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Title returns the navigation label for the view.
func (v ViewID) Title() string {
	switch v {
	case ViewDiagnosis:
		return "AI Diagnosis"
	case ViewHistory:
		return "History"
	case ViewPosts:
		return "Posts"
	case ViewChat:
		return "Chat"
	case ViewShopping:
		return "Shopping"
	case ViewProfile:
		return "Profile"
	case ViewBusinessProfile:
		return "Business Profile"
	default:
		return v.String()
	}
}

// ParseViewID maps a deep-link view parameter to a ViewID.
func ParseViewID(s string) (ViewID, bool) {
	switch s {
	case "ai-diagnosis", "":
		return ViewDiagnosis, true
	case "diagnosis-history":
		return ViewHistory, true
	case "posts":
		return ViewPosts, true
	case "chat":
		return ViewChat, true
	case "shopping":
		return ViewShopping, true
	case "profile":
		return ViewProfile, true
	case "business-profile":
		return ViewBusinessProfile, true
	default:
		return ViewDiagnosis, false
	}
}

// navOrder is the order views appear in the navigation bar.
var navOrder = []ViewID{
	ViewProfile,
	ViewDiagnosis,
	ViewHistory,
	ViewPosts,
	ViewChat,
	ViewShopping,
	ViewBusinessProfile,
}

// Allowed reports whether the user's capability flags permit the view.
func Allowed(v ViewID, user *domain.User) bool {
	if user == nil {
		return false
	}
	switch v {
	case ViewPosts:
		return user.Permissions.CanPost
	case ViewChat:
		return user.Permissions.CanChat
	case ViewShopping:
		return user.Permissions.CanShop
	case ViewBusinessProfile:
		return user.IsBusiness()
	default:
		return true
	}
}

// visible reports whether the view appears in the nav bar at all.
// Business Profile is hidden from public accounts rather than disabled.
func visible(v ViewID, user *domain.User) bool {
	if v == ViewBusinessProfile {
		return user != nil && user.IsBusiness()
	}
	return true
}

// Env bundles the dependencies a renderer needs. Param carries the
// optional navigation parameter, e.g. a conversation partner ID.
type Env struct {
	Config   *config.Config
	Gateway  *gateway.Client
	Sessions session.Store
	Channel  *realtime.Manager
	User     *domain.User
	Param    string
	Nav      Navigator
}

// Panel is the rendered output of a view: markup for the content slot
// plus the actions bound after the markup is in place.
type Panel struct {
	Markup  string
	Actions []Action
}

// Action is one interaction affordance exposed by the active view.
// Actions are attached as a child step of rendering, never pre-registered
// globally, because each navigation replaces the panel. When Prompt is
// non-empty the shell collects a line of input before invoking Do.
type Action struct {
	Key    string
	Label  string
	Prompt string
	Do     func(ctx context.Context, input string) error
}

// Renderer turns fetched data into a panel. Renderers must treat empty
// collections as a valid "nothing yet" state.
type Renderer interface {
	Render(ctx context.Context, env *Env) (Panel, error)
}

// Registry maps view identifiers to renderers.
type Registry struct {
	renderers map[ViewID]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[ViewID]Renderer)}
}

// Register binds a renderer to a view.
func (r *Registry) Register(v ViewID, renderer Renderer) {
	r.renderers[v] = renderer
}

// Lookup returns the renderer for a view, or nil when none is registered.
func (r *Registry) Lookup(v ViewID) Renderer {
	return r.renderers[v]
}
