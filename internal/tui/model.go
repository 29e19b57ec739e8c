// Package tui hosts the dashboard router inside a Bubble Tea program:
// one cooperative event loop driving navigation, view actions, and
// repaints triggered by realtime traffic.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/agri-advisor/internal/app"
	"github.com/ashureev/agri-advisor/internal/gateway"
	"github.com/ashureev/agri-advisor/internal/session"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const navTimeout = 30 * time.Second

// refreshMsg asks for a repaint after router state changed out of band
// (inbound chat message, unread marker).
type refreshMsg struct{}

// navDoneMsg reports a finished navigation.
type navDoneMsg struct{ err error }

// actionDoneMsg reports a finished view action.
type actionDoneMsg struct{ err error }

var (
	noticeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	fatalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// Model is the Bubble Tea model wrapping the router.
type Model struct {
	router *app.Router
	store  session.Store

	input   textinput.Model
	spin    spinner.Model
	pending *app.Action
	busy    bool
	notice  string
	actErr  string
	fatal   string

	quitting bool
}

// New creates the dashboard shell for an initialized router.
func New(router *app.Router, store session.Store) Model {
	ti := textinput.New()
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		router: router,
		store:  store,
		input:  ti,
		spin:   sp,
	}
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshMsg:
		// Notice() clears on read; only a non-empty read may replace the
		// notice still waiting for a frame.
		if n := m.router.Notice(); n != "" {
			m.notice = n
		}
		return m, nil

	case navDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m.handleFlowError(msg.err)
		}
		if n := m.router.Notice(); n != "" {
			m.notice = n
		}
		return m, nil

	case actionDoneMsg:
		m.busy = false
		m.actErr = ""
		if msg.err != nil {
			if errors.Is(msg.err, gateway.ErrSessionExpired) {
				return m.handleFlowError(msg.err)
			}
			m.actErr = msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Prompt mode captures everything until enter or esc.
	if m.pending != nil {
		switch msg.Type {
		case tea.KeyEnter:
			action := m.pending
			value := m.input.Value()
			m.pending = nil
			m.input.Blur()
			m.input.SetValue("")
			return m.runAction(action, value)
		case tea.KeyEsc:
			m.pending = nil
			m.input.Blur()
			m.input.SetValue("")
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.router.Teardown()
		return m, tea.Quit
	case "Q":
		return m.logout()
	}

	if m.busy {
		return m, nil
	}

	// Number keys navigate; view-action keys come from the active panel.
	if view, ok := navKey(key); ok {
		return m.navigate(view, "")
	}
	for _, action := range m.router.Actions() {
		if action.Key == key {
			if action.Prompt != "" {
				m.pending = &action
				m.input.Placeholder = action.Prompt
				m.input.Focus()
				return m, textinput.Blink
			}
			return m.runAction(&action, "")
		}
	}
	return m, nil
}

// navKey maps the nav-bar number keys to views.
func navKey(key string) (app.ViewID, bool) {
	switch key {
	case "1":
		return app.ViewProfile, true
	case "2":
		return app.ViewDiagnosis, true
	case "3":
		return app.ViewHistory, true
	case "4":
		return app.ViewPosts, true
	case "5":
		return app.ViewChat, true
	case "6":
		return app.ViewShopping, true
	case "7":
		return app.ViewBusinessProfile, true
	default:
		return 0, false
	}
}

func (m Model) navigate(view app.ViewID, param string) (tea.Model, tea.Cmd) {
	m.busy = true
	m.actErr = ""
	m.notice = ""
	router := m.router
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), navTimeout)
		defer cancel()
		return navDoneMsg{err: router.Navigate(ctx, view, param)}
	}
}

func (m Model) runAction(action *app.Action, input string) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), navTimeout)
		defer cancel()
		return actionDoneMsg{err: action.Do(ctx, input)}
	}
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.router.Teardown()
	if err := m.store.Clear(ctx); err != nil {
		m.actErr = err.Error()
		return m, nil
	}
	m.fatal = "Logged out."
	m.quitting = true
	return m, tea.Quit
}

// handleFlowError reacts to a session expiry surfaced through navigation:
// teardown already happened in the gateway hook, so just redirect out.
func (m Model) handleFlowError(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, gateway.ErrSessionExpired) || errors.Is(err, app.ErrNoSession) {
		m.fatal = "Session expired. Please run `agriadvisor login` again."
		m.quitting = true
		return m, tea.Quit
	}
	m.actErr = err.Error()
	return m, nil
}

// View renders the shell, the content panel, and the footer.
func (m Model) View() string {
	if m.quitting {
		if m.fatal != "" {
			return fatalStyle.Render(m.fatal) + "\n"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(m.router.Shell() + "\n\n")

	if m.busy {
		b.WriteString(m.spin.View() + " ")
	}
	b.WriteString(m.router.Content() + "\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	if m.actErr != "" {
		b.WriteString(fatalStyle.Render(m.actErr) + "\n")
	}

	if m.pending != nil {
		b.WriteString("\n" + m.input.View() + "\n")
		b.WriteString(footerStyle.Render("enter: submit · esc: cancel"))
		return b.String()
	}

	b.WriteString(footerStyle.Render(m.footer()))
	return b.String()
}

func (m Model) footer() string {
	parts := []string{"1-7: views"}
	for _, action := range m.router.Actions() {
		parts = append(parts, fmt.Sprintf("%s: %s", action.Key, action.Label))
	}
	parts = append(parts, "Q: logout", "q: quit")
	return strings.Join(parts, " · ")
}

// Run starts the program and wires router repaints into the event loop.
func Run(router *app.Router, store session.Store) error {
	program := tea.NewProgram(New(router, store), tea.WithAltScreen())
	router.SetUpdateHook(func() {
		program.Send(refreshMsg{})
	})
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
