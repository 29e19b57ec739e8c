package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	logoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("70"))

	navStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("70")).
			Padding(0, 1)

	navDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Strikethrough(true).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("70")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderShellLocked builds the navigation shell from the current user.
// Caller holds r.mu.
func (r *Router) renderShellLocked() string {
	var nav []string
	for _, v := range navOrder {
		if !visible(v, r.user) {
			continue
		}
		switch {
		case v == r.view:
			nav = append(nav, navActiveStyle.Render(v.Title()))
		case !Allowed(v, r.user):
			nav = append(nav, navDisabledStyle.Render(v.Title()))
		default:
			nav = append(nav, navStyle.Render(v.Title()))
		}
	}

	welcome := ""
	if r.user != nil {
		welcome = mutedStyle.Render("Welcome, " + r.user.Email)
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		logoStyle.Render("Sarawak Agri-Advisor"),
		"  ",
		strings.Join(nav, " "),
		"  ",
		welcome,
	)
}

func loadingPanel() string {
	return cardStyle.Render("Loading...")
}

func errorPanel(err error) string {
	return cardStyle.Render(errorStyle.Render(fmt.Sprintf("Failed to load view: %v", err)))
}

func comingSoonPanel(v ViewID) string {
	return cardStyle.Render(fmt.Sprintf("%s\n\n%s", v.Title(), mutedStyle.Render("Content for this view is coming soon.")))
}
