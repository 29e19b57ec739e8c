// Package views contains the dashboard panel renderers. Each renderer
// turns fetched data (or an empty state) into markup plus the actions
// bound to the panel.
package views

import "github.com/charmbracelet/lipgloss"

var (
	card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("70")).
		Padding(1, 2)

	heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("70")).
		MarginBottom(1)

	subheading = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("114"))

	muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	errText = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196"))

	unreadBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226"))

	selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("70")).
			Padding(0, 1)
)
