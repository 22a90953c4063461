package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("#50E3C2")
	secondary = lipgloss.Color("#F6AE2D")
	muted     = lipgloss.Color("#8CA1AE")
	warning   = lipgloss.Color("#FF6B6B")
	border    = lipgloss.Color("#2D6A80")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Foreground(accent).
			Bold(true).
			Underline(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)

	headerCellStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	cursorStyle     = lipgloss.NewStyle().Reverse(true)
	okStyle         = lipgloss.NewStyle().Foreground(accent)
	badStyle        = lipgloss.NewStyle().Foreground(warning).Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(muted)
	statusStyle     = lipgloss.NewStyle().Foreground(secondary).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(warning).Bold(true)
	helpStyle       = lipgloss.NewStyle().Foreground(muted)
	tagStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#05090C")).Background(accent).Padding(0, 1)
)
