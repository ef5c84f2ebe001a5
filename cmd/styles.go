package cmd

import "charm.land/lipgloss/v2"

// Terminal palette.
var (
	colorPrimary = lipgloss.Color("#8B5CF6")
	colorSuccess = lipgloss.Color("#22C55E")
	colorError   = lipgloss.Color("#F43F5E")
	colorAccent  = lipgloss.Color("#F97316")
	colorDim     = lipgloss.Color("#94A3B8")
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	headingStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	badStyle     = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)
