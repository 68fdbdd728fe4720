package ui

import "github.com/charmbracelet/lipgloss"

// Color palette inspired by top security tools
var (
	Primary = lipgloss.Color("#7D56F4") // Purple
	Success = lipgloss.Color("#00D26A") // Bright green
	Warning = lipgloss.Color("#FFB800") // Amber
	Muted   = lipgloss.Color("#6B7280") // Gray
)

// Pre-configured styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	PrefixStyle = lipgloss.NewStyle().
			Foreground(Primary)

	FoundStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)
)
