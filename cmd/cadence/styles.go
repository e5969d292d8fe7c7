package main

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all command output.
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorHighlight = lipgloss.Color("#3B82F6")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	onStyle = lipgloss.NewStyle().
		Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	badgeStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	keyStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// rowStyle indents every row below its section title.
	rowStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)
