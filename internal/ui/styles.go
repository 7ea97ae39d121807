package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorError     = lipgloss.Color("196") // Red
)

// HeaderStyle for the title line.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// SelectedItem style for the highlighted row.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// NormalItem style for unselected rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// TimestampStyle for the date column.
var TimestampStyle = lipgloss.NewStyle().
	Foreground(colorSecondary)

// SourceBadge style for the trailing [source] label.
var SourceBadge = lipgloss.NewStyle().
	Foreground(colorPrimary)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for an error status.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true)

// EmptyStyle for the placeholder shown before any item arrives.
var EmptyStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)
