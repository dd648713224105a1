// Package cli provides terminal styling for the interactive talk client.
package cli

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary   lipgloss.Color // accent, session status
	User      lipgloss.Color // user transcript lines
	Assistant lipgloss.Color // assistant transcript lines
	Expert    lipgloss.Color // expert collaborator replies
	Warn      lipgloss.Color // warnings and failures
	Dim       lipgloss.Color // help and frame-level noise
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Primary:   lipgloss.Color("#00ff9f"),
	User:      lipgloss.Color("#7dd3fc"),
	Assistant: lipgloss.Color("#fbbf24"),
	Expert:    lipgloss.Color("#c084fc"),
	Warn:      lipgloss.Color("#f87171"),
	Dim:       lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Status    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Expert    lipgloss.Style
	Warn      lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Status:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		User:      lipgloss.NewStyle().Foreground(t.User),
		Assistant: lipgloss.NewStyle().Foreground(t.Assistant),
		Expert:    lipgloss.NewStyle().Foreground(t.Expert),
		Warn:      lipgloss.NewStyle().Foreground(t.Warn),
		Help:      lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Transcript renders one transcript line with a role prefix.
func (s Styles) Transcript(role, text string) string {
	switch role {
	case "user":
		return s.User.Render("you> ") + text
	case "assistant":
		return s.Assistant.Render("bot> ") + text
	case "expert":
		return s.Expert.Render("expert> ") + text
	default:
		return s.Help.Render(role+"> ") + text
	}
}
