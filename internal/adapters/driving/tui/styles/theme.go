// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the chat TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// UserLabel marks the user's turns in the transcript.
	UserLabel lipgloss.Style

	// AssistantLabel marks the assistant's turns.
	AssistantLabel lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// StatusBar style for the bottom bar.
	StatusBar lipgloss.Style
}

// DefaultStyles returns styles based on the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	return &Styles{
		theme:          theme,
		Title:          lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
		UserLabel:      lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(theme.Success).Bold(true),
		Normal:         lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:          lipgloss.NewStyle().Foreground(theme.Muted),
		Error:          lipgloss.NewStyle().Foreground(theme.Error),
		StatusBar:      lipgloss.NewStyle().Foreground(theme.Muted).BorderTop(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(theme.Border),
	}
}

// Theme returns the theme the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
