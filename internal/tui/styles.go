package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ---------------------------------------------------------------------------
// Color Palette
// ---------------------------------------------------------------------------

// ColorPrimary is the main accent color used for titles and highlights.
var ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7B78FF"}

// ColorAccent is a green-teal accent for the spinner and cursors.
var ColorAccent = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}

// ColorMuted is a subdued foreground color for secondary text.
var ColorMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// ColorSubtle provides very low-contrast placeholders and borders.
var ColorSubtle = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}

// ---------------------------------------------------------------------------
// Theme
// ---------------------------------------------------------------------------

// Theme holds the lipgloss styles used by drill's interactive surfaces.
type Theme struct {
	Spinner lipgloss.Style
	Status  lipgloss.Style
	Title   lipgloss.Style
	Hint    lipgloss.Style
}

// DefaultTheme returns the theme used when none is given.
func DefaultTheme() Theme {
	return Theme{
		Spinner: lipgloss.NewStyle().Foreground(ColorAccent),
		Status:  lipgloss.NewStyle().Foreground(ColorMuted),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Hint:    lipgloss.NewStyle().Foreground(ColorMuted).Italic(true),
	}
}

// buildHuhTheme derives a huh form theme from the palette so prompts match
// the rest of the output.
func buildHuhTheme(theme Theme) *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = theme.Title
	t.Focused.Description = theme.Hint
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(ColorSubtle)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(ColorAccent)
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(ColorPrimary)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Focused.Base.BorderStyle(lipgloss.HiddenBorder())
	return t
}
