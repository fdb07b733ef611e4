// Package tui renders ntxbuild output for terminals: bordered summary
// tables, the markdown info report and an interactive picker.
package tui

import "github.com/charmbracelet/lipgloss"

const (
	GlyphCursor  = "▸"
	GlyphOK      = "✓"
	GlyphMissing = "✗"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen = lipgloss.Color("42")
	colorRed   = lipgloss.Color("196")
	colorCyan  = lipgloss.Color("51")
	colorDim   = lipgloss.Color("240")
	colorWhite = lipgloss.Color("255")
	colorYel   = lipgloss.Color("214")
)

var (
	borderStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	cellStyle = lipgloss.NewStyle().
			Foreground(colorWhite)
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYel)

	detailStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	matchStyle = lipgloss.NewStyle().
			Background(colorYel).
			Foreground(lipgloss.Color("0")).
			Bold(true)
)

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	okStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)
)

// Status renders a check or cross followed by text.
func Status(ok bool, text string) string {
	if ok {
		return okStyle.Render(GlyphOK) + " " + text
	}
	return errorStyle.Render(GlyphMissing) + " " + text
}

var emphasisStyle = lipgloss.NewStyle().Bold(true)

// Emphasis renders s in bold.
func Emphasis(s string) string {
	return emphasisStyle.Render(s)
}
