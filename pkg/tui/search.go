package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// filterBar is the inline filter field of the picker.
type filterBar struct {
	active bool
	input  textinput.Model
	query  string
}

func newFilterBar() filterBar {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 64
	ti.Width = 30
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	return filterBar{input: ti}
}

func (f *filterBar) Open() {
	f.active = true
	f.input.SetValue(f.query)
	f.input.Focus()
}

func (f *filterBar) Clear() {
	f.active = false
	f.input.Blur()
	f.input.Reset()
	f.query = ""
}

// Update feeds a key to the text input. It reports whether the filter
// was committed with enter.
func (f *filterBar) Update(msg tea.KeyMsg) (committed bool, cmd tea.Cmd) {
	if msg.String() == "enter" {
		f.active = false
		f.input.Blur()
		return true, nil
	}
	f.input, cmd = f.input.Update(msg)
	f.query = f.input.Value()
	return false, cmd
}

func (f *filterBar) View() string {
	if f.active {
		return f.input.View()
	}
	if f.query != "" {
		return keyDescStyle.Render("/" + f.query)
	}
	return ""
}

// matches reports whether text contains query, ignoring case.
func matches(text, query string) bool {
	return query == "" || strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

// Highlight marks every case-insensitive occurrence of query in content.
func Highlight(content, query string) string {
	if query == "" {
		return content
	}
	lower := strings.ToLower(content)
	lowerQuery := strings.ToLower(query)

	var b strings.Builder
	for {
		idx := strings.Index(lower, lowerQuery)
		if idx < 0 {
			b.WriteString(content)
			return b.String()
		}
		b.WriteString(content[:idx])
		b.WriteString(matchStyle.Render(content[idx : idx+len(query)]))
		content = content[idx+len(query):]
		lower = lower[idx+len(lowerQuery):]
	}
}
