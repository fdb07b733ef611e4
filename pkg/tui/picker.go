package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
)

// Item is one pickable entry.
type Item struct {
	Title  string
	Detail string
}

const pickerPage = 12

type pickerModel struct {
	title   string
	items   []Item
	visible []int
	cursor  int
	offset  int
	filter  filterBar
	chosen  int
	done    bool
}

func newPicker(title string, items []Item) pickerModel {
	m := pickerModel{title: title, items: items, filter: newFilterBar(), chosen: -1}
	m.refilter()
	return m
}

func (m *pickerModel) refilter() {
	m.visible = m.visible[:0]
	for i, it := range m.items {
		if matches(it.Title+" "+it.Detail, m.filter.query) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor, m.offset = 0, 0
}

func (m *pickerModel) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.visible)-1, m.cursor+delta))
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+pickerPage {
		m.offset = m.cursor - pickerPage + 1
	}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if km.String() == "ctrl+c" {
		m.done = true
		return m, tea.Quit
	}
	if m.filter.active {
		if key.Matches(km, keys.Clear) {
			m.filter.Clear()
			m.refilter()
			return m, nil
		}
		_, cmd := m.filter.Update(km)
		m.refilter()
		return m, cmd
	}

	switch {
	case key.Matches(km, keys.Quit):
		m.done = true
		return m, tea.Quit
	case key.Matches(km, keys.Up):
		m.move(-1)
	case key.Matches(km, keys.Down):
		m.move(1)
	case key.Matches(km, keys.PgUp):
		m.move(-pickerPage)
	case key.Matches(km, keys.PgDown):
		m.move(pickerPage)
	case key.Matches(km, keys.Filter):
		m.filter.Open()
		return m, nil
	case key.Matches(km, keys.Clear):
		m.filter.Clear()
		m.refilter()
	case key.Matches(km, keys.Choose):
		if len(m.visible) > 0 {
			m.chosen = m.visible[m.cursor]
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString(detailStyle.Render(fmt.Sprintf(" %d/%d", len(m.visible), len(m.items))))
	b.WriteString("\n\n")

	end := min(len(m.visible), m.offset+pickerPage)
	for i := m.offset; i < end; i++ {
		it := m.items[m.visible[i]]
		title := Highlight(it.Title, m.filter.query)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(GlyphCursor+" ") + selectedStyle.Render(it.Title))
		} else {
			b.WriteString("  " + itemStyle.Render(title))
		}
		if it.Detail != "" {
			b.WriteString("  " + detailStyle.Render(it.Detail))
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(errorStyle.Render("  no matches") + "\n")
	}

	b.WriteString("\n")
	if fv := m.filter.View(); fv != "" {
		b.WriteString(fv + "\n")
	}
	b.WriteString(keyBarText(m.filter.active) + "\n")
	return b.String()
}

// Pick shows items in a full-screen list and returns the chosen index.
// ok is false when the user quits without choosing.
func Pick(title string, items []Item) (index int, ok bool, err error) {
	if len(items) == 0 {
		return -1, false, nil
	}
	final, err := tea.NewProgram(newPicker(title, items), tea.WithAltScreen()).Run()
	if err != nil {
		return -1, false, eris.Wrap(err, "run picker")
	}
	m := final.(pickerModel)
	return m.chosen, m.chosen >= 0, nil
}
