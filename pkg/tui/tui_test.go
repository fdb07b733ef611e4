package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/fdcavalcanti/ntxbuild/pkg/builder"
)

func TestNameTable(t *testing.T) {
	few := NameTable("Boards", []string{"sim", "esp32-devkitc"})
	require.Equal(t, []string{"Boards"}, few.Headers)
	require.Len(t, few.Rows, 2)

	var many []string
	for i := 0; i < 17; i++ {
		many = append(many, string(rune('a'+i)))
	}
	split := NameTable("Defconfigs", many)
	require.Equal(t, []string{"Defconfigs", "Defconfigs"}, split.Headers)
	require.Len(t, split.Rows, 9)
	require.Equal(t, []string{"q", ""}, split.Rows[8])

	exact := make([]string, SplitThreshold)
	require.Len(t, NameTable("Boards", exact).Headers, 1)
}

func TestTableRender(t *testing.T) {
	out := Table{
		Headers: []string{"Board", "Arch"},
		Rows:    [][]string{{"sim", "sim"}, {"esp32-devkitc", "xtensa"}},
	}.Render()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	require.Contains(t, lines[0], "╒")
	require.Contains(t, lines[1], "Board")
	require.Contains(t, lines[2], "╪")
	require.Contains(t, lines[3], "sim")
	require.Contains(t, lines[4], "┼")
	require.Contains(t, lines[5], "esp32-devkitc")
	require.Contains(t, lines[6], "╛")

	empty := Table{Headers: []string{"Boards"}}.Render()
	require.Len(t, strings.Split(strings.TrimRight(empty, "\n"), "\n"), 3)
	require.Equal(t, "", Table{}.Render())
}

func TestTableTruncate(t *testing.T) {
	tbl := Table{Headers: []string{"Name"}, Rows: [][]string{{"a-very-long-board-name"}}, MaxCellWidth: 8}
	require.Equal(t, []int{8}, tbl.widths())
	require.NotContains(t, tbl.Render(), "a-very-long-board-name")
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m pickerModel, presses ...string) (pickerModel, tea.Cmd) {
	var cmd tea.Cmd
	var next tea.Model = m
	for _, k := range presses {
		next, cmd = next.(pickerModel).Update(keyMsg(k))
	}
	return next.(pickerModel), cmd
}

var sampleItems = []Item{
	{Title: "esp32-devkitc", Detail: "xtensa/esp32"},
	{Title: "nucleo-f446re", Detail: "arm/stm32"},
	{Title: "sim", Detail: "sim/sim"},
}

func TestPickerNavigate(t *testing.T) {
	m, _ := send(newPicker("Boards", sampleItems), "down", "j", "j", "k")
	require.Equal(t, 1, m.cursor)

	m, cmd := send(m, "enter")
	require.Equal(t, 1, m.chosen)
	require.True(t, m.done)
	require.NotNil(t, cmd)
}

func TestPickerFilter(t *testing.T) {
	m, _ := send(newPicker("Boards", sampleItems), "/", "s", "t", "m")
	require.True(t, m.filter.active)
	require.Equal(t, []int{1}, m.visible)

	m, _ = send(m, "enter")
	require.False(t, m.filter.active)
	require.Equal(t, "stm", m.filter.query)

	m, _ = send(m, "enter")
	require.Equal(t, 1, m.chosen)

	m, _ = send(newPicker("Boards", sampleItems), "/", "z", "z")
	require.Empty(t, m.visible)
	require.Contains(t, m.View(), "no matches")
	m, _ = send(m, "esc")
	require.Len(t, m.visible, 3)
	require.False(t, m.filter.active)
}

func TestPickerQuit(t *testing.T) {
	m, cmd := send(newPicker("Boards", sampleItems), "q")
	require.True(t, m.done)
	require.Equal(t, -1, m.chosen)
	require.NotNil(t, cmd)
}

func TestPickerView(t *testing.T) {
	view := newPicker("Boards", sampleItems).View()
	require.Contains(t, view, "Boards")
	require.Contains(t, view, "3/3")
	require.Contains(t, view, "nucleo-f446re")
	require.Contains(t, view, "arm/stm32")
}

func TestHighlight(t *testing.T) {
	require.Equal(t, "plain", Highlight("plain", ""))
	require.Contains(t, Highlight("esp32-devkitc", "zz"), "esp32-devkitc")
}

func TestInfoReportMarkdown(t *testing.T) {
	r := InfoReport{Info: builder.Info{
		Workspace: "/work/nuttxspace",
		OSDir:     "nuttx",
		AppsDir:   "nuttx-apps",
		BuildTool: "make",
	}}
	md := r.Markdown()
	require.Contains(t, md, "NuttX root found at: `/work/nuttxspace`")
	require.Contains(t, md, "run `ntxbuild start`")
	require.Contains(t, md, "NuttX must be initialized first")

	r.HasRecord, r.RecordPath = true, "/work/nuttxspace/.ntxenv"
	r.Configured, r.Board, r.Arch, r.Artifacts = true, "sim", "sim", 4
	md = r.Markdown()
	require.Contains(t, md, "- Board: **sim**")
	require.Contains(t, md, "- Chip: -")
	require.Contains(t, md, "- Build artifacts: 4")
	require.NotContains(t, md, "initialized first")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	require.Equal(t, "  ", RenderMarkdown("  ", 80))
}
