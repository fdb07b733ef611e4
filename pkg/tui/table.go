package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// SplitThreshold is the row count above which name lists are folded into
// two columns.
const SplitThreshold = 15

// Table is a grid drawn with box characters, one rule between rows.
type Table struct {
	Headers []string
	Rows    [][]string
	// MaxCellWidth truncates longer cells when positive.
	MaxCellWidth int
}

// NameTable lists names under header, in two columns when there are more
// than SplitThreshold of them.
func NameTable(header string, names []string) Table {
	if len(names) <= SplitThreshold {
		t := Table{Headers: []string{header}}
		for _, n := range names {
			t.Rows = append(t.Rows, []string{n})
		}
		return t
	}
	t := Table{Headers: []string{header, header}}
	for i := 0; i < len(names); i += 2 {
		row := []string{names[i], ""}
		if i+1 < len(names) {
			row[1] = names[i+1]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t Table) cell(s string) string {
	if t.MaxCellWidth > 0 && runewidth.StringWidth(s) > t.MaxCellWidth {
		return runewidth.Truncate(s, t.MaxCellWidth, "…")
	}
	return s
}

func (t Table) widths() []int {
	w := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		w[i] = runewidth.StringWidth(t.cell(h))
	}
	for _, row := range t.Rows {
		for i := range w {
			if i < len(row) {
				if cw := runewidth.StringWidth(t.cell(row[i])); cw > w[i] {
					w[i] = cw
				}
			}
		}
	}
	return w
}

func rule(widths []int, left, fill, mid, right string) string {
	var b strings.Builder
	b.WriteString(left)
	for i, w := range widths {
		if i > 0 {
			b.WriteString(mid)
		}
		b.WriteString(strings.Repeat(fill, w+2))
	}
	b.WriteString(right)
	return borderStyle.Render(b.String())
}

func (t Table) line(widths []int, cells []string, style func(...string) string) string {
	bar := borderStyle.Render("│")
	var b strings.Builder
	b.WriteString(bar)
	for i, w := range widths {
		v := ""
		if i < len(cells) {
			v = t.cell(cells[i])
		}
		b.WriteString(" " + style(runewidth.FillRight(v, w)) + " ")
		b.WriteString(bar)
	}
	return b.String()
}

// Render draws the table, ending with a newline.
func (t Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}
	w := t.widths()
	lines := []string{
		rule(w, "╒", "═", "╤", "╕"),
		t.line(w, t.Headers, headerStyle.Render),
	}
	if len(t.Rows) == 0 {
		lines = append(lines, rule(w, "╘", "═", "╧", "╛"))
		return strings.Join(lines, "\n") + "\n"
	}
	lines = append(lines, rule(w, "╞", "═", "╪", "╡"))
	for i, row := range t.Rows {
		if i > 0 {
			lines = append(lines, rule(w, "├", "─", "┼", "┤"))
		}
		lines = append(lines, t.line(w, row, cellStyle.Render))
	}
	lines = append(lines, rule(w, "╘", "═", "╧", "╛"))
	return strings.Join(lines, "\n") + "\n"
}
