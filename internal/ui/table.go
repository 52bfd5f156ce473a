package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. A zero Width fits the widest cell.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Cells are padded by hand rather
// than with lipgloss Width, which wraps content instead of truncating it.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	widths := t.widths()
	pad := func(s string, width int) string {
		n := lipgloss.Width(s)
		if n > width {
			r := []rune(s)
			return string(r[:min(len(r), width)])
		}
		return s + strings.Repeat(" ", width-n)
	}

	headers := make([]string, len(t.Columns))
	dividers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = headerStyle.Render(pad(col.Title, widths[i]))
		dividers[i] = StyleMeta.Render(strings.Repeat("-", widths[i]))
	}
	sb.WriteString(strings.Join(headers, " ") + "\n")
	sb.WriteString(strings.Join(dividers, " ") + "\n")

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells[j] = cellStyle.Render(pad(val, widths[j]))
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}

	return sb.String()
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		if col.Width > 0 {
			widths[i] = col.Width
			continue
		}
		widths[i] = lipgloss.Width(col.Title)
		for _, row := range t.Rows {
			if i < len(row) {
				widths[i] = max(widths[i], lipgloss.Width(row[i]))
			}
		}
	}
	return widths
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-22s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}
