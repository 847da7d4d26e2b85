package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table writes left-aligned columns. Widths are measured on the uncolored
// text so styled cells line up.
type Table struct {
	header []string
	rows   [][]cell
}

type cell struct {
	text   string
	styled string
}

// NewTable starts a table with the given column headers.
func NewTable(header ...string) *Table {
	return &Table{header: header}
}

// Row appends a row of plain cells.
func (t *Table) Row(values ...string) {
	row := make([]cell, len(values))
	for i, v := range values {
		row[i] = cell{text: v, styled: v}
	}
	t.rows = append(t.rows, row)
}

// StyledRow appends a row where styled[i] is the rendering of plain[i].
func (t *Table) StyledRow(plain, styled []string) {
	row := make([]cell, len(plain))
	for i := range plain {
		row[i] = cell{text: plain[i], styled: styled[i]}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(c.text))
			}
		}
	}

	var sb strings.Builder
	for i, h := range t.header {
		writeCell(&sb, h, RenderHeader(h), widths[i], i == len(t.header)-1)
	}
	sb.WriteByte('\n')
	for _, row := range t.rows {
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			writeCell(&sb, c.text, c.styled, widths[i], i == len(row)-1)
		}
		sb.WriteByte('\n')
	}
	_, err := fmt.Fprint(w, sb.String())
	return err
}

func writeCell(sb *strings.Builder, text, styled string, width int, last bool) {
	sb.WriteString(styled)
	if last {
		return
	}
	sb.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(text)+2))
}
