package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

// Table lays out cells in columns aligned on their display width, so that
// wide characters in user and channel names do not break the alignment.
type Table struct {
	header []string
	rows   [][]string
	widths []int
}

func NewTable(header ...string) *Table {
	t := &Table{}
	t.header = t.fit(header)
	return t
}

func (t *Table) fit(cells []string) []string {
	for i, c := range cells {
		w := runewidth.StringWidth(c)
		if i < len(t.widths) {
			if t.widths[i] < w {
				t.widths[i] = w
			}
		} else {
			t.widths = append(t.widths, w)
		}
	}
	return cells
}

func (t *Table) Append(cells ...string) {
	t.rows = append(t.rows, t.fit(cells))
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the header and the rows.  When width is positive, the last
// column is truncated so that rows fit.
func (t *Table) Render(width int) []string {
	res := make([]string, 0, len(t.rows)+1)
	if len(t.header) != 0 {
		res = append(res, t.renderRow(t.header, width))
	}
	for _, row := range t.rows {
		res = append(res, t.renderRow(row, width))
	}
	return res
}

func (t *Table) renderRow(cells []string, width int) string {
	var sb strings.Builder
	x := 0
	for i, c := range cells {
		if i != 0 {
			sb.WriteString(columnGap)
			x += len(columnGap)
		}
		if i == len(cells)-1 {
			if 0 < width && width-x < runewidth.StringWidth(c) {
				c = runewidth.Truncate(c, width-x, "…")
			}
			sb.WriteString(c)
			break
		}
		sb.WriteString(runewidth.FillRight(c, t.widths[i]))
		x += t.widths[i]
	}
	return strings.TrimRight(sb.String(), " ")
}
