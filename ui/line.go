package ui

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const (
	HeadInfo  = "--"
	HeadError = "!!"
	HeadIn    = "<-"
	HeadOut   = "->"
)

const timeFormat = "15:04:05"

// minBodyWidth is the narrowest body for which wrapping is attempted.
const minBodyWidth = 10

func IsSplitRune(c rune) bool {
	return c == ' ' || c == '\t'
}

// Line is one entry of the console output.
type Line struct {
	At   time.Time
	Head string
	Body string
}

func NewLineNow(head, body string) Line {
	return Line{At: time.Now(), Head: head, Body: body}
}

// Render formats the line into rows of at most width columns.  Rows after
// the first are indented so that the body stays aligned.  A width of zero
// or less disables wrapping.
func (line Line) Render(width int) []string {
	prefix := line.At.Format(timeFormat) + " " + runewidth.FillRight(line.Head, 2) + " "
	indent := strings.Repeat(" ", runewidth.StringWidth(prefix))

	bodyWidth := width - len(indent)
	if width <= 0 || bodyWidth < minBodyWidth {
		return []string{prefix + line.Body}
	}

	rows := Wrap(line.Body, bodyWidth)
	for i := range rows {
		if i == 0 {
			rows[i] = prefix + rows[i]
		} else {
			rows[i] = indent + rows[i]
		}
	}
	return rows
}

// Wrap splits s into rows of at most width columns, breaking at spaces when
// possible.  It always returns at least one row.
func Wrap(s string, width int) []string {
	var (
		rows []string
		row  strings.Builder
		x    int
	)
	flush := func() {
		rows = append(rows, strings.TrimRight(row.String(), " \t"))
		row.Reset()
		x = 0
	}

	for _, word := range splitWords(s) {
		w := runewidth.StringWidth(word)
		split := IsSplitRune([]rune(word)[0])

		if split {
			if x == 0 {
				// Don't add space at the beginning of a row
				continue
			}
			if width < x+w {
				flush()
				continue
			}
		} else if width < x+w && x != 0 {
			flush()
		}

		for width < x+w {
			// the word alone does not fit, cut it.
			head := runewidth.Truncate(word, width-x, "")
			if head == "" {
				break
			}
			row.WriteString(head)
			flush()
			word = word[len(head):]
			w = runewidth.StringWidth(word)
		}
		row.WriteString(word)
		x += w
	}

	if x != 0 || len(rows) == 0 {
		flush()
	}
	return rows
}

// splitWords cuts s into alternating runs of split and non-split runes.
func splitWords(s string) (words []string) {
	start := 0
	lastWasSplit := false
	for i, r := range s {
		curIsSplit := IsSplitRune(r)
		if i != 0 && lastWasSplit != curIsSplit {
			words = append(words, s[start:i])
			start = i
		}
		lastWasSplit = curIsSplit
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return
}
