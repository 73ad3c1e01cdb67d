// Package tablewriter renders bordered text tables for terminal output.
// Widths are measured in terminal cells, so wide runes and ANSI color codes
// line up.
package tablewriter

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Align is the horizontal alignment of a column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

const ellipsis = "…"

// Writer formats rows into a table.
type Writer struct {
	out      io.Writer
	headers  []string
	rows     [][]string
	aligns   []Align
	maxWidth int
}

// NewWriter returns a Writer that renders to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w}
}

// SetHeader sets the header row. It also fixes the column count: extra
// cells in later rows are dropped.
func (t *Writer) SetHeader(headers []string) {
	t.headers = headers
}

// SetAlignment sets per-column alignment. Columns without an entry are
// left aligned.
func (t *Writer) SetAlignment(aligns ...Align) {
	t.aligns = aligns
}

// SetMaxWidth truncates cells wider than n cells. Zero disables
// truncation.
func (t *Writer) SetMaxWidth(n int) {
	t.maxWidth = n
}

// Append adds a row.
func (t *Writer) Append(row ...string) {
	t.rows = append(t.rows, row)
}

// Render writes the table. Nothing is written for a table without headers
// or rows.
func (t *Writer) Render() error {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return nil
	}
	columns := t.columns()
	header := t.normalize(t.headers, columns)
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = t.normalize(row, columns)
	}

	widths := make([]int, columns)
	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	w := bufio.NewWriter(t.out)
	border := borderLine(widths)
	w.WriteString(border)
	if len(t.headers) > 0 {
		t.writeRow(w, header, widths)
		w.WriteString(border)
	}
	for _, row := range rows {
		t.writeRow(w, row, widths)
	}
	w.WriteString(border)
	return w.Flush()
}

func (t *Writer) columns() int {
	if len(t.headers) > 0 {
		return len(t.headers)
	}
	n := 0
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	return n
}

// normalize pads or trims row to columns cells and applies truncation.
func (t *Writer) normalize(row []string, columns int) []string {
	out := make([]string, columns)
	for i := 0; i < columns && i < len(row); i++ {
		cell := strings.ReplaceAll(row[i], "\n", " ")
		if t.maxWidth > 0 && displayWidth(cell) > t.maxWidth {
			cell = runewidth.Truncate(stripANSI(cell), t.maxWidth, ellipsis)
		}
		out[i] = cell
	}
	return out
}

func (t *Writer) writeRow(w *bufio.Writer, row []string, widths []int) {
	w.WriteString("|")
	for i, cell := range row {
		pad := strings.Repeat(" ", widths[i]-displayWidth(cell))
		w.WriteString(" ")
		if i < len(t.aligns) && t.aligns[i] == AlignRight {
			w.WriteString(pad + cell)
		} else {
			w.WriteString(cell + pad)
		}
		w.WriteString(" |")
	}
	w.WriteString("\n")
}

func borderLine(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, width := range widths {
		b.WriteString(strings.Repeat("-", width+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// displayWidth returns the terminal width of s, ignoring ANSI codes.
func displayWidth(s string) int {
	return runewidth.StringWidth(stripANSI(s))
}
