package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const columnGap = "  "

// Format returns the rows padded according to the widest entry in each
// column. Short rows simply end early.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := Widths(rows)
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = formatRow(row, widths, alignments)
	}
	return out
}

// WithHeader formats header and rows together so that the header columns
// line up with the data. The first returned line is the header.
func WithHeader(header []string, rows [][]string, alignments []Alignment) []string {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, header)
	all = append(all, rows...)
	return Format(all, alignments)
}

// Widths returns the display width of the widest cell in each column.
func Widths(rows [][]string) []int {
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	widths := make([]int, colCount)
	for _, row := range rows {
		for c, cell := range row {
			if width := cellWidth(cell); width > widths[c] {
				widths[c] = width
			}
		}
	}
	return widths
}

func formatRow(row []string, widths []int, alignments []Alignment) string {
	var b strings.Builder
	for c := range widths {
		if c >= len(row) {
			break
		}
		cell := row[c]
		if c > 0 {
			b.WriteString(columnGap)
		}
		pad := widths[c] - cellWidth(cell)
		if c < len(alignments) && alignments[c] == AlignRight {
			writeSpaces(&b, pad)
			b.WriteString(cell)
		} else {
			b.WriteString(cell)
			if c < len(row)-1 {
				writeSpaces(&b, pad)
			}
		}
	}
	return b.String()
}

func cellWidth(text string) int {
	return runewidth.StringWidth(text)
}

func writeSpaces(b *strings.Builder, count int) {
	if count <= 0 {
		return
	}
	b.WriteString(strings.Repeat(" ", count))
}
