// Package pattern parses and formats the textual grid notation used by the
// CLI: one row per note (row 0 is the lowest note), one character per
// column, 'x' or '1' marks an active cell.
package pattern

import (
	"fmt"
	"strings"

	"github.com/cbegin/stepsynth-go/internal/osc"
)

// Parse reads rows separated by newlines or commas and returns the grid
// transposed to [column][note]. Short rows are padded with silence; blank
// rows are skipped.
func Parse(text string) ([][]bool, error) {
	text = strings.ReplaceAll(text, ",", "\n")
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}
	if len(rows) > osc.NumNotes {
		return nil, fmt.Errorf("pattern has %d rows, at most %d notes", len(rows), osc.NumNotes)
	}
	columns := 0
	for _, r := range rows {
		if len(r) > columns {
			columns = len(r)
		}
	}
	grid := make([][]bool, columns)
	for c := range grid {
		grid[c] = make([]bool, osc.NumNotes)
	}
	for note, row := range rows {
		for c, ch := range row {
			switch ch {
			case 'x', 'X', '1':
				grid[c][note] = true
			case '.', '0', '-':
			default:
				return nil, fmt.Errorf("row %d: unexpected character %q", note, ch)
			}
		}
	}
	return grid, nil
}

// Format renders a [column][note] grid back into the row notation Parse
// accepts.
func Format(grid [][]bool) string {
	var b strings.Builder
	for note := 0; note < osc.NumNotes; note++ {
		if note > 0 {
			b.WriteByte('\n')
		}
		for c := range grid {
			on := note < len(grid[c]) && grid[c][note]
			if on {
				b.WriteByte('x')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
