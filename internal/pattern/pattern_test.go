package pattern

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cbegin/stepsynth-go/internal/osc"
)

func TestParseTransposesRowsToColumns(t *testing.T) {
	grid, err := Parse("x..\n.x.\n..x")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(grid) != 3 {
		t.Fatalf("columns %d want 3", len(grid))
	}
	for c := 0; c < 3; c++ {
		for n := 0; n < osc.NumNotes; n++ {
			want := c == n
			if grid[c][n] != want {
				t.Fatalf("cell(%d,%d)=%v want %v", c, n, grid[c][n], want)
			}
		}
	}
}

func TestParseAcceptsCommasAndShortRows(t *testing.T) {
	a, err := Parse("x...x...,..x.")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := Parse("x...x...\n..x.....")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(b, a); diff != "" {
		t.Fatalf("comma/newline mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
	}{
		{"empty", "   \n \n"},
		{"too many rows", "x\nx\nx\nx\nx\nx\nx\nx\nx"},
		{"bad char", "x..?"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.in); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	const text = "x.......\n..x.....\n....x...\n......x.\n.......x\n.....x..\n...x....\n.x......"
	grid, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := Format(grid); got != text {
		t.Fatalf("round trip mismatch:\n%s\nwant:\n%s", got, text)
	}
}
