package main

import (
	"fmt"
	"strings"
	"sync"

	stepsynth "github.com/cbegin/stepsynth-go"
)

// termDisplay renders the LED matrix as text, one frame per beat. It
// satisfies the synth's display contract: Clear, SetPixel per lit cell,
// Commit once per redraw.
type termDisplay struct {
	mu      sync.Mutex
	columns int
	lit     [][]bool
}

func newTermDisplay(columns int) *termDisplay {
	d := &termDisplay{columns: columns}
	d.lit = make([][]bool, columns)
	for c := range d.lit {
		d.lit[c] = make([]bool, stepsynth.NumNotes)
	}
	return d
}

func (d *termDisplay) Clear() {
	d.mu.Lock()
	for c := range d.lit {
		for n := range d.lit[c] {
			d.lit[c][n] = false
		}
	}
	d.mu.Unlock()
}

func (d *termDisplay) SetPixel(col, row int) {
	d.mu.Lock()
	if col >= 0 && col < d.columns && row >= 0 && row < stepsynth.NumNotes {
		d.lit[col][row] = true
	}
	d.mu.Unlock()
}

func (d *termDisplay) Commit() {
	d.mu.Lock()
	var b strings.Builder
	// Highest note on top.
	for n := stepsynth.NumNotes - 1; n >= 0; n-- {
		for c := 0; c < d.columns; c++ {
			if d.lit[c][n] {
				b.WriteString("##")
			} else {
				b.WriteString("..")
			}
		}
		b.WriteByte('\n')
	}
	d.mu.Unlock()
	fmt.Print("\033[H\033[2J" + b.String())
}

func (d *termDisplay) ScrollText(s string) {
	fmt.Println(s)
}
