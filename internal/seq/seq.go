package seq

import (
	"sync/atomic"

	"github.com/cbegin/stepsynth-go/internal/osc"
)

// DefaultColumns is the number of steps in the stock grid.
const DefaultColumns = 8

// NumNotes mirrors the oscillator bank size; one grid row per note.
const NumNotes = osc.NumNotes

// Display is the LED-matrix collaborator. It is driven once per beat with a
// full redraw; it is never touched from the audio path.
type Display interface {
	Clear()
	SetPixel(col, row int)
	Commit()
}

// TextScroller is implemented by displays that can scroll a banner. Only
// used at startup.
type TextScroller interface {
	ScrollText(s string)
}

// LineReader reports the current level of a note's digital input line.
// Used at beat boundaries to re-prime held buttons.
type LineReader interface {
	ReadLine(note int) bool
}

type cellRow [NumNotes]atomic.Bool

// Sequencer owns the toggle grid, the playing column and the pending-press
// flags. Advance is only ever called from the control loop; Press may be
// called from any context (it is the interrupt-side half of the edge
// detector and does nothing but an atomic store). The grid and column are
// read lock-free by the mixer.
type Sequencer struct {
	columns int
	grid    []cellRow
	column  atomic.Int32
	pending [NumNotes]atomic.Bool
	lines   LineReader
	display Display
	lastMs  int64 // control-loop clock at the previous advance
}

// New creates a sequencer with the given column count. lines and display
// may be nil (headless / test use).
func New(columns int, lines LineReader, display Display) *Sequencer {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return &Sequencer{
		columns: columns,
		grid:    make([]cellRow, columns),
		lines:   lines,
		display: display,
	}
}

// Press records a rising edge on a note's line. Safe to call concurrently
// with everything else; the press is consumed by the next Advance.
func (s *Sequencer) Press(note int) {
	if note < 0 || note >= NumNotes {
		return
	}
	s.pending[note].Store(true)
}

// Pending reports whether a press is waiting for the next beat.
func (s *Sequencer) Pending(note int) bool {
	return s.pending[note].Load()
}

// Columns returns the grid width.
func (s *Sequencer) Columns() int { return s.columns }

// Column returns the currently playing column.
func (s *Sequencer) Column() int { return int(s.column.Load()) }

// Cell reports the toggle state of one grid cell.
func (s *Sequencer) Cell(col, note int) bool {
	return s.grid[col][note].Load()
}

// Active reports whether a note is lit in the currently playing column.
// This is the mixer's per-tick read path.
func (s *Sequencer) Active(note int) bool {
	return s.grid[s.column.Load()][note].Load()
}

// Toggle flips one cell directly, bypassing the press path. Used by the UI
// and pattern loading, not by the beat machinery.
func (s *Sequencer) Toggle(col, note int) {
	c := &s.grid[col][note]
	c.Store(!c.Load())
}

// SetCell forces one cell to a given state.
func (s *Sequencer) SetCell(col, note int, on bool) {
	s.grid[col][note].Store(on)
}

// Pattern snapshots the grid as [column][note].
func (s *Sequencer) Pattern() [][]bool {
	out := make([][]bool, s.columns)
	for c := range out {
		out[c] = make([]bool, NumNotes)
		for n := 0; n < NumNotes; n++ {
			out[c][n] = s.grid[c][n].Load()
		}
	}
	return out
}

// SetPattern loads a [column][note] grid snapshot. Short or nil rows leave
// the remaining cells untouched.
func (s *Sequencer) SetPattern(pattern [][]bool) {
	for c := 0; c < s.columns && c < len(pattern); c++ {
		for n := 0; n < NumNotes && n < len(pattern[c]); n++ {
			s.grid[c][n].Store(pattern[c][n])
		}
	}
}

// Prime stamps the beat timer's reference point without advancing. Called
// once at startup so column 0 holds for a full beat; a fresh sequencer's
// zero stamp would otherwise make the first tick look like an elapsed beat.
func (s *Sequencer) Prime(nowMs int64) {
	s.lastMs = nowMs
}

// ShouldAdvance evaluates the beat timer against a millisecond clock.
// A clock that moved backwards means the time source wrapped; that fires
// immediately so the sequencer can never stall on a wrap.
func (s *Sequencer) ShouldAdvance(nowMs int64, beatMs float64) bool {
	if nowMs < s.lastMs {
		return true
	}
	return float64(nowMs-s.lastMs) >= beatMs
}

// Advance moves to the next column, folds pending presses into the grid and
// redraws the display. Called only from the control loop, never
// concurrently with itself.
func (s *Sequencer) Advance(nowMs int64) {
	s.lastMs = nowMs
	next := (s.column.Load() + 1) % int32(s.columns)
	s.column.Store(next)

	for n := 0; n < NumNotes; n++ {
		if !s.pending[n].Load() {
			continue
		}
		cell := &s.grid[next][n]
		cell.Store(!cell.Load())
		// Re-prime from the live line level: a still-held button presses
		// again next beat, a released one needs a fresh edge.
		held := s.lines != nil && s.lines.ReadLine(n)
		s.pending[n].Store(held)
	}

	s.Redraw()
}

// Redraw pushes the full grid to the display: every toggled cell plus the
// playing column highlighted.
func (s *Sequencer) Redraw() {
	if s.display == nil {
		return
	}
	s.display.Clear()
	cur := int(s.column.Load())
	for c := 0; c < s.columns; c++ {
		for n := 0; n < NumNotes; n++ {
			if c == cur || s.grid[c][n].Load() {
				s.display.SetPixel(c, n)
			}
		}
	}
	s.display.Commit()
}
