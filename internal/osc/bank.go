package osc

import "math"

const twoPi = math.Pi * 2

// DefaultFrequencies is the fixed note table: C major, C4 up to C5.
// Index 0 is the lowest note.
var DefaultFrequencies = [...]float64{
	261.63, // C4
	293.66, // D4
	329.63, // E4
	349.23, // F4
	392.00, // G4
	440.00, // A4
	493.88, // B4
	523.25, // C5
}

// NumNotes is the fixed size of the oscillator bank.
const NumNotes = len(DefaultFrequencies)

// Bank holds one free-running phase accumulator per note. Phase only
// advances while a note is rendered, so a silenced note resumes at the
// phase it stopped at rather than a random one.
type Bank struct {
	steps  [NumNotes]float64 // radians per sample at pitch multiplier 1
	phases [NumNotes]float64 // current phase, kept in [0, 2*pi)
}

// NewBank precomputes per-note phase steps for the given output rate.
// freqs overrides the note table when non-nil; it must have NumNotes entries.
func NewBank(sampleRate int, freqs []float64) *Bank {
	b := &Bank{}
	for i := 0; i < NumNotes; i++ {
		f := DefaultFrequencies[i]
		if freqs != nil {
			f = freqs[i]
		}
		b.steps[i] = twoPi * f / float64(sampleRate)
	}
	return b
}

// AdvanceAndRender advances one note's phase by its step scaled by pitchMul
// and returns the shaped sample in [-1, 1]. squareMix blends from pure sine
// (0) to pure square (1); the blend itself introduces no discontinuity.
func (b *Bank) AdvanceAndRender(note int, pitchMul, squareMix float64) float64 {
	p := b.phases[note] + b.steps[note]*pitchMul
	// Subtract rather than truncate so the fractional remainder survives
	// the wrap and the waveform stays continuous.
	for p >= twoPi {
		p -= twoPi
	}
	b.phases[note] = p

	s := math.Sin(p)
	if squareMix <= 0 {
		return s
	}
	sq := 1.0
	if s < 0 {
		sq = -1.0
	}
	return sq*squareMix + s*(1-squareMix)
}

// Phase returns a note's current accumulator value. Used by tests and the
// UI scope; rendering never needs it.
func (b *Bank) Phase(note int) float64 {
	return b.phases[note]
}

// Step returns the per-sample phase increment for a note at pitch
// multiplier 1.
func (b *Bank) Step(note int) float64 {
	return b.steps[note]
}
