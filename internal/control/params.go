package control

import (
	"math"
	"sync/atomic"
	"time"
)

// Params is the shared control-parameter block. Each field is a single-writer
// atomic scalar: the sampler (or UI) stores, the mixer and sequencer load,
// and nobody takes a lock. A reader seeing a value one sampling period stale
// is inaudible; a reader seeing a torn value is prevented by the atomics.
//
// Floats are stored as their IEEE bit patterns in uint64s.
type Params struct {
	volume    uint64 // [0, 1]
	beatMs    uint64 // beat duration in milliseconds
	squareMix uint64 // [0, 1], 0 = sine, 1 = square
	pitchMul  uint64 // [1, 2]
}

// Defaults for a freshly powered-on unit.
const (
	DefaultVolume    = 0.8
	DefaultBeatMs    = 250.0
	DefaultSquareMix = 0.0
	DefaultPitchMul  = 1.0
)

func NewParams() *Params {
	p := &Params{}
	p.SetVolume(DefaultVolume)
	p.SetBeatMs(DefaultBeatMs)
	p.SetSquareMix(DefaultSquareMix)
	p.SetPitchMul(DefaultPitchMul)
	return p
}

func loadFloat(addr *uint64) float64 {
	return math.Float64frombits(atomic.LoadUint64(addr))
}

func storeFloat(addr *uint64, v float64) {
	atomic.StoreUint64(addr, math.Float64bits(v))
}

func (p *Params) Volume() float64    { return loadFloat(&p.volume) }
func (p *Params) SquareMix() float64 { return loadFloat(&p.squareMix) }
func (p *Params) PitchMul() float64  { return loadFloat(&p.pitchMul) }
func (p *Params) BeatMs() float64    { return loadFloat(&p.beatMs) }

// BeatDuration returns the beat interval as a duration for timer math.
func (p *Params) BeatDuration() time.Duration {
	return time.Duration(p.BeatMs() * float64(time.Millisecond))
}

func (p *Params) SetVolume(v float64)    { storeFloat(&p.volume, clamp(v, 0, 1)) }
func (p *Params) SetSquareMix(v float64) { storeFloat(&p.squareMix, clamp(v, 0, 1)) }
func (p *Params) SetPitchMul(v float64)  { storeFloat(&p.pitchMul, clamp(v, 1, 2)) }

func (p *Params) SetBeatMs(ms float64) {
	storeFloat(&p.beatMs, clamp(ms, MinBeatMs, MaxBeatMs))
}

// Beat duration range mapped from the tempo control.
const (
	MinBeatMs = 80.0
	MaxBeatMs = 1000.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
