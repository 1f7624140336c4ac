package mix

import (
	"encoding/binary"

	"github.com/cbegin/stepsynth-go/internal/audio"
	"github.com/cbegin/stepsynth-go/internal/control"
	"github.com/cbegin/stepsynth-go/internal/osc"
	"github.com/cbegin/stepsynth-go/internal/seq"
)

// Headroom scales the mixed signal below full scale so a hot chord plus a
// square-heavy mix cannot clip after the volume stage.
const Headroom = 0.5

// DefaultFrames is the buffer length in stereo sample pairs.
const DefaultFrames = 256

const bytesPerFrame = 4 // int16 left + int16 right

// Producer is the continuous sample loop. It renders active notes for the
// playing column into interleaved stereo int16 buffers and submits them to
// the sink, blocking only on the sink's backpressure. The render path takes
// no locks: grid, column and parameters are all atomic reads.
type Producer struct {
	bank   *osc.Bank
	seq    *seq.Sequencer
	params *control.Params
	sink   audio.Sink
	buf    []byte
	stop   chan struct{}
}

func New(bank *osc.Bank, sequencer *seq.Sequencer, params *control.Params, sink audio.Sink, frames int) *Producer {
	if frames <= 0 {
		frames = DefaultFrames
	}
	return &Producer{
		bank:   bank,
		seq:    sequencer,
		params: params,
		sink:   sink,
		buf:    make([]byte, frames*bytesPerFrame),
		stop:   make(chan struct{}),
	}
}

// Frames returns the buffer size in stereo pairs.
func (p *Producer) Frames() int { return len(p.buf) / bytesPerFrame }

// RenderBuffer fills dst (interleaved stereo int16 LE) from the current
// grid state. dst length must be a multiple of 4.
func (p *Producer) RenderBuffer(dst []byte) {
	vol := p.params.Volume()
	mix := p.params.SquareMix()
	mul := p.params.PitchMul()

	for i := 0; i+bytesPerFrame <= len(dst); i += bytesPerFrame {
		var sum float64
		active := 0
		for n := 0; n < osc.NumNotes; n++ {
			if p.seq.Active(n) {
				sum += p.bank.AdvanceAndRender(n, mul, mix)
				active++
			}
		}
		var v float64
		if active > 0 {
			// Equal-weight average: chords never clip, at the cost of
			// loudness varying with chord size.
			v = sum / float64(active) * Headroom * vol
		}
		s := clampToInt16(v)
		binary.LittleEndian.PutUint16(dst[i:], uint16(s))
		binary.LittleEndian.PutUint16(dst[i+2:], uint16(s))
	}
}

// Run produces buffers until Stop. Meant for its own goroutine; it has no
// suspension point other than the sink's Submit.
func (p *Producer) Run() {
	for {
		select {
		case <-p.stop:
			return
		default:
		}
		p.RenderBuffer(p.buf)
		if _, err := p.sink.Submit(p.buf); err != nil {
			return
		}
	}
}

// Stop makes Run return after the in-flight buffer. Safe to call once.
func (p *Producer) Stop() {
	close(p.stop)
}

func clampToInt16(v float64) int16 {
	s := v * 32767
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}
