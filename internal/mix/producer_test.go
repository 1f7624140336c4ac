package mix

import (
	"math"
	"testing"

	"github.com/cbegin/stepsynth-go/internal/audio"
	"github.com/cbegin/stepsynth-go/internal/control"
	"github.com/cbegin/stepsynth-go/internal/osc"
	"github.com/cbegin/stepsynth-go/internal/seq"
)

const testRate = 44100

func newFixture(frames int) (*Producer, *seq.Sequencer, *control.Params, *audio.CaptureSink) {
	bank := osc.NewBank(testRate, nil)
	sequencer := seq.New(8, nil, nil)
	params := control.NewParams()
	sink := audio.NewCaptureSink()
	return New(bank, sequencer, params, sink, frames), sequencer, params, sink
}

func TestVolumeZeroProducesSilence(t *testing.T) {
	p, sequencer, params, _ := newFixture(128)
	sequencer.SetCell(0, 0, true)
	sequencer.SetCell(0, 4, true)
	params.SetVolume(0)

	buf := make([]byte, 128*4)
	p.RenderBuffer(buf)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d nonzero with volume 0", i)
		}
	}
}

func TestEmptyColumnProducesSilence(t *testing.T) {
	p, sequencer, _, _ := newFixture(64)
	sequencer.SetCell(3, 2, true) // not the playing column
	buf := make([]byte, 64*4)
	p.RenderBuffer(buf)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d nonzero with empty playing column", i)
		}
	}
}

func TestSingleNoteScaling(t *testing.T) {
	p, sequencer, params, _ := newFixture(64)
	sequencer.SetCell(0, 2, true)
	params.SetVolume(1)

	// Reference bank with identical state renders the expected raw samples.
	ref := osc.NewBank(testRate, nil)

	buf := make([]byte, 64*4)
	p.RenderBuffer(buf)
	for i := 0; i < 64; i++ {
		want := clampToInt16(ref.AdvanceAndRender(2, 1, 0) * Headroom * 1)
		gotL := int16(uint16(buf[i*4]) | uint16(buf[i*4+1])<<8)
		gotR := int16(uint16(buf[i*4+2]) | uint16(buf[i*4+3])<<8)
		if gotL != want || gotR != want {
			t.Fatalf("frame %d: L=%d R=%d want %d", i, gotL, gotR, want)
		}
	}
}

func TestTwoNoteEqualWeightAverage(t *testing.T) {
	p, sequencer, params, _ := newFixture(64)
	sequencer.SetCell(0, 1, true)
	sequencer.SetCell(0, 6, true)
	params.SetVolume(0.9)

	ref := osc.NewBank(testRate, nil)

	buf := make([]byte, 64*4)
	p.RenderBuffer(buf)
	for i := 0; i < 64; i++ {
		a := ref.AdvanceAndRender(1, 1, 0)
		b := ref.AdvanceAndRender(6, 1, 0)
		want := clampToInt16((a + b) / 2 * Headroom * 0.9)
		got := int16(uint16(buf[i*4]) | uint16(buf[i*4+1])<<8)
		if got != want {
			t.Fatalf("frame %d: got %d want %d", i, got, want)
		}
	}
}

func TestStereoChannelsIdentical(t *testing.T) {
	p, sequencer, _, _ := newFixture(128)
	sequencer.SetCell(0, 0, true)
	buf := make([]byte, 128*4)
	p.RenderBuffer(buf)
	for i := 0; i < 128; i++ {
		l := int16(uint16(buf[i*4]) | uint16(buf[i*4+1])<<8)
		r := int16(uint16(buf[i*4+2]) | uint16(buf[i*4+3])<<8)
		if l != r {
			t.Fatalf("frame %d: L=%d R=%d", i, l, r)
		}
	}
}

func TestClampToInt16(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2.5, 32767},
		{-2.5, -32768},
		{0.5, 16383},
	} {
		if got := clampToInt16(tc.in); got != tc.want {
			t.Fatalf("clamp(%v)=%d want %d", tc.in, got, tc.want)
		}
	}
}

func TestRunSubmitsFixedSizeBuffers(t *testing.T) {
	bank := osc.NewBank(testRate, nil)
	sequencer := seq.New(8, nil, nil)
	params := control.NewParams()
	sink := &countingSink{stopAfter: 5}
	p := New(bank, sequencer, params, sink, 64)

	p.Run() // returns when the sink reports closure
	if sink.submits != 5 {
		t.Fatalf("submits %d want 5", sink.submits)
	}
	if sink.lastLen != 64*4 {
		t.Fatalf("buffer %d bytes, want %d", sink.lastLen, 64*4)
	}
}

type countingSink struct {
	submits   int
	lastLen   int
	stopAfter int
}

func (s *countingSink) Submit(buf []byte) (int, error) {
	s.submits++
	s.lastLen = len(buf)
	if s.submits >= s.stopAfter {
		return 0, audio.ErrSinkClosed
	}
	return len(buf), nil
}

func (s *countingSink) Close() error { return nil }

func TestRenderKeepsPhaseBounded(t *testing.T) {
	p, sequencer, params, _ := newFixture(256)
	sequencer.SetCell(0, 7, true) // highest note wraps most often
	params.SetPitchMul(2)
	buf := make([]byte, 256*4)
	for i := 0; i < 2000; i++ {
		p.RenderBuffer(buf)
	}
	if ph := p.bank.Phase(7); ph < 0 || ph >= 2*math.Pi {
		t.Fatalf("phase unbounded after long render: %v", ph)
	}
}

func BenchmarkRenderBuffer(b *testing.B) {
	p, sequencer, params, _ := newFixture(256)
	for n := 0; n < osc.NumNotes; n++ {
		sequencer.SetCell(0, n, true)
	}
	params.SetSquareMix(0.5)
	buf := make([]byte, 256*4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.RenderBuffer(buf)
	}
}
