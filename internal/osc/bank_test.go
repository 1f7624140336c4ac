package osc

import (
	"math"
	"testing"
)

func TestPhaseWrapPreservesContinuity(t *testing.T) {
	b := NewBank(44100, nil)
	// Park the accumulator just below the wrap point, then render once.
	b.phases[0] = twoPi - b.steps[0]/2
	got := b.AdvanceAndRender(0, 1, 0)

	unwrapped := b.steps[0] / 2 // same phase without the 2*pi subtraction
	want := math.Sin(unwrapped)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("wrap discontinuity: got %v want %v", got, want)
	}
	if b.Phase(0) >= twoPi || b.Phase(0) < 0 {
		t.Fatalf("phase %v outside [0, 2*pi)", b.Phase(0))
	}
}

func TestSilentNotePhaseFrozen(t *testing.T) {
	b := NewBank(44100, nil)
	for i := 0; i < 1000; i++ {
		b.AdvanceAndRender(3, 1, 0)
	}
	before := b.Phase(5)
	// Note 5 is never rendered; 1000 more renders of note 3 must not move it.
	for i := 0; i < 1000; i++ {
		b.AdvanceAndRender(3, 1, 0)
	}
	if b.Phase(5) != before {
		t.Fatalf("inactive note drifted: %v -> %v", before, b.Phase(5))
	}
}

func TestSquareMixBounds(t *testing.T) {
	b := NewBank(44100, nil)
	for i := 0; i < 500; i++ {
		pure := NewBank(44100, nil)
		pure.phases = b.phases
		wantSine := pure.AdvanceAndRender(2, 1, 0)
		got := b.AdvanceAndRender(2, 1, 0)
		if got != wantSine {
			t.Fatalf("mix=0 sample %d: got %v want sin %v", i, got, wantSine)
		}
	}

	sq := NewBank(44100, nil)
	for i := 0; i < 500; i++ {
		ref := NewBank(44100, nil)
		ref.phases = sq.phases
		sine := ref.AdvanceAndRender(2, 1, 0)
		wantSq := 1.0
		if sine < 0 {
			wantSq = -1.0
		}
		got := sq.AdvanceAndRender(2, 1, 1)
		if got != wantSq {
			t.Fatalf("mix=1 sample %d: got %v, want sign(sin) = %v", i, got, wantSq)
		}
	}
}

func TestSquareMixBlendIsContinuousInPhase(t *testing.T) {
	// At a partial mix, consecutive samples must not jump by more than the
	// square step plus the sine slope allows. A full-scale jump would mean
	// the blend itself added a discontinuity.
	b := NewBank(44100, nil)
	prev := b.AdvanceAndRender(0, 1, 0.5)
	for i := 0; i < 2000; i++ {
		cur := b.AdvanceAndRender(0, 1, 0.5)
		if math.Abs(cur-prev) > 1.1 {
			t.Fatalf("sample %d: step %v too large for mix=0.5", i, math.Abs(cur-prev))
		}
		prev = cur
	}
}

func TestPitchMultiplierDoublesPhaseRate(t *testing.T) {
	const k = 400
	one := NewBank(44100, nil)
	two := NewBank(44100, nil)
	for i := 0; i < k; i++ {
		one.AdvanceAndRender(4, 1, 0)
		two.AdvanceAndRender(4, 2, 0)
	}
	// Compare total accumulated phase, undoing wraps via the known step.
	total1 := float64(k) * one.Step(4)
	total2 := float64(k) * one.Step(4) * 2
	wrapped1 := math.Mod(total1, twoPi)
	wrapped2 := math.Mod(total2, twoPi)
	if math.Abs(one.Phase(4)-wrapped1) > 1e-9 {
		t.Fatalf("pitchMul=1 phase %v want %v", one.Phase(4), wrapped1)
	}
	if math.Abs(two.Phase(4)-wrapped2) > 1e-9 {
		t.Fatalf("pitchMul=2 phase %v want %v", two.Phase(4), wrapped2)
	}
}

func TestStepsMatchFrequencyTable(t *testing.T) {
	b := NewBank(48000, nil)
	for i, f := range DefaultFrequencies {
		want := twoPi * f / 48000
		if b.Step(i) != want {
			t.Fatalf("note %d step %v want %v", i, b.Step(i), want)
		}
	}
}

func BenchmarkAdvanceAndRender(b *testing.B) {
	bank := NewBank(44100, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bank.AdvanceAndRender(i%NumNotes, 1.5, 0.5)
	}
}
