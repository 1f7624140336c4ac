// Package stepsynth is a multi-voice step-sequencer synthesizer. An 8x8
// grid of toggles (columns are beats, rows are notes) is played by a
// continuous sample producer; button edges and analog controls feed the
// grid and the sound parameters without any locking between the three
// execution contexts (control loop, edge callbacks, producer).
package stepsynth

import (
	"errors"
	"sync"
	"time"

	"github.com/cbegin/stepsynth-go/internal/audio"
	"github.com/cbegin/stepsynth-go/internal/control"
	"github.com/cbegin/stepsynth-go/internal/mix"
	"github.com/cbegin/stepsynth-go/internal/osc"
	"github.com/cbegin/stepsynth-go/internal/seq"
)

// NumNotes is the fixed voice count (one grid row per note).
const NumNotes = osc.NumNotes

type Option func(*config)

type config struct {
	columns         int
	frames          int
	freqs           []float64
	sink            audio.Sink
	display         seq.Display
	analog          control.AnalogReader
	resolution      int
	lines           seq.LineReader
	clock           func() int64
	controlInterval time.Duration
	banner          string
}

func defaultConfig() config {
	return config{
		columns:         seq.DefaultColumns,
		frames:          mix.DefaultFrames,
		sink:            audio.NullSink{},
		resolution:      4096,
		clock:           func() int64 { return time.Now().UnixMilli() },
		controlInterval: 5 * time.Millisecond,
	}
}

// WithColumns sets the grid width (default 8).
func WithColumns(n int) Option { return func(c *config) { c.columns = n } }

// WithBufferFrames sets the producer buffer size in stereo pairs.
func WithBufferFrames(n int) Option { return func(c *config) { c.frames = n } }

// WithFrequencies overrides the note table; must have NumNotes entries.
func WithFrequencies(freqs []float64) Option { return func(c *config) { c.freqs = freqs } }

// WithSink routes produced buffers to the given sink instead of discarding
// them.
func WithSink(s audio.Sink) Option { return func(c *config) { c.sink = s } }

// WithDisplay attaches the LED-matrix collaborator; it is redrawn once per
// beat.
func WithDisplay(d seq.Display) Option { return func(c *config) { c.display = d } }

// WithControls attaches the analog control lines sampled by the control
// loop. resolution is the converter range (e.g. 4096 for 12 bits).
func WithControls(a control.AnalogReader, resolution int) Option {
	return func(c *config) {
		c.analog = a
		c.resolution = resolution
	}
}

// WithLines attaches the digital note lines used to re-prime held buttons
// at beat boundaries.
func WithLines(l seq.LineReader) Option { return func(c *config) { c.lines = l } }

// WithClock replaces the beat-timer clock (milliseconds). The sequencer
// treats a backwards step as a wrap and fires immediately.
func WithClock(clock func() int64) Option { return func(c *config) { c.clock = clock } }

// WithControlInterval sets the control-loop period.
func WithControlInterval(d time.Duration) Option {
	return func(c *config) { c.controlInterval = d }
}

// WithBanner scrolls a startup banner on displays that support it.
func WithBanner(s string) Option { return func(c *config) { c.banner = s } }

// Synth owns the oscillator bank, sequencer, parameter block and producer,
// and runs the control loop.
type Synth struct {
	sampleRate int
	params     *control.Params
	bank       *osc.Bank
	sequencer  *seq.Sequencer
	producer   *mix.Producer
	sampler    *control.Sampler
	sink       audio.Sink
	display    seq.Display
	clock      func() int64
	interval   time.Duration
	banner     string

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
}

func NewSynth(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("stepsynth: sampleRate must be positive")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.freqs != nil && len(cfg.freqs) != NumNotes {
		return nil, errors.New("stepsynth: frequency table must have NumNotes entries")
	}
	if cfg.columns <= 0 {
		return nil, errors.New("stepsynth: columns must be positive")
	}

	params := control.NewParams()
	bank := osc.NewBank(sampleRate, cfg.freqs)
	sequencer := seq.New(cfg.columns, cfg.lines, cfg.display)
	s := &Synth{
		sampleRate: sampleRate,
		params:     params,
		bank:       bank,
		sequencer:  sequencer,
		producer:   mix.New(bank, sequencer, params, cfg.sink, cfg.frames),
		sink:       cfg.sink,
		display:    cfg.display,
		clock:      cfg.clock,
		interval:   cfg.controlInterval,
		banner:     cfg.banner,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if cfg.analog != nil {
		s.sampler = control.NewSampler(params, cfg.analog, cfg.resolution)
	}
	return s, nil
}

// Parameter access. All of these are atomic and safe from any goroutine;
// the setters are the single-writer side when no analog controls are wired.

func (s *Synth) Volume() float64        { return s.params.Volume() }
func (s *Synth) SetVolume(v float64)    { s.params.SetVolume(v) }
func (s *Synth) SquareMix() float64     { return s.params.SquareMix() }
func (s *Synth) SetSquareMix(v float64) { s.params.SetSquareMix(v) }
func (s *Synth) PitchMul() float64      { return s.params.PitchMul() }
func (s *Synth) SetPitchMul(v float64)  { s.params.SetPitchMul(v) }
func (s *Synth) BeatMs() float64        { return s.params.BeatMs() }
func (s *Synth) SetBeatMs(ms float64)   { s.params.SetBeatMs(ms) }

// Press records a rising edge on a note line; the press is folded into the
// grid at the next beat. Safe from any goroutine or callback.
func (s *Synth) Press(note int) { s.sequencer.Press(note) }

// Toggle flips a grid cell directly (UI editing path).
func (s *Synth) Toggle(col, note int) { s.sequencer.Toggle(col, note) }

// Column returns the currently playing column.
func (s *Synth) Column() int { return s.sequencer.Column() }

// Cell reports one grid cell.
func (s *Synth) Cell(col, note int) bool { return s.sequencer.Cell(col, note) }

// Pattern snapshots the grid as [column][note].
func (s *Synth) Pattern() [][]bool { return s.sequencer.Pattern() }

// SetPattern loads a grid snapshot.
func (s *Synth) SetPattern(p [][]bool) { s.sequencer.SetPattern(p) }

// Start launches the producer and control loop. Returns immediately.
func (s *Synth) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	if s.banner != "" {
		if ts, ok := s.display.(seq.TextScroller); ok {
			ts.ScrollText(s.banner)
		}
	}
	s.sequencer.Prime(s.clock())
	s.sequencer.Redraw()

	go s.producer.Run()
	go s.controlLoop()
}

// Stop shuts down both loops and closes the sink. Blocks until the control
// loop has exited.
func (s *Synth) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	select {
	case <-s.stop:
		s.mu.Unlock()
		return
	default:
	}
	close(s.stop)
	s.mu.Unlock()

	s.producer.Stop()
	s.sink.Close()
	<-s.done
}

// Wait blocks until Stop has completed.
func (s *Synth) Wait() {
	<-s.done
}

// controlLoop samples the controls and drives beat advances. Edge callbacks
// (Press) may preempt it at any point; they only set atomic flags.
func (s *Synth) controlLoop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
		if s.sampler != nil {
			s.sampler.Sample()
		}
		now := s.clock()
		if s.sequencer.ShouldAdvance(now, s.params.BeatMs()) {
			s.sequencer.Advance(now)
		}
	}
}
