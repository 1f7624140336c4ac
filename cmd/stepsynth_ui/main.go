package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	stepsynth "github.com/cbegin/stepsynth-go"
	"github.com/cbegin/stepsynth-go/internal/audio"
	"github.com/cbegin/stepsynth-go/internal/control"
)

const (
	windowW = 520
	windowH = 656

	uiSampleRate = 44100
	columns      = 8

	gridX    = 56
	gridY    = 48
	cellSize = 48
	cellGap  = 4

	sliderX   = 56
	sliderW   = 384
	sliderH   = 14
	sliderGap = 44
	slidersY  = gridY + stepsynth.NumNotes*cellSize + 36

	adcResolution = 4096
)

var (
	bgColor        = color.RGBA{24, 24, 32, 255}
	cellOffColor   = color.RGBA{48, 48, 60, 255}
	cellOnColor    = color.RGBA{230, 80, 60, 255}
	columnHiColor  = color.RGBA{80, 110, 70, 255}
	bothColor      = color.RGBA{255, 170, 60, 255}
	sliderBgColor  = color.RGBA{48, 48, 60, 255}
	sliderFgColor  = color.RGBA{0, 120, 215, 255}
)

// panelControls is the UI's stand-in for the analog control lines; slider
// positions are raw converter values sampled by the synth's control loop.
type panelControls struct {
	raw [control.NumAnalogLines]atomic.Int32
}

func (p *panelControls) ReadAnalog(line int) int {
	return int(p.raw[line].Load())
}

// ledDisplay buffers the per-beat redraws the sequencer pushes so the
// ebiten frame loop can paint them at its own rate.
type ledDisplay struct {
	mu      sync.Mutex
	pending [columns][stepsynth.NumNotes]bool
	shown   [columns][stepsynth.NumNotes]bool
}

func (d *ledDisplay) Clear() {
	d.mu.Lock()
	d.pending = [columns][stepsynth.NumNotes]bool{}
	d.mu.Unlock()
}

func (d *ledDisplay) SetPixel(col, row int) {
	d.mu.Lock()
	if col >= 0 && col < columns && row >= 0 && row < stepsynth.NumNotes {
		d.pending[col][row] = true
	}
	d.mu.Unlock()
}

func (d *ledDisplay) Commit() {
	d.mu.Lock()
	d.shown = d.pending
	d.mu.Unlock()
}

func (d *ledDisplay) snapshot() [columns][stepsynth.NumNotes]bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shown
}

type slider struct {
	label string
	line  int
}

type game struct {
	synth    *stepsynth.Synth
	display  *ledDisplay
	controls *panelControls
	sliders  []slider
	dragging int // slider index being dragged, -1 when none
}

func newGame(s *stepsynth.Synth, d *ledDisplay, c *panelControls) *game {
	return &game{
		synth:    s,
		display:  d,
		controls: c,
		sliders: []slider{
			{"volume", control.LineVolume},
			{"tempo", control.LineTempo},
			{"square", control.LineSquareMix},
			{"pitch", control.LinePitch},
		},
		dragging: -1,
	}
}

func (g *game) Update() error {
	// Number keys act as the note-line buttons: a press edge toggles the
	// next column's cell at the next beat, exactly like the hardware.
	for n := 0; n < stepsynth.NumNotes; n++ {
		if inpututil.IsKeyJustPressed(ebiten.Key(int(ebiten.KeyDigit1) + n)) {
			g.synth.Press(n)
		}
	}

	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if col, note, ok := g.cellAt(mx, my); ok {
			g.synth.Toggle(col, note)
		}
		for i := range g.sliders {
			if g.sliderRect(i).Overlaps(image.Rect(mx, my, mx+1, my+1)) {
				g.dragging = i
			}
		}
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = -1
	}
	if g.dragging >= 0 {
		r := g.sliderRect(g.dragging)
		frac := float64(mx-r.Min.X) / float64(r.Dx())
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		line := g.sliders[g.dragging].line
		g.controls.raw[line].Store(int32(frac * (adcResolution - 1)))
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	leds := g.display.snapshot()
	cur := g.synth.Column()

	for c := 0; c < columns; c++ {
		for n := 0; n < stepsynth.NumNotes; n++ {
			// Row 0 (lowest note) at the bottom.
			x := gridX + c*cellSize
			y := gridY + (stepsynth.NumNotes-1-n)*cellSize
			clr := cellOffColor
			on := g.synth.Cell(c, n)
			hi := c == cur && leds[c][n]
			switch {
			case on && hi:
				clr = bothColor
			case on:
				clr = cellOnColor
			case hi:
				clr = columnHiColor
			}
			vector.DrawFilledRect(screen,
				float32(x), float32(y),
				float32(cellSize-cellGap), float32(cellSize-cellGap),
				clr, false)
		}
	}

	for i, sl := range g.sliders {
		r := g.sliderRect(i)
		vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y),
			float32(r.Dx()), float32(r.Dy()), sliderBgColor, false)
		frac := float64(g.controls.ReadAnalog(sl.line)) / (adcResolution - 1)
		vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y),
			float32(frac*float64(r.Dx())), float32(r.Dy()), sliderFgColor, false)
		ebitenutil.DebugPrintAt(screen, sl.label, r.Min.X, r.Min.Y-16)
	}

	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("click cells to toggle, keys 1-%d press note lines", stepsynth.NumNotes),
		gridX, 16)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowW, windowH
}

func (g *game) cellAt(mx, my int) (col, note int, ok bool) {
	c := (mx - gridX) / cellSize
	row := (my - gridY) / cellSize
	if mx < gridX || my < gridY || c < 0 || c >= columns || row < 0 || row >= stepsynth.NumNotes {
		return 0, 0, false
	}
	return c, stepsynth.NumNotes - 1 - row, true
}

func (g *game) sliderRect(i int) image.Rectangle {
	y := slidersY + i*sliderGap
	return image.Rect(sliderX, y, sliderX+sliderW, y+sliderH)
}

func main() {
	sink, err := audio.NewOtoSink(uiSampleRate, 3)
	if err != nil {
		log.Fatal(err)
	}
	display := &ledDisplay{}
	controls := &panelControls{}
	// Seed sliders at sensible positions (volume 0.8, mid tempo, sine,
	// pitch 1) so the synth does not start silent or racing.
	controls.raw[control.LineVolume].Store(int32(0.8 * (adcResolution - 1)))
	controls.raw[control.LineTempo].Store(adcResolution / 2)

	s, err := stepsynth.NewSynth(uiSampleRate,
		stepsynth.WithSink(sink),
		stepsynth.WithColumns(columns),
		stepsynth.WithDisplay(display),
		stepsynth.WithControls(controls, adcResolution),
	)
	if err != nil {
		log.Fatal(err)
	}
	s.Start()
	defer s.Stop()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle("stepsynth")
	if err := ebiten.RunGame(newGame(s, display, controls)); err != nil {
		log.Fatal(err)
	}
}
