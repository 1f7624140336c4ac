package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	stepsynth "github.com/cbegin/stepsynth-go"
	"github.com/cbegin/stepsynth-go/internal/audio"
	"github.com/cbegin/stepsynth-go/internal/pattern"
)

// Default pattern: a simple up-down arpeggio. One row per note (row 0 is
// the lowest note), one character per column, 'x' = on.
const defaultPattern = `x.......
..x.....
....x...
......x.
.......x
.....x..
...x....
.x......`

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		beatMs     = flag.Float64("beat-ms", 250, "beat duration in milliseconds")
		volume     = flag.Float64("volume", 0.8, "volume 0..1")
		square     = flag.Float64("square", 0, "square blend 0..1 (0 = sine)")
		pitch      = flag.Float64("pitch", 1, "pitch multiplier 1..2")
		beats      = flag.Int("beats", 0, "stop after N beats (0 = run until interrupted)")
		patPath    = flag.String("file", "", "path to a pattern file")
		patInline  = flag.String("pattern", "", "inline pattern (rows separated by newlines or commas)")
		wavOut     = flag.String("wav", "", "render to a WAV file instead of playing")
		midOut     = flag.String("mid", "", "export the pattern as a MIDI file and exit")
		quiet      = flag.Bool("quiet", false, "suppress the per-beat grid printout")
	)
	flag.Parse()

	text, err := resolvePatternInput(*patPath, *patInline)
	if err != nil {
		log.Fatal(err)
	}
	grid, err := pattern.Parse(text)
	if err != nil {
		log.Fatal(err)
	}

	if *midOut != "" {
		if err := stepsynth.WriteSMFFile(grid, *beatMs, *midOut); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", *midOut)
		return
	}

	if *wavOut != "" {
		n := *beats
		if n <= 0 {
			n = len(grid) * 2
		}
		samples := stepsynth.RenderPattern(grid, *sampleRate, n, stepsynth.RenderOptions{
			BeatMs:    *beatMs,
			Volume:    *volume,
			SquareMix: *square,
			PitchMul:  *pitch,
		})
		wav := stepsynth.EncodeWAVInt16LE(samples, *sampleRate, 2)
		if err := os.WriteFile(*wavOut, wav, 0644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s (%d beats)\n", *wavOut, n)
		return
	}

	sink, err := audio.NewOtoSink(*sampleRate, 3)
	if err != nil {
		log.Fatal(err)
	}
	var display *termDisplay
	if !*quiet {
		display = newTermDisplay(len(grid))
	}
	opts := []stepsynth.Option{stepsynth.WithSink(sink), stepsynth.WithColumns(len(grid))}
	if display != nil {
		opts = append(opts, stepsynth.WithDisplay(display))
	}
	s, err := stepsynth.NewSynth(*sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	s.SetPattern(grid)
	s.SetBeatMs(*beatMs)
	s.SetVolume(*volume)
	s.SetSquareMix(*square)
	s.SetPitchMul(*pitch)

	s.Start()
	if *beats > 0 {
		total := float64(*beats) * *beatMs * float64(time.Millisecond)
		time.Sleep(time.Duration(total))
	} else {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
	}
	s.Stop()
}

func resolvePatternInput(path, inline string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return defaultPattern, nil
}
