package stepsynth

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDINotes maps grid rows to MIDI note numbers (C major, C4..C5),
// matching the oscillator frequency table.
var MIDINotes = [NumNotes]uint8{60, 62, 64, 65, 67, 69, 71, 72}

const (
	ticksPerColumn = 480                    // one column = one quarter note
	gateTicks      = ticksPerColumn * 3 / 4 // 75% gate, staccato step feel
)

// EncodeSMF serializes a [column][note] pattern as a one-track Standard
// MIDI File. beatMs sets the tempo meta event; the sequencer's beat maps to
// a quarter note.
func EncodeSMF(pattern [][]bool, beatMs float64) ([]byte, error) {
	if len(pattern) == 0 {
		return nil, errors.New("stepsynth: empty pattern")
	}
	if beatMs <= 0 {
		beatMs = 250
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerColumn)

	var track smf.Track

	microsPerBeat := uint32(beatMs * 1000)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsPerBeat >> 16),
		byte(microsPerBeat >> 8),
		byte(microsPerBeat),
	}))

	type event struct {
		tick uint32
		msg  smf.Message
	}
	var events []event
	for col, row := range pattern {
		start := uint32(col) * ticksPerColumn
		for note := 0; note < NumNotes && note < len(row); note++ {
			if !row[note] {
				continue
			}
			events = append(events, event{start, smf.Message(midi.NoteOn(0, MIDINotes[note], 100))})
			events = append(events, event{start + gateTicks, smf.Message(midi.NoteOff(0, MIDINotes[note]))})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	var cur uint32
	for _, ev := range events {
		track.Add(ev.tick-cur, ev.msg)
		cur = ev.tick
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("stepsynth: add track: %w", err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("stepsynth: write midi: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSMFFile writes the pattern to a .mid file.
func WriteSMFFile(pattern [][]bool, beatMs float64, filename string) error {
	data, err := EncodeSMF(pattern, beatMs)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
