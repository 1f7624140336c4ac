package stepsynth

import (
	"encoding/binary"

	"github.com/cbegin/stepsynth-go/internal/audio"
	"github.com/cbegin/stepsynth-go/internal/control"
	"github.com/cbegin/stepsynth-go/internal/mix"
	"github.com/cbegin/stepsynth-go/internal/osc"
	"github.com/cbegin/stepsynth-go/internal/seq"
)

// RenderOptions controls offline rendering. Zero BeatMs or PitchMul fall
// back to the live defaults; Volume and SquareMix are taken as-is (0 is a
// valid setting for both).
type RenderOptions struct {
	BeatMs    float64
	Volume    float64
	SquareMix float64
	PitchMul  float64
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		BeatMs:    control.DefaultBeatMs,
		Volume:    control.DefaultVolume,
		SquareMix: control.DefaultSquareMix,
		PitchMul:  control.DefaultPitchMul,
	}
}

// RenderPattern plays a [column][note] pattern for the given number of
// beats without real time or an audio device and returns the interleaved
// stereo int16 stream. Column 0 sounds for the first beat, then the
// sequencer advances exactly as it does live.
func RenderPattern(pattern [][]bool, sampleRate int, beats int, opts RenderOptions) []int16 {
	def := DefaultRenderOptions()
	if opts.BeatMs <= 0 {
		opts.BeatMs = def.BeatMs
	}
	if opts.PitchMul <= 0 {
		opts.PitchMul = def.PitchMul
	}

	params := control.NewParams()
	params.SetBeatMs(opts.BeatMs)
	params.SetVolume(opts.Volume)
	params.SetSquareMix(opts.SquareMix)
	params.SetPitchMul(opts.PitchMul)

	columns := len(pattern)
	if columns == 0 {
		columns = seq.DefaultColumns
	}
	sequencer := seq.New(columns, nil, nil)
	sequencer.SetPattern(pattern)

	bank := osc.NewBank(sampleRate, nil)
	sink := audio.NewCaptureSink()
	framesPerBeat := int(params.BeatMs() / 1000 * float64(sampleRate))
	producer := mix.New(bank, sequencer, params, sink, framesPerBeat)

	buf := make([]byte, framesPerBeat*4)
	for b := 0; b < beats; b++ {
		producer.RenderBuffer(buf)
		sink.Submit(buf)
		sequencer.Advance(int64(b))
	}
	return sink.Samples()
}

// EncodeWAVInt16LE wraps interleaved int16 samples in a PCM WAV container.
func EncodeWAVInt16LE(samples []int16, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 2
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(s))
	}
	return out
}
