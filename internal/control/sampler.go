package control

// Analog line assignments on the front panel.
const (
	LineVolume = iota
	LineTempo
	LineSquareMix
	LinePitch
	NumAnalogLines
)

// AnalogReader reads one analog control line as a raw converter value in
// [0, resolution). Implementations wrap the actual ADC (or a UI slider).
type AnalogReader interface {
	ReadAnalog(line int) int
}

// Sampler maps raw analog readings into the normalized parameter block.
// It keeps no state beyond the destination Params; calling Sample more
// often than the controls move is harmless.
type Sampler struct {
	params *Params
	analog AnalogReader
	scale  float64 // 1 / (resolution - 1)
}

// NewSampler wires an AnalogReader with the given converter resolution
// (e.g. 4096 for a 12-bit ADC) to a Params block.
func NewSampler(params *Params, analog AnalogReader, resolution int) *Sampler {
	if resolution < 2 {
		resolution = 2
	}
	return &Sampler{
		params: params,
		analog: analog,
		scale:  1 / float64(resolution-1),
	}
}

// Sample reads every analog line once and publishes the mapped parameters.
// Raw values outside the converter range are clamped by the Params setters.
func (s *Sampler) Sample() {
	s.params.SetVolume(s.norm(LineVolume))
	// Tempo knob turned up means faster, i.e. a shorter beat.
	s.params.SetBeatMs(MaxBeatMs - s.norm(LineTempo)*(MaxBeatMs-MinBeatMs))
	s.params.SetSquareMix(s.norm(LineSquareMix))
	s.params.SetPitchMul(1 + s.norm(LinePitch))
}

func (s *Sampler) norm(line int) float64 {
	return float64(s.analog.ReadAnalog(line)) * s.scale
}
