package audio

import (
	"encoding/binary"
	"sync"
)

// Sink accepts fixed-size buffers of interleaved signed 16-bit little-endian
// stereo samples. Submit blocks while the sink's queue is full; that
// backpressure is what paces the producer to the output rate.
type Sink interface {
	Submit(buf []byte) (int, error)
	Close() error
}

// CaptureSink records everything submitted to it. Used by the offline
// renderer and by tests.
type CaptureSink struct {
	mu   sync.Mutex
	data []byte
}

func NewCaptureSink() *CaptureSink { return &CaptureSink{} }

func (s *CaptureSink) Submit(buf []byte) (int, error) {
	s.mu.Lock()
	s.data = append(s.data, buf...)
	s.mu.Unlock()
	return len(buf), nil
}

func (s *CaptureSink) Close() error { return nil }

// Bytes returns the raw captured stream.
func (s *CaptureSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

// Samples decodes the captured stream as interleaved int16 frames.
func (s *CaptureSink) Samples() []int16 {
	raw := s.Bytes()
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return out
}

// NullSink discards everything. Stands in for real output on headless runs.
type NullSink struct{}

func (NullSink) Submit(buf []byte) (int, error) { return len(buf), nil }
func (NullSink) Close() error                   { return nil }
