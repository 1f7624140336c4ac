package audio

import (
	"errors"

	"github.com/ebitengine/oto/v3"
)

// ErrSinkClosed is returned by Submit after Close.
var ErrSinkClosed = errors.New("audio: sink closed")

// OtoSink plays submitted buffers on the default output device via oto.
// The device pulls at its own rate through Read; Submit parks the producer
// on a short bounded queue, which is the system's master clock. If the
// producer falls behind, Read pads with silence — the audible underrun the
// design accepts instead of recovering.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	queue  chan []byte
	free   chan []byte
	done   chan struct{}
	cur    []byte
	off    int
}

// NewOtoSink opens the default device for 16-bit little-endian stereo at
// the given rate. queueDepth is the number of in-flight producer buffers
// before Submit blocks; 2-4 keeps latency low without starving the device.
func NewOtoSink(sampleRate, queueDepth int) (*OtoSink, error) {
	if sampleRate <= 0 {
		return nil, errors.New("audio: sampleRate must be positive")
	}
	if queueDepth < 1 {
		queueDepth = 2
	}
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	s := &OtoSink{
		ctx:   ctx,
		queue: make(chan []byte, queueDepth),
		free:  make(chan []byte, queueDepth+1),
		done:  make(chan struct{}),
	}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

// Submit copies buf and queues it for the device, blocking while the queue
// is full. Returns the number of bytes accepted.
func (s *OtoSink) Submit(buf []byte) (int, error) {
	select {
	case <-s.done:
		return 0, ErrSinkClosed
	default:
	}
	var dst []byte
	select {
	case dst = <-s.free:
	default:
	}
	dst = append(dst[:0], buf...)
	select {
	case s.queue <- dst:
		return len(buf), nil
	case <-s.done:
		return 0, ErrSinkClosed
	}
}

// Read feeds the device. Runs on oto's playback goroutine; it never blocks
// on the producer, it pads with silence instead.
func (s *OtoSink) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if s.cur == nil {
			select {
			case b := <-s.queue:
				s.cur = b
				s.off = 0
			default:
				for i := n; i < len(p); i++ {
					p[i] = 0
				}
				return len(p), nil
			}
		}
		c := copy(p[n:], s.cur[s.off:])
		n += c
		s.off += c
		if s.off == len(s.cur) {
			select {
			case s.free <- s.cur:
			default:
			}
			s.cur = nil
		}
	}
	return n, nil
}

func (s *OtoSink) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	return s.player.Close()
}
