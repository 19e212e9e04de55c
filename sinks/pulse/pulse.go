// Package pulse implements a PulseAudio Sink via
// github.com/jfreymuth/pulse, one of the backends spec §1 names
// explicitly. Like the oto backend, PulseAudio pulls samples through a
// callback rather than being driven by an explicit write loop.
package pulse

import (
	"sync"

	"github.com/jfreymuth/pulse"

	"github.com/ao-soundscape/engine/mixer"
	"github.com/ao-soundscape/engine/sinks"
)

type Sink struct {
	client *pulse.Client
	stream *pulse.PlaybackStream
	rate   int
	frames int

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	runErr error
}

func New() *Sink {
	return &Sink{done: make(chan struct{})}
}

func (s *Sink) Init(deviceName string, requestedRate int, opts sinks.Options) error {
	c, err := pulse.NewClient(pulse.ClientApplicationName("soundscape"))
	if err != nil {
		return sinks.ErrDeviceNegotiation
	}
	s.client = c
	s.rate = requestedRate
	s.frames = opts.Int("buffersize", 1024)
	return nil
}

func (s *Sink) SampleRate() int      { return s.rate }
func (s *Sink) FramesPerBuffer() int { return s.frames }

func (s *Sink) Run(m *mixer.Mixer, tick sinks.TickFunc) error {
	sum := make([]int64, 2*m.FramesPerBuffer)
	var leftover []float32

	reader := func(out []float32) (int, error) {
		n := 0
		for n < len(out) {
			if len(leftover) > 0 {
				c := copy(out[n:], leftover)
				n += c
				leftover = leftover[c:]
				continue
			}
			cont, err := m.Generate(sum, tick)
			if err != nil {
				s.mu.Lock()
				s.runErr = err
				s.mu.Unlock()
				for ; n < len(out); n++ {
					out[n] = 0
				}
				select {
				case <-s.done:
				default:
					close(s.done)
				}
				return n, nil
			}
			if !cont {
				for ; n < len(out); n++ {
					out[n] = 0
				}
				select {
				case <-s.done:
				default:
					close(s.done)
				}
				return n, nil
			}
			leftover = sinks.ConvertToFloat32(sum)
		}
		return n, nil
	}

	stream, err := s.client.NewPlayback(
		pulse.Float32Reader(reader),
		pulse.PlaybackSampleRate(s.rate),
		pulse.PlaybackChannels(pulse.Stereo),
		pulse.PlaybackLatency(float64(s.frames)/float64(s.rate)),
	)
	if err != nil {
		return sinks.ErrDeviceNegotiation
	}
	s.stream = stream
	s.stream.Start()

	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runErr
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.stream != nil {
		s.stream.Drain()
		s.stream.Close()
	}
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
