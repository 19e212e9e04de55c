// Package headless implements a Sink with no device at all: it runs the
// mixer's tick/mix loop and discards the result. It is the backend the
// test suite and CI use, and the one a scripted soundscape falls back to
// when no real device is available (mirrors the teacher's
// audio_backend_headless.go build-tag fallback, as an ordinary package
// instead of a build-tag swap).
package headless

import (
	"github.com/ao-soundscape/engine/mixer"
	"github.com/ao-soundscape/engine/sinks"
)

// Sink discards every buffer it mixes. Captured, if non-nil, receives a
// copy of each mixed buffer — useful for tests that want to assert on
// output without standing up a real device.
type Sink struct {
	rate     int
	frames   int
	closed   bool
	Captured func(sum []int64)
}

// New constructs a headless sink. Init applies the requested rate and
// the "buffersize" option as given: there's no device to clamp them
// against.
func New() *Sink {
	return &Sink{}
}

func (s *Sink) Init(deviceName string, requestedRate int, opts sinks.Options) error {
	s.rate = requestedRate
	s.frames = opts.Int("buffersize", 1024)
	return nil
}

func (s *Sink) SampleRate() int      { return s.rate }
func (s *Sink) FramesPerBuffer() int { return s.frames }

func (s *Sink) Run(m *mixer.Mixer, tick sinks.TickFunc) error {
	sum := make([]int64, 2*m.FramesPerBuffer)
	for {
		if s.closed {
			return nil
		}
		cont, err := m.Generate(sum, tick)
		if err != nil {
			return err
		}
		if s.Captured != nil {
			cp := make([]int64, len(sum))
			copy(cp, sum)
			s.Captured(cp)
		}
		if !cont {
			return nil
		}
	}
}

func (s *Sink) Close() error {
	s.closed = true
	return nil
}
