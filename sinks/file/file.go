// Package file implements a Sink that writes raw interleaved 16-bit PCM
// to a file, with an optional time-limited termination (spec §4.8).
package file

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ao-soundscape/engine/mixer"
	"github.com/ao-soundscape/engine/sinks"
)

type Sink struct {
	f         *os.File
	w         *bufio.Writer
	rate      int
	frames    int
	bigEndian bool
	maxFrames int64 // 0 = unlimited
	path      string
}

// New constructs a file sink that writes raw PCM to path.
func New(path string) *Sink {
	return &Sink{path: path}
}

func (s *Sink) Init(deviceName string, requestedRate int, opts sinks.Options) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("%w: %v", sinks.ErrDeviceNegotiation, err)
	}
	s.f = f
	s.w = bufio.NewWriterSize(f, 1<<16)
	s.rate = requestedRate
	s.frames = opts.Int("buffersize", 1024)
	s.bigEndian = opts.BigEndian()
	if d := opts.Duration("time", 0); d > 0 {
		s.maxFrames = int64(d.Seconds() * float64(requestedRate))
	}
	return nil
}

func (s *Sink) SampleRate() int      { return s.rate }
func (s *Sink) FramesPerBuffer() int { return s.frames }

func (s *Sink) Run(m *mixer.Mixer, tick sinks.TickFunc) error {
	sum := make([]int64, 2*m.FramesPerBuffer)
	var written int64
	for {
		cont, err := m.Generate(sum, tick)
		if err != nil {
			return err
		}
		pcm := sinks.ConvertToPCM16(sum, s.bigEndian)
		if _, err := s.w.Write(pcm); err != nil {
			return fmt.Errorf("%w: %v", sinks.ErrWriteFailed, err)
		}
		written += int64(m.FramesPerBuffer)
		if s.maxFrames > 0 && written >= s.maxFrames {
			return nil
		}
		if !cont {
			return nil
		}
	}
}

func (s *Sink) Close() error {
	if s.w != nil {
		if err := s.w.Flush(); err != nil {
			return err
		}
	}
	if s.f != nil {
		return s.f.Close()
	}
	return nil
}
