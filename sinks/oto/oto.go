// Package oto implements a cross-platform Sink on top of
// github.com/ebitengine/oto/v3, the same backend the teacher project
// uses for its own audio output (audio_backend_oto.go). Unlike most
// sinks here, oto pulls samples via an io.Reader on its own callback
// goroutine rather than being driven by an explicit write loop; Run
// blocks until that goroutine reports the session has ended.
package oto

import (
	"errors"
	"math"
	"sync"

	otolib "github.com/ebitengine/oto/v3"

	"github.com/ao-soundscape/engine/mixer"
	"github.com/ao-soundscape/engine/sinks"
)

type Sink struct {
	ctx    *otolib.Context
	player *otolib.Player
	rate   int
	frames int

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	runErr  error
}

func New() *Sink {
	return &Sink{done: make(chan struct{})}
}

func (s *Sink) Init(deviceName string, requestedRate int, opts sinks.Options) error {
	ctx, ready, err := otolib.NewContext(&otolib.NewContextOptions{
		SampleRate:   requestedRate,
		ChannelCount: 2,
		Format:       otolib.FormatFloat32LE,
		BufferSize:   0, // let oto pick a low-latency default
	})
	if err != nil {
		return errors.Join(sinks.ErrDeviceNegotiation, err)
	}
	<-ready
	s.ctx = ctx
	s.rate = requestedRate
	s.frames = opts.Int("buffersize", 1024)
	return nil
}

func (s *Sink) SampleRate() int      { return s.rate }
func (s *Sink) FramesPerBuffer() int { return s.frames }

// pullReader adapts the mixer's pull-on-demand Generate call into the
// io.Reader oto expects to call back whenever its device buffer needs
// refilling.
type pullReader struct {
	m        *mixer.Mixer
	tick     sinks.TickFunc
	sum      []int64
	leftover []byte
	stopped  bool
	err      error
	onStop   func(error)
}

func (r *pullReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.leftover) > 0 {
			c := copy(p[n:], r.leftover)
			n += c
			r.leftover = r.leftover[c:]
			continue
		}
		if r.stopped {
			for ; n < len(p); n++ {
				p[n] = 0
			}
			return n, nil
		}
		cont, err := r.m.Generate(r.sum, r.tick)
		if err != nil {
			r.stopped = true
			r.err = err
			if r.onStop != nil {
				r.onStop(err)
			}
			continue
		}
		if !cont {
			r.stopped = true
			if r.onStop != nil {
				r.onStop(nil)
			}
			continue
		}
		r.leftover = float32Bytes(sinks.ConvertToFloat32(r.sum))
	}
	return n, nil
}

func float32Bytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, f := range samples {
		bits := math.Float32bits(f)
		out[4*i] = byte(bits)
		out[4*i+1] = byte(bits >> 8)
		out[4*i+2] = byte(bits >> 16)
		out[4*i+3] = byte(bits >> 24)
	}
	return out
}

func (s *Sink) Run(m *mixer.Mixer, tick sinks.TickFunc) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	reader := &pullReader{
		m:    m,
		tick: tick,
		sum:  make([]int64, 2*m.FramesPerBuffer),
		onStop: func(err error) {
			s.mu.Lock()
			s.runErr = err
			s.mu.Unlock()
			close(s.done)
		},
	}
	s.player = s.ctx.NewPlayer(reader)
	s.player.Play()

	<-s.done
	return s.runErr
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.player != nil {
		return s.player.Close()
	}
	return nil
}
