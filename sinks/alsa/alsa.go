//go:build linux && cgo

// Package alsa implements the Linux ALSA Sink, adapted from the
// teacher's audio_backend_alsa.go cgo bridge: same device-open and
// hw_params negotiation shape, generalised from a single fixed-format
// mono float stream to the mixer's stereo 16-bit PCM output, and with
// the EPIPE (underrun) retry promoted into the Sink contract's
// recoverable-error policy (spec §4.7, §7 kind 4).
package alsa

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate, unsigned int* actualRate, int periodSize) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_S16_LE);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, 2);
    if (err < 0) return err;

    *actualRate = rate;
    err = snd_pcm_hw_params_set_rate_near(handle, params, actualRate, 0);
    if (err < 0) return err;

    if (periodSize > 0) {
        snd_pcm_uframes_t frames = periodSize;
        snd_pcm_hw_params_set_period_size_near(handle, params, &frames, 0);
    }

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static snd_pcm_sframes_t writePCM(snd_pcm_t* handle, short* buffer, snd_pcm_uframes_t frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/ao-soundscape/engine/mixer"
	"github.com/ao-soundscape/engine/sinks"
)

type Sink struct {
	handle *C.snd_pcm_t
	rate   int
	frames int
	device string
	pcm    []int16
}

// New constructs an ALSA sink targeting device ("default" if empty).
func New(device string) *Sink {
	if device == "" {
		device = "default"
	}
	return &Sink{device: device}
}

func (s *Sink) Init(deviceName string, requestedRate int, opts sinks.Options) error {
	if deviceName != "" {
		s.device = deviceName
	}
	var cerr C.int
	cdev := C.CString(s.device)
	defer C.free(unsafe.Pointer(cdev))
	handle := C.openPCM(cdev, &cerr)
	if cerr < 0 {
		return fmt.Errorf("%w: opening %q: %s", sinks.ErrDeviceNegotiation, s.device, C.GoString(C.snd_strerror(cerr)))
	}

	periodSize := opts.Int("periodsize", 0)
	var actualRate C.uint
	if err := C.setupPCM(handle, C.uint(requestedRate), &actualRate, C.int(periodSize)); err < 0 {
		C.closePCM(handle)
		return fmt.Errorf("%w: %s", sinks.ErrDeviceNegotiation, C.GoString(C.snd_strerror(err)))
	}

	s.handle = handle
	s.rate = int(actualRate)
	s.frames = opts.Int("buffersize", 1024)
	s.pcm = make([]int16, 2*s.frames)
	return nil
}

func (s *Sink) SampleRate() int      { return s.rate }
func (s *Sink) FramesPerBuffer() int { return s.frames }

func (s *Sink) Run(m *mixer.Mixer, tick sinks.TickFunc) error {
	sum := make([]int64, 2*m.FramesPerBuffer)
	for {
		cont, err := m.Generate(sum, tick)
		if err != nil {
			return err
		}
		for i, v := range sum {
			s.pcm[i] = sinks.Clamp16(v)
		}
		if err := s.write(); err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

// write sends the current PCM buffer, re-preparing and retrying once on
// an EPIPE underrun without dropping the buffer (spec §4.7, §7 kind 4).
func (s *Sink) write() error {
	frames := C.writePCM(s.handle, (*C.short)(unsafe.Pointer(&s.pcm[0])), C.snd_pcm_uframes_t(s.frames))
	if frames >= 0 {
		return nil
	}
	if C.int(frames) == -C.EPIPE {
		C.snd_pcm_prepare(s.handle)
		frames = C.writePCM(s.handle, (*C.short)(unsafe.Pointer(&s.pcm[0])), C.snd_pcm_uframes_t(s.frames))
		if frames >= 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", sinks.ErrWriteFailed, C.GoString(C.snd_strerror(C.int(frames))))
}

func (s *Sink) Close() error {
	if s.handle != nil {
		C.closePCM(s.handle)
		s.handle = nil
	}
	return nil
}
