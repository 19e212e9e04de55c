// Package sinks defines the audio sink contract the mixer's run loop
// drives (spec §4.7) and the shared helpers every backend needs:
// fixed-point-to-PCM conversion with clamping, the endianness probe, and
// the recognised option surface (spec §6).
package sinks

import (
	"errors"
	"unsafe"

	"github.com/ao-soundscape/engine/mixer"
)

// Errors surfaced by backends, matching spec §7's abstract error kinds.
var (
	ErrDeviceNegotiation = errors.New("sinks: device negotiation failed")
	ErrWriteFailed       = errors.New("sinks: unrecoverable device write error")
	ErrAllocation        = errors.New("sinks: allocation failure")
)

// TickFunc is re-exported for backend packages that don't want to import
// the mixer package directly for this one type.
type TickFunc = mixer.TickFunc

// Sink is the driver-agnostic contract a backend fulfills (spec §4.7).
// Run repeatedly calls tick then mix, converts the mixer's
// headroom-scaled accumulator to the device's native format, and writes
// it out; it blocks for as long as the session runs.
type Sink interface {
	// Init negotiates a rate (clamped to device bounds), fixes the
	// channel count at 2, chooses 16-bit signed format, and commits
	// FramesPerBuffer.
	Init(deviceName string, requestedRate int, opts Options) error

	SampleRate() int
	FramesPerBuffer() int

	// Run drives the session: tick, mix, convert, write, repeat. It
	// returns nil after a graceful stop (tick or mix returning false),
	// or a non-nil error after an unrecoverable failure.
	Run(m *mixer.Mixer, tick TickFunc) error

	Close() error
}

// Clamp16 hard-clips a fixed-point accumulator sample to the symmetric
// range [-0x7FFF, 0x7FFF] (spec §4.4's clamping invariant, performed by the
// sink during PCM conversion, not the mixer).
func Clamp16(v int64) int16 {
	const max16 = 0x7FFF
	const min16 = -0x7FFF
	if v > max16 {
		return max16
	}
	if v < min16 {
		return min16
	}
	return int16(v)
}

// ConvertToPCM16 clamps and packs a mixer sum buffer (interleaved
// stereo, 2*frames long) into little- or big-endian 16-bit PCM bytes.
func ConvertToPCM16(sum []int64, bigEndian bool) []byte {
	out := make([]byte, len(sum)*2)
	for i, v := range sum {
		s := Clamp16(v)
		if bigEndian {
			out[2*i] = byte(s >> 8)
			out[2*i+1] = byte(s)
		} else {
			out[2*i] = byte(s)
			out[2*i+1] = byte(s >> 8)
		}
	}
	return out
}

// ConvertToFloat32 clamps and normalises a mixer sum buffer to
// [-1.0, 1.0] float32 samples, the format oto/PulseAudio-style backends
// consume directly.
func ConvertToFloat32(sum []int64) []float32 {
	out := make([]float32, len(sum))
	for i, v := range sum {
		out[i] = float32(Clamp16(v)) / 32768.0
	}
	return out
}

// NativeEndian reports this platform's byte order by writing the
// four-byte sequence 'E','N','D','I' into a machine word and reading it
// back (spec §6's endianness probe), rather than hand-rolling the C
// trick with unsafe pointer casts beyond what's needed to observe layout.
func NativeEndian() (bigEndian bool) {
	var probe uint32 = 0x454E4449 // 'E','N','D','I' big-endian-ordered value
	b := (*[4]byte)(unsafe.Pointer(&probe))
	return b[0] == 'E'
}

// SignExtend16 applies the PCM sign-extension rule from spec §6 to a
// (hi, lo) byte pair read from a raw sample buffer.
func SignExtend16(hi, lo byte, unsignedSource bool) int16 {
	if unsignedSource {
		hi ^= 0x80
	}
	if hi&0x80 != 0 {
		return int16((int32(hi&0x7F)-0x80)*0x100 | int32(lo))
	}
	return int16(int32(hi)*0x100 | int32(lo))
}
