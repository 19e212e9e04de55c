// Package sample holds the immutable, already-decoded PCM asset type that
// notes play back. Decoding itself (WAV/OGG/whatever) is out of scope:
// callers hand Sample a fully decoded buffer.
package sample

import "fmt"

// Sample is an immutable PCM asset: mono or stereo, 16-bit signed,
// interleaved if stereo, with an optional loop region and an intrinsic
// framerate expressed relative to the mixer's output rate.
type Sample struct {
	Data        []int16
	NumFrames   int
	NumChannels int     // 1 or 2
	Framerate   float64 // source fps / output fps; 1.0 = natural pitch
	LoopStart   int
	LoopEnd     int
	Error       bool // load failed; notes referencing this play silence
	Loaded      bool
}

// ErrInvalidChannels is returned by New when NumChannels isn't 1 or 2.
var ErrInvalidChannels = fmt.Errorf("sample: NumChannels must be 1 or 2")

// New validates and constructs a Sample. loopStart/loopEnd of (-1,-1), or
// any pair with loopStart >= loopEnd, means "no loop".
func New(data []int16, numChannels int, framerate float64, loopStart, loopEnd int) (*Sample, error) {
	if numChannels != 1 && numChannels != 2 {
		return nil, ErrInvalidChannels
	}
	numFrames := len(data) / numChannels
	s := &Sample{
		Data:        data,
		NumFrames:   numFrames,
		NumChannels: numChannels,
		Framerate:   framerate,
		LoopStart:   loopStart,
		LoopEnd:     loopEnd,
		Loaded:      true,
	}
	if loopEnd > numFrames {
		s.Error = true
		s.Loaded = false
		return s, fmt.Errorf("sample: loop_end %d exceeds num_frames %d", loopEnd, numFrames)
	}
	return s, nil
}

// Failed returns a Sample flagged as load-failed. Notes referencing it
// play silence (see spec §7 kind 7).
func Failed() *Sample {
	return &Sample{Error: true, Loaded: false}
}

// HasLoop reports whether the sample defines a usable loop region.
func (s *Sample) HasLoop() bool {
	return s.LoopStart >= 0 && s.LoopStart < s.LoopEnd
}

// LoopLen returns LoopEnd-LoopStart, or 0 if there is no loop.
func (s *Sample) LoopLen() int {
	if !s.HasLoop() {
		return 0
	}
	return s.LoopEnd - s.LoopStart
}

// FrameAt returns the raw 16-bit value for source frame `frame`, source
// channel `ch` (0 for mono, 0/1 for stereo-left/right). Out-of-range
// frames return 0 (silence) rather than panicking, since the mixer's
// interpolation window can briefly reference one frame past the end.
func (s *Sample) FrameAt(frame, ch int) int16 {
	if frame < 0 || frame >= s.NumFrames {
		return 0
	}
	if ch >= s.NumChannels {
		ch = s.NumChannels - 1
	}
	return s.Data[frame*s.NumChannels+ch]
}
