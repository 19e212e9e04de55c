// Package note implements the scheduled-playback instance (Note) and the
// time-ordered singly-linked queue the mixer walks once per buffer.
package note

import (
	"math"

	"github.com/google/uuid"

	"github.com/ao-soundscape/engine/channel"
	"github.com/ao-soundscape/engine/sample"
)

// Note is a scheduled playback instance of a Sample on a Channel.
type Note struct {
	Sample    *sample.Sample
	StartTime int64 // absolute frame index
	Pitch     float64
	Volume    float64 // may exceed 1 to overdrive
	Pan       channel.Pan

	RepsTotal int
	RepsLeft  int

	FramePos  int    // integer source-frame cursor
	FrameFrac uint16 // 16-bit fixed-point fractional cursor

	Channel  channel.Channel // optional
	OnRemove func()          // fires exactly once, on reap

	// ID is an opaque debug identifier (e.g. a uuid), not used by any
	// mixer invariant; present so logs can name a note.
	ID string

	next *Note // queue linkage; owned by Queue
}

// New constructs a Note that will play `reps` total passes (reps<=0 means
// "play once, no looping" — RepsLeft starts at max(reps-1, 0)).
func New(smp *sample.Sample, startTime int64, pitch, volume float64, pan channel.Pan, reps int, ch channel.Channel, onRemove func()) *Note {
	if reps < 1 {
		reps = 1
	}
	return &Note{
		Sample:    smp,
		StartTime: startTime,
		Pitch:     pitch,
		Volume:    volume,
		Pan:       pan,
		RepsTotal: reps,
		RepsLeft:  reps - 1,
		Channel:   ch,
		OnRemove:  onRemove,
		ID:        uuid.NewString(),
	}
}

// NewWithDuration constructs a Note sized to last approximately
// durationOutFrames output frames, per spec §4.2: for a non-looping
// sample there is exactly one pass; for a looping sample the repeat
// count is derived from how many loop iterations are needed to fill the
// requested duration at the given pitch/framerate.
func NewWithDuration(smp *sample.Sample, startTime int64, pitch, volume float64, pan channel.Pan, durationOutFrames int64, ch channel.Channel, onRemove func()) *Note {
	reps := RepsForDuration(smp, pitch, durationOutFrames)
	return New(smp, startTime, pitch, volume, pan, reps, ch, onRemove)
}

// RepsForDuration computes the repeat count for create_with_duration
// (spec §4.2): margins = num_frames - loop_len; duration_src =
// duration_out_frames * framerate * pitch; reps = ceil((duration_src -
// margins) / loop_len), floored at 1.
func RepsForDuration(smp *sample.Sample, pitch float64, durationOutFrames int64) int {
	if smp == nil || !smp.HasLoop() {
		return 1
	}
	loopLen := smp.LoopLen()
	margins := float64(smp.NumFrames - loopLen)
	durationSrc := float64(durationOutFrames) * smp.Framerate * pitch
	reps := int(math.Ceil((durationSrc - margins) / float64(loopLen)))
	if reps < 1 {
		reps = 1
	}
	return reps
}

// Finished reports whether the note has exhausted its source material:
// the cursor has reached the last playable frame and no repeats remain.
func (n *Note) Finished() bool {
	if n.Sample == nil || n.Sample.Error {
		return true
	}
	return n.FramePos+1 >= n.Sample.NumFrames && n.RepsLeft == 0
}
