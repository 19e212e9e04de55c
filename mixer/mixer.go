// Package mixer implements the per-buffer mixing core: it walks a
// time-ordered note queue, resamples and pans each active note against
// its channel tree's volume/pan envelopes, and sums the contributions
// into an interleaved stereo accumulator for a Sink to convert and
// write out.
package mixer

import (
	"errors"
	"log"

	"github.com/ao-soundscape/engine/channel"
	"github.com/ao-soundscape/engine/note"
	"github.com/ao-soundscape/engine/sample"
)

// ErrBufferSize is returned by Generate when the caller's sum buffer
// isn't exactly 2*FramesPerBuffer long (spec §7 kind 1: an allocation
// precondition violation is surfaced as a typed error rather than
// silently truncated or indexed out of range).
var ErrBufferSize = errors.New("mixer: sum buffer must be exactly 2*FramesPerBuffer long")

// TickFunc is called exactly once per buffer, before the mix pass, with
// the pre-buffer current_time. Returning stop=true ends the run loop
// gracefully; a non-nil error is fatal and propagates to the sink's run
// loop (spec §4.6, §6).
type TickFunc func(currentTime int64) (stop bool, err error)

// Mixer bundles the note queue, the global frame clock, and the reusable
// ramp-range scratch arena that spec §9 calls out as process-global
// state in the source — here it's an explicit value threaded through
// every entry point instead.
type Mixer struct {
	queue           note.Queue
	CurrentTime     int64
	FramesPerBuffer int
	Fixed           bool // select the fixed-point inner loop over float

	scratch []RampRange // reset and reused per note, grows by doubling
}

// New constructs a Mixer for a session with the given buffer size.
// fixedPoint selects the Q16.16 fixed-point inner loop (spec §4.4,
// §9) over the floating-point one. Both run the same mixing steps; the
// fixed-point path rounds at each Q16.16 multiply and interpolates
// volume and pan ramps in coarser steps (see RampRange.valueAtFixed).
func New(framesPerBuffer int, fixedPoint bool) *Mixer {
	return &Mixer{
		FramesPerBuffer: framesPerBuffer,
		Fixed:           fixedPoint,
		scratch:         make([]RampRange, 0, 8),
	}
}

// CreateNote schedules smp to play reps times starting at startTime,
// returning the created Note. reps<1 means "play once".
func (m *Mixer) CreateNote(smp *sample.Sample, pitch, volume float64, pan channel.Pan, startTime int64, reps int, ch channel.Channel, onRemove func()) *note.Note {
	n := note.New(smp, startTime, pitch, volume, pan, reps, ch, onRemove)
	m.queue.Push(n)
	return n
}

// CreateNoteWithDuration schedules smp to last approximately
// durationOutFrames output frames (spec §4.2's create_with_duration).
func (m *Mixer) CreateNoteWithDuration(smp *sample.Sample, pitch, volume float64, pan channel.Pan, startTime int64, durationOutFrames int64, ch channel.Channel, onRemove func()) *note.Note {
	n := note.NewWithDuration(smp, startTime, pitch, volume, pan, durationOutFrames, ch, onRemove)
	m.queue.Push(n)
	return n
}

// DestroyNotesByChannel reaps every note on channel ch or a descendant
// of it, without invoking OnRemove (see DESIGN.md for the policy
// decision spec §9 leaves open).
func (m *Mixer) DestroyNotesByChannel(ch channel.Channel) int {
	removed := m.queue.PurgeByChannel(ch)
	return len(removed)
}

// AdjustTimebase subtracts offset from CurrentTime and every queued
// note's StartTime in one logical step, preserving
// (note.StartTime - CurrentTime) for every note (spec §8).
func (m *Mixer) AdjustTimebase(offset int64) {
	m.CurrentTime -= offset
	m.queue.AdjustTimebase(offset)
}

// QueueLen reports how many notes are currently queued. Diagnostic only.
func (m *Mixer) QueueLen() int { return m.queue.Len() }

// Generate produces one buffer's worth of output into sum, a
// pre-allocated 2*FramesPerBuffer slice of fixed-point-headroom
// accumulators (spec §4.4). It calls tick once, then mixes every active
// note, reaps finished ones (firing OnRemove in queue order), advances
// CurrentTime, and returns false when the session should stop.
func (m *Mixer) Generate(sum []int64, tick TickFunc) (bool, error) {
	if len(sum) != 2*m.FramesPerBuffer {
		return false, ErrBufferSize
	}
	for i := range sum {
		sum[i] = 0
	}

	if tick != nil {
		stop, err := tick(m.CurrentTime)
		if err != nil {
			return false, err
		}
		if stop {
			return false, nil
		}
	}

	currentTime := m.CurrentTime
	endTime := currentTime + int64(m.FramesPerBuffer)

	m.queue.Walk(func(n *note.Note) bool {
		if n.StartTime >= endTime {
			return false // ascending order: nothing further is active
		}
		if n.Sample == nil || n.Sample.Error {
			return true
		}
		m.scratch = m.scratch[:0]
		if m.Fixed {
			mixNoteFixed(n, currentTime, endTime, m.FramesPerBuffer, sum, &m.scratch)
		} else {
			mixNoteFloat(n, currentTime, endTime, m.FramesPerBuffer, sum, &m.scratch)
		}
		return true
	})

	m.queue.ReapFinished(
		func(n *note.Note) bool { return n.Finished() },
		func(n *note.Note) { fireOnRemove(n) },
	)

	m.CurrentTime = endTime
	return true, nil
}

// fireOnRemove invokes a note's completion callback exactly once,
// logging and continuing if it panics (spec §4.5 kind 6/§7: callback
// errors are not permitted to take down the mixer).
func fireOnRemove(n *note.Note) {
	if n.OnRemove == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("mixer: note completion callback panicked: %v", r)
		}
	}()
	n.OnRemove()
}
