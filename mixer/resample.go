package mixer

import "github.com/ao-soundscape/engine/sample"

// pitchStep computes the fixed-point (Q16.16) per-sample cursor advance
// for a note: clamp(framerate*pitch*2^16, 1, 2^28) (spec §4.2).
func pitchStep(framerate, pitch float64) int64 {
	step := int64(framerate * pitch * fixedScale)
	if step < 1 {
		step = 1
	}
	if step > 1<<28 {
		step = 1 << 28
	}
	return step
}

// interpNextFrame returns the source frame to interpolate towards from
// framePos: ordinarily framePos+1, but wrapped to LoopStart when
// framePos+1 lands exactly on LoopEnd and a repeat remains (spec §4.2).
func interpNextFrame(s *sample.Sample, framePos, repsLeft int) int {
	next := framePos + 1
	if s.HasLoop() && next == s.LoopEnd && repsLeft > 0 {
		return s.LoopStart
	}
	return next
}

// interpolateFloat linearly interpolates source channel ch at the
// fractional cursor (framePos, frameFrac).
func interpolateFloat(s *sample.Sample, framePos int, frameFrac uint16, repsLeft, ch int) float64 {
	s0 := float64(s.FrameAt(framePos, ch))
	s1 := float64(s.FrameAt(interpNextFrame(s, framePos, repsLeft), ch))
	frac := float64(frameFrac) / fixedScale
	return s0 + (s1-s0)*frac
}

// interpolateFixed mirrors interpolateFloat but returns the Q16-scaled
// fixed-point sample value the fixed-point inner loop consumes directly
// (spec §4.4: "sample" already carries the 2^16 scale before the
// `>>16` descale in the accumulation step).
func interpolateFixed(s *sample.Sample, framePos int, frameFrac uint16, repsLeft, ch int) int64 {
	s0 := int64(s.FrameAt(framePos, ch))
	s1 := int64(s.FrameAt(interpNextFrame(s, framePos, repsLeft), ch))
	frac := int64(frameFrac)
	return s0*(fixedScale-frac) + s1*frac
}

// advanceCursor steps (framePos, frameFrac) forward by one pitch-step
// and resolves any loop wraps, decrementing repsLeft once per wrap (spec
// §4.2: "this loop may fire more than once per step").
func advanceCursor(s *sample.Sample, step int64, framePos *int, frameFrac *uint16, repsLeft *int) {
	total := int64(*frameFrac) + step
	*framePos += int(total >> 16)
	*frameFrac = uint16(total & 0xFFFF)

	for s.HasLoop() && *framePos >= s.LoopEnd && *repsLeft > 0 {
		*framePos -= s.LoopLen()
		*repsLeft--
	}
}
