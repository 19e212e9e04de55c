package mixer

import "github.com/ao-soundscape/engine/note"

// mixNoteFixed is the Q16.16 fixed-point inner loop (spec §4.4). Every
// gain — the base volume, each volume-ramp fold, and each per-side pan
// gain — is carried as a Q16.16 integer; the running accumulator is
// folded via `(acc * value) >> 16` at every step (the APPLY_RANGE rule),
// and the final per-channel gain is applied to the Q16-scaled
// interpolated sample with the same `>> 16` descale. See DESIGN.md for
// the single-scale simplification this takes versus the spec's
// internally-inconsistent two-scale (2^16 vs 2^14 headroom) description.
func mixNoteFixed(n *note.Note, currentTime, endTime int64, framesPerBuffer int, sum []int64, scratch *[]RampRange) {
	res := composeChannelTree(n.Channel, currentTime, endTime, n.Pan, *scratch)
	*scratch = res.ramps
	ramps := res.ramps

	gainsStart := sourceGains(res.panAtStart, n.Sample.NumChannels)
	var gainsEnd []sourceGain
	if res.sweeping {
		gainsEnd = sourceGains(res.panAtEnd, n.Sample.NumChannels)
	}

	baseVolume := n.Volume * res.volume
	baseFixed := int64(baseVolume*fixedScale + 0.5)
	dynamic := len(ramps) > 0 || res.sweeping

	type fixedGain struct{ Left, Right int64 }
	bases := make([]fixedGain, len(gainsStart))
	for i, g := range gainsStart {
		bases[i] = fixedGain{
			Left:  fixedMul(baseFixed, floatToFixed(g.Left)),
			Right: fixedMul(baseFixed, floatToFixed(g.Right)),
		}
	}

	offset := 0
	if n.StartTime > currentTime {
		offset = int(n.StartTime - currentTime)
	}

	step := pitchStep(n.Sample.Framerate, n.Pitch)

	for f := offset; f < framesPerBuffer; f++ {
		t := currentTime + int64(f)

		var volFold int64 = fixedScale
		if dynamic {
			for _, r := range ramps {
				volFold = fixedMul(volFold, r.valueAtFixed(t))
			}
		}

		for c := 0; c < n.Sample.NumChannels; c++ {
			sampleFixed := interpolateFixed(n.Sample, n.FramePos, n.FrameFrac, n.RepsLeft, c)
			sampleVal := sampleFixed >> 16

			var ivLeft, ivRight int64
			if dynamic {
				panL := floatToFixed(gainsStart[c].Left)
				panR := floatToFixed(gainsStart[c].Right)
				if res.sweeping {
					panL = (RampRange{Start: currentTime, End: endTime, StartVol: gainsStart[c].Left, EndVol: gainsEnd[c].Left}).valueAtFixed(t)
					panR = (RampRange{Start: currentTime, End: endTime, StartVol: gainsStart[c].Right, EndVol: gainsEnd[c].Right}).valueAtFixed(t)
				}
				ivLeft = fixedMul(baseFixed, fixedMul(volFold, panL))
				ivRight = fixedMul(baseFixed, fixedMul(volFold, panR))
			} else {
				ivLeft = bases[c].Left
				ivRight = bases[c].Right
			}

			sum[2*f] += (sampleVal * ivLeft) >> 16
			sum[2*f+1] += (sampleVal * ivRight) >> 16
		}

		// Finished is evaluated against the frame_pos that was just
		// consumed, before advanceCursor moves it forward: the last
		// valid source frame (frame_pos == num_frames-1) is always
		// produced once before the note is allowed to reap (spec §4.2).
		finished := n.Finished()
		advanceCursor(n.Sample, step, &n.FramePos, &n.FrameFrac, &n.RepsLeft)
		if finished {
			break
		}
	}
}

func floatToFixed(v float64) int64 { return int64(v*fixedScale + 0.5) }

func fixedMul(a, b int64) int64 { return (a * b) >> 16 }
