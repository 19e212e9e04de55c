package mixer

import "github.com/ao-soundscape/engine/note"

// mixNoteFloat is the floating-point inner loop (spec §4.4). It keeps
// output samples in natural PCM amplitude units; the Sink hard-clips to
// [-0x7FFF, 0x7FFF] on the way out.
func mixNoteFloat(n *note.Note, currentTime, endTime int64, framesPerBuffer int, sum []int64, scratch *[]RampRange) {
	res := composeChannelTree(n.Channel, currentTime, endTime, n.Pan, *scratch)
	*scratch = res.ramps
	ramps := res.ramps

	gainsStart := sourceGains(res.panAtStart, n.Sample.NumChannels)
	var gainsEnd []sourceGain
	if res.sweeping {
		gainsEnd = sourceGains(res.panAtEnd, n.Sample.NumChannels)
	}

	baseVolume := n.Volume * res.volume
	dynamic := len(ramps) > 0 || res.sweeping

	bases := make([]sourceGain, len(gainsStart))
	for i, g := range gainsStart {
		bases[i] = sourceGain{Left: baseVolume * g.Left, Right: baseVolume * g.Right}
	}

	offset := 0
	if n.StartTime > currentTime {
		offset = int(n.StartTime - currentTime)
	}

	step := pitchStep(n.Sample.Framerate, n.Pitch)

	for f := offset; f < framesPerBuffer; f++ {
		t := currentTime + int64(f)

		env := 1.0
		if dynamic {
			for _, r := range ramps {
				env *= r.valueAt(t)
			}
		}

		for c := 0; c < n.Sample.NumChannels; c++ {
			sv := interpolateFloat(n.Sample, n.FramePos, n.FrameFrac, n.RepsLeft, c)

			var gl, gr float64
			if dynamic {
				pg := gainsStart[c]
				if res.sweeping {
					pg = sourceGain{
						Left:  (RampRange{Start: currentTime, End: endTime, StartVol: gainsStart[c].Left, EndVol: gainsEnd[c].Left}).valueAt(t),
						Right: (RampRange{Start: currentTime, End: endTime, StartVol: gainsStart[c].Right, EndVol: gainsEnd[c].Right}).valueAt(t),
					}
				}
				gl = baseVolume * env * pg.Left
				gr = baseVolume * env * pg.Right
			} else {
				gl = bases[c].Left
				gr = bases[c].Right
			}

			sum[2*f] += int64(sv * gl)
			sum[2*f+1] += int64(sv * gr)
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
