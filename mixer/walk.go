package mixer

import "github.com/ao-soundscape/engine/channel"

// walkResult is what composeChannelTree produces for one note, one
// buffer: a scalar volume multiplier already folded from constant
// windows, the pan transform(s) at the buffer's start (and end, if a
// sweep is in progress), and any volume ramp ranges that partially
// overlap the buffer and so can't be folded into the scalar.
type walkResult struct {
	volume     float64
	panAtStart channel.Pan
	panAtEnd   channel.Pan
	sweeping   bool
	ramps      []RampRange
}

func clampFrac(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func lerpPan(a, b channel.Pan, frac float64) channel.Pan {
	return channel.Pan{
		ScaleX: a.ScaleX + frac*(b.ScaleX-a.ScaleX),
		ShiftX: a.ShiftX + frac*(b.ShiftX-a.ShiftX),
		ScaleY: a.ScaleY + frac*(b.ScaleY-a.ScaleY),
		ShiftY: a.ShiftY + frac*(b.ShiftY-a.ShiftY),
	}
}

// compose folds level (one channel's pan) onto the running transform,
// per spec §4.3: scale_x <- scale_x*sx; shift_x <- shift_x*sx+shx.
func compose(running *channel.Pan, level channel.Pan) {
	running.ScaleX *= level.ScaleX
	running.ShiftX = running.ShiftX*level.ScaleX + level.ShiftX
	running.ScaleY *= level.ScaleY
	running.ShiftY = running.ShiftY*level.ScaleY + level.ShiftY
}

// composeChannelTree walks chan, chan.Parent(), ... composing the
// effective volume and pan for the buffer [currentTime, endTime) (spec
// §4.3). scratch is the mixer-owned ramp-range arena, reset by the
// caller before the walk starts.
func composeChannelTree(ch channel.Channel, currentTime, endTime int64, notePan channel.Pan, scratch []RampRange) walkResult {
	res := walkResult{
		volume:     1.0,
		panAtStart: notePan,
	}

	for cur := ch; cur != nil; {
		if vw, ok := cur.VolumeWindow(); ok {
			switch {
			case currentTime >= vw.T1:
				res.volume *= vw.V1
			case vw.T0 >= endTime:
				res.volume *= vw.V0
			default:
				scratch = append(scratch, RampRange{
					Start: vw.T0, End: vw.T1,
					StartVol: vw.V0, EndVol: vw.V1,
				})
			}
		}

		if sw, ok := cur.StereoWindow(); ok {
			switch {
			case currentTime >= sw.T1 || sw.T0 >= endTime:
				var p channel.Pan
				if currentTime >= sw.T1 {
					p = sw.Pan1
				} else {
					p = sw.Pan0
				}
				compose(&res.panAtStart, p)
				if res.sweeping {
					compose(&res.panAtEnd, p)
				}
			default:
				if !res.sweeping {
					res.panAtEnd = res.panAtStart
					res.sweeping = true
				}
				fracStart := clampFrac(float64(currentTime-sw.T0) / float64(sw.T1-sw.T0))
				fracEnd := clampFrac(float64(endTime-sw.T0) / float64(sw.T1-sw.T0))
				compose(&res.panAtStart, lerpPan(sw.Pan0, sw.Pan1, fracStart))
				compose(&res.panAtEnd, lerpPan(sw.Pan0, sw.Pan1, fracEnd))
			}
		}

		p, ok := cur.Parent()
		if !ok {
			break
		}
		cur = p
	}

	res.ramps = scratch
	return res
}
