package mixer

import (
	"math"

	"github.com/ao-soundscape/engine/channel"
)

// sourceGain is the (left, right) output gain contributed by a single
// source position.
type sourceGain struct {
	Left, Right float64
}

// panToLR is the pure function in spec §4.3 that turns a 2-D pan
// position into a (vol_left, vol_right) pair: inverse-square falloff
// beyond the unit circle, y only ever contributing to the distance cap.
func panToLR(sx, sy float64) sourceGain {
	d := math.Max(math.Abs(sx), math.Abs(sy))
	if d > 1 {
		sx /= d
	}
	var g sourceGain
	if sx < 0 {
		g = sourceGain{Left: 1, Right: 1 + sx}
	} else {
		g = sourceGain{Left: 1 - sx, Right: 1}
	}
	if d > 1 {
		g.Left /= d * d
		g.Right /= d * d
	}
	return g
}

// sourceGains returns one gain pair per source channel: a mono sample is
// positioned at (ShiftX, ShiftY); a stereo sample's left/right source
// channels sit at (ShiftX-ScaleX, ShiftY) and (ShiftX+ScaleX, ShiftY)
// respectively (spec §4.3).
func sourceGains(p channel.Pan, numSourceChannels int) []sourceGain {
	if numSourceChannels <= 1 {
		return []sourceGain{panToLR(p.ShiftX, p.ShiftY)}
	}
	left := panToLR(p.ShiftX-p.ScaleX, p.ShiftY)
	right := panToLR(p.ShiftX+p.ScaleX, p.ShiftY)
	return []sourceGain{left, right}
}
