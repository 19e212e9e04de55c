// Package channel defines the hierarchical channel tree that the mixer
// walks to compose per-note volume envelopes and stereo pan. Channels are
// owned by the embedding environment (the scripting/agent layer); the
// mixer only ever sees the Channel interface.
package channel

// Pan is a 2-D affine stereo-field transform: (x,y) -> (ScaleX*x+ShiftX,
// ScaleY*y+ShiftY). Composed left-to-right walking up the channel tree.
type Pan struct {
	ScaleX, ShiftX float64
	ScaleY, ShiftY float64
}

// IdentityPan is the neutral transform used when an attribute is absent
// or malformed (spec §7 kind 5: treated as unity/identity for that note,
// that buffer).
var IdentityPan = Pan{ScaleX: 1, ShiftX: 0, ScaleY: 1, ShiftY: 0}

// VolumeWindow describes a linear volume fade from V0 at T0 to V1 at T1,
// holding constant outside that interval. A constant-value channel
// encodes its constant by setting T1 <= current_time and V1 to the
// constant.
type VolumeWindow struct {
	T0, T1 int64
	V0, V1 float64
}

// StereoWindow describes a linear pan sweep from Pan0 at T0 to Pan1 at
// T1, holding constant outside that interval.
type StereoWindow struct {
	T0, T1     int64
	Pan0, Pan1 Pan
}

// Channel is the narrow contract the mixer depends on. Everything else
// about how channels are stored, reference-counted, or scripted belongs
// to the embedding environment.
type Channel interface {
	// VolumeWindow returns the channel's own volume fade, if any. A
	// false second return means "absent or ill-formed" (treated as
	// unity for this node, per spec §7 kind 5).
	VolumeWindow() (VolumeWindow, bool)

	// StereoWindow returns the channel's own pan sweep, if any. A false
	// second return means "absent or ill-formed" (treated as identity).
	StereoWindow() (StereoWindow, bool)

	// Parent returns the channel one level up the tree, if any.
	Parent() (Channel, bool)

	// HasAncestor reports whether other is an ancestor of this channel
	// (or equal to it), used to cascade-purge a subtree.
	HasAncestor(other Channel) bool
}

// WalkAncestors reports whether target is this channel or one of its
// ancestors, by walking Parent() links. Concrete Channel implementations
// that don't have a cheaper membership test (e.g. a set keyed by ID) can
// implement HasAncestor in terms of this helper.
func WalkAncestors(ch Channel, target Channel) bool {
	for cur := ch; cur != nil; {
		if cur == target || sameChannel(cur, target) {
			return true
		}
		p, ok := cur.Parent()
		if !ok {
			return false
		}
		cur = p
	}
	return false
}

// sameChannel compares two channels by their ID() strings when both
// have an ID method; for types without one it returns false, leaving
// WalkAncestors to rely on the interface comparison above.
func sameChannel(a, b Channel) bool {
	type identifier interface{ ID() string }
	ai, aok := a.(identifier)
	bi, bok := b.(identifier)
	if aok && bok {
		return ai.ID() == bi.ID()
	}
	return false
}
