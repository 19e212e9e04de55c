package channel

import "sync"

// Node is a reference channel-tree implementation: an in-memory node with
// mutex-guarded volume/pan windows, matching the teacher's pattern of
// guarding live parameter updates with a single mutex per object
// (audio_chip.go's Channel/SoundChip use the same shape for envelope and
// register state).
type Node struct {
	mu     sync.RWMutex
	id     string
	parent *Node
	vol    VolumeWindow
	hasVol bool
	stereo StereoWindow
	hasSt  bool
}

// NewNode creates a detached channel node with no parent and no windows
// set (i.e. unity volume, identity pan).
func NewNode(id string) *Node {
	return &Node{id: id}
}

// NewChild creates a node parented under parent. A nil parent is
// equivalent to NewNode.
func NewChild(id string, parent *Node) *Node {
	return &Node{id: id, parent: parent}
}

// ID returns the node's identifier, used for equality/ancestry checks.
func (n *Node) ID() string { return n.id }

// SetVolume installs a volume fade window. Use ClearVolume to remove it
// (equivalent to "absent", treated as unity).
func (n *Node) SetVolume(w VolumeWindow) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.vol, n.hasVol = w, true
}

// ClearVolume removes the volume window, reverting to unity.
func (n *Node) ClearVolume() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hasVol = false
}

// SetStereo installs a pan sweep window.
func (n *Node) SetStereo(w StereoWindow) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stereo, n.hasSt = w, true
}

// ClearStereo removes the pan window, reverting to identity.
func (n *Node) ClearStereo() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hasSt = false
}

// SetParent reparents the node. Passing nil detaches it to the root.
func (n *Node) SetParent(p *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parent = p
}

func (n *Node) VolumeWindow() (VolumeWindow, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.vol, n.hasVol
}

func (n *Node) StereoWindow() (StereoWindow, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stereo, n.hasSt
}

func (n *Node) Parent() (Channel, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.parent == nil {
		return nil, false
	}
	return n.parent, true
}

func (n *Node) HasAncestor(other Channel) bool {
	return WalkAncestors(n, other)
}
