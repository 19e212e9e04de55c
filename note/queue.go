package note

import "github.com/ao-soundscape/engine/channel"

// Queue is a singly-linked list of Notes ordered by StartTime ascending,
// stable on equal keys, with a tail-biased insertion hint (spec §4.1).
type Queue struct {
	head      *Note
	lastAdded *Note
}

// Head returns the first note in start-time order, or nil if empty.
func (q *Queue) Head() *Note { return q.head }

// Push inserts n in start-time order. If the previously-inserted note's
// StartTime is <= n's, the scan resumes from its next pointer instead of
// restarting at head — the common case for agents scheduling
// non-decreasing futures is amortised O(1).
func (q *Queue) Push(n *Note) {
	n.next = nil

	var prev, cur *Note
	if q.lastAdded != nil && q.lastAdded.StartTime <= n.StartTime {
		prev = q.lastAdded
		cur = prev.next
	} else {
		cur = q.head
	}
	for cur != nil && cur.StartTime <= n.StartTime {
		prev = cur
		cur = cur.next
	}

	n.next = cur
	if prev == nil {
		q.head = n
	} else {
		prev.next = n
	}
	q.lastAdded = n
}

// Walk visits notes in start-time order without removing them, calling
// fn for each. fn returns false to stop the walk early (used by the
// mixer to bail out once it reaches a note that isn't active yet, since
// the queue is sorted ascending by StartTime).
func (q *Queue) Walk(fn func(*Note) bool) {
	for cur := q.head; cur != nil; cur = cur.next {
		if !fn(cur) {
			return
		}
	}
}

// ReapFinished removes every note for which finished returns true,
// invoking onReap (if non-nil) once per removed note in queue order.
func (q *Queue) ReapFinished(finished func(*Note) bool, onReap func(*Note)) {
	var prev *Note
	cur := q.head
	for cur != nil {
		next := cur.next
		if finished(cur) {
			if prev == nil {
				q.head = next
			} else {
				prev.next = next
			}
			if q.lastAdded == cur {
				q.lastAdded = prev
			}
			cur.next = nil
			if onReap != nil {
				onReap(cur)
			}
		} else {
			prev = cur
		}
		cur = next
	}
}

// channelMatches reports whether n's channel is ch, or reports ch as one
// of its ancestors (spec §4.1's purge_by_channel contract).
func channelMatches(n *Note, ch channel.Channel) bool {
	if n.Channel == nil {
		return false
	}
	if n.Channel == ch {
		return true
	}
	return n.Channel.HasAncestor(ch)
}

// PurgeByChannel removes every note whose channel is ch, or whose
// channel reports ch among its ancestors (cascades to a whole subtree).
// Per the documented policy decision (DESIGN.md), OnRemove is NOT
// invoked for notes removed this way, matching the source behaviour
// noted in spec §9's open question.
func (q *Queue) PurgeByChannel(ch channel.Channel) []*Note {
	var removed []*Note
	var prev *Note
	cur := q.head
	for cur != nil {
		next := cur.next
		if channelMatches(cur, ch) {
			if prev == nil {
				q.head = next
			} else {
				prev.next = next
			}
			if q.lastAdded == cur {
				q.lastAdded = prev
			}
			cur.next = nil
			removed = append(removed, cur)
		} else {
			prev = cur
		}
		cur = next
	}
	return removed
}

// AdjustTimebase subtracts offset from every queued note's StartTime.
// The caller is responsible for subtracting offset from current_time in
// the same logical operation (spec §4.1, §8 "Timebase shift" invariant).
func (q *Queue) AdjustTimebase(offset int64) {
	for cur := q.head; cur != nil; cur = cur.next {
		cur.StartTime -= offset
	}
}

// Len walks the list and counts its notes. O(N); intended for tests and
// diagnostics, not the hot path.
func (q *Queue) Len() int {
	n := 0
	for cur := q.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}
