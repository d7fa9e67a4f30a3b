package queue

import (
	"github.com/Qthai16/ringqueue/common/list"
	"github.com/Qthai16/ringqueue/utils"
)

// DeleteMid deletes the element at index n/2 (0-based, rounded down) of a
// queue of n elements. An empty queue is left untouched.
func (q *Queue) DeleteMid() error {
	if !q.valid() {
		return ErrNilQueue
	}
	h := q.head
	if list.Empty(h) {
		return nil
	}
	// fast moves two links per step and stops on the sentinel (even n) or
	// on the last element (odd n); it must test both or it circles forever.
	slow, fast := h.Next, h.Next
	for fast != h && fast != h.Prev {
		slow = slow.Next
		fast = fast.Next.Next
	}
	utils.Trace(q.log, "delete mid", "value", entry(slow).Value)
	list.Del(slow)
	q.release(entry(slow))
	return nil
}

// DeleteDup deletes every element whose payload occurs more than once,
// leaving only the payloads that were distinct. The queue must already be
// sorted in ascending order; on an unsorted queue only adjacent equal runs
// are found.
func (q *Queue) DeleteDup() error {
	if !q.valid() {
		return ErrNilQueue
	}
	h := q.head
	if list.Empty(h) || list.IsSingular(h) {
		return nil
	}
	cur := h.Next
	for cur != h && cur.Next != h {
		dup := false
		next := cur.Next
		for next != h && entry(next).Value == entry(cur).Value {
			after := next.Next
			list.Del(next)
			q.release(entry(next))
			next = after
			dup = true
		}
		if dup {
			list.Del(cur)
			q.release(entry(cur))
		}
		cur = next
	}
	return nil
}

// Swap exchanges every two adjacent elements: 1 2 3 4 5 becomes 2 1 4 3 5.
func (q *Queue) Swap() {
	if !q.valid() || list.Empty(q.head) || list.IsSingular(q.head) {
		return
	}
	h := q.head
	for cur := h.Next; cur != h && cur.Next != h; cur = cur.Next {
		second := cur.Next
		list.Del(second)
		list.AddTail(second, cur)
	}
}

// Reverse flips the order of the elements by rewriting links only; no
// element is allocated, freed or moved.
func (q *Queue) Reverse() {
	if !q.valid() || list.Empty(q.head) {
		return
	}
	h := q.head
	prev, cur := h, h.Next
	for cur != h {
		next := cur.Next
		cur.Next, cur.Prev = prev, next
		prev, cur = cur, next
	}
	h.Next, h.Prev = h.Prev, h.Next
}
