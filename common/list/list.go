// Package list implements intrusive circular doubly-linked lists.
//
// A Head is meant to be embedded in the struct it links. A list is anchored
// by a sentinel Head that is never embedded in anything: the sentinel's Next
// is the first entry and its Prev is the last one, and the last entry's Next
// points back at the sentinel. An empty list is a sentinel linked to itself.
//
// The functions here never allocate. Callers that rewrite Next/Prev directly
// must leave the ring closed before handing it back to these functions.
package list

import "iter"

// Head is a link node of a ring.
type Head struct {
	// Next and Prev are the neighbours of h in its ring. Both point at h
	// when h is a singleton ring, and both are nil after Del.
	Next, Prev *Head
}

// Init initializes h as an empty ring and returns it.
func Init(h *Head) *Head {
	h.Next = h
	h.Prev = h
	return h
}

// New allocates a sentinel initialized as an empty ring.
func New() *Head {
	return Init(new(Head))
}

// insert links e between two consecutive entries prev and next.
func insert(e, prev, next *Head) {
	next.Prev = e
	e.Next = next
	e.Prev = prev
	prev.Next = e
}

// Add splices e right after at.
func Add(e, at *Head) {
	insert(e, at, at.Next)
}

// AddTail splices e right before at. With the sentinel as at, e becomes
// the last entry.
func AddTail(e, at *Head) {
	insert(e, at.Prev, at)
}

// unlink makes prev and next point at each other.
func unlink(prev, next *Head) {
	next.Prev = prev
	prev.Next = next
}

// Del unlinks e from its ring. e's links are cleared, so e must be
// re-initialized or re-spliced before it is used as a ring again.
func Del(e *Head) {
	unlink(e.Prev, e.Next)
	e.Next = nil // avoid memory leaks
	e.Prev = nil // avoid memory leaks
}

// DelInit unlinks e from its ring and leaves it as a singleton ring.
func DelInit(e *Head) {
	unlink(e.Prev, e.Next)
	Init(e)
}

// Empty reports whether the ring anchored at h has no entries.
func Empty(h *Head) bool {
	return h.Next == h
}

// IsSingular reports whether the ring anchored at h has exactly one entry.
func IsSingular(h *Head) bool {
	return h.Next != h && h.Next.Next == h
}

// IsFirst reports whether e is the first entry of the ring anchored at h.
func IsFirst(e, h *Head) bool {
	return e.Prev == h
}

// IsLast reports whether e is the last entry of the ring anchored at h.
func IsLast(e, h *Head) bool {
	return e.Next == h
}

// All iterates the entries of the ring anchored at h, from first to last.
// The successor is read before yielding, so the yielded entry may be
// unlinked by the loop body.
func All(h *Head) iter.Seq[*Head] {
	return func(yield func(*Head) bool) {
		for e, next := h.Next, h.Next.Next; e != h; e, next = next, next.Next {
			if !yield(e) {
				return
			}
		}
	}
}

// Backward iterates the entries of the ring anchored at h, from last to first.
func Backward(h *Head) iter.Seq[*Head] {
	return func(yield func(*Head) bool) {
		for e, prev := h.Prev, h.Prev.Prev; e != h; e, prev = prev, prev.Prev {
			if !yield(e) {
				return
			}
		}
	}
}

// Len counts the entries of the ring anchored at h in one forward pass.
func Len(h *Head) int {
	n := 0
	for range All(h) {
		n++
	}
	return n
}

// Consistent walks the ring anchored at h in both directions and reports
// whether every entry's neighbours point back at it and both walks meet the
// same number of entries. limit bounds each walk so that a broken ring that
// never returns to h is reported instead of looping.
func Consistent(h *Head, limit int) bool {
	if h == nil || h.Next == nil || h.Prev == nil {
		return false
	}
	forward := 0
	for e := h.Next; e != h; e = e.Next {
		if e == nil || e.Next == nil || e.Prev == nil || e.Next.Prev != e || e.Prev.Next != e {
			return false
		}
		if forward++; forward > limit {
			return false
		}
	}
	backward := 0
	for e := h.Prev; e != h; e = e.Prev {
		if e == nil || e.Prev == nil {
			return false
		}
		if backward++; backward > limit {
			return false
		}
	}
	return forward == backward && h.Next.Prev == h && h.Prev.Next == h
}
