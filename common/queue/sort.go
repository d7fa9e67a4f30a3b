package queue

import (
	"github.com/Qthai16/ringqueue/common/list"
	"github.com/Qthai16/ringqueue/utils"
)

// The merge sort works on a linear run rather than the ring: the last node's
// Next is nil and the first node's Prev points at the last node. Only Sort
// converts between the two shapes.

type side int

const (
	takeLeft side = iota
	takeRight
)

// pick chooses the side whose head goes next. Ties go left so equal
// payloads keep their relative order.
func pick(left, right *list.Head) side {
	if entry(left).Value <= entry(right).Value {
		return takeLeft
	}
	return takeRight
}

// merge splices two sorted non-empty runs into one sorted run and returns
// its first node.
func merge(left, right *list.Head) *list.Head {
	leftLast, rightLast := left.Prev, right.Prev
	var first, last *list.Head
	for left != nil && right != nil {
		var n *list.Head
		switch pick(left, right) {
		case takeLeft:
			n, left = left, left.Next
		case takeRight:
			n, right = right, right.Next
		}
		if first == nil {
			first = n
		} else {
			last.Next = n
			n.Prev = last
		}
		last = n
	}
	rest, restLast := left, leftLast
	if rest == nil {
		rest, restLast = right, rightLast
	}
	if rest != nil {
		last.Next = rest
		rest.Prev = last
		last = restLast
	}
	first.Prev = last
	last.Next = nil
	return first
}

// mergeSort sorts the run starting at first and returns its new first node.
func mergeSort(first *list.Head) *list.Head {
	if first.Next == nil {
		return first
	}
	last := first.Prev
	// fast ends on the last node for an even run and runs off the end for an
	// odd one; either way slow is the last node of the left half.
	slow, fast := first, first.Next
	for fast != nil && fast.Next != nil {
		slow = slow.Next
		fast = fast.Next.Next
	}
	right := slow.Next
	slow.Next = nil
	first.Prev = slow
	right.Prev = last
	return merge(mergeSort(first), mergeSort(right))
}

// Sort orders the elements by ascending payload, byte-wise. It relinks
// nodes and never copies payloads.
func (q *Queue) Sort() {
	if !q.valid() || list.Empty(q.head) || list.IsSingular(q.head) {
		return
	}
	h := q.head
	utils.Trace(q.log, "sort enter")
	// detach: the sentinel drops out and the elements become a linear run
	first, last := h.Next, h.Prev
	first.Prev = last
	last.Next = nil

	first = mergeSort(first)

	// reattach
	last = first.Prev
	h.Next, h.Prev = first, last
	first.Prev = h
	last.Next = h
	utils.Trace(q.log, "sort exit")
}
