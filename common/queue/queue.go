// Package queue implements a string queue on top of an intrusive ring.
//
// A Queue is anchored by a sentinel list.Head that never carries a payload.
// Walking Next from the sentinel visits every element once and comes back to
// the sentinel; walking Prev does the same in reverse. Every exported method
// leaves that ring closed when it returns.
//
// A Queue has no internal locking. One goroutine at a time may use it; a
// caller sharing a queue must hold its own lock around every call.
//
// Remove and delete differ: RemoveHead/RemoveTail unlink an element and hand
// it to the caller, who later gives it back through Release. Delete* unlink
// and release in one step.
package queue

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Qthai16/ringqueue/common/list"
	"github.com/Qthai16/ringqueue/utils"
)

var (
	ErrNilQueue = errors.New("queue is nil")
	ErrNoMemory = errors.New("allocation failed")
	ErrEmpty    = errors.New("queue is empty")
)

type Queue struct {
	head  *list.Head
	alloc Allocator
	log   *slog.Logger
}

type Option func(*Queue)

// WithAllocator makes the queue take every sentinel, element and payload
// from a.
func WithAllocator(a Allocator) Option {
	return func(q *Queue) {
		if a != nil {
			q.alloc = a
		}
	}
}

// WithLogger routes the queue's debug and trace records to l.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.log = l
		}
	}
}

// New creates an empty queue. It fails only when the allocator cannot
// provide the sentinel.
func New(opts ...Option) (*Queue, error) {
	q := &Queue{
		alloc: defaultAllocator,
		log:   utils.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(q)
	}
	h := q.alloc.AllocSentinel()
	if h == nil {
		q.log.Debug("new queue failed", "error", ErrNoMemory)
		return nil, ErrNoMemory
	}
	q.head = list.Init(h)
	return q, nil
}

// valid reports whether q can be operated on: a nil queue and a freed one
// are both treated as the null queue.
func (q *Queue) valid() bool {
	return q != nil && q.head != nil
}

// Free releases every remaining element and its payload, then the sentinel.
// q behaves as a nil queue afterwards.
func (q *Queue) Free() {
	if !q.valid() {
		return
	}
	utils.Trace(q.log, "free", "size", q.Size())
	for h := range list.All(q.head) {
		q.release(entry(h))
	}
	q.alloc.FreeSentinel(q.head)
	q.head = nil
}

func (q *Queue) release(e *Element) {
	q.alloc.FreeString(e.Value)
	e.Value = ""
	q.alloc.FreeElement(e)
}

// Release gives back an element obtained from RemoveHead or RemoveTail.
func (q *Queue) Release(e *Element) {
	if e == nil {
		return
	}
	if q == nil || q.alloc == nil {
		defaultAllocator.FreeString(e.Value)
		defaultAllocator.FreeElement(e)
		return
	}
	q.release(e)
}

// newElement builds an element holding a copy of s. On failure nothing is
// left allocated.
func (q *Queue) newElement(s string) (*Element, error) {
	e := q.alloc.AllocElement()
	if e == nil {
		return nil, ErrNoMemory
	}
	v, ok := q.alloc.DupString(s)
	if !ok {
		q.alloc.FreeElement(e)
		return nil, ErrNoMemory
	}
	e.Value = v
	return e, nil
}

// InsertHead inserts a copy of s as the first element.
func (q *Queue) InsertHead(s string) error {
	if !q.valid() {
		return ErrNilQueue
	}
	e, err := q.newElement(s)
	if err != nil {
		q.log.Debug("insert head failed", "value", s, "error", err)
		return err
	}
	list.Add(&e.link, q.head)
	return nil
}

// InsertTail inserts a copy of s as the last element.
func (q *Queue) InsertTail(s string) error {
	if !q.valid() {
		return ErrNilQueue
	}
	e, err := q.newElement(s)
	if err != nil {
		q.log.Debug("insert tail failed", "value", s, "error", err)
		return err
	}
	list.AddTail(&e.link, q.head)
	return nil
}

// copyOut copies as much of v as fits in buf while keeping a terminating
// NUL, and zeroes the remainder of buf.
func copyOut(buf []byte, v string) {
	if len(buf) == 0 {
		return
	}
	n := copy(buf[:len(buf)-1], v)
	clear(buf[n:])
}

func (q *Queue) remove(h *list.Head, buf []byte) *Element {
	e := entry(h)
	list.Del(h)
	copyOut(buf, e.Value)
	return e
}

// RemoveHead unlinks the first element and returns it; the caller owns it
// from then on. If buf is not empty, the payload is copied into it,
// truncated to len(buf)-1 bytes and NUL terminated. It returns nil for a nil
// or empty queue.
func (q *Queue) RemoveHead(buf []byte) *Element {
	if !q.valid() || list.Empty(q.head) {
		return nil
	}
	return q.remove(q.head.Next, buf)
}

// RemoveTail is RemoveHead for the last element.
func (q *Queue) RemoveTail(buf []byte) *Element {
	if !q.valid() || list.Empty(q.head) {
		return nil
	}
	return q.remove(q.head.Prev, buf)
}

// Size counts the elements. The ring is the only record of them, so this is
// a full forward pass.
func (q *Queue) Size() int {
	if !q.valid() {
		return 0
	}
	return list.Len(q.head)
}

// Values returns the payloads from first to last.
func (q *Queue) Values() []string {
	if !q.valid() {
		return nil
	}
	vals := make([]string, 0, 8)
	for h := range list.All(q.head) {
		vals = append(vals, entry(h).Value)
	}
	return vals
}

// Head exposes the sentinel for invariant checks. Callers must not relink it.
func (q *Queue) Head() *list.Head {
	if !q.valid() {
		return nil
	}
	return q.head
}

func (q *Queue) String() string {
	if !q.valid() {
		return "NULL"
	}
	return "[" + strings.Join(q.Values(), " ") + "]"
}
