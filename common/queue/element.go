package queue

import (
	"strings"
	"unsafe"

	"github.com/Qthai16/ringqueue/common/list"
	"github.com/Qthai16/ringqueue/common/pool"
)

// Element is a queue entry: an owned string payload with its ring link
// embedded.
type Element struct {
	Value string
	link  list.Head
}

var linkOffset = unsafe.Offsetof(Element{}.link)

// entry returns the Element that embeds h. h must not be a queue sentinel.
func entry(h *list.Head) *Element {
	return (*Element)(unsafe.Add(unsafe.Pointer(h), -int(linkOffset)))
}

// Link exposes the ring link embedded in e.
func (e *Element) Link() *list.Head {
	return &e.link
}

// Allocator owns the storage of sentinels, elements and payloads. A nil
// result or a false flag means the allocation failed; the queue then unwinds
// whatever it already took for that operation.
type Allocator interface {
	AllocSentinel() *list.Head
	FreeSentinel(h *list.Head)
	AllocElement() *Element
	FreeElement(e *Element)
	// DupString returns a copy of s the queue owns until FreeString.
	DupString(s string) (string, bool)
	FreeString(s string)
}

// heapAllocator never fails. Element storage is recycled through a TPool.
type heapAllocator struct {
	elements *pool.TPool[Element]
}

func newHeapAllocator() *heapAllocator {
	return &heapAllocator{
		elements: pool.NewTPool(pool.TPoolConfig[Element]{
			Cleanup: func(e *Element) {
				e.Value = ""
				e.link = list.Head{}
			},
		}),
	}
}

var defaultAllocator Allocator = newHeapAllocator()

func (a *heapAllocator) AllocSentinel() *list.Head { return list.New() }

func (a *heapAllocator) FreeSentinel(h *list.Head) { *h = list.Head{} }

func (a *heapAllocator) AllocElement() *Element { return a.elements.Get() }

func (a *heapAllocator) FreeElement(e *Element) { a.elements.Put(&e) }

func (a *heapAllocator) DupString(s string) (string, bool) { return strings.Clone(s), true }

func (a *heapAllocator) FreeString(string) {}
