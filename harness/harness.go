// Package harness provides an Allocator that records every sentinel, element
// and payload a queue takes and gives back, and that can be told to refuse a
// share of allocations.
//
// It is meant for tests and for the qtest driver: after a run, Check reports
// double frees, frees of storage the harness never handed out, and anything
// still allocated.
package harness

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"unsafe"

	"github.com/olekukonko/tablewriter"

	"github.com/Qthai16/ringqueue/common/list"
	"github.com/Qthai16/ringqueue/common/queue"
)

var (
	ErrDoubleFree  = errors.New("double free")
	ErrForeignFree = errors.New("free of untracked block")
	ErrLeak        = errors.New("blocks still allocated")
)

type Stats struct {
	Allocs   int // successful allocations of any kind
	Frees    int
	Failures int // allocations refused by failure injection
	Bytes    int // payload bytes currently held

	LiveSentinels int
	LiveElements  int
	LivePayloads  int
}

type Allocator struct {
	failProb int // percent
	rnd      *rand.Rand

	sentinels     map[*list.Head]struct{}
	elements      map[*queue.Element]struct{}
	payloads      map[*byte]int
	emptyPayloads int

	stats Stats
	errs  []error
}

var _ queue.Allocator = (*Allocator)(nil)

func New(seed int64) *Allocator {
	return &Allocator{
		rnd:       rand.New(rand.NewSource(seed)),
		sentinels: make(map[*list.Head]struct{}),
		elements:  make(map[*queue.Element]struct{}),
		payloads:  make(map[*byte]int),
	}
}

// SetFailProbability makes each following allocation fail with probability
// p percent. p is clamped to [0, 100].
func (a *Allocator) SetFailProbability(p int) {
	a.failProb = max(0, min(p, 100))
}

func (a *Allocator) FailProbability() int {
	return a.failProb
}

func (a *Allocator) fail() bool {
	if a.failProb == 0 || a.rnd.Intn(100) >= a.failProb {
		return false
	}
	a.stats.Failures++
	return true
}

func (a *Allocator) misuse(err error, what string) {
	a.errs = append(a.errs, fmt.Errorf("%s: %w", what, err))
}

func (a *Allocator) AllocSentinel() *list.Head {
	if a.fail() {
		return nil
	}
	h := new(list.Head)
	a.sentinels[h] = struct{}{}
	a.stats.Allocs++
	a.stats.LiveSentinels++
	return h
}

func (a *Allocator) FreeSentinel(h *list.Head) {
	if _, ok := a.sentinels[h]; !ok {
		a.misuse(ErrForeignFree, "sentinel")
		return
	}
	delete(a.sentinels, h)
	*h = list.Head{}
	a.stats.Frees++
	a.stats.LiveSentinels--
}

func (a *Allocator) AllocElement() *queue.Element {
	if a.fail() {
		return nil
	}
	e := new(queue.Element)
	a.elements[e] = struct{}{}
	a.stats.Allocs++
	a.stats.LiveElements++
	return e
}

func (a *Allocator) FreeElement(e *queue.Element) {
	if _, ok := a.elements[e]; !ok {
		a.misuse(ErrForeignFree, "element")
		return
	}
	delete(a.elements, e)
	a.stats.Frees++
	a.stats.LiveElements--
}

// DupString copies s into fresh storage so every payload has its own
// address to be tracked by.
func (a *Allocator) DupString(s string) (string, bool) {
	if a.fail() {
		return "", false
	}
	a.stats.Allocs++
	a.stats.LivePayloads++
	if len(s) == 0 {
		a.emptyPayloads++
		return "", true
	}
	b := make([]byte, len(s))
	copy(b, s)
	a.payloads[&b[0]] = len(b)
	a.stats.Bytes += len(b)
	return unsafe.String(&b[0], len(b)), true
}

func (a *Allocator) FreeString(s string) {
	if len(s) == 0 {
		if a.emptyPayloads == 0 {
			a.misuse(ErrDoubleFree, "empty payload")
			return
		}
		a.emptyPayloads--
	} else {
		p := unsafe.StringData(s)
		n, ok := a.payloads[p]
		if !ok {
			a.misuse(ErrDoubleFree, "payload "+strconv.Quote(s))
			return
		}
		delete(a.payloads, p)
		a.stats.Bytes -= n
	}
	a.stats.Frees++
	a.stats.LivePayloads--
}

func (a *Allocator) Stats() Stats {
	return a.stats
}

// Check returns every misuse seen so far plus a leak error when something
// is still allocated.
func (a *Allocator) Check() error {
	errs := append([]error(nil), a.errs...)
	if live := a.stats.LiveSentinels + a.stats.LiveElements + a.stats.LivePayloads; live > 0 {
		errs = append(errs, fmt.Errorf("%w: %d sentinels, %d elements, %d payloads",
			ErrLeak, a.stats.LiveSentinels, a.stats.LiveElements, a.stats.LivePayloads))
	}
	return errors.Join(errs...)
}

// Report writes the counters as a table.
func (a *Allocator) Report(w io.Writer) {
	s := a.stats
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Counter", "Value"})
	table.AppendBulk([][]string{
		{"allocs", strconv.Itoa(s.Allocs)},
		{"frees", strconv.Itoa(s.Frees)},
		{"injected failures", strconv.Itoa(s.Failures)},
		{"live sentinels", strconv.Itoa(s.LiveSentinels)},
		{"live elements", strconv.Itoa(s.LiveElements)},
		{"live payloads", strconv.Itoa(s.LivePayloads)},
		{"payload bytes", strconv.Itoa(s.Bytes)},
		{"fail probability", strconv.Itoa(a.failProb) + "%"},
	})
	table.Render()
}
