// Package fuzz drives a queue with random operations and compares it after
// every step against an oracle list that implements the same operations the
// obvious way.
package fuzz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	godsutils "github.com/emirpasic/gods/utils"

	"github.com/Qthai16/ringqueue/cmd/qtest/qstat"
	"github.com/Qthai16/ringqueue/common/list"
	"github.com/Qthai16/ringqueue/common/queue"
	"github.com/Qthai16/ringqueue/harness"
	"github.com/Qthai16/ringqueue/utils"
)

var ErrDiverged = errors.New("queue diverged from oracle")

type Config struct {
	Ops             int
	Seed            int64
	FailProbability int
	Alphabet        int // distinct letters in generated values, small values force duplicates
	MaxLen          int
	Logger          *slog.Logger
}

func (c *Config) setDefaults() {
	if c.Ops <= 0 {
		c.Ops = 10000
	}
	if c.Alphabet <= 0 || c.Alphabet > 26 {
		c.Alphabet = 4
	}
	if c.MaxLen <= 0 {
		c.MaxLen = 3
	}
	if c.Logger == nil {
		c.Logger = utils.DiscardLogger()
	}
}

type op struct {
	name   string
	weight int
	apply  func(r *runner) error
}

var ops = []op{
	{"ih", 6, (*runner).insertHead},
	{"it", 6, (*runner).insertTail},
	{"rh", 3, (*runner).removeHead},
	{"rt", 3, (*runner).removeTail},
	{"size", 1, (*runner).size},
	{"dm", 1, (*runner).deleteMid},
	{"dedup", 1, (*runner).dedup},
	{"swap", 1, (*runner).swap},
	{"reverse", 1, (*runner).reverse},
	{"sort", 1, (*runner).sort},
	{"renew", 1, (*runner).renew},
}

type runner struct {
	conf   Config
	rnd    *rand.Rand
	alloc  *harness.Allocator
	q      *queue.Queue
	oracle *doublylinkedlist.List
	stats  *qstat.QStats
}

// Run applies conf.Ops random operations and returns the per-operation
// statistics. It stops early with ErrDiverged on the first difference, or
// with ctx's error when ctx is done.
func Run(ctx context.Context, conf Config) (*qstat.QStats, error) {
	conf.setDefaults()
	r := &runner{
		conf:   conf,
		rnd:    rand.New(rand.NewSource(conf.Seed)),
		alloc:  harness.New(conf.Seed),
		oracle: doublylinkedlist.New(),
		stats:  qstat.NewQStats(),
	}
	q, err := queue.New(queue.WithAllocator(r.alloc), queue.WithLogger(conf.Logger))
	if err != nil {
		return r.stats, err
	}
	r.q = q
	r.alloc.SetFailProbability(conf.FailProbability)

	total := 0
	for _, o := range ops {
		total += o.weight
	}
	for step := 0; step < conf.Ops; step++ {
		if err := ctx.Err(); err != nil {
			r.q.Free()
			return r.stats, err
		}
		o := pick(r.rnd.Intn(total))
		err := o.apply(r)
		if err == nil {
			err = r.compare()
		}
		r.stats.AddCmd(o.name, err != nil)
		if err != nil {
			r.stats.IncErrStat(qstat.MismatchErrKey)
			conf.Logger.Error("fuzz diverged", "step", step, "op", o.name, "error", err)
			return r.stats, fmt.Errorf("step %d %s: %w", step, o.name, err)
		}
	}
	r.q.Free()
	if err := r.alloc.Check(); err != nil {
		return r.stats, err
	}
	return r.stats, nil
}

func pick(n int) op {
	for _, o := range ops {
		if n < o.weight {
			return o
		}
		n -= o.weight
	}
	return ops[len(ops)-1]
}

func (r *runner) value() string {
	n := 1 + r.rnd.Intn(r.conf.MaxLen)
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + r.rnd.Intn(r.conf.Alphabet))
	}
	return string(b)
}

func (r *runner) oracleValues() []string {
	vals := make([]string, 0, r.oracle.Size())
	r.oracle.Each(func(_ int, v interface{}) {
		vals = append(vals, v.(string))
	})
	return vals
}

func (r *runner) resetOracle(vals []string) {
	r.oracle.Clear()
	for _, v := range vals {
		r.oracle.Add(v)
	}
}

func (r *runner) compare() error {
	want := r.oracleValues()
	got := r.q.Values()
	if !slices.Equal(want, got) {
		return fmt.Errorf("%w: queue %v, oracle %v", ErrDiverged, got, want)
	}
	if n := r.q.Size(); n != len(want) {
		return fmt.Errorf("%w: size %d, oracle %d", ErrDiverged, n, len(want))
	}
	if !list.Consistent(r.q.Head(), len(want)+1) {
		return fmt.Errorf("%w: ring broken", ErrDiverged)
	}
	return nil
}

// injected tells a refused allocation from a real failure.
func (r *runner) injected(err error) bool {
	if errors.Is(err, queue.ErrNoMemory) && r.alloc.FailProbability() > 0 {
		r.stats.IncErrStat(qstat.NoMemoryErrKey)
		return true
	}
	return false
}

func (r *runner) insertHead() error {
	v := r.value()
	if err := r.q.InsertHead(v); err != nil {
		if r.injected(err) {
			return nil
		}
		return err
	}
	r.oracle.Prepend(v)
	return nil
}

func (r *runner) insertTail() error {
	v := r.value()
	if err := r.q.InsertTail(v); err != nil {
		if r.injected(err) {
			return nil
		}
		return err
	}
	r.oracle.Add(v)
	return nil
}

func (r *runner) removeAt(e *queue.Element, idx int) error {
	if r.oracle.Empty() {
		if e != nil {
			return fmt.Errorf("%w: removed %q from empty queue", ErrDiverged, e.Value)
		}
		return nil
	}
	if e == nil {
		return fmt.Errorf("%w: nothing removed from non-empty queue", ErrDiverged)
	}
	want, _ := r.oracle.Get(idx)
	r.oracle.Remove(idx)
	got := e.Value
	r.q.Release(e)
	if got != want.(string) {
		return fmt.Errorf("%w: removed %q, oracle %q", ErrDiverged, got, want)
	}
	return nil
}

func (r *runner) removeHead() error {
	return r.removeAt(r.q.RemoveHead(nil), 0)
}

func (r *runner) removeTail() error {
	return r.removeAt(r.q.RemoveTail(nil), r.oracle.Size()-1)
}

func (r *runner) size() error {
	if n := r.q.Size(); n != r.oracle.Size() {
		return fmt.Errorf("%w: size %d, oracle %d", ErrDiverged, n, r.oracle.Size())
	}
	return nil
}

func (r *runner) deleteMid() error {
	if err := r.q.DeleteMid(); err != nil {
		return err
	}
	if !r.oracle.Empty() {
		r.oracle.Remove(r.oracle.Size() / 2)
	}
	return nil
}

// dedup sorts first: duplicate removal is only defined on a sorted queue.
func (r *runner) dedup() error {
	if err := r.sort(); err != nil {
		return err
	}
	if err := r.q.DeleteDup(); err != nil {
		return err
	}
	vals := r.oracleValues()
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	kept := vals[:0]
	for _, v := range vals {
		if counts[v] == 1 {
			kept = append(kept, v)
		}
	}
	r.resetOracle(kept)
	return nil
}

func (r *runner) swap() error {
	r.q.Swap()
	for i := 0; i+1 < r.oracle.Size(); i += 2 {
		r.oracle.Swap(i, i+1)
	}
	return nil
}

func (r *runner) reverse() error {
	r.q.Reverse()
	vals := r.oracleValues()
	slices.Reverse(vals)
	r.resetOracle(vals)
	return nil
}

func (r *runner) sort() error {
	r.q.Sort()
	r.oracle.Sort(godsutils.StringComparator)
	return nil
}

// renew frees the queue and starts over, which exercises Free on a
// populated ring.
func (r *runner) renew() error {
	r.q.Free()
	r.oracle.Clear()
	q, err := queue.New(queue.WithAllocator(r.alloc), queue.WithLogger(r.conf.Logger))
	if err != nil {
		if !r.injected(err) {
			return err
		}
		// keep going on an empty queue built without failure injection
		p := r.alloc.FailProbability()
		r.alloc.SetFailProbability(0)
		q, err = queue.New(queue.WithAllocator(r.alloc), queue.WithLogger(r.conf.Logger))
		r.alloc.SetFailProbability(p)
		if err != nil {
			return err
		}
	}
	r.q = q
	return nil
}
