// Package qstat counts qtest commands and the failures they report.
package qstat

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/olekukonko/tablewriter"
)

const (
	NilQueueErrKey   = "nil_queue"
	NoMemoryErrKey   = "no_memory"
	TimeLimitErrKey  = "time_limit"
	BadArgErrKey     = "bad_argument"
	RingBrokenErrKey = "ring_broken"
	MismatchErrKey   = "mismatch"
)

var errKeys = []string{NilQueueErrKey, NoMemoryErrKey, TimeLimitErrKey, BadArgErrKey, RingBrokenErrKey, MismatchErrKey}

type (
	CmdStat struct {
		Name   string
		Count  atomic.Int64
		Failed atomic.Int64
	}
	QStats struct {
		cmds     []*CmdStat // sorted by Name
		errorMap map[string]*atomic.Int64
		mu       sync.RWMutex
	}
)

func NewQStats() *QStats {
	errorMap := make(map[string]*atomic.Int64, len(errKeys))
	for _, k := range errKeys {
		errorMap[k] = &atomic.Int64{}
	}
	return &QStats{
		cmds:     make([]*CmdStat, 0),
		errorMap: errorMap,
	}
}

func (qs *QStats) lookup(name string) (int, bool) {
	return slices.BinarySearchFunc(qs.cmds, name, func(c *CmdStat, target string) int {
		return strings.Compare(c.Name, target)
	})
}

// cmd returns the counters of name, adding them on first use.
func (qs *QStats) cmd(name string) *CmdStat {
	qs.mu.RLock()
	if ind, found := qs.lookup(name); found {
		st := qs.cmds[ind]
		qs.mu.RUnlock()
		return st
	}
	qs.mu.RUnlock()
	qs.mu.Lock()
	defer qs.mu.Unlock()
	ind, found := qs.lookup(name)
	if found {
		return qs.cmds[ind]
	}
	st := &CmdStat{Name: name}
	qs.cmds = slices.Insert(qs.cmds, ind, st)
	return st
}

// AddCmd records one run of name and whether it failed.
func (qs *QStats) AddCmd(name string, failed bool) {
	st := qs.cmd(name)
	st.Count.Add(1)
	if failed {
		st.Failed.Add(1)
	}
}

// IncErrStat bumps an error counter. Unknown keys are ignored.
func (qs *QStats) IncErrStat(key string) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	if c, ok := qs.errorMap[key]; ok {
		c.Add(1)
	}
}

func (qs *QStats) Count(name string) int64 {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	if ind, found := qs.lookup(name); found {
		return qs.cmds[ind].Count.Load()
	}
	return 0
}

func (qs *QStats) Errors(key string) int64 {
	if c, ok := qs.errorMap[key]; ok {
		return c.Load()
	}
	return 0
}

func (qs *QStats) String() string {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	var sb strings.Builder
	sb.WriteString("Commands: ")
	for _, c := range qs.cmds {
		fmt.Fprintf(&sb, "\"%v\": %v/%v, ", c.Name, c.Count.Load(), c.Failed.Load())
	}
	sb.WriteString("\nErrors: {")
	for _, k := range errKeys {
		fmt.Fprintf(&sb, "\"%v\": %v, ", k, qs.errorMap[k].Load())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Render writes commands and error counters as tables.
func (qs *QStats) Render(w io.Writer) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Command", "Calls", "Failed"})
	for _, c := range qs.cmds {
		table.Append([]string{c.Name, strconv.FormatInt(c.Count.Load(), 10), strconv.FormatInt(c.Failed.Load(), 10)})
	}
	table.Render()

	errTable := tablewriter.NewWriter(w)
	errTable.SetHeader([]string{"Error", "Count"})
	for _, k := range errKeys {
		errTable.Append([]string{k, strconv.FormatInt(qs.errorMap[k].Load(), 10)})
	}
	errTable.Render()
}
