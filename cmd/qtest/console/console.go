// Package console interprets qtest commands against a single queue.
//
// Every queue is built on a tracking allocator, so the console can report
// leaks and double frees when it closes. After each command that mutates
// the queue, the ring is walked in both directions and a broken ring is
// reported as an error.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Qthai16/ringqueue/cmd/qtest/qstat"
	"github.com/Qthai16/ringqueue/common"
	"github.com/Qthai16/ringqueue/common/list"
	"github.com/Qthai16/ringqueue/common/queue"
	"github.com/Qthai16/ringqueue/harness"
	"github.com/Qthai16/ringqueue/utils"
	"github.com/Qthai16/ringqueue/utils/hashkit"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad argument")
	ErrRingBroken     = errors.New("ring invariant violated")
	ErrMismatch       = errors.New("unexpected value")
	ErrNotSorted      = errors.New("queue is not sorted")
	ErrAbandoned      = errors.New("queue abandoned after time limit")

	errQuit = errors.New("quit")
)

const (
	defaultStringLength = 1024
	maxShow             = 50
	randMinLen          = 5
	randMaxLen          = 10
	randToken           = "RAND"
)

type Config struct {
	FailProbability int
	TimeLimit       time.Duration
	Seed            int64
	Echo            bool
	Logger          *slog.Logger
}

type command struct {
	name         string
	args         string
	help         string
	touchesQueue bool // runs under the time limit, ring checked afterwards
	run          func(c *Console, args []string) error
}

type Console struct {
	out       io.Writer
	log       *slog.Logger
	alloc     *harness.Allocator
	stats     *qstat.QStats
	rnd       *rand.Rand
	q         *queue.Queue
	cmds      map[string]*command
	timeLimit time.Duration
	strLen    int
	echo      bool
	failures  int
	abandoned bool
}

func New(out io.Writer, conf Config) *Console {
	if conf.Logger == nil {
		conf.Logger = utils.DiscardLogger()
	}
	c := &Console{
		out:       out,
		log:       conf.Logger,
		alloc:     harness.New(conf.Seed),
		stats:     qstat.NewQStats(),
		rnd:       rand.New(rand.NewSource(conf.Seed)),
		timeLimit: conf.TimeLimit,
		strLen:    defaultStringLength,
		echo:      conf.Echo,
	}
	c.alloc.SetFailProbability(conf.FailProbability)
	c.cmds = make(map[string]*command)
	for _, cmd := range commands() {
		c.cmds[cmd.name] = cmd
	}
	return c
}

func commands() []*command {
	return []*command{
		{name: "new", help: "Create new queue", touchesQueue: true, run: (*Console).doNew},
		{name: "free", help: "Delete queue", touchesQueue: true, run: (*Console).doFree},
		{name: "ih", args: "str [n]", help: "Insert string str at head of queue n times. str RAND picks a random string", touchesQueue: true, run: (*Console).doInsertHead},
		{name: "it", args: "str [n]", help: "Insert string str at tail of queue n times. str RAND picks a random string", touchesQueue: true, run: (*Console).doInsertTail},
		{name: "rh", args: "[str]", help: "Remove from head of queue. Optionally compare to expected value str", touchesQueue: true, run: (*Console).doRemoveHead},
		{name: "rt", args: "[str]", help: "Remove from tail of queue. Optionally compare to expected value str", touchesQueue: true, run: (*Console).doRemoveTail},
		{name: "size", args: "[n]", help: "Compute queue size n times", touchesQueue: true, run: (*Console).doSize},
		{name: "dm", help: "Delete middle node in queue", touchesQueue: true, run: (*Console).doDeleteMid},
		{name: "dedup", help: "Delete all nodes that have duplicate string", touchesQueue: true, run: (*Console).doDedup},
		{name: "swap", help: "Swap every two adjacent nodes in queue", touchesQueue: true, run: (*Console).doSwap},
		{name: "reverse", help: "Reverse queue", touchesQueue: true, run: (*Console).doReverse},
		{name: "sort", help: "Sort queue in ascending order", touchesQueue: true, run: (*Console).doSort},
		{name: "show", help: "Show queue contents", run: (*Console).doShow},
		{name: "hash", args: "[jenkins|murmur32|murmur64]", help: "Print a fingerprint of queue contents", run: (*Console).doHash},
		{name: "stats", help: "Print allocation and command statistics", run: (*Console).doStats},
		{name: "option", args: "[name val]", help: "Display or set options: fail, limit (ms), length, echo", run: (*Console).doOption},
		{name: "help", help: "Show documentation", run: (*Console).doHelp},
		{name: "quit", help: "Exit program", run: func(*Console, []string) error { return errQuit }},
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Failures is the number of commands that reported an error so far.
func (c *Console) Failures() int {
	return c.failures
}

func (c *Console) Stats() *qstat.QStats {
	return c.stats
}

func (c *Console) Allocator() *harness.Allocator {
	return c.alloc
}

// Queue is the queue under test; nil when none exists.
func (c *Console) Queue() *queue.Queue {
	return c.q
}

func errKey(err error) string {
	switch {
	case errors.Is(err, queue.ErrNilQueue):
		return qstat.NilQueueErrKey
	case errors.Is(err, queue.ErrNoMemory):
		return qstat.NoMemoryErrKey
	case errors.Is(err, common.ErrTimeLimit), errors.Is(err, ErrAbandoned):
		return qstat.TimeLimitErrKey
	case errors.Is(err, ErrRingBroken):
		return qstat.RingBrokenErrKey
	case errors.Is(err, ErrMismatch), errors.Is(err, ErrNotSorted):
		return qstat.MismatchErrKey
	default:
		return qstat.BadArgErrKey
	}
}

// Exec runs a single command line. Blank lines and lines starting with '#'
// are ignored.
func (c *Console) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	if c.echo {
		c.printf("cmd> %s\n", strings.Join(fields, " "))
	}
	name, args := fields[0], fields[1:]
	cmd, ok := c.cmds[name]
	if !ok {
		c.failures++
		c.stats.IncErrStat(qstat.BadArgErrKey)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	c.log.Debug("exec", "cmd", name, "args", args)
	err := c.execute(cmd, args)
	if errors.Is(err, errQuit) {
		return err
	}
	c.stats.AddCmd(name, err != nil)
	if err != nil {
		c.failures++
		c.stats.IncErrStat(errKey(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (c *Console) execute(cmd *command, args []string) error {
	if !cmd.touchesQueue {
		return cmd.run(c, args)
	}
	if c.abandoned {
		return ErrAbandoned
	}
	var err error
	if lerr := common.RunWithin(c.timeLimit, func() { err = cmd.run(c, args) }); lerr != nil {
		// the command may still be running on the old queue; never touch it again
		c.q = nil
		c.abandoned = true
		return lerr
	}
	if err != nil {
		return err
	}
	return c.checkRing()
}

func (c *Console) checkRing() error {
	if c.q == nil {
		return nil
	}
	h := c.q.Head()
	if h == nil {
		return nil
	}
	if !list.Consistent(h, c.alloc.Stats().LiveElements+1) {
		return ErrRingBroken
	}
	return nil
}

// Run executes commands read from r line by line until EOF or quit. A
// failing command is reported on the output and does not stop the run.
func (c *Console) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		err := c.Exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			c.printf("ERROR: %v\n", err)
		}
	}
	return scanner.Err()
}

// Close frees the queue under test and returns the allocator's findings.
func (c *Console) Close() error {
	if c.q != nil {
		c.q.Free()
		c.q = nil
	}
	if c.abandoned {
		// the abandoned queue is still allocated; leaks are expected
		return ErrAbandoned
	}
	return c.alloc.Check()
}

func (c *Console) showQueue() {
	if c.q == nil {
		c.printf("l = NULL\n")
		return
	}
	vals := c.q.Values()
	if len(vals) > maxShow {
		c.printf("l = [%s ...]\n", strings.Join(vals[:maxShow], " "))
		return
	}
	c.printf("l = [%s]\n", strings.Join(vals, " "))
}

func (c *Console) randString() string {
	n := randMinLen + c.rnd.Intn(randMaxLen-randMinLen+1)
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + c.rnd.Intn(26))
	}
	return string(b)
}

func (c *Console) doNew(args []string) error {
	if c.q != nil {
		c.q.Free()
		c.q = nil
	}
	q, err := queue.New(queue.WithAllocator(c.alloc), queue.WithLogger(c.log))
	if err != nil {
		return err
	}
	c.q = q
	c.showQueue()
	return nil
}

func (c *Console) doFree(args []string) error {
	if c.q == nil {
		c.printf("Warning: Calling free on null queue\n")
	}
	c.q.Free()
	c.q = nil
	c.showQueue()
	return nil
}

func parseCount(args []string, at int) (int, error) {
	if len(args) <= at {
		return 1, nil
	}
	n, err := strconv.Atoi(args[at])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: count %q", ErrBadArgument, args[at])
	}
	return n, nil
}

func (c *Console) insert(args []string, fn func(*queue.Queue, string) error) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: need a string", ErrBadArgument)
	}
	n, err := parseCount(args, 1)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		v := args[0]
		if v == randToken {
			v = c.randString()
		}
		if err := fn(c.q, v); err != nil {
			if errors.Is(err, queue.ErrNoMemory) && c.alloc.FailProbability() > 0 {
				// injected, the queue must simply be unchanged
				c.printf("Warning: insertion of %q failed\n", v)
				continue
			}
			return err
		}
	}
	c.showQueue()
	return nil
}

func (c *Console) doInsertHead(args []string) error {
	return c.insert(args, (*queue.Queue).InsertHead)
}

func (c *Console) doInsertTail(args []string) error {
	return c.insert(args, (*queue.Queue).InsertTail)
}

func (c *Console) remove(args []string, fn func(*queue.Queue, []byte) *queue.Element) error {
	buf := make([]byte, c.strLen+1)
	e := fn(c.q, buf)
	if e == nil {
		if len(args) > 0 {
			return fmt.Errorf("%w: nothing removed, expected %q", ErrMismatch, args[0])
		}
		if c.q == nil {
			c.printf("Warning: Calling remove on null queue\n")
		} else {
			c.printf("Warning: Calling remove on empty queue\n")
		}
		return nil
	}
	got := string(buf[:slices.Index(buf, 0)])
	c.q.Release(e)
	if len(args) > 0 && got != args[0] {
		return fmt.Errorf("%w: removed %q, expected %q", ErrMismatch, got, args[0])
	}
	c.printf("Removed %s from queue\n", got)
	c.showQueue()
	return nil
}

func (c *Console) doRemoveHead(args []string) error {
	return c.remove(args, (*queue.Queue).RemoveHead)
}

func (c *Console) doRemoveTail(args []string) error {
	return c.remove(args, (*queue.Queue).RemoveTail)
}

func (c *Console) doSize(args []string) error {
	n, err := parseCount(args, 0)
	if err != nil {
		return err
	}
	size := 0
	for i := 0; i < n; i++ {
		size = c.q.Size()
	}
	if c.q == nil {
		c.printf("Warning: Calling size on null queue\n")
	}
	c.printf("Queue size = %d\n", size)
	return nil
}

func (c *Console) doDeleteMid(args []string) error {
	if err := c.q.DeleteMid(); err != nil {
		return err
	}
	c.showQueue()
	return nil
}

func (c *Console) doDedup(args []string) error {
	if err := c.q.DeleteDup(); err != nil {
		return err
	}
	c.showQueue()
	return nil
}

func (c *Console) doSwap(args []string) error {
	c.q.Swap()
	c.showQueue()
	return nil
}

func (c *Console) doReverse(args []string) error {
	c.q.Reverse()
	c.showQueue()
	return nil
}

func (c *Console) doSort(args []string) error {
	if c.q == nil {
		c.printf("Warning: Calling sort on null queue\n")
	}
	c.q.Sort()
	if !sort.StringsAreSorted(c.q.Values()) {
		return ErrNotSorted
	}
	c.showQueue()
	return nil
}

func (c *Console) doShow(args []string) error {
	c.showQueue()
	return nil
}

func (c *Console) doHash(args []string) error {
	algo := hashkit.Murmur32
	if len(args) > 0 {
		algo = hashkit.Algo(args[0])
	}
	sum, err := hashkit.Fingerprint(algo, c.q.Values())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	c.printf("%s = %#x\n", algo, sum)
	return nil
}

func (c *Console) doStats(args []string) error {
	c.alloc.Report(c.out)
	c.stats.Render(c.out)
	return nil
}

func (c *Console) doOption(args []string) error {
	if len(args) == 0 {
		c.printf("Options:\n")
		c.printf("\tfail\t%d\tPercent of allocations to fail\n", c.alloc.FailProbability())
		c.printf("\tlimit\t%d\tTime limit per command in milliseconds (0 disables)\n", c.timeLimit.Milliseconds())
		c.printf("\tlength\t%d\tMaximum length of removed strings\n", c.strLen)
		c.printf("\techo\t%d\tEcho commands\n", btoi(c.echo))
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: option needs a name and a value", ErrBadArgument)
	}
	v, err := strconv.Atoi(args[1])
	if err != nil || v < 0 {
		return fmt.Errorf("%w: option %s value %q", ErrBadArgument, args[0], args[1])
	}
	switch args[0] {
	case "fail":
		if v > 100 {
			return fmt.Errorf("%w: fail must be 0-100", ErrBadArgument)
		}
		c.alloc.SetFailProbability(v)
	case "limit":
		c.timeLimit = time.Duration(v) * time.Millisecond
	case "length":
		if v == 0 {
			return fmt.Errorf("%w: length must be positive", ErrBadArgument)
		}
		c.strLen = v
	case "echo":
		c.echo = v != 0
	default:
		return fmt.Errorf("%w: unknown option %q", ErrBadArgument, args[0])
	}
	return nil
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c *Console) doHelp(args []string) error {
	names := make([]string, 0, len(c.cmds))
	for name := range c.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	c.printf("Commands:\n")
	for _, name := range names {
		cmd := c.cmds[name]
		c.printf("\t%-8s %-28s | %s\n", cmd.name, cmd.args, cmd.help)
	}
	return nil
}
