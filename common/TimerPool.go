package common

import (
	"errors"
	"sync"
	"time"

	"github.com/Qthai16/ringqueue/utils"
)

var ErrTimeLimit = errors.New("time limit exceeded")

var _TimerPool sync.Pool

func BorrowTimer(d time.Duration) *time.Timer {
	x := _TimerPool.Get()
	if x == nil {
		return time.NewTimer(d)
	}
	t := x.(*time.Timer)
	if t.Reset(d) {
		utils.LogFatal("[timer_pool] pool returned an active timer")
	}
	return t
}

func ReturnTimer(t *time.Timer) {
	if !t.Stop() && len(t.C) != 0 {
		<-t.C
	}
	_TimerPool.Put(t)
}

// RunWithin runs fn and waits at most d for it to finish. fn runs on its own
// goroutine; after ErrTimeLimit it may still be running, so whatever it
// touches must be abandoned by the caller. A non-positive d runs fn inline
// without a limit.
func RunWithin(d time.Duration, fn func()) error {
	if d <= 0 {
		fn()
		return nil
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	t := BorrowTimer(d)
	defer ReturnTimer(t)
	select {
	case <-done:
		return nil
	case <-t.C:
		return ErrTimeLimit
	}
}
