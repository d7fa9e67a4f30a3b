package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunWithinFinishes(t *testing.T) {
	ran := false
	err := RunWithin(time.Second, func() { ran = true })
	assert.NoError(t, err)
	assert.True(t, ran)
}

func TestRunWithinTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	err := RunWithin(10*time.Millisecond, func() { <-release })
	assert.ErrorIs(t, err, ErrTimeLimit)
}

func TestRunWithinNoLimit(t *testing.T) {
	ran := false
	assert.NoError(t, RunWithin(0, func() { ran = true }))
	assert.True(t, ran)
}

func TestTimerReuse(t *testing.T) {
	for i := 0; i < 3; i++ {
		tm := BorrowTimer(time.Millisecond)
		<-tm.C
		ReturnTimer(tm)
	}
}
