package scheduler

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestScheduler() *Scheduler {
	return New(context.Background(), log.New(io.Discard, "", 0))
}

// Jitter is a uniformly random [1ms, 60s] sleep before every iteration (spec
// §4.3), so a freshly scheduled task cannot be relied on to have run within
// any short window. These tests only assert the behaviors that hold
// regardless of where in that sleep a task currently sits: cancellation is
// prompt, and a cancelled task never executes its body.

func TestCloseInterruptsPendingJitterSleep(t *testing.T) {
	s := newTestScheduler()

	var calls int32
	s.Schedule(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, time.Hour)

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Close did not return promptly; cancellation should interrupt the jitter sleep")
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "task body must not run before its jitter sleep elapses")
}

func TestHandleCancelStopsBeforeFirstRun(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	var calls int32
	handle := s.Schedule(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, time.Hour)

	handle.Cancel()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestScheduleReturnsIndependentHandles(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	handleA := s.Schedule(func(context.Context) error { return nil }, time.Hour)
	handleB := s.Schedule(func(context.Context) error { return nil }, time.Hour)

	handleA.Cancel()
	handleA.Cancel() // cancelling twice must not panic or block
	handleB.Cancel()
}

func TestSleepCtxReturnsFalseWhenContextAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, sleepCtx(ctx, time.Hour))
	assert.False(t, sleepCtx(ctx, 0))
}

func TestSleepCtxReturnsTrueAfterShortDuration(t *testing.T) {
	assert.True(t, sleepCtx(context.Background(), time.Millisecond))
	assert.True(t, sleepCtx(context.Background(), 0))
}
