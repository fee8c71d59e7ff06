package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/profilehub/internal/scheduler"
)

type countingSaver struct {
	calls atomic.Int32
	fail  atomic.Bool
	block chan struct{}
}

func (s *countingSaver) Save(ctx context.Context) error {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.fail.Load() {
		return errors.New("store unavailable")
	}
	return nil
}

func runAsync(ctx context.Context, a *scheduler.AutoSaver) <-chan error {
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	return done
}

func TestAutoSaver_FlushesPeriodically(t *testing.T) {
	saver := &countingSaver{}
	a := scheduler.NewAutoSaver(saver, 10*time.Millisecond, time.Second)
	assert.Equal(t, scheduler.StateIdle, a.State())

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, a)

	assert.Eventually(t, func() bool { return saver.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, scheduler.StateIdle, a.State())
}

func TestAutoSaver_ContinuesAfterFailure(t *testing.T) {
	saver := &countingSaver{}
	saver.fail.Store(true)
	a := scheduler.NewAutoSaver(saver, 10*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, a)

	assert.Eventually(t, func() bool { return saver.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestAutoSaver_NoFlushAfterCancel(t *testing.T) {
	saver := &countingSaver{}
	a := scheduler.NewAutoSaver(saver, 10*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, a)
	assert.Eventually(t, func() bool { return saver.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	after := saver.calls.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, after, saver.calls.Load())
}

func TestAutoSaver_FlushIsBoundedByTimeout(t *testing.T) {
	saver := &countingSaver{block: make(chan struct{})}
	a := scheduler.NewAutoSaver(saver, 10*time.Millisecond, 15*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, a)

	assert.Eventually(t, func() bool { return a.State() == scheduler.StateFlushing }, time.Second, time.Millisecond)
	// The blocked flush times out and the next tick starts another.
	assert.Eventually(t, func() bool { return saver.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", scheduler.StateIdle.String())
	assert.Equal(t, "waiting", scheduler.StateWaiting.String())
	assert.Equal(t, "flushing", scheduler.StateFlushing.String())
}
