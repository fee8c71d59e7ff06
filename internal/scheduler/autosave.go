// Package scheduler runs the periodic background save of the profile
// collection.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vytor/profilehub/internal/logger"
)

// State is the lifecycle position of an AutoSaver.
type State int32

const (
	StateIdle State = iota
	StateWaiting
	StateFlushing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateFlushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// Saver persists a full snapshot.
type Saver interface {
	Save(ctx context.Context) error
}

// AutoSaver flushes a Saver on a fixed period. Failures are logged and the
// next tick tries again.
type AutoSaver struct {
	saver    Saver
	interval time.Duration
	timeout  time.Duration
	state    atomic.Int32
	log      *logger.Logger
}

// NewAutoSaver creates an idle AutoSaver. Each flush is bounded by timeout;
// a non-positive timeout falls back to interval.
func NewAutoSaver(saver Saver, interval, timeout time.Duration) *AutoSaver {
	if timeout <= 0 {
		timeout = interval
	}
	return &AutoSaver{
		saver:    saver,
		interval: interval,
		timeout:  timeout,
		log:      logger.Default().WithPrefix("autosave"),
	}
}

// State reports the current lifecycle state.
func (a *AutoSaver) State() State {
	return State(a.state.Load())
}

// Run blocks until ctx is cancelled. No flush starts after cancellation.
func (a *AutoSaver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	defer a.state.Store(int32(StateIdle))

	a.log.Info("autosave started: interval=%v", a.interval)
	a.state.Store(int32(StateWaiting))

	for {
		select {
		case <-ctx.Done():
			a.log.Info("autosave stopped")
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			a.flush(ctx)
		}
	}
}

func (a *AutoSaver) flush(ctx context.Context) {
	a.state.Store(int32(StateFlushing))
	defer a.state.Store(int32(StateWaiting))

	start := time.Now()
	flushCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.saver.Save(logger.NewContext(flushCtx, a.log)); err != nil {
		a.log.WithError(err).Error("autosave failed after %v", time.Since(start))
		return
	}
	a.log.Debug("autosave completed in %v", time.Since(start))
}
