// Package task provides cancellable background work. A Task owns one
// context; everything started for it (timers, tickers, polls) stops when
// that context is cancelled.
package task

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type Task struct {
	cancel    context.CancelFunc
	done      chan struct{}
	cancelled atomic.Bool
	once      sync.Once
}

// Go runs fn in its own goroutine with a context derived from parent.
func Go(parent context.Context, fn func(ctx context.Context)) *Task {
	return start(parent, func(ctx context.Context, _ *Task) {
		fn(ctx)
	})
}

// After runs fn once d has elapsed unless the task is cancelled first.
func After(parent context.Context, d time.Duration, fn func(ctx context.Context)) *Task {
	return start(parent, func(ctx context.Context, t *Task) {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			t.cancelled.Store(true)
			return
		case <-timer.C:
		}

		fn(ctx)
	})
}

func start(parent context.Context, fn func(ctx context.Context, t *Task)) *Task {
	ctx, cancel := context.WithCancel(parent)

	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()

		fn(ctx, t)

		if parent.Err() != nil {
			t.cancelled.Store(true)
		}
	}()

	return t
}

// Cancel stops the task. It is safe to call more than once and after the
// task finished.
func (t *Task) Cancel() {
	t.once.Do(func() {
		select {
		case <-t.done:
		default:
			t.cancelled.Store(true)
		}
		t.cancel()
	})
}

func (t *Task) Cancelled() bool {
	return t.cancelled.Load()
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task returns or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
