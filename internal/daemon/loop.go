package daemon

import (
	"context"
	"errors"
)

// ErrStopped is returned when work is submitted to a loop that has exited.
var ErrStopped = errors.New("event loop stopped")

// Loop runs submitted functions one at a time on a single goroutine. All
// host access goes through it, so the session and dispatcher never see two
// callers at once.
type Loop struct {
	work chan func()
	done chan struct{}
}

// NewLoop creates a loop with a queue of the given size.
func NewLoop(queue int) *Loop {
	return &Loop{
		work: make(chan func(), queue),
		done: make(chan struct{}),
	}
}

// Run executes submitted work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.work:
			fn()
		}
	}
}

// Submit queues fn without waiting for it to run.
func (l *Loop) Submit(ctx context.Context, fn func()) error {
	select {
	case l.work <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Submit(ctx, func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// The loop may have run fn just before stopping.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
