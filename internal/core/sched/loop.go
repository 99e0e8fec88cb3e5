// If you are AI: This file implements the single-threaded cooperative event loop.
// All playback state is mutated from the loop goroutine; other goroutines enter via Do.

package sched

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrLoopStopped is returned by Do when the loop is not running.
var ErrLoopStopped = errors.New("event loop stopped")

// DefaultInterval is the refresh cadence used when Run is given a non-positive interval.
const DefaultInterval = time.Second / 60

// Loop is a cooperative scheduler with two event sources: a FIFO of deferred tasks and a
// set of refresh-signal requests fired together on each refresh tick.
// Lock expectations: Defer, Cancel, RequestFrame, CancelFrame, Drain and Frame must only be
// called from the goroutine driving the loop (Run, or a test driving it directly).
// Do is the only method safe from other goroutines.
type Loop struct {
	clock  Clock
	logger *slog.Logger
	tasks  []*Task
	frames []*FrameRequest
	inbox  chan func()
	done   chan struct{}
}

// New creates a loop reading timestamps from clock.
func New(clock Clock, logger *slog.Logger) *Loop {
	if clock == nil {
		clock = NewSystemClock()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		clock:  clock,
		logger: logger.With("component", "loop"),
		inbox:  make(chan func()),
		done:   make(chan struct{}),
	}
}

// Now returns the loop clock in milliseconds.
func (l *Loop) Now() float64 {
	return l.clock.Now()
}

// Defer queues fn to run after the current event, like a zero-delay timer.
func (l *Loop) Defer(fn func()) *Task {
	t := &Task{fn: fn}
	l.tasks = append(l.tasks, t)
	return t
}

// Cancel prevents a pending task and its continuations from running. Safe on nil.
func (l *Loop) Cancel(t *Task) {
	if t != nil {
		t.cancel()
	}
}

// RequestFrame registers fn for the next refresh signal.
// Requests made while a refresh is being delivered wait for the following one.
func (l *Loop) RequestFrame(fn func(ts float64)) *FrameRequest {
	r := &FrameRequest{fn: fn}
	l.frames = append(l.frames, r)
	return r
}

// CancelFrame withdraws a refresh request. Safe on nil.
func (l *Loop) CancelFrame(r *FrameRequest) {
	if r != nil {
		r.cancelled = true
	}
}

// Drain runs queued tasks in FIFO order until none remain.
// Returns the number of tasks executed.
func (l *Loop) Drain() int {
	ran := 0
	for len(l.tasks) > 0 {
		t := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		if t.state != taskPending {
			continue
		}
		t.run()
		ran++
	}
	return ran
}

// Frame delivers a refresh signal with timestamp ts to every request registered so far,
// then drains the task queue. Returns the number of callbacks fired.
func (l *Loop) Frame(ts float64) int {
	pending := l.frames
	l.frames = nil

	fired := 0
	for _, r := range pending {
		if r.cancelled {
			continue
		}
		r.cancelled = true
		r.fn(ts)
		fired++
	}
	l.Drain()
	return fired
}

// Pending returns the number of queued tasks and live refresh requests.
func (l *Loop) Pending() (tasks, frames int) {
	for _, t := range l.tasks {
		if t.state == taskPending {
			tasks++
		}
	}
	for _, r := range l.frames {
		if !r.cancelled {
			frames++
		}
	}
	return tasks, frames
}

// Run drives the loop until ctx is cancelled, firing refresh signals every interval.
// Refresh ticks are skipped while no request is pending.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Debug("event loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopped")
			return ctx.Err()
		case fn := <-l.inbox:
			fn()
			l.Drain()
		case <-ticker.C:
			if _, frames := l.Pending(); frames > 0 {
				l.Frame(l.clock.Now())
			}
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to return.
// Must not be called from the loop goroutine itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.inbox <- wrapped:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// fn runs inline on the loop goroutine, so it may have finished before shutdown.
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}
