// If you are AI: This file defines the cancellable handles of the event loop.
// Task is a deferred unit of work with continuations; Token is a cooperative cancel flag.

package sched

type taskState uint8

const (
	taskPending taskState = iota
	taskDone
	taskCancelled
)

// Task is a deferred zero-delay unit of work queued on a Loop.
// Continuations registered with Then run on the loop right after the task completes.
type Task struct {
	fn      func()
	state   taskState
	waiters []func()
}

// Done reports whether the task has run to completion.
func (t *Task) Done() bool {
	return t != nil && t.state == taskDone
}

// Cancelled reports whether the task was cancelled before running.
func (t *Task) Cancelled() bool {
	return t != nil && t.state == taskCancelled
}

// Then registers fn to run once the task completes.
// fn runs immediately if the task is already done and never if it was cancelled.
func (t *Task) Then(fn func()) {
	switch t.state {
	case taskDone:
		fn()
	case taskPending:
		t.waiters = append(t.waiters, fn)
	}
}

// run executes the task and its continuations.
func (t *Task) run() {
	if t.state != taskPending {
		return
	}
	t.fn()
	t.state = taskDone
	waiters := t.waiters
	t.waiters = nil
	for _, w := range waiters {
		w()
	}
}

// cancel marks the task cancelled and drops continuations.
func (t *Task) cancel() {
	if t.state != taskPending {
		return
	}
	t.state = taskCancelled
	t.waiters = nil
}

// FrameRequest is a pending refresh-signal callback.
type FrameRequest struct {
	fn        func(ts float64)
	cancelled bool
}

// Token is a cooperative cancellation flag captured by callbacks.
// A nil Token is never live.
type Token struct {
	cancelled bool
}

// NewToken returns a live token.
func NewToken() *Token {
	return &Token{}
}

// Cancel marks the token dead. Safe on nil.
func (t *Token) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

// Live reports whether callbacks holding this token may still act.
func (t *Token) Live() bool {
	return t != nil && !t.cancelled
}
