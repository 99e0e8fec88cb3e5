// If you are AI: This file contains unit tests for the event loop, tasks, and tokens.

package sched

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDeferRunsInOrder(t *testing.T) {
	l := New(&ManualClock{}, nil)

	var order []int
	l.Defer(func() { order = append(order, 1) })
	l.Defer(func() {
		order = append(order, 2)
		l.Defer(func() { order = append(order, 4) })
	})
	l.Defer(func() { order = append(order, 3) })

	if ran := l.Drain(); ran != 4 {
		t.Errorf("Expected 4 tasks to run, got %d", ran)
	}

	want := []int{1, 2, 3, 4}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, order)
			break
		}
	}
}

func TestTaskThen(t *testing.T) {
	l := New(&ManualClock{}, nil)

	task := l.Defer(func() {})
	var calls int
	task.Then(func() { calls++ })
	if calls != 0 {
		t.Error("Continuation should wait for task completion")
	}

	l.Drain()
	if !task.Done() {
		t.Error("Task should be done after drain")
	}
	if calls != 1 {
		t.Errorf("Expected 1 continuation call, got %d", calls)
	}

	// Already-done task runs continuation immediately
	task.Then(func() { calls++ })
	if calls != 2 {
		t.Errorf("Expected immediate continuation, got %d calls", calls)
	}
}

func TestCancelTask(t *testing.T) {
	l := New(&ManualClock{}, nil)

	var ran, continued bool
	task := l.Defer(func() { ran = true })
	task.Then(func() { continued = true })
	l.Cancel(task)
	l.Drain()

	if ran || continued {
		t.Error("Cancelled task and continuation must not run")
	}
	if !task.Cancelled() {
		t.Error("Task should report cancelled")
	}

	task.Then(func() { continued = true })
	if continued {
		t.Error("Then on cancelled task must not run")
	}

	l.Cancel(nil) // nil-safe
}

func TestFrameDelivery(t *testing.T) {
	l := New(&ManualClock{}, nil)

	var stamps []float64
	var again func(ts float64)
	again = func(ts float64) {
		stamps = append(stamps, ts)
		l.RequestFrame(again)
	}
	l.RequestFrame(again)

	if fired := l.Frame(16); fired != 1 {
		t.Errorf("Expected 1 callback, got %d", fired)
	}
	l.Frame(33)

	if len(stamps) != 2 || stamps[0] != 16 || stamps[1] != 33 {
		t.Errorf("Expected [16 33], got %v", stamps)
	}

	if _, frames := l.Pending(); frames != 1 {
		t.Errorf("Expected 1 pending frame request, got %d", frames)
	}
}

func TestCancelFrame(t *testing.T) {
	l := New(&ManualClock{}, nil)

	var fired bool
	r := l.RequestFrame(func(float64) { fired = true })
	l.CancelFrame(r)
	l.Frame(10)

	if fired {
		t.Error("Cancelled frame request must not fire")
	}
	if _, frames := l.Pending(); frames != 0 {
		t.Errorf("Expected no pending frames, got %d", frames)
	}
}

func TestFrameDrainsTasks(t *testing.T) {
	l := New(&ManualClock{}, nil)

	var ran bool
	l.RequestFrame(func(float64) {
		l.Defer(func() { ran = true })
	})
	l.Frame(1)

	if !ran {
		t.Error("Tasks deferred during a frame should run before Frame returns")
	}
}

func TestToken(t *testing.T) {
	tok := NewToken()
	if !tok.Live() {
		t.Error("New token should be live")
	}
	tok.Cancel()
	if tok.Live() {
		t.Error("Cancelled token should not be live")
	}

	var nilTok *Token
	if nilTok.Live() {
		t.Error("Nil token should not be live")
	}
	nilTok.Cancel()
}

func TestRunAndDo(t *testing.T) {
	l := New(NewSystemClock(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- l.Run(ctx, 5*time.Millisecond)
	}()

	framed := make(chan float64, 1)
	if err := l.Do(context.Background(), func() {
		l.RequestFrame(func(ts float64) { framed <- ts })
	}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	select {
	case <-framed:
	case <-time.After(2 * time.Second):
		t.Fatal("Refresh signal was not delivered")
	}

	var value int
	if err := l.Do(context.Background(), func() { value = 42 }); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected 42, got %d", value)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}

	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("Expected ErrLoopStopped after shutdown, got %v", err)
	}
}

func TestManualClock(t *testing.T) {
	c := &ManualClock{}
	c.Set(100)
	if got := c.Advance(50); got != 150 {
		t.Errorf("Expected 150, got %v", got)
	}
	if c.Now() != 150 {
		t.Errorf("Expected 150, got %v", c.Now())
	}
}
