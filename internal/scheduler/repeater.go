package scheduler

import (
	"context"
	"sync"
	"time"
)

// Repeater runs a task immediately and then on every tick until stopped.
type Repeater struct {
	Interval time.Duration
	Clock    Clock
	Task     func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRepeater(interval time.Duration, clock Clock, task func(ctx context.Context)) *Repeater {
	if clock == nil {
		clock = RealClock{}
	}
	return &Repeater{Interval: interval, Clock: clock, Task: task}
}

// Start launches the loop. Calling Start on a running repeater is a no-op
// and returns false.
func (r *Repeater) Start(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return false
	}
	if r.Interval <= 0 {
		return false
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(loopCtx, r.done)
	return true
}

// Stop cancels the loop and waits for an in-flight task to return.
func (r *Repeater) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Repeater) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Repeater) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	// A canceled parent ends the loop without Stop; forget it so Start works again.
	defer func() {
		r.mu.Lock()
		if r.done == done {
			r.cancel()
			r.cancel, r.done = nil, nil
		}
		r.mu.Unlock()
	}()
	t := r.Clock.NewTicker(r.Interval)
	defer t.Stop()

	// immediate pass
	r.Task(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			r.Task(ctx)
		}
	}
}
