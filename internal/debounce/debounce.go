// Package debounce delays a callback until its input has stopped changing.
package debounce

import (
	"sync"
	"time"
)

// Debouncer calls fn with the most recent value passed to Trigger once no
// newer value has arrived for the configured delay.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
	running sync.WaitGroup
}

// New creates a Debouncer. A non-positive delay fires on the next timer tick.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger records v and restarts the delay, cancelling any pending call.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(seq, v)
	})
}

func (d *Debouncer[T]) fire(seq uint64, v T) {
	d.mu.Lock()
	// A timer that was stopped too late still runs; seq tells it apart.
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(v)
}

// Pending reports whether a call is scheduled but has not fired yet.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any pending call and waits for a running one to return.
// No call happens after Stop returns. Stop must not be called from fn.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.running.Wait()
}
