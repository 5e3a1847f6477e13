// Package debounce collapses bursts of triggers into a single signal.
package debounce

import (
	"sync"
	"time"
)

// Debouncer signals on C once no Trigger call has happened for the delay.
// Every Trigger cancels the previously scheduled signal.
type Debouncer struct {
	delay   time.Duration
	fire    chan struct{}
	timer   *time.Timer
	pending bool
	stopped bool
	mu      sync.Mutex
}

// New creates a Debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay: delay,
		fire:  make(chan struct{}, 1),
	}
}

// Trigger schedules a signal after the delay, replacing any pending one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true

	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		// A newer Trigger replaced this timer.
		if d.stopped || d.timer != t {
			return
		}
		d.pending = false
		d.timer = nil

		select {
		case d.fire <- struct{}{}:
		default: // Already signaled, receiver hasn't drained yet
		}
	})
	d.timer = t
}

// C returns the channel that receives a value when the quiet period ends.
func (d *Debouncer) C() <-chan struct{} {
	return d.fire
}

// Pending reports whether a signal is scheduled but has not fired.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any pending signal. Later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
