package suggest

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into a single deferred call.
//
// Restart is the one named operation: it cancels whatever was pending and
// schedules the new function, so "cancel previous, schedule next" never
// appears as inline timer bookkeeping at call sites.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Restart cancels any pending call and schedules fn to run after the delay.
// The function runs on the timer's goroutine.
func (d *Debouncer) Restart(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, fn)
}

// Cancel drops any pending call without firing it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels any pending call and refuses future restarts.
// Used on host teardown.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
