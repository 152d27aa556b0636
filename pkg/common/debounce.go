package common

import (
	"sync"
	"time"
)

// Debouncer runs the last scheduled function once no new call has arrived
// for the configured duration.
type Debouncer struct {
	mu       sync.Mutex
	clock    Clock
	timer    Timer
	duration time.Duration
	gen      uint64
}

func NewDebouncer(duration time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock
	}
	return &Debouncer{
		clock:    clock,
		duration: duration,
	}
}

// Debounce (re)starts the timer for fn. It reports whether a pending call
// was superseded.
func (d *Debouncer) Debounce(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	superseded := d.stopLocked()
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.duration, func() {
		d.mu.Lock()
		// a timer that fired while being replaced or cancelled
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
	return superseded
}

func (d *Debouncer) stopLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.stopLocked()
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
