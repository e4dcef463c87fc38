package catalog

import (
	"sync"
	"time"

	"github.com/donaldgifford/storefront/internal/clock"
)

// DefaultDebounce is the quiet period before a search draft is committed.
const DefaultDebounce = 500 * time.Millisecond

// ScheduleDebounced runs fn after delay unless the returned cancel is called
// first.
func ScheduleDebounced(s clock.Scheduler, fn func(), delay time.Duration) (cancel func()) {
	stop := s.AfterFunc(delay, fn)
	return func() { stop() }
}

// Debouncer collapses bursts of triggers into one call of the most recent
// function, delay after the last trigger.
type Debouncer struct {
	sched clock.Scheduler
	delay time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel func()
}

// NewDebouncer creates a Debouncer. A nil scheduler uses the real clock.
func NewDebouncer(s clock.Scheduler, delay time.Duration) *Debouncer {
	if s == nil {
		s = clock.Real()
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{sched: s, delay: delay}
}

// Trigger restarts the quiet window; fn runs when it elapses.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}
	d.gen++
	gen := d.gen
	d.cancel = ScheduleDebounced(d.sched, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.cancel = nil
		d.mu.Unlock()
		fn()
	}, d.delay)
}

// Cancel drops the pending call, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.cancel == nil {
		return false
	}
	d.cancel()
	d.cancel = nil
	return true
}

// Pending reports whether a call is waiting for its window to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}
