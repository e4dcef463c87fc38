// Package clock abstracts delayed callbacks so debounce windows and
// transient UI indicators can be driven by a manual clock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs fn once after d. The returned cancel func reports whether
// the call was stopped before it fired.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func() bool)
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// Real returns a Scheduler backed by time.AfterFunc.
func Real() Scheduler {
	return realScheduler{}
}

// Manual is a Scheduler whose time only moves when Advance is called.
// Callbacks run synchronously on the goroutine calling Advance.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers map[int]*manualTimer
}

type manualTimer struct {
	id int
	at time.Duration
	fn func()
}

// NewManual creates a Manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{timers: make(map[int]*manualTimer)}
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.timers[id] = &manualTimer{id: id, at: m.now + d, fn: fn}

	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.timers[id]; !ok {
			return false
		}
		delete(m.timers, id)
		return true
	}
}

// Advance moves time forward by d and fires every timer that became due,
// in deadline order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTimer
	for id, t := range m.timers {
		if t.at <= m.now {
			due = append(due, t)
			delete(m.timers, id)
		}
	}
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].id < due[j].id
		}
		return due[i].at < due[j].at
	})
	for _, t := range due {
		t.fn()
	}
}

// Pending returns the number of timers that have not fired or been cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
