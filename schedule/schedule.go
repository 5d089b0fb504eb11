// Package schedule provides the timer abstraction the teaching engines use
// for their timed behaviour: highlight decay after a module is placed and the
// phase delays of the KNN autoplay walkthrough.
//
// Engines never sleep. They mutate their state for the current step and ask a
// Scheduler to call them back later. The presentation layer owns the
// Scheduler: a UI passes a Timer, tests and scripted demos pass a Manual
// clock and advance it explicitly.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a pending callback. Calling it after the callback ran, or more
// than once, is harmless.
type Cancel func()

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	After(d time.Duration, fn func()) Cancel
}

// Timer is a Scheduler backed by time.AfterFunc. Callbacks run on their own
// goroutine.
type Timer struct{}

// After implements Scheduler.
func (Timer) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

type task struct {
	at        time.Duration
	seq       uint64
	fn        func()
	cancelled bool
}

// Manual is a virtual clock. Callbacks only run inside Advance or RunAll, on
// the caller's goroutine, in due-time order (ties in scheduling order).
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*task
}

// NewManual returns a Manual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Cancel {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &task{at: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return func() {
		m.mu.Lock()
		t.cancelled = true
		m.mu.Unlock()
	}
}

// Now returns the virtual time elapsed since the clock was created.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of callbacks still waiting to run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every callback that becomes
// due, including callbacks scheduled by callbacks that ran during the same
// Advance. It returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	ran := 0
	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.fn()
		ran++
	}

	m.mu.Lock()
	if m.now < target {
		m.now = target
	}
	m.mu.Unlock()
	return ran
}

// RunAll keeps advancing to the next due callback until nothing is pending or
// limit callbacks ran. It returns the number of callbacks run.
func (m *Manual) RunAll(limit int) int {
	ran := 0
	for ran < limit {
		m.mu.Lock()
		next, ok := m.nextLocked()
		m.mu.Unlock()
		if !ok {
			break
		}
		t := m.popDue(next.at)
		if t == nil {
			break
		}
		t.fn()
		ran++
	}
	return ran
}

func (m *Manual) popDue(target time.Duration) *task {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, ok := m.nextLocked()
	if !ok || next.at > target {
		return nil
	}
	for i, t := range m.tasks {
		if t == next {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			break
		}
	}
	if next.at > m.now {
		m.now = next.at
	}
	return next
}

// nextLocked drops cancelled tasks and returns the earliest live one.
func (m *Manual) nextLocked() (*task, bool) {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live
	if len(live) == 0 {
		return nil, false
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at != m.tasks[j].at {
			return m.tasks[i].at < m.tasks[j].at
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})
	return m.tasks[0], true
}
