// Package ticker provides frame scheduling primitives for the zoomer: a
// wall-clock timer, a queue pumped by an external loop and a manual stepper
// with a virtual clock.
package ticker

import (
	"sort"
	"sync"
	"time"
)

// FrameInterval is the cadence the timer targets (~60 steps per second).
const FrameInterval = 16 * time.Millisecond

// Timer schedules callbacks on the wall clock, spacing consecutive frames at
// least FrameInterval apart.
type Timer struct {
	mu     sync.Mutex
	nextID int
	last   time.Time
	timers map[int]*time.Timer
}

func NewTimer() *Timer {
	return &Timer{timers: make(map[int]*time.Timer)}
}

func (t *Timer) Now() time.Time {
	return time.Now()
}

func (t *Timer) Schedule(fn func(time.Time)) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	wait := FrameInterval - now.Sub(t.last)
	if wait < 0 {
		wait = 0
	}
	t.last = now.Add(wait)

	t.nextID++
	id := t.nextID
	t.timers[id] = time.AfterFunc(wait, func() {
		t.mu.Lock()
		_, ok := t.timers[id]
		delete(t.timers, id)
		t.mu.Unlock()
		if ok {
			fn(time.Now())
		}
	})
	return id
}

func (t *Timer) Cancel(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tm, ok := t.timers[id]; ok {
		tm.Stop()
		delete(t.timers, id)
	}
}

// Queue holds callbacks until the owner pumps them, typically once per
// display refresh.
type Queue struct {
	mu      sync.Mutex
	nextID  int
	pending map[int]func(time.Time)
	clock   func() time.Time
}

func NewQueue() *Queue {
	return &Queue{pending: make(map[int]func(time.Time)), clock: time.Now}
}

func (q *Queue) Now() time.Time {
	return q.clock()
}

func (q *Queue) Schedule(fn func(time.Time)) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.pending[q.nextID] = fn
	return q.nextID
}

func (q *Queue) Cancel(id int) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

// Len reports the number of callbacks waiting for the next pump.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pump runs the callbacks queued before the call, in scheduling order.
// Callbacks scheduled while pumping wait for the next pump.
func (q *Queue) Pump(now time.Time) int {
	q.mu.Lock()
	ids := make([]int, 0, len(q.pending))
	for id := range q.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	batch := make([]func(time.Time), 0, len(ids))
	for _, id := range ids {
		batch = append(batch, q.pending[id])
		delete(q.pending, id)
	}
	q.mu.Unlock()

	for _, fn := range batch {
		fn(now)
	}
	return len(batch)
}

// Manual is a Queue driven by a virtual clock. Every Step advances the clock
// by Interval and pumps the queue, which makes frame timing reproducible.
type Manual struct {
	*Queue
	Interval time.Duration

	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time, interval time.Duration) *Manual {
	m := &Manual{Queue: NewQueue(), Interval: interval, now: start}
	m.Queue.clock = m.Now
	return m
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the virtual clock without running callbacks.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Step advances the clock by Interval and runs the pending callbacks.
func (m *Manual) Step() int {
	m.Advance(m.Interval)
	return m.Pump(m.Now())
}

// RunUntilIdle steps until nothing is scheduled or max steps have run, and
// returns the number of steps taken.
func (m *Manual) RunUntilIdle(max int) int {
	steps := 0
	for steps < max && m.Len() > 0 {
		m.Step()
		steps++
	}
	return steps
}
