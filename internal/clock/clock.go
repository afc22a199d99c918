// Package clock provides the time source used for validation and rate limiting.
package clock

import (
	"sync"
	"time"
)

// Clock provides time to the application.
// Tests swap in a Manual clock so date rules and rate windows are deterministic.
type Clock interface {
	Now() time.Time
}

// System returns the current wall-clock time.
type System struct{}

func NewSystem() System { return System{} }

func (System) Now() time.Time { return time.Now() }

// Manual is a Clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(now time.Time) *Manual { return &Manual{now: now} }

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
