// Package clock supplies the current time so that day arithmetic can be
// driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock, in UTC.
type System struct{}

// Now returns time.Now in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fake is a settable clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a Fake frozen at t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now returns the frozen time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set freezes the clock at t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Days is a whole number of 24-hour days.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// FloorDays returns the number of whole 24-hour days in d, rounding toward
// negative infinity: 23h is 0 days, -1h is -1 day.
func FloorDays(d time.Duration) int {
	day := 24 * time.Hour
	n := d / day
	if d%day < 0 {
		n--
	}
	return int(n)
}
