package nfc

import (
	"sync"
	"time"
)

// Clock provides an abstraction over time operations to enable testing
// without real time delays.
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// After returns a channel that will receive a value after the duration
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using actual time operations
type RealClock struct{}

// NewRealClock creates a new RealClock
func NewRealClock() Clock {
	return &RealClock{}
}

func (rc *RealClock) Now() time.Time {
	return time.Now()
}

func (rc *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// FakeClock implements Clock for testing. Every After call advances the
// clock by the requested duration and fires at once, so loops that pace
// themselves with After run without real delays. Requested durations are
// recorded for assertions.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewFakeClock creates a new FakeClock starting at the given time
func NewFakeClock(startTime time.Time) *FakeClock {
	return &FakeClock{now: startTime}
}

func (fc *FakeClock) Now() time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.now
}

func (fc *FakeClock) After(d time.Duration) <-chan time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.now = fc.now.Add(d)
	fc.sleeps = append(fc.sleeps, d)
	ch := make(chan time.Time, 1)
	ch <- fc.now
	return ch
}

// Sleeps returns the durations passed to After so far.
func (fc *FakeClock) Sleeps() []time.Duration {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	out := make([]time.Duration, len(fc.sleeps))
	copy(out, fc.sleeps)
	return out
}
