package gate

import (
	"sync"
	"time"
)

// ReleaseGate enforces a minimum time spacing between dispatch attempts.
// now is always injected by the caller rather than read from the system
// clock, so the scheduler stays testable without sleeping.
//
// The clock is process-local and not persisted: after a restart the first
// CanRelease call is always allowed, even if less than interval has elapsed
// since the true last publish. Accepted startup behavior.
type ReleaseGate struct {
	mu            sync.Mutex
	interval      time.Duration
	lastReleaseAt time.Time
}

func New(interval time.Duration) *ReleaseGate {
	return &ReleaseGate{interval: interval}
}

// CanRelease reports whether at least interval has elapsed since the last
// recorded release. Always true before the first RecordRelease.
func (g *ReleaseGate) CanRelease(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastReleaseAt.IsZero() {
		return true
	}
	return now.Sub(g.lastReleaseAt) >= g.interval
}

// RecordRelease marks a concluded dispatch attempt. Called on success and
// on failure alike: a failed dispatch still consumes the release slot so a
// broken backend is not hammered at tick frequency.
func (g *ReleaseGate) RecordRelease(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastReleaseAt = now
}

// LastRelease returns the time of the last recorded release, zero if none.
func (g *ReleaseGate) LastRelease() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastReleaseAt
}

// Interval returns the configured minimum spacing.
func (g *ReleaseGate) Interval() time.Duration {
	return g.interval
}
