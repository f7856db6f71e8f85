package testfixtures

import (
	"sync"
	"time"

	"github.com/example/clinic-scheduler/internal/scheduler"
)

// Clock is a controllable time source for tests.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start, or to ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// NewClockAt returns a clock reading the given clinic wall clock in loc.
func NewClockAt(at scheduler.WallClock, loc *time.Location) *Clock {
	return &Clock{current: at.In(loc)}
}

// Now returns the current instant tracked by the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now as a function suitable for dependency injection.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}

// Current is Now without the suggestion that time moves.
func (c *Clock) Current() time.Time {
	return c.Now()
}

// WallClock reads the clock as a clinic wall clock in its own location.
func (c *Clock) WallClock() scheduler.WallClock {
	return scheduler.WallClockOf(c.Now())
}

// Today returns the current calendar day.
func (c *Clock) Today() scheduler.Date {
	return c.WallClock().Date
}

// Tomorrow returns the day after Today, the earliest day every slot of which is
// still bookable.
func (c *Clock) Tomorrow() scheduler.Date {
	return c.Today().AddDays(1)
}
