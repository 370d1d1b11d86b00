package particles

import "time"

// Clock is a monotonic time source. Durations are measured from an
// arbitrary fixed origin.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct {
	origin time.Time
}

// NewSystemClock returns a clock whose origin is the moment of the call.
func NewSystemClock() *SystemClock {
	return &SystemClock{origin: time.Now()}
}

func (c *SystemClock) Now() time.Duration { return time.Since(c.origin) }

// ManualClock is a virtual clock that only moves when advanced.
// The zero value is ready to use and reads zero.
type ManualClock struct {
	now time.Duration
}

func (c *ManualClock) Now() time.Duration { return c.now }

// Advance moves the clock forward by d. Advance panics if d is negative.
func (c *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		panic("particles: negative clock advance")
	}
	c.now += d
}
