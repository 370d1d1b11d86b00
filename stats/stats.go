// Package stats measures frame rate and frame durations.
package stats

import "time"

// Counter implements particles.FrameObserver. Frames per second are
// computed over consecutive windows of one second.
type Counter struct {
	// OnUpdate is called once per completed window.
	OnUpdate func(Sample)
	// Now defaults to time.Now.
	Now func() time.Time

	begin       time.Time
	windowStart time.Time
	frames      int
	windowMax   time.Duration
	last        Sample
}

// Sample is the result of a measurement window.
type Sample struct {
	FPS float64
	// Frame is the duration between BeginFrame and EndFrame of the last frame.
	Frame time.Duration
	// MaxFrame is the longest frame of the last completed window.
	MaxFrame time.Duration
}

const window = time.Second

func (c *Counter) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Counter) BeginFrame() {
	c.begin = c.now()
	if c.windowStart.IsZero() {
		c.windowStart = c.begin
	}
}

func (c *Counter) EndFrame() {
	end := c.now()
	frame := end.Sub(c.begin)
	c.frames++
	c.last.Frame = frame
	if frame > c.windowMax {
		c.windowMax = frame
	}
	elapsed := end.Sub(c.windowStart)
	if elapsed < window {
		return
	}
	c.last.FPS = float64(c.frames) / elapsed.Seconds()
	c.last.MaxFrame = c.windowMax
	if c.OnUpdate != nil {
		c.OnUpdate(c.last)
	}
	c.frames = 0
	c.windowMax = 0
	c.windowStart = end
}

// Last returns the latest sample. FPS is zero until the first window completes.
func (c *Counter) Last() Sample { return c.last }
