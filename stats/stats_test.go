package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestCounterFPS(t *testing.T) {
	clock := &fakeTime{t: time.Unix(1000, 0)}
	var samples []Sample
	c := Counter{Now: clock.now, OnUpdate: func(s Sample) { samples = append(samples, s) }}

	// 16ms frame period with 4ms of work per frame.
	for i := 0; i < 125; i++ {
		c.BeginFrame()
		clock.advance(4 * time.Millisecond)
		c.EndFrame()
		clock.advance(12 * time.Millisecond)
	}
	require.Len(t, samples, 1, "2 seconds of frames minus the partial window")
	// The window closes at the end of frame 64, 1012ms after it opened.
	assert.InDelta(t, 64/1.012, samples[0].FPS, 1e-9)
	assert.Equal(t, 4*time.Millisecond, samples[0].Frame)
	assert.Equal(t, 4*time.Millisecond, samples[0].MaxFrame)
	assert.Equal(t, samples[0], c.Last())
}

func TestCounterSlowFrame(t *testing.T) {
	clock := &fakeTime{t: time.Unix(0, 0)}
	c := Counter{Now: clock.now}
	assert.Zero(t, c.Last().FPS)
	for i := 0; i < 3; i++ {
		c.BeginFrame()
		clock.advance(time.Duration(i+1) * 200 * time.Millisecond)
		c.EndFrame()
	}
	// Window of 1.2s holding 3 frames.
	assert.InDelta(t, 2.5, c.Last().FPS, 1e-9)
	assert.Equal(t, 600*time.Millisecond, c.Last().Frame)
	assert.Equal(t, 600*time.Millisecond, c.Last().MaxFrame)

	for i := 0; i < 10; i++ {
		c.BeginFrame()
		clock.advance(10 * time.Millisecond)
		c.EndFrame()
		clock.advance(90 * time.Millisecond)
	}
	assert.Equal(t, 600*time.Millisecond, c.Last().MaxFrame, "window still open")
	c.BeginFrame()
	clock.advance(10 * time.Millisecond)
	c.EndFrame()
	assert.Equal(t, 10*time.Millisecond, c.Last().MaxFrame, "max resets every window")
	assert.InDelta(t, 11/1.01, c.Last().FPS, 1e-9)
}
