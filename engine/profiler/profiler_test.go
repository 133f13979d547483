package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTick_ReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := NewProfiler(WithClock(clock.now), WithMemoryStats(false))

	for range 59 {
		clock.advance(16 * time.Millisecond)
		_, reported := p.Tick("triangle")
		require.False(t, reported)
	}

	clock.advance(time.Second - 59*16*time.Millisecond)
	stats, reported := p.Tick("triangle")
	require.True(t, reported)
	assert.Equal(t, "triangle", stats.Demo)
	assert.Equal(t, 60, stats.Frames)
	assert.InDelta(t, 60.0, stats.FPS, 1e-9)
}

func TestTick_ResetsWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(500*time.Millisecond), WithMemoryStats(false))

	clock.advance(500 * time.Millisecond)
	_, reported := p.Tick("quad")
	require.True(t, reported)

	clock.advance(250 * time.Millisecond)
	_, reported = p.Tick("quad")
	assert.False(t, reported)

	clock.advance(250 * time.Millisecond)
	stats, reported := p.Tick("grid")
	require.True(t, reported)
	assert.Equal(t, 2, stats.Frames)
	assert.Equal(t, "grid", stats.Demo)
	assert.InDelta(t, 4.0, stats.FPS, 1e-9)
}

func TestTick_SamplesMemory(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now))

	clock.advance(time.Second)
	stats, reported := p.Tick("msaa")
	require.True(t, reported)
	assert.Greater(t, stats.HeapMB, 0.0)
}

func TestWithInterval_IgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
