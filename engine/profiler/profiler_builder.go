package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler)

// WithInterval sets how often stats are logged.
//
// Parameters:
//   - interval: the reporting window; non-positive values are ignored
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithMemoryStats toggles the runtime.ReadMemStats sample taken at each report, which
// briefly stops the world.
func WithMemoryStats(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.readMem = enabled
	}
}
