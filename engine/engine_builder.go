package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-lab/engine/demo"
	"github.com/Carmen-Shannon/oxy-lab/engine/hotreload"
	"github.com/Carmen-Shannon/oxy-lab/engine/profiler"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lab/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler supplies the profiler used when profiling is enabled.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.pacer.interval = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window whose message loop drives Run and whose callbacks feed input.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer every demo draws with.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithWatcher sets the shader directory watcher drained at the start of every tick.
//
// Parameters:
//   - w: the watcher
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWatcher(w hotreload.Watcher) EngineBuilderOption {
	return func(e *engine) {
		e.watcher = w
	}
}

// WithDemos sets the ordered demo list that P and N step through.
//
// Parameters:
//   - demos: the demos
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDemos(demos ...demo.Demo) EngineBuilderOption {
	return func(e *engine) {
		e.demos = demos
	}
}

// WithInitialDemo sets the index of the demo active at startup, clamped into range.
//
// Parameters:
//   - index: the demo index
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithInitialDemo(index int) EngineBuilderOption {
	return func(e *engine) {
		e.active = index
	}
}

// WithExtension sets the file extension of actionable watcher events.
func WithExtension(ext string) EngineBuilderOption {
	return func(e *engine) {
		e.extension = ext
	}
}

// WithClock replaces time.Now and time.Sleep in the tick pacer, for tests.
func WithClock(now func() time.Time, sleep func(time.Duration)) EngineBuilderOption {
	return func(e *engine) {
		e.pacer.now = now
		e.pacer.sleep = sleep
	}
}
