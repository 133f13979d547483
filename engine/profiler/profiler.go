// Package profiler reports the frame rate and memory use of the running demo.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one reporting window of the profiler.
type Stats struct {
	// Demo is the name of the demo that rendered the most recent frame.
	Demo string

	// Frames is the number of frames rendered during the window.
	Frames int

	// FPS is Frames divided by the window length.
	FPS float64

	// HeapMB is the live heap at the end of the window.
	HeapMB float64

	// AllocRateMB is heap allocation churn per second during the window.
	AllocRateMB float64

	// GCCount is the cumulative number of completed GC cycles.
	GCCount uint32

	// MaxPauseUs is the longest GC pause that completed during the window.
	MaxPauseUs uint64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval. Only frames that were actually
// submitted should be counted; skipped frames are not passed to Tick.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	now            func() time.Time
	readMem        bool
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		readMem:        true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per rendered frame. It logs a line when the update interval
// has elapsed.
//
// Parameters:
//   - demo: the name of the demo that rendered the frame
//
// Returns:
//   - Stats: the window that was just reported, zero if none
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(demo string) (Stats, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	stats := Stats{
		Demo:   demo,
		Frames: p.frameCount,
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
	}

	if p.readMem {
		p.sampleMemory(&stats, elapsed)
	}

	log.Printf("[Profiler] %s | FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max: %d µs)",
		stats.Demo, stats.FPS, stats.HeapMB, stats.AllocRateMB, stats.GCCount, stats.MaxPauseUs)

	p.frameCount = 0
	p.lastTime = currentTime
	return stats, true
}

func (p *Profiler) sampleMemory(stats *Stats, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	stats.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	stats.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	stats.GCCount = gcCount

	// PauseNs is a circular buffer of the last 256 GC pauses.
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		stats.MaxPauseUs = max(stats.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
