package hotreload

import (
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// watcherOptions collects the configuration shared by both watcher backends.
type watcherOptions struct {
	queueSize    int
	pollInterval time.Duration
	pool         worker.DynamicWorkerPool
	now          func() time.Time
}

// WatcherBuilderOption is a functional option for configuring a Watcher.
// Use the With* functions to create options.
type WatcherBuilderOption func(o *watcherOptions)

func defaultWatcherOptions() *watcherOptions {
	return &watcherOptions{
		queueSize:    64,
		pollInterval: 250 * time.Millisecond,
		now:          time.Now,
	}
}

// WithQueueSize sets the capacity of the bounded record queue.
//
// Parameters:
//   - size: the maximum number of undrained records
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithQueueSize(size int) WatcherBuilderOption {
	return func(o *watcherOptions) {
		o.queueSize = size
	}
}

// WithPollInterval sets the minimum time between two scans of the poll backend.
// Ignored by the fsnotify backend.
//
// Parameters:
//   - interval: the minimum scan interval; 0 scans on every Poll
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithPollInterval(interval time.Duration) WatcherBuilderOption {
	return func(o *watcherOptions) {
		o.pollInterval = interval
	}
}

// WithPool runs poll scans on a caller-owned worker pool instead of a private one.
// The watcher does not stop a pool it did not create.
//
// Parameters:
//   - pool: the worker pool to submit scans to
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithPool(pool worker.DynamicWorkerPool) WatcherBuilderOption {
	return func(o *watcherOptions) {
		o.pool = pool
	}
}

// WithClock replaces the wall clock used to rate-limit poll scans.
//
// Parameters:
//   - now: the clock function
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithClock(now func() time.Time) WatcherBuilderOption {
	return func(o *watcherOptions) {
		o.now = now
	}
}
