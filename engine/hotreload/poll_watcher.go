package hotreload

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// fileStamp is the part of a file's metadata the poll backend compares between scans.
type fileStamp struct {
	modTime time.Time
	size    int64
}

// pollWatcher detects changes by diffing directory snapshots. Scans run on a worker pool with at
// most one scan outstanding and at most one scan started per poll interval.
type pollWatcher struct {
	root     string
	interval time.Duration
	now      func() time.Time
	queue    *queue

	pool     worker.DynamicWorkerPool
	ownsPool bool

	scanning atomic.Bool
	lastScan time.Time
	scans    atomic.Int64

	// snapshot is only touched by the single outstanding scan task.
	snapshot map[string]fileStamp

	closeOnce sync.Once
}

var _ Watcher = &pollWatcher{}

// NewPollWatcher watches root by periodically scanning it. The initial snapshot is taken
// synchronously so files that already exist are not reported as created.
//
// Parameters:
//   - root: the directory to watch
//   - options: functional options (queue size, poll interval, worker pool, clock)
//
// Returns:
//   - Watcher: the watcher
//   - error: error if the initial scan fails
func NewPollWatcher(root string, options ...WatcherBuilderOption) (Watcher, error) {
	o := defaultWatcherOptions()
	for _, opt := range options {
		opt(o)
	}

	snapshot, err := scanTree(root)
	if err != nil {
		return nil, err
	}

	w := &pollWatcher{
		root:     root,
		interval: o.pollInterval,
		now:      o.now,
		queue:    newQueue(o.queueSize),
		pool:     o.pool,
		snapshot: snapshot,
		lastScan: o.now(),
	}
	if w.pool == nil {
		w.pool = worker.NewDynamicWorkerPool(1, 1, time.Second)
		w.ownsPool = true
	}
	return w, nil
}

// Poll submits a scan if none is outstanding and the poll interval has elapsed since the last one started.
func (w *pollWatcher) Poll() {
	w.queue.flushOverflow()

	now := w.now()
	if now.Sub(w.lastScan) < w.interval {
		return
	}
	if !w.scanning.CompareAndSwap(false, true) {
		return
	}
	w.lastScan = now

	id := int(w.scans.Add(1))
	w.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: w.root,
		Do: func() (any, error) {
			defer w.scanning.Store(false)
			return nil, w.scan()
		},
	})
}

// scan diffs the tree against the previous snapshot and queues one record per change.
func (w *pollWatcher) scan() error {
	current, err := scanTree(w.root)
	if err != nil {
		w.queue.push(Event{Path: w.root, Kind: KindError, Err: err})
		return err
	}

	for path, stamp := range current {
		prev, ok := w.snapshot[path]
		switch {
		case !ok:
			w.queue.push(Event{Path: path, Kind: KindCreate})
		case !prev.modTime.Equal(stamp.modTime) || prev.size != stamp.size:
			w.queue.push(Event{Path: path, Kind: KindModify})
		}
	}
	for path := range w.snapshot {
		if _, ok := current[path]; !ok {
			w.queue.push(Event{Path: path, Kind: KindRemove})
		}
	}

	w.snapshot = current
	return nil
}

func (w *pollWatcher) TryRecv() (Event, bool) {
	return w.queue.tryRecv()
}

func (w *pollWatcher) Close() error {
	w.closeOnce.Do(func() {
		if w.ownsPool {
			w.pool.Stop()
		}
	})
	return nil
}

// scanTree records the modification time and size of every regular file below root.
func scanTree(root string) (map[string]fileStamp, error) {
	out := make(map[string]fileStamp)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out[path] = fileStamp{modTime: info.ModTime(), size: info.Size()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return out, nil
}
