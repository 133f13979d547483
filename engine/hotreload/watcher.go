// Package hotreload observes the shader directory out of band and hands change records to the
// frame loop through a bounded queue that is drained without blocking.
package hotreload

import "fmt"

// Watcher is a non-blocking source of filesystem change records.
//
// Producers run out of band (an fsnotify goroutine or a worker pool scan) and only ever
// communicate with the consumer through a bounded queue, so Poll and TryRecv never block.
type Watcher interface {
	// Poll performs or schedules a scan of the watched tree if the backend needs one.
	// Push-based backends treat it as a no-op. It never blocks on I/O.
	Poll()

	// TryRecv dequeues the next record if one is available.
	//
	// Returns:
	//   - Event: the dequeued record, zero if none was available
	//   - bool: true if a record was dequeued
	TryRecv() (Event, bool)

	// Close stops the backend and releases its resources.
	//
	// Returns:
	//   - error: error if the backend fails to shut down cleanly
	Close() error
}

// Drain polls w once and then empties its queue. Actionable paths are returned in first-seen
// order with duplicates removed, so several modifications of one file within a single drain
// coalesce into one rebuild. Error records are returned separately; everything else is dropped.
//
// Parameters:
//   - w: the watcher to drain
//   - ext: the extension of actionable files, e.g. ".wgsl"
//
// Returns:
//   - []string: distinct actionable paths in the order they were first seen
//   - []error: the errors carried by KindError records
func Drain(w Watcher, ext string) ([]string, []error) {
	w.Poll()

	var paths []string
	var errs []error
	seen := make(map[string]struct{})
	for {
		ev, ok := w.TryRecv()
		if !ok {
			return paths, errs
		}
		switch {
		case ev.Kind == KindError:
			errs = append(errs, ev.Err)
		case ev.Actionable(ext):
			if _, dup := seen[ev.Path]; dup {
				continue
			}
			seen[ev.Path] = struct{}{}
			paths = append(paths, ev.Path)
		}
	}
}

// queue is the bounded, multi-producer single-consumer channel shared by the backends.
// Records that do not fit are counted and reported later as one ErrOverflow record.
type queue struct {
	events  chan Event
	dropped chan int
}

func newQueue(size int) *queue {
	if size <= 0 {
		size = 1
	}
	q := &queue{
		events:  make(chan Event, size),
		dropped: make(chan int, 1),
	}
	q.dropped <- 0
	return q
}

// push enqueues ev without blocking. A full queue drops the record and bumps the overflow count.
func (q *queue) push(ev Event) {
	select {
	case q.events <- ev:
	default:
		n := <-q.dropped
		q.dropped <- n + 1
	}
}

// flushOverflow queues a single ErrOverflow record if records were dropped and there is room for it.
func (q *queue) flushOverflow() {
	n := <-q.dropped
	if n == 0 {
		q.dropped <- 0
		return
	}
	select {
	case q.events <- Event{Kind: KindError, Err: fmt.Errorf("%w: %d records dropped", ErrOverflow, n)}:
		q.dropped <- 0
	default:
		q.dropped <- n
	}
}

func (q *queue) tryRecv() (Event, bool) {
	select {
	case ev := <-q.events:
		return ev, true
	default:
		return Event{}, false
	}
}
