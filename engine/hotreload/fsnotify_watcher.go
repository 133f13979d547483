package hotreload

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fsnotifyWatcher pushes kernel notifications for the watched tree into the queue from a
// single goroutine. Poll has nothing to do because delivery is push-based.
type fsnotifyWatcher struct {
	root    string
	watcher *fsnotify.Watcher
	queue   *queue

	// seen holds every regular file path observed so far. Only the watch loop touches it
	// once the constructor returns.
	seen map[string]bool

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ Watcher = &fsnotifyWatcher{}

// NewFSNotifyWatcher watches root and every directory below it using fsnotify.
//
// Parameters:
//   - root: the directory to watch
//   - options: functional options (queue size)
//
// Returns:
//   - Watcher: the running watcher
//   - error: error if the notifier cannot be created or the tree cannot be registered
func NewFSNotifyWatcher(root string, options ...WatcherBuilderOption) (Watcher, error) {
	o := defaultWatcherOptions()
	for _, opt := range options {
		opt(o)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &fsnotifyWatcher{
		root:    root,
		watcher: fw,
		queue:   newQueue(o.queueSize),
		seen:    make(map[string]bool),
		done:    make(chan struct{}),
	}

	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.watchLoop()
	return w, nil
}

// addTree registers dir and all of its subdirectories with the notifier and records the
// regular files already inside it.
func (w *fsnotifyWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if !d.IsDir() {
			if d.Type().IsRegular() {
				w.seen[path] = true
			}
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// watchLoop forwards notifier events and errors into the queue until Close.
func (w *fsnotifyWatcher) watchLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.forward(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.queue.push(Event{Kind: KindError, Err: err})
		}
	}
}

// forward translates one notification into the queue.
//
// Editors that save by writing a temporary file and renaming it over the target produce a
// Create on the target and no Write. A Create on a path that has been seen before is
// therefore reported as a Modify. Paths stay in the seen set after Remove and Rename since
// those are the first half of such a save.
func (w *fsnotifyWatcher) forward(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		// New directories join the watched tree. A failure here is reported, not fatal.
		if isDir(event.Name) {
			w.queue.push(Event{Path: event.Name, Kind: KindCreate})
			if err := w.addTree(event.Name); err != nil {
				w.queue.push(Event{Path: event.Name, Kind: KindError, Err: err})
			}
			return
		}
		kind := KindCreate
		if w.seen[event.Name] {
			kind = KindModify
		}
		w.seen[event.Name] = true
		w.queue.push(Event{Path: event.Name, Kind: kind})
	case event.Has(fsnotify.Write):
		w.queue.push(Event{Path: event.Name, Kind: KindModify})
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.queue.push(Event{Path: event.Name, Kind: KindRemove})
	}
}

func (w *fsnotifyWatcher) Poll() {
	w.queue.flushOverflow()
}

func (w *fsnotifyWatcher) TryRecv() (Event, bool) {
	return w.queue.tryRecv()
}

func (w *fsnotifyWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
