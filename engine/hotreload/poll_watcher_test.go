package hotreload

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect polls w until cond holds for the records gathered so far.
func collect(t *testing.T, w Watcher, cond func([]Event) bool) []Event {
	t.Helper()
	var got []Event
	require.Eventually(t, func() bool {
		w.Poll()
		for {
			ev, ok := w.TryRecv()
			if !ok {
				break
			}
			got = append(got, ev)
		}
		return cond(got)
	}, 5*time.Second, 10*time.Millisecond)
	return got
}

func hasEvent(events []Event, path string, kind Kind) bool {
	for _, ev := range events {
		if ev.Path == path && ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestPollWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "ex01.wgsl")
	require.NoError(t, os.WriteFile(existing, []byte("fn a() {}"), 0o644))

	w, err := NewPollWatcher(dir, WithPollInterval(0))
	require.NoError(t, err)
	defer w.Close()

	// The initial snapshot already contains ex01.wgsl.
	w.Poll()
	time.Sleep(50 * time.Millisecond)
	for {
		ev, ok := w.TryRecv()
		if !ok {
			break
		}
		assert.NotEqual(t, KindCreate, ev.Kind, "existing file reported as created")
	}

	require.NoError(t, os.WriteFile(existing, []byte("fn a() { let x = 1; }"), 0o644))
	added := filepath.Join(dir, "ex02.wgsl")
	require.NoError(t, os.WriteFile(added, []byte("fn b() {}"), 0o644))

	events := collect(t, w, func(evs []Event) bool {
		return hasEvent(evs, existing, KindModify) && hasEvent(evs, added, KindCreate)
	})
	assert.True(t, hasEvent(events, existing, KindModify))

	require.NoError(t, os.Remove(added))
	collect(t, w, func(evs []Event) bool {
		return hasEvent(evs, added, KindRemove)
	})
}

func TestPollWatcherRateLimited(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	now := time.Unix(1000, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	w, err := NewPollWatcher(dir, WithPollInterval(time.Second), WithClock(clock))
	require.NoError(t, err)
	defer w.Close()
	pw := w.(*pollWatcher)

	pw.Poll()
	pw.Poll()
	assert.Equal(t, int64(0), pw.scans.Load())

	mu.Lock()
	now = now.Add(time.Second)
	mu.Unlock()

	pw.Poll()
	assert.Equal(t, int64(1), pw.scans.Load())
	pw.Poll()
	assert.Equal(t, int64(1), pw.scans.Load())
}

func TestPollWatcherMissingRoot(t *testing.T) {
	_, err := NewPollWatcher(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
