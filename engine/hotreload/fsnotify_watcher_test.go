package hotreload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSNotifyWatcherReportsModify(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	top := filepath.Join(dir, "ex07.wgsl")
	deep := filepath.Join(sub, "ex08.wgsl")
	require.NoError(t, os.WriteFile(top, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(deep, []byte("a"), 0o644))

	w, err := NewFSNotifyWatcher(dir, WithQueueSize(128))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(top, []byte("bb"), 0o644))
	require.NoError(t, os.WriteFile(deep, []byte("bb"), 0o644))

	var paths []string
	require.Eventually(t, func() bool {
		got, errs := Drain(w, ".wgsl")
		assert.Empty(t, errs)
		paths = append(paths, got...)
		return hasPath(paths, top) && hasPath(paths, deep)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestFSNotifyWatcherReportsReplaceByRenameAsModify(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "triangle.wgsl")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	w, err := NewFSNotifyWatcher(dir, WithQueueSize(128))
	require.NoError(t, err)
	defer w.Close()

	tmp := filepath.Join(dir, ".triangle.wgsl.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("bb"), 0o644))
	require.NoError(t, os.Rename(tmp, target))

	var paths []string
	require.Eventually(t, func() bool {
		got, errs := Drain(w, ".wgsl")
		assert.Empty(t, errs)
		paths = append(paths, got...)
		return hasPath(paths, target)
	}, 5*time.Second, 10*time.Millisecond)
	assert.NotContains(t, paths, tmp)
}

func TestFSNotifyWatcherNewFileIsCreate(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFSNotifyWatcher(dir, WithQueueSize(128))
	require.NoError(t, err)
	defer w.Close()

	fresh := filepath.Join(dir, "fresh.wgsl")
	require.NoError(t, os.WriteFile(fresh, []byte("a"), 0o644))

	var kinds []Kind
	require.Eventually(t, func() bool {
		for {
			ev, ok := w.TryRecv()
			if !ok {
				break
			}
			if ev.Path == fresh {
				kinds = append(kinds, ev.Kind)
			}
		}
		return len(kinds) > 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, KindCreate, kinds[0])
}

func TestFSNotifyWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewFSNotifyWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	_, ok := w.TryRecv()
	assert.False(t, ok)
}

func hasPath(paths []string, want string) bool {
	for _, p := range paths {
		if p == want {
			return true
		}
	}
	return false
}
