package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flag struct{ dirty bool }

func (f *flag) Dirty() bool { return f.dirty }
func (f *flag) ClearDirty() { f.dirty = false }

func counter(n *int) func() (int, error) {
	return func() (int, error) {
		*n++
		return *n, nil
	}
}

func TestCacheBuildsWhenAbsent(t *testing.T) {
	c := NewCache[int]()
	inv := &flag{}
	builds := 0

	v, err := c.Ensure(inv, counter(&builds))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.True(t, c.Present())

	v, err = c.Ensure(inv, counter(&builds))
	require.NoError(t, err)
	assert.Equal(t, 1, v, "clean and present means no rebuild")
	assert.Equal(t, 1, c.Rebuilds())
}

func TestCacheRebuildsOnceAfterDirty(t *testing.T) {
	var released []int
	c := NewCache(WithRelease(func(v int) { released = append(released, v) }))
	inv := &flag{dirty: true}
	builds := 0

	_, err := c.Ensure(inv, counter(&builds))
	require.NoError(t, err)
	assert.False(t, inv.dirty)

	inv.dirty = true
	inv.dirty = true
	v, err := c.Ensure(inv, counter(&builds))
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.False(t, inv.dirty)

	_, err = c.Ensure(inv, counter(&builds))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Rebuilds())
	assert.Equal(t, []int{1}, released)
}

func TestCacheBuildFailureKeepsPreviousAndDirty(t *testing.T) {
	c := NewCache[int]()
	inv := &flag{dirty: true}
	builds := 0
	_, err := c.Ensure(inv, counter(&builds))
	require.NoError(t, err)

	boom := errors.New("pipeline rejected")
	inv.dirty = true
	_, err = c.Ensure(inv, func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.True(t, inv.dirty)

	v, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestCacheReset(t *testing.T) {
	var released []int
	c := NewCache(WithRelease(func(v int) { released = append(released, v) }))
	inv := &flag{}
	builds := 0
	_, err := c.Ensure(inv, counter(&builds))
	require.NoError(t, err)

	c.Reset()
	assert.False(t, c.Present())
	assert.Equal(t, []int{1}, released)

	v, err := c.Ensure(inv, counter(&builds))
	require.NoError(t, err)
	assert.Equal(t, 2, v, "absent forces a rebuild even when clean")
}
