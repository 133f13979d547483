package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handle is a fake shader handle that records its release.
type handle struct {
	version  int
	released bool
}

func (h *handle) Release() { h.released = true }

type fakeLoader struct {
	version int
	fail    error
	loads   int
}

func (l *fakeLoader) Load(name string) (*handle, error) {
	l.loads++
	if l.fail != nil {
		return nil, l.fail
	}
	l.version++
	return &handle{version: l.version}, nil
}

func (l *fakeLoader) Reload(name string) (*handle, error) {
	return l.Load(name)
}

func newState(t *testing.T) (*CommonState[*handle], *fakeLoader) {
	t.Helper()
	l := &fakeLoader{}
	s, err := New[*handle]("ex01.wgsl", l)
	require.NoError(t, err)
	return s, l
}

func TestNewStartsDirtyAtZero(t *testing.T) {
	s, l := newState(t)
	assert.True(t, s.Dirty())
	assert.Equal(t, uint64(0), s.Frame())
	assert.Equal(t, time.Duration(0), s.Time())
	assert.Equal(t, FillModeFill, s.FillMode())
	assert.Equal(t, "ex01.wgsl", s.Name())
	assert.Equal(t, 1, s.Shader().version)
	assert.Equal(t, 1, l.loads)
}

func TestNewPropagatesLoadError(t *testing.T) {
	boom := errors.New("no such file")
	_, err := New[*handle]("ex01.wgsl", &fakeLoader{fail: boom})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestAdvanceTime(t *testing.T) {
	s, _ := newState(t)
	s.AdvanceTime(0)
	assert.Equal(t, time.Duration(0), s.Time(), "zero step is a no-op")

	s.AdvanceTime(16 * time.Millisecond)
	s.AdvanceTime(17 * time.Millisecond)
	assert.Equal(t, 33*time.Millisecond, s.Time())

	assert.Panics(t, func() { s.AdvanceTime(-time.Millisecond) })
	assert.Equal(t, 33*time.Millisecond, s.Time())
}

func TestAdvanceFrame(t *testing.T) {
	s, _ := newState(t)
	s.AdvanceFrame()
	s.AdvanceFrame()
	assert.Equal(t, uint64(2), s.Frame())
}

func TestMarkDirtyIsIdempotent(t *testing.T) {
	s, _ := newState(t)
	s.ClearDirty()
	s.MarkDirty()
	s.MarkDirty()
	assert.True(t, s.Dirty())
	s.ClearDirty()
	assert.False(t, s.Dirty())
}

func TestApplyReloadSwapsAndMarksDirty(t *testing.T) {
	s, _ := newState(t)
	s.ClearDirty()
	old := s.Shader()

	require.NoError(t, s.ApplyReload())
	assert.True(t, s.Dirty())
	assert.Equal(t, 2, s.Shader().version)
	assert.True(t, old.released)
	assert.False(t, s.Shader().released)
}

func TestApplyReloadFailureLeavesStateUntouched(t *testing.T) {
	s, l := newState(t)
	s.ClearDirty()
	old := s.Shader()

	boom := errors.New("syntax error")
	l.fail = boom
	err := s.ApplyReload()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	assert.Same(t, old, s.Shader())
	assert.False(t, old.released)
	assert.False(t, s.Dirty())
}

// The fill mode deliberately clamps asymmetrically: Up from Line jumps straight back to
// Fill, while Down walks one step at a time.
func TestFillModeClamp(t *testing.T) {
	assert.Equal(t, FillModeFill, FillModeFill.Up())
	assert.Equal(t, FillModeFill, FillModeLine.Up())
	assert.Equal(t, FillModeLine, FillModePoint.Up())

	assert.Equal(t, FillModeLine, FillModeFill.Down())
	assert.Equal(t, FillModePoint, FillModeLine.Down())
	assert.Equal(t, FillModePoint, FillModePoint.Down())
}

func TestFillUpDownMarkDirty(t *testing.T) {
	s, _ := newState(t)
	s.ClearDirty()

	s.FillDown()
	assert.Equal(t, FillModeLine, s.FillMode())
	assert.True(t, s.Dirty())

	s.ClearDirty()
	s.FillUp()
	assert.Equal(t, FillModeFill, s.FillMode())
	assert.True(t, s.Dirty())

	s.ClearDirty()
	s.FillUp()
	assert.Equal(t, FillModeFill, s.FillMode())
	assert.True(t, s.Dirty(), "a saturated step still requests a rebuild")
}

func TestFillModeString(t *testing.T) {
	assert.Equal(t, "line", FillModeLine.String())
	assert.Equal(t, "unknown", FillMode(9).String())
}
