package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	RendererBackend

	configures [][2]int
	acquires   int
	acquireErr error
	submitted  []*Frame
	discarded  []*Frame
}

func (b *fakeBackend) ConfigureSurface(width, height int) {
	b.configures = append(b.configures, [2]int{width, height})
}

func (b *fakeBackend) AcquireFrame(width, height uint32) (*Frame, error) {
	b.acquires++
	if b.acquireErr != nil {
		return nil, b.acquireErr
	}
	return &Frame{Width: width, Height: height}, nil
}

func (b *fakeBackend) SubmitFrame(f *Frame) error {
	b.submitted = append(b.submitted, f)
	return nil
}

func (b *fakeBackend) DiscardFrame(f *Frame) {
	b.discarded = append(b.discarded, f)
}

func newTestRenderer(backend RendererBackend, width, height int) *renderer {
	r := &renderer{mu: &sync.Mutex{}, backend: backend, sampleCount: MSAA4x}
	r.Resize(width, height)
	return r
}

func TestResize_ConfiguresOnlyNonZeroExtent(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend, 800, 600)

	r.Resize(0, 600)
	r.Resize(1024, 768)

	assert.Equal(t, [][2]int{{800, 600}, {1024, 768}}, backend.configures)
	w, h := r.Extent()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)
}

func TestBeginFrame_ZeroExtentIsUnavailable(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend, 0, 0)

	f, err := r.BeginFrame()
	assert.Nil(t, f)
	assert.ErrorIs(t, err, ErrSurfaceUnavailable)
	assert.Zero(t, backend.acquires)
}

func TestBeginFrame_PassesExtentToBackend(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend, 640, 480)

	f, err := r.BeginFrame()
	require.NoError(t, err)
	assert.Equal(t, uint32(640), f.Width)
	assert.Equal(t, uint32(480), f.Height)

	require.NoError(t, r.EndFrame(f))
	assert.Equal(t, []*Frame{f}, backend.submitted)
}

func TestBeginFrame_BackendErrorPropagates(t *testing.T) {
	backend := &fakeBackend{acquireErr: errors.Join(ErrSurfaceUnavailable, errors.New("outdated"))}
	r := newTestRenderer(backend, 640, 480)

	_, err := r.BeginFrame()
	assert.ErrorIs(t, err, ErrSurfaceUnavailable)
}

func TestMouseClip(t *testing.T) {
	r := newTestRenderer(&fakeBackend{}, 200, 100)

	r.SetMouse(150, 25)
	assert.Equal(t, [2]float32{150, 25}, r.Mouse())
	assert.InDeltaSlice(t, []float32{0.5, 0.5}, r.MouseClip()[:], 1e-6)

	r.SetMouse(0, 100)
	assert.InDeltaSlice(t, []float32{-1, -1}, r.MouseClip()[:], 1e-6)
}

func TestFrameTrack_ReleasesInReverseOrder(t *testing.T) {
	var order []int
	f := &Frame{}
	f.Track(releaseFunc(func() { order = append(order, 1) }))
	f.Track(nil)
	f.Track(releaseFunc(func() { order = append(order, 2) }))

	f.release()
	assert.Equal(t, []int{2, 1}, order)

	f.release()
	assert.Equal(t, []int{2, 1}, order)
}

func TestPresentModeString(t *testing.T) {
	assert.Equal(t, "vsync", PresentModeVSync.String())
	assert.Equal(t, "uncapped", PresentModeUncapped.String())
}

type releaseFunc func()

func (f releaseFunc) Release() { f() }
