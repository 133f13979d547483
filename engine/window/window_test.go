package window

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform closes itself after a fixed number of polls.
type fakePlatform struct {
	polls     int
	closeAt   int
	closing   bool
	destroyed bool
}

func (p *fakePlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor { return &wgpu.SurfaceDescriptor{} }
func (p *fakePlatform) running() bool { return !p.closing }
func (p *fakePlatform) requestClose() { p.closing = true }
func (p *fakePlatform) destroy() { p.destroyed = true }

func (p *fakePlatform) poll() {
	p.polls++
	if p.polls == p.closeAt {
		p.closing = true
	}
}

func TestNewEngineWindowClampsSize(t *testing.T) {
	w := newEngineWindow(WithSize(10, 5000), WithTitle("lab"))
	assert.Equal(t, "lab", w.title)
	assert.Equal(t, 320, w.Width())
	assert.Equal(t, 2160, w.Height())

	w = newEngineWindow(WithSizeLimits(100, 100, 200, 200), WithSize(150, 900))
	assert.Equal(t, 150, w.Width())
	assert.Equal(t, 200, w.Height())
}

func TestProcessMessagesRunsUpdateUntilClosed(t *testing.T) {
	w := newEngineWindow()
	native := &fakePlatform{closeAt: 3}
	w.native = native

	updates := 0
	w.SetUpdateCallback(func() { updates++ })
	w.ProcessMessages()

	assert.Equal(t, 3, native.polls)
	assert.Equal(t, 2, updates, "no update after the poll that closed the window")
}

func TestRequestCloseStopsTheLoop(t *testing.T) {
	w := newEngineWindow()
	w.native = &fakePlatform{}

	updates := 0
	w.SetUpdateCallback(func() {
		updates++
		w.RequestClose()
	})
	w.ProcessMessages()
	assert.Equal(t, 1, updates)
	assert.False(t, w.IsRunning())
}

func TestCloseReleasesOnce(t *testing.T) {
	w := newEngineWindow()
	native := &fakePlatform{}
	w.native = native
	require.NotNil(t, w.SurfaceDescriptor())

	require.NoError(t, w.Close())
	assert.True(t, native.destroyed)
	assert.Nil(t, w.SurfaceDescriptor())
	assert.False(t, w.IsRunning())
	assert.Error(t, w.Close())
}

func TestResizedUpdatesSizeAndNotifies(t *testing.T) {
	w := newEngineWindow()
	var got [2]int
	w.SetResizeCallback(func(width, height int) { got = [2]int{width, height} })

	w.resized(1024, 768)
	assert.Equal(t, [2]int{1024, 768}, got)
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, 768, w.Height())
}

func TestScaleCursorToFramebufferPixels(t *testing.T) {
	x, y := scaleCursor(100, 50, [2]int{800, 600}, [2]int{1600, 1200})
	assert.Equal(t, float32(200), x)
	assert.Equal(t, float32(100), y)

	x, y = scaleCursor(100, 50, [2]int{800, 600}, [2]int{800, 600})
	assert.Equal(t, float32(100), x)
	assert.Equal(t, float32(50), y)

	x, y = scaleCursor(10, 20, [2]int{0, 0}, [2]int{0, 0})
	assert.Equal(t, float32(10), x)
	assert.Equal(t, float32(20), y)
}
