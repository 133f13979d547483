package renderer

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrSurfaceUnavailable is returned by BeginFrame when no surface texture can be acquired,
// either because the window is minimized or because the surface is outdated or lost.
// The frame is skipped and the next tick retries.
var ErrSurfaceUnavailable = errors.New("surface unavailable")

// Releaser is any GPU object that must be released once the frame that used it completes.
type Releaser interface {
	Release()
}

// Frame is one acquired surface texture and the command encoder recording into it.
// Demos record their passes on Encoder; the renderer submits and presents on EndFrame.
type Frame struct {
	// Encoder records every pass of the frame.
	Encoder *wgpu.CommandEncoder

	// View is the surface texture view to render the final image into.
	View *wgpu.TextureView

	// Width and Height are the surface extent in pixels.
	Width  uint32
	Height uint32

	// Format is the surface texture format.
	Format wgpu.TextureFormat

	surface *wgpu.Texture
	tracked []Releaser
}

// Track registers a per-frame object (bind group, pass encoder) to be released after the
// frame is submitted or discarded.
//
// Parameters:
//   - r: the object to release
func (f *Frame) Track(r Releaser) {
	if r == nil {
		return
	}
	f.tracked = append(f.tracked, r)
}

// release drops every tracked object and the surface references in reverse order of
// acquisition.
func (f *Frame) release() {
	for i := len(f.tracked) - 1; i >= 0; i-- {
		f.tracked[i].Release()
	}
	f.tracked = nil
	if f.Encoder != nil {
		f.Encoder.Release()
		f.Encoder = nil
	}
	if f.View != nil {
		f.View.Release()
		f.View = nil
	}
	if f.surface != nil {
		f.surface.Release()
		f.surface = nil
	}
}

// Texture is a GPU texture together with its default view.
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Width   uint32
	Height  uint32
	Layers  uint32
	Format  wgpu.TextureFormat
}

// Release releases the view and the texture.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// bytesPerPixel returns the texel size of the formats the lab allocates.
func bytesPerPixel(format wgpu.TextureFormat) uint32 {
	switch format {
	case wgpu.TextureFormatRGBA16Float:
		return 8
	case wgpu.TextureFormatRGBA32Float:
		return 16
	case wgpu.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}
