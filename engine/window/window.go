package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-lab/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window owns the platform window and turns its events into callbacks. All methods must be
// called from the thread that created the window.
type Window interface {
	// SetUpdateCallback sets the function run once per message loop iteration, after events
	// have been dispatched. Nil disables it.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function receiving the new framebuffer size in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the function receiving vertical wheel deltas. Positive is up.
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the function receiving key presses and auto-repeats.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetMouseButtonCallback sets the function receiving left button presses and releases
	// with the cursor position in framebuffer pixels.
	SetMouseButtonCallback(callback func(pressed bool, x, y float32))

	// SetMouseMoveCallback sets the function receiving the cursor position in framebuffer
	// pixels, the same space as Width and Height.
	SetMouseMoveCallback(callback func(x, y float32))

	// SurfaceDescriptor describes the native window to wgpu.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open and no close has been requested.
	IsRunning() bool

	// RequestClose makes ProcessMessages return after the current iteration.
	RequestClose()

	// Close destroys the window.
	//
	// Returns:
	//   - error: error if the window was already closed
	Close() error

	// ProcessMessages polls events and runs the update callback until the window closes.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// platform is the native side of a window.
type platform interface {
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	running() bool
	requestClose()
	destroy()
	poll()
}

type callbacks struct {
	update      func()
	resize      func(width, height int)
	scroll      func(delta float32)
	keyDown     func(keyCode uint32)
	mouseButton func(pressed bool, x, y float32)
	mouseMove   func(x, y float32)
}

type engineWindow struct {
	title   string
	width   int
	height  int
	minSize [2]int
	maxSize [2]int

	native platform
	on     callbacks
}

var _ Window = &engineWindow{}

// newEngineWindow applies the options over the defaults and clamps the size into the limits.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:   "oxy-lab",
		width:   1280,
		height:  720,
		minSize: [2]int{320, 240},
		maxSize: [2]int{3840, 2160},
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = common.Clamp(w.width, w.minSize[0], w.maxSize[0])
	w.height = common.Clamp(w.height, w.minSize[1], w.maxSize[1])
	return w
}

// NewWindow opens a GLFW window. The calling goroutine is locked to its OS thread, which
// must then run ProcessMessages.
//
// Parameters:
//   - options: title and size options
//
// Returns:
//   - Window: the open window
//   - error: error if GLFW cannot create the window
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	native, err := newGLFWPlatform(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	w.native = native
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.on.update = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.on.resize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.on.scroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.on.keyDown = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(pressed bool, x, y float32)) {
	w.on.mouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float32)) {
	w.on.mouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.native == nil {
		return nil
	}
	return w.native.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.native != nil && w.native.running()
}

func (w *engineWindow) RequestClose() {
	if w.native != nil {
		w.native.requestClose()
	}
}

func (w *engineWindow) Close() error {
	if w.native == nil {
		return fmt.Errorf("window is not open")
	}
	w.native.destroy()
	w.native = nil
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		w.native.poll()
		if !w.IsRunning() {
			return
		}
		if w.on.update != nil {
			w.on.update()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// resized records the framebuffer size and forwards it.
func (w *engineWindow) resized(width, height int) {
	w.width, w.height = width, height
	if w.on.resize != nil {
		w.on.resize(width, height)
	}
}

// scaleCursor maps a cursor position from window coordinates to framebuffer pixels. A
// minimized window has a zero size and leaves the position unscaled.
func scaleCursor(x, y float64, window, framebuffer [2]int) (float32, float32) {
	if window[0] <= 0 || window[1] <= 0 {
		return float32(x), float32(y)
	}
	sx := float64(framebuffer[0]) / float64(window[0])
	sy := float64(framebuffer[1]) / float64(window[1])
	return float32(x * sx), float32(y * sy)
}
