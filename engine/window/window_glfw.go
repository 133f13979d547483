package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwPlatform struct {
	window  *glfw.Window
	closing bool
}

var _ platform = &glfwPlatform{}

// newGLFWPlatform creates the native window for w and routes its events into w's callbacks.
//
// Reference: https://www.glfw.org/docs/latest/window_guide.html
func newGLFWPlatform(w *engineWindow) (*glfwPlatform, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// wgpu owns the swapchain, so no GL context.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minSize[0], w.minSize[1], w.maxSize[0], w.maxSize[1])

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Release && w.on.keyDown != nil {
			w.on.keyDown(uint32(key))
		}
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.on.scroll != nil {
			w.on.scroll(float32(yoff))
		}
	})
	win.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft || action == glfw.Repeat || w.on.mouseButton == nil {
			return
		}
		cx, cy := win.GetCursorPos()
		x, y := framebufferCursor(win, cx, cy)
		w.on.mouseButton(action == glfw.Press, x, y)
	})
	win.SetCursorPosCallback(func(win *glfw.Window, x, y float64) {
		if w.on.mouseMove != nil {
			w.on.mouseMove(framebufferCursor(win, x, y))
		}
	})

	// The framebuffer size is what the surface is configured with; on high-DPI displays it
	// differs from the window size.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})
	w.width, w.height = win.GetFramebufferSize()

	return &glfwPlatform{window: win}, nil
}

// framebufferCursor converts a cursor position from GLFW screen coordinates to framebuffer
// pixels. The two differ on high-DPI displays.
func framebufferCursor(win *glfw.Window, x, y float64) (float32, float32) {
	winW, winH := win.GetSize()
	fbW, fbH := win.GetFramebufferSize()
	return scaleCursor(x, y, [2]int{winW, winH}, [2]int{fbW, fbH})
}

// surfaceDescriptor uses the wgpuglfw bridge, which picks the native handle type per OS.
func (p *glfwPlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(p.window)
}

func (p *glfwPlatform) running() bool {
	return !p.closing && !p.window.ShouldClose()
}

func (p *glfwPlatform) requestClose() {
	p.closing = true
	p.window.SetShouldClose(true)
}

func (p *glfwPlatform) destroy() {
	p.requestClose()
	p.window.Destroy()
	glfw.Terminate()
}

func (p *glfwPlatform) poll() {
	glfw.PollEvents()
}
