package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-lab/common"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	width  uint32
	height uint32
	mouse  [2]float32

	sampleCount MSAASampleCount

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer owns the GPU device, queue and window surface shared by every demo.
//
// A frame is driven as BeginFrame, any number of passes recorded by the active demo on
// Frame.Encoder, then EndFrame which submits and presents. The Renderer also tracks the
// surface extent and the last cursor position so demos can read them while rendering.
type Renderer interface {
	shader.Compiler

	// Device returns the GPU device.
	Device() *wgpu.Device

	// Queue returns the GPU queue.
	Queue() *wgpu.Queue

	// SurfaceFormat returns the texture format of the window surface.
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the configured MSAA sample count for multisampled demos.
	SampleCount() uint32

	// Extent returns the current surface size in pixels. Either value may be zero while the
	// window is minimized.
	//
	// Returns:
	//   - uint32: width in pixels
	//   - uint32: height in pixels
	Extent() (uint32, uint32)

	// Resize records the new surface size and reconfigures the surface if it is non-zero.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetMouse records the cursor position in framebuffer pixels.
	SetMouse(x, y float32)

	// Mouse returns the last cursor position in framebuffer pixels.
	Mouse() [2]float32

	// MouseClip returns the last cursor position converted to clip space, y up.
	MouseClip() [2]float32

	// BeginFrame acquires the next surface texture and creates the frame's command encoder.
	//
	// Returns:
	//   - *Frame: the frame to record into
	//   - error: ErrSurfaceUnavailable (wrapped) if the surface is zero-sized, outdated or lost
	BeginFrame() (*Frame, error)

	// EndFrame finishes the frame's encoder, submits it, presents the surface texture and
	// releases everything the frame tracked.
	//
	// Parameters:
	//   - f: the frame returned by BeginFrame
	//
	// Returns:
	//   - error: error if the command buffer cannot be finished
	EndFrame(f *Frame) error

	// DiscardFrame releases a frame without submitting it, for use when recording failed.
	DiscardFrame(f *Frame)

	// CreateTexture creates a texture and its default view. A multi-layer 2D texture gets a
	// 2D array view.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - *Texture: the texture and its view
	//   - error: error if creation fails
	CreateTexture(desc *wgpu.TextureDescriptor) (*Texture, error)

	// WriteTextureLayer uploads pixels into one array layer of a texture.
	//
	// Parameters:
	//   - t: the destination texture
	//   - layer: the array layer
	//   - data: the pixels, tightly packed rows
	//
	// Returns:
	//   - error: error if the data does not match the texture
	WriteTextureLayer(t *Texture, layer uint32, data common.TextureStagingData) error

	// ClearTexture fills every layer of a texture with zeros.
	ClearTexture(t *Texture) error

	// CreateBuffer creates a buffer and uploads data into it. CopyDst is always added to usage.
	//
	// Parameters:
	//   - label: the debug label
	//   - usage: the buffer usage flags
	//   - data: the initial contents, padded up to a multiple of 4 bytes
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: error if creation fails
	CreateBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error)

	// WriteBuffer writes data into a buffer at offset through the queue.
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)

	// CreateSampler creates a sampler. Zero fields in data fall back to repeat addressing and
	// linear filtering.
	CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error)

	// Release releases the device and the surface.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer on the given window's surface and configures the
// surface at the window's current size.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: error if no adapter or device could be obtained
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		sampleCount: MSAA4x,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			backend, err := newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
			if err != nil {
				return nil, err
			}
			r.backend = backend
		}
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.Resize(window.Width(), window.Height())
	return r, nil
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) SampleCount() uint32 {
	return uint32(r.sampleCount)
}

func (r *renderer) Extent() (uint32, uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	r.width = uint32(max(width, 0))
	r.height = uint32(max(height, 0))
	w, h := r.width, r.height
	r.mu.Unlock()

	// A zero-sized surface cannot be configured; frames are skipped until the next resize.
	if w == 0 || h == 0 {
		return
	}
	r.backend.ConfigureSurface(int(w), int(h))
}

func (r *renderer) SetMouse(x, y float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mouse = [2]float32{x, y}
}

func (r *renderer) Mouse() [2]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mouse
}

func (r *renderer) MouseClip() [2]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return common.WindowToClip(r.mouse, r.width, r.height)
}

func (r *renderer) BeginFrame() (*Frame, error) {
	w, h := r.Extent()
	if w == 0 || h == 0 {
		return nil, ErrSurfaceUnavailable
	}
	return r.backend.AcquireFrame(w, h)
}

func (r *renderer) EndFrame(f *Frame) error {
	return r.backend.SubmitFrame(f)
}

func (r *renderer) DiscardFrame(f *Frame) {
	r.backend.DiscardFrame(f)
}

func (r *renderer) Compile(label, source string) (*wgpu.ShaderModule, error) {
	return r.backend.CompileShader(label, source)
}

func (r *renderer) CreateTexture(desc *wgpu.TextureDescriptor) (*Texture, error) {
	return r.backend.CreateTexture(desc)
}

func (r *renderer) WriteTextureLayer(t *Texture, layer uint32, data common.TextureStagingData) error {
	return r.backend.WriteTextureLayer(t, layer, data)
}

func (r *renderer) ClearTexture(t *Texture) error {
	return r.backend.ClearTexture(t)
}

func (r *renderer) CreateBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	return r.backend.CreateBuffer(label, usage, data)
}

func (r *renderer) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	r.backend.WriteBuffer(buf, offset, data)
}

func (r *renderer) CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error) {
	return r.backend.CreateSampler(label, data)
}

func (r *renderer) Release() {
	r.backend.Release()
}
