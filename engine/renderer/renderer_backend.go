package renderer

import (
	"github.com/Carmen-Shannon/oxy-lab/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// String returns the configuration name of the present mode.
func (m PresentMode) String() string {
	switch m {
	case PresentModeVSync:
		return "vsync"
	case PresentModeUncapped:
		return "uncapped"
	default:
		return "unknown"
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4, which are the only counts the lab uses.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	SurfaceFormat() wgpu.TextureFormat
	SetPresentMode(mode PresentMode)
	ConfigureSurface(width, height int)
	AcquireFrame(width, height uint32) (*Frame, error)
	SubmitFrame(f *Frame) error
	DiscardFrame(f *Frame)
	CompileShader(label, source string) (*wgpu.ShaderModule, error)
	CreateTexture(desc *wgpu.TextureDescriptor) (*Texture, error)
	WriteTextureLayer(t *Texture, layer uint32, data common.TextureStagingData) error
	ClearTexture(t *Texture) error
	CreateBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error)
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)
	CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error)
	Release()
}
