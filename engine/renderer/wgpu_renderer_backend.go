package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-lab/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode // defaults to PresentModeFifo (VSync)

	// configured is false until the surface has been configured at a non-zero size, and is
	// reset when acquiring a texture fails so the next frame reconfigures first.
	configured bool
	width      int
	height     int

	// inFlight is the frame acquired by AcquireFrame and not yet submitted or discarded.
	inFlight *Frame
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	if surfaceDescriptor == nil {
		return nil, fmt.Errorf("window has no surface descriptor")
	}

	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	limits := wgpu.DefaultLimits()
	// The grid demo samples one 256-layer texture array.
	limits.MaxTextureArrayLayers = max(limits.MaxTextureArrayLayers, 256)

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Lab Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		b.Release()
		return nil, fmt.Errorf("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configureLocked(width, height)
}

func (b *wgpuRendererBackendImpl) configureLocked(width, height int) {
	capabilities := b.surface.GetCapabilities(b.adapter)

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.width = width
	b.height = height
	b.configured = true
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
	b.configured = false
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) AcquireFrame(width, height uint32) (*Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, acquiring another one would trip
	// wgpu-native's "Surface image is already acquired" validation.
	if b.inFlight != nil {
		return nil, fmt.Errorf("previous frame surface not yet presented")
	}

	if !b.configured || b.width != int(width) || b.height != int(height) {
		b.configureLocked(int(width), int(height))
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		// Outdated or lost: reconfigure on the next attempt.
		b.configured = false
		return nil, fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, err
	}

	f := &Frame{
		Encoder: encoder,
		View:    view,
		Width:   width,
		Height:  height,
		Format:  b.surfaceFormat,
		surface: surfaceTexture,
	}
	b.inFlight = f
	return f, nil
}

func (b *wgpuRendererBackendImpl) SubmitFrame(f *Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f == nil || f != b.inFlight {
		return fmt.Errorf("frame was not acquired from this renderer")
	}
	b.inFlight = nil

	commandBuffer, err := f.Encoder.Finish(nil)
	if err != nil {
		f.release()
		return fmt.Errorf("failed to finish frame: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	// Present the acquired surface image before the frame's references are released.
	b.surface.Present()
	f.release()
	return nil
}

func (b *wgpuRendererBackendImpl) DiscardFrame(f *Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f == nil {
		return
	}
	if f == b.inFlight {
		b.inFlight = nil
	}
	f.release()
}

func (b *wgpuRendererBackendImpl) CompileShader(label, source string) (*wgpu.ShaderModule, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
}

func (b *wgpuRendererBackendImpl) CreateTexture(desc *wgpu.TextureDescriptor) (*Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	layers := common.Coalesce(desc.Size.DepthOrArrayLayers, 1)
	tex, err := b.device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}

	var viewDesc *wgpu.TextureViewDescriptor
	if layers > 1 {
		viewDesc = &wgpu.TextureViewDescriptor{
			Label:           desc.Label + " View",
			Format:          desc.Format,
			Dimension:       wgpu.TextureViewDimension2DArray,
			BaseMipLevel:    0,
			MipLevelCount:   common.Coalesce(desc.MipLevelCount, 1),
			BaseArrayLayer:  0,
			ArrayLayerCount: layers,
			Aspect:          wgpu.TextureAspectAll,
		}
	}
	view, err := tex.CreateView(viewDesc)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create view of texture %q: %w", desc.Label, err)
	}

	return &Texture{
		Texture: tex,
		View:    view,
		Width:   desc.Size.Width,
		Height:  desc.Size.Height,
		Layers:  layers,
		Format:  desc.Format,
	}, nil
}

func (b *wgpuRendererBackendImpl) WriteTextureLayer(t *Texture, layer uint32, data common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if layer >= t.Layers {
		return fmt.Errorf("layer %d out of range for %d-layer texture", layer, t.Layers)
	}
	if data.Width != t.Width || data.Height != t.Height {
		return fmt.Errorf("staging data is %dx%d, texture is %dx%d", data.Width, data.Height, t.Width, t.Height)
	}
	bpp := bytesPerPixel(t.Format)
	if want := int(data.Width * data.Height * bpp); len(data.Pixels) != want {
		return fmt.Errorf("staging data has %d bytes, want %d", len(data.Pixels), want)
	}

	b.writeLayersLocked(t, layer, 1, data.Pixels)
	return nil
}

func (b *wgpuRendererBackendImpl) ClearTexture(t *Texture) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t == nil || t.Texture == nil {
		return fmt.Errorf("cannot clear a released texture")
	}
	zeros := make([]byte, t.Width*t.Height*bytesPerPixel(t.Format)*t.Layers)
	b.writeLayersLocked(t, 0, t.Layers, zeros)
	return nil
}

func (b *wgpuRendererBackendImpl) writeLayersLocked(t *Texture, firstLayer, layers uint32, pixels []byte) {
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.Texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: firstLayer},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  t.Width * bytesPerPixel(t.Format),
			RowsPerImage: t.Height,
		},
		&wgpu.Extent3D{
			Width:              t.Width,
			Height:             t.Height,
			DepthOrArrayLayers: layers,
		},
	)
}

func (b *wgpuRendererBackendImpl) CreateBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Buffer sizes and queue writes must be 4-byte aligned.
	size := (uint64(len(data)) + 3) &^ 3
	if size == 0 {
		size = 4
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}

	if len(data) > 0 {
		padded := data
		if uint64(len(data)) != size {
			padded = make([]byte, size)
			copy(padded, data)
		}
		b.queue.WriteBuffer(buf, 0, padded)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf == nil || len(data) == 0 {
		return
	}
	b.queue.WriteBuffer(buf, offset, data)
}

func (b *wgpuRendererBackendImpl) CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(data.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
	})
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inFlight != nil {
		b.inFlight.release()
		b.inFlight = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
