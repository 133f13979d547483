// Package demos holds the lab's demos. Each demo owns one WGSL file in the shader directory,
// a dirty-tracked common state and a cached render pipeline. GPU resources are created on the
// first render so constructing a demo only loads its shader.
package demos

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-lab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/state"
	"github.com/cogentcore/webgpu/wgpu"
)

// base carries what every demo shares: its name, its common state and its pipeline cache.
// Demos embed it and override the input handlers they react to.
type base struct {
	name   string
	common *state.CommonState[shader.Shader]
	cache  *pipeline.Cache[*pipeline.Built]
}

// newBase loads the demo's shader and prepares an empty pipeline cache.
//
// Parameters:
//   - name: the demo name, also the shader file stem
//   - loader: the shader loader
//
// Returns:
//   - base: the shared demo state
//   - error: error if the shader cannot be loaded
func newBase(name string, loader state.Loader[shader.Shader]) (base, error) {
	common, err := state.New(name+".wgsl", loader)
	if err != nil {
		return base{}, fmt.Errorf("demo %s: %w", name, err)
	}
	return base{
		name:   name,
		common: common,
		cache:  pipeline.NewCache(pipeline.WithRelease(func(b *pipeline.Built) { b.Release() })),
	}, nil
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Common() *state.CommonState[shader.Shader] {
	return b.common
}

func (b *base) HandleKey(keyCode uint32) {}

func (b *base) HandleScroll(up bool) {}

func (b *base) HandleClick(pos [2]float32, pressed bool) {}

// ensure returns the demo's pipeline, rebuilding it when the state is dirty.
func (b *base) ensure(r renderer.Renderer, p pipeline.Pipeline) (*pipeline.Built, error) {
	return b.cache.Ensure(b.common, func() (*pipeline.Built, error) {
		return pipeline.Build(r.Device(), p, b.common.Shader(), b.common.FillMode())
	})
}

// release drops the cached pipeline and the current shader module.
func (b *base) release() {
	b.cache.Reset()
	if sh := b.common.Shader(); sh != nil {
		sh.Release()
	}
}

// bindGroup creates a bind group for group 0 of built and tracks it on the frame.
func bindGroup(f *renderer.Frame, r renderer.Renderer, built *pipeline.Built, label string, entries ...wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	if len(built.BindGroupLayouts) == 0 {
		return nil, fmt.Errorf("%s: pipeline has no bind group layouts", label)
	}
	bg, err := r.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  built.BindGroupLayouts[0],
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %s: %w", label, err)
	}
	f.Track(bg)
	return bg, nil
}

// upload writes data into *buf, creating the buffer on first use.
func upload(r renderer.Renderer, buf **wgpu.Buffer, label string, usage wgpu.BufferUsage, data []byte) error {
	if *buf != nil {
		r.WriteBuffer(*buf, 0, data)
		return nil
	}
	created, err := r.CreateBuffer(label, usage, data)
	if err != nil {
		return err
	}
	*buf = created
	return nil
}

// releaseBuffers releases and clears every non-nil buffer.
func releaseBuffers(bufs ...**wgpu.Buffer) {
	for _, b := range bufs {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
}

// bufferEntry binds a whole buffer.
func bufferEntry(binding uint32, buf *wgpu.Buffer) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: binding,
		Buffer:  buf,
		Offset:  0,
		Size:    wgpu.WholeSize,
	}
}

// colorAttachment returns a single color attachment into view that clears to background or,
// when background is nil, loads the existing contents.
func colorAttachment(view, resolve *wgpu.TextureView, background *wgpu.Color) wgpu.RenderPassColorAttachment {
	att := wgpu.RenderPassColorAttachment{
		View:          view,
		ResolveTarget: resolve,
		LoadOp:        wgpu.LoadOpLoad,
		StoreOp:       wgpu.StoreOpStore,
	}
	if background != nil {
		att.LoadOp = wgpu.LoadOpClear
		att.ClearValue = *background
	}
	return att
}

// beginPass begins a render pass on the frame's encoder and tracks it for release.
func beginPass(f *renderer.Frame, label string, attachments ...wgpu.RenderPassColorAttachment) *wgpu.RenderPassEncoder {
	pass := f.Encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            label,
		ColorAttachments: attachments,
	})
	f.Track(pass)
	return pass
}

// black is the default clear color.
var black = wgpu.Color{R: 0, G: 0, B: 0, A: 1}
