package demos

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-lab/common"
	"github.com/Carmen-Shannon/oxy-lab/engine/demo"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/state"
	"github.com/cogentcore/webgpu/wgpu"
)

// msaaPipelines is the multisampled and the single-sampled pipeline, rebuilt together.
type msaaPipelines struct {
	multi  *pipeline.Built
	single *pipeline.Built
}

func (p msaaPipelines) release() {
	p.multi.Release()
	p.single.Release()
}

// msaa draws the same lines twice: multisampled and resolved into the left half of the
// screen, then single-sampled into the right half. Scissor rects keep the halves apart.
type msaa struct {
	base

	pipelines     *pipeline.Cache[msaaPipelines]
	target        *renderer.Texture
	uniformBuffer *wgpu.Buffer
}

var _ demo.Demo = &msaa{}

// NewMSAA creates the multisampling comparison demo.
//
// Parameters:
//   - loader: the shader loader
//
// Returns:
//   - demo.Demo: the demo
//   - error: error if msaa.wgsl cannot be loaded
func NewMSAA(loader state.Loader[shader.Shader]) (demo.Demo, error) {
	b, err := newBase("msaa", loader)
	if err != nil {
		return nil, err
	}
	return &msaa{
		base:      b,
		pipelines: pipeline.NewCache(pipeline.WithRelease(msaaPipelines.release)),
	}, nil
}

func (d *msaa) build(r renderer.Renderer, format wgpu.TextureFormat) (msaaPipelines, error) {
	sh, mode := d.common.Shader(), d.common.FillMode()
	multi, err := pipeline.Build(r.Device(), pipeline.NewPipeline(d.name+" multisampled",
		pipeline.WithColorTarget(format, wgpu.ColorWriteMaskAll),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		pipeline.WithSampleCount(r.SampleCount()),
	), sh, mode)
	if err != nil {
		return msaaPipelines{}, err
	}
	single, err := pipeline.Build(r.Device(), pipeline.NewPipeline(d.name+" single",
		pipeline.WithColorTarget(format, wgpu.ColorWriteMaskAll),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
	), sh, mode)
	if err != nil {
		multi.Release()
		return msaaPipelines{}, err
	}
	return msaaPipelines{multi: multi, single: single}, nil
}

func (d *msaa) Render(r renderer.Renderer, f *renderer.Frame) error {
	pipelines, err := d.pipelines.Ensure(d.common, func() (msaaPipelines, error) {
		return d.build(r, f.Format)
	})
	if err != nil {
		return err
	}

	samples := r.SampleCount()
	if err := d.ensureTarget(r, f, samples); err != nil {
		return err
	}

	uniforms := lineUniforms{
		Resolution: [2]float32{float32(f.Width), float32(f.Height)},
		Time:       float32(d.common.Time().Seconds()),
		Count:      lineVertices,
	}
	if err := upload(r, &d.uniformBuffer, "msaa uniforms", wgpu.BufferUsageUniform, common.StructToBytes(&uniforms)); err != nil {
		return fmt.Errorf("msaa: %w", err)
	}

	multiGroup, err := bindGroup(f, r, pipelines.multi, "msaa multisampled bind group", bufferEntry(0, d.uniformBuffer))
	if err != nil {
		return err
	}
	singleGroup, err := bindGroup(f, r, pipelines.single, "msaa single bind group", bufferEntry(0, d.uniformBuffer))
	if err != nil {
		return err
	}

	split := halves(f.Width)

	left := colorAttachment(f.View, nil, &black)
	if d.target != nil {
		// The multisampled contents are only needed until they are resolved.
		left = colorAttachment(d.target.View, f.View, &black)
		left.StoreOp = wgpu.StoreOpDiscard
	}
	pass := beginPass(f, "msaa multisampled pass", left)
	pass.SetPipeline(pipelines.multi.Pipeline)
	pass.SetBindGroup(0, multiGroup, nil)
	pass.SetScissorRect(split[0][0], 0, split[0][1], f.Height)
	pass.Draw(lineVertices, 1, 0, 0)
	pass.End()

	pass = beginPass(f, "msaa single pass", colorAttachment(f.View, nil, nil))
	pass.SetPipeline(pipelines.single.Pipeline)
	pass.SetBindGroup(0, singleGroup, nil)
	pass.SetScissorRect(split[1][0], 0, split[1][1], f.Height)
	pass.Draw(lineVertices, 1, 0, 0)
	pass.End()
	return nil
}

// ensureTarget keeps a multisampled color target matching the frame. With multisampling
// off there is no target and the first pass draws straight into the surface.
func (d *msaa) ensureTarget(r renderer.Renderer, f *renderer.Frame, samples uint32) error {
	if samples <= 1 {
		d.target.Release()
		d.target = nil
		return nil
	}
	if t := d.target; t != nil && t.Width == f.Width && t.Height == f.Height && t.Format == f.Format {
		return nil
	}
	d.target.Release()

	t, err := r.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "msaa target",
		Size:          wgpu.Extent3D{Width: f.Width, Height: f.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        f.Format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		d.target = nil
		return fmt.Errorf("msaa: %w", err)
	}
	d.target = t
	return nil
}

func (d *msaa) Release() {
	d.pipelines.Reset()
	d.target.Release()
	d.target = nil
	releaseBuffers(&d.uniformBuffer)
	d.release()
}
