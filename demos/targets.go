package demos

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-lab/engine/demo"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/state"
	"github.com/cogentcore/webgpu/wgpu"
)

// targets draws one triangle into two color targets at once: the screen with every channel
// and a screen-sized offscreen texture with only green and blue.
type targets struct {
	base

	offscreen *renderer.Texture
}

var _ demo.Demo = &targets{}

// NewTargets creates the multiple render target demo.
//
// Parameters:
//   - loader: the shader loader
//
// Returns:
//   - demo.Demo: the demo
//   - error: error if targets.wgsl cannot be loaded
func NewTargets(loader state.Loader[shader.Shader]) (demo.Demo, error) {
	b, err := newBase("targets", loader)
	if err != nil {
		return nil, err
	}
	return &targets{base: b}, nil
}

func (d *targets) Render(r renderer.Renderer, f *renderer.Frame) error {
	built, err := d.ensure(r, pipeline.NewPipeline(d.name,
		pipeline.WithColorTarget(f.Format, wgpu.ColorWriteMaskAll),
		pipeline.WithColorTarget(f.Format, wgpu.ColorWriteMaskGreen|wgpu.ColorWriteMaskBlue),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
	))
	if err != nil {
		return err
	}

	if err := d.ensureOffscreen(r, f); err != nil {
		return err
	}

	pass := beginPass(f, "targets pass",
		colorAttachment(f.View, nil, &black),
		colorAttachment(d.offscreen.View, nil, &black),
	)
	pass.SetPipeline(built.Pipeline)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	return nil
}

// ensureOffscreen (re)creates the offscreen target when the surface size or format changed.
func (d *targets) ensureOffscreen(r renderer.Renderer, f *renderer.Frame) error {
	if t := d.offscreen; t != nil && t.Width == f.Width && t.Height == f.Height && t.Format == f.Format {
		return nil
	}
	d.offscreen.Release()

	t, err := r.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "targets offscreen",
		Size:          wgpu.Extent3D{Width: f.Width, Height: f.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        f.Format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		d.offscreen = nil
		return fmt.Errorf("targets: %w", err)
	}
	d.offscreen = t
	return nil
}

func (d *targets) Release() {
	d.offscreen.Release()
	d.offscreen = nil
	d.release()
}
