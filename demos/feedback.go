package demos

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-lab/common"
	"github.com/Carmen-Shannon/oxy-lab/engine/demo"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/pingpong"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/state"
	"github.com/cogentcore/webgpu/wgpu"
)

// feedbackFormat is the format of both feedback textures. It must be filterable for sampling
// and support write-only storage.
const feedbackFormat = wgpu.TextureFormatRGBA16Float

// feedbackDecay is how much of last frame survives into this one.
const feedbackDecay = 0.97

// feedbackUniforms mirrors the Uniforms struct in feedback.wgsl.
type feedbackUniforms struct {
	Mouse      [2]float32
	Resolution [2]float32
	Time       float32
	Decay      float32
}

// feedback samples last frame's texture and writes this frame's into the other one of a
// ping-pong pair. Space marks the demo dirty, which rebuilds the pipeline and clears both
// textures.
type feedback struct {
	base

	textures      *pingpong.Pair[*renderer.Texture]
	sampler       *wgpu.Sampler
	uniformBuffer *wgpu.Buffer
}

var _ demo.Demo = &feedback{}

// NewFeedback creates the storage texture feedback demo.
//
// Parameters:
//   - loader: the shader loader
//
// Returns:
//   - demo.Demo: the demo
//   - error: error if feedback.wgsl cannot be loaded
func NewFeedback(loader state.Loader[shader.Shader]) (demo.Demo, error) {
	b, err := newBase("feedback", loader)
	if err != nil {
		return nil, err
	}
	return &feedback{base: b}, nil
}

func (d *feedback) HandleKey(keyCode uint32) {
	if keyCode == common.KeySpace {
		d.common.MarkDirty()
	}
}

func (d *feedback) Render(r renderer.Renderer, f *renderer.Frame) error {
	if d.common.Dirty() && d.textures != nil {
		d.textures.Invalidate()
	}

	built, err := d.ensure(r, pipeline.NewPipeline(d.name,
		pipeline.WithColorTarget(f.Format, wgpu.ColorWriteMaskAll),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
	))
	if err != nil {
		return err
	}

	if err := d.ensureTextures(r, f.Width, f.Height); err != nil {
		return err
	}
	if d.sampler == nil {
		d.sampler, err = r.CreateSampler("feedback sampler", common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
		})
		if err != nil {
			return fmt.Errorf("feedback: failed to create sampler: %w", err)
		}
	}

	uniforms := feedbackUniforms{
		Mouse:      r.Mouse(),
		Resolution: [2]float32{float32(f.Width), float32(f.Height)},
		Time:       float32(d.common.Time().Seconds()),
		Decay:      feedbackDecay,
	}
	if err := upload(r, &d.uniformBuffer, "feedback uniforms", wgpu.BufferUsageUniform, common.StructToBytes(&uniforms)); err != nil {
		return fmt.Errorf("feedback: %w", err)
	}

	bg, err := pingpong.Bind(d.textures, d.common.Frame(), func(read, write *renderer.Texture) (*wgpu.BindGroup, error) {
		return bindGroup(f, r, built, "feedback bind group",
			bufferEntry(0, d.uniformBuffer),
			wgpu.BindGroupEntry{Binding: 1, TextureView: read.View},
			wgpu.BindGroupEntry{Binding: 2, TextureView: write.View},
			wgpu.BindGroupEntry{Binding: 3, Sampler: d.sampler},
		)
	})
	if err != nil {
		return fmt.Errorf("feedback: %w", err)
	}

	pass := beginPass(f, "feedback pass", colorAttachment(f.View, nil, &black))
	pass.SetPipeline(built.Pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(4, 1, 0, 0)
	pass.End()
	return nil
}

// ensureTextures creates the pair on first use and replaces it when the surface size changes.
func (d *feedback) ensureTextures(r renderer.Renderer, width, height uint32) error {
	if d.textures != nil {
		if t := d.textures.Resource(0); t.Width == width && t.Height == height {
			return nil
		}
	}

	a, err := d.createTexture(r, "feedback texture 0", width, height)
	if err != nil {
		return err
	}
	b, err := d.createTexture(r, "feedback texture 1", width, height)
	if err != nil {
		a.Release()
		return err
	}

	if d.textures == nil {
		d.textures = pingpong.NewPair(a, b,
			pingpong.WithClear(r.ClearTexture),
			pingpong.WithRelease(func(t *renderer.Texture) { t.Release() }),
		)
		return nil
	}
	d.textures.Replace(a, b)
	return nil
}

func (d *feedback) createTexture(r renderer.Renderer, label string, width, height uint32) (*renderer.Texture, error) {
	t, err := r.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        feedbackFormat,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("feedback: %w", err)
	}
	return t, nil
}

func (d *feedback) Release() {
	if d.textures != nil {
		d.textures.Release()
		d.textures = nil
	}
	if d.sampler != nil {
		d.sampler.Release()
		d.sampler = nil
	}
	releaseBuffers(&d.uniformBuffer)
	d.release()
}
