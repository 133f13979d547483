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

const (
	minThreshold  = 0.1
	maxThreshold  = 0.3
	thresholdStep = 0.01
)

// quadUniforms mirrors the Uniforms struct in quad.wgsl.
type quadUniforms struct {
	Corners   [4][4]float32
	Viewport  [2]float32
	Mouse     [2]float32
	Time      float32
	Threshold float32
	_         [2]float32
}

// quad draws a triangle-strip quad. Pressing the button near a corner picks it up, the corner
// follows the mouse until release. Scroll changes the pick threshold.
type quad struct {
	base

	// vertices in strip order: top left, bottom left, top right, bottom right.
	vertices  [4][2]float32
	threshold float32
	selected  int

	vertexBuffer  *wgpu.Buffer
	uniformBuffer *wgpu.Buffer
}

var _ demo.Demo = &quad{}

// NewQuad creates the draggable quad demo.
//
// Parameters:
//   - loader: the shader loader
//
// Returns:
//   - demo.Demo: the demo
//   - error: error if quad.wgsl cannot be loaded
func NewQuad(loader state.Loader[shader.Shader]) (demo.Demo, error) {
	b, err := newBase("quad", loader)
	if err != nil {
		return nil, err
	}
	return &quad{
		base:      b,
		vertices:  [4][2]float32{{-0.5, 0.5}, {-0.5, -0.5}, {0.5, 0.5}, {0.5, -0.5}},
		threshold: 0.2,
		selected:  -1,
	}, nil
}

func (d *quad) HandleScroll(up bool) {
	if up {
		d.threshold = min(d.threshold+thresholdStep, maxThreshold)
	} else {
		d.threshold = max(d.threshold-thresholdStep, minThreshold)
	}
}

// HandleClick picks the corner within the threshold of pos on press, the last one when
// several qualify, and drops it on release.
func (d *quad) HandleClick(pos [2]float32, pressed bool) {
	if !pressed {
		d.selected = -1
		return
	}
	for i, v := range d.vertices {
		if common.Distance2(pos, v) < d.threshold {
			d.selected = i
		}
	}
}

func (d *quad) Render(r renderer.Renderer, f *renderer.Frame) error {
	built, err := d.ensure(r, pipeline.NewPipeline(d.name,
		pipeline.WithColorTarget(f.Format, wgpu.ColorWriteMaskAll),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
	))
	if err != nil {
		return err
	}

	mouse := r.MouseClip()
	if d.selected >= 0 {
		d.vertices[d.selected] = mouse
	}

	uniforms := quadUniforms{
		Viewport:  [2]float32{float32(f.Width), float32(f.Height)},
		Mouse:     mouse,
		Time:      float32(d.common.Time().Seconds()),
		Threshold: d.threshold,
	}
	for i, v := range d.vertices {
		uniforms.Corners[i] = [4]float32{v[0], v[1], 0, 0}
	}

	if err := upload(r, &d.vertexBuffer, "quad vertices", wgpu.BufferUsageVertex, common.SliceToBytes(d.vertices[:])); err != nil {
		return fmt.Errorf("quad: %w", err)
	}
	if err := upload(r, &d.uniformBuffer, "quad uniforms", wgpu.BufferUsageUniform, common.StructToBytes(&uniforms)); err != nil {
		return fmt.Errorf("quad: %w", err)
	}

	bg, err := bindGroup(f, r, built, "quad bind group", bufferEntry(0, d.uniformBuffer))
	if err != nil {
		return err
	}

	pass := beginPass(f, "quad pass", colorAttachment(f.View, nil, &black))
	pass.SetPipeline(built.Pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.SetVertexBuffer(0, d.vertexBuffer, 0, wgpu.WholeSize)
	pass.Draw(uint32(len(d.vertices)), 1, 0, 0)
	pass.End()
	return nil
}

func (d *quad) Release() {
	releaseBuffers(&d.vertexBuffer, &d.uniformBuffer)
	d.release()
}
