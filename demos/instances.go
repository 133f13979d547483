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
	minInstances = 3
	maxInstances = 100
	minRadius    = 0.1
	maxRadius    = 2.0
	radiusStep   = 0.1
)

// instancesUniforms mirrors the Uniforms struct in instances.wgsl.
type instancesUniforms struct {
	Mouse        [2]float32
	Time         float32
	Radius       float32
	NumInstances uint32
	_            uint32
}

// instances draws one triangle per instance on a circle. Scroll changes the instance count,
// A and D shrink and grow the circle.
type instances struct {
	base

	vertices     [3][2]float32
	numInstances uint32
	radius       float32

	vertexBuffer  *wgpu.Buffer
	uniformBuffer *wgpu.Buffer
}

var _ demo.Demo = &instances{}

// NewInstances creates the instanced triangle demo.
//
// Parameters:
//   - loader: the shader loader
//
// Returns:
//   - demo.Demo: the demo
//   - error: error if instances.wgsl cannot be loaded
func NewInstances(loader state.Loader[shader.Shader]) (demo.Demo, error) {
	b, err := newBase("instances", loader)
	if err != nil {
		return nil, err
	}
	return &instances{
		base:         b,
		vertices:     [3][2]float32{{-0.5, 0}, {0, 1}, {0.5, 0}},
		numInstances: 10,
		radius:       0.3,
	}, nil
}

func (d *instances) HandleKey(keyCode uint32) {
	switch keyCode {
	case common.KeyA:
		d.radius = max(d.radius-radiusStep, minRadius)
	case common.KeyD:
		d.radius = min(d.radius+radiusStep, maxRadius)
	}
}

func (d *instances) HandleScroll(up bool) {
	if up {
		d.numInstances = min(d.numInstances+1, maxInstances)
	} else {
		d.numInstances = max(d.numInstances, minInstances+1) - 1
	}
}

func (d *instances) Render(r renderer.Renderer, f *renderer.Frame) error {
	built, err := d.ensure(r, pipeline.NewPipeline(d.name,
		pipeline.WithColorTarget(f.Format, wgpu.ColorWriteMaskAll),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
	))
	if err != nil {
		return err
	}

	uniforms := instancesUniforms{
		Mouse:        r.MouseClip(),
		Time:         float32(d.common.Time().Seconds()),
		Radius:       d.radius,
		NumInstances: d.numInstances,
	}
	if d.vertexBuffer == nil {
		if err := upload(r, &d.vertexBuffer, "instances vertices", wgpu.BufferUsageVertex, common.SliceToBytes(d.vertices[:])); err != nil {
			return fmt.Errorf("instances: %w", err)
		}
	}
	if err := upload(r, &d.uniformBuffer, "instances uniforms", wgpu.BufferUsageUniform, common.StructToBytes(&uniforms)); err != nil {
		return fmt.Errorf("instances: %w", err)
	}

	bg, err := bindGroup(f, r, built, "instances bind group", bufferEntry(0, d.uniformBuffer))
	if err != nil {
		return err
	}

	pass := beginPass(f, "instances pass", colorAttachment(f.View, nil, &black))
	pass.SetPipeline(built.Pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.SetVertexBuffer(0, d.vertexBuffer, 0, wgpu.WholeSize)
	pass.Draw(uint32(len(d.vertices)), d.numInstances, 0, 0)
	pass.End()
	return nil
}

func (d *instances) Release() {
	releaseBuffers(&d.vertexBuffer, &d.uniformBuffer)
	d.release()
}
