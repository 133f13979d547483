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

// triangleStep is how far one arrow key press moves the triangle.
const triangleStep = 0.1

// triangle draws a single triangle from a vertex buffer. The arrow keys move it.
type triangle struct {
	base

	vertices [3][2]float32
	buffer   *wgpu.Buffer
}

var _ demo.Demo = &triangle{}

// NewTriangle creates the vertex buffer triangle demo.
//
// Parameters:
//   - loader: the shader loader
//
// Returns:
//   - demo.Demo: the demo
//   - error: error if triangle.wgsl cannot be loaded
func NewTriangle(loader state.Loader[shader.Shader]) (demo.Demo, error) {
	b, err := newBase("triangle", loader)
	if err != nil {
		return nil, err
	}
	return &triangle{
		base:     b,
		vertices: [3][2]float32{{-0.5, 0}, {0, 1}, {0.5, 0}},
	}, nil
}

func (d *triangle) HandleKey(keyCode uint32) {
	switch keyCode {
	case common.KeyUp:
		d.move(0, triangleStep)
	case common.KeyDown:
		d.move(0, -triangleStep)
	case common.KeyLeft:
		d.move(-triangleStep, 0)
	case common.KeyRight:
		d.move(triangleStep, 0)
	}
}

func (d *triangle) move(dx, dy float32) {
	for i := range d.vertices {
		d.vertices[i][0] += dx
		d.vertices[i][1] += dy
	}
}

func (d *triangle) Render(r renderer.Renderer, f *renderer.Frame) error {
	built, err := d.ensure(r, pipeline.NewPipeline(d.name,
		pipeline.WithColorTarget(f.Format, wgpu.ColorWriteMaskAll),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
	))
	if err != nil {
		return err
	}

	if err := upload(r, &d.buffer, "triangle vertices", wgpu.BufferUsageVertex, common.SliceToBytes(d.vertices[:])); err != nil {
		return fmt.Errorf("triangle: %w", err)
	}

	pass := beginPass(f, "triangle pass", colorAttachment(f.View, nil, &black))
	pass.SetPipeline(built.Pipeline)
	pass.SetVertexBuffer(0, d.buffer, 0, wgpu.WholeSize)
	pass.Draw(uint32(len(d.vertices)), 1, 0, 0)
	pass.End()
	return nil
}

func (d *triangle) Release() {
	releaseBuffers(&d.buffer)
	d.release()
}
