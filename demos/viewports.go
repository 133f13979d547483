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

// viewports draws the same lines into four viewports whose shared corner follows the mouse.
// Only the first pass clears the screen.
type viewports struct {
	base

	uniformBuffer *wgpu.Buffer
}

var _ demo.Demo = &viewports{}

// NewViewports creates the viewport quadrant demo.
//
// Parameters:
//   - loader: the shader loader
//
// Returns:
//   - demo.Demo: the demo
//   - error: error if viewports.wgsl cannot be loaded
func NewViewports(loader state.Loader[shader.Shader]) (demo.Demo, error) {
	b, err := newBase("viewports", loader)
	if err != nil {
		return nil, err
	}
	return &viewports{base: b}, nil
}

func (d *viewports) Render(r renderer.Renderer, f *renderer.Frame) error {
	built, err := d.ensure(r, pipeline.NewPipeline(d.name,
		pipeline.WithColorTarget(f.Format, wgpu.ColorWriteMaskAll),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
	))
	if err != nil {
		return err
	}

	uniforms := lineUniforms{
		Resolution: [2]float32{float32(f.Width), float32(f.Height)},
		Time:       float32(d.common.Time().Seconds()),
		Count:      lineVertices,
	}
	if err := upload(r, &d.uniformBuffer, "viewports uniforms", wgpu.BufferUsageUniform, common.StructToBytes(&uniforms)); err != nil {
		return fmt.Errorf("viewports: %w", err)
	}

	bg, err := bindGroup(f, r, built, "viewports bind group", bufferEntry(0, d.uniformBuffer))
	if err != nil {
		return err
	}

	for i, q := range quadrants(f.Width, f.Height, r.Mouse()) {
		// Only the first pass clears.
		background := &black
		if i > 0 {
			background = nil
		}
		pass := beginPass(f, fmt.Sprintf("viewports pass %d", i), colorAttachment(f.View, nil, background))
		pass.SetPipeline(built.Pipeline)
		pass.SetViewport(q[0], q[1], q[2], q[3], 0, 1)
		pass.SetBindGroup(0, bg, nil)
		pass.Draw(lineVertices, 1, 0, 0)
		pass.End()
	}
	return nil
}

func (d *viewports) Release() {
	releaseBuffers(&d.uniformBuffer)
	d.release()
}
