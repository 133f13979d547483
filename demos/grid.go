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

// gridCells is the number of cells along each axis of the grid.
const gridCells = 16

// gridUniforms mirrors the Uniforms struct in grid.wgsl.
type gridUniforms struct {
	Mouse [2]float32
	Time  float32
	Cells uint32
}

// gridQuad is the unit quad every cell instance is drawn from, two triangles.
var gridQuad = [6][2]float32{{-1, -1}, {1, 1}, {-1, 1}, {1, 1}, {-1, -1}, {1, -1}}

// grid draws gridCells x gridCells instanced quads. Each instance samples its own layer of a
// texture array holding one generated 1x1 texel per cell. Space marks the demo dirty, which
// rebuilds the pipeline and uploads the texels again.
type grid struct {
	base

	texture       *renderer.Texture
	sampler       *wgpu.Sampler
	vertexBuffer  *wgpu.Buffer
	affineBuffer  *wgpu.Buffer
	uniformBuffer *wgpu.Buffer
}

var _ demo.Demo = &grid{}

// NewGrid creates the texture grid demo.
//
// Parameters:
//   - loader: the shader loader
//
// Returns:
//   - demo.Demo: the demo
//   - error: error if grid.wgsl cannot be loaded
func NewGrid(loader state.Loader[shader.Shader]) (demo.Demo, error) {
	b, err := newBase("grid", loader)
	if err != nil {
		return nil, err
	}
	return &grid{base: b}, nil
}

func (d *grid) HandleKey(keyCode uint32) {
	if keyCode == common.KeySpace {
		d.common.MarkDirty()
	}
}

// gridTexel returns the color of cell i, counted row by row from the bottom left.
func gridTexel(i int) [4]byte {
	col, row := i%gridCells, i/gridCells
	return [4]byte{
		byte(common.Clamp(col*256/gridCells, 0, 255)),
		byte(common.Clamp(row*256/gridCells, 0, 255)),
		0,
		100,
	}
}

// gridAffines returns the per-instance transforms in the same order as gridTexel.
func gridAffines() [][12]float32 {
	out := make([][12]float32, gridCells*gridCells)
	for i := range out {
		out[i] = common.GridCellAffine(i%gridCells, i/gridCells, gridCells)
	}
	return out
}

func (d *grid) Render(r renderer.Renderer, f *renderer.Frame) error {
	reupload := d.common.Dirty() || d.texture == nil

	built, err := d.ensure(r, pipeline.NewPipeline(d.name,
		pipeline.WithColorTarget(f.Format, wgpu.ColorWriteMaskAll),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
	))
	if err != nil {
		return err
	}

	if err := d.ensureResources(r); err != nil {
		return err
	}
	if reupload {
		if err := d.uploadTexels(r); err != nil {
			return err
		}
	}

	uniforms := gridUniforms{
		Mouse: r.Mouse(),
		Time:  float32(d.common.Time().Seconds()),
		Cells: gridCells,
	}
	r.WriteBuffer(d.uniformBuffer, 0, common.StructToBytes(&uniforms))

	bg, err := bindGroup(f, r, built, "grid bind group",
		bufferEntry(0, d.uniformBuffer),
		bufferEntry(1, d.affineBuffer),
		wgpu.BindGroupEntry{Binding: 2, TextureView: d.texture.View},
		wgpu.BindGroupEntry{Binding: 3, Sampler: d.sampler},
	)
	if err != nil {
		return err
	}

	background := wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	pass := beginPass(f, "grid pass", colorAttachment(f.View, nil, &background))
	pass.SetPipeline(built.Pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.SetVertexBuffer(0, d.vertexBuffer, 0, wgpu.WholeSize)
	pass.Draw(uint32(len(gridQuad)), gridCells*gridCells, 0, 0)
	pass.End()
	return nil
}

// ensureResources creates the static buffers, the texture array and the sampler once.
func (d *grid) ensureResources(r renderer.Renderer) error {
	var err error
	if d.vertexBuffer == nil {
		if d.vertexBuffer, err = r.CreateBuffer("grid quad", wgpu.BufferUsageVertex, common.SliceToBytes(gridQuad[:])); err != nil {
			return fmt.Errorf("grid: %w", err)
		}
	}
	if d.affineBuffer == nil {
		if d.affineBuffer, err = r.CreateBuffer("grid affines", wgpu.BufferUsageStorage, common.SliceToBytes(gridAffines())); err != nil {
			return fmt.Errorf("grid: %w", err)
		}
	}
	if d.uniformBuffer == nil {
		if d.uniformBuffer, err = r.CreateBuffer("grid uniforms", wgpu.BufferUsageUniform, common.StructToBytes(&gridUniforms{})); err != nil {
			return fmt.Errorf("grid: %w", err)
		}
	}
	if d.sampler == nil {
		if d.sampler, err = r.CreateSampler("grid sampler", common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			MagFilter:    wgpu.FilterModeNearest,
			MinFilter:    wgpu.FilterModeNearest,
			MipmapFilter: wgpu.MipmapFilterModeNearest,
		}); err != nil {
			return fmt.Errorf("grid: failed to create sampler: %w", err)
		}
	}
	if d.texture == nil {
		if d.texture, err = r.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "grid texels",
			Size:          wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: gridCells * gridCells},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        wgpu.TextureFormatRGBA8Unorm,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		}); err != nil {
			return fmt.Errorf("grid: %w", err)
		}
	}
	return nil
}

func (d *grid) uploadTexels(r renderer.Renderer) error {
	for i := range gridCells * gridCells {
		texel := gridTexel(i)
		if err := r.WriteTextureLayer(d.texture, uint32(i), common.TextureStagingData{
			Pixels: texel[:],
			Width:  1,
			Height: 1,
		}); err != nil {
			return fmt.Errorf("grid: failed to upload cell %d: %w", i, err)
		}
	}
	return nil
}

func (d *grid) Release() {
	d.texture.Release()
	d.texture = nil
	if d.sampler != nil {
		d.sampler.Release()
		d.sampler = nil
	}
	releaseBuffers(&d.vertexBuffer, &d.affineBuffer, &d.uniformBuffer)
	d.release()
}
