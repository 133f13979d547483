package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedbackSource = `
struct Uniforms {
    time: f32,
    mouse: vec2<f32>,
};

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var src: texture_2d<f32>;
@group(0) @binding(2) var dst: texture_storage_2d<rgba16float, write>;
@group(0) @binding(3) var smp: sampler;

/* block comment @group(9) @binding(9) var<uniform> ghost: Uniforms; */

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main(@builtin(position) p: vec4<f32>) -> @location(0) vec4<f32> {
    return textureSample(src, smp, p.xy);
}
`

func TestParseBindGroupLayouts(t *testing.T) {
	layouts, names := parseBindGroupLayouts(feedbackSource)
	require.Len(t, layouts, 1)
	entries := layouts[0].Entries
	require.Len(t, entries, 4)

	both := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[0].Buffer.Type)
	assert.Equal(t, uint64(16), entries[0].Buffer.MinBindingSize)
	assert.Equal(t, both, entries[0].Visibility)

	assert.Equal(t, wgpu.TextureSampleTypeFloat, entries[1].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, entries[1].Texture.ViewDimension)

	assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, entries[2].StorageTexture.Access)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, entries[2].StorageTexture.Format)
	assert.Equal(t, wgpu.ShaderStageFragment, entries[2].Visibility, "writable storage is fragment-only")

	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, entries[3].Sampler.Type)

	assert.Equal(t, "dst", names[0][2])
	_, ghost := layouts[9]
	assert.False(t, ghost, "commented-out declarations are ignored")
}

func TestParseVertexLayoutsFollowsEntryParams(t *testing.T) {
	src := `
struct GridInstance {
    @location(1) col0: vec4<f32>,
    @location(2) col1: vec4<f32>,
};

struct Vertex {
    @location(0) pos: vec2<f32>,
};

struct FragOut {
    @location(0) screen: vec4<f32>,
    @location(1) offscreen: vec4<f32>,
};

@vertex
fn vs_main(v: Vertex, inst: GridInstance, @builtin(instance_index) ii: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(v.pos, 0.0, 1.0);
}

@fragment
fn fs_main() -> FragOut {
    var o: FragOut;
    return o;
}
`
	layouts := parseVertexLayouts(src)
	require.Len(t, layouts, 2, "fragment output structs are not vertex buffers")

	assert.Equal(t, uint64(8), layouts[0].ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layouts[0].StepMode)

	assert.Equal(t, uint64(32), layouts[1].ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, layouts[1].StepMode)
	require.Len(t, layouts[1].Attributes, 2)
	assert.Equal(t, uint32(2), layouts[1].Attributes[1].ShaderLocation)
	assert.Equal(t, uint64(16), layouts[1].Attributes[1].Offset)
}

func TestParseEntryPoint(t *testing.T) {
	assert.Equal(t, "vs_main", parseEntryPoint(feedbackSource, ShaderTypeVertex))
	assert.Equal(t, "fs_main", parseEntryPoint(feedbackSource, ShaderTypeFragment))
	assert.Equal(t, "", parseEntryPoint("fn helper() {}", ShaderTypeVertex))
}

func TestResolveTypeLayoutArrays(t *testing.T) {
	layout, ok := resolveTypeLayout("array<vec4<f32>, 4>", nil)
	require.True(t, ok)
	assert.Equal(t, uint64(64), layout.size)

	structs := parseStructBlocks(`struct QuadUniforms { viewport: vec2<f32>, mouse: vec2<f32>, quad: array<vec4<f32>, 4>, time: f32, threshold: f32, }`)
	sizes := computeStructSizes(structs)
	assert.Equal(t, uint64(96), sizes["QuadUniforms"].size)
}

func TestStripCommentsKeepsLines(t *testing.T) {
	src := "a // one\n/* b /* nested */ c\n*/d\ne"
	assert.Equal(t, "a \n\nd\ne", stripComments(src))
}

func TestPrimitiveLayouts(t *testing.T) {
	assert.Equal(t, wgslTypeLayout{size: 48, align: 16}, wgslPrimitiveLayouts["mat3x3<f32>"])
	assert.Equal(t, wgslTypeLayout{size: 24, align: 8}, wgslPrimitiveLayouts["mat3x2f"])
	assert.Equal(t, wgslTypeLayout{size: 12, align: 16}, wgslPrimitiveLayouts["vec3u"])
	assert.Equal(t, vertexFormatInfo{wgpu.VertexFormatSint32x3, 12}, wgslVertexFormatMap["vec3i"])
}
