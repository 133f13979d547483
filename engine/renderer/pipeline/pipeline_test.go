package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/state"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShader struct {
	layouts []wgpu.VertexBufferLayout
}

func (f *fakeShader) Name() string { return "fake.wgsl" }
func (f *fakeShader) Path() string { return "/shaders/fake.wgsl" }
func (f *fakeShader) Source() string { return "" }
func (f *fakeShader) Module() *wgpu.ShaderModule { return nil }
func (f *fakeShader) BindGroupVarName(int, int) string { return "" }
func (f *fakeShader) VertexLayouts() []wgpu.VertexBufferLayout { return f.layouts }
func (f *fakeShader) Release() {}

func (f *fakeShader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return nil
}
func (f *fakeShader) EntryPoint(stage shader.ShaderType) string {
	if stage == shader.ShaderTypeVertex {
		return "vs_main"
	}
	return "fs_main"
}

func TestTopologyFor(t *testing.T) {
	cases := []struct {
		mode state.FillMode
		base wgpu.PrimitiveTopology
		want wgpu.PrimitiveTopology
	}{
		{state.FillModeFill, wgpu.PrimitiveTopologyTriangleList, wgpu.PrimitiveTopologyTriangleList},
		{state.FillModeFill, wgpu.PrimitiveTopologyLineList, wgpu.PrimitiveTopologyLineList},
		{state.FillModeLine, wgpu.PrimitiveTopologyTriangleList, wgpu.PrimitiveTopologyLineList},
		{state.FillModeLine, wgpu.PrimitiveTopologyTriangleStrip, wgpu.PrimitiveTopologyLineStrip},
		{state.FillModeLine, wgpu.PrimitiveTopologyPointList, wgpu.PrimitiveTopologyPointList},
		{state.FillModePoint, wgpu.PrimitiveTopologyTriangleStrip, wgpu.PrimitiveTopologyPointList},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TopologyFor(c.mode, c.base), "%v over %v", c.mode, c.base)
	}
}

func TestDescriptor(t *testing.T) {
	p := NewPipeline("targets",
		WithColorTarget(wgpu.TextureFormatBGRA8Unorm, wgpu.ColorWriteMaskAll),
		WithColorTarget(wgpu.TextureFormatBGRA8Unorm, wgpu.ColorWriteMaskGreen|wgpu.ColorWriteMaskBlue),
		WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		WithSampleCount(4),
	)
	sh := &fakeShader{layouts: []wgpu.VertexBufferLayout{{ArrayStride: 8}}}

	desc := p.Descriptor(sh, nil, state.FillModeLine)
	assert.Equal(t, "targets Render Pipeline", desc.Label)
	assert.Equal(t, "vs_main", desc.Vertex.EntryPoint)
	assert.Len(t, desc.Vertex.Buffers, 1)
	require.NotNil(t, desc.Fragment)
	assert.Equal(t, "fs_main", desc.Fragment.EntryPoint)
	require.Len(t, desc.Fragment.Targets, 2)
	assert.Equal(t, wgpu.ColorWriteMaskGreen|wgpu.ColorWriteMaskBlue, desc.Fragment.Targets[1].WriteMask)
	assert.Nil(t, desc.Fragment.Targets[0].Blend)
	assert.Equal(t, wgpu.PrimitiveTopologyLineStrip, desc.Primitive.Topology)
	assert.Equal(t, uint32(4), desc.Multisample.Count)
	assert.Equal(t, uint32(0xFFFFFFFF), desc.Multisample.Mask)
}

func TestDescriptorBlend(t *testing.T) {
	p := NewPipeline("blend",
		WithColorTarget(wgpu.TextureFormatRGBA8Unorm, wgpu.ColorWriteMaskAll),
		WithBlendEnabled(true),
		WithSampleCount(0),
	)
	desc := p.Descriptor(&fakeShader{}, nil, state.FillModeFill)
	require.NotNil(t, desc.Fragment.Targets[0].Blend)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, desc.Fragment.Targets[0].Blend.Color.SrcFactor)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
}
