package pipeline

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/state"
	"github.com/cogentcore/webgpu/wgpu"
)

// ColorTarget describes one color attachment a pipeline writes.
type ColorTarget struct {
	Format    wgpu.TextureFormat
	WriteMask wgpu.ColorWriteMask
}

// pipeline is the implementation of the Pipeline interface.
// It holds the fixed-function configuration of a render pipeline; the shader and fill mode
// are supplied at build time because they change over the demo's lifetime.
type pipeline struct {
	// pipelineKey labels the GPU objects created from this configuration
	pipelineKey string

	targets      []ColorTarget
	sampleCount  uint32
	blendEnabled bool
	blendState   *wgpu.BlendState
	cullMode     wgpu.CullMode
	topology     wgpu.PrimitiveTopology
	frontFace    wgpu.FrontFace
}

// Pipeline is the fixed-function configuration of a render pipeline: color targets, blending,
// multisampling, culling and the base topology used in fill mode.
type Pipeline interface {
	// PipelineKey returns the label used for GPU objects created from this configuration.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Targets returns the color targets in attachment order.
	//
	// Returns:
	//   - []ColorTarget: the color targets
	Targets() []ColorTarget

	// SampleCount returns the multisample count.
	//
	// Returns:
	//   - uint32: the sample count, 1 when multisampling is off
	SampleCount() uint32

	// BlendEnabled returns whether blending is applied to every target.
	//
	// Returns:
	//   - bool: true if blending is enabled
	BlendEnabled() bool

	// BlendState returns the blend state applied when blending is enabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Topology returns the base primitive topology used in fill mode.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the base topology
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the winding order of front-facing primitives.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding
	FrontFace() wgpu.FrontFace

	// Descriptor assembles the render pipeline descriptor for a shader, layout and fill mode.
	// It performs no GPU calls.
	//
	// Parameters:
	//   - sh: the shader providing module, entry points and vertex layouts
	//   - layout: the pipeline layout
	//   - mode: the fill mode, mapped onto the topology by TopologyFor
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor
	Descriptor(sh shader.Shader, layout *wgpu.PipelineLayout, mode state.FillMode) *wgpu.RenderPipelineDescriptor
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline configuration with the given key and options.
// Defaults: no targets, sample count 1, triangle list, counter-clockwise front face, no culling,
// blending disabled with a standard alpha blend state ready to be enabled.
//
// Parameters:
//   - pipelineKey: the label for GPU objects built from this configuration
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		sampleCount:  1,
		blendEnabled: false,
		cullMode:     wgpu.CullModeNone,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		frontFace:    wgpu.FrontFaceCCW,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Targets() []ColorTarget {
	return p.targets
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) Descriptor(sh shader.Shader, layout *wgpu.PipelineLayout, mode state.FillMode) *wgpu.RenderPipelineDescriptor {
	targets := make([]wgpu.ColorTargetState, 0, len(p.targets))
	for _, t := range p.targets {
		ts := wgpu.ColorTargetState{
			Format:    t.Format,
			WriteMask: t.WriteMask,
		}
		if p.blendEnabled {
			ts.Blend = p.blendState
		}
		targets = append(targets, ts)
	}

	return &wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     sh.Module(),
			EntryPoint: sh.EntryPoint(shader.ShaderTypeVertex),
			Buffers:    sh.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     sh.Module(),
			EntryPoint: sh.EntryPoint(shader.ShaderTypeFragment),
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  TopologyFor(mode, p.topology),
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
}

// Built is a render pipeline together with the bind group layouts it was created with.
// Demos create their per-frame bind groups against BindGroupLayouts.
type Built struct {
	Pipeline         *wgpu.RenderPipeline
	BindGroupLayouts []*wgpu.BindGroupLayout
	layout           *wgpu.PipelineLayout
}

// Release releases the pipeline and its layouts.
func (b *Built) Release() {
	if b == nil {
		return
	}
	if b.Pipeline != nil {
		b.Pipeline.Release()
	}
	if b.layout != nil {
		b.layout.Release()
	}
	for _, l := range b.BindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
}

// Build creates the GPU render pipeline for p from the shader's reflected layouts.
// Groups missing between declared ones get empty layouts so indices line up.
//
// Parameters:
//   - device: the GPU device
//   - p: the pipeline configuration
//   - sh: the shader
//   - mode: the fill mode
//
// Returns:
//   - *Built: the pipeline and its bind group layouts
//   - error: error if any GPU object cannot be created
func Build(device *wgpu.Device, p Pipeline, sh shader.Shader, mode state.FillMode) (*Built, error) {
	descs := sh.BindGroupLayoutDescriptors()
	groups := make([]int, 0, len(descs))
	for g := range descs {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	count := 0
	if len(groups) > 0 {
		count = groups[len(groups)-1] + 1
	}

	built := &Built{BindGroupLayouts: make([]*wgpu.BindGroupLayout, count)}
	for g := range count {
		desc := descs[g]
		desc.Label = fmt.Sprintf("%s group %d", p.PipelineKey(), g)
		layout, err := device.CreateBindGroupLayout(&desc)
		if err != nil {
			built.Release()
			return nil, fmt.Errorf("failed to create bind group layout for group %d of %s: %w", g, sh.Name(), err)
		}
		built.BindGroupLayouts[g] = layout
	}

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: built.BindGroupLayouts,
	})
	if err != nil {
		built.Release()
		return nil, fmt.Errorf("failed to create pipeline layout for %s: %w", sh.Name(), err)
	}
	built.layout = layout

	created, err := device.CreateRenderPipeline(p.Descriptor(sh, layout, mode))
	if err != nil {
		built.Release()
		return nil, fmt.Errorf("failed to create render pipeline for %s: %w", sh.Name(), err)
	}
	built.Pipeline = created
	return built, nil
}
