package shader

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies a pipeline stage a shader source provides an entry point for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage of a render pipeline.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// shader is the implementation of the Shader interface.
// It is immutable once loaded; a reload produces a new value.
type shader struct {
	name                       string
	path                       string
	source                     string
	module                     *wgpu.ShaderModule
	entryPoints                map[ShaderType]string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
}

// Shader is a loaded, validated and compiled WGSL source file together with the reflection data
// needed to build a render pipeline from it. A Shader is a handle: reloading a file yields a
// new Shader and never mutates an existing one.
type Shader interface {
	// Name returns the name the shader was loaded under, relative to the store's directory.
	//
	// Returns:
	//   - string: the shader name, e.g. "triangle.wgsl"
	Name() string

	// Path returns the file the shader was read from.
	//
	// Returns:
	//   - string: the resolved file path
	Path() string

	// Source returns the WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// Module returns the compiled GPU shader module.
	//
	// Returns:
	//   - *wgpu.ShaderModule: the module, or nil when compiled by a compiler that does not produce one
	Module() *wgpu.ShaderModule

	// EntryPoint returns the entry point function name for the given stage.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//
	// Returns:
	//   - string: the entry point name, or empty if the source has none for that stage
	EntryPoint(stage ShaderType) string

	// BindGroupLayoutDescriptors returns the reflected bind group layouts keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable declared at the given group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or empty if nothing is declared there
	BindGroupVarName(group, binding int) string

	// VertexLayouts returns the reflected vertex buffer layouts in buffer slot order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: one layout per vertex input struct
	VertexLayouts() []wgpu.VertexBufferLayout

	// Release releases the GPU shader module.
	Release()
}

var _ Shader = &shader{}

func (s *shader) Name() string {
	return s.name
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Module() *wgpu.ShaderModule {
	return s.module
}

func (s *shader) EntryPoint(stage ShaderType) string {
	return s.entryPoints[stage]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if names, ok := s.bindingVarNames[group]; ok {
		return names[binding]
	}
	return ""
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Release() {
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}
