package shader

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoEntryPoint is returned when a shader source lacks a vertex or fragment entry point.
var ErrNoEntryPoint = errors.New("missing entry point")

// Compiler turns WGSL source into a GPU shader module. The renderer implements it.
type Compiler interface {
	// Compile creates a shader module from WGSL source.
	//
	// Parameters:
	//   - label: a debug label for the module
	//   - source: the WGSL source code
	//
	// Returns:
	//   - *wgpu.ShaderModule: the compiled module
	//   - error: error if the GPU rejects the source
	Compile(label, source string) (*wgpu.ShaderModule, error)
}

// Store loads shader sources by name from a directory.
type Store interface {
	// Load reads, validates, reflects and compiles the named shader.
	// Every failure is returned and names the offending file.
	//
	// Parameters:
	//   - name: the file name relative to the store directory, e.g. "triangle.wgsl"
	//
	// Returns:
	//   - Shader: the loaded shader
	//   - error: error if the file cannot be read, validated or compiled
	Load(name string) (Shader, error)

	// Reload is Load again. Nothing is cached between calls, so the current file contents are always used.
	//
	// Parameters:
	//   - name: the file name relative to the store directory
	//
	// Returns:
	//   - Shader: the freshly loaded shader
	//   - error: error if the file cannot be read, validated or compiled
	Reload(name string) (Shader, error)

	// Path resolves a shader name to the file it is read from.
	//
	// Parameters:
	//   - name: the file name relative to the store directory
	//
	// Returns:
	//   - string: the resolved, cleaned path
	Path(name string) string
}

// store is the implementation of the Store interface.
type store struct {
	dir      string
	compiler Compiler
	validate bool
}

var _ Store = &store{}

// NewStore creates a Store reading from dir.
//
// Parameters:
//   - dir: the shader directory
//   - options: functional options (compiler, validation)
//
// Returns:
//   - Store: the store
func NewStore(dir string, options ...StoreBuilderOption) Store {
	s := &store{
		dir:      dir,
		validate: true,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *store) Path(name string) string {
	return filepath.Clean(filepath.Join(s.dir, name))
}

func (s *store) Load(name string) (Shader, error) {
	path := s.Path(name)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	source := string(raw)

	entryPoints := map[ShaderType]string{
		ShaderTypeVertex:   parseEntryPoint(source, ShaderTypeVertex),
		ShaderTypeFragment: parseEntryPoint(source, ShaderTypeFragment),
	}
	if s.validate {
		checked, issues, err := validateSource(source)
		if err != nil {
			return nil, fmt.Errorf("invalid shader %s: %w", path, err)
		}
		for _, issue := range issues {
			log.Printf("shader: %s: %s", path, issue)
		}
		for stage, name := range checked {
			entryPoints[stage] = name
		}
	}
	for _, stage := range []ShaderType{ShaderTypeVertex, ShaderTypeFragment} {
		if entryPoints[stage] == "" {
			return nil, fmt.Errorf("shader %s: %w: %s", path, ErrNoEntryPoint, stage)
		}
	}

	layouts, varNames := parseBindGroupLayouts(source)

	sh := &shader{
		name:                       name,
		path:                       path,
		source:                     source,
		entryPoints:                entryPoints,
		bindGroupLayoutDescriptors: layouts,
		bindingVarNames:            varNames,
		vertexLayouts:              parseVertexLayouts(source),
	}

	if s.compiler != nil {
		module, err := s.compiler.Compile(name, source)
		if err != nil {
			return nil, fmt.Errorf("failed to compile shader %s: %w", path, err)
		}
		sh.module = module
	}

	return sh, nil
}

func (s *store) Reload(name string) (Shader, error) {
	return s.Load(name)
}
