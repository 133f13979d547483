package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslPrimitiveLayouts maps the host-shareable WGSL scalar, vector and matrix type names to
// their size and alignment. Both the long form ("vec3<f32>") and the short alias ("vec3f")
// are present.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayouts = primitiveLayouts()

func primitiveLayouts() map[string]wgslTypeLayout {
	out := map[string]wgslTypeLayout{}
	scalars := map[string]string{"f32": "f", "i32": "i", "u32": "u"}

	vec := func(n uint64) wgslTypeLayout {
		if n == 2 {
			return wgslTypeLayout{size: 8, align: 8}
		}
		return wgslTypeLayout{size: 4 * n, align: 16}
	}

	for scalar, suffix := range scalars {
		out[scalar] = wgslTypeLayout{size: 4, align: 4}
		for n := uint64(2); n <= 4; n++ {
			out[fmt.Sprintf("vec%d<%s>", n, scalar)] = vec(n)
			out[fmt.Sprintf("vec%d%s", n, suffix)] = vec(n)
		}
	}
	out["bool"] = wgslTypeLayout{size: 4, align: 4}

	// matCxR is C columns of vecR, each padded to the column alignment.
	for cols := uint64(2); cols <= 4; cols++ {
		for rows := uint64(2); rows <= 4; rows++ {
			column := vec(rows)
			layout := wgslTypeLayout{size: cols * column.stride(), align: column.align}
			out[fmt.Sprintf("mat%dx%d<f32>", cols, rows)] = layout
			out[fmt.Sprintf("mat%dx%df", cols, rows)] = layout
		}
	}
	return out
}

// roundUpAlign rounds value up to the next multiple of alignment, which must be zero or a
// power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// stride is the distance between consecutive elements of this type in an array.
func (l wgslTypeLayout) stride() uint64 {
	return roundUpAlign(l.align, l.size)
}

// arrayParams splits "array<T, N>" into its element type and count text. count is empty
// for a runtime-sized array. ok is false if typeName is not an array.
func arrayParams(typeName string) (elem, count string, ok bool) {
	base, params := splitTypeParams(typeName)
	if base != "array" || params == "" {
		return "", "", false
	}
	parts := splitAtTopLevelCommas(params)
	elem = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		count = strings.TrimSpace(parts[1])
	}
	return elem, count, true
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment.
//
// A runtime-sized array resolves to a single element stride, which is the smallest binding
// that holds anything useful.
//
// Parameters:
//   - typeName: the WGSL type, e.g. "f32", "Uniforms", "array<vec4<f32>, 4>"
//   - knownTypes: struct layouts resolved so far, may be nil
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false if the type or its element type is unknown
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayouts[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	elemType, countText, ok := arrayParams(typeName)
	if !ok {
		return wgslTypeLayout{}, false
	}
	elem, ok := resolveTypeLayout(elemType, knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	if countText == "" {
		return wgslTypeLayout{size: elem.stride(), align: elem.align}, true
	}
	count, err := strconv.ParseUint(countText, 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	return wgslTypeLayout{size: count * elem.stride(), align: elem.align}, true
}

// layout computes the size and alignment of the struct. Builtin fields are skipped since they
// never live in a buffer. A trailing runtime-sized array counts as one element.
func (ps parsedStruct) layout(knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	var offset uint64
	align := uint64(1)

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fl.align, offset) + fl.size
		align = max(align, fl.align)
	}

	return wgslTypeLayout{size: roundUpAlign(align, offset), align: align}, true
}

// computeStructSizes resolves the layout of every struct. Structs may use each other as field
// types in any declaration order, so resolution repeats until a pass makes no progress.
// Structs that never resolve are absent from the result.
//
// Parameters:
//   - structs: the parsed struct blocks
//
// Returns:
//   - map[string]wgslTypeLayout: struct name to layout
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	pending := append([]parsedStruct(nil), structs...)

	for len(pending) > 0 {
		var unresolved []parsedStruct
		for _, ps := range pending {
			if l, ok := ps.layout(resolved); ok {
				resolved[ps.name] = l
			} else {
				unresolved = append(unresolved, ps)
			}
		}
		if len(unresolved) == len(pending) {
			break
		}
		pending = unresolved
	}
	return resolved
}

// classifyResource builds the layout entry for one module-scope resource variable.
//
// Parameters:
//   - binding: the @binding index
//   - visibility: the stages that see the resource
//   - addressSpace: the var<...> qualifier, e.g. "uniform" or "storage, read_write"; empty
//     for textures and samplers
//   - typeName: the declared WGSL type
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the entry with its buffer, sampler or texture layout set
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}

	space, access, _ := strings.Cut(addressSpace, ",")
	switch strings.TrimSpace(space) {
	case "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		return entry
	case "storage":
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.TrimSpace(access) == "read_write" {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
		return entry
	}

	base, params := splitTypeParams(typeName)
	switch {
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(base, "texture_storage_"):
		entry.StorageTexture.ViewDimension = wgslStorageTextureDimMap[base]
		format, access, _ := strings.Cut(params, ",")
		entry.StorageTexture.Format = wgslTexelFormatMap[strings.TrimSpace(format)]
		entry.StorageTexture.Access = wgslStorageAccessMap[strings.TrimSpace(access)]
	case strings.HasPrefix(base, "texture_"):
		info := wgslSampledTextureMap[base]
		entry.Texture.ViewDimension = info.viewDimension
		entry.Texture.Multisampled = info.multisampled
		if strings.HasPrefix(base, "texture_depth_") {
			entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		} else {
			entry.Texture.SampleType = wgslSampleTypeMap[params]
		}
	}
	return entry
}

// isWritable reports whether the shader can write through the binding.
func isWritable(entry wgpu.BindGroupLayoutEntry) bool {
	return entry.Buffer.Type == wgpu.BufferBindingTypeStorage ||
		entry.StorageTexture.Access == wgpu.StorageTextureAccessWriteOnly ||
		entry.StorageTexture.Access == wgpu.StorageTextureAccessReadWrite
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32"). A type without
// parameters comes back unchanged with empty params.
func splitTypeParams(typeName string) (base, params string) {
	base, rest, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return base, strings.TrimSpace(strings.TrimSuffix(rest, ">"))
}

// stripComments removes // line comments and nestable /* */ block comments from WGSL source.
// Newlines are kept so later line-based scanning sees the same line structure.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))

	depth := 0
	for i := 0; i < len(source); i++ {
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}

		switch {
		case source[i] == '/' && next == '*':
			depth++
			i++
		case depth > 0 && source[i] == '*' && next == '/':
			depth--
			i++
		case depth == 0 && source[i] == '/' && next == '/':
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				return sb.String()
			}
			i += end - 1
		case depth == 0 || source[i] == '\n':
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// isVertexInputStruct reports whether the struct reads vertex attributes: it has at least one
// @location field and no builtins. Vertex outputs carry @builtin(position) and are excluded.
func isVertexInputStruct(ps parsedStruct) bool {
	located := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		located = located || f.location >= 0
	}
	return located
}

// buildVertexBufferLayout packs the struct's fields tightly, in declaration order, into one
// per-vertex buffer layout.
//
// Parameters:
//   - ps: a vertex input struct
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout
//   - bool: false if a field type has no vertex format
func buildVertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{
		StepMode:   wgpu.VertexStepModeVertex,
		Attributes: make([]wgpu.VertexAttribute, 0, len(ps.fields)),
	}

	for _, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		})
		layout.ArrayStride += info.size
	}
	return layout, true
}

// splitAtTopLevelCommas splits s at commas outside angle brackets, so "a: array<f32, 4>, b: u32"
// yields two parts.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range s {
		switch {
		case c == '<':
			depth++
		case c == '>' && depth > 0:
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
