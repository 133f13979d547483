package shader

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps the WGSL scalar and vector types usable as vertex attributes to
// their wgpu vertex format and byte size.
var wgslVertexFormatMap = vertexFormats()

func vertexFormats() map[string]vertexFormatInfo {
	byScalar := map[string][4]wgpu.VertexFormat{
		"f32": {wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4},
		"i32": {wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4},
		"u32": {wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4},
	}

	out := make(map[string]vertexFormatInfo, 21)
	for scalar, formats := range byScalar {
		out[scalar] = vertexFormatInfo{formats[0], 4}
		for n := 2; n <= 4; n++ {
			info := vertexFormatInfo{formats[n-1], uint64(4 * n)}
			out[fmt.Sprintf("vec%d<%s>", n, scalar)] = info
			out[fmt.Sprintf("vec%d%c", n, scalar[0])] = info
		}
	}
	return out
}

// wgslSampledTextureMap maps WGSL sampled texture base names to their view dimension and multisampled flag
var wgslSampledTextureMap = map[string]sampledTextureInfo{
	"texture_1d":                    {wgpu.TextureViewDimension1D, false},
	"texture_2d":                    {wgpu.TextureViewDimension2D, false},
	"texture_2d_array":              {wgpu.TextureViewDimension2DArray, false},
	"texture_3d":                    {wgpu.TextureViewDimension3D, false},
	"texture_cube":                  {wgpu.TextureViewDimensionCube, false},
	"texture_cube_array":            {wgpu.TextureViewDimensionCubeArray, false},
	"texture_multisampled_2d":       {wgpu.TextureViewDimension2D, true},
	"texture_depth_2d":              {wgpu.TextureViewDimension2D, false},
	"texture_depth_2d_array":        {wgpu.TextureViewDimension2DArray, false},
	"texture_depth_cube":            {wgpu.TextureViewDimensionCube, false},
	"texture_depth_cube_array":      {wgpu.TextureViewDimensionCubeArray, false},
	"texture_depth_multisampled_2d": {wgpu.TextureViewDimension2D, true},
}

// wgslStorageTextureDimMap maps WGSL storage texture base names to their view dimension
var wgslStorageTextureDimMap = map[string]wgpu.TextureViewDimension{
	"texture_storage_1d":       wgpu.TextureViewDimension1D,
	"texture_storage_2d":       wgpu.TextureViewDimension2D,
	"texture_storage_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_storage_3d":       wgpu.TextureViewDimension3D,
}

// wgslSampleTypeMap maps WGSL scalar type parameters to their wgpu texture sample type
var wgslSampleTypeMap = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// wgslStorageAccessMap maps WGSL access mode keywords to their wgpu storage texture access
var wgslStorageAccessMap = map[string]wgpu.StorageTextureAccess{
	"write":      wgpu.StorageTextureAccessWriteOnly,
	"read":       wgpu.StorageTextureAccessReadOnly,
	"read_write": wgpu.StorageTextureAccessReadWrite,
}

// wgslTexelFormatMap maps WGSL texel format strings to their corresponding wgpu texture formats.
// These are the formats valid for storage textures as defined by WGSL.
var wgslTexelFormatMap = map[string]wgpu.TextureFormat{
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
	"rgba8snorm":  wgpu.TextureFormatRGBA8Snorm,
	"rgba8uint":   wgpu.TextureFormatRGBA8Uint,
	"rgba8sint":   wgpu.TextureFormatRGBA8Sint,
	"rgba16uint":  wgpu.TextureFormatRGBA16Uint,
	"rgba16sint":  wgpu.TextureFormatRGBA16Sint,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"r32uint":     wgpu.TextureFormatR32Uint,
	"r32sint":     wgpu.TextureFormatR32Sint,
	"r32float":    wgpu.TextureFormatR32Float,
	"rg32uint":    wgpu.TextureFormatRG32Uint,
	"rg32sint":    wgpu.TextureFormatRG32Sint,
	"rg32float":   wgpu.TextureFormatRG32Float,
	"rgba32uint":  wgpu.TextureFormatRGBA32Uint,
	"rgba32sint":  wgpu.TextureFormatRGBA32Sint,
	"rgba32float": wgpu.TextureFormatRGBA32Float,
	"bgra8unorm":  wgpu.TextureFormatBGRA8Unorm,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> u: Uniforms;
	// or handle types: @group(0) @binding(1) var src: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseVertexLayouts extracts vertex buffer layouts from WGSL source code.
// Each struct-typed parameter of the vertex entry point that is a pure vertex input
// (@location fields, no @builtin fields) becomes one buffer layout, in parameter order,
// which is also the buffer slot order used by SetVertexBuffer. Structs whose name ends in
// "Instance" step per instance; all others step per vertex. Structs containing unrecognized
// WGSL types are skipped.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []wgpu.VertexBufferLayout: one layout per vertex input struct
func parseVertexLayouts(source string) []wgpu.VertexBufferLayout {
	cleaned := stripComments(source)
	entry := parseEntryPoint(cleaned, ShaderTypeVertex)
	if entry == "" {
		return nil
	}

	structs := make(map[string]parsedStruct)
	for _, ps := range parseStructBlocks(cleaned) {
		structs[ps.name] = ps
	}

	var result []wgpu.VertexBufferLayout
	for _, typeName := range entryParamTypes(cleaned, entry) {
		ps, ok := structs[typeName]
		if !ok || !isVertexInputStruct(ps) {
			continue
		}
		layout, ok := buildVertexBufferLayout(ps)
		if !ok {
			continue
		}
		if strings.HasSuffix(ps.name, "Instance") {
			layout.StepMode = wgpu.VertexStepModeInstance
		}
		result = append(result, layout)
	}

	return result
}

// entryParamTypes returns the declared type of each parameter of function fn, in order.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - fn: the function name
//
// Returns:
//   - []string: the parameter types, or nil if the function is not found
func entryParamTypes(source, fn string) []string {
	loc := regexp.MustCompile(`\bfn\s+` + regexp.QuoteMeta(fn) + `\s*\(`).FindStringIndex(source)
	if loc == nil {
		return nil
	}

	start := loc[1]
	depth := 1
	end := start
	for end < len(source) && depth > 0 {
		switch source[end] {
		case '(':
			depth++
		case ')':
			depth--
		}
		end++
	}
	if depth != 0 {
		return nil
	}

	var types []string
	for _, param := range splitAtTopLevelCommas(source[start : end-1]) {
		if fm := fieldRegex.FindStringSubmatch(strings.TrimSpace(param)); fm != nil {
			types = append(types, strings.TrimSpace(fm[2]))
		}
	}
	return types
}

// parseBindGroupLayouts extracts all @group(N) @binding(M) resource declarations from WGSL
// source and returns them as wgpu.BindGroupLayoutDescriptor values grouped by group index.
// Each descriptor's entries are sorted by binding index. A single file holds both stages, so
// every entry is visible to the vertex and fragment stages, except writable storage which
// WebGPU only permits in the fragment stage.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding index
func parseBindGroupLayouts(source string) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		typeName := strings.TrimSpace(match[5])

		entry := classifyResource(uint32(binding), wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, strings.TrimSpace(match[3]), typeName)
		if isWritable(entry) {
			entry.Visibility = wgpu.ShaderStageFragment
		}

		// MinBindingSize lets pipeline creation reject undersized buffers up front.
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok && layout.size > 0 {
				entry.Buffer.MinBindingSize = layout.size
			}
		}

		groups[group] = append(groups[group], entry)
		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		varNames[group][binding] = match[4]
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return cmp.Compare(a.Binding, b.Binding)
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, varNames
}

// entryRegexes finds the first function annotated with each stage attribute.
var entryRegexes = map[ShaderType]*regexp.Regexp{
	ShaderTypeVertex:   regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`),
	ShaderTypeFragment: regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`),
}

// parseEntryPoint returns the name of the first @vertex or @fragment function in source, or
// an empty string if there is none.
func parseEntryPoint(source string, shaderType ShaderType) string {
	re, ok := entryRegexes[shaderType]
	if !ok {
		return ""
	}
	if match := re.FindStringSubmatch(stripComments(source)); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks parses every struct declaration in comment-free WGSL source.
func parseStructBlocks(source string) []parsedStruct {
	var structs []parsedStruct
	for _, match := range structBlockRegex.FindAllStringSubmatch(source, -1) {
		structs = append(structs, parsedStruct{name: match[1], fields: parseStructFields(match[2])})
	}
	return structs
}

// parseStructFields parses a struct body into its fields. A field without @location gets
// location -1.
func parseStructFields(body string) []parsedField {
	var fields []parsedField
	for _, decl := range splitAtTopLevelCommas(body) {
		fm := fieldRegex.FindStringSubmatch(strings.TrimSpace(decl))
		if fm == nil {
			continue
		}

		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(decl),
		}
		if lm := locationRegex.FindStringSubmatch(decl); lm != nil {
			field.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, field)
	}
	return fields
}
