package shader

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// validateSource runs WGSL through the naga front end. Parse and lowering failures are
// returned as errors; IR validation findings are returned as warnings because the GPU
// driver performs the authoritative check at compile time.
//
// Parameters:
//   - source: the WGSL source code
//
// Returns:
//   - map[ShaderType]string: the first vertex and fragment entry point names found in the module
//   - []string: validation findings
//   - error: error if the source does not parse or lower
func validateSource(source string) (map[ShaderType]string, []string, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, nil, err
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, nil, err
	}

	entryPoints := make(map[ShaderType]string)
	for _, ep := range module.EntryPoints {
		var stage ShaderType
		switch ep.Stage {
		case ir.StageVertex:
			stage = ShaderTypeVertex
		case ir.StageFragment:
			stage = ShaderTypeFragment
		default:
			continue
		}
		if _, ok := entryPoints[stage]; !ok {
			entryPoints[stage] = ep.Name
		}
	}

	var issues []string
	findings, err := naga.Validate(module)
	if err != nil {
		issues = append(issues, fmt.Sprintf("validation did not complete: %v", err))
	}
	for _, f := range findings {
		issues = append(issues, f.Error())
	}
	return entryPoints, issues, nil
}
