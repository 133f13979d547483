package demos

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-lab/engine/demo"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/state"
)

// Constructor creates one demo, loading its shader through loader.
type Constructor func(loader state.Loader[shader.Shader]) (demo.Demo, error)

// All is every demo in the order P and N step through them.
var All = []Constructor{
	NewTriangle,
	NewInstances,
	NewQuad,
	NewTargets,
	NewMSAA,
	NewViewports,
	NewFeedback,
	NewGrid,
}

// Load constructs the given demos in order. If one fails, the demos created before it are
// released and the error is returned.
//
// Parameters:
//   - loader: the shader loader every demo loads its WGSL file through
//   - constructors: the demos to create, usually All
//
// Returns:
//   - []demo.Demo: the demos in order
//   - error: the first construction error
func Load(loader state.Loader[shader.Shader], constructors ...Constructor) ([]demo.Demo, error) {
	out := make([]demo.Demo, 0, len(constructors))
	for i, c := range constructors {
		d, err := c(loader)
		if err != nil {
			for _, created := range out {
				created.Release()
			}
			return nil, fmt.Errorf("failed to create demo %d: %w", i, err)
		}
		log.Printf("demos: loaded %d %s", i, d.Name())
		out = append(out, d)
	}
	return out, nil
}
