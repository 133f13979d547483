// Package demo defines the contract between the frame orchestrator and one rendering demo.
package demo

import (
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/state"
)

// Demo is one self-contained rendering demo. The orchestrator owns the frame: it hands the
// active demo the renderer and the acquired frame, and submits after Render returns.
type Demo interface {
	// Name returns the display name used in logs.
	Name() string

	// Common returns the demo's dirty-tracked shared state.
	Common() *state.CommonState[shader.Shader]

	// HandleKey receives a key press that the orchestrator did not consume.
	//
	// Parameters:
	//   - key: the key code
	HandleKey(key uint32)

	// HandleScroll receives a debounced scroll step.
	//
	// Parameters:
	//   - up: true for scroll up, false for scroll down
	HandleScroll(up bool)

	// HandleClick receives a left button press or release.
	//
	// Parameters:
	//   - pos: the cursor position in clip space
	//   - pressed: true on press, false on release
	HandleClick(pos [2]float32, pressed bool)

	// Render records the demo's passes for one frame. It rebuilds the pipeline first if the
	// common state is dirty and must not draw while it is.
	//
	// Parameters:
	//   - r: the renderer
	//   - f: the acquired frame
	//
	// Returns:
	//   - error: error if a GPU resource or the pipeline cannot be built
	Render(r renderer.Renderer, f *renderer.Frame) error

	// Release releases the demo's GPU resources.
	Release()
}
