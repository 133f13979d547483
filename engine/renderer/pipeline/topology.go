package pipeline

import (
	"github.com/Carmen-Shannon/oxy-lab/engine/state"
	"github.com/cogentcore/webgpu/wgpu"
)

// TopologyFor maps a fill mode onto a primitive topology. WebGPU has no polygon mode, so
// line and point fill are emulated by drawing the same vertices as lines or points.
//
// Parameters:
//   - mode: the requested fill mode
//   - base: the topology the demo draws with in fill mode
//
// Returns:
//   - wgpu.PrimitiveTopology: the topology to build the pipeline with
func TopologyFor(mode state.FillMode, base wgpu.PrimitiveTopology) wgpu.PrimitiveTopology {
	switch mode {
	case state.FillModeLine:
		switch base {
		case wgpu.PrimitiveTopologyTriangleStrip, wgpu.PrimitiveTopologyLineStrip:
			return wgpu.PrimitiveTopologyLineStrip
		case wgpu.PrimitiveTopologyPointList:
			return base
		default:
			return wgpu.PrimitiveTopologyLineList
		}
	case state.FillModePoint:
		return wgpu.PrimitiveTopologyPointList
	default:
		return base
	}
}
