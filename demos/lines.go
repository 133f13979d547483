package demos

import "github.com/Carmen-Shannon/oxy-lab/common"

// lineVertices is the vertex count of the line demos: 32 line segments generated in the
// vertex shader from the vertex index.
const lineVertices = 64

// lineUniforms mirrors the Uniforms struct in msaa.wgsl and viewports.wgsl.
type lineUniforms struct {
	Resolution [2]float32
	Time       float32
	Count      uint32
}

// quadrants splits a width x height surface into four viewports meeting at mouse, in the
// order top left, top right, bottom left, bottom right. The split point is kept at least one
// pixel inside the surface so no viewport is empty.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//   - mouse: the split point in framebuffer pixels
//
// Returns:
//   - [4][4]float32: x, y, width and height of each viewport
func quadrants(width, height uint32, mouse [2]float32) [4][4]float32 {
	w, h := float32(width), float32(height)
	mx := common.Clamp(mouse[0], 1, max(w-1, 1))
	my := common.Clamp(mouse[1], 1, max(h-1, 1))
	return [4][4]float32{
		{0, 0, mx, my},
		{mx, 0, w - mx, my},
		{0, my, mx, h - my},
		{mx, my, w - mx, h - my},
	}
}

// halves splits a surface width into the scissor rect x offsets and widths of its left and
// right halves. An odd pixel goes to the right half.
//
// Returns:
//   - [2][2]uint32: x and width of the left and right halves
func halves(width uint32) [2][2]uint32 {
	left := width / 2
	return [2][2]uint32{{0, left}, {left, width - left}}
}
