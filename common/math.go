package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// WindowToClip maps a window-space position (origin top-left, y down) to clip space
// (origin centre, y up, both axes in [-1, 1]). Positions outside the window are clamped to its
// edges. A zero-sized window maps everything to the origin.
//
// Parameters:
//   - pos: the position in framebuffer pixels
//   - width: the window width in pixels
//   - height: the window height in pixels
//
// Returns:
//   - [2]float32: the position in clip space
func WindowToClip(pos [2]float32, width, height uint32) [2]float32 {
	if width == 0 || height == 0 {
		return [2]float32{}
	}
	x := Clamp(pos[0]/float32(width), 0, 1)
	y := Clamp(pos[1]/float32(height), 0, 1)
	return [2]float32{2*x - 1, 1 - 2*y}
}

// Distance2 returns the euclidean distance between two 2D points.
func Distance2(a, b [2]float32) float32 {
	return math32.Hypot(a[0]-b[0], a[1]-b[1])
}

// GridCellAffine returns the column-major 3x3 affine transform (padded to vec4 columns) that
// scales a unit quad into cell (col, row) of a cells x cells grid covering clip space.
// The quad is shrunk to 90% of the cell so neighbouring cells stay visually separate.
//
// Parameters:
//   - col: the cell column, 0 at the left
//   - row: the cell row, 0 at the bottom
//   - cells: the number of cells along each axis
//
// Returns:
//   - [12]float32: three vec4 columns; the third column carries the translation
func GridCellAffine(col, row, cells int) [12]float32 {
	n := float32(cells)
	size := 1 / n * 0.9
	tx := -1 + 2*float32(col)/n + 1/n
	ty := -1 + 2*float32(row)/n + 1/n
	return [12]float32{
		size, 0, 0, 0,
		0, size, 0, 0,
		tx, ty, 1, 0,
	}
}
