package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowToClip(t *testing.T) {
	assert.Equal(t, [2]float32{-1, 1}, WindowToClip([2]float32{0, 0}, 800, 600))
	assert.Equal(t, [2]float32{1, -1}, WindowToClip([2]float32{800, 600}, 800, 600))
	assert.Equal(t, [2]float32{0, 0}, WindowToClip([2]float32{400, 300}, 800, 600))
	assert.Equal(t, [2]float32{0, 0}, WindowToClip([2]float32{10, 10}, 0, 600))
	assert.Equal(t, [2]float32{1, 1}, WindowToClip([2]float32{900, -20}, 800, 600))
}

func TestGridCellAffine(t *testing.T) {
	m := GridCellAffine(0, 0, 16)
	assert.InDelta(t, 0.05625, m[0], 1e-6)
	assert.InDelta(t, 0.05625, m[5], 1e-6)
	assert.InDelta(t, -0.9375, m[8], 1e-6)
	assert.InDelta(t, -0.9375, m[9], 1e-6)
	assert.Equal(t, float32(1), m[10])

	last := GridCellAffine(15, 15, 16)
	assert.InDelta(t, 0.9375, last[8], 1e-6)
	assert.InDelta(t, 0.9375, last[9], 1e-6)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(1, 3, 100))
	assert.Equal(t, 100, Clamp(120, 3, 100))
	assert.Equal(t, float32(0.2), Clamp(float32(0.2), 0.1, 0.3))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)

	v := struct{ A, B uint32 }{1, 2}
	assert.Len(t, StructToBytes(&v), 8)
}

func TestDistance2(t *testing.T) {
	assert.InDelta(t, 5, Distance2([2]float32{0, 0}, [2]float32{3, 4}), 1e-6)
}
