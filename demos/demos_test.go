package demos

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-lab/common"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShader struct {
	shader.Shader
	name     string
	released bool
}

func (s *fakeShader) Release() { s.released = true }

type fakeLoader struct {
	loaded []*fakeShader
	failOn string
}

func (l *fakeLoader) Load(name string) (shader.Shader, error) {
	if name == l.failOn {
		return nil, errors.New("no such file")
	}
	sh := &fakeShader{name: name}
	l.loaded = append(l.loaded, sh)
	return sh, nil
}

func (l *fakeLoader) Reload(name string) (shader.Shader, error) {
	return l.Load(name)
}

func TestLoadAllInOrder(t *testing.T) {
	loader := &fakeLoader{}
	all, err := Load(loader, All...)
	require.NoError(t, err)

	names := make([]string, 0, len(all))
	for _, d := range all {
		names = append(names, d.Name())
		assert.True(t, d.Common().Dirty(), "%s starts dirty", d.Name())
	}
	assert.Equal(t, []string{"triangle", "instances", "quad", "targets", "msaa", "viewports", "feedback", "grid"}, names)
	assert.Equal(t, "grid.wgsl", all[7].Common().Name())

	for _, d := range all {
		d.Release()
	}
	for _, sh := range loader.loaded {
		assert.True(t, sh.released, "%s released", sh.name)
	}
}

func TestLoadReleasesCreatedDemosOnFailure(t *testing.T) {
	loader := &fakeLoader{failOn: "quad.wgsl"}
	all, err := Load(loader, All...)
	require.Error(t, err)
	assert.Nil(t, all)
	assert.Contains(t, err.Error(), "quad.wgsl")

	require.Len(t, loader.loaded, 2)
	for _, sh := range loader.loaded {
		assert.True(t, sh.released, "%s released", sh.name)
	}
}

func TestTriangleArrowKeysMoveAllVertices(t *testing.T) {
	d, err := NewTriangle(&fakeLoader{})
	require.NoError(t, err)
	tri := d.(*triangle)

	tri.HandleKey(common.KeyRight)
	tri.HandleKey(common.KeyUp)
	tri.HandleKey(common.KeyUp)
	tri.HandleKey(common.KeyW)

	want := [3][2]float32{{-0.4, 0.2}, {0.1, 1.2}, {0.6, 0.2}}
	for i := range want {
		assert.InDeltaSlice(t, want[i][:], tri.vertices[i][:], 1e-6)
	}

	tri.HandleKey(common.KeyLeft)
	tri.HandleKey(common.KeyDown)
	assert.InDeltaSlice(t, []float32{-0.5, 0.1}, tri.vertices[0][:], 1e-6)
}

func TestInstancesScrollClampsCount(t *testing.T) {
	d, err := NewInstances(&fakeLoader{})
	require.NoError(t, err)
	inst := d.(*instances)
	assert.Equal(t, uint32(10), inst.numInstances)

	for range 20 {
		inst.HandleScroll(false)
	}
	assert.Equal(t, uint32(minInstances), inst.numInstances)

	for range 200 {
		inst.HandleScroll(true)
	}
	assert.Equal(t, uint32(maxInstances), inst.numInstances)
}

func TestInstancesRadiusKeysClamp(t *testing.T) {
	d, err := NewInstances(&fakeLoader{})
	require.NoError(t, err)
	inst := d.(*instances)

	inst.HandleKey(common.KeyD)
	assert.InDelta(t, 0.4, inst.radius, 1e-6)

	for range 10 {
		inst.HandleKey(common.KeyA)
	}
	assert.InDelta(t, minRadius, inst.radius, 1e-6)

	for range 30 {
		inst.HandleKey(common.KeyD)
	}
	assert.InDelta(t, maxRadius, inst.radius, 1e-6)
}

func TestQuadClickSelectsCornerWithinThreshold(t *testing.T) {
	d, err := NewQuad(&fakeLoader{})
	require.NoError(t, err)
	q := d.(*quad)

	q.HandleClick([2]float32{0, 0}, true)
	assert.Equal(t, -1, q.selected, "centre is too far from every corner")

	q.HandleClick([2]float32{0.45, -0.45}, true)
	assert.Equal(t, 3, q.selected)

	q.HandleClick([2]float32{0.45, -0.45}, false)
	assert.Equal(t, -1, q.selected)
}

func TestQuadClickPrefersLastMatchingCorner(t *testing.T) {
	d, err := NewQuad(&fakeLoader{})
	require.NoError(t, err)
	q := d.(*quad)
	q.vertices[1] = [2]float32{-0.5, 0.4}

	q.HandleClick([2]float32{-0.5, 0.45}, true)
	assert.Equal(t, 1, q.selected)
}

func TestQuadScrollClampsThreshold(t *testing.T) {
	d, err := NewQuad(&fakeLoader{})
	require.NoError(t, err)
	q := d.(*quad)

	q.HandleScroll(true)
	assert.InDelta(t, 0.21, q.threshold, 1e-6)

	for range 50 {
		q.HandleScroll(true)
	}
	assert.InDelta(t, maxThreshold, q.threshold, 1e-6)

	for range 50 {
		q.HandleScroll(false)
	}
	assert.InDelta(t, minThreshold, q.threshold, 1e-6)
}

func TestSpaceMarksFeedbackAndGridDirty(t *testing.T) {
	for _, c := range []Constructor{NewFeedback, NewGrid} {
		d, err := c(&fakeLoader{})
		require.NoError(t, err)
		d.Common().ClearDirty()

		d.HandleKey(common.KeyA)
		assert.False(t, d.Common().Dirty(), "%s ignores other keys", d.Name())

		d.HandleKey(common.KeySpace)
		assert.True(t, d.Common().Dirty(), "%s is dirty after Space", d.Name())
	}
}

func TestQuadrantsMeetAtMouse(t *testing.T) {
	q := quadrants(800, 600, [2]float32{200, 150})
	assert.Equal(t, [4][4]float32{
		{0, 0, 200, 150},
		{200, 0, 600, 150},
		{0, 150, 200, 450},
		{200, 150, 600, 450},
	}, q)
}

func TestQuadrantsKeepEveryViewportNonEmpty(t *testing.T) {
	for _, mouse := range [][2]float32{{0, 0}, {800, 600}, {-50, 900}} {
		for _, v := range quadrants(800, 600, mouse) {
			assert.Greater(t, v[2], float32(0))
			assert.Greater(t, v[3], float32(0))
		}
	}
}

func TestHalvesCoverTheWidth(t *testing.T) {
	assert.Equal(t, [2][2]uint32{{0, 400}, {400, 400}}, halves(800))
	assert.Equal(t, [2][2]uint32{{0, 400}, {400, 401}}, halves(801))
}

func TestGridTexels(t *testing.T) {
	assert.Equal(t, [4]byte{0, 0, 0, 100}, gridTexel(0))
	assert.Equal(t, [4]byte{16, 0, 0, 100}, gridTexel(1))
	assert.Equal(t, [4]byte{0, 16, 0, 100}, gridTexel(gridCells))
	assert.Equal(t, [4]byte{240, 240, 0, 100}, gridTexel(gridCells*gridCells-1))
}

func TestGridAffinesMatchCellOrder(t *testing.T) {
	affines := gridAffines()
	require.Len(t, affines, gridCells*gridCells)
	assert.Equal(t, common.GridCellAffine(0, 0, gridCells), affines[0])
	assert.Equal(t, common.GridCellAffine(3, 2, gridCells), affines[2*gridCells+3])
}

func TestShadersReflect(t *testing.T) {
	store := shader.NewStore("shaders", shader.WithValidation(false))

	cases := []struct {
		name          string
		vertexBuffers int
		entries       int
	}{
		{"triangle.wgsl", 1, 0},
		{"instances.wgsl", 1, 1},
		{"quad.wgsl", 1, 1},
		{"targets.wgsl", 0, 0},
		{"msaa.wgsl", 0, 1},
		{"viewports.wgsl", 0, 1},
		{"feedback.wgsl", 0, 4},
		{"grid.wgsl", 1, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sh, err := store.Load(tc.name)
			require.NoError(t, err)
			assert.Equal(t, "vs_main", sh.EntryPoint(shader.ShaderTypeVertex))
			assert.Equal(t, "fs_main", sh.EntryPoint(shader.ShaderTypeFragment))
			assert.Len(t, sh.VertexLayouts(), tc.vertexBuffers)

			entries := 0
			for _, desc := range sh.BindGroupLayoutDescriptors() {
				entries += len(desc.Entries)
			}
			assert.Equal(t, tc.entries, entries)
		})
	}
}

func TestGridShaderBindings(t *testing.T) {
	sh, err := shader.NewStore("shaders", shader.WithValidation(false)).Load("grid.wgsl")
	require.NoError(t, err)

	entries := sh.BindGroupLayoutDescriptors()[0].Entries
	require.Len(t, entries, 4)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[0].Buffer.Type)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, entries[1].Buffer.Type)
	assert.Equal(t, wgpu.TextureViewDimension2DArray, entries[2].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, entries[3].Sampler.Type)
	assert.Equal(t, wgpu.VertexStepModeVertex, sh.VertexLayouts()[0].StepMode)
}
