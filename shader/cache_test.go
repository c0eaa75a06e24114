package shader

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-engine/gpu"
	"material-engine/gpu/gputest"
)

// stubCompiler links an empty program on the recording device.
type stubCompiler struct {
	dev   *gputest.Device
	calls []string
	err   error
}

func (s *stubCompiler) Compile(vertex, fragment string, caps Capability) (gpu.Program, error) {
	s.calls = append(s.calls, ProgramName(vertex, fragment))
	if s.err != nil {
		return 0, s.err
	}
	return s.dev.CreateProgram("// "+vertex, "// "+fragment)
}

func newTestCache() (*Cache, *stubCompiler, *gputest.Device) {
	dev := gputest.New()
	comp := &stubCompiler{dev: dev}
	return NewCache(comp, dev, nil), comp, dev
}

func TestAcquireReturnsSharedProgram(t *testing.T) {
	c, comp, _ := newTestCache()

	a := c.Acquire("lambert", "lambert_t", []string{"texture"})
	b := c.Acquire("lambert", "lambert_t", []string{"ignored"})

	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"texture"}, b.Samplers())
	assert.Equal(t, "lambert_lambert_t", a.Name())
	assert.Equal(t, Registered, a.State())
	assert.Empty(t, comp.calls, "acquire must not compile")
}

func TestProgramIDsAreMonotonic(t *testing.T) {
	c, _, _ := newTestCache()

	p1 := c.Acquire("constant", "constant_c", nil)
	p2 := c.Acquire("constant", "constant_t", []string{"sampler"})
	p3 := c.Acquire("lambert", "lambert_c", nil)

	assert.Equal(t, uint32(1), p1.ID())
	assert.Equal(t, uint32(2), p2.ID())
	assert.Equal(t, uint32(3), p3.ID())
	assert.Equal(t, []*Program{p1, p2, p3}, c.Programs())

	c.Teardown()
	p4 := c.Acquire("constant", "constant_c", nil)
	assert.Equal(t, uint32(4), p4.ID(), "ids are never reused")
}

func TestCapabilities(t *testing.T) {
	c, _, _ := newTestCache()
	p := c.Acquire("lambert", "lambert_c", nil)
	assert.True(t, p.Capabilities().Has(CapNormals))
	assert.True(t, p.Capabilities().Has(CapTexcoords))
}

func TestHydrateRunsOnce(t *testing.T) {
	c, comp, dev := newTestCache()
	c.BindBlock("lighting", 3)

	p := c.Acquire("lambert", "lambert_t_reflect", []string{"texture", "reflect_texture"})
	alpha, err := p.AddUniform(Float, "material_alpha")
	require.NoError(t, err)

	require.NoError(t, p.Hydrate())
	require.NoError(t, p.Hydrate())
	assert.Len(t, comp.calls, 1)
	assert.True(t, p.IsHydrated())

	st := dev.Programs[p.Handle()]
	require.NotNil(t, st)
	assert.Equal(t, int32(0), st.Values[st.Locations["texture"]])
	assert.Equal(t, int32(1), st.Values[st.Locations["reflect_texture"]])
	assert.Equal(t, map[uint32]uint32{0: 3}, st.BlockBindings)

	alpha.SetFloat(0.5)
	v, ok := dev.Value(p.Handle(), "material_alpha")
	require.True(t, ok)
	assert.Equal(t, float32(0.5), v)

	// A second consumer finds the same handle by name.
	assert.Equal(t, "material_alpha", p.Uniform("material_alpha").Name())
}

func TestUniformsSealedAfterHydration(t *testing.T) {
	c, _, _ := newTestCache()
	p := c.Acquire("constant", "constant_c", nil)
	_, err := p.AddUniform(Mat4, "model_matrix")
	require.NoError(t, err)

	_, err = p.AddUniform(Mat4, "model_matrix")
	assert.ErrorIs(t, err, ErrDuplicateUniform)

	require.NoError(t, p.Hydrate())
	_, err = p.AddUniform(Float, "late")
	assert.ErrorIs(t, err, ErrProgramSealed)
	assert.Len(t, p.Uniforms(), 1)
}

func TestHydrationFailureIsSticky(t *testing.T) {
	c, comp, _ := newTestCache()
	comp.err = errors.New("syntax error at line 3")

	p := c.Acquire("phong", "phong_t", []string{"diffuse_texture", "specular_texture"})
	err := p.Hydrate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHydrationFailed)
	assert.Contains(t, err.Error(), "syntax error")
	assert.Equal(t, Failed, p.State())

	comp.err = nil
	assert.ErrorIs(t, p.Hydrate(), ErrHydrationFailed)
	assert.Len(t, comp.calls, 1, "failed program is never recompiled")
}

func TestAbsentHandleIsNoop(t *testing.T) {
	c, _, dev := newTestCache()
	p := c.Acquire("constant", "constant_c", nil)
	require.NoError(t, p.Hydrate())

	h := p.Uniform("material_shininess")
	assert.False(t, h.Present())
	assert.NotPanics(t, func() {
		h.SetFloat(1)
		h.SetMat4(mgl32.Ident4())
	})
	assert.Empty(t, dev.Programs[p.Handle()].Values)
}

func TestInactiveUniformIsSkipped(t *testing.T) {
	c, _, dev := newTestCache()
	dev.Hidden["camera_position"] = true

	p := c.Acquire("lambert", "lambert_c", nil)
	h, err := p.AddUniform(Vec3, "camera_position")
	require.NoError(t, err)
	require.NoError(t, p.Hydrate())

	assert.True(t, h.Present())
	assert.False(t, p.Uniform("camera_position").u.Location().Valid())
	assert.NotPanics(t, func() { h.SetVec3(mgl32.Vec3{1, 2, 3}) })
}

func TestTeardownDeletesHydratedPrograms(t *testing.T) {
	c, _, dev := newTestCache()
	p := c.Acquire("constant", "constant_c", nil)
	require.NoError(t, p.Hydrate())
	handle := p.Handle()

	c.Acquire("constant", "constant_t", []string{"sampler"})
	c.Teardown()

	assert.True(t, dev.Programs[handle].Deleted)
	assert.Equal(t, 0, c.Len())
	_, ok := c.Lookup("constant", "constant_c")
	assert.False(t, ok)
}
