package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCreateCube(t *testing.T) {
	m := CreateCube(2)
	assert.Len(t, m.Vertices, 24)
	assert.Len(t, m.Indices, 36)

	min, max := m.Bounds()
	assert.True(t, min.ApproxEqual(mgl32.Vec3{-1, -1, -1}))
	assert.True(t, max.ApproxEqual(mgl32.Vec3{1, 1, 1}))

	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		c := m.Vertices[m.Indices[i+2]]
		face := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		assert.Greater(t, face.Dot(a.Normal), float32(0), "triangle %d winds counter-clockwise", i/3)
	}
}

func TestCreateSphere(t *testing.T) {
	m := CreateSphere(1.5, 2, 1)
	// Degenerate arguments are clamped to 3 segments and 2 rings.
	assert.Len(t, m.Vertices, 4*3)
	assert.Len(t, m.Indices, 3*2*6)
	for _, v := range m.Vertices {
		assert.InDelta(t, 1.5, v.Position.Len(), 1e-5)
		assert.InDelta(t, 1.0, v.Normal.Len(), 1e-5)
	}
}

func TestCreatePlane(t *testing.T) {
	m := CreatePlane(4, 2, 2)
	assert.Len(t, m.Vertices, 9)
	assert.Len(t, m.Indices, 24)
	min, max := m.Bounds()
	assert.Equal(t, mgl32.Vec3{-2, 0, -1}, min)
	assert.Equal(t, mgl32.Vec3{2, 0, 1}, max)
}

func TestBoundsEmpty(t *testing.T) {
	min, max := (&Mesh{}).Bounds()
	assert.Equal(t, mgl32.Vec3{}, min)
	assert.Equal(t, mgl32.Vec3{}, max)
}
