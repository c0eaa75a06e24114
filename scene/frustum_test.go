package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func testFrustum() Frustum {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 50)
	return FrustumFromVP(proj.Mul4(view))
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	f := testFrustum()
	for i, p := range f.Planes {
		assert.InDelta(t, 1.0, p.Normal.Len(), 1e-5, "plane %d", i)
	}
	// The camera looks down -Z from z=10, so the near plane faces -Z.
	assert.InDelta(t, -1.0, f.Planes[4].Normal.Z(), 1e-5)
	assert.InDelta(t, 9.9, f.Planes[4].DistanceTo(mgl32.Vec3{}), 1e-3)
}

func TestAABBIntersectsFrustum(t *testing.T) {
	f := testFrustum()
	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"at origin", AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}, true},
		{"behind camera", AABB{Min: mgl32.Vec3{-1, -1, 11}, Max: mgl32.Vec3{1, 1, 13}}, false},
		{"beyond far plane", AABB{Min: mgl32.Vec3{-1, -1, -60}, Max: mgl32.Vec3{1, 1, -45}}, false},
		{"far left", AABB{Min: mgl32.Vec3{-100, -1, -1}, Max: mgl32.Vec3{-90, 1, 1}}, false},
		{"straddles left plane", AABB{Min: mgl32.Vec3{-100, -1, -1}, Max: mgl32.Vec3{0, 1, 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.box.IntersectsFrustum(&f))
		})
	}
}

func TestComputeAABB(t *testing.T) {
	cube := CreateCube(2)
	world := mgl32.Translate3D(5, 0, 0).Mul4(mgl32.Scale3D(1, 3, 1))
	box := ComputeAABB(cube, world)
	assert.True(t, box.Min.ApproxEqual(mgl32.Vec3{4, -3, -1}))
	assert.True(t, box.Max.ApproxEqual(mgl32.Vec3{6, 3, 1}))

	rotated := ComputeAABB(cube, mgl32.HomogRotate3DY(mgl32.DegToRad(45)))
	assert.InDelta(t, 1.41421, rotated.Max.X(), 1e-4)
}
