package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-engine/core"
	"material-engine/materials"
)

func TestWorldMatrixFollowsParent(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)

	parent.SetPosition(mgl32.Vec3{1, 0, 0})
	child.SetPosition(mgl32.Vec3{0, 2, 0})
	origin := child.GetWorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, origin.Vec3().ApproxEqual(mgl32.Vec3{1, 2, 0}))

	parent.SetScale(mgl32.Vec3{2, 2, 2})
	origin = child.GetWorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, origin.Vec3().ApproxEqual(mgl32.Vec3{1, 4, 0}), "parent change dirties the child")

	parent.RemoveChild(child)
	assert.Nil(t, child.Parent)
	origin = child.GetWorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, origin.Vec3().ApproxEqual(mgl32.Vec3{0, 2, 0}))
}

func TestRotate(t *testing.T) {
	n := NewNode("spinner")
	n.Rotate(mgl32.Vec3{0, 2, 0}, mgl32.DegToRad(90))
	x := n.GetWorldMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
	assert.True(t, x.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5))
}

func TestVisibleNodes(t *testing.T) {
	s := NewScene()
	mat := materials.UnlitMaterial("flat", core.ColorWhite)
	cube := CreateCube(1)

	drawn := NewNode("drawn")
	drawn.Mesh, drawn.Material = cube, mat
	noMaterial := NewNode("no material")
	noMaterial.Mesh = cube
	hidden := NewNode("hidden")
	hidden.Visible = false
	hiddenChild := NewNode("hidden child")
	hiddenChild.Mesh, hiddenChild.Material = cube, mat
	hidden.AddChild(hiddenChild)

	s.AddNode(drawn)
	s.AddNode(noMaterial)
	s.AddNode(hidden)

	assert.Equal(t, []*Node{drawn}, s.GetVisibleNodes())
	require.NotNil(t, s.Root.Find("hidden child"))
	assert.Nil(t, s.Root.Find("missing"))

	s.RemoveNode(drawn)
	assert.Empty(t, s.GetVisibleNodes())
}

func TestLights(t *testing.T) {
	s := NewScene()
	a := NewAmbientLight(core.ColorWhite)
	p := NewPointLight(mgl32.Vec3{}, core.ColorRed, 1, 4)
	s.AddLight(a)
	s.AddLight(p)
	s.RemoveLight(a)
	assert.Equal(t, []*Light{p}, s.Lights)
	assert.Equal(t, LightPoint, p.Type)
	assert.Equal(t, float32(2), p.FalloffExponent)
}
