package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"material-engine/core"
)

// LightType values are written verbatim into the lighting block and must
// match the constants in glsl/src/lighting.glsl.
type LightType int32

const (
	LightAmbient LightType = iota
	LightDirectional
	LightPoint
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightAmbient:
		return "ambient"
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	}
	return "unknown"
}

// Light is a renderer-owned light. The material core only reads it.
type Light struct {
	Type      LightType
	Position  mgl32.Vec3 // world space
	Direction mgl32.Vec3
	Color     core.Color

	// Attenuation: full intensity up to AttenuationStart, zero past
	// AttenuationEnd, shaped by FalloffExponent in between.
	AttenuationStart float32
	AttenuationEnd   float32
	FalloffExponent  float32

	// Spot cone angles in degrees.
	SpotInnerAngle float32
	SpotOuterAngle float32
}

func NewAmbientLight(color core.Color) *Light {
	return &Light{Type: LightAmbient, Color: color}
}

func NewDirectionalLight(direction mgl32.Vec3, color core.Color) *Light {
	return &Light{Type: LightDirectional, Direction: direction.Normalize(), Color: color}
}

func NewPointLight(position mgl32.Vec3, color core.Color, start, end float32) *Light {
	return &Light{
		Type:             LightPoint,
		Position:         position,
		Color:            color,
		AttenuationStart: start,
		AttenuationEnd:   end,
		FalloffExponent:  2,
	}
}

func NewSpotLight(position, direction mgl32.Vec3, color core.Color, inner, outer float32) *Light {
	return &Light{
		Type:             LightSpot,
		Position:         position,
		Direction:        direction.Normalize(),
		Color:            color,
		AttenuationStart: 1,
		AttenuationEnd:   20,
		FalloffExponent:  2,
		SpotInnerAngle:   inner,
		SpotOuterAngle:   outer,
	}
}
