// Package lighting builds the per-frame lighting uniform block.
//
// The block is a binary contract with glsl/src/lighting.glsl (std140,
// little-endian). Offsets below are the layout; they are not derived from a
// Go struct so that compiler padding can never move a field.
//
//	offset  size  field
//	0       4     num_lights (int32)
//	4       12    padding
//	16      16    ambient_light_color (vec4, w = 0)
//	32      80*8  lights[8]
//
// Each light record:
//
//	0   type (int32)
//	4   attenuation_start_distance
//	8   attenuation_end_distance
//	12  attenuation_falloff_exp
//	16  position (vec4, w = 0)
//	32  direction (vec4, w = 0)
//	48  color (vec3)
//	60  spot_inner_angle
//	64  spot_outer_angle
//	68  padding (12)
package lighting

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the capacity of the block's light array.
const MaxLights = 8

const (
	OffsetCount   = 0
	OffsetAmbient = 16
	OffsetLights  = 32

	LightOffsetType       = 0
	LightOffsetAttenStart = 4
	LightOffsetAttenEnd   = 8
	LightOffsetFalloff    = 12
	LightOffsetPosition   = 16
	LightOffsetDirection  = 32
	LightOffsetColor      = 48
	LightOffsetSpotInner  = 60
	LightOffsetSpotOuter  = 64
	LightRecordSize       = 80

	// Size is the byte size of the whole block.
	Size = OffsetLights + MaxLights*LightRecordSize
)

// LightRecord is one slot of the light array.
type LightRecord struct {
	Type             int32
	AttenuationStart float32
	AttenuationEnd   float32
	FalloffExponent  float32
	Position         mgl32.Vec3
	Direction        mgl32.Vec3
	Color            mgl32.Vec3
	SpotInnerAngle   float32
	SpotOuterAngle   float32
}

// Data is the CPU copy of the block.
type Data struct {
	Count   int32
	Ambient mgl32.Vec3
	Lights  [MaxLights]LightRecord
}

// Encode lays d out in the block's binary format.
func Encode(d *Data) []byte {
	buf := make([]byte, Size)
	putInt(buf, OffsetCount, d.Count)
	putVec(buf, OffsetAmbient, d.Ambient[:])
	for i := range d.Lights {
		l := &d.Lights[i]
		base := OffsetLights + i*LightRecordSize
		putInt(buf, base+LightOffsetType, l.Type)
		putFloat(buf, base+LightOffsetAttenStart, l.AttenuationStart)
		putFloat(buf, base+LightOffsetAttenEnd, l.AttenuationEnd)
		putFloat(buf, base+LightOffsetFalloff, l.FalloffExponent)
		putVec(buf, base+LightOffsetPosition, l.Position[:])
		putVec(buf, base+LightOffsetDirection, l.Direction[:])
		putVec(buf, base+LightOffsetColor, l.Color[:])
		putFloat(buf, base+LightOffsetSpotInner, l.SpotInnerAngle)
		putFloat(buf, base+LightOffsetSpotOuter, l.SpotOuterAngle)
	}
	return buf
}

func putInt(buf []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(buf[off:], uint32(v))
}

func putFloat(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func putVec(buf []byte, off int, v []float32) {
	for i, f := range v {
		putFloat(buf, off+4*i, f)
	}
}
