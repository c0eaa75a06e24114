package shader

import (
	"github.com/go-gl/mathgl/mgl32"

	"material-engine/gpu"
)

// Kind is the GLSL type of a uniform.
type Kind int

const (
	Int Kind = iota
	Float
	Vec3
	Vec4
	Mat4
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Vec3:
		return "vec3"
	case Vec4:
		return "vec4"
	case Mat4:
		return "mat4"
	}
	return "unknown"
}

// Uniform is a declared uniform of a program. The location is resolved at
// hydration and stays NoLocation when the linker dropped the uniform.
type Uniform struct {
	Name     string
	Kind     Kind
	location gpu.Location
	program  *Program
}

// Location of the uniform in the linked program.
func (u *Uniform) Location() gpu.Location { return u.location }

// Handle is an optional reference to a uniform. The zero Handle is absent
// and every write through it is a no-op, so binders never branch on
// whether a shader variant declares a uniform.
type Handle struct {
	u *Uniform
}

// Present reports whether the program declares the uniform.
func (h Handle) Present() bool { return h.u != nil }

// Name of the referenced uniform, "" when absent.
func (h Handle) Name() string {
	if h.u == nil {
		return ""
	}
	return h.u.Name
}

func (h Handle) target(kind Kind) (gpu.Device, gpu.Location, bool) {
	if h.u == nil || h.u.Kind != kind || !h.u.location.Valid() {
		return nil, gpu.NoLocation, false
	}
	return h.u.program.device, h.u.location, true
}

func (h Handle) SetInt(v int32) {
	if d, loc, ok := h.target(Int); ok {
		d.Uniform1i(loc, v)
	}
}

func (h Handle) SetFloat(v float32) {
	if d, loc, ok := h.target(Float); ok {
		d.Uniform1f(loc, v)
	}
}

func (h Handle) SetVec3(v mgl32.Vec3) {
	if d, loc, ok := h.target(Vec3); ok {
		d.Uniform3f(loc, v)
	}
}

func (h Handle) SetVec4(v mgl32.Vec4) {
	if d, loc, ok := h.target(Vec4); ok {
		d.Uniform4f(loc, v)
	}
}

func (h Handle) SetMat4(m mgl32.Mat4) {
	if d, loc, ok := h.target(Mat4); ok {
		d.UniformMatrix4f(loc, m)
	}
}
