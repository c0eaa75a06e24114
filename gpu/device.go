// Package gpu defines the slice of a graphics device the material core
// talks to. The OpenGL implementation lives in internal/opengl; tests use
// gpu/gputest.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Program is a linked GPU program object.
type Program uint32

// Buffer is a GPU buffer object.
type Buffer uint32

// Location is a uniform slot inside a linked program.
type Location int32

// NoLocation is returned for uniforms the linked program does not expose.
const NoLocation Location = -1

// Valid reports whether writes to l reach the program.
func (l Location) Valid() bool { return l >= 0 }

// TextureTarget selects the binding target of a texture unit.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	TextureCube
)

// DepthFunc is the depth comparison applied while depth testing.
type DepthFunc int

const (
	DepthLessEqual DepthFunc = iota
	DepthAlways
)

func (f DepthFunc) String() string {
	switch f {
	case DepthLessEqual:
		return "less-or-equal"
	case DepthAlways:
		return "always"
	}
	return "unknown"
}

// Device is everything the material core needs from the graphics context.
// Implementations are bound to a single thread (the render thread).
type Device interface {
	// CreateProgram compiles and links a vertex/fragment pair.
	CreateProgram(vertexSrc, fragmentSrc string) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)

	UniformLocation(p Program, name string) Location
	// UniformBlockIndex reports the index of a named uniform block, false
	// when the program does not declare it.
	UniformBlockIndex(p Program, name string) (uint32, bool)
	UniformBlockBinding(p Program, block, binding uint32)

	// Uniform writes target the program in use.
	Uniform1i(loc Location, v int32)
	Uniform1f(loc Location, v float32)
	Uniform3f(loc Location, v mgl32.Vec3)
	Uniform4f(loc Location, v mgl32.Vec4)
	UniformMatrix4f(loc Location, m mgl32.Mat4)

	CreateUniformBuffer(size int) (Buffer, error)
	BufferSubData(b Buffer, offset int, data []byte)
	BindBufferBase(binding uint32, b Buffer)
	DeleteBuffer(b Buffer)

	BindTexture(unit int, target TextureTarget, id uint32)

	DepthMask(write bool)
	SetDepthFunc(f DepthFunc)
}
