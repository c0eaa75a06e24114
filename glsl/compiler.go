package glsl

import (
	"fmt"

	"material-engine/gpu"
	"material-engine/shader"
)

// Compiler links library sources on a device. It satisfies
// shader.Compiler.
type Compiler struct {
	Library *Library
	Device  gpu.Device
}

// NewCompiler uses the embedded sources when lib is nil.
func NewCompiler(lib *Library, device gpu.Device) *Compiler {
	if lib == nil {
		lib = NewLibrary(nil)
	}
	return &Compiler{Library: lib, Device: device}
}

func (c *Compiler) Compile(vertex, fragment string, caps shader.Capability) (gpu.Program, error) {
	vs, err := c.Library.Vertex(vertex, caps)
	if err != nil {
		return 0, err
	}
	fs, err := c.Library.Fragment(fragment, caps)
	if err != nil {
		return 0, err
	}
	p, err := c.Device.CreateProgram(vs, fs)
	if err != nil {
		return 0, fmt.Errorf("link %s/%s: %w", vertex, fragment, err)
	}
	return p, nil
}
