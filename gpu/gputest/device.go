// Package gputest provides an in-memory gpu.Device that records every
// call, so tests can read back the state a real context would hold.
package gputest

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"material-engine/gpu"
)

// ProgramState is the recorded state of one linked program.
type ProgramState struct {
	VertexSrc   string
	FragmentSrc string
	Deleted     bool

	// Locations maps uniform names to the slot handed out on lookup.
	Locations map[string]gpu.Location
	// Values holds the last value written to each slot.
	Values map[gpu.Location]any
	// BlockBindings maps uniform block index to binding point.
	BlockBindings map[uint32]uint32
	blocks        map[string]uint32
}

// TextureBinding is the texture bound to a unit.
type TextureBinding struct {
	Target gpu.TextureTarget
	ID     uint32
}

// Device is a recording gpu.Device. The zero value is not usable; call New.
type Device struct {
	// CompileErr, when set, is returned by CreateProgram for matching sources.
	CompileErr func(vertexSrc, fragmentSrc string) error
	// BufferErr, when set, is returned by CreateUniformBuffer.
	BufferErr error
	// Hidden lists uniform names every program reports as NoLocation,
	// mimicking uniforms the GLSL compiler optimised away.
	Hidden map[string]bool
	// Blocks lists the uniform block names every program declares.
	Blocks []string

	Programs    map[gpu.Program]*ProgramState
	Current     gpu.Program
	Buffers     map[gpu.Buffer][]byte
	BufferBase  map[uint32]gpu.Buffer
	Textures    map[int]TextureBinding
	DepthWrite  bool
	DepthTest   gpu.DepthFunc
	Compiles    int
	UseCalls    int
	BufferWrite int

	nextProgram gpu.Program
	nextBuffer  gpu.Buffer
}

// New returns an empty recording device that declares the "lighting" block.
func New() *Device {
	return &Device{
		Hidden:     map[string]bool{},
		Blocks:     []string{"lighting"},
		Programs:   map[gpu.Program]*ProgramState{},
		Buffers:    map[gpu.Buffer][]byte{},
		BufferBase: map[uint32]gpu.Buffer{},
		Textures:   map[int]TextureBinding{},
		DepthWrite: true,
	}
}

func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	d.Compiles++
	if d.CompileErr != nil {
		if err := d.CompileErr(vertexSrc, fragmentSrc); err != nil {
			return 0, err
		}
	}
	d.nextProgram++
	st := &ProgramState{
		VertexSrc:     vertexSrc,
		FragmentSrc:   fragmentSrc,
		Locations:     map[string]gpu.Location{},
		Values:        map[gpu.Location]any{},
		BlockBindings: map[uint32]uint32{},
		blocks:        map[string]uint32{},
	}
	for i, b := range d.Blocks {
		st.blocks[b] = uint32(i)
	}
	d.Programs[d.nextProgram] = st
	return d.nextProgram, nil
}

func (d *Device) DeleteProgram(p gpu.Program) {
	if st, ok := d.Programs[p]; ok {
		st.Deleted = true
	}
	if d.Current == p {
		d.Current = 0
	}
}

func (d *Device) UseProgram(p gpu.Program) {
	d.UseCalls++
	d.Current = p
}

func (d *Device) UniformLocation(p gpu.Program, name string) gpu.Location {
	st, ok := d.Programs[p]
	if !ok || d.Hidden[name] {
		return gpu.NoLocation
	}
	if loc, ok := st.Locations[name]; ok {
		return loc
	}
	loc := gpu.Location(len(st.Locations))
	st.Locations[name] = loc
	return loc
}

func (d *Device) UniformBlockIndex(p gpu.Program, name string) (uint32, bool) {
	st, ok := d.Programs[p]
	if !ok {
		return 0, false
	}
	idx, ok := st.blocks[name]
	return idx, ok
}

func (d *Device) UniformBlockBinding(p gpu.Program, block, binding uint32) {
	if st, ok := d.Programs[p]; ok {
		st.BlockBindings[block] = binding
	}
}

func (d *Device) set(loc gpu.Location, v any) {
	if !loc.Valid() {
		panic(fmt.Sprintf("gputest: write to invalid location %d", loc))
	}
	st, ok := d.Programs[d.Current]
	if !ok {
		panic("gputest: uniform write with no program in use")
	}
	st.Values[loc] = v
}

func (d *Device) Uniform1i(loc gpu.Location, v int32) { d.set(loc, v) }
func (d *Device) Uniform1f(loc gpu.Location, v float32) { d.set(loc, v) }
func (d *Device) Uniform3f(loc gpu.Location, v mgl32.Vec3) { d.set(loc, v) }
func (d *Device) Uniform4f(loc gpu.Location, v mgl32.Vec4) { d.set(loc, v) }
func (d *Device) UniformMatrix4f(loc gpu.Location, m mgl32.Mat4) { d.set(loc, m) }

func (d *Device) CreateUniformBuffer(size int) (gpu.Buffer, error) {
	if d.BufferErr != nil {
		return 0, d.BufferErr
	}
	d.nextBuffer++
	d.Buffers[d.nextBuffer] = make([]byte, size)
	return d.nextBuffer, nil
}

func (d *Device) BufferSubData(b gpu.Buffer, offset int, data []byte) {
	buf, ok := d.Buffers[b]
	if !ok {
		panic(fmt.Sprintf("gputest: write to unknown buffer %d", b))
	}
	if offset+len(data) > len(buf) {
		panic(fmt.Sprintf("gputest: write of %d bytes at %d overflows buffer of %d", len(data), offset, len(buf)))
	}
	d.BufferWrite++
	copy(buf[offset:], data)
}

func (d *Device) BindBufferBase(binding uint32, b gpu.Buffer) { d.BufferBase[binding] = b }

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	delete(d.Buffers, b)
	for k, v := range d.BufferBase {
		if v == b {
			delete(d.BufferBase, k)
		}
	}
}

func (d *Device) BindTexture(unit int, target gpu.TextureTarget, id uint32) {
	d.Textures[unit] = TextureBinding{Target: target, ID: id}
}

func (d *Device) DepthMask(write bool) { d.DepthWrite = write }
func (d *Device) SetDepthFunc(f gpu.DepthFunc) { d.DepthTest = f }

// Value returns the last value written to the named uniform of p.
func (d *Device) Value(p gpu.Program, name string) (any, bool) {
	st, ok := d.Programs[p]
	if !ok {
		return nil, false
	}
	loc, ok := st.Locations[name]
	if !ok {
		return nil, false
	}
	v, ok := st.Values[loc]
	return v, ok
}

// ProgramFor returns the first live program whose fragment source contains
// marker, or 0.
func (d *Device) ProgramFor(marker string) gpu.Program {
	for p := gpu.Program(1); p <= d.nextProgram; p++ {
		st := d.Programs[p]
		if st != nil && !st.Deleted && strings.Contains(st.FragmentSrc, marker) {
			return p
		}
	}
	return 0
}

var _ gpu.Device = (*Device)(nil)
