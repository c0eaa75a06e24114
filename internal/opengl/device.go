// Package opengl implements gpu.Device on an OpenGL 4.1 core context.
//
// Every call must come from the thread that owns the context.
package opengl

import (
	"fmt"
	"log/slog"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"material-engine/core"
	"material-engine/gpu"
)

// Device is the OpenGL backend.
type Device struct {
	log *slog.Logger

	viewportW int32
	viewportH int32
}

// NewDevice loads the GL entry points for the current context and sets the
// default depth state. log may be nil.
func NewDevice(log *slog.Logger) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log = core.LoggerOrDefault(log)
	log.Info("OpenGL context ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return &Device{log: log}, nil
}

// ── Frame ─────────────────────────────────────────────────────────────────────

// SetViewport resizes the OpenGL viewport.
func (d *Device) SetViewport(width, height int) {
	d.viewportW = int32(width)
	d.viewportH = int32(height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Clear clears colour and depth. Depth writes are re-enabled first so a
// previous draw that disabled them cannot leave stale depth behind.
func (d *Device) Clear(c core.Color) {
	gl.DepthMask(true)
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ── Programs ──────────────────────────────────────────────────────────────────

func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	prog, err := newProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}
	return gpu.Program(prog), nil
}

func (d *Device) DeleteProgram(p gpu.Program) { gl.DeleteProgram(uint32(p)) }
func (d *Device) UseProgram(p gpu.Program) { gl.UseProgram(uint32(p)) }

func (d *Device) UniformLocation(p gpu.Program, name string) gpu.Location {
	return gpu.Location(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (d *Device) UniformBlockIndex(p gpu.Program, name string) (uint32, bool) {
	idx := gl.GetUniformBlockIndex(uint32(p), gl.Str(name+"\x00"))
	return idx, idx != gl.INVALID_INDEX
}

func (d *Device) UniformBlockBinding(p gpu.Program, block, binding uint32) {
	gl.UniformBlockBinding(uint32(p), block, binding)
}

// ── Uniforms ──────────────────────────────────────────────────────────────────

func (d *Device) Uniform1i(loc gpu.Location, v int32) { gl.Uniform1i(int32(loc), v) }
func (d *Device) Uniform1f(loc gpu.Location, v float32) { gl.Uniform1f(int32(loc), v) }
func (d *Device) Uniform3f(loc gpu.Location, v mgl32.Vec3) {
	gl.Uniform3f(int32(loc), v[0], v[1], v[2])
}
func (d *Device) Uniform4f(loc gpu.Location, v mgl32.Vec4) {
	gl.Uniform4f(int32(loc), v[0], v[1], v[2], v[3])
}
func (d *Device) UniformMatrix4f(loc gpu.Location, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

// ── Uniform buffers ───────────────────────────────────────────────────────────

func (d *Device) CreateUniformBuffer(size int) (gpu.Buffer, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.UNIFORM_BUFFER, id)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &id)
		return 0, fmt.Errorf("uniform buffer of %d bytes: GL error 0x%x", size, code)
	}
	return gpu.Buffer(id), nil
}

func (d *Device) BufferSubData(b gpu.Buffer, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, uint32(b))
	gl.BufferSubData(gl.UNIFORM_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

func (d *Device) BindBufferBase(binding uint32, b gpu.Buffer) {
	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, uint32(b))
}

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

// ── Fixed-function state ──────────────────────────────────────────────────────

func (d *Device) BindTexture(unit int, target gpu.TextureTarget, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(glTarget(target), id)
}

func (d *Device) DepthMask(write bool) { gl.DepthMask(write) }

func (d *Device) SetDepthFunc(f gpu.DepthFunc) {
	switch f {
	case gpu.DepthAlways:
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.DepthFunc(gl.LEQUAL)
	}
}

func glTarget(t gpu.TextureTarget) uint32 {
	if t == gpu.TextureCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

var _ gpu.Device = (*Device)(nil)
