package shader

import (
	"errors"
	"fmt"

	"material-engine/gpu"
)

var (
	// ErrProgramSealed is returned when uniforms are added to a program
	// that has already started hydrating.
	ErrProgramSealed = errors.New("shader: program uniforms are sealed")
	// ErrHydrating is returned on re-entrant hydration.
	ErrHydrating = errors.New("shader: program is already hydrating")
	// ErrHydrationFailed wraps the compiler error of a program that could
	// not be built. The failure is permanent for that program.
	ErrHydrationFailed = errors.New("shader: program hydration failed")
	// ErrDuplicateUniform is returned when a name is declared twice.
	ErrDuplicateUniform = errors.New("shader: duplicate uniform")
)

// Capability flags tell the source service which vertex attributes a
// program consumes.
type Capability uint32

const (
	CapTexcoords Capability = 1 << iota
	CapNormals
)

func (c Capability) Has(flag Capability) bool { return c&flag != 0 }

// State is the hydration state of a program.
type State int

const (
	Registered State = iota
	Hydrating
	Hydrated
	Failed
)

func (s State) String() string {
	switch s {
	case Registered:
		return "registered"
	case Hydrating:
		return "hydrating"
	case Hydrated:
		return "hydrated"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Compiler turns abstract shader names into a linked GPU program.
type Compiler interface {
	Compile(vertex, fragment string, caps Capability) (gpu.Program, error)
}

// Program is a shared shader permutation. Its sampler and uniform sets are
// fixed once hydration starts; materials only write values through it.
type Program struct {
	name     string
	vertex   string
	fragment string
	id       uint32
	caps     Capability
	samplers []string

	uniforms []*Uniform
	byName   map[string]*Uniform

	state  State
	err    error
	handle gpu.Program

	cache  *Cache
	device gpu.Device
}

func (p *Program) Name() string { return p.name }
func (p *Program) VertexName() string { return p.vertex }
func (p *Program) FragmentName() string { return p.fragment }
func (p *Program) Capabilities() Capability { return p.caps }
func (p *Program) State() State { return p.state }
func (p *Program) Handle() gpu.Program { return p.handle }

// ID is the program's numeric identity, assigned at creation and never
// reused within a cache. Draw-order sorting keys off it.
func (p *Program) ID() uint32 { return p.id }

// Samplers returns the sampler names in texture-unit order.
func (p *Program) Samplers() []string {
	return append([]string(nil), p.samplers...)
}

// IsHydrated reports whether the program is linked and ready to bind.
func (p *Program) IsHydrated() bool { return p.state == Hydrated }

// Err returns the hydration failure, if any.
func (p *Program) Err() error { return p.err }

// AddUniform declares a uniform. Only allowed before hydration.
func (p *Program) AddUniform(kind Kind, name string) (Handle, error) {
	if p.state != Registered {
		return Handle{}, fmt.Errorf("add %q to %s: %w", name, p.name, ErrProgramSealed)
	}
	if _, ok := p.byName[name]; ok {
		return Handle{}, fmt.Errorf("add %q to %s: %w", name, p.name, ErrDuplicateUniform)
	}
	u := &Uniform{Name: name, Kind: kind, location: gpu.NoLocation, program: p}
	p.uniforms = append(p.uniforms, u)
	p.byName[name] = u
	return Handle{u: u}, nil
}

// Uniform looks up a declared uniform. The handle is absent when the
// program does not declare name.
func (p *Program) Uniform(name string) Handle {
	if u, ok := p.byName[name]; ok {
		return Handle{u: u}
	}
	return Handle{}
}

// Uniforms returns the declared uniforms in declaration order.
func (p *Program) Uniforms() []*Uniform {
	return append([]*Uniform(nil), p.uniforms...)
}

// Hydrate compiles and links the program, resolves uniform locations,
// assigns sampler i to texture unit i and binds the cache's uniform
// blocks. It runs once; later calls report the outcome of the first.
func (p *Program) Hydrate() error {
	switch p.state {
	case Hydrated:
		return nil
	case Failed:
		return p.err
	case Hydrating:
		return fmt.Errorf("%s: %w", p.name, ErrHydrating)
	}

	p.state = Hydrating
	log := p.cache.log

	handle, err := p.cache.compiler.Compile(p.vertex, p.fragment, p.caps)
	if err != nil {
		p.state = Failed
		p.err = fmt.Errorf("%w: %s: %w", ErrHydrationFailed, p.name, err)
		log.Error("shader hydration failed", "program", p.name, "err", err)
		return p.err
	}
	p.handle = handle

	d := p.device
	for _, u := range p.uniforms {
		u.location = d.UniformLocation(handle, u.Name)
		if !u.location.Valid() {
			log.Debug("uniform not active in program", "program", p.name, "uniform", u.Name)
		}
	}

	d.UseProgram(handle)
	for unit, name := range p.samplers {
		if loc := d.UniformLocation(handle, name); loc.Valid() {
			d.Uniform1i(loc, int32(unit))
		} else {
			log.Debug("sampler not active in program", "program", p.name, "sampler", name)
		}
	}

	for _, b := range p.cache.blocks {
		if idx, ok := d.UniformBlockIndex(handle, b.name); ok {
			d.UniformBlockBinding(handle, idx, b.binding)
		}
	}

	p.state = Hydrated
	log.Debug("shader hydrated", "program", p.name, "id", p.id, "uniforms", len(p.uniforms))
	return nil
}

func (p *Program) destroy() {
	if p.state == Hydrated {
		p.device.DeleteProgram(p.handle)
	}
	p.handle = 0
}
