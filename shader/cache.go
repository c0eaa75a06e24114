// Package shader keeps one shared, lazily hydrated program per
// vertex/fragment permutation.
//
// A Cache belongs to one rendering context and is used from that context's
// render thread only; it does no locking.
package shader

import (
	"log/slog"
	"sort"

	"material-engine/core"
	"material-engine/gpu"
)

// DefaultCapabilities is recorded on every program the cache creates.
const DefaultCapabilities = CapTexcoords | CapNormals

type blockBinding struct {
	name    string
	binding uint32
}

// Cache maps vertex/fragment name pairs to shared programs.
type Cache struct {
	compiler Compiler
	device   gpu.Device
	log      *slog.Logger

	programs map[string]*Program
	blocks   []blockBinding
	nextID   uint32
}

// NewCache creates an empty cache. log may be nil.
func NewCache(compiler Compiler, device gpu.Device, log *slog.Logger) *Cache {
	return &Cache{
		compiler: compiler,
		device:   device,
		log:      core.LoggerOrDefault(log),
		programs: make(map[string]*Program),
	}
}

// ProgramName is the cache key of a vertex/fragment pair.
func ProgramName(vertex, fragment string) string {
	return vertex + "_" + fragment
}

// Device is the device programs of this cache are linked on.
func (c *Cache) Device() gpu.Device { return c.device }

// BindBlock makes every program hydrated from now on bind its uniform
// block called name to the global binding point.
func (c *Cache) BindBlock(name string, binding uint32) {
	for i, b := range c.blocks {
		if b.name == name {
			c.blocks[i].binding = binding
			return
		}
	}
	c.blocks = append(c.blocks, blockBinding{name: name, binding: binding})
}

// Acquire returns the program for the vertex/fragment pair, creating it in
// the Registered state on first request. samplers are recorded in order
// on creation and ignored when the program already exists.
func (c *Cache) Acquire(vertex, fragment string, samplers []string) *Program {
	name := ProgramName(vertex, fragment)
	if p, ok := c.programs[name]; ok {
		return p
	}

	c.nextID++
	p := &Program{
		name:     name,
		vertex:   vertex,
		fragment: fragment,
		id:       c.nextID,
		caps:     DefaultCapabilities,
		samplers: append([]string(nil), samplers...),
		byName:   make(map[string]*Uniform),
		cache:    c,
		device:   c.device,
	}
	c.programs[name] = p
	c.log.Debug("shader registered", "program", name, "id", p.id, "samplers", samplers)
	return p
}

// Lookup returns an existing program without creating one.
func (c *Cache) Lookup(vertex, fragment string) (*Program, bool) {
	p, ok := c.programs[ProgramName(vertex, fragment)]
	return p, ok
}

// Len is the number of distinct programs registered.
func (c *Cache) Len() int { return len(c.programs) }

// Programs returns all programs ordered by ID.
func (c *Cache) Programs() []*Program {
	out := make([]*Program, 0, len(c.programs))
	for _, p := range c.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Teardown deletes every hydrated program and empties the cache. IDs keep
// counting up so a program created afterwards never reuses an old ID.
func (c *Cache) Teardown() {
	for _, p := range c.Programs() {
		p.destroy()
	}
	c.programs = make(map[string]*Program)
}
