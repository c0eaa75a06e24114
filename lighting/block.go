package lighting

import (
	"errors"
	"fmt"
	"log/slog"

	"material-engine/core"
	"material-engine/gpu"
	"material-engine/scene"
)

// BlockName is the uniform block name every lit shader declares.
const BlockName = "lighting"

// DefaultBindingPoint is the global binding slot of the lighting block.
const DefaultBindingPoint uint32 = 0

// ErrNotInitialized is returned by Update before Initialize succeeded.
var ErrNotInitialized = errors.New("lighting: block not initialized")

// Build aggregates lights into block data. The first MaxLights non-nil
// lights fill the array in input order and the rest are dropped. The
// ambient colour sums every Ambient light in the input, including those
// past the array capacity.
func Build(lights []*scene.Light) Data {
	var d Data
	var ambient core.Color
	n := 0
	for _, l := range lights {
		if l == nil {
			continue
		}
		if l.Type == scene.LightAmbient {
			ambient = ambient.Add(l.Color)
		}
		if n >= MaxLights {
			continue
		}
		d.Lights[n] = LightRecord{
			Type:             int32(l.Type),
			AttenuationStart: l.AttenuationStart,
			AttenuationEnd:   l.AttenuationEnd,
			FalloffExponent:  l.FalloffExponent,
			Position:         l.Position,
			Direction:        l.Direction,
			Color:            l.Color.Vec3(),
			SpotInnerAngle:   l.SpotInnerAngle,
			SpotOuterAngle:   l.SpotOuterAngle,
		}
		n++
	}
	d.Count = int32(n)
	d.Ambient = ambient.Vec3()
	return d
}

// Block owns the GPU buffer backing the lighting uniform block of one
// context. It is rewritten once per frame, before any lit draw.
type Block struct {
	device  gpu.Device
	binding uint32
	log     *slog.Logger

	buffer      gpu.Buffer
	initialized bool
	data        Data
	dropped     int
}

// NewBlock creates an uninitialised block bound to binding. log may be nil.
func NewBlock(device gpu.Device, binding uint32, log *slog.Logger) *Block {
	return &Block{
		device:  device,
		binding: binding,
		log:     core.LoggerOrDefault(log),
	}
}

// BindingPoint is the global binding slot shaders must use.
func (b *Block) BindingPoint() uint32 { return b.binding }

// Initialize allocates the buffer and binds it. Safe to call repeatedly.
func (b *Block) Initialize() error {
	if b.initialized {
		return nil
	}
	buf, err := b.device.CreateUniformBuffer(Size)
	if err != nil {
		return fmt.Errorf("lighting buffer (%d bytes): %w", Size, err)
	}
	b.device.BindBufferBase(b.binding, buf)
	b.buffer = buf
	b.initialized = true
	b.log.Debug("lighting block initialized", "bytes", Size, "binding", b.binding)
	return nil
}

// Update rebuilds the block from lights and uploads it in one write.
func (b *Block) Update(lights []*scene.Light) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	b.data = Build(lights)

	dropped := 0
	for _, l := range lights {
		if l != nil {
			dropped++
		}
	}
	dropped -= int(b.data.Count)
	if dropped != b.dropped {
		if dropped > 0 {
			b.log.Debug("lights beyond block capacity dropped", "dropped", dropped, "capacity", MaxLights)
		}
		b.dropped = dropped
	}

	b.device.BufferSubData(b.buffer, 0, Encode(&b.data))
	return nil
}

// Data returns the last uploaded block contents.
func (b *Block) Data() Data { return b.data }

// Destroy releases the buffer. The block may be initialised again.
func (b *Block) Destroy() {
	if !b.initialized {
		return
	}
	b.device.DeleteBuffer(b.buffer)
	b.buffer = 0
	b.initialized = false
}
