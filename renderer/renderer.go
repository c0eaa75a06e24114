// Package renderer orders draws by material state and drives substrates,
// the lighting block and the shader cache of one rendering context.
package renderer

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"material-engine/core"
	"material-engine/gpu"
	"material-engine/lighting"
	"material-engine/materials"
	"material-engine/scene"
	"material-engine/shader"
	"material-engine/substrate"
	"material-engine/textures"
)

// Options configures a RenderEngine.
type Options struct {
	// BindingPoint is the global slot of the lighting block.
	BindingPoint uint32
	Logger       *slog.Logger
}

// View is the camera state shared by every draw of a frame.
type View struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Camera     mgl32.Vec3
}

// ViewFromCamera captures cam's current matrices.
func ViewFromCamera(cam *scene.Camera) View {
	return View{
		View:       cam.GetViewMatrix(),
		Projection: cam.GetProjectionMatrix(),
		Camera:     cam.Position,
	}
}

// DrawCommand is one queued draw.
type DrawCommand struct {
	Material *materials.Material
	Model    mgl32.Mat4
	// RenderingOrder sorts before any material state; lower draws first.
	RenderingOrder int
	// Fade reduces the material alpha: alpha = transparency * (1 - Fade).
	Fade float32
	// Draw issues the geometry once all state is bound.
	Draw func()
}

// DrawKey orders queued draws. Fields compare in declaration order.
type DrawKey struct {
	RenderingOrder int
	Shader         uint32
	Textures       uint32
	Sequence       int
}

// Less reports whether k sorts before o.
func (k DrawKey) Less(o DrawKey) bool {
	if k.RenderingOrder != o.RenderingOrder {
		return k.RenderingOrder < o.RenderingOrder
	}
	if k.Shader != o.Shader {
		return k.Shader < o.Shader
	}
	if k.Textures != o.Textures {
		return k.Textures < o.Textures
	}
	return k.Sequence < o.Sequence
}

// FrameStats counts the state changes of one Flush.
type FrameStats struct {
	Draws           int
	ProgramSwitches int
	TextureSwitches int
}

type queued struct {
	key DrawKey
	sub *substrate.Substrate
	cmd DrawCommand
}

// RenderEngine is the draw-order consumer of one rendering context. Like
// the device it wraps, it is used from the render thread only.
type RenderEngine struct {
	device gpu.Device
	cache  *shader.Cache
	block  *lighting.Block
	log    *slog.Logger

	substrates map[uuid.UUID]*substrate.Substrate
	queue      []queued
	sequence   int

	last FrameStats
}

// New creates the shader cache and initialises the lighting block.
func New(dev gpu.Device, compiler shader.Compiler, opts Options) (*RenderEngine, error) {
	log := core.LoggerOrDefault(opts.Logger)

	cache := shader.NewCache(compiler, dev, log)
	cache.BindBlock(lighting.BlockName, opts.BindingPoint)

	block := lighting.NewBlock(dev, opts.BindingPoint, log)
	if err := block.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to create lighting block: %w", err)
	}

	log.Info("render engine initialized", "lighting_binding", opts.BindingPoint)
	return &RenderEngine{
		device:     dev,
		cache:      cache,
		block:      block,
		log:        log,
		substrates: make(map[uuid.UUID]*substrate.Substrate),
	}, nil
}

// Cache exposes the shader cache, mainly for inspection.
func (re *RenderEngine) Cache() *shader.Cache { return re.cache }

// Lighting exposes the lighting block.
func (re *RenderEngine) Lighting() *lighting.Block { return re.block }

// Substrate returns the substrate of m, creating it on first use. A
// substrate is rebuilt when the material's channels now resolve to a
// different program or texture set.
func (re *RenderEngine) Substrate(m *materials.Material) (*substrate.Substrate, error) {
	if s, ok := re.substrates[m.ID]; ok {
		if s.Material() == m && s.Variant().Same(substrate.Resolve(m)) {
			return s, nil
		}
		re.log.Debug("material changed, rebuilding substrate", "material", m.Name)
	}
	s, err := substrate.New(m, re.cache)
	if err != nil {
		delete(re.substrates, m.ID)
		return nil, err
	}
	re.substrates[m.ID] = s
	return s, nil
}

// Forget drops the substrate of a material that will not be drawn again.
// The shared program stays in the cache.
func (re *RenderEngine) Forget(m *materials.Material) {
	delete(re.substrates, m.ID)
}

// BeginFrame uploads the frame's lights and clears the draw queue.
func (re *RenderEngine) BeginFrame(lights []*scene.Light) error {
	re.queue = re.queue[:0]
	re.sequence = 0
	return re.block.Update(lights)
}

// Submit queues a draw. It fails when the material's program cannot be
// built; the draw is dropped in that case.
func (re *RenderEngine) Submit(cmd DrawCommand) error {
	if cmd.Material == nil {
		return fmt.Errorf("submit: nil material")
	}
	s, err := re.Substrate(cmd.Material)
	if err != nil {
		return err
	}
	var sk substrate.SortKey
	s.UpdateSortKey(&sk)

	re.queue = append(re.queue, queued{
		key: DrawKey{
			RenderingOrder: cmd.RenderingOrder,
			Shader:         sk.Shader,
			Textures:       sk.Textures,
			Sequence:       re.sequence,
		},
		sub: s,
		cmd: cmd,
	})
	re.sequence++
	return nil
}

// SubmitScene queues every visible node of s that has a mesh and a
// material. Nodes whose bounds fall outside v's frustum are skipped and
// counted. draw is called with the node when its draw is issued. Nodes whose
// program fails to build are logged and skipped.
func (re *RenderEngine) SubmitScene(s *scene.Scene, v View, draw func(*scene.Node)) (culled int) {
	frustum := scene.FrustumFromVP(v.Projection.Mul4(v.View))
	for _, n := range s.GetVisibleNodes() {
		model := n.GetWorldMatrix()
		if box := scene.ComputeAABB(n.Mesh, model); !box.IntersectsFrustum(&frustum) {
			culled++
			continue
		}
		node := n
		err := re.Submit(DrawCommand{
			Material:       n.Material,
			Model:          model,
			RenderingOrder: n.RenderingOrder,
			Fade:           1 - n.Opacity,
			Draw:           func() { draw(node) },
		})
		if err != nil {
			re.log.Error("node draw dropped", "node", n.Name, "err", err)
		}
	}
	return culled
}

// Flush sorts the queued draws and issues them. The program is bound only
// when it changes between consecutive draws, textures only when the
// program or the texture set changes.
func (re *RenderEngine) Flush(v View) FrameStats {
	sort.SliceStable(re.queue, func(i, j int) bool {
		return re.queue[i].key.Less(re.queue[j].key)
	})

	var (
		stats FrameStats
		prev  *DrawKey
		bound []*textures.Texture
	)
	for i := range re.queue {
		q := &re.queue[i]
		set := q.sub.Variant().Textures()
		programChanged := prev == nil || prev.Shader != q.key.Shader
		texturesChanged := programChanged || !sameTextures(bound, set)

		if programChanged {
			q.sub.BindShader()
			stats.ProgramSwitches++
		}
		if texturesChanged && len(set) > 0 {
			q.sub.BindTextures()
			stats.TextureSwitches++
			bound = set
		}

		modelView := v.View.Mul4(q.cmd.Model)
		q.sub.BindViewUniforms(q.cmd.Model, modelView, v.Projection, v.Camera)
		q.sub.BindMaterialUniforms(1 - q.cmd.Fade)
		q.sub.BindDepthSettings()

		if q.cmd.Draw != nil {
			q.cmd.Draw()
		}
		stats.Draws++
		prev = &q.key
	}

	re.queue = re.queue[:0]
	re.last = stats
	return stats
}

// sameTextures reports whether binding b after a leaves every unit as it
// was. The sort key's texture hash only orders draws; it can collide.
func sameTextures(a, b []*textures.Texture) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if a[i] == nil || b[i] == nil || a[i].ID != b[i].ID || a[i].Kind != b[i].Kind {
			return false
		}
	}
	return true
}

// DrawStats returns the stats of the most recent Flush.
func (re *RenderEngine) DrawStats() FrameStats { return re.last }

// Destroy deletes every program and the lighting buffer.
func (re *RenderEngine) Destroy() {
	re.cache.Teardown()
	re.block.Destroy()
	re.substrates = make(map[uuid.UUID]*substrate.Substrate)
	re.queue = nil
}
