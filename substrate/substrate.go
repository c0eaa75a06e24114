package substrate

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"material-engine/gpu"
	"material-engine/materials"
	"material-engine/shader"
	"material-engine/textures"
)

// Uniform names shared by every program.
const (
	UniformNormalMatrix     = "normal_matrix"
	UniformModelMatrix      = "model_matrix"
	UniformModelViewMatrix  = "modelview_matrix"
	UniformMVPMatrix        = "modelview_projection_matrix"
	UniformCameraPosition   = "camera_position"
	UniformDiffuseColor     = "material_diffuse_surface_color"
	UniformDiffuseIntensity = "material_diffuse_intensity"
	UniformAlpha            = "material_alpha"
	UniformShininess        = "material_shininess"
)

// Substrate binds one material to its program. Materials that resolve to
// the same variant share the program and only differ in uniform values.
type Substrate struct {
	material *materials.Material
	variant  Variant
	program  *shader.Program
	device   gpu.Device

	normalMatrix     shader.Handle
	modelMatrix      shader.Handle
	modelViewMatrix  shader.Handle
	mvpMatrix        shader.Handle
	cameraPosition   shader.Handle
	diffuseColor     shader.Handle
	diffuseIntensity shader.Handle
	alpha            shader.Handle
	shininess        shader.Handle
}

// New resolves m, acquires its program from cache and hydrates it. The
// first substrate to acquire a program declares the program's uniforms;
// later ones look the same handles up.
func New(m *materials.Material, cache *shader.Cache) (*Substrate, error) {
	v := Resolve(m)
	p := cache.Acquire(v.Vertex, v.Fragment, v.Samplers())

	if p.State() == shader.Registered {
		if err := declare(p, v); err != nil {
			return nil, err
		}
	}
	if err := p.Hydrate(); err != nil {
		return nil, fmt.Errorf("material %q: %w", m.Name, err)
	}

	return &Substrate{
		material: m,
		variant:  v,
		program:  p,
		device:   cache.Device(),

		normalMatrix:     p.Uniform(UniformNormalMatrix),
		modelMatrix:      p.Uniform(UniformModelMatrix),
		modelViewMatrix:  p.Uniform(UniformModelViewMatrix),
		mvpMatrix:        p.Uniform(UniformMVPMatrix),
		cameraPosition:   p.Uniform(UniformCameraPosition),
		diffuseColor:     p.Uniform(UniformDiffuseColor),
		diffuseIntensity: p.Uniform(UniformDiffuseIntensity),
		alpha:            p.Uniform(UniformAlpha),
		shininess:        p.Uniform(UniformShininess),
	}, nil
}

type decl struct {
	kind shader.Kind
	name string
}

var commonUniforms = []decl{
	{shader.Mat4, UniformNormalMatrix},
	{shader.Mat4, UniformModelMatrix},
	{shader.Mat4, UniformModelViewMatrix},
	{shader.Mat4, UniformMVPMatrix},
	{shader.Vec3, UniformCameraPosition},
	{shader.Vec4, UniformDiffuseColor},
	{shader.Float, UniformDiffuseIntensity},
	{shader.Float, UniformAlpha},
}

func declare(p *shader.Program, v Variant) error {
	uniforms := commonUniforms
	if v.Shininess {
		uniforms = append(uniforms[:len(uniforms):len(uniforms)], decl{shader.Float, UniformShininess})
	}
	for _, u := range uniforms {
		if _, err := p.AddUniform(u.kind, u.name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Substrate) Material() *materials.Material { return s.material }
func (s *Substrate) Variant() Variant { return s.variant }
func (s *Substrate) Program() *shader.Program { return s.program }

// BindShader makes the substrate's program current.
func (s *Substrate) BindShader() {
	s.device.UseProgram(s.program.Handle())
}

// BindTextures binds binding i to texture unit i.
func (s *Substrate) BindTextures() {
	for unit, b := range s.variant.Bindings {
		if b.Texture == nil {
			continue
		}
		target := gpu.Texture2D
		if b.Texture.Kind == textures.KindCube {
			target = gpu.TextureCube
		}
		s.device.BindTexture(unit, target, b.Texture.ID)
	}
}

// BindViewUniforms writes the per-draw transforms. The normal matrix is
// the inverse transpose of model; the MVP is projection * modelView.
func (s *Substrate) BindViewUniforms(model, modelView, projection mgl32.Mat4, camera mgl32.Vec3) {
	s.normalMatrix.SetMat4(model.Inv().Transpose())
	s.modelMatrix.SetMat4(model)
	s.modelViewMatrix.SetMat4(modelView)
	s.mvpMatrix.SetMat4(projection.Mul4(modelView))
	s.cameraPosition.SetVec3(camera)
}

// BindMaterialUniforms writes the material's values. opacity scales the
// material transparency, e.g. for fading a whole object.
func (s *Substrate) BindMaterialUniforms(opacity float32) {
	m := s.material
	s.diffuseColor.SetVec4(m.Diffuse.Color.Vec4())
	s.diffuseIntensity.SetFloat(m.Diffuse.Intensity)
	s.alpha.SetFloat(m.Transparency * opacity)
	s.shininess.SetFloat(m.Shininess)
}

// BindDepthSettings applies the material's depth read/write flags.
func (s *Substrate) BindDepthSettings() {
	s.device.DepthMask(s.material.WritesToDepthBuffer)
	if s.material.ReadsFromDepthBuffer {
		s.device.SetDepthFunc(gpu.DepthLessEqual)
	} else {
		s.device.SetDepthFunc(gpu.DepthAlways)
	}
}

// UpdateSortKey fills key with this substrate's program and texture
// identity.
func (s *Substrate) UpdateSortKey(key *SortKey) {
	key.Shader = s.program.ID()
	key.Textures = HashTextures(s.variant.Textures())
}
