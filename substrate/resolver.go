// Package substrate turns a material into the shader permutation that draws
// it and writes the material's state into that shader.
package substrate

import (
	"material-engine/materials"
	"material-engine/textures"
)

// Sampler names as declared by the shader sources.
const (
	SamplerConstant = "sampler"
	SamplerLambert  = "texture"
	SamplerReflect  = "reflect_texture"
	SamplerDiffuse  = "diffuse_texture"
	SamplerSpecular = "specular_texture"
)

// Binding pairs a sampler with the texture bound to it. The index of a
// binding in Variant.Bindings is its texture unit.
type Binding struct {
	Sampler string
	Texture *textures.Texture
}

// Variant is the outcome of resolving a material.
type Variant struct {
	Vertex   string
	Fragment string
	Bindings []Binding
	// Shininess is set when the program declares material_shininess.
	Shininess bool
}

// Samplers returns the sampler names in texture-unit order.
func (v Variant) Samplers() []string {
	out := make([]string, len(v.Bindings))
	for i, b := range v.Bindings {
		out[i] = b.Sampler
	}
	return out
}

// Textures returns the bound textures in texture-unit order.
func (v Variant) Textures() []*textures.Texture {
	out := make([]*textures.Texture, len(v.Bindings))
	for i, b := range v.Bindings {
		out[i] = b.Texture
	}
	return out
}

// Same reports whether two variants pick the same program and bind the same
// textures in the same order.
func (v Variant) Same(o Variant) bool {
	if v.Vertex != o.Vertex || v.Fragment != o.Fragment || v.Shininess != o.Shininess {
		return false
	}
	if len(v.Bindings) != len(o.Bindings) {
		return false
	}
	for i := range v.Bindings {
		if v.Bindings[i] != o.Bindings[i] {
			return false
		}
	}
	return true
}

// Resolve picks the vertex and fragment shader names and the texture
// bindings for m. It is a pure function of the material's lighting model
// and channel contents.
func Resolve(m *materials.Material) Variant {
	switch m.LightingModel {
	case materials.Lambert:
		return resolveLambert(m)
	case materials.Phong, materials.Blinn:
		if m.Specular.ContentsType() != materials.Texture2D {
			return resolveLambert(m)
		}
		return resolveSpecular(m)
	default:
		return resolveConstant(m)
	}
}

func resolveConstant(m *materials.Material) Variant {
	v := Variant{Vertex: "constant"}
	switch m.Diffuse.ContentsType() {
	case materials.Texture2D:
		v.Fragment = "constant_t"
	case materials.TextureCube:
		v.Fragment = "constant_q"
	default:
		v.Fragment = "constant_c"
		return v
	}
	v.Bindings = []Binding{{Sampler: SamplerConstant, Texture: m.Diffuse.Texture}}
	return v
}

func resolveLambert(m *materials.Material) Variant {
	v := Variant{Vertex: "lambert", Fragment: "lambert_c"}
	if m.Diffuse.ContentsType() != materials.FixedColor {
		v.Fragment = "lambert_t"
		v.Bindings = append(v.Bindings, Binding{Sampler: SamplerLambert, Texture: m.Diffuse.Texture})
	}
	if m.Reflective.ContentsType() == materials.TextureCube {
		v.Fragment += "_reflect"
		v.Bindings = append(v.Bindings, Binding{Sampler: SamplerReflect, Texture: m.Reflective.Texture})
	}
	return v
}

func resolveSpecular(m *materials.Material) Variant {
	model := "phong"
	if m.LightingModel == materials.Blinn {
		model = "blinn"
	}
	v := Variant{Vertex: model, Fragment: model + "_c", Shininess: true}
	if m.Diffuse.ContentsType() != materials.FixedColor {
		v.Fragment = model + "_t"
		v.Bindings = append(v.Bindings, Binding{Sampler: SamplerDiffuse, Texture: m.Diffuse.Texture})
	}
	v.Bindings = append(v.Bindings, Binding{Sampler: SamplerSpecular, Texture: m.Specular.Texture})
	if m.Reflective.ContentsType() == materials.TextureCube {
		v.Fragment += "_reflect"
		v.Bindings = append(v.Bindings, Binding{Sampler: SamplerReflect, Texture: m.Reflective.Texture})
	}
	return v
}
