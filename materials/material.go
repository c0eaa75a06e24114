package materials

import (
	"github.com/google/uuid"

	"material-engine/core"
	"material-engine/textures"
)

// LightingModel is the shading family a material is rendered with.
type LightingModel int

const (
	Constant LightingModel = iota
	Lambert
	Phong
	Blinn
)

func (m LightingModel) String() string {
	switch m {
	case Constant:
		return "constant"
	case Lambert:
		return "lambert"
	case Phong:
		return "phong"
	case Blinn:
		return "blinn"
	}
	return "unknown"
}

// ContentsType is what a visual channel holds.
type ContentsType int

const (
	FixedColor ContentsType = iota
	Texture2D
	TextureCube
)

func (c ContentsType) String() string {
	switch c {
	case FixedColor:
		return "fixed"
	case Texture2D:
		return "texture2d"
	case TextureCube:
		return "texturecube"
	}
	return "unknown"
}

// Visual is one channel of a material (diffuse, specular, reflective).
// A channel holds either a fixed colour or a texture.
type Visual struct {
	Color     core.Color
	Texture   *textures.Texture // nil = use Color
	Intensity float32
}

// ContentsType reports whether the channel is a fixed colour or which
// kind of texture it samples.
func (v Visual) ContentsType() ContentsType {
	if v.Texture == nil {
		return FixedColor
	}
	if v.Texture.Kind == textures.KindCube {
		return TextureCube
	}
	return Texture2D
}

// Material describes surface appearance. The renderer treats it as
// immutable for the duration of a frame.
type Material struct {
	ID   uuid.UUID
	Name string

	LightingModel LightingModel

	Diffuse    Visual
	Specular   Visual
	Reflective Visual

	Transparency float32 // 1.0 = fully opaque
	Shininess    float32

	ReadsFromDepthBuffer bool
	WritesToDepthBuffer  bool
}

// NewMaterial creates a Lambert material with a light grey diffuse colour.
func NewMaterial(name string) *Material {
	return &Material{
		ID:                   uuid.New(),
		Name:                 name,
		LightingModel:        Lambert,
		Diffuse:              Visual{Color: core.Color{R: 0.8, G: 0.8, B: 0.8, A: 1.0}, Intensity: 1},
		Specular:             Visual{Color: core.ColorBlack, Intensity: 1},
		Reflective:           Visual{Color: core.ColorBlack, Intensity: 1},
		Transparency:         1.0,
		Shininess:            2.0,
		ReadsFromDepthBuffer: true,
		WritesToDepthBuffer:  true,
	}
}

// Clone creates a copy of the material with a fresh identity (textures are shared)
func (m *Material) Clone(newName string) *Material {
	clone := *m
	clone.ID = uuid.New()
	clone.Name = newName
	return &clone
}

// --- Default Material Library ---

// DefaultMaterial creates a standard grey material
func DefaultMaterial() *Material {
	return NewMaterial("Default")
}

// UnlitMaterial creates a constant-lit material of the given colour.
func UnlitMaterial(name string, color core.Color) *Material {
	m := NewMaterial(name)
	m.LightingModel = Constant
	m.Diffuse.Color = color
	return m
}

// TexturedMaterial creates a Lambert material sampling diffuse from tex.
func TexturedMaterial(name string, tex *textures.Texture) *Material {
	m := NewMaterial(name)
	m.Diffuse.Texture = tex
	m.Diffuse.Color = core.ColorWhite
	return m
}

// ShinyMaterial creates a Blinn material with a specular map.
func ShinyMaterial(name string, diffuse core.Color, specular *textures.Texture, shininess float32) *Material {
	m := NewMaterial(name)
	m.LightingModel = Blinn
	m.Diffuse.Color = diffuse
	m.Specular.Texture = specular
	m.Shininess = shininess
	return m
}

// ChromeMaterial creates a Phong material reflecting an environment cube map.
func ChromeMaterial(name string, specular, environment *textures.Texture) *Material {
	m := NewMaterial(name)
	m.LightingModel = Phong
	m.Diffuse.Color = core.Color{R: 0.9, G: 0.9, B: 0.9, A: 1.0}
	m.Specular.Texture = specular
	m.Reflective.Texture = environment
	m.Shininess = 64
	return m
}

// GlassMaterial creates a transparent material that does not write depth.
func GlassMaterial(name string) *Material {
	m := NewMaterial(name)
	m.Diffuse.Color = core.Color{R: 0.9, G: 0.95, B: 1.0, A: 1.0}
	m.Transparency = 0.3
	m.WritesToDepthBuffer = false
	return m
}
