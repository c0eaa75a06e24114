package materials

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"material-engine/core"
	"material-engine/textures"
)

const (
	extUnlit    = "KHR_materials_unlit"
	extSpecular = "KHR_materials_specular"
)

// TextureLookup returns the texture for a glTF texture index, or nil when
// it is unavailable. Image decoding is the caller's business.
type TextureLookup func(index int) *textures.Texture

// ImportGLTF opens a glTF file and converts its materials, loading the
// images their textures reference into tm. log may be nil.
func ImportGLTF(path string, tm *textures.Manager, log *slog.Logger) ([]*Material, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return FromGLTF(doc, GLTFTextures(doc, filepath.Dir(path), tm, log)), nil
}

// GLTFTextures returns a lookup that decodes the image behind a glTF
// texture index. Images may be files relative to dir, data URIs or buffer
// views. Images that fail to load are logged and resolve to nil.
func GLTFTextures(doc *gltf.Document, dir string, tm *textures.Manager, log *slog.Logger) TextureLookup {
	log = core.LoggerOrDefault(log)
	return func(index int) *textures.Texture {
		tex, err := loadGLTFImage(doc, dir, tm, index)
		if err != nil {
			log.Warn("gltf texture skipped", "texture", index, "err", err)
			return nil
		}
		return tex
	}
}

func loadGLTFImage(doc *gltf.Document, dir string, tm *textures.Manager, index int) (*textures.Texture, error) {
	if index < 0 || index >= len(doc.Textures) || doc.Textures[index].Source == nil {
		return nil, fmt.Errorf("texture %d has no image", index)
	}
	src := *doc.Textures[index].Source
	if src < 0 || src >= len(doc.Images) {
		return nil, fmt.Errorf("image %d out of range", src)
	}
	img := doc.Images[src]

	var data []byte
	switch {
	case img.BufferView != nil:
		bv := *img.BufferView
		if bv < 0 || bv >= len(doc.BufferViews) {
			return nil, fmt.Errorf("image %d: buffer view %d out of range", src, bv)
		}
		view := doc.BufferViews[bv]
		if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
			return nil, fmt.Errorf("image %d: buffer %d out of range", src, view.Buffer)
		}
		buf := doc.Buffers[view.Buffer].Data
		if view.ByteOffset+view.ByteLength > len(buf) {
			return nil, fmt.Errorf("image %d: buffer view %d exceeds its buffer", src, bv)
		}
		data = buf[view.ByteOffset : view.ByteOffset+view.ByteLength]
	case img.IsEmbeddedResource():
		var err error
		if data, err = img.MarshalData(); err != nil {
			return nil, fmt.Errorf("image %d: %w", src, err)
		}
	case img.URI != "":
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		return tm.Load(filepath.Join(dir, filepath.FromSlash(uri)))
	default:
		return nil, fmt.Errorf("image %d has no data", src)
	}

	name := fmt.Sprintf("%s#image%d", dir, src)
	if tex, ok := tm.Get(name); ok {
		return tex, nil
	}
	tex, err := textures.Decode(name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return tm.Add(tex)
}

// FromGLTF converts every material of doc, in document order.
//
// Metallic-roughness has no counterpart in the lighting models, so the
// mapping keeps base colour and alpha, marks KHR_materials_unlit materials
// Constant, and upgrades to Blinn when KHR_materials_specular supplies a
// specular texture. Everything else is Lambert.
func FromGLTF(doc *gltf.Document, lookup TextureLookup) []*Material {
	out := make([]*Material, 0, len(doc.Materials))
	for i, gm := range doc.Materials {
		name := gm.Name
		if name == "" {
			name = fmt.Sprintf("gltf_material_%d", i)
		}
		m := NewMaterial(name)
		m.Diffuse.Color = core.ColorWhite

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			m.Diffuse.Color = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: 1}
			if gm.AlphaMode == gltf.AlphaBlend {
				m.Transparency = float32(cf[3])
			}
			if pbr.BaseColorTexture != nil {
				m.Diffuse.Texture = resolveTexture(lookup, pbr.BaseColorTexture.Index)
			}
			// Rougher surfaces get a broader highlight.
			roughness := float32(pbr.RoughnessFactorOrDefault())
			m.Shininess = 2 + (1-roughness)*126
		}

		if gm.AlphaMode == gltf.AlphaBlend {
			m.WritesToDepthBuffer = false
		}

		switch {
		case hasExtension(gm.Extensions, extUnlit):
			m.LightingModel = Constant
		default:
			if idx, ok := specularTextureIndex(gm.Extensions); ok {
				if tex := resolveTexture(lookup, idx); tex != nil {
					m.LightingModel = Blinn
					m.Specular.Texture = tex
				}
			}
		}
		out = append(out, m)
	}
	return out
}

func resolveTexture(lookup TextureLookup, index int) *textures.Texture {
	if lookup == nil {
		return nil
	}
	return lookup(index)
}

func hasExtension(exts gltf.Extensions, name string) bool {
	if exts == nil {
		return false
	}
	_, ok := exts[name]
	return ok
}

// specularTextureIndex digs the specularTexture index out of an undecoded
// KHR_materials_specular payload.
func specularTextureIndex(exts gltf.Extensions) (int, bool) {
	if exts == nil {
		return 0, false
	}
	raw, ok := exts[extSpecular]
	if !ok {
		return 0, false
	}
	var payload []byte
	switch v := raw.(type) {
	case json.RawMessage:
		payload = v
	case []byte:
		payload = v
	default:
		var err error
		if payload, err = json.Marshal(v); err != nil {
			return 0, false
		}
	}
	var spec struct {
		SpecularTexture *struct {
			Index int `json:"index"`
		} `json:"specularTexture"`
	}
	if err := json.Unmarshal(payload, &spec); err != nil || spec.SpecularTexture == nil {
		return 0, false
	}
	return spec.SpecularTexture.Index, true
}
