package materials

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-engine/textures"
)

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGLTFTexturesResolvesEveryImageSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diffuse map.png"), pngBytes(t, color.RGBA{R: 255, A: 255}), 0o644))
	packed := pngBytes(t, color.RGBA{G: 255, A: 255})
	inline := pngBytes(t, color.RGBA{B: 255, A: 255})

	doc := &gltf.Document{
		Buffers:     []*gltf.Buffer{{ByteLength: len(packed), Data: packed}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteLength: len(packed)}},
		Images: []*gltf.Image{
			{URI: "diffuse%20map.png"},
			{BufferView: gltf.Index(0), MimeType: "image/png"},
			{URI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(inline)},
			{URI: "missing.png"},
		},
		Textures: []*gltf.Texture{
			{Source: gltf.Index(0)},
			{Source: gltf.Index(1)},
			{Source: gltf.Index(2)},
			{Source: gltf.Index(3)},
			{},
		},
	}
	tm := textures.NewManager(nil)
	lookup := GLTFTextures(doc, dir, tm, nil)

	file := lookup(0)
	require.NotNil(t, file)
	assert.Equal(t, filepath.Join(dir, "diffuse map.png"), file.Name)
	assert.Equal(t, []byte{255, 0, 0, 255}, file.Faces[0])
	assert.Same(t, file, lookup(0), "images load once")

	view := lookup(1)
	require.NotNil(t, view)
	assert.Equal(t, []byte{0, 255, 0, 255}, view.Faces[0])

	data := lookup(2)
	require.NotNil(t, data)
	assert.Equal(t, []byte{0, 0, 255, 255}, data.Faces[0])
	assert.NotEqual(t, view.ID, data.ID)

	assert.Nil(t, lookup(3), "missing file")
	assert.Nil(t, lookup(4), "texture without source")
	assert.Nil(t, lookup(9), "index out of range")
}

func TestImportGLTF(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.png"), pngBytes(t, color.RGBA{R: 200, A: 255}), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spec.png"), pngBytes(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}), 0o644))

	doc := &gltf.Document{
		Asset:  gltf.Asset{Version: "2.0"},
		Images: []*gltf.Image{{URI: "base.png"}, {URI: "spec.png"}},
		Textures: []*gltf.Texture{
			{Source: gltf.Index(0)},
			{Source: gltf.Index(1)},
		},
		Materials: []*gltf.Material{{
			Name:       "painted",
			Extensions: gltf.Extensions{extSpecular: json.RawMessage(`{"specularTexture":{"index":1}}`)},
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: 0},
			},
		}},
	}
	path := filepath.Join(dir, "painted.gltf")
	require.NoError(t, gltf.Save(doc, path))

	tm := textures.NewManager(nil)
	mats, err := ImportGLTF(path, tm, nil)
	require.NoError(t, err)
	require.Len(t, mats, 1)

	m := mats[0]
	assert.Equal(t, Blinn, m.LightingModel)
	require.NotNil(t, m.Diffuse.Texture)
	assert.Equal(t, filepath.Join(dir, "base.png"), m.Diffuse.Texture.Name)
	require.NotNil(t, m.Specular.Texture)
	assert.Equal(t, filepath.Join(dir, "spec.png"), m.Specular.Texture.Name)

	_, err = ImportGLTF(filepath.Join(dir, "nope.gltf"), tm, nil)
	assert.Error(t, err)
}
