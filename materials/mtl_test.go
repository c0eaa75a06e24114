package materials

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-engine/core"
	"material-engine/textures"
)

const sampleMTL = `# two materials
newmtl brick
Ka 0.1 0.1 0.1
Kd 0.6 0.3 0.2
Ks 0.5 0.5 0.5
Ns 32
illum 2
map_Kd -s 2 2 1 brick_diffuse.png
map_Ks brick_spec.png

newmtl glass
Kd 0.2 0.4 0.9
Tr 0.75
illum 0

newmtl mirror
illum 3
refl -type sphere sky.png
`

func TestParseMTL(t *testing.T) {
	texs := map[string]*textures.Texture{
		"brick_diffuse.png": {Name: "brick_diffuse.png", ID: 1},
		"brick_spec.png":    {Name: "brick_spec.png", ID: 2},
		"sky.png":           {Name: "sky.png", ID: 3, Kind: textures.KindCube},
	}
	lookup := func(name string) *textures.Texture { return texs[name] }

	mats, err := ParseMTL(strings.NewReader(sampleMTL), lookup)
	require.NoError(t, err)
	require.Len(t, mats, 3)

	brick := mats["brick"]
	require.NotNil(t, brick)
	assert.Equal(t, "brick", brick.Name)
	assert.Equal(t, Blinn, brick.LightingModel)
	assert.Equal(t, float32(32), brick.Shininess)
	assert.Same(t, texs["brick_diffuse.png"], brick.Diffuse.Texture)
	assert.Equal(t, core.ColorWhite, brick.Diffuse.Color, "a diffuse map replaces Kd")
	assert.Same(t, texs["brick_spec.png"], brick.Specular.Texture)
	assert.InDelta(t, 0.5, brick.Specular.Color.G, 1e-6)
	assert.Equal(t, float32(1), brick.Transparency)
	assert.True(t, brick.WritesToDepthBuffer)

	glass := mats["glass"]
	require.NotNil(t, glass)
	assert.Equal(t, Constant, glass.LightingModel)
	assert.InDelta(t, 0.25, glass.Transparency, 1e-6)
	assert.False(t, glass.WritesToDepthBuffer)
	assert.True(t, glass.ReadsFromDepthBuffer)
	assert.InDelta(t, 0.4, glass.Diffuse.Color.G, 1e-6)

	mirror := mats["mirror"]
	require.NotNil(t, mirror)
	assert.Equal(t, Phong, mirror.LightingModel)
	assert.Equal(t, TextureCube, mirror.Reflective.ContentsType())
}

func TestParseMTLWithoutLookup(t *testing.T) {
	mats, err := ParseMTL(strings.NewReader(sampleMTL), nil)
	require.NoError(t, err)
	assert.Equal(t, FixedColor, mats["brick"].Diffuse.ContentsType())
	assert.InDelta(t, 0.6, mats["brick"].Diffuse.Color.R, 1e-6)
}

func TestParseMTLIgnoresStatementsBeforeNewmtl(t *testing.T) {
	mats, err := ParseMTL(strings.NewReader("Kd 1 0 0\nnewmtl a\n"), nil)
	require.NoError(t, err)
	require.Contains(t, mats, "a")
	assert.Equal(t, NewMaterial("a").Diffuse.Color, mats["a"].Diffuse.Color)
}

func TestParseMTLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unnamed", "newmtl\n", "line 1"},
		{"short colour", "newmtl a\nKd 1 1\n", "line 2: Kd"},
		{"bad number", "newmtl a\n\nNs shiny\n", "line 3: Ns"},
		{"bad illum", "newmtl a\nillum x\n", "illum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMTL(strings.NewReader(tt.src), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.mtl")
	require.NoError(t, os.WriteFile(path, []byte(sampleMTL), 0o644))

	mats, err := LoadMTL(path, nil)
	require.NoError(t, err)
	assert.Len(t, mats, 3)

	_, err = LoadMTL(filepath.Join(t.TempDir(), "missing.mtl"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
