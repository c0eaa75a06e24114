package textures

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerAssignsStableIdentities(t *testing.T) {
	tm := NewManager(nil)

	a, err := tm.SolidColor("white", color.RGBA{255, 255, 255, 255})
	require.NoError(t, err)
	b, err := tm.Checker("checker", 16, color.RGBA{A: 255}, color.RGBA{R: 255, A: 255})
	require.NoError(t, err)
	again, err := tm.SolidColor("white", color.RGBA{})
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, uint32(1), a.ID)
	assert.Equal(t, uint32(2), b.ID)
	assert.Len(t, b.Faces[0], 16*16*4)
}

func TestSolidCubeHasSixFaces(t *testing.T) {
	tm := NewManager(nil)
	cube, err := tm.SolidCube("sky", color.RGBA{B: 255, A: 255})
	require.NoError(t, err)
	assert.Equal(t, KindCube, cube.Kind)
	assert.Len(t, cube.Faces, 6)
}

type countingUploader struct {
	uploaded, deleted int
}

func (u *countingUploader) UploadTexture(tex *Texture) (uint32, error) {
	u.uploaded++
	return uint32(100 + u.uploaded), nil
}

func (u *countingUploader) DeleteTexture(*Texture) { u.deleted++ }

func TestManagerUsesUploader(t *testing.T) {
	up := &countingUploader{}
	tm := NewManager(up)

	tex, err := tm.SolidColor("red", color.RGBA{R: 255, A: 255})
	require.NoError(t, err)
	_, err = tm.SolidColor("red", color.RGBA{R: 255, A: 255})
	require.NoError(t, err)

	assert.Equal(t, uint32(101), tex.ID)
	assert.Equal(t, 1, up.uploaded)

	tm.DestroyAll()
	assert.Equal(t, 1, up.deleted)
	_, ok := tm.Get("red")
	assert.False(t, ok)
}
