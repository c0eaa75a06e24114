package textures

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// twoRows is a 2x2 image with a red top row and a blue bottom row.
func twoRows() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
		img.Set(x, 1, color.NRGBA{B: 255, A: 255})
	}
	return img
}

func TestDecodeFlipsRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, twoRows()))

	tex, err := Decode("rows.png", &buf)
	require.NoError(t, err)
	assert.Equal(t, Kind2D, tex.Kind)
	assert.Equal(t, 2, tex.Width)
	assert.Equal(t, 2, tex.Height)
	require.Len(t, tex.Faces, 1)
	assert.Equal(t, []byte{0, 0, 255, 255}, tex.Faces[0][:4], "bottom row first")
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Faces[0][8:12])
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, twoRows()))

	tex, err := Decode("rows.bmp", &buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Faces[0][8:12])
}

func TestDecodeScalesLargeImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, MaxSize*2, MaxSize/2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	tex, err := Decode("wide.png", &buf)
	require.NoError(t, err)
	assert.Equal(t, MaxSize, tex.Width)
	assert.Equal(t, MaxSize/4, tex.Height)
	assert.Len(t, tex.Faces[0], MaxSize*MaxSize/4*4)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("junk.png", bytes.NewReader([]byte("not an image")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "junk.png")
}

func TestManagerLoadCachesByPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, twoRows()))
	require.NoError(t, f.Close())

	tm := NewManager(nil)
	a, err := tm.Load(path)
	require.NoError(t, err)
	b, err := tm.Load(path)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, uint32(1), a.ID)

	_, err = tm.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
