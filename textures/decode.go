package textures

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// MaxSize bounds the longest edge of decoded images. Larger images are
// scaled down on load.
const MaxSize = 2048

// Decode reads a PNG, JPEG, BMP or TIFF image into a 2D texture. Rows are
// stored bottom-up, the order texture coordinates expect.
func Decode(name string, r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", name, err)
	}
	rgba := toRGBA(img, MaxSize)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	return &Texture{
		Name:   name,
		Kind:   Kind2D,
		Width:  w,
		Height: h,
		Faces:  [][]byte{flipRows(rgba.Pix, w*4, h)},
	}, nil
}

// Load decodes the image at path and registers it under path. A texture
// already loaded from path is returned as is.
func (tm *Manager) Load(path string) (*Texture, error) {
	if tex, ok := tm.Get(path); ok {
		return tex, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tex, err := Decode(path, f)
	if err != nil {
		return nil, err
	}
	return tm.Add(tex)
}

func toRGBA(img image.Image, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxSize || h > maxSize {
		if w >= h {
			w, h = maxSize, max(1, h*maxSize/w)
		} else {
			w, h = max(1, w*maxSize/h), maxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		return dst
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func flipRows(pix []byte, stride, rows int) []byte {
	out := make([]byte, len(pix))
	for y := 0; y < rows; y++ {
		copy(out[y*stride:(y+1)*stride], pix[(rows-1-y)*stride:(rows-y)*stride])
	}
	return out
}
