package textures

import (
	"fmt"
	"image/color"
	"sync"
)

// Kind is the sampler type a texture binds as.
type Kind int

const (
	Kind2D Kind = iota
	KindCube
)

func (k Kind) String() string {
	if k == KindCube {
		return "cube"
	}
	return "2d"
}

// Texture is a texture handed to materials. ID is the stable identity used
// for GPU binding and for draw-order hashing; the material core never
// touches the pixels.
type Texture struct {
	Name   string
	Kind   Kind
	ID     uint32
	Width  int
	Height int
	// Faces holds RGBA8 pixels: one entry for 2D, six (+X,-X,+Y,-Y,+Z,-Z)
	// for cube maps. May be nil once uploaded.
	Faces [][]byte
}

// Uploader pushes pixels to the GPU and returns the texture's identity.
type Uploader interface {
	UploadTexture(tex *Texture) (uint32, error)
	DeleteTexture(tex *Texture)
}

// Manager hands out textures with stable identities, caching by name.
// Without an Uploader identities come from a counter, which is what
// headless tools and tests use.
type Manager struct {
	textures map[string]*Texture
	mu       sync.RWMutex
	uploader Uploader
	nextID   uint32
}

// NewManager creates a texture manager. uploader may be nil.
func NewManager(uploader Uploader) *Manager {
	return &Manager{
		textures: make(map[string]*Texture),
		uploader: uploader,
	}
}

// Get returns the cached texture with the given name.
func (tm *Manager) Get(name string) (*Texture, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	tex, ok := tm.textures[name]
	return tex, ok
}

// Add registers tex under its name and assigns its identity. If a texture
// with that name already exists it is returned instead.
func (tm *Manager) Add(tex *Texture) (*Texture, error) {
	if tex == nil {
		return nil, fmt.Errorf("nil texture")
	}
	if existing, ok := tm.Get(tex.Name); ok {
		return existing, nil
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()
	if existing, ok := tm.textures[tex.Name]; ok {
		return existing, nil
	}
	if tm.uploader != nil {
		id, err := tm.uploader.UploadTexture(tex)
		if err != nil {
			return nil, fmt.Errorf("upload texture %q: %w", tex.Name, err)
		}
		tex.ID = id
	} else {
		tm.nextID++
		tex.ID = tm.nextID
	}
	tm.textures[tex.Name] = tex
	return tex, nil
}

// SolidColor returns a 1x1 texture of the given colour, creating it once.
func (tm *Manager) SolidColor(name string, c color.RGBA) (*Texture, error) {
	if tex, ok := tm.Get(name); ok {
		return tex, nil
	}
	return tm.Add(&Texture{
		Name:   name,
		Kind:   Kind2D,
		Width:  1,
		Height: 1,
		Faces:  [][]byte{{c.R, c.G, c.B, c.A}},
	})
}

// SolidCube returns a 1x1 cube map with all faces set to c.
func (tm *Manager) SolidCube(name string, c color.RGBA) (*Texture, error) {
	if tex, ok := tm.Get(name); ok {
		return tex, nil
	}
	faces := make([][]byte, 6)
	for i := range faces {
		faces[i] = []byte{c.R, c.G, c.B, c.A}
	}
	return tm.Add(&Texture{Name: name, Kind: KindCube, Width: 1, Height: 1, Faces: faces})
}

// Checker returns a checkerboard pattern texture.
func (tm *Manager) Checker(name string, size int, c1, c2 color.RGBA) (*Texture, error) {
	if tex, ok := tm.Get(name); ok {
		return tex, nil
	}
	pixels := make([]byte, size*size*4)
	blockSize := size / 8
	if blockSize < 1 {
		blockSize = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := c2
			if ((x/blockSize)+(y/blockSize))%2 == 0 {
				c = c1
			}
			idx := (y*size + x) * 4
			pixels[idx] = c.R
			pixels[idx+1] = c.G
			pixels[idx+2] = c.B
			pixels[idx+3] = c.A
		}
	}
	return tm.Add(&Texture{Name: name, Kind: Kind2D, Width: size, Height: size, Faces: [][]byte{pixels}})
}

// DestroyAll releases every texture and empties the cache.
func (tm *Manager) DestroyAll() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.uploader != nil {
		for _, tex := range tm.textures {
			tm.uploader.DeleteTexture(tex)
		}
	}
	tm.textures = make(map[string]*Texture)
}
