package substrate

import "material-engine/textures"

// SortKey groups draws that can share GPU state. Equal Shader means the
// same program; equal Textures means the same textures in the same units.
type SortKey struct {
	Shader   uint32
	Textures uint32
}

// HashTextures folds texture IDs in binding order: h = h*31 + id, wrapping
// at 32 bits. Order matters; nil entries hash as id 0.
func HashTextures(texs []*textures.Texture) uint32 {
	var h uint32
	for _, t := range texs {
		var id uint32
		if t != nil {
			id = t.ID
		}
		h = h*31 + id
	}
	return h
}
