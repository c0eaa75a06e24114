package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"material-engine/textures"
)

// UploadTexture uploads tex and returns the GL name, which becomes the
// texture's identity. It satisfies textures.Uploader.
// Call this from the main goroutine (OpenGL context must be current).
func (d *Device) UploadTexture(tex *textures.Texture) (uint32, error) {
	if tex == nil {
		return 0, fmt.Errorf("nil texture")
	}
	want := 1
	if tex.Kind == textures.KindCube {
		want = 6
	}
	if len(tex.Faces) != want {
		return 0, fmt.Errorf("texture %q: %s needs %d faces, has %d", tex.Name, tex.Kind, want, len(tex.Faces))
	}
	size := tex.Width * tex.Height * 4
	for i, f := range tex.Faces {
		if len(f) != size {
			return 0, fmt.Errorf("texture %q face %d: %d bytes, want %d", tex.Name, i, len(f), size)
		}
	}

	var id uint32
	gl.GenTextures(1, &id)

	if tex.Kind == textures.KindCube {
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		for i, face := range tex.Faces {
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA,
				int32(tex.Width), int32(tex.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(face))
		}
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	} else {
		gl.BindTexture(gl.TEXTURE_2D, id)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
			int32(tex.Width), int32(tex.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Faces[0]))
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}

	d.log.Debug("texture uploaded", "texture", tex.Name, "kind", tex.Kind, "id", id)
	return id, nil
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its ID.
func (d *Device) DeleteTexture(tex *textures.Texture) {
	if tex == nil || tex.ID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.ID)
	tex.ID = 0
}

var _ textures.Uploader = (*Device)(nil)
