package opengl

import (
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"material-engine/core"
	"material-engine/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IndexCount  int32
	VertexCount int32
	HasIndices  bool
}

// UploadMesh copies mesh to the GPU. Attributes use the locations the
// shader sources declare: 0 position, 1 normal, 2 texcoord.
func (d *Device) UploadMesh(mesh *scene.Mesh) *GPUMesh {
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gm := &GPUMesh{
		IndexCount:  int32(len(mesh.Indices)),
		VertexCount: int32(len(mesh.Vertices)),
		HasIndices:  len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gm.VAO)
	gl.GenBuffers(1, &gm.VBO)
	gl.BindVertexArray(gm.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gm.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	if gm.HasIndices {
		gl.GenBuffers(1, &gm.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return gm
}

// Draw issues the mesh with whatever program and state are bound.
func (gm *GPUMesh) Draw() {
	gl.BindVertexArray(gm.VAO)
	if gm.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gm.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, gm.VertexCount)
	}
	gl.BindVertexArray(0)
}

// Release frees the mesh's buffers.
func (gm *GPUMesh) Release() {
	if gm.EBO != 0 {
		gl.DeleteBuffers(1, &gm.EBO)
	}
	gl.DeleteBuffers(1, &gm.VBO)
	gl.DeleteVertexArrays(1, &gm.VAO)
	*gm = GPUMesh{}
}
