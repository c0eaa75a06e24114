package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"material-engine/core"
)

// OBJGroup is one o/g group of a Wavefront file together with the name of
// the material it uses.
type OBJGroup struct {
	Mesh     *Mesh
	Material string
}

// OBJData holds parsed OBJ geometry before upload.
type OBJData struct {
	Groups []OBJGroup
	// MaterialLibs lists the mtllib files, resolved relative to the OBJ file
	// when it was loaded from disk.
	MaterialLibs []string
}

// LoadOBJ parses a Wavefront .obj file.
func LoadOBJ(path string) (*OBJData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open OBJ file: %w", err)
	}
	defer f.Close()

	data, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, lib := range data.MaterialLibs {
		data.MaterialLibs[i] = filepath.Join(filepath.Dir(path), lib)
	}
	return data, nil
}

// ParseOBJ reads positions, normals, texcoords and faces. Polygons are fan
// triangulated and each distinct v/vt/vn triple becomes one vertex.
func ParseOBJ(r io.Reader) (*OBJData, error) {
	data := &OBJData{}

	var positions, normals []mgl32.Vec3
	var uvs []mgl32.Vec2

	current := OBJGroup{Mesh: &Mesh{Name: "default"}}
	material := ""
	vertexMap := make(map[string]uint32)

	flush := func() {
		if len(current.Mesh.Vertices) > 0 {
			data.Groups = append(data.Groups, current)
		}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "v", "vn":
			v, err := parseVec(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			vec := mgl32.Vec3{v[0], v[1], v[2]}
			if parts[0] == "v" {
				positions = append(positions, vec)
			} else {
				normals = append(normals, vec)
			}
		case "vt":
			v, err := parseVec(parts[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			uvs = append(uvs, mgl32.Vec2{v[0], v[1]})
		case "f":
			if len(parts) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			face := make([]uint32, 0, len(parts)-1)
			for _, spec := range parts[1:] {
				if idx, ok := vertexMap[spec]; ok {
					face = append(face, idx)
					continue
				}
				vertex, err := parseFaceVertex(spec, positions, normals, uvs)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx := uint32(len(current.Mesh.Vertices))
				current.Mesh.Vertices = append(current.Mesh.Vertices, vertex)
				vertexMap[spec] = idx
				face = append(face, idx)
			}
			for i := 2; i < len(face); i++ {
				current.Mesh.Indices = append(current.Mesh.Indices, face[0], face[i-1], face[i])
			}
		case "o", "g":
			flush()
			name := "unnamed"
			if len(parts) > 1 {
				name = parts[1]
			}
			current = OBJGroup{Mesh: &Mesh{Name: name}, Material: material}
			vertexMap = make(map[string]uint32)
		case "usemtl":
			if len(parts) > 1 {
				material = parts[1]
				current.Material = material
			}
		case "mtllib":
			data.MaterialLibs = append(data.MaterialLibs, parts[1:]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if len(data.Groups) == 0 {
		return nil, fmt.Errorf("no mesh data found")
	}
	return data, nil
}

func parseVec(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := range out {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseFaceVertex resolves a "v", "v/vt", "v//vn" or "v/vt/vn" reference.
// Negative indices count back from the latest element.
func parseFaceVertex(spec string, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) (core.Vertex, error) {
	var v core.Vertex
	parts := strings.Split(spec, "/")

	idx, err := resolveIndex(parts[0], len(positions))
	if err != nil {
		return v, fmt.Errorf("face vertex %q: %w", spec, err)
	}
	v.Position = positions[idx]

	if len(parts) >= 2 && parts[1] != "" {
		idx, err := resolveIndex(parts[1], len(uvs))
		if err != nil {
			return v, fmt.Errorf("face texcoord %q: %w", spec, err)
		}
		v.UV = uvs[idx]
	}
	if len(parts) >= 3 && parts[2] != "" {
		idx, err := resolveIndex(parts[2], len(normals))
		if err != nil {
			return v, fmt.Errorf("face normal %q: %w", spec, err)
		}
		v.Normal = normals[idx]
	}
	return v, nil
}

func resolveIndex(s string, n int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		idx = n + idx + 1
	}
	if idx < 1 || idx > n {
		return 0, fmt.Errorf("index %s out of range (%d defined)", s, n)
	}
	return idx - 1, nil
}
