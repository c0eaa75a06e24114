// Package glsl turns abstract shader names into GLSL 4.10 source and links
// them on a gpu.Device.
//
// Sources are composed from a small set of files: a version line, the
// permutation defines, the shared lighting block for lit models, then the
// body file.
package glsl

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"material-engine/shader"
)

//go:embed src/*.vsh src/*.fsh src/*.glsl
var embedded embed.FS

const version = "#version 410 core\n"

// ErrUnknownShader is returned for names outside the permutation grammar.
var ErrUnknownShader = errors.New("glsl: unknown shader")

// Library reads shader sources from a file system.
type Library struct {
	fsys fs.FS
}

// NewLibrary reads sources from fsys. A nil fsys uses the sources embedded
// in the binary.
func NewLibrary(fsys fs.FS) *Library {
	if fsys == nil {
		sub, err := fs.Sub(embedded, "src")
		if err != nil {
			panic(err)
		}
		fsys = sub
	}
	return &Library{fsys: fsys}
}

// Dir reads sources from a directory on disk, for iterating on shaders
// without rebuilding.
func Dir(path string) *Library {
	return NewLibrary(os.DirFS(path))
}

var litModels = map[string]string{
	"lambert": "LIGHTING_MODEL_LAMBERT",
	"phong":   "LIGHTING_MODEL_PHONG",
	"blinn":   "LIGHTING_MODEL_BLINN",
}

// Vertex returns the full source of the named vertex shader.
func (l *Library) Vertex(name string, caps shader.Capability) (string, error) {
	var (
		file    string
		defines []string
	)
	switch name {
	case "constant":
		file = "constant.vsh"
	default:
		def, ok := litModels[name]
		if !ok {
			return "", fmt.Errorf("vertex %q: %w", name, ErrUnknownShader)
		}
		file = "lit.vsh"
		defines = append(defines, def)
	}
	return l.compose(file, append(defines, capDefines(caps)...), false)
}

// Fragment returns the full source of the named fragment shader. Names
// follow <model>_<c|t|q>[_reflect].
func (l *Library) Fragment(name string, caps shader.Capability) (string, error) {
	parts := strings.Split(name, "_")
	if len(parts) < 2 || len(parts) > 3 {
		return "", fmt.Errorf("fragment %q: %w", name, ErrUnknownShader)
	}
	model, diffuse := parts[0], parts[1]
	reflect := len(parts) == 3
	if reflect && parts[2] != "reflect" {
		return "", fmt.Errorf("fragment %q: %w", name, ErrUnknownShader)
	}

	var (
		file    string
		defines []string
		lit     bool
	)
	switch model {
	case "constant":
		if reflect {
			return "", fmt.Errorf("fragment %q: constant has no reflection: %w", name, ErrUnknownShader)
		}
		file = "constant.fsh"
	case "lambert":
		file, lit = "lambert.fsh", true
	case "phong", "blinn":
		file, lit = "specular.fsh", true
	default:
		return "", fmt.Errorf("fragment %q: %w", name, ErrUnknownShader)
	}
	if lit {
		defines = append(defines, litModels[model])
	}

	switch diffuse {
	case "c":
	case "t":
		defines = append(defines, "DIFFUSE_TEXTURE")
	case "q":
		if lit {
			return "", fmt.Errorf("fragment %q: cube diffuse is unlit only: %w", name, ErrUnknownShader)
		}
		defines = append(defines, "DIFFUSE_CUBE")
	default:
		return "", fmt.Errorf("fragment %q: %w", name, ErrUnknownShader)
	}
	if reflect {
		defines = append(defines, "REFLECT")
	}
	return l.compose(file, append(defines, capDefines(caps)...), lit)
}

func capDefines(caps shader.Capability) []string {
	var out []string
	if caps.Has(shader.CapNormals) {
		out = append(out, "HAS_NORMALS")
	}
	if caps.Has(shader.CapTexcoords) {
		out = append(out, "HAS_TEXCOORDS")
	}
	return out
}

func (l *Library) compose(file string, defines []string, lighting bool) (string, error) {
	var sb strings.Builder
	sb.WriteString(version)
	for _, d := range defines {
		sb.WriteString("#define ")
		sb.WriteString(d)
		sb.WriteByte('\n')
	}
	if lighting {
		inc, err := fs.ReadFile(l.fsys, "lighting.glsl")
		if err != nil {
			return "", fmt.Errorf("read lighting.glsl: %w", err)
		}
		sb.Write(inc)
		sb.WriteByte('\n')
	}
	body, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	sb.Write(body)
	return sb.String(), nil
}
