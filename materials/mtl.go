package materials

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"material-engine/core"
	"material-engine/textures"
)

// MapLookup resolves a texture file named by a map_* statement. It may
// return nil, in which case the channel keeps its fixed colour.
type MapLookup func(name string) *textures.Texture

// LoadMTL parses a Wavefront .mtl file.
func LoadMTL(path string, lookup MapLookup) (map[string]*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats, err := ParseMTL(f, lookup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mats, nil
}

// ParseMTL reads material definitions keyed by their newmtl name.
//
// The illum statement picks the lighting model: 0 is Constant, 1 is
// Lambert, 2 is Blinn and anything higher is Phong. Statements this engine
// has no use for are skipped.
func ParseMTL(r io.Reader, lookup MapLookup) (map[string]*Material, error) {
	result := make(map[string]*Material)
	var current *Material

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		key, args := parts[0], parts[1:]

		if key == "newmtl" {
			if len(args) == 0 {
				return nil, fmt.Errorf("line %d: newmtl without a name", lineNo)
			}
			current = NewMaterial(args[0])
			result[args[0]] = current
			continue
		}
		if current == nil {
			continue
		}

		var err error
		switch key {
		case "Kd":
			current.Diffuse.Color, err = parseColor(args)
		case "Ks":
			current.Specular.Color, err = parseColor(args)
		case "Ka":
			// Ambient comes from the lighting block.
		case "Ns":
			current.Shininess, err = parseFloat(args)
		case "d", "Tr":
			var d float32
			d, err = parseFloat(args)
			if key == "Tr" {
				d = 1 - d
			}
			current.Transparency = d
			current.WritesToDepthBuffer = d >= 1
		case "illum":
			var n int
			if len(args) > 0 {
				n, err = strconv.Atoi(args[0])
			} else {
				err = fmt.Errorf("missing value")
			}
			current.LightingModel = illumModel(n)
		case "map_Kd":
			current.Diffuse.Texture = lookupMap(lookup, args)
			if current.Diffuse.Texture != nil {
				current.Diffuse.Color = core.ColorWhite
			}
		case "map_Ks":
			current.Specular.Texture = lookupMap(lookup, args)
		case "refl":
			current.Reflective.Texture = lookupMap(lookup, args)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func illumModel(n int) LightingModel {
	switch {
	case n <= 0:
		return Constant
	case n == 1:
		return Lambert
	case n == 2:
		return Blinn
	}
	return Phong
}

// lookupMap resolves the file name of a map statement, which is its last
// argument after any options.
func lookupMap(lookup MapLookup, args []string) *textures.Texture {
	if lookup == nil || len(args) == 0 {
		return nil
	}
	return lookup(args[len(args)-1])
}

func parseFloat(args []string) (float32, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(args[0], 32)
	return float32(v), err
}

func parseColor(args []string) (core.Color, error) {
	if len(args) < 3 {
		return core.Color{}, fmt.Errorf("want 3 components, got %d", len(args))
	}
	var rgb [3]float32
	for i := range rgb {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return core.Color{}, err
		}
		rgb[i] = float32(v)
	}
	return core.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 1}, nil
}
