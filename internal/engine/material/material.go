// Package material resolves imported material slots and glTF JSON data
// into the textures and factors a mesh draws with.
package material

import (
	"strings"

	"github.com/MrShreyas/car/internal/engine/importer"
	"github.com/MrShreyas/car/internal/engine/texture"
)

// Material is the resolved shading input of one mesh.
type Material struct {
	Name            string
	BaseColorFactor [4]float32
	MetallicFactor  float32
	RoughnessFactor float32
	AlphaMode       string
	Transparent     bool
	Textures        []texture.Ref
}

// Default returns a material with unit factors and no textures.
func Default() Material {
	return Material{
		BaseColorFactor: [4]float32{1, 1, 1, 1},
		MetallicFactor:  1,
		RoughnessFactor: 1,
		AlphaMode:       importer.AlphaOpaque,
	}
}

// transparentHints are lowercase substrings of texture paths that mark a
// material as see-through.
var transparentHints = []string{"glass", "alpha", "transp"}

// IsTransparent applies the transparency heuristic: base-colour alpha
// below one, or a texture path containing one of transparentHints.
// With alphaMode set, a BLEND alpha mode also counts.
func (m *Material) IsTransparent(alphaMode bool) bool {
	if m.BaseColorFactor[3] < 1 {
		return true
	}
	if alphaMode && m.AlphaMode == importer.AlphaBlend {
		return true
	}
	for _, t := range m.Textures {
		p := strings.ToLower(t.Path)
		for _, hint := range transparentHints {
			if strings.Contains(p, hint) {
				return true
			}
		}
	}
	return false
}

// HasPath reports whether a texture with path is already attached.
func (m *Material) HasPath(path string) bool {
	for _, t := range m.Textures {
		if t.Path == path {
			return true
		}
	}
	return false
}
