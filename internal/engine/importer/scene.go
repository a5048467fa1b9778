// Package importer reads 3D asset files into a neutral scene graph.
//
// The graph mirrors what a general asset-import library hands a renderer:
// a root node with local transforms and mesh indices, flat mesh and material
// tables, and per-material texture slots. glTF 2.0 (.gltf, .glb) and
// Wavefront OBJ (.obj with .mtl) are supported.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MrShreyas/car/pkg/math"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no importer handles.
	ErrUnsupportedFormat = errors.New("unsupported model format")
	// ErrIncompleteScene is returned when the file parses but references
	// data it does not contain.
	ErrIncompleteScene = errors.New("incomplete scene")
	// ErrNoRootNode is returned when the file has no node to start from.
	ErrNoRootNode = errors.New("scene has no root node")
)

// TextureType is an importer texture slot.
type TextureType int

const (
	TextureDiffuse TextureType = iota
	TextureSpecular
	TextureAmbient
	TextureHeight
	TextureNormals

	TextureTypeCount
)

func (t TextureType) String() string {
	switch t {
	case TextureDiffuse:
		return "diffuse"
	case TextureSpecular:
		return "specular"
	case TextureAmbient:
		return "ambient"
	case TextureHeight:
		return "height"
	case TextureNormals:
		return "normals"
	default:
		return fmt.Sprintf("TextureType(%d)", int(t))
	}
}

// Alpha modes as written by glTF. OBJ materials leave the mode empty.
const (
	AlphaOpaque = "OPAQUE"
	AlphaMask   = "MASK"
	AlphaBlend  = "BLEND"
)

// Scene is an imported asset.
type Scene struct {
	Root      *Node
	Meshes    []*Mesh
	Materials []*Material
	// Embedded holds encoded images addressed as "*N" texture paths.
	Embedded map[string][]byte
}

// Node is a scene graph node.
type Node struct {
	Name      string
	Transform math.Mat4
	Meshes    []int
	Children  []*Node
}

// Mesh is a triangle list. Optional attribute slices are nil when the
// source does not provide them; present ones match Positions in length.
type Mesh struct {
	Name       string
	Positions  [][3]float32
	Normals    [][3]float32
	TexCoords  [][2]float32
	Tangents   [][3]float32
	Bitangents [][3]float32
	Indices    []uint32
	Material   int
}

// HasNormals reports whether the mesh carries normals.
func (m *Mesh) HasNormals() bool { return len(m.Normals) == len(m.Positions) && m.Normals != nil }

// HasTexCoords reports whether the mesh carries a first UV set.
func (m *Mesh) HasTexCoords() bool { return len(m.TexCoords) == len(m.Positions) && m.TexCoords != nil }

// HasTangents reports whether the mesh carries a tangent frame.
func (m *Mesh) HasTangents() bool {
	return m.Tangents != nil && len(m.Tangents) == len(m.Positions) && len(m.Bitangents) == len(m.Positions)
}

// Material is an imported material: texture slots plus the few factors
// the source format expresses natively.
type Material struct {
	Name     string
	Textures [TextureTypeCount][]string

	// BaseColor is set when HasBaseColor is true.
	BaseColor    [4]float32
	HasBaseColor bool
	AlphaMode    string
}

// TextureCount returns the number of textures in slot t.
func (m *Material) TextureCount(t TextureType) int {
	if t < 0 || t >= TextureTypeCount {
		return 0
	}
	return len(m.Textures[t])
}

// AddTexture appends path to slot t.
func (m *Material) AddTexture(t TextureType, path string) {
	if t < 0 || t >= TextureTypeCount || path == "" {
		return
	}
	m.Textures[t] = append(m.Textures[t], path)
}

// Options selects post-processing steps applied after parsing.
// Polygons are always triangulated.
type Options struct {
	FlipUVs          bool
	GenSmoothNormals bool
	CalcTangentSpace bool
}

// DefaultOptions returns the options the viewer loads with.
func DefaultOptions() Options {
	return Options{FlipUVs: true, GenSmoothNormals: true, CalcTangentSpace: true}
}

// Import reads the asset at path, chosen by file extension.
func Import(path string, opts Options) (*Scene, error) {
	var (
		scene *Scene
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		scene, err = importGLTF(path)
	case ".obj":
		scene, err = importOBJ(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	if scene.Root == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRootNode)
	}
	if err := scene.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	postProcess(scene, opts)
	return scene, nil
}

// validate checks every index the scene holds.
func (s *Scene) validate() error {
	for i, m := range s.Meshes {
		if m.Material < 0 || m.Material >= len(s.Materials) {
			return fmt.Errorf("mesh %d material %d: %w", i, m.Material, ErrIncompleteScene)
		}
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Positions) {
				return fmt.Errorf("mesh %d index %d out of range: %w", i, idx, ErrIncompleteScene)
			}
		}
	}
	var walk func(n *Node, depth int) error
	walk = func(n *Node, depth int) error {
		if depth > maxNodeDepth {
			return fmt.Errorf("node hierarchy deeper than %d: %w", maxNodeDepth, ErrIncompleteScene)
		}
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(s.Meshes) {
				return fmt.Errorf("node %q mesh %d: %w", n.Name, mi, ErrIncompleteScene)
			}
		}
		for _, c := range n.Children {
			if err := walk(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(s.Root, 0)
}

const maxNodeDepth = 1024
