package importer

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/MrShreyas/car/pkg/math"
)

// importGLTF reads a .gltf or .glb file.
//
// Texture coordinates are stored with v flipped (bottom-left origin) so the
// FlipUVs step treats glTF and OBJ alike.
func importGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	scene := &Scene{Embedded: make(map[string][]byte)}
	imagePaths := gltfImages(doc, scene)

	for i, gm := range doc.Materials {
		scene.Materials = append(scene.Materials, gltfMaterial(doc, i, gm, imagePaths))
	}
	defaultMaterial := -1

	// meshPrims[meshIdx] lists the scene meshes built from that glTF mesh.
	meshPrims := make([][]int, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := gltfPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			if m == nil {
				continue
			}
			if prim.Material != nil {
				m.Material = *prim.Material
			} else {
				if defaultMaterial < 0 {
					defaultMaterial = len(scene.Materials)
					scene.Materials = append(scene.Materials, newDefaultMaterial())
				}
				m.Material = defaultMaterial
			}
			meshPrims[mi] = append(meshPrims[mi], len(scene.Meshes))
			scene.Meshes = append(scene.Meshes, m)
		}
	}

	roots, err := gltfRoots(doc)
	if err != nil {
		return nil, err
	}

	scene.Root = &Node{Name: "root", Transform: math.Identity()}
	visiting := make([]bool, len(doc.Nodes))
	var build func(idx int) (*Node, error)
	build = func(idx int) (*Node, error) {
		if idx < 0 || idx >= len(doc.Nodes) {
			return nil, fmt.Errorf("node %d: %w", idx, ErrIncompleteScene)
		}
		if visiting[idx] {
			return nil, fmt.Errorf("node %d is its own ancestor: %w", idx, ErrIncompleteScene)
		}
		visiting[idx] = true
		defer func() { visiting[idx] = false }()

		gn := doc.Nodes[idx]
		n := &Node{Name: gn.Name, Transform: gltfNodeTransform(gn)}
		if n.Name == "" {
			n.Name = fmt.Sprintf("node_%d", idx)
		}
		if gn.Mesh != nil {
			if *gn.Mesh < 0 || *gn.Mesh >= len(meshPrims) {
				return nil, fmt.Errorf("node %d mesh %d: %w", idx, *gn.Mesh, ErrIncompleteScene)
			}
			n.Meshes = append(n.Meshes, meshPrims[*gn.Mesh]...)
		}
		for _, c := range gn.Children {
			child, err := build(c)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
		return n, nil
	}
	for _, r := range roots {
		n, err := build(r)
		if err != nil {
			return nil, err
		}
		scene.Root.Children = append(scene.Root.Children, n)
	}

	return scene, nil
}

// gltfRoots returns the node indices of the default scene, or every
// parentless node when the file names no scene.
func gltfRoots(doc *gltf.Document) ([]int, error) {
	if doc.Scene != nil {
		if *doc.Scene < 0 || *doc.Scene >= len(doc.Scenes) {
			return nil, fmt.Errorf("scene %d: %w", *doc.Scene, ErrIncompleteScene)
		}
		return doc.Scenes[*doc.Scene].Nodes, nil
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes, nil
	}
	if len(doc.Nodes) == 0 {
		return nil, ErrNoRootNode
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	if len(roots) == 0 {
		return nil, ErrNoRootNode
	}
	return roots, nil
}

// gltfNodeTransform composes the node matrix with its TRS properties.
// glTF allows one or the other, so at most one side is non-identity.
func gltfNodeTransform(gn *gltf.Node) math.Mat4 {
	var m math.Mat4
	for i, v := range gn.MatrixOrDefault() {
		m[i] = float32(v)
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	trs := math.FromTRS(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	)
	return m.Mul(trs)
}

// gltfImages returns the texture path for every image: its URI for
// external files, "*N" for buffer-view and data-URI images, whose encoded
// bytes are stored in scene.Embedded.
func gltfImages(doc *gltf.Document, scene *Scene) []string {
	paths := make([]string, len(doc.Images))
	for i, img := range doc.Images {
		key := fmt.Sprintf("*%d", i)
		switch {
		case img.BufferView != nil:
			if *img.BufferView < 0 || *img.BufferView >= len(doc.BufferViews) {
				continue
			}
			data, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				continue
			}
			scene.Embedded[key] = data
			paths[i] = key
		case img.IsEmbeddedResource():
			data, ok := decodeDataURI(img.URI)
			if !ok {
				continue
			}
			scene.Embedded[key] = data
			paths[i] = key
		default:
			paths[i] = img.URI
		}
	}
	return paths
}

// decodeDataURI decodes a base64 "data:" URI.
func decodeDataURI(uri string) ([]byte, bool) {
	_, payload, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	return data, true
}

// textureImage resolves a texture index to its image path.
func textureImage(doc *gltf.Document, texIdx int, imagePaths []string) string {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return ""
	}
	src := doc.Textures[texIdx].Source
	if src == nil || *src < 0 || *src >= len(imagePaths) {
		return ""
	}
	return imagePaths[*src]
}

// gltfMaterial maps a glTF material onto importer slots: base color to
// diffuse and the normal texture to normals.
func gltfMaterial(doc *gltf.Document, idx int, gm *gltf.Material, imagePaths []string) *Material {
	m := &Material{Name: gm.Name, AlphaMode: AlphaOpaque}
	if m.Name == "" {
		m.Name = fmt.Sprintf("material_%d", idx)
	}

	switch gm.AlphaMode {
	case gltf.AlphaMask:
		m.AlphaMode = AlphaMask
	case gltf.AlphaBlend:
		m.AlphaMode = AlphaBlend
	}

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		m.BaseColor = [4]float32{float32(cf[0]), float32(cf[1]), float32(cf[2]), float32(cf[3])}
		m.HasBaseColor = true
		if pbr.BaseColorTexture != nil {
			m.AddTexture(TextureDiffuse, textureImage(doc, pbr.BaseColorTexture.Index, imagePaths))
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		m.AddTexture(TextureNormals, textureImage(doc, *gm.NormalTexture.Index, imagePaths))
	}
	return m
}

// gltfPrimitive reads one primitive. Point and line primitives yield nil.
func gltfPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	switch prim.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		return nil, nil
	}

	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute: %w", ErrIncompleteScene)
	}
	acc, err := accessor(doc, posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	m := &Mesh{Name: name, Positions: positions}

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if acc, err := accessor(doc, idx); err == nil {
			if normals, err := modeler.ReadNormal(doc, acc, nil); err == nil && len(normals) == len(positions) {
				m.Normals = normals
			}
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if acc, err := accessor(doc, idx); err == nil {
			if uvs, err := modeler.ReadTextureCoord(doc, acc, nil); err == nil && len(uvs) == len(positions) {
				for i := range uvs {
					uvs[i][1] = 1 - uvs[i][1]
				}
				m.TexCoords = uvs
			}
		}
	}
	if idx, ok := prim.Attributes["TANGENT"]; ok && m.HasNormals() {
		if acc, err := accessor(doc, idx); err == nil {
			if tangents, err := modeler.ReadTangent(doc, acc, nil); err == nil && len(tangents) == len(positions) {
				m.Tangents = make([][3]float32, len(tangents))
				m.Bitangents = make([][3]float32, len(tangents))
				for i, t := range tangents {
					tv := math.Vec3{X: t[0], Y: t[1], Z: t[2]}
					n := math.Vec3FromArray(m.Normals[i])
					m.Tangents[i] = tv.Array()
					m.Bitangents[i] = n.Cross(tv).Scale(t[3]).Array()
				}
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := accessor(doc, *prim.Indices)
		if err != nil {
			return nil, err
		}
		indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	switch prim.Mode {
	case gltf.PrimitiveTriangleStrip:
		indices = stripToList(indices)
	case gltf.PrimitiveTriangleFan:
		indices = fanToList(indices)
	default:
		indices = indices[:len(indices)-len(indices)%3]
	}
	m.Indices = indices
	return m, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", idx, ErrIncompleteScene)
	}
	return doc.Accessors[idx], nil
}

func stripToList(strip []uint32) []uint32 {
	var out []uint32
	for i := 0; i+2 < len(strip); i++ {
		if i%2 == 0 {
			out = append(out, strip[i], strip[i+1], strip[i+2])
		} else {
			out = append(out, strip[i+1], strip[i], strip[i+2])
		}
	}
	return out
}

func fanToList(fan []uint32) []uint32 {
	var out []uint32
	for i := 1; i+1 < len(fan); i++ {
		out = append(out, fan[0], fan[i], fan[i+1])
	}
	return out
}

func newDefaultMaterial() *Material {
	return &Material{
		Name:         "DefaultMaterial",
		BaseColor:    [4]float32{1, 1, 1, 1},
		HasBaseColor: false,
		AlphaMode:    AlphaOpaque,
	}
}
