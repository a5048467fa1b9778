package model

import (
	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/engine/importer"
	"github.com/MrShreyas/car/internal/engine/texture"
	"github.com/MrShreyas/car/pkg/math"
)

// bakeMesh converts an imported mesh to vertices in model space. Positions
// take the full transform; normals and the tangent frame take the normal
// matrix and are renormalized. Missing attributes stay zero.
func bakeMesh(src *importer.Mesh, world math.Mat4) []Vertex {
	normalMat := world.NormalMatrix()
	hasNormals := src.HasNormals()
	hasUVs := src.HasTexCoords()
	hasTangents := src.HasTangents()

	out := make([]Vertex, len(src.Positions))
	for i, p := range src.Positions {
		v := &out[i]
		v.Position = world.TransformPoint(p)
		if hasNormals {
			v.Normal = normalMat.MulVec3(math.Vec3FromArray(src.Normals[i])).Normalize().Array()
		}
		if hasUVs {
			v.TexCoords = src.TexCoords[i]
		}
		if hasTangents {
			v.Tangent = normalMat.MulVec3(math.Vec3FromArray(src.Tangents[i])).Normalize().Array()
			v.Bitangent = normalMat.MulVec3(math.Vec3FromArray(src.Bitangents[i])).Normalize().Array()
		}
	}
	return out
}

// processNode bakes every mesh under n. The parent transform is passed by
// value so siblings never see each other's transforms.
func (m *Model) processNode(n *importer.Node, parent math.Mat4, scene *importer.Scene, materials []Material, opts Options) {
	world := parent.Mul(n.Transform)

	for _, mi := range n.Meshes {
		src := scene.Meshes[mi]
		mat := materials[src.Material]
		mat.Textures = append([]texture.Ref(nil), mat.Textures...)
		mat.Transparent = mat.IsTransparent(opts.AlphaModeTransparency)

		mesh, err := NewMesh(m.dev, bakeMesh(src, world), append([]uint32(nil), src.Indices...), mat)
		if err != nil {
			m.log.Warn("skipping mesh",
				zap.String("mesh", src.Name),
				zap.Error(err),
			)
			continue
		}
		mesh.Name = src.Name
		m.Meshes = append(m.Meshes, mesh)
	}

	for _, c := range n.Children {
		m.processNode(c, world, scene, materials, opts)
	}
}
