// Package model loads imported scenes into drawable meshes and draws them
// with opaque and depth-sorted transparent passes.
package model

import (
	"unsafe"

	"github.com/MrShreyas/car/internal/config"
	"github.com/MrShreyas/car/internal/engine/gpu"
	"github.com/MrShreyas/car/internal/engine/importer"
	"github.com/MrShreyas/car/internal/engine/material"
	"github.com/MrShreyas/car/internal/engine/texture"
	"github.com/MrShreyas/car/internal/logger"
	"github.com/MrShreyas/car/pkg/math"
)

// MaxBoneInfluence is the number of bone slots per vertex.
const MaxBoneInfluence = 4

// Vertex is one interleaved mesh vertex. Bone slots are uploaded but never
// filled by the loader.
type Vertex struct {
	Position  [3]float32
	Normal    [3]float32
	TexCoords [2]float32
	Tangent   [3]float32
	Bitangent [3]float32
	BoneIDs   [MaxBoneInfluence]int32
	Weights   [MaxBoneInfluence]float32
}

// VertexSize is the byte stride of Vertex.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// Material is the resolved material a mesh draws with.
type Material = material.Material

// vertexLayout describes Vertex for the device: attributes 0-6 are position,
// normal, uv, tangent, bitangent, bone IDs (integer) and weights.
func vertexLayout() gpu.VertexLayout {
	var v Vertex
	return gpu.VertexLayout{
		Stride: VertexSize,
		Attribs: []gpu.Attrib{
			{Index: 0, Size: 3, Type: gpu.AttribFloat, Offset: int(unsafe.Offsetof(v.Position))},
			{Index: 1, Size: 3, Type: gpu.AttribFloat, Offset: int(unsafe.Offsetof(v.Normal))},
			{Index: 2, Size: 2, Type: gpu.AttribFloat, Offset: int(unsafe.Offsetof(v.TexCoords))},
			{Index: 3, Size: 3, Type: gpu.AttribFloat, Offset: int(unsafe.Offsetof(v.Tangent))},
			{Index: 4, Size: 3, Type: gpu.AttribFloat, Offset: int(unsafe.Offsetof(v.Bitangent))},
			{Index: 5, Size: MaxBoneInfluence, Type: gpu.AttribInt, Offset: int(unsafe.Offsetof(v.BoneIDs))},
			{Index: 6, Size: MaxBoneInfluence, Type: gpu.AttribFloat, Offset: int(unsafe.Offsetof(v.Weights))},
		},
	}
}

// vertexBytes views vertices as raw bytes without copying.
func vertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*VertexSize)
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns inverted bounds that any point will extend.
func EmptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

// Valid reports whether the bounds contain at least one point.
func (b Bounds) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Extend grows the bounds to include p.
func (b *Bounds) Extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Union grows the bounds to include o.
func (b *Bounds) Union(o Bounds) {
	if !o.Valid() {
		return
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return math.Vec3FromArray(b.Min).Add(math.Vec3FromArray(b.Max)).Scale(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() math.Vec3 {
	return math.Vec3FromArray(b.Max).Sub(math.Vec3FromArray(b.Min))
}

// Options control model loading.
type Options struct {
	Import importer.Options
	// AlphaModeTransparency also treats glTF BLEND materials as transparent.
	AlphaModeTransparency bool
	// Decoder reads texture files; nil reads from disk.
	Decoder texture.Decoder
	Sink    logger.Sink
}

// DefaultOptions returns the import flags the viewer uses.
func DefaultOptions() Options {
	return Options{Import: importer.DefaultOptions()}
}

// OptionsFromConfig returns the load options described by the model
// section of the config.
func OptionsFromConfig(cfg config.ModelConfig, sink logger.Sink) Options {
	return Options{
		Import: importer.Options{
			FlipUVs:          cfg.FlipUVs,
			GenSmoothNormals: cfg.GenNormals,
			CalcTangentSpace: cfg.CalcTangents,
		},
		AlphaModeTransparency: cfg.AlphaModeTransparency,
		Sink:                  sink,
	}
}
