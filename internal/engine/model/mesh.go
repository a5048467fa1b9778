package model

import (
	"errors"

	"github.com/MrShreyas/car/internal/engine/gpu"
	"github.com/MrShreyas/car/internal/engine/shader"
	"github.com/MrShreyas/car/internal/engine/texture"
	"github.com/MrShreyas/car/pkg/math"
)

// ErrNoElementBuffer is returned when a mesh has no index data on the GPU.
var ErrNoElementBuffer = errors.New("mesh has no element buffer")

// Mesh is an uploaded, drawable triangle list with its material.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Material Material
	Centroid math.Vec3
	Bounds   Bounds

	dev     gpu.Device
	buffers gpu.MeshBuffers
	// slots holds the first texture of each role.
	slots [texture.RoleCount]*texture.Ref
}

// NewMesh uploads vertices and indices. Meshes without index data are
// rejected with ErrNoElementBuffer and leave nothing on the GPU.
func NewMesh(dev gpu.Device, vertices []Vertex, indices []uint32, mat Material) (*Mesh, error) {
	if len(indices) == 0 {
		return nil, ErrNoElementBuffer
	}

	m := &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Material: mat,
		Bounds:   EmptyBounds(),
		dev:      dev,
	}
	for i := range vertices {
		m.Centroid = m.Centroid.Add(math.Vec3FromArray(vertices[i].Position))
		m.Bounds.Extend(vertices[i].Position)
	}
	if len(vertices) > 0 {
		m.Centroid = m.Centroid.Scale(1 / float32(len(vertices)))
	}

	for i := range m.Material.Textures {
		ref := &m.Material.Textures[i]
		if ref.Role.Valid() && m.slots[ref.Role] == nil {
			m.slots[ref.Role] = ref
		}
	}

	m.buffers = dev.UploadMesh(vertexBytes(vertices), vertexLayout(), indices)
	if m.buffers.EBO == 0 {
		dev.DeleteMesh(m.buffers)
		return nil, ErrNoElementBuffer
	}
	return m, nil
}

// Slot returns the texture bound for role, or nil.
func (m *Mesh) Slot(role texture.Role) *texture.Ref {
	if !role.Valid() {
		return nil
	}
	return m.slots[role]
}

// Buffers returns the GPU objects backing the mesh.
func (m *Mesh) Buffers() gpu.MeshBuffers {
	return m.buffers
}

// Draw binds the mesh textures, sets its material uniforms and issues the
// draw. Uniforms missing from the program are skipped.
func (m *Mesh) Draw(sc shader.Context) {
	if m.buffers.EBO == 0 {
		return
	}

	var has [texture.RoleCount]bool
	for role := texture.Role(0); role < texture.RoleCount; role++ {
		ref := m.slots[role]
		if ref == nil {
			continue
		}
		unit, ok := role.Unit()
		if !ok {
			continue
		}
		m.bind(sc, unit, role.Sampler(), ref)
		has[role] = true
	}

	// Without a base colour map the first texture of any role stands in.
	if !has[texture.RoleBaseColor] && len(m.Material.Textures) > 0 {
		m.bind(sc, 0, texture.RoleBaseColor.Sampler(), &m.Material.Textures[0])
		has[texture.RoleBaseColor] = true
	}

	sc.SetBool("hasBaseColor", has[texture.RoleBaseColor])
	sc.SetBool("hasNormalMap", has[texture.RoleNormal])
	sc.SetBool("hasMetallicRoughness", has[texture.RoleMetallicRoughness])

	sc.SetVec4("baseColorFactor", math.Vec4(m.Material.BaseColorFactor))
	sc.SetFloat("metallicFactor", m.Material.MetallicFactor)
	sc.SetFloat("roughnessFactor", m.Material.RoughnessFactor)

	m.dev.DrawElements(m.buffers)
	m.dev.ActiveTexture(0)
}

func (m *Mesh) bind(sc shader.Context, unit int, sampler string, ref *texture.Ref) {
	m.dev.BindTexture(unit, ref.Handle)
	sc.SetInt(sampler, int32(unit))
	sc.SetVec4(sampler+"_uv", ref.UV.Packed())
	sc.SetFloat(sampler+"_rot", ref.UV.Rotation)
}

// Destroy releases the GPU buffers. Texture handles belong to the model's cache.
func (m *Mesh) Destroy() {
	if m.buffers.VAO != 0 {
		m.dev.DeleteMesh(m.buffers)
	}
	m.buffers = gpu.MeshBuffers{}
}
