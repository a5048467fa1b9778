package material

import (
	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/engine/importer"
	"github.com/MrShreyas/car/internal/engine/texture"
	"github.com/MrShreyas/car/internal/logger"
)

// slotRoles maps importer texture slots to roles. The normals slot is
// not consumed; glTF normal maps arrive through the side-channel.
var slotRoles = []struct {
	slot importer.TextureType
	role texture.Role
}{
	{importer.TextureDiffuse, texture.RoleBaseColor},
	{importer.TextureSpecular, texture.RoleSpecular},
	{importer.TextureHeight, texture.RoleNormal},
	{importer.TextureAmbient, texture.RoleHeight},
}

// Resolver builds mesh materials for one model.
type Resolver struct {
	cache *texture.Cache
	side  *SideChannel
	log   logger.Sink
}

// NewResolver creates a resolver that uploads through cache. The JSON
// side-channel is read from modelPath; when that fails the resolver works
// from importer data alone.
func NewResolver(modelPath string, cache *texture.Cache, sink logger.Sink) *Resolver {
	r := &Resolver{cache: cache, log: logger.OrNop(sink)}
	side, err := readSideChannel(modelPath)
	if err != nil {
		r.log.Debug("no glTF JSON side-channel",
			zap.String("path", modelPath),
			zap.Error(err),
		)
	}
	r.side = side
	return r
}

// NewResolverWith creates a resolver around an already parsed side-channel.
// side may be nil.
func NewResolverWith(side *SideChannel, cache *texture.Cache, sink logger.Sink) *Resolver {
	return &Resolver{cache: cache, side: side, log: logger.OrNop(sink)}
}

// SideChannel returns the JSON data in use, or nil.
func (r *Resolver) SideChannel() *SideChannel {
	return r.side
}

// Resolve builds the material for importer material index with source
// slots src. Transparency is left for the caller to decide.
func (r *Resolver) Resolve(index int, src *importer.Material) Material {
	m := Default()
	if src != nil {
		m.Name = src.Name
		if src.AlphaMode != "" {
			m.AlphaMode = src.AlphaMode
		}
		if src.HasBaseColor {
			m.BaseColorFactor = src.BaseColor
		}
		for _, sr := range slotRoles {
			for _, path := range src.Textures[sr.slot] {
				m.Textures = append(m.Textures, r.ref(path, sr.role))
			}
		}
	}

	e := r.side.Material(index)
	if e == nil {
		return m
	}
	if e.HasBaseColorFactor {
		m.BaseColorFactor = e.BaseColorFactor
	}
	if e.MetallicFactor != nil {
		m.MetallicFactor = *e.MetallicFactor
	}
	if e.RoughnessFactor != nil {
		m.RoughnessFactor = *e.RoughnessFactor
	}
	r.merge(&m, e.BaseColor, texture.RoleBaseColor)
	r.merge(&m, e.Normal, texture.RoleNormal)
	r.merge(&m, e.MetallicRoughness, texture.RoleMetallicRoughness)
	return m
}

// merge adds a JSON texture unless its path is already attached, then
// applies its UV transform to every reference with that path.
func (r *Resolver) merge(m *Material, tr *TextureRef, role texture.Role) {
	if tr == nil || tr.Image == "" {
		return
	}
	if !m.HasPath(tr.Image) {
		m.Textures = append(m.Textures, r.ref(tr.Image, role))
	}
	if !tr.HasUV {
		return
	}
	for i := range m.Textures {
		if m.Textures[i].Path == tr.Image {
			m.Textures[i].UV = tr.UV
		}
	}
}

func (r *Resolver) ref(path string, role texture.Role) texture.Ref {
	handle, _ := r.cache.Acquire(path, role.ColorSpace())
	return texture.Ref{
		Handle: handle,
		Role:   role,
		Path:   path,
		UV:     texture.IdentityUV(),
	}
}
