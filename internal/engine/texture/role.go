// Package texture provides image decoding, texture roles and the
// per-model texture cache.
package texture

import (
	"fmt"

	"github.com/MrShreyas/car/pkg/math"
)

// Role is the shading purpose of a texture.
type Role int

const (
	RoleBaseColor Role = iota
	RoleNormal
	RoleMetallicRoughness
	RoleHeight
	RoleSpecular

	// RoleCount is the number of roles; meshes keep one slot per role.
	RoleCount
)

type roleInfo struct {
	name    string
	sampler string
	unit    int // -1: not bound
	space   ColorSpace
}

var roles = [RoleCount]roleInfo{
	RoleBaseColor:         {"base-color", "texture_diffuse1", 0, SRGB},
	RoleNormal:            {"normal", "texture_normal1", 1, Linear},
	RoleMetallicRoughness: {"metallic-roughness", "texture_metallicRoughness1", 2, Linear},
	RoleHeight:            {"height", "texture_height1", 3, Linear},
	RoleSpecular:          {"specular", "texture_specular1", -1, Linear},
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r >= 0 && r < RoleCount
}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roles[r].name
}

// Unit returns the texture unit the role binds to.
// ok is false for roles that are carried but never bound.
func (r Role) Unit() (unit int, ok bool) {
	if !r.Valid() || roles[r].unit < 0 {
		return 0, false
	}
	return roles[r].unit, true
}

// Sampler returns the sampler uniform name for the role.
// The UV transform uniforms are Sampler()+"_uv" and Sampler()+"_rot".
func (r Role) Sampler() string {
	if !r.Valid() {
		return ""
	}
	return roles[r].sampler
}

// ColorSpace returns the fixed decode color space for the role.
func (r Role) ColorSpace() ColorSpace {
	if !r.Valid() {
		return Linear
	}
	return roles[r].space
}

// ColorSpace selects between linear data and gamma-encoded color.
type ColorSpace int

const (
	Linear ColorSpace = iota
	SRGB
)

func (c ColorSpace) String() string {
	if c == SRGB {
		return "srgb"
	}
	return "linear"
}

// UVTransform is a KHR_texture_transform style texture coordinate transform.
type UVTransform struct {
	Offset   [2]float32
	Scale    [2]float32
	Rotation float32 // radians
}

// IdentityUV returns the transform with unit scale.
func IdentityUV() UVTransform {
	return UVTransform{Scale: [2]float32{1, 1}}
}

// Packed returns offset.xy and scale.xy packed into one vector.
func (u UVTransform) Packed() math.Vec4 {
	return math.Vec4{u.Offset[0], u.Offset[1], u.Scale[0], u.Scale[1]}
}

// Ref is a texture bound to a mesh.
type Ref struct {
	Handle uint32
	Role   Role
	Path   string // dedup key in the cache
	UV     UVTransform
}
