// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// PBRVertexShader transforms mesh vertices and builds the tangent frame.
//
//go:embed pbr.vert
var PBRVertexShader string

// PBRFragmentShader shades metallic-roughness materials with image-based
// lighting.
//
//go:embed pbr.frag
var PBRFragmentShader string

// SkyboxVertexShader draws the environment cube at the far plane.
//
//go:embed skybox.vert
var SkyboxVertexShader string

// SkyboxFragmentShader tone-maps the environment cube.
//
//go:embed skybox.frag
var SkyboxFragmentShader string
