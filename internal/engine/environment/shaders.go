package environment

import _ "embed"

// cubemapVertexShader renders the unit cube for one capture face.
//
//go:embed shaders/cubemap.vert
var cubemapVertexShader string

//go:embed shaders/equirect.frag
var equirectFragmentShader string

//go:embed shaders/irradiance.frag
var irradianceFragmentShader string

//go:embed shaders/prefilter.frag
var prefilterFragmentShader string

// brdfVertexShader draws the fullscreen quad the LUT is integrated on.
//
//go:embed shaders/brdf.vert
var brdfVertexShader string

//go:embed shaders/brdf.frag
var brdfFragmentShader string
