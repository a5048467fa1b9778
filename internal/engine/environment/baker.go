package environment

import "github.com/MrShreyas/car/pkg/formats"

// Binder binds precomputed textures for drawing.
type Binder interface {
	BindCubemap(unit int, id uint32)
	BindTexture2D(unit int, id uint32)
	DeleteTexture(id uint32)
}

// Baker runs the GPU passes of environment precomputation. Every method
// leaves the texture it creates or renders into fully initialised.
type Baker interface {
	Binder

	// Begin saves the framebuffer, viewport and active unit. The returned
	// function restores them and unbinds unit 0.
	Begin() (restore func())

	UploadEquirect(img *formats.HDR) (uint32, error)

	// NewCubemap allocates an RGB16F cubemap with clamped edges. A
	// mipmapped cube gets trilinear filtering and storage for its chain.
	NewCubemap(size int, mipmapped bool) (uint32, error)

	ProjectEquirect(equirect, cube uint32, size int) error
	UploadFaces(cube uint32, size int, faces [FaceCount][]float32) error
	GenerateMipmaps(cube uint32)
	ConvolveIrradiance(env, dst uint32, size int, delta float32) error
	Prefilter(env, dst uint32, size, mip int, roughness float32, samples int) error
	IntegrateBRDF(size, samples int) (uint32, error)
}
