package environment

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/MrShreyas/car/internal/engine/framebuffer"
	"github.com/MrShreyas/car/internal/engine/shader"
	"github.com/MrShreyas/car/pkg/formats"
)

// GLBaker implements Baker on an OpenGL 4.1 core context.
type GLBaker struct {
	capture *framebuffer.Capture

	equirect   *shader.Program
	irradiance *shader.Program
	prefilter  *shader.Program
	brdf       *shader.Program

	cubeVAO, cubeVBO uint32
	quadVAO, quadVBO uint32
}

var _ Baker = (*GLBaker)(nil)

// NewGLBaker compiles the precomputation programs and creates the capture
// geometry. gl.Init must have been called.
func NewGLBaker() (*GLBaker, error) {
	b := &GLBaker{}
	var err error
	if b.equirect, err = shader.NewProgram(cubemapVertexShader, equirectFragmentShader); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("equirectangular program: %w", err)
	}
	if b.irradiance, err = shader.NewProgram(cubemapVertexShader, irradianceFragmentShader); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("irradiance program: %w", err)
	}
	if b.prefilter, err = shader.NewProgram(cubemapVertexShader, prefilterFragmentShader); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("prefilter program: %w", err)
	}
	if b.brdf, err = shader.NewProgram(brdfVertexShader, brdfFragmentShader); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("BRDF program: %w", err)
	}

	b.capture = framebuffer.NewCapture(512)
	b.cubeVAO, b.cubeVBO = uploadVertices(cubeVertices, 3)
	b.quadVAO, b.quadVBO = uploadVertices(quadVertices, 2, 2)
	return b, nil
}

// uploadVertices creates a VAO over tightly packed float attributes of the
// given component counts.
func uploadVertices(data []float32, sizes ...int32) (vao, vbo uint32) {
	var stride int32
	for _, s := range sizes {
		stride += s * 4
	}
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	var offset int
	for i, s := range sizes {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), s, gl.FLOAT, false, stride, gl.PtrOffset(offset))
		offset += int(s) * 4
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vao, vbo
}

// Begin saves the bindings the passes change.
func (b *GLBaker) Begin() func() {
	var prevFBO, prevActive int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])
	gl.GetIntegerv(gl.ACTIVE_TEXTURE, &prevActive)
	depthTest := gl.IsEnabled(gl.DEPTH_TEST)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	return func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
		gl.ActiveTexture(uint32(prevActive))
		gl.UseProgram(0)
		gl.DepthFunc(gl.LESS)
		if !depthTest {
			gl.Disable(gl.DEPTH_TEST)
		}
	}
}

// UploadEquirect uploads the panorama as an RGB32F texture, bottom row
// first.
func (b *GLBaker) UploadEquirect(img *formats.HDR) (uint32, error) {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return 0, fmt.Errorf("%w: empty image", ErrUnsupportedSource)
	}
	rows := img.FlippedRows()

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB32F, int32(img.Width), int32(img.Height), 0, gl.RGB, gl.FLOAT, gl.Ptr(rows))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id, nil
}

func (b *GLBaker) NewCubemap(size int, mipmapped bool) (uint32, error) {
	if size <= 0 {
		return 0, fmt.Errorf("invalid cubemap size %d", size)
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for face := uint32(0); face < FaceCount; face++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, 0, gl.RGB16F, int32(size), int32(size), 0, gl.RGB, gl.FLOAT, nil)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if mipmapped {
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	} else {
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return id, nil
}

func (b *GLBaker) ProjectEquirect(equirect, cube uint32, size int) error {
	b.equirect.Use()
	b.equirect.SetInt("equirectangularMap", 0)
	b.BindTexture2D(0, equirect)
	return b.renderFaces(b.equirect, cube, size, 0)
}

func (b *GLBaker) UploadFaces(cube uint32, size int, faces [FaceCount][]float32) error {
	for i, data := range faces {
		if len(data) != size*size*3 {
			return fmt.Errorf("face %d: got %d floats, want %d", i, len(data), size*size*3)
		}
	}
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, cube)
	for i, data := range faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGB16F, int32(size), int32(size), 0, gl.RGB, gl.FLOAT, gl.Ptr(data))
	}
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return nil
}

func (b *GLBaker) GenerateMipmaps(cube uint32) {
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, cube)
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
}

func (b *GLBaker) ConvolveIrradiance(env, dst uint32, size int, delta float32) error {
	b.irradiance.Use()
	b.irradiance.SetInt("environmentMap", 0)
	b.irradiance.SetFloat("sampleDelta", delta)
	b.BindCubemap(0, env)
	return b.renderFaces(b.irradiance, dst, size, 0)
}

func (b *GLBaker) Prefilter(env, dst uint32, size, mip int, roughness float32, samples int) error {
	b.prefilter.Use()
	b.prefilter.SetInt("environmentMap", 0)
	b.prefilter.SetFloat("roughness", roughness)
	b.prefilter.SetInt("sampleCount", int32(samples))
	b.prefilter.SetFloat("resolution", float32(envBaseSize(env)))
	b.BindCubemap(0, env)
	return b.renderFaces(b.prefilter, dst, size, mip)
}

// envBaseSize reads the base level size of a cubemap.
func envBaseSize(cube uint32) int32 {
	var w int32
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, cube)
	gl.GetTexLevelParameteriv(gl.TEXTURE_CUBE_MAP_POSITIVE_X, 0, gl.TEXTURE_WIDTH, &w)
	return w
}

func (b *GLBaker) renderFaces(p *shader.Program, cube uint32, size, mip int) error {
	p.SetMat4("projection", CaptureProjection())
	views := CaptureViews()

	b.capture.Bind(int32(size))
	for face := range views {
		p.SetMat4("view", views[face])
		if err := b.capture.AttachCubeFace(cube, int32(face), int32(mip)); err != nil {
			return fmt.Errorf("face %d: %w", face, err)
		}
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		gl.BindVertexArray(b.cubeVAO)
		gl.DrawArrays(gl.TRIANGLES, 0, 36)
	}
	gl.BindVertexArray(0)
	return nil
}

func (b *GLBaker) IntegrateBRDF(size, samples int) (uint32, error) {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RG16F, int32(size), int32(size), 0, gl.RG, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	b.capture.Bind(int32(size))
	if err := b.capture.AttachTexture2D(id); err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}
	b.brdf.Use()
	b.brdf.SetInt("sampleCount", int32(samples))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.BindVertexArray(b.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	return id, nil
}

func (b *GLBaker) BindCubemap(unit int, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
}

func (b *GLBaker) BindTexture2D(unit int, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func (b *GLBaker) DeleteTexture(id uint32) {
	if id != 0 {
		gl.DeleteTextures(1, &id)
	}
}

// DrawCube draws the unit capture cube with the current program.
func (b *GLBaker) DrawCube() {
	gl.BindVertexArray(b.cubeVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)
}

// Destroy releases programs, geometry and the capture target.
func (b *GLBaker) Destroy() {
	for _, p := range []*shader.Program{b.equirect, b.irradiance, b.prefilter, b.brdf} {
		if p != nil {
			p.Destroy()
		}
	}
	if b.capture != nil {
		b.capture.Destroy()
		b.capture = nil
	}
	if b.cubeVAO != 0 {
		gl.DeleteVertexArrays(1, &b.cubeVAO)
		gl.DeleteBuffers(1, &b.cubeVBO)
		b.cubeVAO, b.cubeVBO = 0, 0
	}
	if b.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &b.quadVAO)
		gl.DeleteBuffers(1, &b.quadVBO)
		b.quadVAO, b.quadVBO = 0, 0
	}
}

// quadVertices is a fullscreen triangle strip: position, uv.
var quadVertices = []float32{
	-1, 1, 0, 1,
	-1, -1, 0, 0,
	1, 1, 1, 1,
	1, -1, 1, 0,
}

// cubeVertices is the capture cube as 36 positions.
var cubeVertices = []float32{
	// back
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	// front
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	// left
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	// right
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	// bottom
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	// top
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}
