// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/engine/environment"
	"github.com/MrShreyas/car/internal/engine/renderer/shaders"
	"github.com/MrShreyas/car/internal/engine/shader"
	"github.com/MrShreyas/car/internal/logger"
	"github.com/MrShreyas/car/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Exposure   float32
	ClearColor [3]float32
	Skybox     bool
}

// Drawable is anything the PBR program can draw, such as a loaded model.
type Drawable interface {
	Draw(sc shader.Context, world math.Mat4, viewer math.Vec3)
}

// Placement is a drawable with its world transform.
type Placement struct {
	Model Drawable
	World math.Mat4
}

// Frame holds the per-frame camera state.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	ViewPos    math.Vec3
}

// Context owns the GL programs and lighting used to draw a frame.
// IMPORTANT: Must be created AFTER the OpenGL context is current!
type Context struct {
	config Config
	log    logger.Sink

	pbr    *shader.Program
	skybox *shader.Program

	baker    *environment.GLBaker
	pipeline *environment.Pipeline
	env      *environment.Holder
}

// New initialises OpenGL and builds the shading programs. The environment
// is empty until LoadEnvironment runs.
func New(cfg Config, settings environment.Settings, sink logger.Sink) (*Context, error) {
	log := logger.OrNop(sink)
	if cfg.Exposure <= 0 {
		cfg.Exposure = 1
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1.0)

	c := &Context{config: cfg, log: log, env: environment.NewHolder(log)}

	var err error
	if c.pbr, err = shader.NewProgram(shaders.PBRVertexShader, shaders.PBRFragmentShader); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create PBR program: %w", err)
	}
	if c.skybox, err = shader.NewProgram(shaders.SkyboxVertexShader, shaders.SkyboxFragmentShader); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create skybox program: %w", err)
	}
	if c.baker, err = environment.NewGLBaker(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create environment baker: %w", err)
	}
	c.pipeline = environment.NewPipeline(c.baker, settings, log)

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return c, nil
}

// LoadEnvironment precomputes lighting from an HDR panorama, or the
// procedural sky when hdrPath is empty or unusable. On failure the
// previous environment stays in use.
func (c *Context) LoadEnvironment(hdrPath string) error {
	return c.env.Rebuild(c.pipeline, hdrPath)
}

// Environment returns the environment currently bound each frame.
func (c *Context) Environment() *environment.Environment {
	return c.env.Current()
}

// Program returns the PBR program.
func (c *Context) Program() *shader.Program {
	return c.pbr
}

// SetExposure changes the tone-mapping exposure.
func (c *Context) SetExposure(exposure float32) {
	if exposure > 0 {
		c.config.Exposure = exposure
	}
}

// Exposure returns the tone-mapping exposure.
func (c *Context) Exposure() float32 {
	return c.config.Exposure
}

// Resize handles window resize.
func (c *Context) Resize(width, height int) {
	c.config.Width = width
	c.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	c.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (c *Context) Aspect() float32 {
	if c.config.Height <= 0 {
		return 1
	}
	return float32(c.config.Width) / float32(c.config.Height)
}

// Render clears the current framebuffer, draws every placement with the
// PBR program and finishes with the skybox.
func (c *Context) Render(f Frame, items []Placement) {
	cc := c.config.ClearColor
	gl.ClearColor(cc[0], cc[1], cc[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	c.pbr.Use()
	c.env.Bind(c.pbr)
	DrawScene(c.pbr, f, c.config.Exposure, items)

	if c.config.Skybox {
		c.drawSkybox(f)
	}
	gl.ActiveTexture(gl.TEXTURE0)
}

// DrawScene sets the frame uniforms and draws each placement in order.
func DrawScene(sc shader.Context, f Frame, exposure float32, items []Placement) {
	SetFrameUniforms(sc, f, exposure)
	for _, it := range items {
		if it.Model == nil {
			continue
		}
		sc.SetMat4("model", it.World)
		it.Model.Draw(sc, it.World, f.ViewPos)
	}
}

// SetFrameUniforms uploads the camera and exposure uniforms.
func SetFrameUniforms(sc shader.Context, f Frame, exposure float32) {
	sc.SetMat4("projection", f.Projection)
	sc.SetMat4("view", f.View)
	sc.SetVec3("viewPos", f.ViewPos)
	sc.SetFloat("exposure", exposure)
}

func (c *Context) drawSkybox(f Frame) {
	cube := c.env.Current().EnvCube()
	if cube == 0 {
		return
	}
	gl.DepthFunc(gl.LEQUAL)
	c.skybox.Use()
	c.skybox.SetMat4("projection", f.Projection)
	c.skybox.SetMat4("view", f.View.WithoutTranslation())
	c.skybox.SetFloat("exposure", c.config.Exposure)
	c.skybox.SetInt("environmentMap", 0)
	c.baker.BindCubemap(0, cube)
	c.baker.DrawCube()
	c.baker.BindCubemap(0, 0)
	gl.DepthFunc(gl.LESS)
}

// Close releases programs and the environment.
func (c *Context) Close() {
	c.log.Info("closing renderer")
	if c.env != nil {
		c.env.Destroy()
	}
	if c.baker != nil {
		c.baker.Destroy()
		c.baker = nil
	}
	if c.skybox != nil {
		c.skybox.Destroy()
	}
	if c.pbr != nil {
		c.pbr.Destroy()
	}
}
