// Offscreen PBR preview for the model inspector.
package main

import (
	"fmt"

	"github.com/MrShreyas/car/internal/config"
	"github.com/MrShreyas/car/internal/engine/camera"
	"github.com/MrShreyas/car/internal/engine/debug"
	"github.com/MrShreyas/car/internal/engine/environment"
	"github.com/MrShreyas/car/internal/engine/framebuffer"
	"github.com/MrShreyas/car/internal/engine/gpu"
	"github.com/MrShreyas/car/internal/engine/model"
	"github.com/MrShreyas/car/internal/engine/picking"
	"github.com/MrShreyas/car/internal/engine/renderer"
	"github.com/MrShreyas/car/internal/logger"
	"github.com/MrShreyas/car/pkg/math"
)

// Preview renders a model with image-based lighting into a texture that
// the UI displays.
type Preview struct {
	fb       *framebuffer.Framebuffer
	ctx      *renderer.Context
	camera   *camera.OrbitCamera
	lines    *debug.LineRenderer
	device   gpu.Device
	modelCfg config.ModelConfig

	model      *model.Model
	world      math.Mat4
	ShowBounds bool
}

// NewPreview creates the render target and renderer. The GL context must
// be current.
func NewPreview(width, height int32, cfg *config.Config) (*Preview, error) {
	p := &Preview{
		camera:   camera.NewOrbitCamera(),
		device:   gpu.NewGL(),
		modelCfg: cfg.Model,
		world:    math.Identity(),
	}
	p.camera.FOV = cfg.Render.FOVDegrees
	p.camera.Near = cfg.Render.Near
	p.camera.Far = cfg.Render.Far

	var err error
	p.ctx, err = renderer.New(renderer.Config{
		Width:      int(width),
		Height:     int(height),
		Exposure:   cfg.Render.Exposure,
		ClearColor: cfg.Render.ClearColor,
		Skybox:     cfg.Render.Skybox,
	}, environment.SettingsFromConfig(cfg.Environment), logger.Default("renderer"))
	if err != nil {
		return nil, err
	}
	p.fb, err = framebuffer.New(width, height)
	if err != nil {
		p.Destroy()
		return nil, err
	}
	p.lines, err = debug.NewLineRenderer()
	if err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

// Renderer returns the underlying render context.
func (p *Preview) Renderer() *renderer.Context {
	return p.ctx
}

// Model returns the loaded model, or nil.
func (p *Preview) Model() *model.Model {
	return p.model
}

// Size returns the render target dimensions.
func (p *Preview) Size() (int32, int32) {
	return p.fb.Size()
}

// LoadModel replaces the previewed model and frames the camera on it.
func (p *Preview) LoadModel(path string) error {
	m, err := model.Load(p.device, path, model.OptionsFromConfig(p.modelCfg, logger.Default("model")))
	if err != nil {
		m.Destroy()
		return err
	}
	if m.MeshCount() == 0 {
		m.Destroy()
		return fmt.Errorf("%s: no drawable meshes", path)
	}
	if p.model != nil {
		p.model.Destroy()
	}
	p.model = m
	p.Reset()
	return nil
}

// Reset re-places the model and frames the camera on it.
func (p *Preview) Reset() {
	if p.model == nil {
		return
	}
	b := p.model.Bounds()
	p.world = renderer.GroundModel(math.Vec3FromArray(b.Min), math.Vec3FromArray(b.Max))
	p.camera.FitToBounds(
		math.Vec3FromArray(p.world.TransformPoint(b.Min)),
		math.Vec3FromArray(p.world.TransformPoint(b.Max)),
	)
}

// Render draws the model into the render target and returns its colour
// texture.
func (p *Preview) Render() uint32 {
	restore := p.fb.BindWithViewport()
	defer restore()

	f := renderer.Frame{
		View:       p.camera.ViewMatrix(),
		Projection: p.camera.ProjectionMatrix(p.fb.Aspect()),
		ViewPos:    p.camera.Position(),
	}
	var items []renderer.Placement
	if p.model != nil {
		items = append(items, renderer.Placement{Model: p.model, World: p.world})
	}
	p.ctx.Render(f, items)

	if p.ShowBounds && p.model != nil {
		b := p.model.Bounds()
		lines := debug.BoundsWireframe(math.Vec3FromArray(b.Min), math.Vec3FromArray(b.Max), p.world)
		p.lines.Draw(lines, f.Projection.Mul(f.View), math.Vec4{1, 0.8, 0.2, 1})
	}
	return p.fb.ColorTexture()
}

// Pick returns the index of the mesh under render-target pixel (x, y),
// or -1.
func (p *Preview) Pick(x, y float32) int {
	if p.model == nil {
		return -1
	}
	w, h := p.fb.Size()
	ray := picking.ScreenToRay(x, y, float32(w), float32(h),
		p.camera.ViewMatrix(), p.camera.ProjectionMatrix(p.fb.Aspect()))

	boxes := make([]picking.AABB, len(p.model.Meshes))
	for i, mesh := range p.model.Meshes {
		boxes[i] = picking.TransformAABB(mesh.Bounds.Min, mesh.Bounds.Max, p.world)
	}
	return ray.Closest(boxes)
}

// HandleMouseDrag orbits the camera.
func (p *Preview) HandleMouseDrag(dx, dy float32) {
	p.camera.HandleDrag(dx, dy)
}

// HandleMouseWheel zooms the camera.
func (p *Preview) HandleMouseWheel(delta float32) {
	p.camera.HandleZoom(delta)
}

// ReadPixels returns the last rendered frame as bottom-up RGBA rows.
func (p *Preview) ReadPixels() []byte {
	return p.fb.ReadPixels()
}

// Destroy releases the model and GL resources.
func (p *Preview) Destroy() {
	if p.model != nil {
		p.model.Destroy()
		p.model = nil
	}
	if p.lines != nil {
		p.lines.Destroy()
		p.lines = nil
	}
	if p.fb != nil {
		p.fb.Destroy()
		p.fb = nil
	}
	if p.ctx != nil {
		p.ctx.Close()
		p.ctx = nil
	}
}
