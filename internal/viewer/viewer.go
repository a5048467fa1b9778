// Package viewer implements the interactive model viewer loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/config"
	"github.com/MrShreyas/car/internal/engine/camera"
	"github.com/MrShreyas/car/internal/engine/debug"
	"github.com/MrShreyas/car/internal/engine/environment"
	"github.com/MrShreyas/car/internal/engine/framebuffer"
	"github.com/MrShreyas/car/internal/engine/gpu"
	"github.com/MrShreyas/car/internal/engine/input"
	"github.com/MrShreyas/car/internal/engine/model"
	"github.com/MrShreyas/car/internal/engine/renderer"
	"github.com/MrShreyas/car/internal/engine/window"
	"github.com/MrShreyas/car/internal/logger"
	"github.com/MrShreyas/car/pkg/math"
)

var boundsColor = math.Vec4{1, 0.8, 0.2, 1}

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	log     logger.Sink
	running bool

	window   *window.Window
	renderer *renderer.Context
	input    *input.Input
	camera   *camera.OrbitCamera
	lines    *debug.LineRenderer
	shots    *debug.ScreenshotCapture
	device   gpu.Device

	model    *model.Model
	world    math.Mat4
	controls Controls
}

// New creates the window, renderer and lighting environment, then loads
// the configured model if there is one.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		log:    logger.Default("viewer"),
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		shots:  debug.NewScreenshotCapture(cfg.Render.Screenshot, "viewer"),
		device: gpu.NewGL(),
		world:  math.Identity(),
	}
	v.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	}, logger.Default("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the GL context the window just made current.
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		Exposure:   cfg.Render.Exposure,
		ClearColor: cfg.Render.ClearColor,
		Skybox:     cfg.Render.Skybox,
	}, environment.SettingsFromConfig(cfg.Environment), logger.Default("renderer"))
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.lines, err = debug.NewLineRenderer()
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create line renderer: %w", err)
	}

	v.camera.FOV = cfg.Render.FOVDegrees
	v.camera.Near = cfg.Render.Near
	v.camera.Far = cfg.Render.Far

	if err := v.renderer.LoadEnvironment(cfg.Environment.HDRPath); err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to build environment: %w", err)
	}

	if cfg.Model.Path != "" {
		if err := v.LoadModel(cfg.Model.Path); err != nil {
			v.log.Warn("initial model failed to load", zap.Error(err))
		}
	}
	return v, nil
}

// LoadModel replaces the current model. A model that fails to load leaves
// the current one in place.
func (v *Viewer) LoadModel(path string) error {
	m, err := model.Load(v.device, path, model.OptionsFromConfig(v.cfg.Model, logger.Default("model")))
	if err != nil {
		m.Destroy()
		return err
	}
	if m.MeshCount() == 0 {
		m.Destroy()
		return fmt.Errorf("%s: no drawable meshes", path)
	}

	if v.model != nil {
		v.model.Destroy()
	}
	v.model = m

	b := m.Bounds()
	minB, maxB := math.Vec3FromArray(b.Min), math.Vec3FromArray(b.Max)
	v.world = renderer.GroundModel(minB, maxB)
	v.controls.Offset.Reset()

	if v.cfg.Render.AutoFrame {
		worldMin := math.Vec3FromArray(v.world.TransformPoint(b.Min))
		worldMax := math.Vec3FromArray(v.world.TransformPoint(b.Max))
		v.camera.FitToBounds(worldMin, worldMax)
	}

	v.window.SetTitle(fmt.Sprintf("%s - %s", v.cfg.Window.Title, path))
	v.log.Info("model ready",
		zap.String("path", path),
		zap.Int("meshes", m.MeshCount()),
		zap.Float32("diagonal", b.Size().Length()),
	)
	return nil
}

// Run starts the main loop and returns when the window closes.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.update(float32(dt))
		v.render()

		if v.input.IsKeyPressed(sdl.SCANCODE_F12) {
			v.screenshot()
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("frame", time.Duration(dt*float64(time.Second))),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
				v.renderer.SetExposure(v.renderer.Exposure() * 1.25)
			case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
				v.renderer.SetExposure(v.renderer.Exposure() / 1.25)
			case sdl.SCANCODE_H:
				v.log.Info("controls",
					zap.String("camera", "drag to orbit, wheel to zoom, WASD to pan"),
					zap.String("model", "M toggles arrow keys between camera and model, L locks the model, R resets it"),
					zap.String("view", "B bounds, +/- exposure, F12 screenshot"),
				)
			}
		}
	}

	if path, ok := v.input.DroppedFile(); ok {
		if err := v.LoadModel(path); err != nil {
			v.log.Warn("dropped file failed to load",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}
}

func (v *Viewer) update(dt float32) {
	if dx, dy := v.input.Drag(sdl.BUTTON_LEFT); dx != 0 || dy != 0 {
		v.camera.HandleDrag(float32(dx), float32(dy))
	}
	if w := v.input.Wheel(); w != 0 {
		v.camera.HandleZoom(w)
	}

	modelMode := v.controls.ModelMode
	pan := v.controls.Update(v.input, dt)
	if modelMode != v.controls.ModelMode {
		v.log.Info("arrow keys switched", zap.Bool("model", v.controls.ModelMode))
	}
	if pan.IsZero() {
		return
	}
	// HandleMovement scales by distance; keep the pan rate frame independent.
	scale := dt * 60
	v.camera.HandleMovement(pan.Forward*scale, pan.Right*scale, pan.Up*scale)
}

func (v *Viewer) frame() renderer.Frame {
	return renderer.Frame{
		View:       v.camera.ViewMatrix(),
		Projection: v.camera.ProjectionMatrix(v.renderer.Aspect()),
		ViewPos:    v.camera.Position(),
	}
}

func (v *Viewer) render() {
	f := v.frame()
	var items []renderer.Placement
	world := v.controls.Place(v.world)
	if v.model != nil {
		items = append(items, renderer.Placement{Model: v.model, World: world})
	}
	v.renderer.Render(f, items)

	if v.controls.ShowBounds && v.model != nil {
		b := v.model.Bounds()
		lines := debug.BoundsWireframe(math.Vec3FromArray(b.Min), math.Vec3FromArray(b.Max), world)
		v.lines.Draw(lines, f.Projection.Mul(f.View), boundsColor)
	}
}

func (v *Viewer) screenshot() {
	w, h := v.window.DrawableSize()
	pixels := framebuffer.ReadBackbuffer(int32(w), int32(h))
	path, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases the model, renderer and window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.model != nil {
		v.model.Destroy()
		v.model = nil
	}
	if v.lines != nil {
		v.lines.Destroy()
		v.lines = nil
	}
	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
}
