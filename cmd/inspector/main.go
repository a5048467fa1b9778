// Model Inspector - a graphical tool for previewing glTF and OBJ models
// under image-based lighting.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/config"
	"github.com/MrShreyas/car/internal/engine/debug"
	"github.com/MrShreyas/car/internal/logger"
)

const (
	previewWidth  = 768
	previewHeight = 576
)

func main() {
	runtime.LockOSThread()

	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app, err := NewApp(cfg)
	if err != nil {
		logger.Error("failed to create inspector", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if cfg.Model.Path != "" {
		app.OpenModel(cfg.Model.Path)
	}

	app.Run()
}

// App is the inspector application state.
type App struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	cfg     *config.Config
	log     logger.Sink

	preview   *Preview
	modelPath string
	loadErr   string

	// UI state
	selectedMesh int
	hdrPath      string
	exposure     float32
	lastMousePos imgui.Vec2

	// Screenshot state
	shots               *debug.ScreenshotCapture
	lastScreenshotMsg   string
	showScreenshotMsg   bool
	screenshotMsgTime   time.Time
	screenshotRequested bool

	// File dialog results, handed to the render thread.
	pendingModelPath string
	pendingHDRPath   string
}

// NewApp creates the window and the preview renderer.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:          cfg,
		log:          logger.Default("inspector"),
		selectedMesh: -1,
		hdrPath:      cfg.Environment.HDRPath,
		exposure:     cfg.Render.Exposure,
		shots:        debug.NewScreenshotCapture(cfg.Render.Screenshot, "inspector"),
	}

	var err error
	app.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}

	cc := cfg.Render.ClearColor
	app.backend.SetBgColor(imgui.NewVec4(cc[0], cc[1], cc[2], 1.0))
	app.backend.CreateWindow("Model Inspector", int(cfg.Window.Width), int(cfg.Window.Height))

	// The renderer loads GL function pointers against the backend's context.
	app.preview, err = NewPreview(previewWidth, previewHeight, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview: %w", err)
	}
	if err := app.preview.Renderer().LoadEnvironment(app.hdrPath); err != nil {
		app.log.Warn("environment failed to build", zap.Error(err))
	}
	return app, nil
}

// Close cleans up resources.
func (app *App) Close() {
	if app.preview != nil {
		app.preview.Destroy()
		app.preview = nil
	}
}

// Run starts the main application loop.
func (app *App) Run() {
	app.backend.Run(app.render)
}

// openFileDialog shows a native file dialog. SDL window operations must
// stay on the main thread, so the result is only stored in dst and picked
// up by render.
func (app *App) openFileDialog(title string, dst *string, filters ...[2]string) {
	go func() {
		b := dialog.File().Title(title)
		for _, f := range filters {
			b = b.Filter(f[0], f[1])
		}
		filename, err := b.Filter("All Files", "*").Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				app.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		*dst = filename
	}()
}

// OpenModel loads a model into the preview.
func (app *App) OpenModel(path string) {
	if err := app.preview.LoadModel(path); err != nil {
		app.loadErr = err.Error()
		app.log.Warn("model failed to load", zap.String("path", path), zap.Error(err))
		return
	}
	app.modelPath = path
	app.loadErr = ""
	app.selectedMesh = -1
	app.backend.SetWindowTitle(fmt.Sprintf("Model Inspector - %s", filepath.Base(path)))
}

// OpenEnvironment rebuilds the lighting from an HDR panorama, or the
// procedural sky when path is empty.
func (app *App) OpenEnvironment(path string) {
	if err := app.preview.Renderer().LoadEnvironment(path); err != nil {
		app.showNotification(fmt.Sprintf("Environment failed: %v", err))
		return
	}
	app.hdrPath = path
}

func (app *App) showNotification(msg string) {
	app.lastScreenshotMsg = msg
	app.showScreenshotMsg = true
	app.screenshotMsgTime = time.Now()
}

func (app *App) captureScreenshot() {
	w, h := app.preview.Size()
	path, err := app.shots.CaptureFromPixels(app.preview.ReadPixels(), int(w), int(h))
	if err != nil {
		app.showNotification(fmt.Sprintf("Screenshot failed: %v", err))
		return
	}
	app.log.Info("screenshot saved", zap.String("path", path))
	app.showNotification("Saved: " + path)
}

// render is called each frame to draw the UI.
func (app *App) render() {
	// Dialog results are applied here, on the main thread.
	if app.pendingModelPath != "" {
		path := app.pendingModelPath
		app.pendingModelPath = ""
		app.OpenModel(path)
	}
	if app.pendingHDRPath != "" {
		path := app.pendingHDRPath
		app.pendingHDRPath = ""
		app.OpenEnvironment(path)
	}

	// F12 saves the preview after this frame has rendered it.
	if app.screenshotRequested {
		app.screenshotRequested = false
		app.captureScreenshot()
	}
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyF12)) {
		app.screenshotRequested = true
	}
	ctrlO := imgui.KeyChord(imgui.ModCtrl) | imgui.KeyChord(imgui.KeyO)
	if imgui.IsKeyChordPressed(ctrlO) {
		app.openModelDialog()
	}

	if imgui.BeginMainMenuBar() {
		if imgui.BeginMenu("File") {
			if imgui.MenuItemBool("Open Model...") {
				app.openModelDialog()
			}
			if imgui.MenuItemBool("Open HDR Environment...") {
				app.openFileDialog("Open HDR Environment", &app.pendingHDRPath, [2]string{"Radiance HDR", "hdr"})
			}
			if imgui.MenuItemBool("Procedural Sky") {
				app.OpenEnvironment("")
			}
			imgui.Separator()
			if imgui.MenuItemBool("Save Screenshot") {
				app.screenshotRequested = true
			}
			imgui.Separator()
			if imgui.MenuItemBool("Exit") {
				os.Exit(0)
			}
			imgui.EndMenu()
		}
		imgui.EndMainMenuBar()
	}

	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()

	sidePanelWidth := float32(380)
	statusBarHeight := float32(30)
	contentHeight := workSize.Y - statusBarHeight

	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(workPos)
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X-sidePanelWidth, contentHeight))
	if imgui.BeginV("Preview", nil, flags) {
		app.renderPreview()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+workSize.X-sidePanelWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(sidePanelWidth, contentHeight))
	if imgui.BeginV("Details", nil, flags) {
		app.renderDetails()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X, workPos.Y+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X, statusBarHeight))
	statusFlags := flags | imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoScrollbar
	if imgui.BeginV("##StatusBar", nil, statusFlags) {
		app.renderStatusBar()
	}
	imgui.End()

	if app.showScreenshotMsg && time.Since(app.screenshotMsgTime) < 2*time.Second {
		notifyFlags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
			imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
			imgui.WindowFlagsAlwaysAutoResize | imgui.WindowFlagsNoFocusOnAppearing
		imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+10, workPos.Y+10))
		imgui.SetNextWindowBgAlpha(0.85)
		if imgui.BeginV("##Notify", nil, notifyFlags) {
			imgui.Text(app.lastScreenshotMsg)
		}
		imgui.End()
	} else if app.showScreenshotMsg {
		app.showScreenshotMsg = false
	}
}

func (app *App) openModelDialog() {
	app.openFileDialog("Open Model", &app.pendingModelPath,
		[2]string{"glTF Models", "gltf"},
		[2]string{"Binary glTF", "glb"},
		[2]string{"Wavefront OBJ", "obj"},
	)
}
