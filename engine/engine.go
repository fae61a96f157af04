package engine

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/spaghettifunk/meshview/engine/assets"
	"github.com/spaghettifunk/meshview/engine/config"
	"github.com/spaghettifunk/meshview/engine/core"
	"github.com/spaghettifunk/meshview/engine/renderer"
	"github.com/spaghettifunk/meshview/engine/renderer/metadata"
	"github.com/spaghettifunk/meshview/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine has released everything it owned
	EngineStageShutdown
)

type Engine struct {
	config       *config.ViewerConfig
	bus          *core.EventBus
	assetManager *assets.AssetManager
	jobSystem    *systems.JobSystem
	viewer       *renderer.Viewer

	mutex        sync.Mutex
	currentStage Stage
	modelPath    string
}

func New(cfg *config.ViewerConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(cfg.Level())

	// One worker keeps reloads of the same file in save order.
	js, err := systems.NewJobSystem(1, 4)
	if err != nil {
		return nil, err
	}

	bus := core.NewEventBus()
	return &Engine{
		config:       cfg,
		bus:          bus,
		assetManager: assets.NewAssetManager(bus),
		jobSystem:    js,
		viewer:       renderer.NewViewer(cfg, bus),
		currentStage: EngineStageUninitialized,
	}, nil
}

// Initialize loads the configured model, or builds the cube, and starts
// watching for changes. A model that fails to load is fatal here; later
// reload failures only keep the previous geometry.
func (e *Engine) Initialize() error {
	e.setStage(EngineStageInitializing)

	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_MODEL_CHANGED, e, e.onModelChanged)
	e.bus.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	watch := e.config.Watch && !e.config.UsesCube()
	if err := e.assetManager.Initialize(e.config.AssetsDir, watch); err != nil {
		return err
	}

	geometry, err := e.initialGeometry()
	if err != nil {
		return err
	}
	e.viewer.SetGeometry(geometry)

	if watch {
		if err := e.assetManager.Watch(e.modelPath); err != nil {
			return err
		}
		core.LogInfo("watching '%s' for changes", e.modelPath)
	}

	e.setStage(EngineStageInitialized)
	return nil
}

func (e *Engine) initialGeometry() (*metadata.GeometryConfig, error) {
	if e.config.UsesCube() {
		core.LogInfo("no model configured, showing the built-in cube")
		return systems.GeometrySystemGenerateCubeConfig(1, 1, 1, "cube"), nil
	}
	path, err := filepath.Abs(e.config.Model)
	if err != nil {
		return nil, err
	}
	e.modelPath = path
	return e.loadGeometry(path)
}

func (e *Engine) loadGeometry(path string) (*metadata.GeometryConfig, error) {
	resource, err := e.assetManager.LoadAsset(path, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := e.assetManager.UnloadAsset(resource); err != nil {
			core.LogWarn("failed to unload '%s': %s", resource.FullPath, err)
		}
	}()

	mesh, ok := resource.Data.(*metadata.MeshData)
	if !ok {
		return nil, fmt.Errorf("%w: %s did not load as a mesh", core.ErrUnknownAsset, path)
	}
	return systems.GeometrySystemConfigFromMesh(resource.Name, mesh)
}

// Run opens the window and blocks until it is closed or Shutdown is called.
func (e *Engine) Run() error {
	e.setStage(EngineStageRunning)

	ebiten.SetWindowTitle(e.config.Name)
	ebiten.SetWindowSize(e.config.Width, e.config.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(e.viewer); err != nil {
		return err
	}
	return e.Shutdown()
}

// Inspect logs the counts and extents of the initial geometry without
// opening a window.
func (e *Engine) Inspect() error {
	g := e.viewer.Geometry()
	if g == nil {
		return fmt.Errorf("engine is not initialized")
	}
	core.LogInfo("%s: %d vertices, %d indices, %d triangles", g.Name, g.VertexCount, g.IndexCount, g.IndexCount/3)
	core.LogInfo("extents min=(%.3f, %.3f, %.3f) max=(%.3f, %.3f, %.3f) center=(%.3f, %.3f, %.3f)",
		g.Extents.Min.X, g.Extents.Min.Y, g.Extents.Min.Z,
		g.Extents.Max.X, g.Extents.Max.Y, g.Extents.Max.Z,
		g.Center.X, g.Center.Y, g.Center.Z)
	return nil
}

// Shutdown stops the viewer and the watcher. Safe to call more than once and
// from any goroutine.
func (e *Engine) Shutdown() error {
	e.mutex.Lock()
	if e.currentStage == EngineStageShuttingDown || e.currentStage == EngineStageShutdown {
		e.mutex.Unlock()
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.mutex.Unlock()

	e.viewer.Close()
	err := e.assetManager.Shutdown()
	if jsErr := e.jobSystem.Shutdown(); err == nil {
		err = jsErr
	}
	e.bus.Shutdown()

	e.setStage(EngineStageShutdown)
	return err
}

func (e *Engine) Stage() Stage {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.currentStage
}

func (e *Engine) setStage(s Stage) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.currentStage = s
}

func (e *Engine) onEvent(code core.SystemEventCode, sender, listenerInst interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.viewer.Close()
		return true
	}
	return false
}

// onModelChanged runs on the watcher goroutine and hands the reload to the
// job system so the watcher keeps draining events while the model parses.
func (e *Engine) onModelChanged(code core.SystemEventCode, sender, listenerInst interface{}, context core.EventContext) bool {
	path := context.Data.C[0]
	if path != e.modelPath {
		return false
	}

	err := e.jobSystem.Submit(metadata.JobTask{
		Name:        "reload " + filepath.Base(path),
		InputParams: path,
		OnStart: func(params interface{}) (interface{}, error) {
			return e.loadGeometry(params.(string))
		},
		OnComplete: func(result interface{}) {
			e.swapGeometry(path, result.(*metadata.GeometryConfig))
		},
		OnFailure: func(err error) {
			core.LogError("reload of '%s' failed, keeping the previous model: %s", path, err)
		},
	})
	if err != nil {
		core.LogWarn("reload of '%s' skipped: %s", path, err)
	}
	return true
}

func (e *Engine) swapGeometry(path string, geometry *metadata.GeometryConfig) {
	e.viewer.SetGeometry(geometry)
	core.LogInfo("reloaded '%s': %d vertices, %d indices", path, geometry.VertexCount, geometry.IndexCount)

	reloaded := core.EventContext{}
	reloaded.Data.U32[0] = geometry.VertexCount
	reloaded.Data.U32[1] = geometry.IndexCount
	reloaded.Data.C[0] = path
	e.bus.Fire(core.EVENT_CODE_MODEL_RELOADED, e, reloaded)
}

func (e *Engine) onResized(code core.SystemEventCode, sender, listenerInst interface{}, context core.EventContext) bool {
	width, height := context.Data.U32[0], context.Data.U32[1]
	if width == 0 || height == 0 {
		core.LogDebug("Window minimized.")
		return false
	}
	core.LogDebug("Window resize: %d, %d", width, height)
	return false
}
