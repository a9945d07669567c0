package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spaghettifunk/screenfx/engine/assets"
	"github.com/spaghettifunk/screenfx/engine/config"
	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/features"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
	"github.com/spaghettifunk/screenfx/engine/renderer/software"
	"github.com/spaghettifunk/screenfx/engine/systems"
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
	// Engine released every system
	EngineStageShutdown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	settings      *config.Config
	backend       *software.SoftwareRenderer
	jobSystem     *systems.JobSystem
	systemManager *systems.SystemManager
	watcher       *assets.SettingsWatcher
	blur          *features.BlurFeature
	depth         *features.DepthFeature
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      time.Duration
	frameNumber   uint64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("func New - game and application config are required")
	}

	settings := g.ApplicationConfig.Settings
	if settings == nil {
		settings = config.Default()
		if g.ApplicationConfig.SettingsPath != "" {
			s, err := config.Load(g.ApplicationConfig.SettingsPath)
			if err != nil {
				core.LogError(err.Error())
				return nil, err
			}
			settings = s
		}
	}
	if err := core.LogInitialize(settings.LogConfig()); err != nil {
		return nil, err
	}

	workers := settings.Resources.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	js, err := systems.NewJobSystem(workers, workers*2)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	metrics := core.NewMetrics()
	backend := software.New(metrics, software.WithParallelizer(js))

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		MaxShaderCount:       uint16(settings.Resources.MaxShaderCount),
		MaxPooledDescriptors: settings.Resources.PoolSize,
	}, backend)
	if err != nil {
		core.LogError(err.Error())
		js.Shutdown()
		return nil, err
	}

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		settings:      settings,
		backend:       backend,
		jobSystem:     js,
		systemManager: sm,
		clock:         core.NewClock(),
		metrics:       metrics,
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	e.blur = features.NewBlurFeature(e.settings.BlurSettings())
	e.blur.SetActive(e.settings.Features.Blur.Enabled)
	e.depth = features.NewDepthFeature(e.settings.DepthSettings())
	e.depth.SetActive(e.settings.Features.Depth.Enabled)

	rs := e.systemManager.RendererSystem
	if err := rs.AddFeature(e.blur); err != nil {
		return err
	}
	if err := rs.AddFeature(e.depth); err != nil {
		return err
	}

	appConfig := e.gameInstance.ApplicationConfig
	if appConfig.WatchSettings && appConfig.SettingsPath != "" {
		w, err := assets.NewSettingsWatcher(appConfig.SettingsPath)
		if err != nil {
			core.LogError("failed to watch settings '%s': %s", appConfig.SettingsPath, err)
			return err
		}
		e.watcher = w
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			core.LogError("game initialization failed: %s", err)
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized", appConfig.Name)
	return nil
}

// RenderFrame runs every admitted pass for each camera, in the given order.
func (e *Engine) RenderFrame(cameras []*metadata.CameraData) (*metadata.FrameReport, error) {
	if e.currentStage != EngineStageInitialized && e.currentStage != EngineStageRunning {
		return nil, fmt.Errorf("engine is not initialized")
	}
	e.applyPendingReload()

	start := time.Now()
	e.frameNumber++
	e.metrics.ResetSamples()

	rs := e.systemManager.RendererSystem
	rs.BeginFrame(e.frameNumber)

	report := &metadata.FrameReport{
		FrameNumber: e.frameNumber,
		Cameras:     make([]metadata.CameraReport, 0, len(cameras)),
	}
	for _, camera := range cameras {
		report.Cameras = append(report.Cameras, rs.RenderCamera(camera))
	}
	leaked, submitErrors := rs.EndFrame()
	if leaked > 0 {
		core.LogWarn("frame %d leaked %d temporary buffers", e.frameNumber, leaked)
	}
	report.SubmitErrors = submitErrors
	report.Duration = time.Since(start)
	e.metrics.Update(report.Duration)
	return report, nil
}

// Run renders frames until ctx is done or, when frames is positive, that many
// frames were rendered.
func (e *Engine) Run(ctx context.Context, frames int) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	if e.gameInstance.FnCameras == nil {
		return fmt.Errorf("game does not provide cameras")
	}
	e.currentStage = EngineStageRunning
	defer func() {
		if e.currentStage == EngineStageRunning {
			e.currentStage = EngineStageInitialized
		}
	}()

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for rendered := 0; frames <= 0 || rendered < frames; rendered++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := (currentTime - e.lastTime).Seconds()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(e.frameNumber+1, delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				return err
			}
		}

		report, err := e.RenderFrame(e.gameInstance.FnCameras())
		if err != nil {
			return err
		}
		if e.gameInstance.FnOnFrame != nil {
			if err := e.gameInstance.FnOnFrame(report); err != nil {
				core.LogError("game frame callback failed, shutting down: %s", err)
				return err
			}
		}

		e.lastTime = currentTime
	}
	e.clock.Stop()
	return nil
}

// Reload re-reads the settings file and rebuilds the features.
func (e *Engine) Reload() error {
	path := e.gameInstance.ApplicationConfig.SettingsPath
	if path == "" {
		return fmt.Errorf("no settings file to reload")
	}
	settings, err := config.Load(path)
	if err != nil {
		return err
	}
	return e.ApplySettings(settings)
}

// ApplySettings swaps the feature settings and recreates their passes. Pool
// and shader limits only apply at start up.
func (e *Engine) ApplySettings(settings *config.Config) error {
	if settings == nil {
		return core.ErrInvalidSettings
	}
	if e.currentStage == EngineStageShuttingDown || e.currentStage == EngineStageShutdown {
		return fmt.Errorf("engine is shutting down")
	}
	if err := core.LogInitialize(settings.LogConfig()); err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidSettings, err)
	}
	e.settings = settings
	if e.blur == nil || e.depth == nil {
		return nil
	}
	e.blur.SetSettings(settings.BlurSettings())
	e.blur.SetActive(settings.Features.Blur.Enabled)
	e.depth.SetSettings(settings.DepthSettings())
	e.depth.SetActive(settings.Features.Depth.Enabled)
	e.systemManager.RendererSystem.RecreateFeatures()
	core.LogInfo("settings applied")
	return nil
}

func (e *Engine) applyPendingReload() {
	if e.watcher == nil || !e.watcher.Pending() {
		return
	}
	if err := e.Reload(); err != nil {
		core.LogError("settings reload failed, keeping the previous settings: %s", err)
	}
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	errs = append(errs, e.systemManager.Shutdown())
	errs = append(errs, e.jobSystem.Shutdown())

	e.currentStage = EngineStageShutdown
	core.LogInfo("%s shut down after %d frames", e.gameInstance.ApplicationConfig.Name, e.frameNumber)
	return errors.Join(errs...)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Settings() *config.Config {
	return e.settings
}

func (e *Engine) Backend() *software.SoftwareRenderer {
	return e.backend
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) BlurFeature() *features.BlurFeature {
	return e.blur
}

func (e *Engine) DepthFeature() *features.DepthFeature {
	return e.depth
}

func (e *Engine) FrameNumber() uint64 {
	return e.frameNumber
}
