package systems

import (
	"fmt"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

// RendererSystem plays the host renderer: it owns the renderer features, asks
// them to enqueue their passes for every camera and runs the scheduler.
type RendererSystem struct {
	features  []renderer.RendererFeature
	shaders   *ShaderSystem
	resources *TemporaryResourceSystem
	context   *renderer.RenderContext
	scheduler *PassScheduler

	frameNumber uint64
}

func NewRendererSystem(backend renderer.RendererBackend, shaders *ShaderSystem, resources *TemporaryResourceSystem) (*RendererSystem, error) {
	if backend == nil || shaders == nil || resources == nil {
		err := fmt.Errorf("func NewRendererSystem - backend, shaders and resources are required")
		return nil, err
	}
	context := renderer.NewRenderContext(backend)
	scheduler, err := NewPassScheduler(resources, renderer.NewCommandBufferPool(), context)
	if err != nil {
		return nil, err
	}
	return &RendererSystem{
		features:  []renderer.RendererFeature{},
		shaders:   shaders,
		resources: resources,
		context:   context,
		scheduler: scheduler,
	}, nil
}

// AddFeature registers a feature and creates its passes. A feature whose
// passes could not be created is still added; its passes stay inactive.
func (r *RendererSystem) AddFeature(feature renderer.RendererFeature) error {
	if feature == nil {
		return fmt.Errorf("renderer feature is nil")
	}
	if r.Feature(feature.Name()) != nil {
		return fmt.Errorf("renderer feature '%s' already added", feature.Name())
	}
	if err := feature.Create(r.shaders); err != nil {
		core.LogWarn("renderer feature '%s' created without a usable pass: %s", feature.Name(), err)
	}
	r.features = append(r.features, feature)
	return nil
}

// Feature returns the feature with the given name, or nil.
func (r *RendererSystem) Feature(name string) renderer.RendererFeature {
	for _, f := range r.features {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func (r *RendererSystem) Features() []renderer.RendererFeature {
	return r.features
}

// RecreateFeatures rebuilds every feature's passes, e.g. after a settings
// change. Must not be called while a frame is being rendered.
func (r *RendererSystem) RecreateFeatures() {
	for _, f := range r.features {
		if err := f.Create(r.shaders); err != nil {
			core.LogWarn("renderer feature '%s' recreated without a usable pass: %s", f.Name(), err)
		}
	}
}

func (r *RendererSystem) Scheduler() *PassScheduler {
	return r.scheduler
}

func (r *RendererSystem) BeginFrame(frameNumber uint64) {
	r.frameNumber = frameNumber
	r.context.ResetErrors()
	r.resources.BeginFrame(frameNumber)
}

// RenderCamera runs every admitted pass for the camera.
func (r *RendererSystem) RenderCamera(camera *metadata.CameraData) metadata.CameraReport {
	data := &metadata.RenderingData{
		CameraData:  camera,
		FrameNumber: r.frameNumber,
	}
	if camera == nil {
		return r.scheduler.Run(data)
	}

	r.resources.BeginCamera(camera.Name)
	for _, f := range r.features {
		if f.IsActive() {
			f.AddRenderPasses(r.scheduler, data)
		}
	}
	report := r.scheduler.Run(data)
	report.Leaked = r.resources.EndCamera(camera.Name)
	return report
}

// EndFrame closes the frame, returning the number of leaked temporary buffers
// and failed submissions.
func (r *RendererSystem) EndFrame() (int, int) {
	r.context.Submit()
	leaked := r.resources.EndFrame()
	return leaked, r.context.SubmitErrors()
}

func (r *RendererSystem) Shutdown() error {
	for _, f := range r.features {
		f.Dispose()
	}
	r.features = r.features[:0]
	return nil
}
