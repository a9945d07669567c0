package features

import (
	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

const (
	DepthFeatureName     = "SSDepthFeature"
	DepthProfilerTag     = "SSDepth-Pass"
	DepthScratchBits uint32 = 16
)

/** @brief Settings of the screen space depth pass. */
type DepthSettings struct {
	/** @brief The stage after which the pass runs. */
	Event metadata.RenderPassEvent
	/** @brief Sampling filter of the scratch buffer. */
	FilterMode metadata.FilterMode
	/** @brief Name of the depth program. */
	Shader string
}

func DefaultDepthSettings() DepthSettings {
	return DepthSettings{
		Event:      metadata.RenderPassEventBeforeRenderingPostProcessing,
		FilterMode: metadata.FilterModeBilinear,
		Shader:     metadata.BUILTIN_SHADER_NAME_DEPTH,
	}
}

func (s DepthSettings) Sanitize() DepthSettings {
	if s.Shader == "" {
		s.Shader = metadata.BUILTIN_SHADER_NAME_DEPTH
	}
	return s
}

// depthPass renders the depth program into a full size scratch buffer with
// its own 16 bit depth and copies the result back over the colour buffer.
type depthPass struct {
	*screenSpacePass
	settings DepthSettings
}

func newDepthPass(settings DepthSettings, materials renderer.MaterialFactory) (*depthPass, error) {
	base, err := newScreenSpacePass(DepthProfilerTag, settings.Event, materials, settings.Shader)
	return &depthPass{screenSpacePass: base, settings: settings}, err
}

func (p *depthPass) Setup(ctx *renderer.PassContext, data *metadata.RenderingData) error {
	if data == nil || data.CameraData == nil {
		return core.ErrNilRenderingData
	}
	desc := data.CameraData.TargetDescriptor.WithDepthBits(DepthScratchBits)
	return p.setup(ctx, data, desc, p.settings.FilterMode)
}

func (p *depthPass) Execute(ctx *renderer.PassContext, data *metadata.RenderingData) error {
	return p.execute(ctx, func(cmd *renderer.CommandBuffer) error {
		if err := cmd.Blit(p.source, p.temporary, p.material, 0); err != nil {
			return err
		}
		return cmd.Blit(p.temporary, p.source, nil, renderer.CopyPass)
	})
}

func (p *depthPass) Dispose() {
	p.PassLifecycle.Dispose()
}

type DepthFeature struct {
	featureBase
	settings DepthSettings
	pass     *depthPass
}

func NewDepthFeature(settings DepthSettings) *DepthFeature {
	return &DepthFeature{
		featureBase: featureBase{name: DepthFeatureName, active: true},
		settings:    settings.Sanitize(),
	}
}

func (f *DepthFeature) Settings() DepthSettings {
	return f.settings
}

func (f *DepthFeature) SetSettings(settings DepthSettings) {
	f.settings = settings.Sanitize()
}

func (f *DepthFeature) Pass() renderer.RenderPass {
	if f.pass == nil {
		return nil
	}
	return f.pass
}

func (f *DepthFeature) Create(materials renderer.MaterialFactory) error {
	f.Dispose()
	f.materials = materials
	p, err := newDepthPass(f.settings, materials)
	f.pass = p
	if err != nil {
		core.LogWarn("feature '%s': %s", f.name, err)
	}
	return err
}

func (f *DepthFeature) AddRenderPasses(queue renderer.PassQueue, data *metadata.RenderingData) {
	if f.pass == nil || queue == nil {
		return
	}
	f.pass.ConfigureInput(metadata.RenderPassInputNone)
	queue.EnqueuePass(f.pass, data)
}

func (f *DepthFeature) Dispose() {
	if f.pass == nil {
		return
	}
	f.pass.dispose(f.materials)
	f.pass = nil
}
