package features

import (
	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/math"
	"github.com/spaghettifunk/screenfx/engine/renderer"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

const (
	BlurFeatureName   = "SSBlurFeature"
	BlurProfilerTag   = "SSBlur-Pass"
	MinBlurDownsample = 1
	MaxBlurDownsample = 4
	MinBlurStrength   = 0
	MaxBlurStrength   = 20
)

/** @brief Settings of the screen space blur. */
type BlurSettings struct {
	/** @brief The stage after which the blur runs. */
	Event metadata.RenderPassEvent
	/** @brief Integer factor the scratch buffer is shrunk by, 1 to 4. */
	Downsample int
	/** @brief Box filter radius in texels, 0 to 20. Bound once when the pass is created. */
	BlurStrength int
	/** @brief Sampling filter of the scratch buffer. */
	FilterMode metadata.FilterMode
	/** @brief Name of the two pass blur program. */
	Shader string
}

func DefaultBlurSettings() BlurSettings {
	return BlurSettings{
		Event:        metadata.RenderPassEventAfterRenderingTransparents,
		Downsample:   1,
		BlurStrength: 5,
		FilterMode:   metadata.FilterModeBilinear,
		Shader:       metadata.BUILTIN_SHADER_NAME_BOX_BLUR,
	}
}

// Sanitize clamps the integer parameters into their documented ranges.
func (s BlurSettings) Sanitize() BlurSettings {
	d := math.Clamp(s.Downsample, MinBlurDownsample, MaxBlurDownsample)
	if d != s.Downsample {
		core.LogWarn("blur downsample %d out of range, using %d", s.Downsample, d)
		s.Downsample = d
	}
	b := math.Clamp(s.BlurStrength, MinBlurStrength, MaxBlurStrength)
	if b != s.BlurStrength {
		core.LogWarn("blur strength %d out of range, using %d", s.BlurStrength, b)
		s.BlurStrength = b
	}
	if s.Shader == "" {
		s.Shader = metadata.BUILTIN_SHADER_NAME_BOX_BLUR
	}
	return s
}

// blurPass blurs the camera colour buffer in place through a downsampled
// scratch buffer: vertical into the scratch buffer, horizontal back.
type blurPass struct {
	*screenSpacePass
	settings BlurSettings
}

func newBlurPass(settings BlurSettings, materials renderer.MaterialFactory) (*blurPass, error) {
	base, err := newScreenSpacePass(BlurProfilerTag, settings.Event, materials, settings.Shader)
	if err == nil {
		base.material.SetInt(core.PropertyBlurStrength, int32(settings.BlurStrength))
	}
	return &blurPass{screenSpacePass: base, settings: settings}, err
}

func (p *blurPass) Setup(ctx *renderer.PassContext, data *metadata.RenderingData) error {
	if data == nil || data.CameraData == nil {
		return core.ErrNilRenderingData
	}
	desc := data.CameraData.TargetDescriptor.
		Downsample(p.settings.Downsample).
		WithDepthBits(0)
	return p.setup(ctx, data, desc, p.settings.FilterMode)
}

func (p *blurPass) Execute(ctx *renderer.PassContext, data *metadata.RenderingData) error {
	return p.execute(ctx, func(cmd *renderer.CommandBuffer) error {
		if err := cmd.Blit(p.source, p.temporary, p.material, 0); err != nil {
			return err
		}
		return cmd.Blit(p.temporary, p.source, p.material, 1)
	})
}

func (p *blurPass) Dispose() {
	p.PassLifecycle.Dispose()
}

type BlurFeature struct {
	featureBase
	settings BlurSettings
	pass     *blurPass
}

func NewBlurFeature(settings BlurSettings) *BlurFeature {
	return &BlurFeature{
		featureBase: featureBase{name: BlurFeatureName, active: true},
		settings:    settings.Sanitize(),
	}
}

func (f *BlurFeature) Settings() BlurSettings {
	return f.settings
}

// SetSettings stores new settings. They take effect on the next Create.
func (f *BlurFeature) SetSettings(settings BlurSettings) {
	f.settings = settings.Sanitize()
}

// Pass returns the current pass, nil before Create.
func (f *BlurFeature) Pass() renderer.RenderPass {
	if f.pass == nil {
		return nil
	}
	return f.pass
}

// Create rebuilds the pass from the current settings. A missing program leaves
// an inactive pass behind which is never scheduled.
func (f *BlurFeature) Create(materials renderer.MaterialFactory) error {
	f.Dispose()
	f.materials = materials
	p, err := newBlurPass(f.settings, materials)
	f.pass = p
	if err != nil {
		core.LogWarn("feature '%s': %s", f.name, err)
	}
	return err
}

func (f *BlurFeature) AddRenderPasses(queue renderer.PassQueue, data *metadata.RenderingData) {
	if f.pass == nil || queue == nil {
		return
	}
	f.pass.ConfigureInput(metadata.RenderPassInputDepth | metadata.RenderPassInputNormal)
	queue.EnqueuePass(f.pass, data)
}

func (f *BlurFeature) Dispose() {
	if f.pass == nil {
		return
	}
	f.pass.dispose(f.materials)
	f.pass = nil
}
