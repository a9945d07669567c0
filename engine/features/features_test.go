package features

import (
	"testing"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
	"github.com/spaghettifunk/screenfx/engine/renderer/software"
	"github.com/spaghettifunk/screenfx/engine/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend keeps every submitted command and executes it on the
// software renderer.
type recordingBackend struct {
	*software.SoftwareRenderer
	commands []renderer.Command
}

func (b *recordingBackend) Submit(name string, commands []renderer.Command) error {
	b.commands = append(b.commands, commands...)
	return b.SoftwareRenderer.Submit(name, commands)
}

func (b *recordingBackend) ofType(t renderer.CommandType) []renderer.Command {
	out := []renderer.Command{}
	for _, c := range b.commands {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

type harness struct {
	backend *recordingBackend
	sm      *systems.SystemManager
}

func newHarness(t *testing.T) *harness {
	backend := &recordingBackend{SoftwareRenderer: software.New(nil)}
	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{MaxShaderCount: 8, MaxPooledDescriptors: 8}, backend)
	require.NoError(t, err)
	t.Cleanup(func() { sm.Shutdown() })
	return &harness{backend: backend, sm: sm}
}

func (h *harness) camera(t *testing.T, name string, cameraType metadata.CameraType) *metadata.CameraData {
	c, err := h.backend.CreateCamera(name, cameraType, metadata.RenderTextureDescriptor{
		Width: 64, Height: 32, DepthBufferBits: 24,
	})
	require.NoError(t, err)
	return c
}

func (h *harness) render(cameras ...*metadata.CameraData) []metadata.CameraReport {
	rs := h.sm.RendererSystem
	rs.BeginFrame(1)
	reports := []metadata.CameraReport{}
	for _, c := range cameras {
		reports = append(reports, rs.RenderCamera(c))
	}
	rs.EndFrame()
	return reports
}

func TestBlurFeature_PrimaryCamera(t *testing.T) {
	h := newHarness(t)
	settings := DefaultBlurSettings()
	settings.Downsample = 1
	settings.BlurStrength = 5
	blur := NewBlurFeature(settings)
	require.NoError(t, h.sm.RendererSystem.AddFeature(blur))

	camera := h.camera(t, "main", metadata.CameraTypeGame)
	reports := h.render(camera)

	assert.Equal(t, []string{BlurProfilerTag}, reports[0].Executed())
	assert.True(t, reports[0].Inputs.Has(metadata.RenderPassInputDepth|metadata.RenderPassInputNormal))

	blits := h.backend.ofType(renderer.CommandTypeBlit)
	require.Len(t, blits, 2)
	assert.Same(t, camera.ColorTarget, blits[0].Source.Texture)
	assert.Equal(t, metadata.RenderTargetKindTemporary, blits[0].Destination.Kind)
	assert.Equal(t, 0, blits[0].ShaderPass)
	assert.Same(t, blits[0].Destination.Texture, blits[1].Source.Texture)
	assert.Same(t, camera.ColorTarget, blits[1].Destination.Texture)
	assert.Equal(t, 1, blits[1].ShaderPass)

	stats := h.sm.TemporaryResourceSystem.Stats()
	assert.Equal(t, uint64(1), stats.Acquired)
	assert.Equal(t, uint64(1), stats.Released)
	assert.Equal(t, uint64(0), stats.Leaked)
	assert.Len(t, h.backend.ofType(renderer.CommandTypeGetTemporaryRT), 1)
	assert.Len(t, h.backend.ofType(renderer.CommandTypeReleaseTemporaryRT), 1)
}

func TestBlurFeature_StrengthIsBoundOnce(t *testing.T) {
	h := newHarness(t)
	settings := DefaultBlurSettings()
	settings.BlurStrength = 7
	blur := NewBlurFeature(settings)
	require.NoError(t, blur.Create(h.sm.ShaderSystem))

	m := blur.pass.Material()
	require.NotNil(t, m)
	assert.Equal(t, int32(7), m.GetInt(core.PropertyBlurStrength))
}

func TestBlurFeature_ScratchDescriptor(t *testing.T) {
	for _, downsample := range []int{1, 4} {
		h := newHarness(t)
		settings := DefaultBlurSettings()
		settings.Downsample = downsample
		require.NoError(t, h.sm.RendererSystem.AddFeature(NewBlurFeature(settings)))

		h.render(h.camera(t, "main", metadata.CameraTypeGame))

		gets := h.backend.ofType(renderer.CommandTypeGetTemporaryRT)
		require.Len(t, gets, 1)
		assert.Equal(t, uint32(64/downsample), gets[0].Descriptor.Width)
		assert.Equal(t, uint32(32/downsample), gets[0].Descriptor.Height)
		assert.Equal(t, uint32(0), gets[0].Descriptor.DepthBufferBits, "the blur scratch buffer has no depth")
		assert.Equal(t, metadata.FilterModeBilinear, gets[0].FilterMode)
	}
}

func TestBlurFeature_SceneViewCameraIsSkipped(t *testing.T) {
	h := newHarness(t)
	blur := NewBlurFeature(DefaultBlurSettings())
	require.NoError(t, h.sm.RendererSystem.AddFeature(blur))

	reports := h.render(h.camera(t, "scene", metadata.CameraTypeSceneView))

	assert.Empty(t, reports[0].Executed())
	assert.Empty(t, h.backend.commands)
	assert.Equal(t, uint64(0), h.sm.TemporaryResourceSystem.Stats().Acquired)
	assert.Equal(t, metadata.PassStateReady, blur.pass.State(), "no lifecycle call was made")
}

func TestDepthFeature_MissingProgram(t *testing.T) {
	h := newHarness(t)
	settings := DefaultDepthSettings()
	settings.Shader = "ScreenSpace/Missing"
	depth := NewDepthFeature(settings)
	require.NoError(t, h.sm.RendererSystem.AddFeature(depth))

	pass := depth.Pass()
	require.NotNil(t, pass)
	camera := h.camera(t, "main", metadata.CameraTypeGame)
	for frame := 0; frame < 3; frame++ {
		reports := h.render(camera)
		assert.False(t, pass.IsActive())
		assert.Empty(t, reports[0].Executed())
	}
	assert.Equal(t, metadata.PassStateInactive, pass.State())
	assert.Empty(t, h.backend.commands)
}

func TestDepthFeature_ReactivatedByNewSettings(t *testing.T) {
	h := newHarness(t)
	settings := DefaultDepthSettings()
	settings.Shader = "ScreenSpace/Missing"
	depth := NewDepthFeature(settings)
	require.NoError(t, h.sm.RendererSystem.AddFeature(depth))
	assert.False(t, depth.Pass().IsActive())

	depth.SetSettings(DefaultDepthSettings())
	h.sm.RendererSystem.RecreateFeatures()

	assert.True(t, depth.Pass().IsActive())
	reports := h.render(h.camera(t, "main", metadata.CameraTypeGame))
	assert.Equal(t, []string{DepthProfilerTag}, reports[0].Executed())
}

func TestDepthFeature_Execute(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sm.RendererSystem.AddFeature(NewDepthFeature(DefaultDepthSettings())))
	camera := h.camera(t, "main", metadata.CameraTypeGame)

	reports := h.render(camera)
	assert.Equal(t, metadata.RenderPassInputNone, reports[0].Inputs)

	gets := h.backend.ofType(renderer.CommandTypeGetTemporaryRT)
	require.Len(t, gets, 1)
	assert.Equal(t, uint32(64), gets[0].Descriptor.Width)
	assert.Equal(t, uint32(16), gets[0].Descriptor.DepthBufferBits, "the depth scratch buffer has its own 16 bit depth")

	blits := h.backend.ofType(renderer.CommandTypeBlit)
	require.Len(t, blits, 2)
	assert.Equal(t, 0, blits[0].ShaderPass)
	assert.NotNil(t, blits[0].Material)
	assert.Nil(t, blits[1].Material)
	assert.Equal(t, renderer.CopyPass, blits[1].ShaderPass)
	assert.Same(t, camera.ColorTarget, blits[1].Destination.Texture)
}

func TestFeatures_SameEventStayBalanced(t *testing.T) {
	h := newHarness(t)
	blurSettings := DefaultBlurSettings()
	depthSettings := DefaultDepthSettings()
	depthSettings.Event = blurSettings.Event
	require.NoError(t, h.sm.RendererSystem.AddFeature(NewBlurFeature(blurSettings)))
	require.NoError(t, h.sm.RendererSystem.AddFeature(NewDepthFeature(depthSettings)))

	reports := h.render(h.camera(t, "main", metadata.CameraTypeGame))

	assert.ElementsMatch(t, []string{BlurProfilerTag, DepthProfilerTag}, reports[0].Executed())
	stats := h.sm.TemporaryResourceSystem.Stats()
	assert.Equal(t, uint64(2), stats.Acquired)
	assert.Equal(t, stats.Acquired, stats.Released)
	assert.Equal(t, uint64(0), stats.Leaked)
	assert.Equal(t, 0, reports[0].Leaked)
}

func TestFeatures_DisabledFeatureIsNotEnqueued(t *testing.T) {
	h := newHarness(t)
	blur := NewBlurFeature(DefaultBlurSettings())
	require.NoError(t, h.sm.RendererSystem.AddFeature(blur))
	blur.SetActive(false)

	reports := h.render(h.camera(t, "main", metadata.CameraTypeGame))
	assert.Empty(t, reports[0].Passes)
}

func TestBlurSettings_Sanitize(t *testing.T) {
	s := BlurSettings{Downsample: 9, BlurStrength: -3}.Sanitize()
	assert.Equal(t, MaxBlurDownsample, s.Downsample)
	assert.Equal(t, MinBlurStrength, s.BlurStrength)
	assert.Equal(t, metadata.BUILTIN_SHADER_NAME_BOX_BLUR, s.Shader)

	s = BlurSettings{Downsample: 0, BlurStrength: 50}.Sanitize()
	assert.Equal(t, MinBlurDownsample, s.Downsample)
	assert.Equal(t, MaxBlurStrength, s.BlurStrength)
}

func TestScreenSpacePass_SetupWithoutCommandBuffer(t *testing.T) {
	h := newHarness(t)
	blur := NewBlurFeature(DefaultBlurSettings())
	require.NoError(t, blur.Create(h.sm.ShaderSystem))
	data := &metadata.RenderingData{CameraData: h.camera(t, "main", metadata.CameraTypeGame)}

	err := blur.pass.Setup(&renderer.PassContext{Resources: h.sm.TemporaryResourceSystem}, data)
	assert.ErrorIs(t, err, core.ErrNilCommandBuffer)
	assert.NoError(t, blur.pass.Cleanup(nil), "cleanup tolerates a missing context")
}

func TestFeature_Dispose(t *testing.T) {
	h := newHarness(t)
	blur := NewBlurFeature(DefaultBlurSettings())
	require.NoError(t, blur.Create(h.sm.ShaderSystem))
	m := blur.pass.Material()
	pass := blur.Pass()

	blur.Dispose()
	assert.False(t, m.IsValid(), "the material is destroyed with the pass")
	assert.Equal(t, metadata.PassStateDisposed, pass.State())
	assert.Nil(t, blur.Pass())
}
