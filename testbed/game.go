package testbed

import (
	"fmt"
	"image/color"

	"github.com/spaghettifunk/screenfx/engine"
	"github.com/spaghettifunk/screenfx/engine/config"
	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
	"github.com/spaghettifunk/screenfx/engine/renderer/software"
)

const (
	GameCameraName      = "Main Camera"
	SceneViewCameraName = "Scene Camera"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	engine  *engine.Engine
	output  string
	width   uint32
	height  uint32
	cameras []*metadata.CameraData

	lastReport *metadata.FrameReport
}

// NewTestGame builds a headless game rendering a synthetic scene for a game
// camera and a scene view camera.
func NewTestGame(settingsPath string, settings *config.Config, watch bool) (*TestGame, error) {
	if settings == nil {
		settings = config.Default()
		if settingsPath != "" {
			s, err := config.Load(settingsPath)
			if err != nil {
				return nil, err
			}
			settings = s
		}
	}

	state := &gameState{
		output: settings.Testbed.Output,
		width:  uint32(settings.Testbed.Width),
		height: uint32(settings.Testbed.Height),
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				Name:          "ScreenFX Testbed",
				SettingsPath:  settingsPath,
				Settings:      settings,
				WatchSettings: watch,
			},
			State: state,
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnCameras = tg.Cameras
	tg.FnOnFrame = tg.OnFrame
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogInfo("initializing testbed...")
	state := g.state()
	state.engine = e

	desc := metadata.RenderTextureDescriptor{
		Width:           state.width,
		Height:          state.height,
		DepthBufferBits: 24,
		Format:          metadata.TextureFormatRGBA8,
		MSAASamples:     1,
	}
	game, err := e.Backend().CreateCamera(GameCameraName, metadata.CameraTypeGame, desc)
	if err != nil {
		return err
	}
	scene, err := e.Backend().CreateCamera(SceneViewCameraName, metadata.CameraTypeSceneView, desc)
	if err != nil {
		return err
	}
	state.cameras = []*metadata.CameraData{game, scene}
	return nil
}

// Update draws the scene into every camera before the passes run.
func (g *TestGame) Update(frame uint64, deltaTime float64) error {
	for _, camera := range g.state().cameras {
		s, err := software.SurfaceOf(camera.ColorTarget)
		if err != nil {
			return err
		}
		PaintScene(s, frame)
	}
	return nil
}

func (g *TestGame) Cameras() []*metadata.CameraData {
	return g.state().cameras
}

func (g *TestGame) OnFrame(report *metadata.FrameReport) error {
	g.state().lastReport = report
	for _, c := range report.Cameras {
		core.LogDebug("frame %d camera '%s': executed %v, inputs %s, leaked %d",
			report.FrameNumber, c.Camera, c.Executed(), c.Inputs, c.Leaked)
		for _, p := range c.Passes {
			if p.Outcome == metadata.PassOutcomeFailed {
				core.LogWarn("frame %d camera '%s': pass '%s' failed: %s", report.FrameNumber, c.Camera, p.Name, p.Err)
			}
		}
	}
	if report.SubmitErrors > 0 {
		return fmt.Errorf("frame %d: %d submissions failed", report.FrameNumber, report.SubmitErrors)
	}
	return nil
}

// LastReport returns the report of the most recent frame.
func (g *TestGame) LastReport() *metadata.FrameReport {
	return g.state().lastReport
}

// GameCamera returns the primary camera, nil before initialization.
func (g *TestGame) GameCamera() *metadata.CameraData {
	for _, c := range g.state().cameras {
		if c.CameraType == metadata.CameraTypeGame {
			return c
		}
	}
	return nil
}

// Shutdown writes the game camera colour buffer to the configured output.
func (g *TestGame) Shutdown() error {
	state := g.state()
	camera := g.GameCamera()
	if camera == nil || state.output == "" {
		return nil
	}
	s, err := software.SurfaceOf(camera.ColorTarget)
	if err != nil {
		return err
	}
	if err := WriteImage(state.output, s.Color); err != nil {
		return err
	}
	core.LogInfo("wrote '%s'", state.output)
	return nil
}

// PaintScene draws a checkerboard over a horizontal gradient and a depth ramp
// growing from top to bottom. The pattern scrolls with the frame number.
func PaintScene(s *software.Surface, frame uint64) {
	w, h := s.Width(), s.Height()
	const cell = 16
	shift := int(frame % cell)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint8(x * 255 / max(w-1, 1))
			b := uint8(y * 255 / max(h-1, 1))
			g := uint8(64)
			if ((x+shift)/cell+y/cell)%2 == 0 {
				g = 224
			}
			s.Color.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			s.SetDepth(x, y, uint16(y*0xFFFF/max(h-1, 1)))
		}
	}
}
