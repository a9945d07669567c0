package engine

import (
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

// Game is the host application driven by the engine.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnCameras         Cameras
	FnOnFrame         OnFrame
	FnShutdown        Shutdown
}

type Initialize func(e *Engine) error
type Update func(frame uint64, deltaTime float64) error
type Cameras func() []*metadata.CameraData
type OnFrame func(report *metadata.FrameReport) error
type Shutdown func() error
