package renderer

import (
	"github.com/spaghettifunk/screenfx/engine/containers"
	"github.com/spaghettifunk/screenfx/engine/core"
)

// MaxPendingSubmissions bounds the command lists a RenderContext holds before
// it submits on its own.
const MaxPendingSubmissions = 64

type submission struct {
	name     string
	commands []Command
}

// RenderContext collects executed command buffers and forwards them to the
// backend.
type RenderContext struct {
	backend      RendererBackend
	pending      *containers.RingQueue[submission]
	submitErrors int
}

func NewRenderContext(backend RendererBackend) *RenderContext {
	return &RenderContext{
		backend: backend,
		pending: containers.NewRingQueue[submission](MaxPendingSubmissions),
	}
}

// ExecuteCommandBuffer schedules a copy of the commands recorded in cmd. The
// buffer can be cleared or released right after. When the queue is full the
// scheduled lists are submitted first, keeping their order.
func (rc *RenderContext) ExecuteCommandBuffer(cmd *CommandBuffer) error {
	if cmd == nil {
		return core.ErrNilCommandBuffer
	}
	if cmd.Len() == 0 {
		return nil
	}
	if rc.pending.IsFull() {
		core.LogDebug("render context full, submitting %d command lists early", rc.pending.Len())
		rc.Submit()
	}
	return rc.pending.Enqueue(submission{
		name:     cmd.Name,
		commands: cmd.Commands(),
	})
}

// Submit hands every scheduled command list to the backend in order. Backend
// failures are logged and counted, never returned to the caller.
func (rc *RenderContext) Submit() int {
	failed := 0
	for !rc.pending.IsEmpty() {
		s, _ := rc.pending.Dequeue()
		if rc.backend == nil {
			continue
		}
		if err := rc.backend.Submit(s.name, s.commands); err != nil {
			core.LogError("failed to submit command buffer '%s': %s", s.name, err)
			failed++
		}
	}
	rc.submitErrors += failed
	return failed
}

// Pending returns the number of command lists waiting for Submit.
func (rc *RenderContext) Pending() int {
	return rc.pending.Len()
}

// SubmitErrors returns the failures since the last ResetErrors.
func (rc *RenderContext) SubmitErrors() int {
	return rc.submitErrors
}

func (rc *RenderContext) ResetErrors() {
	rc.submitErrors = 0
}
