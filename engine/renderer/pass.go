package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

// ResourceTable hands out frame-scoped temporary buffers. Handles are keyed by
// the acquiring pass so a pass can only release what it acquired itself.
type ResourceTable interface {
	Acquire(owner string, key core.Property, desc metadata.RenderTextureDescriptor, filter metadata.FilterMode) (*metadata.TemporaryResourceHandle, error)
	Release(owner string, key core.Property) error
}

// MaterialFactory creates materials from compiled shader programs looked up
// by name.
type MaterialFactory interface {
	CreateEngineMaterial(shaderName string) (*metadata.Material, error)
	DestroyMaterial(material *metadata.Material)
}

// PassContext is what the scheduler hands to a pass for one camera.
type PassContext struct {
	// Resources is the frame's temporary resource table.
	Resources ResourceTable
	// Commands receives setup and cleanup commands. May be nil during cleanup.
	Commands *CommandBuffer
	// Pool provides command buffers for Execute.
	Pool *CommandBufferPool
	// Render collects the command buffers recorded during Execute.
	Render *RenderContext
}

// RenderPass is one compositing step. The host drives the three lifecycle
// calls in order, once per admitted camera per frame.
type RenderPass interface {
	Name() string
	Event() metadata.RenderPassEvent
	// Input returns the camera textures the pass needs.
	Input() metadata.RenderPassInput
	// IsActive reports whether the pass has a usable shader program. It is the
	// only admission check a pass contributes.
	IsActive() bool
	State() metadata.PassState

	Setup(ctx *PassContext, data *metadata.RenderingData) error
	Execute(ctx *PassContext, data *metadata.RenderingData) error
	// Cleanup releases what Setup acquired. It must succeed even if Setup
	// failed half way or Commands is nil.
	Cleanup(ctx *PassContext) error
	Dispose()
}

// PassQueue accepts passes for the camera currently being rendered.
type PassQueue interface {
	// EnqueuePass returns false when the pass was not admitted.
	EnqueuePass(pass RenderPass, data *metadata.RenderingData) bool
}

// RendererFeature builds and owns passes and decides when to enqueue them.
type RendererFeature interface {
	Name() string
	// Create (re)builds the feature's passes from its current settings.
	Create(materials MaterialFactory) error
	AddRenderPasses(queue PassQueue, data *metadata.RenderingData)
	SetActive(active bool)
	IsActive() bool
	Dispose()
}

// PassLifecycle tracks the state machine shared by every pass:
// Uninitialized -> Ready -> (Setup -> Executing -> CleanedUp)* -> Disposed,
// with Inactive as a terminal state for passes without a program.
type PassLifecycle struct {
	state metadata.PassState
}

func (l *PassLifecycle) State() metadata.PassState {
	return l.state
}

// Initialize moves an uninitialized pass to Ready, or to Inactive when its
// program could not be created.
func (l *PassLifecycle) Initialize(ready bool) {
	if l.state != metadata.PassStateUninitialized {
		return
	}
	if ready {
		l.state = metadata.PassStateReady
		return
	}
	l.state = metadata.PassStateInactive
}

func (l *PassLifecycle) IsActive() bool {
	switch l.state {
	case metadata.PassStateUninitialized, metadata.PassStateInactive, metadata.PassStateDisposed:
		return false
	}
	return true
}

func (l *PassLifecycle) BeginSetup() error {
	switch l.state {
	case metadata.PassStateReady, metadata.PassStateCleanedUp:
		l.state = metadata.PassStateSetup
		return nil
	case metadata.PassStateInactive:
		return core.ErrPassInactive
	}
	return fmt.Errorf("%w: setup from %s", core.ErrInvalidPassState, l.state)
}

func (l *PassLifecycle) BeginExecute() error {
	switch l.state {
	case metadata.PassStateSetup:
		l.state = metadata.PassStateExecuting
		return nil
	case metadata.PassStateInactive:
		return core.ErrPassInactive
	}
	return fmt.Errorf("%w: execute from %s", core.ErrInvalidPassState, l.state)
}

// FinishCleanup reports whether there was anything to clean up. Cleanup is
// accepted in any non-terminal state so a partially set up pass can always
// release its resources.
func (l *PassLifecycle) FinishCleanup() bool {
	switch l.state {
	case metadata.PassStateSetup, metadata.PassStateExecuting:
		l.state = metadata.PassStateCleanedUp
		return true
	}
	return false
}

func (l *PassLifecycle) Dispose() {
	l.state = metadata.PassStateDisposed
}

// ScratchSet remembers the temporary buffers one pass acquired during setup.
type ScratchSet struct {
	owner   string
	handles []*metadata.TemporaryResourceHandle
}

func NewScratchSet(owner string) *ScratchSet {
	return &ScratchSet{owner: owner}
}

// Acquire gets a temporary buffer from the table and records it for release.
func (s *ScratchSet) Acquire(table ResourceTable, key core.Property, desc metadata.RenderTextureDescriptor, filter metadata.FilterMode) (*metadata.TemporaryResourceHandle, error) {
	if table == nil {
		return nil, fmt.Errorf("pass '%s' has no resource table", s.owner)
	}
	h, err := table.Acquire(s.owner, key, desc, filter)
	if err != nil {
		return nil, err
	}
	for _, existing := range s.handles {
		if existing == h {
			return h, nil
		}
	}
	s.handles = append(s.handles, h)
	return h, nil
}

// ReleaseAll releases every recorded buffer, recording the release on cmd
// when there is one.
func (s *ScratchSet) ReleaseAll(table ResourceTable, cmd *CommandBuffer) error {
	var errs []error
	for _, h := range s.handles {
		if table != nil {
			if err := table.Release(s.owner, h.Property); err != nil {
				errs = append(errs, err)
			}
		}
		if cmd != nil {
			cmd.ReleaseTemporaryRT(h.Property)
		}
	}
	s.handles = s.handles[:0]
	return errors.Join(errs...)
}

func (s *ScratchSet) Len() int {
	return len(s.handles)
}
