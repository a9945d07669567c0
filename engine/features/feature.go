package features

import (
	"fmt"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

// screenSpacePass holds what the blur and depth passes share: identity,
// material, scratch buffers and the lifecycle state machine.
type screenSpacePass struct {
	renderer.PassLifecycle

	tag      string
	event    metadata.RenderPassEvent
	input    metadata.RenderPassInput
	material *metadata.Material
	scratch  *renderer.ScratchSet

	// recorded in Setup, consumed in Execute
	source    metadata.RenderTargetIdentifier
	temporary metadata.RenderTargetIdentifier
}

func newScreenSpacePass(tag string, event metadata.RenderPassEvent, materials renderer.MaterialFactory, shaderName string) (*screenSpacePass, error) {
	p := &screenSpacePass{
		tag:     tag,
		event:   event,
		scratch: renderer.NewScratchSet(tag),
	}
	if materials == nil {
		p.Initialize(false)
		return p, fmt.Errorf("%w: no material factory for '%s'", core.ErrShaderNotFound, shaderName)
	}
	m, err := materials.CreateEngineMaterial(shaderName)
	if err != nil {
		p.Initialize(false)
		return p, err
	}
	p.material = m
	p.Initialize(true)
	return p, nil
}

func (p *screenSpacePass) Name() string {
	return p.tag
}

func (p *screenSpacePass) Event() metadata.RenderPassEvent {
	return p.event
}

func (p *screenSpacePass) Input() metadata.RenderPassInput {
	return p.input
}

// ConfigureInput adds camera textures the pass needs.
func (p *screenSpacePass) ConfigureInput(input metadata.RenderPassInput) {
	p.input |= input
}

func (p *screenSpacePass) IsActive() bool {
	return p.PassLifecycle.IsActive() && p.material.IsValid()
}

func (p *screenSpacePass) Material() *metadata.Material {
	return p.material
}

// setup records the camera colour buffer and acquires the scratch buffer.
func (p *screenSpacePass) setup(ctx *renderer.PassContext, data *metadata.RenderingData, desc metadata.RenderTextureDescriptor, filter metadata.FilterMode) error {
	if ctx == nil || ctx.Commands == nil {
		return core.ErrNilCommandBuffer
	}
	if data == nil || data.CameraData == nil {
		return core.ErrNilRenderingData
	}
	if err := p.BeginSetup(); err != nil {
		return err
	}

	p.source = data.CameraData.ColorIdentifier()
	if !p.source.IsValid() {
		return core.ErrNilRenderingData
	}
	h, err := p.scratch.Acquire(ctx.Resources, core.PropertyTemporaryBuffer, desc, filter)
	if err != nil {
		return err
	}
	ctx.Commands.GetTemporaryRT(h)
	p.temporary = h.Identifier()
	return nil
}

// execute records the two blits returned by record inside a profiling scope
// and hands them to the render context.
func (p *screenSpacePass) execute(ctx *renderer.PassContext, record func(cmd *renderer.CommandBuffer) error) error {
	if ctx == nil || ctx.Pool == nil || ctx.Render == nil {
		return core.ErrNilCommandBuffer
	}
	if err := p.BeginExecute(); err != nil {
		return err
	}

	cmd := ctx.Pool.Get(p.tag)
	defer ctx.Pool.Release(cmd)

	scope := renderer.BeginProfilingScope(cmd, p.tag)
	if err := record(cmd); err != nil {
		return err
	}
	scope.End()

	return ctx.Render.ExecuteCommandBuffer(cmd)
}

func (p *screenSpacePass) Cleanup(ctx *renderer.PassContext) error {
	p.FinishCleanup()
	p.source = metadata.RenderTargetIdentifier{}
	p.temporary = metadata.RenderTargetIdentifier{}

	var table renderer.ResourceTable
	var cmd *renderer.CommandBuffer
	if ctx != nil {
		table = ctx.Resources
		cmd = ctx.Commands
	}
	if table == nil && p.scratch.Len() > 0 {
		core.LogDebug("pass '%s' cleaned up without a resource table, the frame end will reclaim its buffers", p.tag)
	}
	return p.scratch.ReleaseAll(table, cmd)
}

func (p *screenSpacePass) dispose(materials renderer.MaterialFactory) {
	if materials != nil {
		materials.DestroyMaterial(p.material)
	}
	p.material = nil
	p.PassLifecycle.Dispose()
}

// featureBase carries the bookkeeping every feature needs.
type featureBase struct {
	name      string
	active    bool
	materials renderer.MaterialFactory
}

func (f *featureBase) Name() string {
	return f.name
}

func (f *featureBase) SetActive(active bool) {
	f.active = active
}

func (f *featureBase) IsActive() bool {
	return f.active
}
