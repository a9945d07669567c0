package systems

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

// PassScheduler admits passes for a camera and drives their lifecycle. It does
// not decide the stage order itself: passes run by ascending injection event,
// passes sharing an event run in enqueue order, which nobody should rely on.
type PassScheduler struct {
	resources *TemporaryResourceSystem
	pool      *renderer.CommandBufferPool
	context   *renderer.RenderContext

	queue   []renderer.RenderPass
	skipped []renderer.RenderPass
}

func NewPassScheduler(resources *TemporaryResourceSystem, pool *renderer.CommandBufferPool, context *renderer.RenderContext) (*PassScheduler, error) {
	if resources == nil || pool == nil || context == nil {
		err := fmt.Errorf("func NewPassScheduler - resources, pool and context are required")
		return nil, err
	}
	return &PassScheduler{
		resources: resources,
		pool:      pool,
		context:   context,
		queue:     []renderer.RenderPass{},
	}, nil
}

// Admit is the admission rule: preview and scene view cameras never run
// passes, and neither do inactive passes.
func (ps *PassScheduler) Admit(pass renderer.RenderPass, data *metadata.RenderingData) bool {
	if pass == nil || data == nil || data.CameraData == nil {
		return false
	}
	if data.CameraData.IsPreview() {
		return false
	}
	return pass.IsActive()
}

// EnqueuePass queues pass for the camera in data if it is admitted.
func (ps *PassScheduler) EnqueuePass(pass renderer.RenderPass, data *metadata.RenderingData) bool {
	if !ps.Admit(pass, data) {
		if pass != nil {
			ps.skipped = append(ps.skipped, pass)
		}
		return false
	}
	ps.queue = append(ps.queue, pass)
	return true
}

// Queued returns the number of passes waiting for Run.
func (ps *PassScheduler) Queued() int {
	return len(ps.queue)
}

// Run executes the queued passes for the camera in data and empties the
// queue. Each pass completes setup, execute and cleanup before the next one
// starts.
func (ps *PassScheduler) Run(data *metadata.RenderingData) metadata.CameraReport {
	report := metadata.CameraReport{Passes: []metadata.PassReport{}}
	defer func() {
		ps.queue = ps.queue[:0]
		ps.skipped = ps.skipped[:0]
	}()

	if data == nil || data.CameraData == nil {
		core.LogError("pass scheduler run: %s", core.ErrNilRenderingData)
		return report
	}
	report.Camera = data.CameraData.Name

	for _, p := range ps.skipped {
		report.Passes = append(report.Passes, metadata.PassReport{
			Name:    p.Name(),
			Event:   p.Event(),
			Outcome: metadata.PassOutcomeSkipped,
		})
	}

	sort.SliceStable(ps.queue, func(i, j int) bool {
		return ps.queue[i].Event() < ps.queue[j].Event()
	})

	for _, p := range ps.queue {
		report.Inputs |= p.Input()
		report.Passes = append(report.Passes, ps.runPass(p, data))
	}
	return report
}

func (ps *PassScheduler) runPass(pass renderer.RenderPass, data *metadata.RenderingData) metadata.PassReport {
	report := metadata.PassReport{
		Name:  pass.Name(),
		Event: pass.Event(),
	}
	start := time.Now()

	cmd := ps.pool.Get(pass.Name())
	defer ps.pool.Release(cmd)

	ctx := &renderer.PassContext{
		Resources: ps.resources,
		Commands:  cmd,
		Pool:      ps.pool,
		Render:    ps.context,
	}
	if err := ps.lifecycle(pass, ctx, data); err != nil {
		core.LogWarn("pass '%s' failed for camera '%s': %s", pass.Name(), data.CameraData.Name, err)
		report.Outcome = metadata.PassOutcomeFailed
		report.Err = err
	}
	report.Duration = time.Since(start)
	return report
}

// lifecycle runs setup, execute and cleanup. Cleanup runs whenever setup was
// entered, whatever happened after.
func (ps *PassScheduler) lifecycle(pass renderer.RenderPass, ctx *renderer.PassContext, data *metadata.RenderingData) (err error) {
	setupEntered := false
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(err, fmt.Errorf("pass '%s' panicked: %v", pass.Name(), r))
		}
		if !setupEntered {
			return
		}
		// anything already scheduled must reach the backend while its
		// temporary buffers are still held
		ps.context.Submit()
		if cerr := protect(func() error { return pass.Cleanup(ctx) }); cerr != nil {
			err = errors.Join(err, fmt.Errorf("cleanup: %w", cerr))
		}
		ps.flush(ctx.Commands)
	}()

	setupEntered = true
	if err := pass.Setup(ctx, data); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	ps.flush(ctx.Commands)

	if err := pass.Execute(ctx, data); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

// flush schedules whatever cmd holds and submits it.
func (ps *PassScheduler) flush(cmd *renderer.CommandBuffer) {
	if err := ps.context.ExecuteCommandBuffer(cmd); err != nil {
		core.LogError(err.Error())
	}
	cmd.Clear()
	ps.context.Submit()
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
