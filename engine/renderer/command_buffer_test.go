package renderer

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func target(name string) metadata.RenderTargetIdentifier {
	return metadata.RenderTargetIdentifier{
		Kind:     metadata.RenderTargetKindCamera,
		Property: core.PropertyCameraColor,
		Texture:  &metadata.Texture{Name: name},
	}
}

func blurMaterial() *metadata.Material {
	return metadata.NewMaterial(0, &metadata.ShaderProgram{
		Name:      metadata.BUILTIN_SHADER_NAME_BOX_BLUR,
		PassCount: 2,
	})
}

func TestCommandBuffer_Blit(t *testing.T) {
	cb := NewCommandBuffer("test")
	m := blurMaterial()

	require.NoError(t, cb.Blit(target("a"), target("b"), m, 1))
	require.NoError(t, cb.Blit(target("b"), target("a"), nil, 0))

	cmds := cb.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, CommandTypeBlit, cmds[0].Type)
	assert.Equal(t, 1, cmds[0].ShaderPass)
	assert.Same(t, m, cmds[0].Material)
	assert.Equal(t, CopyPass, cmds[1].ShaderPass, "a blit without material is a copy")
}

func TestCommandBuffer_BlitRejectsInvalid(t *testing.T) {
	cb := NewCommandBuffer("test")
	m := blurMaterial()

	assert.Error(t, cb.Blit(metadata.RenderTargetIdentifier{}, target("b"), m, 0))
	assert.Error(t, cb.Blit(target("a"), metadata.RenderTargetIdentifier{}, m, 0))
	assert.Error(t, cb.Blit(target("a"), target("b"), m, 2), "sub-program out of range")

	m.ID = metadata.InvalidID
	assert.Error(t, cb.Blit(target("a"), target("b"), m, 0))
	assert.Equal(t, 0, cb.Len())
}

func TestCommandBuffer_CommandsIsACopy(t *testing.T) {
	cb := NewCommandBuffer("test")
	cb.BeginSample("tag")
	cmds := cb.Commands()
	cb.Clear()

	require.Len(t, cmds, 1)
	assert.Equal(t, CommandTypeBeginSample, cmds[0].Type)
	assert.Equal(t, 0, cb.Len())
}

func TestProfilingScope(t *testing.T) {
	cb := NewCommandBuffer("test")
	scope := BeginProfilingScope(cb, "SSBlur-Pass")
	scope.End()

	cmds := cb.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, CommandTypeBeginSample, cmds[0].Type)
	assert.Equal(t, CommandTypeEndSample, cmds[1].Type)
	assert.Equal(t, "SSBlur-Pass", cmds[1].Tag)
}

func TestCommandBufferPool(t *testing.T) {
	pool := NewCommandBufferPool()
	cb := pool.Get("first")
	cb.BeginSample("x")
	pool.Release(cb)

	again := pool.Get("second")
	assert.Equal(t, "second", again.Name)
	assert.Equal(t, 0, again.Len())
}

type recordingBackend struct {
	names []string
	fail  bool
}

func (b *recordingBackend) Submit(name string, commands []Command) error {
	b.names = append(b.names, name)
	if b.fail {
		return errors.New("device lost")
	}
	return nil
}

func TestRenderContext_Submit(t *testing.T) {
	backend := &recordingBackend{}
	rc := NewRenderContext(backend)

	assert.ErrorIs(t, rc.ExecuteCommandBuffer(nil), core.ErrNilCommandBuffer)
	require.NoError(t, rc.ExecuteCommandBuffer(NewCommandBuffer("empty")))
	assert.Equal(t, 0, rc.Pending(), "empty buffers are not scheduled")

	a := NewCommandBuffer("a")
	a.BeginSample("a")
	b := NewCommandBuffer("b")
	b.BeginSample("b")
	require.NoError(t, rc.ExecuteCommandBuffer(a))
	require.NoError(t, rc.ExecuteCommandBuffer(b))
	assert.Equal(t, 2, rc.Pending())

	assert.Equal(t, 0, rc.Submit())
	assert.Equal(t, []string{"a", "b"}, backend.names)
	assert.Equal(t, 0, rc.Pending())
}

func TestRenderContext_SubmitErrorsAreCounted(t *testing.T) {
	backend := &recordingBackend{fail: true}
	rc := NewRenderContext(backend)
	cb := NewCommandBuffer("a")
	cb.BeginSample("a")

	require.NoError(t, rc.ExecuteCommandBuffer(cb))
	assert.Equal(t, 1, rc.Submit())
	assert.Equal(t, 1, rc.SubmitErrors())
	rc.ResetErrors()
	assert.Equal(t, 0, rc.SubmitErrors())
}

func TestRenderContext_FullQueueSubmitsEarly(t *testing.T) {
	backend := &recordingBackend{}
	rc := NewRenderContext(backend)
	cb := NewCommandBuffer("a")
	cb.BeginSample("a")

	for i := 0; i < MaxPendingSubmissions+1; i++ {
		require.NoError(t, rc.ExecuteCommandBuffer(cb))
	}
	assert.Len(t, backend.names, MaxPendingSubmissions)
	assert.Equal(t, 1, rc.Pending())
}
