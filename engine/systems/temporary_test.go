package systems

import (
	"testing"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallDesc = metadata.RenderTextureDescriptor{Width: 16, Height: 8}

func TestTemporaryResourceSystem_New(t *testing.T) {
	_, err := NewTemporaryResourceSystem(TemporaryResourceSystemConfig{MaxPooledDescriptors: 4}, nil)
	assert.Error(t, err)
	_, err = NewTemporaryResourceSystem(TemporaryResourceSystemConfig{}, &fakeBackend{})
	assert.Error(t, err)
}

func TestTemporaryResourceSystem_AcquireIsIdempotent(t *testing.T) {
	backend := &fakeBackend{}
	trs := newTestResources(backend)
	trs.BeginFrame(1)

	h1, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
	require.NoError(t, err)
	h2, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Equal(t, 1, backend.created)
	assert.Equal(t, 1, trs.Outstanding())

	require.NoError(t, trs.Release("pass", core.PropertyTemporaryBuffer))
	assert.Equal(t, 0, trs.Outstanding())
	assert.Nil(t, h1.Texture, "a released handle no longer points at storage")
}

func TestTemporaryResourceSystem_RejectsInvalidDescriptor(t *testing.T) {
	trs := newTestResources(&fakeBackend{})
	_, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, metadata.RenderTextureDescriptor{}, metadata.FilterModePoint)
	assert.ErrorIs(t, err, core.ErrInvalidDescriptor)
}

func TestTemporaryResourceSystem_AllocationFailure(t *testing.T) {
	trs := newTestResources(&fakeBackend{failAlloc: true})
	_, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModePoint)
	assert.Error(t, err)
	assert.Equal(t, 0, trs.Outstanding())
}

func TestTemporaryResourceSystem_UnknownRelease(t *testing.T) {
	trs := newTestResources(&fakeBackend{})
	err := trs.Release("pass", core.PropertyTemporaryBuffer)
	assert.ErrorIs(t, err, core.ErrUnknownTemporaryResource)
	assert.Equal(t, uint64(0), trs.Stats().Released)
}

func TestTemporaryResourceSystem_OwnersAreIsolated(t *testing.T) {
	trs := newTestResources(&fakeBackend{})
	a, err := trs.Acquire("a", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
	require.NoError(t, err)
	b, err := trs.Acquire("b", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.NotSame(t, a.Texture, b.Texture)

	// b cannot release what a acquired
	require.NoError(t, trs.Release("b", core.PropertyTemporaryBuffer))
	assert.ErrorIs(t, trs.Release("b", core.PropertyTemporaryBuffer), core.ErrUnknownTemporaryResource)
	_, ok := trs.Get("a", core.PropertyTemporaryBuffer)
	assert.True(t, ok)
}

func TestTemporaryResourceSystem_PoolReuse(t *testing.T) {
	backend := &fakeBackend{}
	trs := newTestResources(backend)

	for frame := uint64(1); frame <= 3; frame++ {
		trs.BeginFrame(frame)
		_, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
		require.NoError(t, err)
		require.NoError(t, trs.Release("pass", core.PropertyTemporaryBuffer))
		assert.Equal(t, 0, trs.EndFrame())
	}

	stats := trs.Stats()
	assert.Equal(t, 1, backend.created, "later frames reuse the pooled allocation")
	assert.Equal(t, uint64(2), stats.Reused)
	assert.Equal(t, 1, trs.Pooled())
}

func TestTemporaryResourceSystem_PoolIsKeyedByDescriptor(t *testing.T) {
	backend := &fakeBackend{}
	trs := newTestResources(backend)

	_, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
	require.NoError(t, err)
	require.NoError(t, trs.Release("pass", core.PropertyTemporaryBuffer))

	_, err = trs.Acquire("pass", core.PropertyTemporaryBuffer, smallDesc.WithDepthBits(16), metadata.FilterModeBilinear)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.created)
}

func TestTemporaryResourceSystem_PoolEvictionDestroys(t *testing.T) {
	backend := &fakeBackend{}
	trs, err := NewTemporaryResourceSystem(TemporaryResourceSystemConfig{MaxPooledDescriptors: 1}, backend)
	require.NoError(t, err)

	for _, w := range []uint32{4, 8} {
		desc := metadata.RenderTextureDescriptor{Width: w, Height: w}
		_, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, desc, metadata.FilterModePoint)
		require.NoError(t, err)
		require.NoError(t, trs.Release("pass", core.PropertyTemporaryBuffer))
	}
	assert.Equal(t, 1, backend.destroyed)
	assert.Equal(t, 1, trs.Pooled())

	require.NoError(t, trs.Shutdown())
	assert.Equal(t, 2, backend.destroyed)
}

func TestTemporaryResourceSystem_RebindOnDescriptorChange(t *testing.T) {
	backend := &fakeBackend{}
	trs := newTestResources(backend)

	h, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
	require.NoError(t, err)
	first := h.Texture

	bigger := smallDesc
	bigger.Width *= 2
	h2, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, bigger, metadata.FilterModeBilinear)
	require.NoError(t, err)

	assert.Same(t, h, h2)
	assert.NotSame(t, first, h2.Texture)
	assert.Equal(t, bigger, h2.Descriptor)
	assert.Equal(t, 1, trs.Pooled(), "the old allocation went back to the pool")

	require.NoError(t, trs.Release("pass", core.PropertyTemporaryBuffer))
	assert.Equal(t, 0, trs.Outstanding(), "one release balances the rebound handle")
}

func TestTemporaryResourceSystem_EndCameraForceReleases(t *testing.T) {
	trs := newTestResources(&fakeBackend{})
	trs.BeginFrame(1)

	trs.BeginCamera("main")
	h, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
	require.NoError(t, err)
	assert.Equal(t, "main", h.Camera)
	assert.Equal(t, uint64(1), h.Frame)

	trs.BeginCamera("other")
	_, err = trs.Acquire("other-pass", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
	require.NoError(t, err)

	assert.Equal(t, 1, trs.EndCamera("main"))
	assert.Equal(t, 1, trs.Outstanding(), "only the camera's handles are released")
	assert.Equal(t, 1, trs.EndFrame())
	assert.Equal(t, uint64(2), trs.Stats().Leaked)
}

func TestTemporaryResourceSystem_BeginFrameReclaimsLeftovers(t *testing.T) {
	trs := newTestResources(&fakeBackend{})
	trs.BeginFrame(1)
	_, err := trs.Acquire("pass", core.PropertyTemporaryBuffer, smallDesc, metadata.FilterModeBilinear)
	require.NoError(t, err)

	trs.BeginFrame(2)
	assert.Equal(t, 0, trs.Outstanding())
	assert.Equal(t, uint64(1), trs.Stats().Leaked)
}
