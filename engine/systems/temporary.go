package systems

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

// TextureAllocator creates and destroys the backing storage of temporary
// buffers. Implemented by the backend.
type TextureAllocator interface {
	CreateRenderTexture(name string, desc metadata.RenderTextureDescriptor, filter metadata.FilterMode) (*metadata.Texture, error)
	DestroyRenderTexture(texture *metadata.Texture)
}

/** @brief The configuration for the temporary resource system. */
type TemporaryResourceSystemConfig struct {
	/** @brief The number of distinct descriptors whose free textures are kept around. */
	MaxPooledDescriptors int
}

type TemporaryResourceStats struct {
	Acquired  uint64
	Released  uint64
	Allocated uint64
	Reused    uint64
	Destroyed uint64
	Leaked    uint64
}

type temporaryKey struct {
	owner    string
	property core.Property
}

type poolKey struct {
	desc   metadata.RenderTextureDescriptor
	filter metadata.FilterMode
}

// TemporaryResourceSystem is the table of frame-scoped scratch buffers. Every
// acquire must be matched by a release within the same camera; leftovers are
// force-released when the camera or the frame ends. It is not safe for
// concurrent use.
type TemporaryResourceSystem struct {
	config    TemporaryResourceSystemConfig
	allocator TextureAllocator

	active map[temporaryKey]*metadata.TemporaryResourceHandle
	// free textures grouped by descriptor, least recently used groups are destroyed
	pool *lru.Cache[poolKey, []*metadata.Texture]

	frame  uint64
	camera string
	nextID uint32
	stats  TemporaryResourceStats
}

func NewTemporaryResourceSystem(config TemporaryResourceSystemConfig, allocator TextureAllocator) (*TemporaryResourceSystem, error) {
	if allocator == nil {
		err := fmt.Errorf("func NewTemporaryResourceSystem - allocator is required")
		return nil, err
	}
	if config.MaxPooledDescriptors <= 0 {
		err := fmt.Errorf("func NewTemporaryResourceSystem - config.MaxPooledDescriptors must be > 0")
		return nil, err
	}
	trs := &TemporaryResourceSystem{
		config:    config,
		allocator: allocator,
		active:    make(map[temporaryKey]*metadata.TemporaryResourceHandle),
	}
	pool, err := lru.NewWithEvict[poolKey, []*metadata.Texture](config.MaxPooledDescriptors, trs.onEvict)
	if err != nil {
		return nil, err
	}
	trs.pool = pool
	return trs, nil
}

func (trs *TemporaryResourceSystem) onEvict(_ poolKey, textures []*metadata.Texture) {
	for _, t := range textures {
		trs.allocator.DestroyRenderTexture(t)
		trs.stats.Destroyed++
	}
}

// BeginFrame starts a new frame. Anything left over from the previous frame is
// force-released first.
func (trs *TemporaryResourceSystem) BeginFrame(frame uint64) {
	if n := trs.forceRelease(func(*metadata.TemporaryResourceHandle) bool { return true }); n > 0 {
		core.LogWarn("%d temporary buffers survived frame %d", n, trs.frame)
	}
	trs.frame = frame
	trs.camera = ""
}

// BeginCamera tags the handles acquired from now on with the camera name.
func (trs *TemporaryResourceSystem) BeginCamera(camera string) {
	trs.camera = camera
}

// EndCamera force-releases every handle still held for camera and returns how
// many there were.
func (trs *TemporaryResourceSystem) EndCamera(camera string) int {
	n := trs.forceRelease(func(h *metadata.TemporaryResourceHandle) bool { return h.Camera == camera })
	if n > 0 {
		core.LogWarn("%d temporary buffers were not released by the passes of camera '%s'", n, camera)
	}
	if trs.camera == camera {
		trs.camera = ""
	}
	return n
}

// EndFrame force-releases everything still held and returns how many handles
// leaked.
func (trs *TemporaryResourceSystem) EndFrame() int {
	n := trs.forceRelease(func(*metadata.TemporaryResourceHandle) bool { return true })
	if n > 0 {
		core.LogWarn("%d temporary buffers were not released in frame %d", n, trs.frame)
	}
	return n
}

/**
 * @brief Acquires a temporary buffer for owner under key.
 *
 * Acquiring the same key twice with an unchanged descriptor returns the same
 * handle. A changed descriptor rebinds the handle to a new allocation; one
 * Release still balances it.
 */
func (trs *TemporaryResourceSystem) Acquire(owner string, key core.Property, desc metadata.RenderTextureDescriptor, filter metadata.FilterMode) (*metadata.TemporaryResourceHandle, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidDescriptor, err)
	}

	k := temporaryKey{owner: owner, property: key}
	if h, ok := trs.active[k]; ok {
		if h.Descriptor == desc && h.FilterMode == filter {
			return h, nil
		}
		core.LogWarn("temporary buffer '%s' of '%s' re-acquired with a different descriptor, rebinding", key, owner)
		tex, err := trs.takeTexture(key, desc, filter)
		if err != nil {
			return nil, err
		}
		trs.recycle(h.Texture)
		h.Texture = tex
		h.Descriptor = desc
		h.FilterMode = filter
		return h, nil
	}

	tex, err := trs.takeTexture(key, desc, filter)
	if err != nil {
		return nil, err
	}
	h := &metadata.TemporaryResourceHandle{
		Owner:      owner,
		Property:   key,
		Camera:     trs.camera,
		Frame:      trs.frame,
		Descriptor: desc,
		FilterMode: filter,
		Texture:    tex,
	}
	trs.active[k] = h
	trs.stats.Acquired++
	return h, nil
}

// Release returns the buffer owner acquired under key to the pool. Releasing a
// key that was never acquired is a bug in the caller: it is logged and
// reported, nothing else happens.
func (trs *TemporaryResourceSystem) Release(owner string, key core.Property) error {
	k := temporaryKey{owner: owner, property: key}
	h, ok := trs.active[k]
	if !ok {
		err := fmt.Errorf("%w: '%s' of '%s' in frame %d", core.ErrUnknownTemporaryResource, key, owner, trs.frame)
		core.LogError(err.Error())
		return err
	}
	trs.releaseHandle(k, h)
	trs.stats.Released++
	return nil
}

// Get returns the active handle owner holds under key, if any.
func (trs *TemporaryResourceSystem) Get(owner string, key core.Property) (*metadata.TemporaryResourceHandle, bool) {
	h, ok := trs.active[temporaryKey{owner: owner, property: key}]
	return h, ok
}

// Outstanding returns the number of handles not yet released.
func (trs *TemporaryResourceSystem) Outstanding() int {
	return len(trs.active)
}

// Pooled returns the number of free textures kept for reuse.
func (trs *TemporaryResourceSystem) Pooled() int {
	n := 0
	for _, k := range trs.pool.Keys() {
		if free, ok := trs.pool.Peek(k); ok {
			n += len(free)
		}
	}
	return n
}

func (trs *TemporaryResourceSystem) Stats() TemporaryResourceStats {
	return trs.stats
}

// Shutdown releases every handle and destroys all pooled textures.
func (trs *TemporaryResourceSystem) Shutdown() error {
	trs.forceRelease(func(*metadata.TemporaryResourceHandle) bool { return true })
	trs.pool.Purge()
	return nil
}

func (trs *TemporaryResourceSystem) takeTexture(key core.Property, desc metadata.RenderTextureDescriptor, filter metadata.FilterMode) (*metadata.Texture, error) {
	pk := poolKey{desc: desc, filter: filter}
	if free, ok := trs.pool.Peek(pk); ok && len(free) > 0 {
		tex := free[len(free)-1]
		trs.pool.Add(pk, free[:len(free)-1])
		tex.Generation++
		trs.stats.Reused++
		return tex, nil
	}

	name := fmt.Sprintf("%s_%s", key.Name(), uuid.New().String())
	tex, err := trs.allocator.CreateRenderTexture(name, desc, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate temporary buffer '%s': %w", key, err)
	}
	tex.ID = trs.nextID
	tex.Descriptor = desc
	tex.FilterMode = filter
	trs.nextID++
	trs.stats.Allocated++
	return tex, nil
}

func (trs *TemporaryResourceSystem) recycle(tex *metadata.Texture) {
	if tex == nil {
		return
	}
	pk := poolKey{desc: tex.Descriptor, filter: tex.FilterMode}
	free, _ := trs.pool.Peek(pk)
	trs.pool.Add(pk, append(free, tex))
}

func (trs *TemporaryResourceSystem) releaseHandle(k temporaryKey, h *metadata.TemporaryResourceHandle) {
	delete(trs.active, k)
	trs.recycle(h.Texture)
	// a released handle must not be usable as a blit target any more
	h.Texture = nil
}

func (trs *TemporaryResourceSystem) forceRelease(match func(*metadata.TemporaryResourceHandle) bool) int {
	n := 0
	for k, h := range trs.active {
		if !match(h) {
			continue
		}
		core.LogDebug("force releasing temporary buffer '%s' of '%s' (camera '%s')", h.Property, h.Owner, h.Camera)
		trs.releaseHandle(k, h)
		n++
	}
	trs.stats.Leaked += uint64(n)
	return n
}
