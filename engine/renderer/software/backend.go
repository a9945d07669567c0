package software

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
	"golang.org/x/image/draw"
)

// Parallelizer runs fn for every index in [0, n) and waits for all of them.
type Parallelizer interface {
	ParallelFor(n int, fn func(i int))
}

type serial struct{}

func (serial) ParallelFor(n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		fn(i)
	}
}

type Option func(*SoftwareRenderer)

// WithParallelizer spreads per-line pixel work over p.
func WithParallelizer(p Parallelizer) Option {
	return func(sr *SoftwareRenderer) {
		if p != nil {
			sr.parallel = p
		}
	}
}

// SoftwareRenderer executes command buffers on the CPU. Textures are RGBA
// images with an optional 16 bit depth plane.
type SoftwareRenderer struct {
	mu sync.Mutex

	metrics  *core.Metrics
	parallel Parallelizer
	programs map[string]programSet

	live        map[*metadata.Texture]struct{}
	openSamples map[string]time.Time
	submissions uint64
	blits       uint64
}

// New creates a software renderer. Profiling samples are recorded into
// metrics when it is not nil.
func New(metrics *core.Metrics, options ...Option) *SoftwareRenderer {
	sr := &SoftwareRenderer{
		metrics:     metrics,
		parallel:    serial{},
		programs:    builtinPrograms(),
		live:        make(map[*metadata.Texture]struct{}),
		openSamples: make(map[string]time.Time),
	}
	for _, o := range options {
		o(sr)
	}
	return sr
}

func (sr *SoftwareRenderer) ShaderPrograms() []metadata.ShaderProgram {
	programs := make([]metadata.ShaderProgram, 0, len(sr.programs))
	// fixed order so program ids are stable
	for _, name := range []string{metadata.BUILTIN_SHADER_NAME_BOX_BLUR, metadata.BUILTIN_SHADER_NAME_DEPTH} {
		programs = append(programs, sr.programs[name].info)
	}
	return programs
}

func (sr *SoftwareRenderer) CreateRenderTexture(name string, desc metadata.RenderTextureDescriptor, filter metadata.FilterMode) (*metadata.Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create texture '%s': %w", name, err)
	}
	t := &metadata.Texture{
		ID:           metadata.InvalidID,
		Name:         name,
		Descriptor:   desc,
		FilterMode:   filter,
		InternalData: NewSurface(desc),
	}
	sr.mu.Lock()
	sr.live[t] = struct{}{}
	sr.mu.Unlock()
	return t, nil
}

func (sr *SoftwareRenderer) DestroyRenderTexture(t *metadata.Texture) {
	if t == nil {
		return
	}
	sr.mu.Lock()
	delete(sr.live, t)
	sr.mu.Unlock()
	t.InternalData = nil
	t.Generation++
}

// CreateCamera allocates the colour target of a camera. When the descriptor
// has depth bits the depth plane lives in the same surface and DepthTarget
// points at it too.
func (sr *SoftwareRenderer) CreateCamera(name string, cameraType metadata.CameraType, desc metadata.RenderTextureDescriptor) (*metadata.CameraData, error) {
	color, err := sr.CreateRenderTexture(name+"_Color", desc, metadata.FilterModeBilinear)
	if err != nil {
		return nil, err
	}
	camera := &metadata.CameraData{
		Name:             name,
		CameraType:       cameraType,
		TargetDescriptor: desc,
		ColorTarget:      color,
	}
	if desc.DepthBufferBits > 0 {
		camera.DepthTarget = color
	}
	return camera, nil
}

// LiveTextures returns the number of textures created and not yet destroyed.
func (sr *SoftwareRenderer) LiveTextures() int {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return len(sr.live)
}

func (sr *SoftwareRenderer) Submissions() uint64 {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.submissions
}

func (sr *SoftwareRenderer) Blits() uint64 {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.blits
}

// Submit executes commands in order and stops at the first failing one.
func (sr *SoftwareRenderer) Submit(name string, commands []renderer.Command) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.submissions++

	for i, c := range commands {
		if err := sr.execute(c); err != nil {
			return fmt.Errorf("submission '%s' command %d (%s): %w", name, i, c.Type, err)
		}
	}
	return nil
}

func (sr *SoftwareRenderer) execute(c renderer.Command) error {
	switch c.Type {
	case renderer.CommandTypeGetTemporaryRT:
		if _, err := SurfaceOf(c.Destination.Texture); err != nil {
			return err
		}
	case renderer.CommandTypeReleaseTemporaryRT:
		// storage is owned by the temporary resource table
	case renderer.CommandTypeBlit:
		return sr.blit(c)
	case renderer.CommandTypeBeginSample:
		sr.openSamples[c.Tag] = time.Now()
	case renderer.CommandTypeEndSample:
		start, ok := sr.openSamples[c.Tag]
		if !ok {
			return fmt.Errorf("sample '%s' was never opened", c.Tag)
		}
		delete(sr.openSamples, c.Tag)
		if sr.metrics != nil {
			sr.metrics.RecordSample(c.Tag, time.Since(start))
		}
	default:
		return fmt.Errorf("unsupported command")
	}
	return nil
}

func (sr *SoftwareRenderer) blit(c renderer.Command) error {
	src, err := SurfaceOf(c.Source.Texture)
	if err != nil {
		return err
	}
	dst, err := SurfaceOf(c.Destination.Texture)
	if err != nil {
		return err
	}

	scale(dst.Color, src.Color, c.Source.Texture.FilterMode)
	sr.blits++

	if c.Material == nil || c.ShaderPass == renderer.CopyPass {
		return nil
	}
	if !c.Material.IsValid() {
		return fmt.Errorf("material '%s' is no longer valid", c.Material.Name)
	}
	set, ok := sr.programs[c.Material.Shader.Name]
	if !ok {
		return fmt.Errorf("%w: '%s'", core.ErrShaderNotFound, c.Material.Shader.Name)
	}
	if c.ShaderPass < 0 || c.ShaderPass >= len(set.passes) {
		return fmt.Errorf("shader '%s' has no pass %d", set.info.Name, c.ShaderPass)
	}
	return set.passes[c.ShaderPass](sr.parallel, src, dst, c.Material)
}

// scale resamples src into dst with the interpolator matching filter.
func scale(dst, src *image.RGBA, filter metadata.FilterMode) {
	if dst.Bounds().Size() == src.Bounds().Size() {
		draw.Copy(dst, dst.Bounds().Min, src, src.Bounds(), draw.Src, nil)
		return
	}
	interpolator(filter).Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}

func interpolator(filter metadata.FilterMode) draw.Interpolator {
	switch filter {
	case metadata.FilterModePoint:
		return draw.NearestNeighbor
	case metadata.FilterModeTrilinear:
		return draw.BiLinear
	}
	return draw.ApproxBiLinear
}
