package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/math"
)

/** @brief Sampling mode used when a texture is read at a different size. */
type FilterMode int

const (
	/** @brief Nearest texel, blocky. */
	FilterModePoint FilterMode = iota
	/** @brief Linear interpolation of the 4 closest texels. */
	FilterModeBilinear
	/** @brief Higher quality interpolation. */
	FilterModeTrilinear
)

func (f FilterMode) String() string {
	switch f {
	case FilterModePoint:
		return "point"
	case FilterModeBilinear:
		return "bilinear"
	case FilterModeTrilinear:
		return "trilinear"
	}
	return fmt.Sprintf("FilterMode(%d)", int(f))
}

// ParseFilterMode accepts the names produced by String plus "nearest" as an
// alias of point.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point", "nearest":
		return FilterModePoint, nil
	case "bilinear", "linear":
		return FilterModeBilinear, nil
	case "trilinear":
		return FilterModeTrilinear, nil
	}
	return FilterModePoint, fmt.Errorf("unknown filter mode '%s'", s)
}

func (f FilterMode) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *FilterMode) UnmarshalText(text []byte) error {
	m, err := ParseFilterMode(string(text))
	if err != nil {
		return err
	}
	*f = m
	return nil
}

/** @brief Colour format of a render texture. */
type TextureFormat int

const (
	TextureFormatRGBA8 TextureFormat = iota
	TextureFormatRGBA16F
	TextureFormatR8
)

/**
 * @brief Describes a render texture. Camera targets and temporary buffers
 * share this shape so a temporary buffer can be derived from the camera.
 */
type RenderTextureDescriptor struct {
	Width  uint32
	Height uint32
	/** @brief Bits of the depth plane. 0 means no depth plane. */
	DepthBufferBits uint32
	Format          TextureFormat
	MSAASamples     uint32
}

// Downsample divides both dimensions by d (floored). Factors below 1 are
// treated as 1 and a dimension never drops below one texel.
func (d RenderTextureDescriptor) Downsample(factor int) RenderTextureDescriptor {
	if factor < 1 {
		factor = 1
	}
	d.Width = math.DivFloor(d.Width, uint32(factor), 1)
	d.Height = math.DivFloor(d.Height, uint32(factor), 1)
	return d
}

// WithDepthBits overrides the depth precision regardless of the source.
func (d RenderTextureDescriptor) WithDepthBits(bits uint32) RenderTextureDescriptor {
	d.DepthBufferBits = bits
	return d
}

func (d RenderTextureDescriptor) Validate() error {
	if d.Width == 0 || d.Height == 0 {
		return fmt.Errorf("descriptor %dx%d has a zero dimension", d.Width, d.Height)
	}
	switch d.DepthBufferBits {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported depth buffer bits %d", d.DepthBufferBits)
	}
	return nil
}

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uint32
	/** @brief The texture Name. */
	Name       string
	Descriptor RenderTextureDescriptor
	FilterMode FilterMode
	/** @brief The texture Generation. Incremented every time the texture is reused. */
	Generation uint32
	/** @brief Backend specific data (pixels). */
	InternalData interface{}
}

/** @brief Kind of render target an identifier points to. */
type RenderTargetKind int

const (
	RenderTargetKindNone RenderTargetKind = iota
	/** @brief A target owned by the camera (colour or depth). */
	RenderTargetKindCamera
	/** @brief A frame-scoped temporary buffer. */
	RenderTargetKindTemporary
)

/**
 * @brief Identifies a render target within a command buffer.
 */
type RenderTargetIdentifier struct {
	Kind     RenderTargetKind
	Property core.Property
	Texture  *Texture
}

// IsValid reports whether the identifier points at an actual texture.
func (r RenderTargetIdentifier) IsValid() bool {
	return r.Kind != RenderTargetKindNone && r.Texture != nil
}

func (r RenderTargetIdentifier) String() string {
	if r.Texture == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s(%s)", r.Property.Name(), r.Texture.Name)
}

/**
 * @brief A frame-scoped scratch buffer handed out by the temporary resource table.
 */
type TemporaryResourceHandle struct {
	/** @brief Name of the pass that acquired the handle. */
	Owner    string
	Property core.Property
	/** @brief The camera the handle was created for. */
	Camera     string
	Frame      uint64
	Descriptor RenderTextureDescriptor
	FilterMode FilterMode
	Texture    *Texture
}

// Identifier returns the render target identifier to use in blits.
func (h *TemporaryResourceHandle) Identifier() RenderTargetIdentifier {
	if h == nil {
		return RenderTargetIdentifier{}
	}
	return RenderTargetIdentifier{
		Kind:     RenderTargetKindTemporary,
		Property: h.Property,
		Texture:  h.Texture,
	}
}
