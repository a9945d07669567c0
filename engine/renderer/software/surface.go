package software

import (
	"fmt"
	"image"
	"image/color"

	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

/**
 * @brief Pixel storage of a texture created by the software backend.
 */
type Surface struct {
	Color *image.RGBA
	/** @brief Depth plane, nil when the descriptor has no depth bits. */
	Depth []uint16
}

func NewSurface(desc metadata.RenderTextureDescriptor) *Surface {
	s := &Surface{
		Color: image.NewRGBA(image.Rect(0, 0, int(desc.Width), int(desc.Height))),
	}
	if desc.DepthBufferBits > 0 {
		s.Depth = make([]uint16, int(desc.Width)*int(desc.Height))
	}
	return s
}

func (s *Surface) Width() int {
	return s.Color.Bounds().Dx()
}

func (s *Surface) Height() int {
	return s.Color.Bounds().Dy()
}

func (s *Surface) HasDepth() bool {
	return s.Depth != nil
}

func (s *Surface) DepthAt(x, y int) uint16 {
	if s.Depth == nil {
		return 0
	}
	return s.Depth[y*s.Width()+x]
}

func (s *Surface) SetDepth(x, y int, d uint16) {
	if s.Depth == nil {
		return
	}
	s.Depth[y*s.Width()+x] = d
}

// Fill paints the whole colour plane with c.
func (s *Surface) Fill(c color.RGBA) {
	b := s.Color.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s.Color.SetRGBA(x, y, c)
		}
	}
}

// SurfaceOf returns the surface backing a texture created by this backend.
func SurfaceOf(t *metadata.Texture) (*Surface, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}
	s, ok := t.InternalData.(*Surface)
	if !ok || s == nil {
		return nil, fmt.Errorf("texture '%s' has no software surface", t.Name)
	}
	return s, nil
}
