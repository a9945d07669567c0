package software

import (
	"fmt"
	"image"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

// program is the CPU rendition of a shader sub-program. It runs after the
// source has been scaled into dst.
type program func(parallel Parallelizer, src, dst *Surface, material *metadata.Material) error

type programSet struct {
	info   metadata.ShaderProgram
	passes []program
}

func builtinPrograms() map[string]programSet {
	return map[string]programSet{
		metadata.BUILTIN_SHADER_NAME_BOX_BLUR: {
			info: metadata.ShaderProgram{
				Name:       metadata.BUILTIN_SHADER_NAME_BOX_BLUR,
				PassCount:  2,
				Properties: []core.Property{core.PropertyBlurStrength},
			},
			passes: []program{boxBlurVertical, boxBlurHorizontal},
		},
		metadata.BUILTIN_SHADER_NAME_DEPTH: {
			info: metadata.ShaderProgram{
				Name:       metadata.BUILTIN_SHADER_NAME_DEPTH,
				PassCount:  1,
				Properties: []core.Property{core.PropertyCameraDepth},
			},
			passes: []program{screenSpaceDepth},
		},
	}
}

func blurRadius(material *metadata.Material) int {
	r := int(material.GetInt(core.PropertyBlurStrength))
	if r < 0 {
		return 0
	}
	return r
}

func boxBlurVertical(parallel Parallelizer, _, dst *Surface, material *metadata.Material) error {
	boxBlur(parallel, dst.Color, blurRadius(material), false)
	return nil
}

func boxBlurHorizontal(parallel Parallelizer, _, dst *Surface, material *metadata.Material) error {
	boxBlur(parallel, dst.Color, blurRadius(material), true)
	return nil
}

// boxBlur averages 2r+1 texels along one axis, repeating the edge texels.
func boxBlur(parallel Parallelizer, img *image.RGBA, r int, horizontal bool) {
	if r == 0 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	lines, length := w, h
	if horizontal {
		lines, length = h, w
	}
	offset := func(line, i int) int {
		if horizontal {
			return img.PixOffset(i, line)
		}
		return img.PixOffset(line, i)
	}

	n := 2*r + 1
	parallel.ParallelFor(lines, func(l int) {
		line := make([]uint8, length*4)
		for i := 0; i < length; i++ {
			o := offset(l, i)
			copy(line[i*4:i*4+4], img.Pix[o:o+4])
		}
		for i := 0; i < length; i++ {
			var sum [4]int
			for k := i - r; k <= i+r; k++ {
				j := min(max(k, 0), length-1)
				for c := 0; c < 4; c++ {
					sum[c] += int(line[j*4+c])
				}
			}
			o := offset(l, i)
			for c := 0; c < 4; c++ {
				img.Pix[o+c] = uint8((sum[c] + n/2) / n)
			}
		}
	})
}

// screenSpaceDepth keeps the colour and writes the depth plane of dst, from
// the source depth plane when there is one, else from luminance.
func screenSpaceDepth(_ Parallelizer, src, dst *Surface, _ *metadata.Material) error {
	if !dst.HasDepth() {
		return fmt.Errorf("depth program needs a destination with a depth buffer")
	}
	w, h := dst.Width(), dst.Height()
	sw, sh := src.Width(), src.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if src.HasDepth() {
				dst.SetDepth(x, y, src.DepthAt(x*sw/w, y*sh/h))
				continue
			}
			c := dst.Color.RGBAAt(x, y)
			lum := (299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000
			dst.SetDepth(x, y, uint16(lum*257))
		}
	}
	return nil
}
