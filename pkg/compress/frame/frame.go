// Package frame holds the data-model types shared across codec families:
// FrameInfo (spec.md §3), component descriptors, and a flat row-major
// sample buffer used at the boundary with DICOM-style raw pixel data.
package frame

import (
	"image"
	"image/color"

	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
)

// Info describes an image frame's immutable geometry, set once by a
// decoder's header read or by an encoder caller.
type Info struct {
	Width          int
	Height         int
	BitsPerSample  int // 2..16
	ComponentCount int // 1..255
}

// Validate checks Info against the bounds spec.md §3 implies.
func (fi Info) Validate() error {
	if fi.Width <= 0 {
		return errs.New(errs.InvalidParameterWidth, "width must be positive")
	}
	if fi.Height <= 0 {
		return errs.New(errs.InvalidParameterHeight, "height must be positive")
	}
	if fi.BitsPerSample < 2 || fi.BitsPerSample > 16 {
		return errs.New(errs.InvalidParameterBitsPerSample, "bits per sample must be in [2,16]")
	}
	if fi.ComponentCount < 1 || fi.ComponentCount > 255 {
		return errs.New(errs.InvalidParameterComponentCount, "component count must be in [1,255]")
	}
	return nil
}

// MaxValue returns 2^BitsPerSample - 1.
func (fi Info) MaxValue() int { return (1 << uint(fi.BitsPerSample)) - 1 }

// Component describes one component's identity, sampling factors, and
// table selectors (quantization for JPEG, mapping for JPEG-LS).
type Component struct {
	ID               int
	HSampling        int
	VSampling        int
	TableSelector    int // quantization table id (JPEG) / mapping table id (JPEG-LS)
	DCHuffmanSelector int
	ACHuffmanSelector int
}

// Raw is a flat, row-major, component-interleaved sample buffer: the
// shape DICOM pixel data and other non-image.Image callers use directly.
// Samples are native-endian ints regardless of BitsPerSample.
type Raw struct {
	Info    Info
	Samples []int
}

// NewRaw allocates a Raw buffer sized for Info.
func NewRaw(info Info) *Raw {
	return &Raw{
		Info:    info,
		Samples: make([]int, info.Width*info.Height*info.ComponentCount),
	}
}

// At returns the sample for component c at (x, y).
func (r *Raw) At(x, y, c int) int {
	return r.Samples[(y*r.Info.Width+x)*r.Info.ComponentCount+c]
}

// Set stores the sample for component c at (x, y).
func (r *Raw) Set(x, y, c, v int) {
	r.Samples[(y*r.Info.Width+x)*r.Info.ComponentCount+c] = v
}

// ToImage converts a Raw buffer to a stdlib image.Image: *image.Gray or
// *image.Gray16 for single-component frames, *image.RGBA for 3-component.
func (r *Raw) ToImage() image.Image {
	w, h := r.Info.Width, r.Info.Height
	switch r.Info.ComponentCount {
	case 1:
		if r.Info.BitsPerSample <= 8 {
			img := image.NewGray(image.Rect(0, 0, w, h))
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					img.SetGray(x, y, color.Gray{Y: uint8(r.At(x, y, 0))})
				}
			}
			return img
		}
		img := image.NewGray16(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(r.At(x, y, 0))})
			}
		}
		return img
	default:
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				rr := clampByte(r.At(x, y, 0))
				gg := rr
				bb := rr
				if r.Info.ComponentCount >= 3 {
					gg = clampByte(r.At(x, y, 1))
					bb = clampByte(r.At(x, y, 2))
				}
				img.SetRGBA(x, y, color.RGBA{R: rr, G: gg, B: bb, A: 0xFF})
			}
		}
		return img
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// FromImage builds a Raw buffer from a stdlib image.Image.
func FromImage(img image.Image) *Raw {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch g := img.(type) {
	case *image.Gray:
		r := NewRaw(Info{Width: w, Height: h, BitsPerSample: 8, ComponentCount: 1})
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r.Set(x, y, 0, int(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return r
	case *image.Gray16:
		r := NewRaw(Info{Width: w, Height: h, BitsPerSample: 16, ComponentCount: 1})
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r.Set(x, y, 0, int(g.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return r
	default:
		r := NewRaw(Info{Width: w, Height: h, BitsPerSample: 8, ComponentCount: 3})
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				rc, gc, bc, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				r.Set(x, y, 0, int(rc>>8))
				r.Set(x, y, 1, int(gc>>8))
				r.Set(x, y, 2, int(bc>>8))
			}
		}
		return r
	}
}
