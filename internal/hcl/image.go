package hcl

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrDimensions is returned when a pixel buffer does not hold exactly
// width × height entries.
var ErrDimensions = errors.New("hcl: pixel count does not match dimensions")

// Image is a full-depth perceptual image, row-major.
// Pix must not be modified once the image is built.
type Image struct {
	Pix    []Pixel
	Width  int
	Height int
}

// CoarseImage is a reduced-depth perceptual image, row-major.
// Pix must not be modified once the image is built.
type CoarseImage struct {
	Pix    []Coarse
	Width  int
	Height int
}

// NewImage wraps pix as a width × height image.
func NewImage(pix []Pixel, width, height int) (*Image, error) {
	if err := checkDims(len(pix), width, height); err != nil {
		return nil, err
	}
	return &Image{Pix: pix, Width: width, Height: height}, nil
}

// NewCoarseImage wraps pix as a width × height coarse image.
func NewCoarseImage(pix []Coarse, width, height int) (*CoarseImage, error) {
	if err := checkDims(len(pix), width, height); err != nil {
		return nil, err
	}
	return &CoarseImage{Pix: pix, Width: width, Height: height}, nil
}

func checkDims(n, width, height int) error {
	if width < 0 || height < 0 || n != width*height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrDimensions, n, width, height)
	}
	return nil
}

// FromImage converts a raster into perceptual space.
// *image.NRGBA and *image.RGBA are read straight from Pix; other image
// types go through color.NRGBAModel per pixel.
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pix := make([]Pixel, 0, w*h)

	switch src := img.(type) {
	case *image.NRGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			off := src.PixOffset(bounds.Min.X, y)
			for range w {
				s := src.Pix[off : off+4 : off+4]
				pix = append(pix, FromNRGBA(color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}))
				off += 4
			}
		}
	case *image.RGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			off := src.PixOffset(bounds.Min.X, y)
			for range w {
				s := src.Pix[off : off+4 : off+4]
				pix = append(pix, FromNRGBA(unpremultiply(s[0], s[1], s[2], s[3])))
				off += 4
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				pix = append(pix, FromColor(img.At(x, y)))
			}
		}
	}
	return &Image{Pix: pix, Width: w, Height: h}
}

func unpremultiply(r, g, b, a uint8) color.NRGBA {
	switch a {
	case 0:
		return color.NRGBA{}
	case 255:
		return color.NRGBA{R: r, G: g, B: b, A: a}
	}
	ua := uint32(a)
	return color.NRGBA{
		R: uint8(uint32(r) * 255 / ua),
		G: uint8(uint32(g) * 255 / ua),
		B: uint8(uint32(b) * 255 / ua),
		A: a,
	}
}

// At returns the pixel at column x, row y.
func (m *Image) At(x, y int) Pixel {
	return m.Pix[y*m.Width+x]
}

// Reduce quantizes every pixel, keeping the dimensions.
func (m *Image) Reduce() *CoarseImage {
	out := make([]Coarse, len(m.Pix))
	for i, p := range m.Pix {
		out[i] = p.Reduce()
	}
	return &CoarseImage{Pix: out, Width: m.Width, Height: m.Height}
}

// NRGBA converts the image back into an RGBA raster.
func (m *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, p := range m.Pix {
		c := p.NRGBA()
		d := dst.Pix[i*4 : i*4+4 : i*4+4]
		d[0], d[1], d[2], d[3] = c.R, c.G, c.B, c.A
	}
	return dst
}

// At returns the coarse pixel at column x, row y.
func (m *CoarseImage) At(x, y int) Coarse {
	return m.Pix[y*m.Width+x]
}

// Extend scales every pixel back to full depth.
func (m *CoarseImage) Extend() *Image {
	out := make([]Pixel, len(m.Pix))
	for i, c := range m.Pix {
		out[i] = c.Extend()
	}
	return &Image{Pix: out, Width: m.Width, Height: m.Height}
}

// Opaque counts the pixels with alpha 1.
func (m *CoarseImage) Opaque() int {
	n := 0
	for _, c := range m.Pix {
		if c.A == 1 {
			n++
		}
	}
	return n
}
