// Package hcl converts RGBA pixels into the hue/chroma/lightness space used
// for histogram matching, and quantizes them into the coarse 16-level depth.
//
// Conversion notes:
//   - Hue and chroma come from the hexagonal projection
//     alpha = r - (g+b)/2, beta = √3/2·(g-b); the hexagon-to-circle step
//     is skipped.
//   - Lightness is luma-weighted (0.3r + 0.59g + 0.11b), not (max+min)/2.
//   - Every float → byte mapping rounds and saturates, nothing wraps.
//   - Full-depth (Pixel) and coarse (Coarse) values are distinct types;
//     moving between them is always an explicit, lossy call.
package hcl

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// Levels is the number of coarse steps per channel.
	Levels = 16

	levelWidth = 256 / Levels

	// AlphaCutoff is the source alpha a pixel must exceed (~80%) to count
	// as opaque in coarse depth.
	AlphaCutoff = 204

	lumaR = 0.3
	lumaG = 0.59
	lumaB = 0.11

	hueScale  = 128 / math.Pi
	sectorLen = 256.0 / 6.0
)

var sqrt3half = math.Sqrt(3) / 2

// Pixel is a full-depth perceptual pixel. All fields span 0–255.
//
// Hue 0 and hue 255 are both red; 64 is roughly yellow-green, 128 cyan.
// If chroma is 0 the hue carries no information.
type Pixel struct {
	H uint8 // hue angle code
	C uint8 // chroma
	L uint8 // lightness, 0 black, 255 white
	A uint8 // alpha, copied from the source
}

// Coarse is a reduced-depth perceptual pixel: H, C and L are below Levels,
// A is 0 (transparent) or 1 (opaque).
type Coarse struct {
	H, C, L, A uint8
}

// Model converts any color into a Pixel.
var Model = color.ModelFunc(func(c color.Color) color.Color {
	if p, ok := c.(Pixel); ok {
		return p
	}
	return FromColor(c)
})

// FromNRGBA maps a non-premultiplied RGBA color into perceptual space.
func FromNRGBA(c color.NRGBA) Pixel {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	alpha := r - 0.5*(g+b)
	beta := sqrt3half * (g - b)

	hue := math.Atan2(beta, alpha) * hueScale
	if hue < 0 {
		hue += 256
	}
	return Pixel{
		H: saturate(hue),
		C: saturate(math.Hypot(alpha, beta)),
		L: saturate(lumaR*r + lumaG*g + lumaB*b),
		A: c.A,
	}
}

// FromColor converts an arbitrary color through color.NRGBAModel.
func FromColor(c color.Color) Pixel {
	return FromNRGBA(color.NRGBAModel.Convert(c).(color.NRGBA))
}

// NRGBA maps the pixel back into RGBA space. The conversion is lossy.
//
// Hue and chroma are circular, so they are first projected back onto the
// alpha/beta axes and turned into the hexagonal hue and chroma (max-min)
// that the six-sector decomposition expects. A common offset then
// restores the luma-weighted lightness. When the result leaves [0, 255]
// all three channels are shifted together so the hue survives.
func (p Pixel) NRGBA() color.NRGBA {
	hp, c := hexagonal(float64(p.H)/hueScale, float64(p.C))
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g = c, x
	case hp < 2:
		r, g = x, c
	case hp < 3:
		g, b = c, x
	case hp < 4:
		g, b = x, c
	case hp < 5:
		r, b = x, c
	default:
		r, b = c, x
	}

	m := float64(p.L) - (lumaR*r + lumaG*g + lumaB*b)
	r, g, b = r+m, g+m, b+m

	if lo := min(r, g, b); lo < 0 {
		r, g, b = r-lo, g-lo, b-lo
	}
	if hi := max(r, g, b); hi > 255 {
		d := hi - 255
		r, g, b = r-d, g-d, b-d
	}
	return color.NRGBA{R: saturate(r), G: saturate(g), B: saturate(b), A: p.A}
}

// hexagonal converts a circular hue angle (radians) and chroma into the
// sector position in [0, 6) and the hexagonal chroma max-min.
func hexagonal(theta, chroma float64) (hp, c float64) {
	alpha := chroma * math.Cos(theta)
	beta := chroma * math.Sin(theta)

	// Any RGB triple with these projections; g+b is fixed at 0.
	r, g, b := alpha, beta/math.Sqrt(3), -beta/math.Sqrt(3)
	hi, lo := max(r, g, b), min(r, g, b)
	c = hi - lo
	switch {
	case c == 0:
		return 0, 0
	case hi == r:
		hp = math.Mod((g-b)/c, 6)
		if hp < 0 {
			hp += 6
		}
	case hi == g:
		hp = (b-r)/c + 2
	default:
		hp = (r-g)/c + 4
	}
	return hp, c
}

// RGBA implements color.Color.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	return p.NRGBA().RGBA()
}

// Hex returns the #rrggbb form of the pixel's RGBA equivalent. Alpha is
// ignored, so a transparent pixel still shows its color.
func (p Pixel) Hex() string {
	n := p.NRGBA()
	return colorful.Color{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
	}.Hex()
}

// Reduce quantizes the pixel into coarse depth.
func (p Pixel) Reduce() Coarse {
	var a uint8
	if p.A > AlphaCutoff {
		a = 1
	}
	return Coarse{
		H: p.H / levelWidth,
		C: p.C / levelWidth,
		L: p.L / levelWidth,
		A: a,
	}
}

// Extend scales a coarse pixel back to full depth. Only meant for display
// and debugging; the result is the lower edge of each bucket.
func (c Coarse) Extend() Pixel {
	return Pixel{
		H: c.H * levelWidth,
		C: c.C * levelWidth,
		L: c.L * levelWidth,
		A: c.A * 255,
	}
}

// Valid reports whether c satisfies the coarse-depth invariant.
func (c Coarse) Valid() bool {
	return c.H < Levels && c.C < Levels && c.L < Levels && c.A <= 1
}

func saturate(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
