// Package histogram builds the 16×16×16 color-frequency descriptor of a
// coarse perceptual image: raw counts, a neighbourhood-smoothed density
// field and the few significant local maxima of that field.
//
// A Histogram is built once and never mutated afterwards, so any number of
// goroutines may read it concurrently.
package histogram

import (
	"bufio"
	"fmt"
	"image"
	"io"

	"github.com/AnyUserName/emotim-cli/internal/hcl"
)

// Size is the number of cells along each axis of the color cube.
const Size = hcl.Levels

// Field is a dense color cube indexed [h][c][l].
type Field [Size][Size][Size]uint32

// Sum returns the total of all cells.
func (f *Field) Sum() uint64 {
	var s uint64
	for h := range f {
		for c := range f[h] {
			for _, v := range f[h][c] {
				s += uint64(v)
			}
		}
	}
	return s
}

// IsZero reports whether every cell is 0.
func (f *Field) IsZero() bool {
	return *f == Field{}
}

// Histogram is the full descriptor of one image (tile or mosaic cell).
type Histogram struct {
	// Distribution holds the raw pixel count per coarse color.
	Distribution Field
	// Smoothed is Distribution convolved with the 26-neighbour kernel.
	Smoothed Field
	// Maxima are the significant peaks of Smoothed, ascending by mass.
	Maxima []Maximum
}

// Build counts the opaque pixels of img per coarse color. Transparent
// pixels contribute nothing.
func Build(img *hcl.CoarseImage) Field {
	var f Field
	for _, p := range img.Pix {
		if p.A == 0 {
			continue
		}
		f[p.H][p.C][p.L]++
	}
	return f
}

// New builds, smooths and extracts maxima for a coarse image.
func New(img *hcl.CoarseImage, opts Options) *Histogram {
	return FromDistribution(Build(img), opts)
}

// FromDistribution rebuilds a descriptor from previously counted cells.
func FromDistribution(dist Field, opts Options) *Histogram {
	h := &Histogram{Distribution: dist}
	h.Smoothed = Smooth(&h.Distribution)
	h.Maxima = FindMaxima(&h.Smoothed, opts)
	return h
}

// FromImage runs a raster through conversion, reduction and New.
func FromImage(img image.Image, opts Options) *Histogram {
	return New(hcl.FromImage(img).Reduce(), opts)
}

// Total returns the number of counted (opaque) pixels.
func (h *Histogram) Total() uint64 {
	return h.Distribution.Sum()
}

// Empty reports whether no opaque pixel was counted.
func (h *Histogram) Empty() bool {
	return h.Distribution.IsZero()
}

// WriteTable prints the smoothed field, one block per hue slice with
// chroma rows and lightness columns.
func (h *Histogram) WriteTable(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for ih := range Size {
		fmt.Fprintf(bw, "\nh:%d\n      l:", ih)
		for il := range Size {
			fmt.Fprintf(bw, "%6d", il)
		}
		for ic := range Size {
			fmt.Fprintf(bw, "\n c:%3d  |", ic)
			for il := range Size {
				fmt.Fprintf(bw, "%6d", h.Smoothed[ih][ic][il])
			}
			bw.WriteString(" |")
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
