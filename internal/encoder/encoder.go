// Package encoder writes composed mosaics in the supported output formats.
package encoder

import (
	"image"
)

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the output format name ("png", "jpeg", "avif").
	Format() string

	// Encode converts the image to bytes at the given quality (1-100).
	// Lossless formats ignore quality.
	Encode(img image.Image, quality int) ([]byte, error)

	// Extensions returns the recognized file extensions without dot,
	// preferred first.
	Extensions() []string
}

// DefaultQuality is used when quality is outside 1-100.
const DefaultQuality = 90

func clampQuality(q int) int {
	if q <= 0 || q > 100 {
		return DefaultQuality
	}
	return q
}
