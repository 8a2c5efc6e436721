package encoder

import (
	"bytes"
	"image"

	"github.com/gen2brain/avif"
)

// avifSpeed trades encode time for size (0 slowest, 10 fastest).
const avifSpeed = 8

// AVIFEncoder writes AVIF through the bundled WebAssembly libavif, so no
// external tool is needed.
type AVIFEncoder struct{}

func (e *AVIFEncoder) Format() string       { return "avif" }
func (e *AVIFEncoder) Extensions() []string { return []string{"avif"} }

func (e *AVIFEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	q := clampQuality(quality)
	var buf bytes.Buffer
	err := avif.Encode(&buf, img, avif.Options{
		Quality:      q,
		QualityAlpha: q,
		Speed:        avifSpeed,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
