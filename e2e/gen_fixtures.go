//go:build ignore

// gen_fixtures creates a small tile library and a source image for the E2E
// smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

// Colored discs named by code point like real emoji sets.
var tiles = map[string]color.NRGBA{
	"2764":        {R: 221, G: 46, B: 68, A: 255},   // red heart
	"1f9e1":       {R: 244, G: 144, B: 12, A: 255},  // orange heart
	"1f49b":       {R: 253, G: 203, B: 88, A: 255},  // yellow heart
	"1f49a":       {R: 120, G: 177, B: 89, A: 255},  // green heart
	"1f499":       {R: 93, G: 173, B: 236, A: 255},  // blue heart
	"1f49c":       {R: 170, G: 142, B: 214, A: 255}, // purple heart
	"1f5a4":       {R: 49, G: 55, B: 61, A: 255},    // black heart
	"1f90d":       {R: 230, G: 231, B: 232, A: 255}, // white heart
	"1f90e":       {R: 193, G: 105, B: 79, A: 255},  // brown heart
	"0023-20e3":   {R: 204, G: 214, B: 221, A: 255}, // keycap
	"1f1e9-1f1ea": {R: 255, G: 204, B: 0, A: 255},   // flag
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	tileDir := filepath.Join(dir, "tiles")
	os.MkdirAll(filepath.Join(tileDir, "flags"), 0o755)

	for name, c := range tiles {
		path := filepath.Join(tileDir, name+".png")
		if len(name) > 10 {
			path = filepath.Join(tileDir, "flags", name+".png")
		}
		writePNG(path, disc(36, c))
	}

	// Source (JPEG, 400x240)
	writeJPEG(filepath.Join(dir, "source.jpg"), gradient(400, 240))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d tiles and source.jpg in %s\n", len(tiles), dir)
}

// disc draws a filled circle on a transparent square, like an emoji glyph.
func disc(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size)/2 - 1
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-r, float64(y)-r
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func writePNG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		panic(err)
	}
}
