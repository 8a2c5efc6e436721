package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/emotim-cli/internal/hasher"
	"github.com/AnyUserName/emotim-cli/internal/histogram"
	"github.com/AnyUserName/emotim-cli/internal/tileset"
)

// loadResult holds the outcome of loading a single tile file.
type loadResult struct {
	tile   *tileset.Tile
	reused bool // counts came from the cache
	err    error
}

// loadTile reads, hashes and decodes one tile file and builds its
// histogram, reusing cached counts when the file is unchanged.
func loadTile(src Source, cfg Config) loadResult {
	runes, err := tileset.ParseName(src.RelPath)
	if err != nil {
		return loadResult{err: fmt.Errorf("name %s: %w", src.RelPath, err)}
	}

	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		return loadResult{err: fmt.Errorf("read %s: %w", src.RelPath, err)}
	}
	hash := hasher.ContentHash(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return loadResult{err: fmt.Errorf("decode %s: %w", src.RelPath, err)}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return loadResult{err: fmt.Errorf("decode %s: empty image", src.RelPath)}
	}

	t := &tileset.Tile{
		Key:   src.Key,
		Runes: runes,
		Image: img,
		Hash:  hash,
		Size:  int64(len(data)),
	}
	if dist, ok := cfg.Cache.Lookup(src.Key, hash); ok {
		t.Hist = histogram.FromDistribution(dist, cfg.Histogram)
		return loadResult{tile: t, reused: true}
	}
	t.Hist = histogram.FromImage(img, cfg.Histogram)
	return loadResult{tile: t}
}
