// Package index persists tile descriptors between runs so unchanged tile
// files are not decoded and counted again.
package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/AnyUserName/emotim-cli/internal/hcl"
	"github.com/AnyUserName/emotim-cli/internal/histogram"
	"github.com/AnyUserName/emotim-cli/internal/tileset"
)

// CompressedExt selects zstd compression in Write and Read.
const CompressedExt = ".zst"

// New creates an empty index for the given extraction options.
func New(opts histogram.Options) *Index {
	return &Index{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		BuildID:     uuid.NewString(),
		Settings: Settings{
			Depth:     histogram.Size,
			MaxMaxima: opts.MaxMaxima,
			MinMass:   opts.MinMass,
		},
		Tiles: make(map[string]Entry),
	}
}

// Put stores the descriptor of t under its key, replacing any previous entry.
func (ix *Index) Put(t *tileset.Tile) {
	b := t.Image.Bounds()
	e := Entry{
		Codepoints: t.Codepoints(),
		Width:      b.Dx(),
		Height:     b.Dy(),
		Size:       t.Size,
		Hash:       t.Hash,
		Counts:     sparse(&t.Hist.Distribution),
	}
	for _, m := range t.Hist.Maxima {
		e.Maxima = append(e.Maxima, Peak{
			H: m.Color.H, C: m.Color.C, L: m.Color.L,
			Mass:  m.Mass,
			Color: m.Color.Extend().Hex(),
		})
	}
	ix.Tiles[t.Key] = e
}

// Lookup returns the cached distribution for key when the stored hash
// equals hash. It is safe for concurrent use as long as no Put runs.
func (ix *Index) Lookup(key, hash string) (histogram.Field, bool) {
	var f histogram.Field
	if ix == nil {
		return f, false
	}
	e, ok := ix.Tiles[key]
	if !ok || e.Hash == "" || e.Hash != hash {
		return f, false
	}
	for _, c := range e.Counts {
		if int(c.H) >= histogram.Size || int(c.C) >= histogram.Size || int(c.L) >= histogram.Size {
			return f, false
		}
		f[c.H][c.C][c.L] = c.N
	}
	return f, true
}

// Keys returns the tile keys in lexical order.
func (ix *Index) Keys() []string {
	keys := make([]string, 0, len(ix.Tiles))
	for k := range ix.Tiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sparse(f *histogram.Field) []Count {
	var out []Count
	for h := range histogram.Size {
		for c := range histogram.Size {
			for l := range histogram.Size {
				if n := f[h][c][l]; n > 0 {
					out = append(out, Count{H: uint8(h), C: uint8(c), L: uint8(l), N: n})
				}
			}
		}
	}
	return out
}

// PeakColor returns the coarse position of p.
func (p Peak) PeakColor() hcl.Coarse {
	return hcl.Coarse{H: p.H, C: p.C, L: p.L, A: 1}
}

// ComputeStats recalculates aggregate statistics from the entries.
func (ix *Index) ComputeStats() {
	var s Stats
	s.TotalTiles = len(ix.Tiles)
	for _, e := range ix.Tiles {
		s.TotalBytes += e.Size
		s.TotalMaxima += len(e.Maxima)
		if len(e.Maxima) == 0 {
			s.EmptyTiles++
		}
		for _, c := range e.Counts {
			s.TotalPixels += uint64(c.N)
		}
	}
	ix.Stats = s
}

// Write serializes the index as indented JSON. Paths ending in
// CompressedExt are zstd-compressed.
func Write(ix *Index, path string) error {
	ix.ComputeStats()

	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if !strings.HasSuffix(path, CompressedExt) {
		return os.WriteFile(path, data, 0o644)
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderConcurrency(runtime.NumCPU()))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("compress: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Read loads an index written by Write. Unknown fields are ignored.
func Read(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, CompressedExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	}

	var ix Index
	if err := json.NewDecoder(r).Decode(&ix); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	if ix.Tiles == nil {
		ix.Tiles = make(map[string]Entry)
	}
	return &ix, nil
}
