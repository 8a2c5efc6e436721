// Package mosaic matches every cell of a source image against a tile set
// and assembles the result, as a raster or as lines of text.
package mosaic

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"

	"github.com/AnyUserName/emotim-cli/internal/histogram"
	"github.com/AnyUserName/emotim-cli/internal/similarity"
	"github.com/AnyUserName/emotim-cli/internal/tileset"
)

// ErrCellSize is returned for a cell size that is not positive or does not
// fit into the source image at least once in each direction.
var ErrCellSize = errors.New("mosaic: invalid cell size")

// Options configure a Build.
type Options struct {
	// CellSize is the edge length in source pixels of one square cell.
	CellSize int
	Method   similarity.Method
	// Histogram controls peak extraction for the cells. It should match
	// the options the tiles were built with.
	Histogram histogram.Options
	// Workers bounds the number of cells matched concurrently
	// (0 = NumCPU).
	Workers int
	// Progress, when set, is called after each cell is matched. It may be
	// called from several goroutines at once.
	Progress func(done, total int)
}

// Mosaic is the grid of chosen tiles, row-major.
type Mosaic struct {
	Cols, Rows int
	Cells      []tileset.ID
	// Scores holds the winning similarity per cell.
	Scores []float64

	set *tileset.Set
}

// Tile returns the tile chosen for the cell at (col, row).
func (m *Mosaic) Tile(col, row int) *tileset.Tile {
	if col < 0 || col >= m.Cols || row < 0 || row >= m.Rows {
		return nil
	}
	return m.set.Get(m.Cells[row*m.Cols+col])
}

// Set returns the tile set the mosaic was built from.
func (m *Mosaic) Set() *tileset.Set { return m.set }

// Usage counts how often each tile was chosen, indexed by tile ID.
func (m *Mosaic) Usage() []int {
	counts := make([]int, m.set.Len())
	for _, id := range m.Cells {
		counts[id]++
	}
	return counts
}

// Build divides img into cells and picks the best tile from set for each.
func Build(img image.Image, set *tileset.Set, opts Options) (*Mosaic, error) {
	if set == nil || set.Len() == 0 {
		return nil, tileset.ErrNoCandidates
	}
	if err := opts.Histogram.Validate(); err != nil {
		return nil, fmt.Errorf("histogram options: %w", err)
	}
	cols, rows, cells, err := Divide(img.Bounds(), opts.CellSize)
	if err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	log.WithFields(log.Fields{
		"cols":    cols,
		"rows":    rows,
		"cell":    opts.CellSize,
		"method":  opts.Method,
		"tiles":   set.Len(),
		"workers": workers,
	}).Debug("matching cells")

	m := &Mosaic{
		Cols:   cols,
		Rows:   rows,
		Cells:  make([]tileset.ID, len(cells)),
		Scores: make([]float64, len(cells)),
		set:    set,
	}
	errs := make([]error, len(cells))

	var (
		wg   sync.WaitGroup
		done atomic.Int64
	)
	sem := make(chan struct{}, workers)
	for i, rect := range cells {
		wg.Add(1)
		go func(idx int, r image.Rectangle) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			hist := histogram.FromImage(imaging.Crop(img, r), opts.Histogram)
			m.Cells[idx], m.Scores[idx], errs[idx] = set.BestMatch(hist, opts.Method)

			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), len(cells))
			}
		}(i, rect)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}
