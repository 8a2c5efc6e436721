// Package pipeline loads a directory of tile images into a tile set.
package pipeline

import (
	"fmt"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/AnyUserName/emotim-cli/internal/histogram"
	"github.com/AnyUserName/emotim-cli/internal/index"
	"github.com/AnyUserName/emotim-cli/internal/tileset"
)

// Config holds all parameters for loading a tile library.
type Config struct {
	TileDir   string
	Workers   int
	Histogram histogram.Options
	// Cache, when set, supplies counts for tiles whose file hash is
	// unchanged. It is only read.
	Cache *index.Index
}

// Pipeline orchestrates tile loading.
type Pipeline struct {
	cfg Config
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{cfg: cfg}
}

// LoadLibrary scans the tile directory and loads every tile in parallel.
// Tiles keep scan order. Tiles that fail to load are logged and skipped;
// the load fails only when no tile is found or all of them fail.
//
// The returned index describes every loaded tile and can be written back
// as the cache for the next run.
func (p *Pipeline) LoadLibrary() (*tileset.Set, *index.Index, error) {
	if err := p.cfg.Histogram.Validate(); err != nil {
		return nil, nil, fmt.Errorf("histogram options: %w", err)
	}

	sources, err := ScanImages(p.cfg.TileDir)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no tile images found in %s", p.cfg.TileDir)
	}
	log.WithFields(log.Fields{
		"dir":     p.cfg.TileDir,
		"tiles":   len(sources),
		"workers": p.cfg.Workers,
		"cached":  p.cfg.Cache != nil,
	}).Debug("loading tiles")

	results := make([]loadResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = loadTile(s, p.cfg)
			if results[idx].err == nil {
				log.WithFields(log.Fields{
					"key":    s.Key,
					"format": s.Format,
					"maxima": len(results[idx].tile.Hist.Maxima),
					"reused": results[idx].reused,
				}).Trace("tile loaded")
			}
		}(i, src)
	}
	wg.Wait()

	ix := index.New(p.cfg.Histogram)
	tiles := make([]*tileset.Tile, 0, len(results))
	var failed, reused int
	for _, r := range results {
		if r.err != nil {
			log.WithError(r.err).Warn("skipping tile")
			failed++
			continue
		}
		if r.reused {
			reused++
		}
		tiles = append(tiles, r.tile)
		ix.Put(r.tile)
	}
	if failed == len(sources) {
		return nil, nil, fmt.Errorf("all %d tiles failed to load", failed)
	}
	if failed > 0 {
		log.Warnf("%d of %d tiles had errors", failed, len(sources))
	}

	ix.BuildInfo = &index.BuildInfo{Workers: p.cfg.Workers, Reused: reused}
	ix.ComputeStats()
	return tileset.NewSet(tiles), ix, nil
}
