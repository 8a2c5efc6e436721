package index

import (
	"fmt"

	"github.com/AnyUserName/emotim-cli/internal/hasher"
	"github.com/AnyUserName/emotim-cli/internal/histogram"
	"github.com/AnyUserName/emotim-cli/internal/tileset"
)

// Validate checks the structure of an index and returns one message per
// problem found.
func Validate(ix *Index) []string {
	var errs []string

	if ix.Version != SupportedVersion {
		errs = append(errs, fmt.Sprintf("unsupported index version: %d", ix.Version))
	}
	if ix.Settings.Depth != histogram.Size {
		errs = append(errs, fmt.Sprintf("unsupported depth: %d", ix.Settings.Depth))
	}
	opts := histogram.Options{MaxMaxima: ix.Settings.MaxMaxima, MinMass: ix.Settings.MinMass}
	if err := opts.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("settings: %v", err))
	}

	var pixels uint64
	var maxima int
	for _, key := range ix.Keys() {
		e := ix.Tiles[key]
		if _, err := tileset.ParseName(e.Codepoints); err != nil {
			errs = append(errs, fmt.Sprintf("tile %q: %v", key, err))
		}
		if e.Width <= 0 || e.Height <= 0 {
			errs = append(errs, fmt.Sprintf("tile %q: invalid dimensions %dx%d", key, e.Width, e.Height))
		}
		if len(e.Hash) != hasher.HexLen {
			errs = append(errs, fmt.Sprintf("tile %q: malformed hash %q", key, e.Hash))
		}

		var total uint64
		seen := map[Count]bool{}
		for i, c := range e.Counts {
			if int(c.H) >= histogram.Size || int(c.C) >= histogram.Size || int(c.L) >= histogram.Size {
				errs = append(errs, fmt.Sprintf("tile %q counts[%d]: cell (%d,%d,%d) out of range", key, i, c.H, c.C, c.L))
			}
			cell := Count{H: c.H, C: c.C, L: c.L}
			if seen[cell] {
				errs = append(errs, fmt.Sprintf("tile %q counts[%d]: duplicate cell (%d,%d,%d)", key, i, c.H, c.C, c.L))
			}
			seen[cell] = true
			total += uint64(c.N)
		}
		if area := uint64(e.Width) * uint64(e.Height); e.Width > 0 && e.Height > 0 && total > area {
			errs = append(errs, fmt.Sprintf("tile %q: %d counted pixels exceed %dx%d", key, total, e.Width, e.Height))
		}
		pixels += total

		if len(e.Maxima) > ix.Settings.MaxMaxima {
			errs = append(errs, fmt.Sprintf("tile %q: %d maxima exceed cap %d", key, len(e.Maxima), ix.Settings.MaxMaxima))
		}
		for i, p := range e.Maxima {
			if !p.PeakColor().Valid() {
				errs = append(errs, fmt.Sprintf("tile %q maxima[%d]: position (%d,%d,%d) out of range", key, i, p.H, p.C, p.L))
			}
			if p.Mass < ix.Settings.MinMass {
				errs = append(errs, fmt.Sprintf("tile %q maxima[%d]: mass %g below floor %g", key, i, p.Mass, ix.Settings.MinMass))
			}
			if i > 0 && p.Mass < e.Maxima[i-1].Mass {
				errs = append(errs, fmt.Sprintf("tile %q maxima[%d]: not ascending by mass", key, i))
			}
		}
		maxima += len(e.Maxima)
	}

	if ix.Stats.TotalTiles != len(ix.Tiles) {
		errs = append(errs, fmt.Sprintf("stats.total_tiles mismatch: %d != %d", ix.Stats.TotalTiles, len(ix.Tiles)))
	}
	if ix.Stats.TotalPixels != pixels {
		errs = append(errs, fmt.Sprintf("stats.total_pixels mismatch: %d != %d", ix.Stats.TotalPixels, pixels))
	}
	if ix.Stats.TotalMaxima != maxima {
		errs = append(errs, fmt.Sprintf("stats.total_maxima mismatch: %d != %d", ix.Stats.TotalMaxima, maxima))
	}
	return errs
}
