package histogram

import (
	"fmt"
	"sort"

	"github.com/AnyUserName/emotim-cli/internal/hcl"
)

const (
	// DefaultMaxMaxima is the number of peaks kept per histogram.
	DefaultMaxMaxima = 5
	// DefaultMinMass is the significance floor for a peak.
	DefaultMinMass = 1.0

	maxMaxima = Size
)

// Maximum is a dominant color cluster: a local peak of the smoothed field.
type Maximum struct {
	// Color is the peak position. Alpha is always 1.
	Color hcl.Coarse
	// Mass estimates the local density (neighbour sum / KernelWeight).
	// It is not a pixel count.
	Mass float64
}

// Options control which peaks survive extraction.
type Options struct {
	MaxMaxima int     // keep at most this many peaks
	MinMass   float64 // drop peaks lighter than this
}

// DefaultOptions returns a cap of 5 peaks with a floor of 1.0.
func DefaultOptions() Options {
	return Options{MaxMaxima: DefaultMaxMaxima, MinMass: DefaultMinMass}
}

// Validate checks the cap and the floor.
func (o Options) Validate() error {
	if o.MaxMaxima < 1 || o.MaxMaxima > maxMaxima {
		return fmt.Errorf("max maxima must be between 1 and %d, got %d", maxMaxima, o.MaxMaxima)
	}
	if o.MinMass < 0 {
		return fmt.Errorf("min mass must not be negative, got %g", o.MinMass)
	}
	return nil
}

// FindMaxima returns the significant peaks of a smoothed field, ascending
// by mass.
//
// An interior cell with a positive value is a peak when none of its 26
// neighbours beats it. Neighbours earlier in (h, c, l) order beat it on
// equality too, so a plateau yields exactly one peak at its lowest cell.
// Peaks are then dropped, lightest first, while more than opts.MaxMaxima
// remain or the lightest is below opts.MinMass.
func FindMaxima(s *Field, opts Options) []Maximum {
	var found []Maximum
	for h := 1; h < Size-1; h++ {
		for c := 1; c < Size-1; c++ {
			for l := 1; l < Size-1; l++ {
				center := s[h][c][l]
				if center == 0 || !isPeak(s, h, c, l, center) {
					continue
				}
				var sum uint64
				for _, n := range neighbours {
					sum += uint64(s[h+n.dh][c+n.dc][l+n.dl])
				}
				found = append(found, Maximum{
					Color: hcl.Coarse{H: uint8(h), C: uint8(c), L: uint8(l), A: 1},
					Mass:  float64(sum) / KernelWeight,
				})
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Mass < found[j].Mass
	})

	drop := 0
	for drop < len(found) && (len(found)-drop > opts.MaxMaxima || found[drop].Mass < opts.MinMass) {
		drop++
	}
	if drop == len(found) {
		return nil
	}
	return append([]Maximum(nil), found[drop:]...)
}

func isPeak(s *Field, h, c, l int, center uint32) bool {
	for _, n := range neighbours {
		v := s[h+n.dh][c+n.dc][l+n.dl]
		if v > center || (n.before && v == center) {
			return false
		}
	}
	return true
}
