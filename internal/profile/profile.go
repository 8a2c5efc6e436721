package profile

import (
	"sort"

	"github.com/AnyUserName/emotim-cli/internal/histogram"
	"github.com/AnyUserName/emotim-cli/internal/similarity"
)

// Profile is a named set of mosaic parameters.
type Profile struct {
	Name      string
	CellSize  int               // source pixels per cell edge
	Method    similarity.Method // scoring method
	MaxMaxima int               // peaks kept per histogram
	MinMass   float64           // peak significance floor
	TileSize  int               // output pixels per tile edge (0 = tile's own size)
	Quality   int               // encoding quality 1-100 for lossy output
}

// Default is used for unknown names.
const Default = "emoji"

// Built-in profiles.
var profiles = map[string]Profile{
	"emoji": {
		Name:      "emoji",
		CellSize:  20,
		Method:    similarity.Correlation,
		MaxMaxima: histogram.DefaultMaxMaxima,
		MinMass:   histogram.DefaultMinMass,
		Quality:   90,
	},
	"fine": {
		Name:      "fine",
		CellSize:  10,
		Method:    similarity.MaximaAngular,
		MaxMaxima: 8,
		MinMass:   0.5,
		TileSize:  32,
		Quality:   90,
	},
	"coarse": {
		Name:      "coarse",
		CellSize:  40,
		Method:    similarity.Maxima,
		MaxMaxima: histogram.DefaultMaxMaxima,
		MinMass:   2,
		Quality:   85,
	},
	"poster": {
		Name:      "poster",
		CellSize:  25,
		Method:    similarity.Correlation,
		MaxMaxima: 3,
		MinMass:   histogram.DefaultMinMass,
		TileSize:  128,
		Quality:   95,
	},
}

// Get returns a profile by name. Falls back to the emoji profile if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[Default]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles alphabetically.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HistogramOptions returns the peak extraction options of the profile.
func (p Profile) HistogramOptions() histogram.Options {
	return histogram.Options{MaxMaxima: p.MaxMaxima, MinMass: p.MinMass}
}
