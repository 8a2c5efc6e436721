package index

// Index is the on-disk cache of tile descriptors produced by "emotim index"
// and refreshed by "emotim render --index".
type Index struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	BuildID     string           `json:"build_id"`
	Settings    Settings         `json:"settings"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Tiles       map[string]Entry `json:"tiles"`
	Stats       Stats            `json:"stats"`
}

// Settings records the peak extraction parameters the maxima were built
// with. Counts do not depend on them.
type Settings struct {
	Depth     int     `json:"depth"` // cells per axis
	MaxMaxima int     `json:"max_maxima"`
	MinMass   float64 `json:"min_mass"`
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers int `json:"workers"`
	Reused  int `json:"reused"` // entries taken over from a previous index
}

// Entry describes one tile file.
type Entry struct {
	Codepoints string  `json:"codepoints"` // "1f600" or "0023-20e3"
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Size       int64   `json:"size"` // bytes on disk
	Hash       string  `json:"hash"` // xxhash64 of the file, 16 hex chars
	Counts     []Count `json:"counts"`
	Maxima     []Peak  `json:"maxima"`
}

// Count is one non-empty cell of a tile's distribution.
type Count struct {
	H uint8  `json:"h"`
	C uint8  `json:"c"`
	L uint8  `json:"l"`
	N uint32 `json:"n"`
}

// Peak is a stored maximum. Color is the extended coarse position as
// #rrggbb, for humans only.
type Peak struct {
	H     uint8   `json:"h"`
	C     uint8   `json:"c"`
	L     uint8   `json:"l"`
	Mass  float64 `json:"mass"`
	Color string  `json:"color"`
}

// Stats aggregates index metrics.
type Stats struct {
	TotalTiles  int    `json:"total_tiles"`
	TotalBytes  int64  `json:"total_bytes"`
	TotalPixels uint64 `json:"total_pixels"` // opaque pixels counted
	TotalMaxima int    `json:"total_maxima"`
	EmptyTiles  int    `json:"empty_tiles,omitempty"` // tiles without any peak
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1
