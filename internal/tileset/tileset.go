// Package tileset holds the library of replacement tiles. Tiles live in a
// single arena and are referred to by their position in it, so a mosaic
// stores small integer IDs instead of sharing tile values.
package tileset

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AnyUserName/emotim-cli/internal/histogram"
	"github.com/AnyUserName/emotim-cli/internal/similarity"
)

var (
	// ErrNoCandidates is returned when a match is requested from an empty set.
	ErrNoCandidates = errors.New("tileset: no candidate tiles")
	// ErrBadName is returned by ParseName for tokens that are not hex code points.
	ErrBadName = errors.New("tileset: invalid tile name")
)

// ID is the position of a tile in its Set.
type ID int

// Tile is one replacement image together with its identifier and descriptor.
type Tile struct {
	ID ID
	// Key is the path of the source file relative to the tile directory,
	// without extension.
	Key string
	// Runes is the identifier parsed from the file name, printed in the
	// text rendering of a mosaic.
	Runes []rune
	Image image.Image
	// Hash is the xxHash64 of the encoded source file and Size its length.
	Hash string
	Size int64
	Hist *histogram.Histogram
}

func (t *Tile) String() string {
	if len(t.Runes) == 0 {
		return "?"
	}
	return string(t.Runes)
}

// Codepoints returns the identifier as lowercase hex joined by '-', the
// inverse of ParseName.
func (t *Tile) Codepoints() string {
	parts := make([]string, len(t.Runes))
	for i, r := range t.Runes {
		parts[i] = fmt.Sprintf("%04x", r)
	}
	return strings.Join(parts, "-")
}

// ParseName parses a tile identifier of the form "<hex>" or "<hex>-<hex>",
// optionally followed by an image extension ("1f600.png", "0023-20e3").
// A leading directory is ignored.
func ParseName(token string) ([]rune, error) {
	base := filepath.Base(token)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, "-")
	if base == "" || len(parts) > 2 {
		return nil, fmt.Errorf("%w: %q", ErrBadName, token)
	}
	runes := make([]rune, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(p, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadName, token, err)
		}
		r := rune(v)
		if !utf8.ValidRune(r) {
			return nil, fmt.Errorf("%w: %q: U+%X is not a valid code point", ErrBadName, token, v)
		}
		runes = append(runes, r)
	}
	return runes, nil
}

// Set is an immutable arena of tiles. It is safe for concurrent use once
// constructed.
type Set struct {
	tiles []*Tile
}

// NewSet takes ownership of tiles and assigns IDs by position.
func NewSet(tiles []*Tile) *Set {
	for i, t := range tiles {
		t.ID = ID(i)
	}
	return &Set{tiles: tiles}
}

// Len returns the number of tiles.
func (s *Set) Len() int { return len(s.tiles) }

// Get returns the tile with the given ID, or nil when out of range.
func (s *Set) Get(id ID) *Tile {
	if id < 0 || int(id) >= len(s.tiles) {
		return nil
	}
	return s.tiles[id]
}

// Tiles returns the tiles in ID order. The slice must not be modified.
func (s *Set) Tiles() []*Tile { return s.tiles }

// BestMatch scores hist against every tile and returns the ID with the
// highest score. Ties keep the tile seen first. A result is returned even
// when every score is 0.
func (s *Set) BestMatch(hist *histogram.Histogram, m similarity.Method) (ID, float64, error) {
	if len(s.tiles) == 0 {
		return 0, 0, ErrNoCandidates
	}
	score := similarity.Scorer(m)
	best, bestScore := ID(0), score(s.tiles[0].Hist, hist)
	for i := 1; i < len(s.tiles); i++ {
		if v := score(s.tiles[i].Hist, hist); v > bestScore {
			best, bestScore = ID(i), v
		}
	}
	return best, bestScore, nil
}
