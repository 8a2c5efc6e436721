// Package similarity scores how alike two histograms are. Higher is more
// similar. Every method is commutative: Score(m, a, b) == Score(m, b, a)
// holds exactly, not just within rounding.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/AnyUserName/emotim-cli/internal/hcl"
	"github.com/AnyUserName/emotim-cli/internal/histogram"
)

// Method selects a scoring strategy.
type Method int

const (
	// Correlation is the dot product of the two smoothed fields.
	Correlation Method = iota
	// Maxima pairs every peak of one histogram with every peak of the
	// other, using a Manhattan distance that treats hue as linear: codes
	// 15 and 0 are scored as far apart although both are red.
	Maxima
	// MaximaAngular pairs peaks like Maxima but measures distance in a
	// hue cylinder, so hue wraps around and matters less for greys and
	// near-black or near-white colors.
	MaximaAngular
)

// ErrUnknownMethod is returned by ParseMethod.
var ErrUnknownMethod = errors.New("similarity: unknown method")

// Func scores two histograms.
type Func func(a, b *histogram.Histogram) float64

var methods = []struct {
	method  Method
	name    string
	aliases []string
	score   Func
}{
	{Correlation, "correlation", []string{"corr"}, correlation},
	{Maxima, "maxima", []string{"max", "manhattan"}, maxima},
	{MaximaAngular, "angular", []string{"maxima-angular"}, maximaAngular},
}

// Methods lists all methods in declaration order.
func Methods() []Method {
	out := make([]Method, len(methods))
	for i, m := range methods {
		out[i] = m.method
	}
	return out
}

func (m Method) String() string {
	if m >= 0 && int(m) < len(methods) {
		return methods[m].name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod resolves a method name or alias, case-insensitively.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range methods {
		if m.name == s || slices.Contains(m.aliases, s) {
			return m.method, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Scorer returns the scoring function for m. Unknown methods fall back to
// Correlation.
func Scorer(m Method) Func {
	if m >= 0 && int(m) < len(methods) {
		return methods[m].score
	}
	return correlation
}

// Score compares a and b with method m.
func Score(m Method, a, b *histogram.Histogram) float64 {
	return Scorer(m)(a, b)
}

func correlation(a, b *histogram.Histogram) float64 {
	var sum float64
	for h := range histogram.Size {
		for c := range histogram.Size {
			ra, rb := &a.Smoothed[h][c], &b.Smoothed[h][c]
			for l := range histogram.Size {
				sum += float64(ra[l]) * float64(rb[l])
			}
		}
	}
	return sum
}

// closeness constant of the pairwise methods.
const pairScale = 5.0

func maxima(a, b *histogram.Histogram) float64 {
	return pairwise(a.Maxima, b.Maxima, func(x, y histogram.Maximum) float64 {
		d := manhattan(x.Color, y.Color)
		return pairScale / (1 + d) * (x.Mass * y.Mass / 2)
	})
}

func maximaAngular(a, b *histogram.Histogram) float64 {
	return pairwise(a.Maxima, b.Maxima, func(x, y histogram.Maximum) float64 {
		d := cylinderDistance(x.Color, y.Color)
		return pairScale / (1 + d) * math.Sqrt(x.Mass*y.Mass)
	})
}

// pairwise sums term over all pairs. Terms are added in ascending order so
// the result does not depend on which histogram comes first.
func pairwise(as, bs []histogram.Maximum, term func(x, y histogram.Maximum) float64) float64 {
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	var buf [histogram.DefaultMaxMaxima * histogram.DefaultMaxMaxima]float64
	terms := buf[:0]
	for _, x := range as {
		for _, y := range bs {
			terms = append(terms, term(x, y))
		}
	}
	slices.Sort(terms)
	var sum float64
	for _, t := range terms {
		sum += t
	}
	return sum
}

func manhattan(x, y hcl.Coarse) float64 {
	return float64(absDiff(x.H, y.H) + absDiff(x.C, y.C) + absDiff(x.L, y.L) + absDiff(x.A, y.A))
}

// cylinderDistance embeds each coarse color as (r·cos θ, r·sin θ, L) with
// θ the hue angle and r the chroma damped towards black and white, and
// returns the Euclidean distance between the two points.
func cylinderDistance(x, y hcl.Coarse) float64 {
	x1, y1, z1 := cylinder(x)
	x2, y2, z2 := cylinder(y)
	dx, dy, dz := x1-x2, y1-y2, z1-z2
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

const top = hcl.Levels - 1

func cylinder(c hcl.Coarse) (x, y, z float64) {
	theta := 2 * math.Pi * float64(c.H) / hcl.Levels
	light := 1 - math.Abs(2*float64(c.L)/top-1)
	r := float64(c.C) * light
	return r * math.Cos(theta), r * math.Sin(theta), float64(c.L)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
