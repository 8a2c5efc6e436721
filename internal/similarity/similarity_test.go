package similarity

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/AnyUserName/emotim-cli/internal/hcl"
	"github.com/AnyUserName/emotim-cli/internal/histogram"
)

func solidHist(c color.NRGBA) *histogram.Histogram {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return histogram.FromImage(img, histogram.DefaultOptions())
}

func randomHist(seed int64) *histogram.Histogram {
	rng := rand.New(rand.NewSource(seed))
	var d histogram.Field
	for i := 0; i < 12; i++ {
		d[rng.Intn(16)][rng.Intn(16)][rng.Intn(16)] += uint32(rng.Intn(200))
	}
	return histogram.FromDistribution(d, histogram.DefaultOptions())
}

var (
	red    = color.NRGBA{R: 255, A: 255}
	orange = color.NRGBA{R: 255, G: 165, A: 255}
	blue   = color.NRGBA{B: 255, A: 255}
)

func TestSymmetry(t *testing.T) {
	empty := &histogram.Histogram{}
	hists := []*histogram.Histogram{empty, solidHist(red), solidHist(orange), solidHist(blue)}
	for seed := int64(1); seed <= 12; seed++ {
		hists = append(hists, randomHist(seed))
	}
	for _, m := range Methods() {
		for i, a := range hists {
			for j, b := range hists {
				ab, ba := Score(m, a, b), Score(m, b, a)
				if ab != ba {
					t.Errorf("%s: score(%d,%d)=%v != score(%d,%d)=%v", m, i, j, ab, j, i, ba)
				}
			}
		}
	}
}

func TestEmptyScoresZero(t *testing.T) {
	empty := histogram.FromImage(image.NewNRGBA(image.Rect(0, 0, 5, 5)), histogram.DefaultOptions())
	if len(empty.Maxima) != 0 {
		t.Fatalf("transparent tile has maxima: %+v", empty.Maxima)
	}
	others := []*histogram.Histogram{empty, solidHist(red), randomHist(3)}
	for _, m := range Methods() {
		for _, o := range others {
			if got := Score(m, empty, o); got != 0 {
				t.Errorf("%s: empty vs other = %v, want 0", m, got)
			}
		}
	}
}

func TestCorrelation_RedVsOrange(t *testing.T) {
	r, o := solidHist(red), solidHist(orange)
	rr := Score(Correlation, r, r)
	ro := Score(Correlation, r, o)
	if rr != 60000 {
		t.Errorf("red·red = %v, want 60000", rr)
	}
	if !(rr > ro) {
		t.Errorf("red·red %v should exceed red·orange %v", rr, ro)
	}
}

func TestMaxima_PrefersCloserColor(t *testing.T) {
	r, o, b := solidHist(red), solidHist(orange), solidHist(blue)
	for _, m := range []Method{Maxima, MaximaAngular} {
		self := Score(m, r, r)
		if self <= 0 {
			t.Errorf("%s: red vs red = %v", m, self)
		}
		if Score(m, o, o) <= Score(m, o, b) {
			t.Errorf("%s: orange should be closer to itself than to blue", m)
		}
	}
}

func TestMaxima_KnownValue(t *testing.T) {
	r := solidHist(red)
	// single peak, mass 3.125, distance 0: 5/1 · 3.125²/2
	want := 5 * 3.125 * 3.125 / 2
	if got := Score(Maxima, r, r); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	// sqrt(3.125²) = 3.125
	if got := Score(MaximaAngular, r, r); got != 5*3.125 {
		t.Errorf("angular: got %v, want %v", got, 5*3.125)
	}
}

func TestAngular_HueWraps(t *testing.T) {
	peak := func(h uint8) *histogram.Histogram {
		return &histogram.Histogram{Maxima: []histogram.Maximum{{
			Color: hcl.Coarse{H: h, C: 12, L: 7, A: 1},
			Mass:  4,
		}}}
	}
	low, high, mid := peak(0), peak(15), peak(8)

	if Score(MaximaAngular, low, high) <= Score(MaximaAngular, low, mid) {
		t.Error("angular: hue 0 and 15 should score closer than 0 and 8")
	}
	// the linear variant keeps the known approximation
	if Score(Maxima, low, high) >= Score(Maxima, low, mid) {
		t.Error("manhattan: expected hue 15 to be scored further than hue 8")
	}
}

func TestParseMethod(t *testing.T) {
	tests := map[string]Method{
		"correlation":    Correlation,
		"CORR":           Correlation,
		"maxima":         Maxima,
		" manhattan ":    Maxima,
		"angular":        MaximaAngular,
		"maxima-angular": MaximaAngular,
	}
	for in, want := range tests {
		got, err := ParseMethod(in)
		if err != nil {
			t.Errorf("%q: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: got %s, want %s", in, got, want)
		}
	}
	if _, err := ParseMethod("euclid"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("unknown method: got %v", err)
	}
	for _, m := range Methods() {
		back, err := ParseMethod(m.String())
		if err != nil || back != m {
			t.Errorf("String/Parse mismatch for %d", int(m))
		}
	}
	if got := Method(42).String(); got != "Method(42)" {
		t.Errorf("out of range: %s", got)
	}
}

func BenchmarkCorrelation(b *testing.B) {
	x, y := randomHist(1), randomHist(2)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Score(Correlation, x, y)
	}
}

func BenchmarkMaxima(b *testing.B) {
	x, y := randomHist(1), randomHist(2)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Score(MaximaAngular, x, y)
	}
}
