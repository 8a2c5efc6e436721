package histogram

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"github.com/AnyUserName/emotim-cli/internal/hcl"
)

func solidImg(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func noiseImg(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.Intn(256))
		img.Pix[i+1] = uint8(rng.Intn(256))
		img.Pix[i+2] = uint8(rng.Intn(256))
		img.Pix[i+3] = uint8(rng.Intn(256))
	}
	return img
}

func TestBuild_MassConservation(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		coarse := hcl.FromImage(noiseImg(23, 17, seed)).Reduce()
		f := Build(coarse)
		if got, want := f.Sum(), uint64(coarse.Opaque()); got != want {
			t.Errorf("seed %d: sum %d, want %d opaque pixels", seed, got, want)
		}
	}
}

func TestBuild_Transparent(t *testing.T) {
	h := FromImage(solidImg(5, 5, color.NRGBA{R: 200, G: 10, B: 10, A: 0}), DefaultOptions())
	if h.Total() != 0 || !h.Empty() {
		t.Errorf("transparent image counted %d pixels", h.Total())
	}
	if !h.Smoothed.IsZero() {
		t.Error("smoothed field of transparent image is not zero")
	}
	if len(h.Maxima) != 0 {
		t.Errorf("transparent image has %d maxima", len(h.Maxima))
	}
}

func TestBuild_AlphaCutoff(t *testing.T) {
	img := solidImg(4, 1, color.NRGBA{R: 0, G: 0, B: 255, A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{B: 255, A: 204})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 205})
	if got := FromImage(img, DefaultOptions()).Total(); got != 3 {
		t.Errorf("counted %d pixels, want 3", got)
	}
}

func TestSmooth_Kernel(t *testing.T) {
	var d Field
	d[7][7][7] = 1
	s := Smooth(&d)

	if s[7][7][7] != 0 {
		t.Errorf("centre included in its own sum: %d", s[7][7][7])
	}
	checks := []struct {
		h, c, l int
		want    uint32
	}{
		{8, 7, 7, 4}, {6, 7, 7, 4}, {7, 8, 7, 4}, {7, 7, 6, 4},
		{8, 8, 7, 2}, {6, 7, 8, 2}, {7, 6, 6, 2},
		{8, 8, 8, 1}, {6, 6, 6, 1}, {6, 8, 6, 1},
		{9, 7, 7, 0},
	}
	for _, c := range checks {
		if got := s[c.h][c.c][c.l]; got != c.want {
			t.Errorf("smoothed[%d][%d][%d] = %d, want %d", c.h, c.c, c.l, got, c.want)
		}
	}
	if got := s.Sum(); got != 56 {
		t.Errorf("neighbour weights sum to %d, want 56", got)
	}
}

func TestSmooth_BorderStaysZero(t *testing.T) {
	var d Field
	for h := range Size {
		for c := range Size {
			for l := range Size {
				d[h][c][l] = 3
			}
		}
	}
	s := Smooth(&d)
	for i := range Size {
		for j := range Size {
			for _, v := range []uint32{s[0][i][j], s[15][i][j], s[i][0][j], s[i][15][j], s[i][j][0], s[i][j][15]} {
				if v != 0 {
					t.Fatalf("border cell is %d", v)
				}
			}
		}
	}
	if s[5][5][5] != 56*3 {
		t.Errorf("interior: got %d, want %d", s[5][5][5], 56*3)
	}
}

func TestFindMaxima_SolidRed(t *testing.T) {
	// Red lands on coarse (0, 15, 4), a border cell. Only (1, 14, l) for
	// l in 3..5 see it: 100, 200 (edge weight 2) and 100.
	h := FromImage(solidImg(10, 10, color.NRGBA{R: 255, A: 255}), DefaultOptions())

	if h.Distribution[0][15][4] != 100 {
		t.Fatalf("distribution: %d at (0,15,4)", h.Distribution[0][15][4])
	}
	if h.Smoothed[1][14][4] != 200 || h.Smoothed[1][14][3] != 100 || h.Smoothed[1][14][5] != 100 {
		t.Errorf("smoothed around red: %d %d %d",
			h.Smoothed[1][14][3], h.Smoothed[1][14][4], h.Smoothed[1][14][5])
	}
	if len(h.Maxima) != 1 {
		t.Fatalf("got %d maxima, want 1", len(h.Maxima))
	}
	m := h.Maxima[0]
	if m.Color != (hcl.Coarse{H: 1, C: 14, L: 4, A: 1}) {
		t.Errorf("position: %+v", m.Color)
	}
	if m.Mass != 3.125 {
		t.Errorf("mass: got %g, want 3.125", m.Mass)
	}
}

func TestFindMaxima_SolidOrange(t *testing.T) {
	h := FromImage(solidImg(10, 10, color.NRGBA{R: 255, G: 165, A: 255}), DefaultOptions())
	if len(h.Maxima) != 1 {
		t.Fatalf("got %d maxima, want 1", len(h.Maxima))
	}
	// Four cells tie at 400 around (1, 14, 10); the lowest one survives.
	if got := h.Maxima[0].Color; got != (hcl.Coarse{H: 1, C: 13, L: 10, A: 1}) {
		t.Errorf("position: %+v", got)
	}
	if got := h.Maxima[0].Mass; got != 37.5 {
		t.Errorf("mass: got %g, want 37.5", got)
	}
}

func TestFindMaxima_PlateauTieBreak(t *testing.T) {
	var s Field
	s[5][5][5] = 10
	s[5][5][6] = 10
	s[5][6][5] = 10
	s[6][5][5] = 10
	got := FindMaxima(&s, Options{MaxMaxima: 5, MinMass: 0})
	if len(got) != 1 {
		t.Fatalf("plateau produced %d maxima", len(got))
	}
	if got[0].Color != (hcl.Coarse{H: 5, C: 5, L: 5, A: 1}) {
		t.Errorf("survivor: %+v, want lowest cell", got[0].Color)
	}
	if got[0].Mass != 30.0/64 {
		t.Errorf("mass: %g", got[0].Mass)
	}
}

func TestFindMaxima_CapAndFloor(t *testing.T) {
	var d Field
	d[2][2][2] = 50
	d[2][2][10] = 40
	d[2][10][2] = 30
	d[10][2][2] = 20
	d[10][10][10] = 10
	d[6][6][6] = 5
	d[12][12][3] = 1

	h := FromDistribution(d, DefaultOptions())
	if len(h.Maxima) != 5 {
		t.Fatalf("got %d maxima, want 5", len(h.Maxima))
	}
	want := []float64{5.625, 11.25, 16.875, 22.5, 28.125}
	for i, m := range h.Maxima {
		if m.Mass != want[i] {
			t.Errorf("maxima[%d].Mass = %g, want %g", i, m.Mass, want[i])
		}
	}

	h = FromDistribution(d, Options{MaxMaxima: 2, MinMass: 1})
	if len(h.Maxima) != 2 || h.Maxima[0].Mass != 22.5 {
		t.Errorf("cap 2: %+v", h.Maxima)
	}

	h = FromDistribution(d, Options{MaxMaxima: 5, MinMass: 20})
	if len(h.Maxima) != 2 {
		t.Errorf("floor 20: %+v", h.Maxima)
	}
}

func TestFindMaxima_Properties(t *testing.T) {
	opts := Options{MaxMaxima: 3, MinMass: 1}
	for seed := int64(1); seed <= 20; seed++ {
		h := FromImage(noiseImg(12, 12, seed), opts)
		if len(h.Maxima) > opts.MaxMaxima {
			t.Fatalf("seed %d: %d maxima exceed cap", seed, len(h.Maxima))
		}
		for i, m := range h.Maxima {
			if m.Mass < opts.MinMass {
				t.Fatalf("seed %d: mass %g below floor", seed, m.Mass)
			}
			if i > 0 && m.Mass < h.Maxima[i-1].Mass {
				t.Fatalf("seed %d: maxima not ascending", seed)
			}
			if !m.Color.Valid() || m.Color.A != 1 {
				t.Fatalf("seed %d: invalid position %+v", seed, m.Color)
			}
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("defaults: %v", err)
	}
	for _, o := range []Options{{0, 1}, {17, 1}, {3, -1}} {
		if err := o.Validate(); err == nil {
			t.Errorf("%+v: expected error", o)
		}
	}
}

func TestFromDistribution_MatchesNew(t *testing.T) {
	coarse := hcl.FromImage(noiseImg(16, 16, 42)).Reduce()
	a := New(coarse, DefaultOptions())
	b := FromDistribution(a.Distribution, DefaultOptions())
	if a.Smoothed != b.Smoothed {
		t.Error("smoothed fields differ")
	}
	if len(a.Maxima) != len(b.Maxima) {
		t.Fatalf("maxima: %d vs %d", len(a.Maxima), len(b.Maxima))
	}
	for i := range a.Maxima {
		if a.Maxima[i] != b.Maxima[i] {
			t.Errorf("maxima[%d]: %+v vs %+v", i, a.Maxima[i], b.Maxima[i])
		}
	}
}

func TestWriteTable(t *testing.T) {
	h := FromImage(solidImg(10, 10, color.NRGBA{R: 255, A: 255}), DefaultOptions())
	var buf bytes.Buffer
	if err := h.WriteTable(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "h:") != Size {
		t.Errorf("expected %d hue blocks", Size)
	}
	if !strings.Contains(out, "200") {
		t.Error("peak value missing from table")
	}
}

// shortWriter accepts n bytes, then fails.
type shortWriter struct{ n int }

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		k := w.n
		w.n = 0
		return k, errors.New("disk full")
	}
	w.n -= len(p)
	return len(p), nil
}

func TestWriteTable_ReportsLateErrors(t *testing.T) {
	h := FromImage(solidImg(10, 10, color.NRGBA{R: 255, A: 255}), DefaultOptions())
	if err := h.WriteTable(&shortWriter{n: 5000}); err == nil {
		t.Error("expected error from a writer that fails mid-table")
	}
}

func BenchmarkFromImage(b *testing.B) {
	img := noiseImg(64, 64, 7)
	opts := DefaultOptions()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = FromImage(img, opts)
	}
}
