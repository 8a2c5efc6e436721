package pipeline

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/emotim-cli/internal/histogram"
)

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func tileDir(t *testing.T) string {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "2764.png"), color.NRGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "1f49a.png"), color.NRGBA{G: 255, A: 255})
	writePNG(t, filepath.Join(dir, "flags", "1f1e9-1f1ea.PNG"), color.NRGBA{B: 255, A: 255})
	writePNG(t, filepath.Join(dir, ".hidden", "1f600.png"), color.NRGBA{A: 255})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestScanImages(t *testing.T) {
	dir := tileDir(t)
	writePNG(t, filepath.Join(dir, "1f600.JPEG"), color.NRGBA{A: 255})
	writePNG(t, filepath.Join(dir, "1f601.avif"), color.NRGBA{A: 255})
	sources, err := ScanImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct{ key, format string }{
		{"1f49a", "png"},
		{"1f600", "jpeg"},
		{"1f601", "avif"},
		{"2764", "png"},
		{"flags/1f1e9-1f1ea", "png"},
	}
	if len(sources) != len(want) {
		t.Fatalf("got %d sources: %+v", len(sources), sources)
	}
	for i, s := range sources {
		if s.Key != want[i].key || s.Format != want[i].format {
			t.Errorf("source %d: %s/%s, want %s/%s", i, s.Key, s.Format, want[i].key, want[i].format)
		}
		if s.Size <= 0 {
			t.Errorf("source %d: size %d", i, s.Size)
		}
	}
}

func TestLoadLibrary(t *testing.T) {
	dir := tileDir(t)
	// undecodable and badly named files are skipped
	if err := os.WriteFile(filepath.Join(dir, "1f4a9.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "smile.png"), color.NRGBA{R: 255, G: 255, A: 255})

	set, ix, err := New(Config{TileDir: dir, Workers: 2, Histogram: histogram.DefaultOptions()}).LoadLibrary()
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 3 {
		t.Fatalf("loaded %d tiles, want 3", set.Len())
	}
	if got := set.Get(0).String() + set.Get(1).String() + set.Get(2).String(); got != "\U0001f49a\u2764\U0001f1e9\U0001f1ea" {
		t.Errorf("order/runes: %q", got)
	}
	for _, tile := range set.Tiles() {
		if tile.Hist == nil || len(tile.Hist.Maxima) == 0 || len(tile.Hash) != 16 {
			t.Errorf("tile %s incomplete", tile.Key)
		}
	}
	if len(ix.Tiles) != 3 || ix.BuildInfo.Reused != 0 {
		t.Errorf("index: %d tiles, %d reused", len(ix.Tiles), ix.BuildInfo.Reused)
	}
}

func TestLoadLibrary_ReusesCache(t *testing.T) {
	dir := tileDir(t)
	cfg := Config{TileDir: dir, Histogram: histogram.DefaultOptions()}
	first, ix, err := New(cfg).LoadLibrary()
	if err != nil {
		t.Fatal(err)
	}

	// change one tile so its hash no longer matches
	writePNG(t, filepath.Join(dir, "2764.png"), color.NRGBA{R: 200, G: 20, A: 255})

	cfg.Cache = ix
	second, ix2, err := New(cfg).LoadLibrary()
	if err != nil {
		t.Fatal(err)
	}
	if ix2.BuildInfo.Reused != 2 {
		t.Errorf("reused %d, want 2", ix2.BuildInfo.Reused)
	}
	for i, tile := range second.Tiles() {
		prev := first.Get(tile.ID)
		same := tile.Hist.Distribution == prev.Hist.Distribution
		if tile.Key == "2764" && same {
			t.Error("changed tile kept stale counts")
		}
		if tile.Key != "2764" && !same {
			t.Errorf("tile %d: cached counts differ", i)
		}
	}
}

func TestLoadLibrary_Failures(t *testing.T) {
	empty := t.TempDir()
	if _, _, err := New(Config{TileDir: empty, Histogram: histogram.DefaultOptions()}).LoadLibrary(); err == nil {
		t.Error("expected error for empty directory")
	}

	broken := t.TempDir()
	os.WriteFile(filepath.Join(broken, "1f600.png"), []byte("garbage"), 0o644)
	if _, _, err := New(Config{TileDir: broken, Histogram: histogram.DefaultOptions()}).LoadLibrary(); err == nil {
		t.Error("expected error when every tile fails")
	}

	if _, _, err := New(Config{TileDir: tileDir(t)}).LoadLibrary(); err == nil {
		t.Error("expected error for zero histogram options")
	}
}
