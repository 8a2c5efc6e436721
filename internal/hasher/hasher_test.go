package hasher

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestContentHash(t *testing.T) {
	// xxhash64 of the empty input
	if got := ContentHash(nil); got != "ef46db3751d8e999" {
		t.Errorf("empty: got %s", got)
	}
	a, b := ContentHash([]byte("tile-a")), ContentHash([]byte("tile-b"))
	if len(a) != HexLen || a == b {
		t.Errorf("hashes %q %q", a, b)
	}
}

func TestReaderAndFileAgree(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 250}, 10000)
	want := ContentHash(data)

	got, err := ReaderHash(bytes.NewReader(data))
	if err != nil || got != want {
		t.Errorf("reader: %s (%v), want %s", got, err, want)
	}

	path := filepath.Join(t.TempDir(), "1f600.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = FileHash(path)
	if err != nil || got != want {
		t.Errorf("file: %s (%v), want %s", got, err, want)
	}

	if _, err := FileHash(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
