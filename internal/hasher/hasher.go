// Package hasher computes the content hashes that key the tile index.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// HexLen is the length of a full hash string.
const HexLen = 16

// ContentHash returns the xxHash64 of data as 16 lowercase hex chars.
func ContentHash(data []byte) string {
	return format(xxhash.Sum64(data))
}

// ReaderHash streams r through xxHash64.
func ReaderHash(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64()), nil
}

// FileHash hashes the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ReaderHash(f)
}

func format(v uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return hex.EncodeToString(b[:])
}
