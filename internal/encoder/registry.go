package encoder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry maps format names and file extensions to encoders.
type Registry struct {
	order []string
	byFmt map[string]Encoder
	byExt map[string]Encoder
}

// NewRegistry creates a registry with every built-in encoder.
func NewRegistry() *Registry {
	r := &Registry{
		byFmt: make(map[string]Encoder),
		byExt: make(map[string]Encoder),
	}
	for _, enc := range []Encoder{&PNGEncoder{}, &JPEGEncoder{}, &AVIFEncoder{}} {
		r.order = append(r.order, enc.Format())
		r.byFmt[enc.Format()] = enc
		for _, ext := range enc.Extensions() {
			r.byExt[ext] = enc
		}
	}
	return r
}

// Get returns the encoder for a format name, or nil.
func (r *Registry) Get(format string) Encoder {
	return r.byFmt[strings.ToLower(format)]
}

// ForPath picks the encoder from the extension of path.
func (r *Registry) ForPath(path string) (Encoder, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if enc, ok := r.byExt[ext]; ok {
		return enc, nil
	}
	return nil, fmt.Errorf("no encoder for %q (supported: %s)", filepath.Base(path), strings.Join(r.order, ", "))
}

// Formats returns all format names in registration order.
func (r *Registry) Formats() []string {
	return append([]string(nil), r.order...)
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	return fmt.Sprintf("encoders: %s", strings.Join(r.order, ", "))
}
