package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Source is a discovered tile file.
type Source struct {
	// AbsPath is the path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the tile directory, slash-separated.
	RelPath string
	// Key is the index key (RelPath without extension).
	Key string
	// Format is the normalized source format.
	Format string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions maps recognized extensions to format names.
var imageExtensions = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
	".bmp":  "bmp",
	".tif":  "tiff",
	".tiff": "tiff",
	".webp": "webp",
	".avif": "avif",
}

// ScanImages walks dir recursively and returns every image file in lexical
// path order. Hidden directories below dir are skipped.
func ScanImages(dir string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		format, ok := imageExtensions[strings.ToLower(ext)]
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: rel,
			Key:     strings.TrimSuffix(rel, ext),
			Format:  format,
			Size:    info.Size(),
		})
		return nil
	})

	return sources, err
}
