package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/emotim-cli/internal/hasher"
	"github.com/AnyUserName/emotim-cli/internal/index"
	"github.com/AnyUserName/emotim-cli/internal/pipeline"
)

var validateTiles string

var validateCmd = &cobra.Command{
	Use:   "validate <index_path>",
	Short: "Validate a tile index and optionally check it against the tile files",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateTiles, "tiles", "", "tile directory to compare hashes against")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path, err := expandPath(args[0])
	if err != nil {
		return err
	}
	ix, err := index.Read(path)
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}

	errs := index.Validate(ix)
	if validateTiles != "" {
		dir, err := expandPath(validateTiles)
		if err != nil {
			return err
		}
		fileErrs, err := checkTileFiles(ix, dir)
		if err != nil {
			return err
		}
		errs = append(errs, fileErrs...)
	}

	if len(errs) == 0 {
		fmt.Println(okStyle.Render("  ✓ Index is valid"))
		fmt.Println(okStyle.Render(fmt.Sprintf("  ✓ %d tiles, %d maxima", ix.Stats.TotalTiles, ix.Stats.TotalMaxima)))
		return nil
	}

	fmt.Println(errStyle.Render(fmt.Sprintf("  ✗ Index has %d error(s):", len(errs))))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

// checkTileFiles compares the index with the files currently in dir.
func checkTileFiles(ix *index.Index, dir string) ([]string, error) {
	sources, err := pipeline.ScanImages(dir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	var errs []string
	onDisk := make(map[string]bool, len(sources))
	for _, s := range sources {
		onDisk[s.Key] = true
		e, ok := ix.Tiles[s.Key]
		if !ok {
			errs = append(errs, fmt.Sprintf("tile %q: not in index", s.Key))
			continue
		}
		if e.Size != s.Size {
			errs = append(errs, fmt.Sprintf("tile %q: size mismatch: index=%d, disk=%d", s.Key, e.Size, s.Size))
			continue
		}
		hash, err := hasher.FileHash(s.AbsPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("tile %q: %v", s.Key, err))
			continue
		}
		if hash != e.Hash {
			errs = append(errs, fmt.Sprintf("tile %q: hash mismatch: index=%s, disk=%s", s.Key, e.Hash, hash))
		}
	}
	for _, key := range ix.Keys() {
		if !onDisk[key] {
			errs = append(errs, fmt.Sprintf("tile %q: file not found", key))
		}
	}
	return errs, nil
}
