package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/emotim-cli/internal/index"
	"github.com/AnyUserName/emotim-cli/internal/pipeline"
)

var (
	indexOut       string
	indexProfile   string
	indexMaxMaxima int
	indexMinMass   float64
	indexWorkers   int
	indexRefresh   bool
)

var indexCmd = &cobra.Command{
	Use:   "index <tiles_dir>",
	Short: "Precompute tile histograms into an index file",
	Long: `Scans a tile directory, computes the color histogram of every tile and
writes them to an index file that "render --index" can reuse.

A path ending in .zst is written zstd-compressed.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	f := indexCmd.Flags()
	f.StringVarP(&indexOut, "out", "o", "tiles.index.json", "index file")
	f.StringVarP(&indexProfile, "profile", "p", "emoji", "mosaic profile for peak extraction")
	f.IntVar(&indexMaxMaxima, "max-maxima", 0, "peaks kept per histogram (0 = profile default)")
	f.Float64Var(&indexMinMass, "min-mass", -1, "peak mass floor (negative = profile default)")
	f.IntVarP(&indexWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.BoolVar(&indexRefresh, "refresh", true, "reuse unchanged entries of an existing index")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, args []string) error {
	start := time.Now()
	dir, err := expandPath(args[0])
	if err != nil {
		return err
	}
	out, err := expandPath(indexOut)
	if err != nil {
		return err
	}
	prof, err := resolveProfile(indexProfile, 0, "", indexMaxMaxima, indexMinMass)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		TileDir:   dir,
		Workers:   indexWorkers,
		Histogram: prof.HistogramOptions(),
	}
	if indexRefresh {
		cfg.Cache = loadCache(out)
	}
	_, ix, err := pipeline.New(cfg).LoadLibrary()
	if err != nil {
		return fmt.Errorf("load tiles: %w", err)
	}
	if err := index.Write(ix, out); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	printTitle("emotim index complete")
	printRow("Tiles:", "%d (%d reused)", ix.Stats.TotalTiles, ix.BuildInfo.Reused)
	printRow("Tile bytes:", "%s", formatBytes(ix.Stats.TotalBytes))
	printRow("Maxima:", "%d (max %d per tile, floor %g)", ix.Stats.TotalMaxima, ix.Settings.MaxMaxima, ix.Settings.MinMass)
	if ix.Stats.EmptyTiles > 0 {
		printRow("No peaks:", "%d tiles", ix.Stats.EmptyTiles)
	}
	printRow("Index:", "%s", out)
	printRow("Time:", "%s", time.Since(start).Round(time.Millisecond))
	fmt.Println()
	return nil
}
