package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/emotim-cli/internal/index"
)

var statsCmd = &cobra.Command{
	Use:   "stats <index_or_dir>",
	Short: "Display statistics for a tile index",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path, err := expandPath(args[0])
	if err != nil {
		return err
	}

	// If path is a directory, look for the default index inside.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "tiles.index.json")
	}

	ix, err := index.Read(path)
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	printStats(ix)
	return nil
}

func printStats(ix *index.Index) {
	printTitle("emotim index")
	printRow("Version:", "%d", ix.Version)
	printRow("Generated:", "%s", ix.GeneratedAt)
	printRow("Build ID:", "%s", ix.BuildID)
	printRow("Settings:", "depth %d, max %d maxima, floor %g", ix.Settings.Depth, ix.Settings.MaxMaxima, ix.Settings.MinMass)
	if ix.BuildInfo != nil {
		printRow("Workers:", "%d", ix.BuildInfo.Workers)
		printRow("Reused:", "%d entries", ix.BuildInfo.Reused)
	}
	fmt.Println()

	s := ix.Stats
	printRow("Tiles:", "%d", s.TotalTiles)
	printRow("Tile bytes:", "%s", formatBytes(s.TotalBytes))
	printRow("Pixels:", "%d opaque", s.TotalPixels)
	printRow("Maxima:", "%d", s.TotalMaxima)
	if s.TotalTiles > 0 {
		printRow("Per tile:", "%.2f maxima", float64(s.TotalMaxima)/float64(s.TotalTiles))
	}
	fmt.Println()

	// Maxima count breakdown.
	perCount := map[int]int{}
	for _, e := range ix.Tiles {
		perCount[len(e.Maxima)]++
	}
	var counts []int
	for c := range perCount {
		counts = append(counts, c)
	}
	sort.Ints(counts)
	fmt.Println("  Maxima per tile:")
	for _, c := range counts {
		fmt.Printf("    %2d  %5d tiles\n", c, perCount[c])
	}
	fmt.Println()

	// Tiles with the heaviest dominant peak.
	type peakInfo struct {
		key, codepoints, color string
		mass                   float64
	}
	var peaks []peakInfo
	for key, e := range ix.Tiles {
		if n := len(e.Maxima); n > 0 {
			top := e.Maxima[n-1]
			peaks = append(peaks, peakInfo{key, e.Codepoints, top.Color, top.Mass})
		}
	}
	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].mass != peaks[j].mass {
			return peaks[i].mass > peaks[j].mass
		}
		return peaks[i].key < peaks[j].key
	})
	n := min(len(peaks), 10)
	if n > 0 {
		fmt.Printf("  Top %d dominant peaks:\n", n)
		for _, p := range peaks[:n] {
			fmt.Printf("    %s  %-32s %-12s mass %8.3f  %s\n", swatch(p.color), truncKey(p.key, 32), p.codepoints, p.mass, p.color)
		}
		fmt.Println()
	}

	// Warnings.
	var warnings []string
	for _, key := range ix.Keys() {
		e := ix.Tiles[key]
		if len(e.Counts) == 0 {
			warnings = append(warnings, fmt.Sprintf("tile %q is fully transparent", key))
		} else if len(e.Maxima) == 0 {
			warnings = append(warnings, fmt.Sprintf("tile %q has no significant peak", key))
		}
	}
	if len(warnings) > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  Warnings (%d):", len(warnings))))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
		fmt.Println()
	}
}
