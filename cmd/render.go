package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/emotim-cli/internal/encoder"
	"github.com/AnyUserName/emotim-cli/internal/histogram"
	"github.com/AnyUserName/emotim-cli/internal/index"
	"github.com/AnyUserName/emotim-cli/internal/mosaic"
	"github.com/AnyUserName/emotim-cli/internal/pipeline"
	"github.com/AnyUserName/emotim-cli/internal/profile"
	"github.com/AnyUserName/emotim-cli/internal/similarity"
	"github.com/AnyUserName/emotim-cli/internal/tileset"
)

var (
	renderTiles     string
	renderOut       string
	renderText      string
	renderIndex     string
	renderProfile   string
	renderCell      int
	renderMethod    string
	renderMaxMaxima int
	renderMinMass   float64
	renderTileSize  int
	renderScale     float64
	renderWorkers   int
	renderQuality   int
)

var renderCmd = &cobra.Command{
	Use:   "render <image>",
	Short: "Build a tile mosaic of an image",
	Long: `Loads every tile image below --tiles, splits the source image into
square cells and replaces each cell with the tile whose color histogram
scores highest against it.

The mosaic is written as an image (png, jpeg or avif, chosen by the
extension of --out) and optionally as text, one line of tile code points
per row (--text, "-" for stdout).

With --index, tile histograms are read from and written back to an index
file; tiles whose content hash is unchanged are not counted again.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderTiles, "tiles", "t", "./tiles", "tile image directory")
	f.StringVarP(&renderOut, "out", "o", "", "output image (.png, .jpg, .avif)")
	f.StringVar(&renderText, "text", "", "write the text rendering to this file (- for stdout)")
	f.StringVar(&renderIndex, "index", "", "tile index to reuse and refresh (.json or .json.zst)")
	f.StringVarP(&renderProfile, "profile", "p", profile.Default, "mosaic profile")
	f.IntVarP(&renderCell, "cell", "c", 0, "cell edge in source pixels (0 = profile default)")
	f.StringVarP(&renderMethod, "method", "m", "", "similarity method: correlation, maxima, angular")
	f.IntVar(&renderMaxMaxima, "max-maxima", 0, "peaks kept per histogram (0 = profile default)")
	f.Float64Var(&renderMinMass, "min-mass", -1, "peak mass floor (negative = profile default)")
	f.IntVar(&renderTileSize, "tile-size", -1, "output tile edge in pixels (0 = first tile's size, negative = profile default)")
	f.Float64Var(&renderScale, "scale", 1, "resize the source by this factor before matching")
	f.IntVarP(&renderWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.IntVarP(&renderQuality, "quality", "q", 0, "quality 1-100 for lossy output (0 = profile default)")
	rootCmd.AddCommand(renderCmd)
}

// resolveProfile layers explicitly set flags over the named profile.
func resolveProfile(name string, cell int, method string, maxMaxima int, minMass float64) (profile.Profile, error) {
	prof := profile.Get(name)
	if cell > 0 {
		prof.CellSize = cell
	}
	if method != "" {
		m, err := similarity.ParseMethod(method)
		if err != nil {
			return prof, err
		}
		prof.Method = m
	}
	if maxMaxima > 0 {
		prof.MaxMaxima = maxMaxima
	}
	if minMass >= 0 {
		prof.MinMass = minMass
	}
	if err := prof.HistogramOptions().Validate(); err != nil {
		return prof, err
	}
	return prof, nil
}

// loadCache reads an index file if it exists. A missing file is not an
// error; an unreadable one is logged and ignored.
func loadCache(path string) *index.Index {
	if path == "" {
		return nil
	}
	ix, err := index.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).WithField("index", path).Warn("ignoring unreadable index")
		}
		return nil
	}
	return ix
}

func runRender(cmd *cobra.Command, args []string) error {
	start := time.Now()

	srcPath, err := expandPath(args[0])
	if err != nil {
		return err
	}
	tileDir, err := expandPath(renderTiles)
	if err != nil {
		return err
	}
	outPath, err := expandPath(renderOut)
	if err != nil {
		return err
	}
	indexPath, err := expandPath(renderIndex)
	if err != nil {
		return err
	}
	if outPath == "" && renderText == "" {
		return fmt.Errorf("nothing to write: set --out and/or --text")
	}

	prof, err := resolveProfile(renderProfile, renderCell, renderMethod, renderMaxMaxima, renderMinMass)
	if err != nil {
		return err
	}
	if renderTileSize >= 0 {
		prof.TileSize = renderTileSize
	}
	if renderQuality > 0 {
		prof.Quality = renderQuality
	}

	var enc encoder.Encoder
	if outPath != "" {
		if enc, err = encoder.NewRegistry().ForPath(outPath); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{
		"profile":    prof.Name,
		"cell":       prof.CellSize,
		"method":     prof.Method,
		"max_maxima": prof.MaxMaxima,
		"min_mass":   prof.MinMass,
	}).Debug("render settings")

	src, err := openImage(srcPath)
	if err != nil {
		return err
	}
	if renderScale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", renderScale)
	}
	if renderScale != 1 {
		b := src.Bounds()
		src = imaging.Resize(src, int(float64(b.Dx())*renderScale), 0, imaging.Lanczos)
	}

	// Load tiles.
	hopts := prof.HistogramOptions()
	set, ix, err := pipeline.New(pipeline.Config{
		TileDir:   tileDir,
		Workers:   renderWorkers,
		Histogram: hopts,
		Cache:     loadCache(indexPath),
	}).LoadLibrary()
	if err != nil {
		return fmt.Errorf("load tiles: %w", err)
	}
	if indexPath != "" {
		if err := index.Write(ix, indexPath); err != nil {
			return fmt.Errorf("write index: %w", err)
		}
	}

	// Match cells.
	prog := startProgress("matching cells")
	m, err := mosaic.Build(src, set, mosaic.Options{
		CellSize:  prof.CellSize,
		Method:    prof.Method,
		Histogram: hopts,
		Workers:   renderWorkers,
		Progress:  prog.update,
	})
	prog.finish()
	if err != nil {
		return fmt.Errorf("mosaic: %w", err)
	}

	// Write outputs.
	var outSize int64
	if enc != nil {
		data, err := enc.Encode(m.Compose(prof.TileSize, prof.TileSize), prof.Quality)
		if err != nil {
			return fmt.Errorf("encode %s: %w", enc.Format(), err)
		}
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		outSize = int64(len(data))
	}
	if err := writeText(m, renderText); err != nil {
		return err
	}

	printRenderReport(m, ix, prof, outPath, outSize, time.Since(start))
	return nil
}

func writeText(m *mosaic.Mosaic, path string) error {
	switch path {
	case "":
		return nil
	case "-":
		return m.WriteText(os.Stdout)
	}
	path, err := expandPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := m.WriteText(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printRenderReport(m *mosaic.Mosaic, ix *index.Index, prof profile.Profile, outPath string, outSize int64, elapsed time.Duration) {
	printTitle("emotim render complete")

	printRow("Grid:", "%d × %d cells (%d px each)", m.Cols, m.Rows, prof.CellSize)
	printRow("Method:", "%s", prof.Method)
	printRow("Tiles:", "%d loaded, %d reused from index", m.Set().Len(), ix.BuildInfo.Reused)
	if outPath != "" {
		printRow("Output:", "%s (%s)", outPath, formatBytes(outSize))
	}
	printRow("Time:", "%s", elapsed.Round(time.Millisecond))

	var low int
	for _, s := range m.Scores {
		if s == 0 {
			low++
		}
	}
	if low > 0 {
		fmt.Printf("  %s\n", warnStyle.Render(fmt.Sprintf("%d cells had no similar tile (score 0)", low)))
	}
	fmt.Println()

	// Most used tiles.
	type use struct {
		id    tileset.ID
		count int
	}
	var uses []use
	for id, n := range m.Usage() {
		if n > 0 {
			uses = append(uses, use{tileset.ID(id), n})
		}
	}
	sort.SliceStable(uses, func(i, j int) bool { return uses[i].count > uses[j].count })
	n := min(len(uses), 10)
	fmt.Printf("  Top %d tiles (%d distinct):\n", n, len(uses))
	for _, u := range uses[:n] {
		t := m.Set().Get(u.id)
		fmt.Printf("    %s  %-28s %5d cells  %s\n", t, truncKey(t.Key, 28), u.count, peakSwatches(t.Hist))
	}
	fmt.Println()
}

func peakSwatches(h *histogram.Histogram) string {
	var s string
	for i := len(h.Maxima) - 1; i >= 0; i-- {
		s += swatch(h.Maxima[i].Color.Extend().Hex())
	}
	return s
}
