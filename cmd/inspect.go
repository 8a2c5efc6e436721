package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/emotim-cli/internal/encoder"
	"github.com/AnyUserName/emotim-cli/internal/hcl"
	"github.com/AnyUserName/emotim-cli/internal/histogram"
)

var (
	inspectTable     bool
	inspectReduced   string
	inspectMaxMaxima int
	inspectMinMass   float64
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <image>",
	Short: "Print the color histogram maxima of an image",
	Long: `Converts an image to coarse hue/chroma/lightness, builds its histogram
and prints the significant peaks with their mass and color.

--table also prints the smoothed histogram, one block per hue.
--reduced writes the coarse-depth image back out as a preview.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.BoolVar(&inspectTable, "table", false, "print the smoothed histogram")
	f.StringVar(&inspectReduced, "reduced", "", "write a coarse-depth preview image")
	f.IntVar(&inspectMaxMaxima, "max-maxima", histogram.DefaultMaxMaxima, "peaks kept")
	f.Float64Var(&inspectMinMass, "min-mass", histogram.DefaultMinMass, "peak mass floor")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	path, err := expandPath(args[0])
	if err != nil {
		return err
	}
	opts := histogram.Options{MaxMaxima: inspectMaxMaxima, MinMass: inspectMinMass}
	if err := opts.Validate(); err != nil {
		return err
	}
	img, err := openImage(path)
	if err != nil {
		return err
	}

	coarse := hcl.FromImage(img).Reduce()
	h := histogram.New(coarse, opts)

	printTitle(path)
	b := img.Bounds()
	printRow("Size:", "%d × %d", b.Dx(), b.Dy())
	printRow("Opaque:", "%d of %d pixels", h.Total(), b.Dx()*b.Dy())
	printRow("Maxima:", "%d", len(h.Maxima))
	fmt.Println()
	for i := len(h.Maxima) - 1; i >= 0; i-- {
		m := h.Maxima[i]
		hex := m.Color.Extend().Hex()
		fmt.Printf("    %s  h=%2d c=%2d l=%2d  mass %8.3f  %s\n", swatch(hex), m.Color.H, m.Color.C, m.Color.L, m.Mass, hex)
	}
	fmt.Println()

	if inspectTable {
		if err := h.WriteTable(os.Stdout); err != nil {
			return err
		}
	}

	if inspectReduced != "" {
		out, err := expandPath(inspectReduced)
		if err != nil {
			return err
		}
		enc, err := encoder.NewRegistry().ForPath(out)
		if err != nil {
			return err
		}
		data, err := enc.Encode(coarse.Extend().NRGBA(), encoder.DefaultQuality)
		if err != nil {
			return fmt.Errorf("encode preview: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		printRow("Preview:", "%s", out)
	}
	return nil
}
