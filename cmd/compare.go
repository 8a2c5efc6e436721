package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/emotim-cli/internal/histogram"
	"github.com/AnyUserName/emotim-cli/internal/similarity"
)

var compareProfile string

var compareCmd = &cobra.Command{
	Use:   "compare <image_a> <image_b>",
	Short: "Score two images with every similarity method",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&compareProfile, "profile", "p", "emoji", "mosaic profile for peak extraction")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(_ *cobra.Command, args []string) error {
	prof, err := resolveProfile(compareProfile, 0, "", 0, -1)
	if err != nil {
		return err
	}
	hists := make([]*histogram.Histogram, 2)
	for i, arg := range args {
		path, err := expandPath(arg)
		if err != nil {
			return err
		}
		img, err := openImage(path)
		if err != nil {
			return err
		}
		hists[i] = histogram.FromImage(img, prof.HistogramOptions())
	}

	printTitle(fmt.Sprintf("%s ↔ %s", args[0], args[1]))
	for _, m := range similarity.Methods() {
		self := similarity.Score(m, hists[0], hists[0])
		score := similarity.Score(m, hists[0], hists[1])
		rel := ""
		if self > 0 {
			rel = fmt.Sprintf("  (%.1f%% of self-score)", score/self*100)
		}
		printRow(m.String()+":", "%.4f%s", score, rel)
	}
	fmt.Println()
	return nil
}
