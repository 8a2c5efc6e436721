package cmd

import (
	"fmt"
	"image"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 2)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func printTitle(s string) {
	fmt.Println()
	fmt.Println(titleStyle.Render(s))
	fmt.Println()
}

// printRow prints one "label value" line of a report.
func printRow(label string, format string, args ...any) {
	fmt.Printf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(fmt.Sprintf(format, args...)))
}

// swatch renders a two-cell block in the given #rrggbb color.
func swatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

// progress drives a spinner on stderr while a long step runs.
type progress struct {
	label string
	done  atomic.Int64
	total atomic.Int64
	stop  chan struct{}
	wg    sync.WaitGroup
}

func startProgress(label string) *progress {
	p := &progress{label: label, stop: make(chan struct{})}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		s := spinner.New()
		s.Spinner = spinner.Dot
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				fmt.Fprintf(os.Stderr, "\r%s %s %d/%d\n", okStyle.Render("✓"), p.label, p.done.Load(), p.total.Load())
				return
			case <-ticker.C:
				s, _ = s.Update(spinner.TickMsg{})
				fmt.Fprintf(os.Stderr, "\r%s %s %d/%d", s.View(), p.label, p.done.Load(), p.total.Load())
			}
		}
	}()
	return p
}

// update matches the mosaic.Options Progress signature.
func (p *progress) update(done, total int) {
	p.total.Store(int64(total))
	for {
		cur := p.done.Load()
		if int64(done) <= cur || p.done.CompareAndSwap(cur, int64(done)) {
			return
		}
	}
}

func (p *progress) finish() {
	close(p.stop)
	p.wg.Wait()
}

// openImage decodes an image file with every registered decoder.
func openImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return img, nil
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
