package mosaic

import (
	"bufio"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/emotim-cli/internal/tileset"
)

// Compose pastes the chosen tiles onto a transparent canvas of
// Cols*tileW by Rows*tileH pixels. When tileW or tileH is not positive the
// size of the first tile in the set is used. Each distinct tile is resized
// at most once.
func (m *Mosaic) Compose(tileW, tileH int) *image.NRGBA {
	if tileW <= 0 || tileH <= 0 {
		b := m.set.Get(0).Image.Bounds()
		tileW, tileH = b.Dx(), b.Dy()
	}
	canvas := imaging.New(m.Cols*tileW, m.Rows*tileH, color.Transparent)

	scaled := make(map[tileset.ID]image.Image)
	for i, id := range m.Cells {
		src, ok := scaled[id]
		if !ok {
			src = fit(m.set.Get(id).Image, tileW, tileH)
			scaled[id] = src
		}
		col, row := i%m.Cols, i/m.Cols
		dst := image.Rect(col*tileW, row*tileH, (col+1)*tileW, (row+1)*tileH)
		draw.Draw(canvas, dst, src, src.Bounds().Min, draw.Src)
	}
	return canvas
}

func fit(img image.Image, w, h int) image.Image {
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// WriteText writes one line per mosaic row, made of the identifiers of the
// chosen tiles.
func (m *Mosaic) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, id := range m.Cells {
		bw.WriteString(m.set.Get(id).String())
		if (i+1)%m.Cols == 0 {
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

func (m *Mosaic) String() string {
	var sb strings.Builder
	m.WriteText(&sb)
	return sb.String()
}
