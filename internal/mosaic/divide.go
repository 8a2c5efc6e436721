package mosaic

import (
	"fmt"
	"image"
)

// Divide splits bounds into a grid of square cells of the given size,
// row by row starting at the top-left corner. Pixels on the right and
// bottom edges that do not fill a whole cell are dropped.
func Divide(bounds image.Rectangle, cell int) (cols, rows int, cells []image.Rectangle, err error) {
	if cell <= 0 {
		return 0, 0, nil, fmt.Errorf("%w: %d", ErrCellSize, cell)
	}
	cols, rows = bounds.Dx()/cell, bounds.Dy()/cell
	if cols == 0 || rows == 0 {
		return 0, 0, nil, fmt.Errorf("%w: %d exceeds image %dx%d",
			ErrCellSize, cell, bounds.Dx(), bounds.Dy())
	}
	cells = make([]image.Rectangle, 0, cols*rows)
	for r := 0; r < rows; r++ {
		y := bounds.Min.Y + r*cell
		for c := 0; c < cols; c++ {
			x := bounds.Min.X + c*cell
			cells = append(cells, image.Rect(x, y, x+cell, y+cell))
		}
	}
	return cols, rows, cells, nil
}
