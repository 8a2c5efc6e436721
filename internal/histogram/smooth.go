package histogram

// KernelWeight normalizes smoothed values and maxima masses.
// The kernel is the outer product of {1,2,1} along each axis.
const KernelWeight = 64

// neighbour is one of the 26 offsets around a cell.
type neighbour struct {
	dh, dc, dl int
	weight     uint32
	// before is set when the neighbour precedes the centre in (h, c, l)
	// order. Such neighbours win ties during peak detection.
	before bool
}

var neighbours = buildNeighbours()

func buildNeighbours() [26]neighbour {
	var ns [26]neighbour
	i := 0
	for dh := -1; dh <= 1; dh++ {
		for dc := -1; dc <= 1; dc++ {
			for dl := -1; dl <= 1; dl++ {
				if dh == 0 && dc == 0 && dl == 0 {
					continue
				}
				ns[i] = neighbour{
					dh: dh, dc: dc, dl: dl,
					weight: uint32((2 - abs(dh)) * (2 - abs(dc)) * (2 - abs(dl))),
					before: dh < 0 || (dh == 0 && dc < 0) || (dh == 0 && dc == 0 && dl < 0),
				}
				i++
			}
		}
	}
	return ns
}

// Smooth convolves dist with the 3×3×3 kernel, leaving the centre cell
// out of its own sum. Only interior cells are computed; the outer shell of
// the result stays 0.
//
// The result measures neighbourhood density and is used to locate peaks,
// not to blur the image.
func Smooth(dist *Field) Field {
	var out Field
	for h := 1; h < Size-1; h++ {
		for c := 1; c < Size-1; c++ {
			for l := 1; l < Size-1; l++ {
				var sum uint32
				for _, n := range neighbours {
					sum += n.weight * dist[h+n.dh][c+n.dc][l+n.dl]
				}
				out[h][c][l] = sum
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
