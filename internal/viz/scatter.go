package viz

// ScatterTrace renders the first two coordinates of a walker trace onto a
// fresh Braille canvas, scaling the trace's bounding box to fill the
// available sub-pixel grid.
func ScatterTrace(xs, ys []float64, width, height int) *Canvas {
	c := NewCanvas(width, height)
	if len(xs) == 0 {
		return c
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	subW := width * 2
	subH := height * 4
	for i := range xs {
		px := int((xs[i] - minX) / rangeX * float64(subW-1))
		py := subH - 1 - int((ys[i]-minY)/rangeY*float64(subH-1))
		c.Set(px, py)
	}
	return c
}
