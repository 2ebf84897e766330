package viz

import (
	"strings"
)

// pixelMap maps a 2x4 sub-pixel position to its Braille dot bit, Unicode
// offset 0x2800:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Braille-dot grid used to render a walker's sampled
// trajectory as a terminal scatter plot; each character cell holds 2x4
// sub-pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

// NewCanvas builds an empty canvas of the given character dimensions.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // empty braille char
		}
	}
	return c
}

// Set lights a sub-pixel at (x, y); the canvas spans (Width*2) x
// (Height*4) sub-pixels. Out-of-range coordinates are silently ignored,
// since a scatter plot's bounding box is floating point and can round
// just past an edge.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// Clear resets every cell to empty.
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// String renders the canvas as terminal text, one line per row.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}
