// Package export renders a walker scatter plot's Braille canvas to SVG,
// for saving a run's sampled trace to a file instead of (or alongside) the
// terminal preview.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/mcintegrate/internal/viz"
)

// CanvasToSVG renders a Braille canvas as a dot-grid SVG: one circle per
// lit sub-pixel, sized by scale.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff88">
`, width, height, width, height))

	// Braille dot-to-bit mapping, matching viz.Canvas's own layout.
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// WalkerScatterSVG scatters a sampled walker trace's first two coordinates
// onto a width x height Braille canvas and renders it straight to SVG,
// the combination cmd/mci uses to save a run's scatter plot to disk.
func WalkerScatterSVG(xs, ys []float64, width, height int, scale float64) string {
	return CanvasToSVG(viz.ScatterTrace(xs, ys, width, height), scale)
}
