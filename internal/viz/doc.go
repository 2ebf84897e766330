// Package viz provides terminal-based visualization for sampler output.
//
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [ScatterTrace]: plots a 2D walker trace onto a Canvas
//   - Lip Gloss-based progress bar and sparkline widgets for the live
//     progress view
package viz
