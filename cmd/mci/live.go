package main

import (
	"github.com/san-kum/mcintegrate/internal/diagnostics"
	"github.com/san-kum/mcintegrate/internal/tui"
)

// traceObserver records every kept step's acceptance rate and first two
// coordinates (for a scatter plot), and optionally pushes a live Snapshot
// to a tui.Feed for --live to render.
type traceObserver struct {
	acc    *diagnostics.AcceptanceTracker
	feed   tui.Feed
	nsteps int
	ndim   int
	sum    float64
	n      int
	xs, ys []float64
}

func newTraceObserver(ndim, nsteps int, feed tui.Feed) *traceObserver {
	return &traceObserver{
		acc:    diagnostics.NewAcceptanceTracker(),
		feed:   feed,
		nsteps: nsteps,
		ndim:   ndim,
	}
}

func (o *traceObserver) OnStep(step int, x []float64, accepted bool) {
	o.acc.OnStep(step, x, accepted)
	o.sum += x[0]
	o.n++
	o.xs = append(o.xs, x[0])
	if o.ndim >= 2 {
		o.ys = append(o.ys, x[1])
	} else {
		o.ys = append(o.ys, float64(step))
	}

	if o.feed == nil {
		return
	}
	snap := tui.Snapshot{
		Step:           step + 1,
		NSteps:         o.nsteps,
		AcceptanceRate: o.acc.Value(),
		RunningMean:    o.sum / float64(o.n),
	}
	select {
	case o.feed <- snap:
	default:
		// the TUI is still draining the previous tick; drop this one rather
		// than block the sampling loop.
	}
}
