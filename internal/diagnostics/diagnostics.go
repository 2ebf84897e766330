// Package diagnostics implements step observers that monitor sampler
// health — acceptance rate and walker displacement — without altering the
// Markov chain itself.
package diagnostics

import "math"

// Tracker is the common shape every diagnostic in this package exposes: a
// running value that can be read at any time and zeroed for a fresh
// measurement window.
type Tracker interface {
	Name() string
	Value() float64
	Reset()
}

// AcceptanceTracker reports the cumulative fraction of steps accepted
// since the last Reset.
type AcceptanceTracker struct {
	name     string
	accepted int
	total    int
}

// NewAcceptanceTracker builds an acceptance-rate tracker.
func NewAcceptanceTracker() *AcceptanceTracker {
	return &AcceptanceTracker{name: "acceptance_rate"}
}

func (a *AcceptanceTracker) Name() string { return a.name }

func (a *AcceptanceTracker) OnStep(step int, x []float64, accepted bool) {
	a.total++
	if accepted {
		a.accepted++
	}
}

func (a *AcceptanceTracker) Value() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.total)
}

func (a *AcceptanceTracker) Reset() { a.accepted, a.total = 0, 0 }

// DisplacementTracker reports the running mean Euclidean displacement
// between consecutive kept walker positions — large values relative to
// the domain size flag a step size still too coarse even after tuning;
// near-zero values flag an effectively frozen chain.
type DisplacementTracker struct {
	name    string
	prev    []float64
	have    bool
	total   float64
	samples int
}

// NewDisplacementTracker builds a displacement tracker.
func NewDisplacementTracker() *DisplacementTracker {
	return &DisplacementTracker{name: "mean_displacement"}
}

func (d *DisplacementTracker) Name() string { return d.name }

func (d *DisplacementTracker) OnStep(step int, x []float64, accepted bool) {
	if !d.have {
		d.prev = append([]float64{}, x...)
		d.have = true
		return
	}
	sum := 0.0
	for i, v := range x {
		delta := v - d.prev[i]
		sum += delta * delta
	}
	d.total += math.Sqrt(sum)
	d.samples++
	copy(d.prev, x)
}

func (d *DisplacementTracker) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.total / float64(d.samples)
}

func (d *DisplacementTracker) Reset() {
	d.have = false
	d.total = 0
	d.samples = 0
}
