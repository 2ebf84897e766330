// Package domain maps raw walker coordinates into the valid integration
// region: either an unbounded pass-through or an orthorhombic periodic box.
package domain

import (
	"math"

	"github.com/san-kum/mcintegrate/internal/walker"
)

// Domain folds coordinates into the valid region and reports its volume.
type Domain interface {
	// NDim is the number of coordinates this domain governs.
	NDim() int
	// IsFinite reports whether the domain has finite volume.
	IsFinite() bool
	// Volume returns the domain's volume (Inf for an unbounded domain).
	Volume() float64
	// Sizes fills out[i] with the extent of dimension i (Inf if unbounded).
	Sizes(out []float64)
	// ApplyAll folds every coordinate of x in place.
	ApplyAll(x []float64)
	// ApplySelective folds only the coordinates named by idx[:n].
	ApplySelective(x []float64, idx []int, n int)
	// ApplyWalker folds xnew, using the selective path when
	// wlk.Nchanged < ndim and the full path otherwise.
	ApplyWalker(wlk *walker.State)
	// ScaleToDomain maps a unit vector u (each coordinate in [0,1)) into
	// domain coordinates in place; used by the uniform-random fallback.
	ScaleToDomain(u []float64)
}

// Unbounded is a no-op domain covering all of R^ndim.
type Unbounded struct {
	ndim int
}

// NewUnbounded constructs an unbounded domain of the given dimension.
func NewUnbounded(ndim int) *Unbounded { return &Unbounded{ndim: ndim} }

func (u *Unbounded) NDim() int       { return u.ndim }
func (u *Unbounded) IsFinite() bool  { return false }
func (u *Unbounded) Volume() float64 { return math.Inf(1) }

func (u *Unbounded) Sizes(out []float64) {
	for i := range out {
		out[i] = math.Inf(1)
	}
}

func (u *Unbounded) ApplyAll(x []float64)                         {}
func (u *Unbounded) ApplySelective(x []float64, idx []int, n int) {}
func (u *Unbounded) ApplyWalker(wlk *walker.State)                {}

func (u *Unbounded) ScaleToDomain(unit []float64) {
	// No natural scale exists for an unbounded domain; leave values as the
	// [0,1) draw they came in as. Callers should install a finite domain
	// (or a sampling function) before relying on doStepRandom.
}

// OrthoPeriodic is an orthorhombic box with per-dimension bounds, periodic
// at the boundary: a coordinate outside [lb, ub) is wrapped back in by
// repeated addition/subtraction of the extent.
type OrthoPeriodic struct {
	ndim int
	lb   []float64
	ub   []float64
	ext  []float64
	vol  float64
}

// NewOrthoPeriodic builds a box with identical bounds on every dimension.
func NewOrthoPeriodic(ndim int, lb, ub float64) *OrthoPeriodic {
	lbs := make([]float64, ndim)
	ubs := make([]float64, ndim)
	for i := range lbs {
		lbs[i] = lb
		ubs[i] = ub
	}
	return NewOrthoPeriodicVec(lbs, ubs)
}

// NewOrthoPeriodicVec builds a box with per-dimension bounds.
func NewOrthoPeriodicVec(lb, ub []float64) *OrthoPeriodic {
	ndim := len(lb)
	ext := make([]float64, ndim)
	vol := 1.0
	for i := 0; i < ndim; i++ {
		ext[i] = ub[i] - lb[i]
		vol *= ext[i]
	}
	return &OrthoPeriodic{ndim: ndim, lb: append([]float64{}, lb...), ub: append([]float64{}, ub...), ext: ext, vol: vol}
}

func (d *OrthoPeriodic) NDim() int       { return d.ndim }
func (d *OrthoPeriodic) IsFinite() bool  { return true }
func (d *OrthoPeriodic) Volume() float64 { return d.vol }

func (d *OrthoPeriodic) Sizes(out []float64) { copy(out, d.ext) }

func (d *OrthoPeriodic) fold(i int, v float64) float64 {
	lb, ub, ext := d.lb[i], d.ub[i], d.ext[i]
	for v < lb {
		v += ext
	}
	for v >= ub {
		v -= ext
	}
	return v
}

func (d *OrthoPeriodic) ApplyAll(x []float64) {
	for i := range x {
		x[i] = d.fold(i, x[i])
	}
}

func (d *OrthoPeriodic) ApplySelective(x []float64, idx []int, n int) {
	for k := 0; k < n; k++ {
		i := idx[k]
		x[i] = d.fold(i, x[i])
	}
}

func (d *OrthoPeriodic) ApplyWalker(wlk *walker.State) {
	if wlk.Nchanged < len(wlk.Xnew) {
		d.ApplySelective(wlk.Xnew, wlk.ChangedIdx, wlk.Nchanged)
	} else {
		d.ApplyAll(wlk.Xnew)
	}
}

func (d *OrthoPeriodic) ScaleToDomain(u []float64) {
	for i := range u {
		u[i] = d.lb[i] + u[i]*d.ext[i]
	}
}
