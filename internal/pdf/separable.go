package pdf

import "math"

// Separable is a SamplingFunction for densities of the form
// π(x) ∝ exp(-Σ_i φ(x_i)), i.e. independent per-coordinate potentials. Each
// proto-value is φ(x_i); the joint density is exp(-Σ proto). This covers a
// good share of textbook test integrands (Gaussian, double well, Laplace)
// and lets UpdatedAcceptance touch only the proto entries named by
// changedIdx — the rest cancel in the ratio because they are unchanged
// between old and new.
type Separable struct {
	Base
	phi func(coord int, v float64) float64
}

// NewSeparable builds a Separable PDF over ndim coordinates using the given
// per-coordinate potential. phi is called as phi(i, x_i); pass an index-
// independent function for an isotropic potential.
func NewSeparable(ndim int, phi func(coord int, v float64) float64) *Separable {
	s := &Separable{phi: phi}
	s.Init(ndim, ndim, s.protoFunction)
	return s
}

func (s *Separable) protoFunction(x, out []float64) {
	for i, v := range x {
		out[i] = s.phi(i, v)
	}
}

func (s *Separable) Value(proto []float64) float64 {
	sum := 0.0
	for _, p := range proto {
		sum += p
	}
	return safeExp(-sum)
}

func (s *Separable) Acceptance(protoOld, protoNew []float64) float64 {
	delta := 0.0
	for i := range protoOld {
		delta += protoOld[i] - protoNew[i]
	}
	return safeExp(delta)
}

func (s *Separable) UpdatedAcceptance(xold, xnew []float64, nchanged int, changedIdx []int, pvOld, pvNew []float64) float64 {
	delta := 0.0
	for k := 0; k < nchanged; k++ {
		i := changedIdx[k]
		pvNew[i] = s.phi(i, xnew[i])
		delta += pvOld[i] - pvNew[i]
	}
	return safeExp(delta)
}

// Gaussian is an isotropic Gaussian π(x) ∝ exp(-Σ x_i²) (mean 0, variance
// 1/2 per coordinate), the
// canonical test PDF used throughout the estimator and integrator tests.
func Gaussian(ndim int) *Separable {
	return NewSeparable(ndim, func(_ int, v float64) float64 { return v * v })
}

// DoubleWell is a bistable-potential model: each coordinate sits in a
// quartic double well V(x) = A(x²-B)², giving a bimodal marginal density
// exp(-V(x)) per coordinate.
func DoubleWell(ndim int, a, b float64) *Separable {
	return NewSeparable(ndim, func(_ int, v float64) float64 {
		d := v*v - b
		return a * d * d
	})
}

// ExponentialModulus is the Laplace-like density π(x) ∝ exp(-Σ|x_i|).
func ExponentialModulus(ndim int) *Separable {
	return NewSeparable(ndim, func(_ int, v float64) float64 { return math.Abs(v) })
}
