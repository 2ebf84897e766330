// Package rng provides the single pseudo-random stream each sampler
// instance owns. Trial moves and the Integrator's accept/reject draw bind
// to the same *Stream so a run is fully determined by its seed.
package rng

import "math/rand/v2"

// Stream is the one-per-sampler random source. It is never shared across
// goroutines; an ensemble of workers (see internal/reduce) creates one
// Stream per worker, each derived from a distinct seed.
type Stream struct {
	r *rand.Rand
}

// NewStream seeds a new stream from a 64-bit seed. The seed fills the
// first PCG state word and the seed XORed with a fixed odd constant fills
// the second, so that sequential seeds
// (e.g. seedStart+0, seedStart+1, ... used by an ensemble) produce
// statistically independent streams.
func NewStream(seed uint64) *Stream {
	hi := seed ^ 0x9E3779B97F4A7C15
	src := rand.NewPCG(seed, hi)
	return &Stream{r: rand.New(src)}
}

// Seed reseeds the stream in place.
func (s *Stream) Seed(seed uint64) {
	hi := seed ^ 0x9E3779B97F4A7C15
	s.r = rand.New(rand.NewPCG(seed, hi))
}

// Float64 draws a uniform value in [0, 1).
func (s *Stream) Float64() float64 { return s.r.Float64() }

// Uniform draws a uniform value in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.r.Float64()
}

// IntN draws a uniform integer in [0, n).
func (s *Stream) IntN(n int) int { return s.r.IntN(n) }

// NormFloat64 draws a standard-normal deviate. Nothing in the module calls
// it; the core sampler itself never needs Gaussian noise.
func (s *Stream) NormFloat64() float64 { return s.r.NormFloat64() }
