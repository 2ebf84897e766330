// Package trial implements the pluggable proposal kernels: all-coordinate
// and block/vector moves, each owning a set of tunable step sizes that the
// integrator's auto-tuner (findMRT2Step) scales toward a target acceptance
// rate.
package trial

import (
	"github.com/san-kum/mcintegrate/internal/rng"
	"github.com/san-kum/mcintegrate/internal/walker"
)

// Move is the TrialMove contract: propose a candidate from the current
// walker state, report the Metropolis-Hastings move-acceptance factor
// (1 for symmetric proposals), and expose the tunable step sizes
// findMRT2Step scales.
type Move interface {
	NDim() int

	// ComputeTrialMove proposes wlk.Xnew from wlk.Xold, sets Nchanged and
	// ChangedIdx, and returns the move-acceptance factor
	// q(old|new)/q(new|old) (1 for a symmetric proposal).
	ComputeTrialMove(wlk *walker.State) float64

	// InitializeProtoValues gives the mover a chance to cache anything it
	// needs about the starting position x (most movers need nothing).
	InitializeProtoValues(x []float64)
	NewToOld()
	OldToNew()

	// HasStepSizes reports whether this mover has any tunable step size
	// (findMRT2Step is a no-op when it does not).
	HasStepSizes() bool
	GetNStepSizes() int
	GetStepSize(i int) float64
	SetStepSize(i int, v float64)
	// GetStepSizeIndex maps coordinate index to the step-size bin
	// controlling it.
	GetStepSizeIndex(coord int) int
	// ScaleStepSizes multiplies every step size by factor, preserving
	// their relative proportions.
	ScaleStepSizes(factor float64)

	// BindRNG installs the random stream this mover draws from.
	BindRNG(r *rng.Stream)
}

// base holds the pieces common to every mover: the bound RNG stream and the
// step-size vector.
type base struct {
	ndim  int
	steps []float64
	r     *rng.Stream
}

func (b *base) NDim() int                    { return b.ndim }
func (b *base) HasStepSizes() bool           { return len(b.steps) > 0 }
func (b *base) GetNStepSizes() int           { return len(b.steps) }
func (b *base) GetStepSize(i int) float64    { return b.steps[i] }
func (b *base) SetStepSize(i int, v float64) { b.steps[i] = v }
func (b *base) BindRNG(r *rng.Stream)        { b.r = r }

func (b *base) ScaleStepSizes(factor float64) {
	for i := range b.steps {
		b.steps[i] *= factor
	}
}

func (b *base) InitializeProtoValues(x []float64) {} // plain movers cache nothing
func (b *base) NewToOld()                          {}
func (b *base) OldToNew()                          {}

// UniformAll perturbs every coordinate at once: x'_i = x_i + step*(U-0.5).
// It is a symmetric proposal (move-acceptance 1) with Nchanged == ndim.
type UniformAll struct {
	base
}

// NewUniformAll builds an all-coordinate uniform mover with one shared step
// size, initialized to initStep.
func NewUniformAll(ndim int, initStep float64) *UniformAll {
	m := &UniformAll{base: base{ndim: ndim, steps: []float64{initStep}}}
	return m
}

func (m *UniformAll) GetStepSizeIndex(coord int) int { return 0 }

func (m *UniformAll) ComputeTrialMove(wlk *walker.State) float64 {
	step := m.steps[0]
	for i := 0; i < m.ndim; i++ {
		wlk.Xnew[i] = wlk.Xold[i] + step*(m.r.Float64()-0.5)
	}
	wlk.MarkAllChanged()
	return 1.0
}

// UniformBlock perturbs a contiguous block of veclen coordinates chosen
// uniformly at random, leaving the rest of Xnew equal to Xold. veclen == 1
// recovers a single-coordinate (particle-at-a-time) move; each type's
// block boundary is given by typeEnds (ascending, exclusive upper bounds),
// so different coordinate ranges can carry independent step sizes.
type UniformBlock struct {
	base
	veclen   int
	nblocks  int
	typeEnds []int // exclusive upper bound of each type, ascending
}

// NewUniformBlock builds a block mover over ndim coordinates grouped into
// blocks of veclen contiguous coordinates each (ndim must be a multiple of
// veclen). typeEnds partitions the ndim/veclen blocks into ntypes step-size
// groups; pass nil for a single type covering everything.
func NewUniformBlock(ndim, veclen int, initSteps []float64, typeEnds []int) *UniformBlock {
	nblocks := ndim / veclen
	if typeEnds == nil {
		typeEnds = []int{nblocks}
	}
	steps := append([]float64{}, initSteps...)
	return &UniformBlock{
		base:     base{ndim: ndim, steps: steps},
		veclen:   veclen,
		nblocks:  nblocks,
		typeEnds: typeEnds,
	}
}

// blockType returns which step-size bin governs block b.
func (m *UniformBlock) blockType(b int) int {
	for t, end := range m.typeEnds {
		if b < end {
			return t
		}
	}
	return len(m.typeEnds) - 1
}

func (m *UniformBlock) GetStepSizeIndex(coord int) int {
	block := coord / m.veclen
	return m.blockType(block)
}

func (m *UniformBlock) ComputeTrialMove(wlk *walker.State) float64 {
	copy(wlk.Xnew, wlk.Xold)
	b := m.r.IntN(m.nblocks)
	typ := m.blockType(b)
	step := m.steps[typ]

	start := b * m.veclen
	for k := 0; k < m.veclen; k++ {
		i := start + k
		wlk.Xnew[i] = wlk.Xold[i] + step*(m.r.Float64()-0.5)
		wlk.ChangedIdx[k] = i
	}
	wlk.Nchanged = m.veclen
	return 1.0 // uniform block perturbation is symmetric
}

// maxStepIndex returns the maximum step-size index referenced by any
// coordinate. Nothing calls it; the integrator's clamp scan sizes itself
// with GetNStepSizes.
func (m *UniformBlock) maxStepIndex() int {
	max := 0
	for b := 0; b < m.nblocks; b++ {
		if t := m.blockType(b); t > max {
			max = t
		}
	}
	return max
}
