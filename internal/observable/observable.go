// Package observable implements ObservableFunction, the Accumulator storage
// strategies (Simple/Block/Full), and the ObservableContainer that drives
// them through their allocate/accumulate/finalize/estimate/reset lifecycle.
package observable

import (
	"fmt"

	"github.com/san-kum/mcintegrate/internal/estimator"
	"github.com/san-kum/mcintegrate/internal/mcierr"
	"github.com/san-kum/mcintegrate/internal/walker"
)

// Function computes one or more observable quantities from a walker
// position. NObs gives the output width; ComputeObservables fills out with
// that many values for position x.
type Function interface {
	NDim() int
	NObs() int
	ComputeObservables(x []float64, out []float64)
}

// Selective is the optional fast path a Function may implement: recompute
// out using only the coordinates flagged true in flags, given that out
// already holds the result for the previous position. Containers fall back
// to ComputeObservables transparently when a Function doesn't implement
// this.
type Selective interface {
	UpdatedObservable(x []float64, flags []bool, out []float64)
}

// FuncAdapter wraps a plain function as a Function, for demo observables
// that need no internal state (the common case — most observables here are
// pure functions of the walker position).
type FuncAdapter struct {
	ndim, nobs int
	compute    func(x []float64, out []float64)
}

// NewFunc builds a Function from a stateless compute callback.
func NewFunc(ndim, nobs int, compute func(x, out []float64)) *FuncAdapter {
	return &FuncAdapter{ndim: ndim, nobs: nobs, compute: compute}
}

func (f *FuncAdapter) NDim() int { return f.ndim }
func (f *FuncAdapter) NObs() int { return f.nobs }
func (f *FuncAdapter) ComputeObservables(x []float64, out []float64) {
	f.compute(x, out)
}

// Identity observes x_i itself, one observable per coordinate.
func Identity(ndim int) *FuncAdapter {
	return NewFunc(ndim, ndim, func(x, out []float64) { copy(out, x) })
}

// Quadratic observes x_i², used by the Gaussian second-moment scenario.
func Quadratic(ndim int) *FuncAdapter {
	return NewFunc(ndim, ndim, func(x, out []float64) {
		for i, v := range x {
			out[i] = v * v
		}
	})
}

// PerParticleSquare observes x_i^2 per coordinate (nobs == ndim) and
// implements Selective: only the flagged coordinates are recomputed, the
// rest are left as whatever out already held. Used to exercise the
// selective-update fast path against a particle-at-a-time trial move.
type PerParticleSquare struct {
	ndim int
}

// NewPerParticleSquare builds a per-coordinate square observable over ndim
// coordinates.
func NewPerParticleSquare(ndim int) *PerParticleSquare { return &PerParticleSquare{ndim: ndim} }

func (p *PerParticleSquare) NDim() int { return p.ndim }
func (p *PerParticleSquare) NObs() int { return p.ndim }

func (p *PerParticleSquare) ComputeObservables(x []float64, out []float64) {
	for i, v := range x {
		out[i] = v * v
	}
}

func (p *PerParticleSquare) UpdatedObservable(x []float64, flags []bool, out []float64) {
	for i, changed := range flags {
		if changed {
			out[i] = x[i] * x[i]
		}
	}
}

// Kind selects the storage strategy an Accumulator uses.
type Kind int

const (
	// KindSimple keeps only a running sum; O(1) memory, no blocking
	// information survives so only Uncorrelated estimation applies.
	KindSimple Kind = iota
	// KindBlock partitions accumulated samples into a fixed number of
	// blocks and stores each block's mean.
	KindBlock
	// KindFull stores every accumulated sample, enabling the Correlated
	// (Flyvbjerg-Petersen) and MJBlocker estimators.
	KindFull
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindBlock:
		return "block"
	case KindFull:
		return "full"
	default:
		return "unknown"
	}
}

// Accumulator stores weighted samples of one observable's nobs components
// across the run and reduces them into a final estimate at finalize time.
// The lifecycle is strict: Allocate, then any number of Accumulate calls,
// then Finalize exactly once, then Estimate (any number of times) until
// Reset or Deallocate restart the cycle.
type Accumulator interface {
	Kind() Kind
	NObs() int
	Allocate(nobs int)
	// Accumulate adds one sample (length NObs()) with the given sample
	// index (0-based count of samples kept after Equil/Nskip filtering)
	// to the running storage.
	Accumulate(obs []float64, step int)
	Finalize(nsteps int)
	Finalized() bool
	// StoredData exposes whatever Finalize produced, in a form the
	// estimator package knows how to interpret for this Kind:
	//   KindSimple -> one row, the mean
	//   KindBlock  -> nblocks rows, each a block mean
	//   KindFull   -> one row per accumulated sample
	StoredData() [][]float64
	Reset()
	Deallocate()
}

// simpleAcc keeps a running sum per observable component.
type simpleAcc struct {
	nobs      int
	sum       []float64
	n         int
	mean      []float64
	finalized bool
}

// NewSimple builds a Simple accumulator.
func NewSimple() *simpleAcc { return &simpleAcc{} }

func (a *simpleAcc) Kind() Kind { return KindSimple }
func (a *simpleAcc) NObs() int  { return a.nobs }

func (a *simpleAcc) Allocate(nobs int) {
	a.nobs = nobs
	a.sum = make([]float64, nobs)
	a.mean = make([]float64, nobs)
	a.n = 0
	a.finalized = false
}

func (a *simpleAcc) Accumulate(obs []float64, step int) {
	for i, v := range obs {
		a.sum[i] += v
	}
	a.n++
}

func (a *simpleAcc) Finalize(nsteps int) {
	n := a.n
	if n == 0 {
		n = 1
	}
	for i, s := range a.sum {
		a.mean[i] = s / float64(n)
	}
	a.finalized = true
}

func (a *simpleAcc) Finalized() bool { return a.finalized }

func (a *simpleAcc) StoredData() [][]float64 { return [][]float64{a.mean} }

func (a *simpleAcc) Reset() {
	for i := range a.sum {
		a.sum[i] = 0
	}
	a.n = 0
	a.finalized = false
}

func (a *simpleAcc) Deallocate() {
	a.sum, a.mean = nil, nil
	a.nobs, a.n = 0, 0
	a.finalized = false
}

// blockAcc stores every accumulated sample, then partitions them into a
// fixed number of contiguous blocks and reduces each to its mean at
// Finalize, once the true sample count is known.
type blockAcc struct {
	nobs      int
	nblocks   int
	rows      [][]float64
	means     [][]float64
	finalized bool
}

// NewBlock builds a Block accumulator with a fixed number of blocks.
func NewBlock(nblocks int) *blockAcc { return &blockAcc{nblocks: nblocks} }

func (a *blockAcc) Kind() Kind { return KindBlock }
func (a *blockAcc) NObs() int  { return a.nobs }

func (a *blockAcc) Allocate(nobs int) {
	a.nobs = nobs
	a.rows = a.rows[:0]
	a.means = nil
	a.finalized = false
}

func (a *blockAcc) Accumulate(obs []float64, step int) {
	row := make([]float64, len(obs))
	copy(row, obs)
	a.rows = append(a.rows, row)
}

// Finalize partitions the accumulated rows into nblocks contiguous blocks
// (the last absorbing any remainder) and reduces each to its mean.
func (a *blockAcc) Finalize(nsteps int) {
	n := len(a.rows)
	nblocks := a.nblocks
	if nblocks < 1 {
		nblocks = 1
	}
	if nblocks > n {
		nblocks = n
	}
	if nblocks == 0 {
		a.means = nil
		a.finalized = true
		return
	}
	perBlock := n / nblocks
	a.means = make([][]float64, nblocks)
	for b := 0; b < nblocks; b++ {
		start := b * perBlock
		end := start + perBlock
		if b == nblocks-1 {
			end = n
		}
		mean := make([]float64, a.nobs)
		for _, r := range a.rows[start:end] {
			for i, v := range r {
				mean[i] += v
			}
		}
		count := float64(end - start)
		for i := range mean {
			mean[i] /= count
		}
		a.means[b] = mean
	}
	a.finalized = true
}

func (a *blockAcc) Finalized() bool { return a.finalized }

func (a *blockAcc) StoredData() [][]float64 { return a.means }

func (a *blockAcc) Reset() {
	a.rows = a.rows[:0]
	a.means = nil
	a.finalized = false
}

func (a *blockAcc) Deallocate() {
	a.rows, a.means = nil, nil
	a.nobs = 0
	a.finalized = false
}

// fullAcc stores every accumulated sample verbatim, the only storage that
// supports the Correlated (Flyvbjerg-Petersen) and MJBlocker estimators.
type fullAcc struct {
	nobs      int
	rows      [][]float64
	finalized bool
}

// NewFull builds a Full accumulator. cap hints the expected sample count
// (post-nskip) to avoid reallocation; 0 is fine.
func NewFull(capHint int) *fullAcc {
	return &fullAcc{rows: make([][]float64, 0, capHint)}
}

func (a *fullAcc) Kind() Kind { return KindFull }
func (a *fullAcc) NObs() int  { return a.nobs }

func (a *fullAcc) Allocate(nobs int) {
	a.nobs = nobs
	a.rows = a.rows[:0]
	a.finalized = false
}

func (a *fullAcc) Accumulate(obs []float64, step int) {
	row := make([]float64, len(obs))
	copy(row, obs)
	a.rows = append(a.rows, row)
}

func (a *fullAcc) Finalize(nsteps int) { a.finalized = true }
func (a *fullAcc) Finalized() bool     { return a.finalized }
func (a *fullAcc) StoredData() [][]float64 { return a.rows }

func (a *fullAcc) Reset() {
	a.rows = a.rows[:0]
	a.finalized = false
}

func (a *fullAcc) Deallocate() {
	a.rows = nil
	a.nobs = 0
	a.finalized = false
}

// NewAccumulator builds the Accumulator matching kind; nblocks is used only
// for KindBlock and capHint only for KindFull.
func NewAccumulator(kind Kind, nblocks, capHint int) Accumulator {
	switch kind {
	case KindSimple:
		return NewSimple()
	case KindBlock:
		return NewBlock(nblocks)
	case KindFull:
		return NewFull(capHint)
	default:
		return NewSimple()
	}
}

// Entry is one observable installed in a Container, paired with its
// accumulation strategy, skip stride, and equilibration warm-up length.
type Entry struct {
	Name  string
	Fn    Function
	Acc   Accumulator
	Nskip     int            // evaluate this observable every Nskip-th kept step (>=1)
	Equil     int            // ignore every step whose index is below Equil
	EstimKind estimator.Kind // estimator paired with this observable at Estimate time

	obsBuf       []float64
	flagsChanged []bool // per-coordinate mask: changed since last evaluation
	evaluated    bool   // obsBuf holds a real evaluation, not just its zero value
	seen         int
	skippedN     int
}

// nChangedFlags counts how many coordinates are marked in e.flagsChanged.
func (e *Entry) nChangedFlags() int {
	n := 0
	for _, f := range e.flagsChanged {
		if f {
			n++
		}
	}
	return n
}

// Container aggregates zero or more observables, each with its own
// accumulation strategy, and drives them through the shared lifecycle the
// Integrator calls once per kept Metropolis step.
type Container struct {
	entries []*Entry
	ndim    int
}

// NewContainer builds an observable container bound to a walker of the
// given dimensionality (used only to validate each Function's NDim).
func NewContainer(ndim int) *Container { return &Container{ndim: ndim} }

// AddObservable installs fn under name with the given accumulation kind,
// nskip stride, and equilibration length. It rejects a dimension mismatch
// or a non-positive nskip, matching the run's InvalidConfiguration policy.
func (c *Container) AddObservable(name string, fn Function, kind Kind, nblocks, capHint, nskip, equil int, estimKind estimator.Kind) error {
	if fn.NDim() != c.ndim {
		return mcierr.NewConfigError("AddObservable", fmt.Sprintf("observable %q expects ndim=%d, container has ndim=%d", name, fn.NDim(), c.ndim))
	}
	if nskip < 1 {
		return mcierr.NewConfigError("AddObservable", fmt.Sprintf("observable %q: nskip must be >= 1, got %d", name, nskip))
	}
	if equil < 0 {
		return mcierr.NewConfigError("AddObservable", fmt.Sprintf("observable %q: equil must be >= 0, got %d", name, equil))
	}
	if kind == KindBlock && nblocks < 1 {
		return mcierr.NewConfigError("AddObservable", fmt.Sprintf("observable %q: block accumulator needs nblocks >= 1", name))
	}
	if estimKind == estimator.KindNoop && equil > 0 {
		return mcierr.NewConfigError("AddObservable", fmt.Sprintf("observable %q: a Noop estimator cannot be paired with an equilibration warm-up", name))
	}
	e := &Entry{
		Name:         name,
		Fn:           fn,
		Acc:          NewAccumulator(kind, nblocks, capHint),
		Nskip:        nskip,
		Equil:        equil,
		EstimKind:    estimKind,
		obsBuf:       make([]float64, fn.NObs()),
		flagsChanged: make([]bool, c.ndim),
	}
	c.entries = append(c.entries, e)
	return nil
}

// Entries exposes the installed observables in installation order.
func (c *Container) Entries() []*Entry { return c.entries }

// Len reports the number of installed observables.
func (c *Container) Len() int { return len(c.entries) }

// Allocate prepares every accumulator's storage for a fresh run.
func (c *Container) Allocate() {
	for _, e := range c.entries {
		e.Acc.Allocate(e.Fn.NObs())
		e.seen = 0
		e.skippedN = 0
		e.evaluated = false
		for i := range e.flagsChanged {
			e.flagsChanged[i] = false
		}
	}
}

// Observe is told about one completed Metropolis step — the walker's
// committed position plus which coordinates moved and whether the step was
// accepted — and accumulates every installed observable, honoring each
// entry's Equil warm-up and Nskip stride independently.
//
// On a skipped (non-evaluation) step the entry only folds the step's
// changed coordinates into its pending mask; on an evaluation step, a
// rejected step re-records the previous value, and an accepted step
// re-evaluates — using the selective fast path when the Function supports
// it and fewer than ndim coordinates are pending, falling back to a full
// evaluation otherwise.
func (c *Container) Observe(wlk *walker.State, step int) {
	for _, e := range c.entries {
		if step < e.Equil {
			continue
		}
		e.seen++
		if wlk.Nchanged < len(e.flagsChanged) {
			for k := 0; k < wlk.Nchanged; k++ {
				e.flagsChanged[wlk.ChangedIdx[k]] = true
			}
		} else {
			for i := range e.flagsChanged {
				e.flagsChanged[i] = true
			}
		}

		if (e.seen-1)%e.Nskip != 0 {
			continue
		}

		switch {
		case !wlk.Accepted && e.evaluated:
			// store the previous value again; obsBuf already holds it.
		default:
			nChanged := e.nChangedFlags()
			sel, ok := e.Fn.(Selective)
			if ok && e.evaluated && nChanged < len(e.flagsChanged) {
				sel.UpdatedObservable(wlk.Xold, e.flagsChanged, e.obsBuf)
			} else {
				e.Fn.ComputeObservables(wlk.Xold, e.obsBuf)
			}
			e.evaluated = true
		}
		for i := range e.flagsChanged {
			e.flagsChanged[i] = false
		}
		e.Acc.Accumulate(e.obsBuf, e.skippedN)
		e.skippedN++
	}
}

// Finalize closes every accumulator's storage using the number of samples
// that entry actually kept (post equil/nskip filtering).
func (c *Container) Finalize() {
	for _, e := range c.entries {
		e.Acc.Finalize(e.skippedN)
	}
}

// Reset rewinds every accumulator for another accumulation pass without
// reallocating.
func (c *Container) Reset() {
	for _, e := range c.entries {
		e.Acc.Reset()
		e.seen = 0
		e.skippedN = 0
	}
}

// Deallocate releases every accumulator's storage.
func (c *Container) Deallocate() {
	for _, e := range c.entries {
		e.Acc.Deallocate()
	}
}
