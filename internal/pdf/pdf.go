// Package pdf implements the SamplingFunction contract — a ProtoFunction
// that evaluates a non-negative density from cached proto-values and
// supplies full and selective acceptance ratios — plus the PDFContainer
// that aggregates zero or more of them for the Integrator.
package pdf

import (
	"math"

	"github.com/san-kum/mcintegrate/internal/proto"
	"github.com/san-kum/mcintegrate/internal/walker"
)

// SamplingFunction is a ProtoFunction whose Value(proto) is a non-negative
// real and whose Acceptance(old, new) equals Value(new)/Value(old) whenever
// the denominator is non-zero. UpdatedAcceptance computes the same ratio
// while only recomputing the proto entries affected by changed coordinates;
// implementations without a meaningful fast path may just recompute in
// full and still satisfy the contract.
type SamplingFunction interface {
	NDim() int
	NProto() int

	// ProtoValues fills out with the proto-values (e.g. the summands of a
	// log-density) for walker position x.
	ProtoValues(x []float64, out []float64)

	// Value returns the non-negative density given a set of proto-values.
	Value(proto []float64) float64

	// Acceptance returns Value(protoNew)/Value(protoOld).
	Acceptance(protoOld, protoNew []float64) float64

	// UpdatedAcceptance computes the same ratio as Acceptance while only
	// touching proto entries affected by xnew's changed coordinates.
	// pvOld/pvNew are scratch buffers of length NProto() the caller owns.
	UpdatedAcceptance(xold, xnew []float64, nchanged int, changedIdx []int, pvOld, pvNew []float64) float64

	ComputeOldProtoValues(x []float64)
	NewToOld()
	OldToNew()
	ProtoOld() []float64
	ProtoNew() []float64
}

// Base is embedded by concrete SamplingFunctions; it wires proto.Base's
// commit semantics to a concrete ProtoValues implementation supplied by the
// embedder via protoFn.
type Base struct {
	proto.Base
	ndim    int
	protoFn func(x, out []float64)
}

// Init sets up the proto-value buffers and binds the proto-value function.
func (b *Base) Init(ndim, nproto int, protoFn func(x, out []float64)) {
	b.Base.Init(nproto)
	b.ndim = ndim
	b.protoFn = protoFn
}

func (b *Base) NDim() int   { return b.ndim }
func (b *Base) NProto() int { return b.Base.NProto() }

func (b *Base) ProtoValues(x []float64, out []float64) { b.protoFn(x, out) }

func (b *Base) ComputeOldProtoValues(x []float64) { b.Base.ComputeOld(x, b.protoFn) }

func (b *Base) ProtoOld() []float64 { return b.Base.Old }
func (b *Base) ProtoNew() []float64 { return b.Base.New }

// Container aggregates zero or more SamplingFunctions. The joint
// acceptance of a step is the product of each PDF's individual acceptance;
// commits and rollbacks are broadcast to every contained PDF.
type Container struct {
	pdfs []SamplingFunction

	onObserve func(x []float64)
}

// NewContainer constructs an empty PDF container.
func NewContainer() *Container { return &Container{} }

// Add installs a new SamplingFunction. Dimension compatibility with the
// Integrator is the caller's responsibility (checked by the Integrator).
func (c *Container) Add(pdf SamplingFunction) { c.pdfs = append(c.pdfs, pdf) }

// Clear removes all installed PDFs.
func (c *Container) Clear() { c.pdfs = nil }

// HasPDF reports whether any sampling function is installed.
func (c *Container) HasPDF() bool { return len(c.pdfs) > 0 }

// Len reports the number of installed PDFs.
func (c *Container) Len() int { return len(c.pdfs) }

// InitializeProtoValues computes old (and new) proto-values for every PDF
// at the walker's starting position.
func (c *Container) InitializeProtoValues(x []float64) {
	for _, p := range c.pdfs {
		p.ComputeOldProtoValues(x)
	}
}

// ComputeAcceptance returns the joint acceptance ratio of the proposed
// move described by wlk: the product of each PDF's own acceptance, using
// the selective fast path whenever fewer than all coordinates changed.
func (c *Container) ComputeAcceptance(wlk *walker.State) float64 {
	acc := 1.0
	selective := wlk.Nchanged < len(wlk.Xnew)
	for _, p := range c.pdfs {
		if selective {
			acc *= p.UpdatedAcceptance(wlk.Xold, wlk.Xnew, wlk.Nchanged, wlk.ChangedIdx, p.ProtoOld(), p.ProtoNew())
		} else {
			p.ProtoValues(wlk.Xnew, p.ProtoNew())
			acc *= p.Acceptance(p.ProtoOld(), p.ProtoNew())
		}
		if acc == 0 {
			return 0
		}
	}
	return acc
}

// NewToOld commits every PDF's proto-values (step accepted).
func (c *Container) NewToOld() {
	for _, p := range c.pdfs {
		p.NewToOld()
	}
}

// OldToNew rolls every PDF's proto-values back (step rejected).
func (c *Container) OldToNew() {
	for _, p := range c.pdfs {
		p.OldToNew()
	}
}

// PrepareObservation calls the registered observation hook, if any, once
// per kept step, right before the step's observables are evaluated. No
// hook is installed by default; this is a caller-supplied extension point
// for a PDF-dependent observable that needs to see the current position
// before Container.Observe runs (e.g. one that reads a PDF's own internal
// state rather than just the walker's coordinates).
func (c *Container) PrepareObservation(x []float64) {
	if c.onObserve != nil {
		c.onObserve(x)
	}
}

// SetObservationHook installs the function PrepareObservation calls. A nil
// fn (the default) makes PrepareObservation a no-op.
func (c *Container) SetObservationHook(fn func(x []float64)) { c.onObserve = fn }

// logSumExp-free guard used by demo PDFs below to avoid 0*log(0) or
// overflow in exp() when a walker strays far from the mode.
func safeExp(v float64) float64 {
	if v > 700 {
		return math.MaxFloat64
	}
	if v < -700 {
		return 0
	}
	return math.Exp(v)
}
