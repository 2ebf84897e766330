// Package integrator implements the Integrator: the object that owns a
// walker, a domain, zero or more sampling functions and observables, and
// drives the Metropolis-Hastings loop that ties them together, including
// automatic step-size tuning and equilibration.
package integrator

import (
	"fmt"
	"io"
	"math"

	"github.com/san-kum/mcintegrate/internal/domain"
	"github.com/san-kum/mcintegrate/internal/estimator"
	"github.com/san-kum/mcintegrate/internal/mcierr"
	"github.com/san-kum/mcintegrate/internal/observable"
	"github.com/san-kum/mcintegrate/internal/pdf"
	"github.com/san-kum/mcintegrate/internal/rng"
	"github.com/san-kum/mcintegrate/internal/trial"
	"github.com/san-kum/mcintegrate/internal/walker"
)

// auto-tuner constants, matching the defaults of the reference engine this
// package's algorithm is modeled on.
const (
	minStatFloor    = 100
	tuneTolerance   = 0.05
	tuneMinConsec   = 5
	scaleClampLow   = 0.5
	scaleClampHigh  = 2.0
	defaultTargetAR = 0.5
)

// minPositiveFloat64 is the smallest positive representable float64, the
// floor findMRT2Step clamps a step size to rather than letting it reach
// zero or go negative.
const minPositiveFloat64 = math.SmallestNonzeroFloat64

// Observer is notified after every kept Metropolis step, accepted or not;
// used for live progress reporting and diagnostics.
type Observer interface {
	OnStep(step int, x []float64, accepted bool)
}

// Result is the outcome of a full Integrate call: one mean and one error
// bar per observable component, keyed by the observable's installation
// name.
type Result struct {
	Names []string
	Avg   [][]float64
	Err   [][]float64
	// AcceptanceRate is the fraction of proposed moves accepted during the
	// final sampling pass (not including findMRT2Step/decorrelation).
	AcceptanceRate float64
	NSamples       int
}

// Integrator drives the Metropolis-Hastings sampling loop over a domain,
// guided by zero or more installed SamplingFunctions, proposing moves with
// a single installed TrialMove, and feeding every kept step to an
// ObservableContainer.
type Integrator struct {
	ndim int

	dom  domain.Domain
	pdfs *pdf.Container
	move trial.Move
	obs  *observable.Container
	wlk  *walker.State
	rng  *rng.Stream

	targetAccRate float64
	nranks        int

	// NFindMRT2Iterations < 0 means "run up to -N iterations but stop early
	// once the acceptance rate is within tolerance for tuneMinConsec
	// rounds in a row"; >= 0 means "run exactly N iterations, no early
	// exit".
	nFindMRT2Iterations int
	// NDecorrelationSteps < 0 means "run up to -N steps of adaptive
	// equilibration"; >0 means "always run exactly N fixed steps"; 0 means
	// "skip decorrelation".
	nDecorrelationSteps int

	nAccepted int
	nProposed int

	observers []Observer

	traceObsWriter io.Writer
	traceXWriter   io.Writer
}

// New builds an Integrator over ndim coordinates with an unbounded domain,
// no sampling functions, and a default 50% target acceptance rate — the
// same defaults the auto-tuner assumes.
func New(ndim int) *Integrator {
	return &Integrator{
		ndim:                ndim,
		dom:                 domain.NewUnbounded(ndim),
		pdfs:                pdf.NewContainer(),
		obs:                 observable.NewContainer(ndim),
		wlk:                 walker.New(ndim),
		rng:                 rng.NewStream(1),
		targetAccRate:       defaultTargetAR,
		nranks:              1,
		nFindMRT2Iterations: -50,
		nDecorrelationSteps: -10000,
	}
}

// NDim reports the walker dimensionality.
func (it *Integrator) NDim() int { return it.ndim }

// SetDomain installs the domain used to fold walker coordinates. Its
// dimension must match the integrator's.
func (it *Integrator) SetDomain(d domain.Domain) error {
	if d.NDim() != it.ndim {
		return mcierr.NewConfigError("SetDomain", fmt.Sprintf("domain ndim=%d does not match integrator ndim=%d", d.NDim(), it.ndim))
	}
	it.dom = d
	return nil
}

// SetTrialMove installs the proposal kernel and binds it to the
// integrator's random stream.
func (it *Integrator) SetTrialMove(m trial.Move) error {
	if m.NDim() != it.ndim {
		return mcierr.NewConfigError("SetTrialMove", fmt.Sprintf("trial move ndim=%d does not match integrator ndim=%d", m.NDim(), it.ndim))
	}
	m.BindRNG(it.rng)
	it.move = m
	return nil
}

// AddSamplingFunction installs an additional target density; the product
// of every installed density's acceptance ratio drives Metropolis accept
// decisions. Its dimension must match the integrator's.
func (it *Integrator) AddSamplingFunction(p pdf.SamplingFunction) error {
	if p.NDim() != it.ndim {
		return mcierr.NewConfigError("AddSamplingFunction", fmt.Sprintf("sampling function ndim=%d does not match integrator ndim=%d", p.NDim(), it.ndim))
	}
	it.pdfs.Add(p)
	return nil
}

// ClearSamplingFunctions removes every installed density, reverting the
// integrator to plain uniform sampling over the domain.
func (it *Integrator) ClearSamplingFunctions() { it.pdfs.Clear() }

// AddObservable installs an observable under name with the given
// accumulation strategy and paired estimator. nblocks is only meaningful
// for KindBlock and capHint only for KindFull; nskip must be >= 1 and
// equil >= 0. estimKind chooses how Integrate reduces this observable's
// stored rows into a mean and error bar; estimator.KindNoop disables the
// error bar entirely and cannot be combined with equil > 0.
func (it *Integrator) AddObservable(name string, fn observable.Function, kind observable.Kind, nblocks, capHint, nskip, equil int, estimKind estimator.Kind) error {
	return it.obs.AddObservable(name, fn, kind, nblocks, capHint, nskip, equil, estimKind)
}

// AddObserver registers a step observer, notified after every sampled step.
func (it *Integrator) AddObserver(o Observer) { it.observers = append(it.observers, o) }

// SetSeed reseeds the integrator's random stream.
func (it *Integrator) SetSeed(seed uint64) { it.rng.Seed(seed) }

// SetNRanks tells the integrator how many cooperating workers are sharing
// this integration, which scales down the statistics the auto-tuner and
// decorrelation routines gather per worker.
func (it *Integrator) SetNRanks(n int) {
	if n < 1 {
		n = 1
	}
	it.nranks = n
}

// SetTargetAcceptanceRate sets the acceptance rate findMRT2Step tunes
// toward. rate must lie strictly between 0 and 1.
func (it *Integrator) SetTargetAcceptanceRate(rate float64) error {
	if rate <= 0 || rate >= 1 {
		return mcierr.NewConfigError("SetTargetAcceptanceRate", fmt.Sprintf("target acceptance rate must be in (0,1), got %g", rate))
	}
	it.targetAccRate = rate
	return nil
}

// SetNFindMRT2Iterations configures the auto-tuner's iteration budget; see
// the field comment on nFindMRT2Iterations for sign semantics.
func (it *Integrator) SetNFindMRT2Iterations(n int) { it.nFindMRT2Iterations = n }

// SetNDecorrelationSteps configures the equilibration budget; see the
// field comment on nDecorrelationSteps for sign semantics.
func (it *Integrator) SetNDecorrelationSteps(n int) { it.nDecorrelationSteps = n }

// GetAcceptanceRate returns the fraction of proposed moves accepted since
// the counters were last reset by ResetAcceptanceCounters (which
// FindMRT2Step calls every round and Integrate calls before sampling).
func (it *Integrator) GetAcceptanceRate() float64 {
	if it.nProposed == 0 {
		return 0
	}
	return float64(it.nAccepted) / float64(it.nProposed)
}

// ResetAcceptanceCounters zeroes the accept/propose counters.
func (it *Integrator) ResetAcceptanceCounters() { it.nAccepted, it.nProposed = 0, 0 }

// SetX places the walker at x (len(x) == NDim()) and reinitializes every
// installed PDF's and trial move's proto-values there.
func (it *Integrator) SetX(x []float64) error {
	if len(x) != it.ndim {
		return mcierr.NewConfigError("SetX", fmt.Sprintf("x has length %d, want %d", len(x), it.ndim))
	}
	copy(it.wlk.Xold, x)
	copy(it.wlk.Xnew, x)
	it.pdfs.InitializeProtoValues(it.wlk.Xold)
	if it.move != nil {
		it.move.InitializeProtoValues(it.wlk.Xold)
	}
	return nil
}

// NewRandomX places the walker at a uniformly random point of the
// installed domain (ScaleToDomain applied to ndim independent [0,1) draws)
// and reinitializes proto-values there.
func (it *Integrator) NewRandomX() error {
	u := make([]float64, it.ndim)
	for i := range u {
		u[i] = it.rng.Float64()
	}
	it.dom.ScaleToDomain(u)
	return it.SetX(u)
}

// StoreObservablesOnFile routes every sampled observable vector to w, one
// whitespace-separated line per kept step. Pass nil to stop tracing.
func (it *Integrator) StoreObservablesOnFile(w io.Writer) { it.traceObsWriter = w }

// StoreWalkerPositionsOnFile routes the walker position to w after every
// kept step, one whitespace-separated line per step. Pass nil to stop
// tracing.
func (it *Integrator) StoreWalkerPositionsOnFile(w io.Writer) { it.traceXWriter = w }

// doStepMRT2 proposes a move via the installed TrialMove, folds it into
// the domain, weighs it by the installed PDFs' joint acceptance, and
// accepts or rejects it via the standard Metropolis test. It returns
// whether the proposal was accepted.
func (it *Integrator) doStepMRT2() bool {
	moveAcc := it.move.ComputeTrialMove(it.wlk)
	it.dom.ApplyWalker(it.wlk)

	acc := moveAcc
	if it.pdfs.HasPDF() {
		acc *= it.pdfs.ComputeAcceptance(it.wlk)
	}

	it.nProposed++
	accepted := acc >= 1 || it.rng.Float64() < acc
	if accepted {
		it.nAccepted++
		it.wlk.NewToOld()
		it.move.NewToOld()
		it.pdfs.NewToOld()
	} else {
		it.wlk.OldToNew()
		it.move.OldToNew()
		it.pdfs.OldToNew()
	}
	it.wlk.Accepted = accepted
	return accepted
}

// doStepRandom draws a fresh, independent uniform point from the domain
// and unconditionally accepts it. It is used whenever no sampling
// function is installed: plain quadrature over the domain, with every
// draw an independent sample rather than a Markov chain step.
func (it *Integrator) doStepRandom() bool {
	for i := range it.wlk.Xnew {
		it.wlk.Xnew[i] = it.rng.Float64()
	}
	it.dom.ScaleToDomain(it.wlk.Xnew)
	it.wlk.MarkAllChanged()
	it.nProposed++
	it.nAccepted++
	it.wlk.NewToOld()
	it.wlk.Accepted = true
	return true
}

// step executes one sampling step, dispatching to doStepMRT2 when any PDF
// is installed and to doStepRandom otherwise.
func (it *Integrator) step() bool {
	if it.pdfs.HasPDF() {
		return it.doStepMRT2()
	}
	return it.doStepRandom()
}

// sample runs nmc steps, handing the accepted walker position to the
// observable container, every registered Observer, and any active trace
// writers on every step (accepted or not: a rejected step re-observes the
// walker's unchanged position, which is the statistically correct thing
// to do for a Markov chain estimator).
func (it *Integrator) sample(nmc int) {
	for s := 0; s < nmc; s++ {
		accepted := it.step()
		it.pdfs.PrepareObservation(it.wlk.Xold)
		it.obs.Observe(it.wlk, s)
		for _, o := range it.observers {
			o.OnStep(s, it.wlk.Xold, accepted)
		}
		if it.traceXWriter != nil {
			writeRow(it.traceXWriter, it.wlk.Xold)
		}
		if it.traceObsWriter != nil {
			var row []float64
			for _, e := range it.obs.Entries() {
				buf := make([]float64, e.Fn.NObs())
				e.Fn.ComputeObservables(it.wlk.Xold, buf)
				row = append(row, buf...)
			}
			writeRow(it.traceObsWriter, row)
		}
	}
}

func writeRow(w io.Writer, row []float64) {
	for i, v := range row {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%.17g", v)
	}
	fmt.Fprintln(w)
}

// minStat is the per-round sample budget the auto-tuner and decorrelation
// routines use: enough to resolve an acceptance rate to within a few
// percent for the given dimensionality, shared out over cooperating
// workers.
func (it *Integrator) minStat() int {
	n := int(math.Ceil(math.Sqrt(40000*float64(it.ndim)) / float64(it.nranks)))
	if n < minStatFloor {
		n = minStatFloor
	}
	return n
}

// FindMRT2Step runs the step-size auto-tuner: repeatedly samples minStat
// steps, measures the realized acceptance rate, and rescales every tunable
// step size of the installed TrialMove by clamp(rate/target, 0.5, 2.0). It
// stops after tuneMinConsec consecutive rounds land within tuneTolerance
// of the target, or after the configured iteration budget is exhausted.
func (it *Integrator) FindMRT2Step() error {
	if it.move == nil {
		return mcierr.NewStateError("FindMRT2Step", "no trial move installed")
	}
	if !it.move.HasStepSizes() {
		return nil
	}
	maxIter := it.nFindMRT2Iterations
	earlyExit := maxIter < 0
	if earlyExit {
		maxIter = -maxIter
	}

	n := it.minStat()
	consec := 0
	for iter := 0; iter < maxIter; iter++ {
		it.ResetAcceptanceCounters()
		for s := 0; s < n; s++ {
			it.step()
		}
		rate := it.GetAcceptanceRate()

		factor := rate / it.targetAccRate
		if factor < scaleClampLow {
			factor = scaleClampLow
		}
		if factor > scaleClampHigh {
			factor = scaleClampHigh
		}
		it.move.ScaleStepSizes(factor)
		it.clampStepSizes()

		if earlyExit {
			if math.Abs(rate-it.targetAccRate) <= tuneTolerance {
				consec++
				if consec >= tuneMinConsec {
					break
				}
			} else {
				consec = 0
			}
		}
	}
	return nil
}

// clampStepSizes enforces the absolute bounds findMRT2Step must respect
// after every multiplicative rescale: no step size may fall to or below
// zero (floor: the smallest positive float64), and no step size may exceed
// half the domain's extent along any coordinate it governs (a step that
// size already covers the whole periodic box).
func (it *Integrator) clampStepSizes() {
	n := it.move.GetNStepSizes()
	if n == 0 {
		return
	}
	ext := make([]float64, it.ndim)
	it.dom.Sizes(ext)

	upper := make([]float64, n)
	for i := range upper {
		upper[i] = math.Inf(1)
	}
	for coord := 0; coord < it.ndim; coord++ {
		idx := it.move.GetStepSizeIndex(coord)
		if idx < 0 || idx >= n {
			continue
		}
		if bound := 0.5 * ext[coord]; bound < upper[idx] {
			upper[idx] = bound
		}
	}
	for i := 0; i < n; i++ {
		v := it.move.GetStepSize(i)
		if v < minPositiveFloat64 {
			it.move.SetStepSize(i, minPositiveFloat64)
			continue
		}
		if v > upper[i] {
			it.move.SetStepSize(i, upper[i])
		}
	}
}

// InitialDecorrelation runs an adaptive equilibration loop: it samples
// successive blocks of minStat steps and compares each block's mean
// walker position against the previous block's. Once the two are
// consistent within 2*sqrt(errOld^2+errNew^2), the chain is considered
// equilibrated and decorrelation stops. A negative NDecorrelationSteps
// budget caps how many blocks this loop may run before giving up; a
// positive one instead always runs exactly that many fixed steps with no
// comparison at all; zero skips decorrelation entirely.
func (it *Integrator) InitialDecorrelation() {
	if it.nDecorrelationSteps == 0 {
		return
	}
	if it.nDecorrelationSteps > 0 {
		for s := 0; s < it.nDecorrelationSteps; s++ {
			it.step()
		}
		return
	}

	maxBlocks := -it.nDecorrelationSteps / it.minStat()
	if maxBlocks < 1 {
		maxBlocks = 1
	}

	prevMean := make([]float64, it.ndim)
	prevErr := make([]float64, it.ndim)
	haveBlock := false

	block := make([]float64, it.ndim)
	blockSq := make([]float64, it.ndim)
	n := it.minStat()

	for b := 0; b < maxBlocks; b++ {
		for i := range block {
			block[i], blockSq[i] = 0, 0
		}
		for s := 0; s < n; s++ {
			it.step()
			for i, v := range it.wlk.Xold {
				block[i] += v
				blockSq[i] += v * v
			}
		}
		mean := make([]float64, it.ndim)
		errv := make([]float64, it.ndim)
		for i := range mean {
			mean[i] = block[i] / float64(n)
			variance := blockSq[i]/float64(n) - mean[i]*mean[i]
			if variance < 0 {
				variance = 0
			}
			errv[i] = math.Sqrt(variance / float64(n))
		}

		if haveBlock && consistentWithin(mean, errv, prevMean, prevErr) {
			return
		}
		prevMean, prevErr = mean, errv
		haveBlock = true
	}
}

// consistentWithin reports whether every component of a and b agrees
// within 2*sqrt(ea^2+eb^2), the standard two-sigma compatibility test used
// to decide whether two block estimates describe the same equilibrium.
func consistentWithin(a, ea, b, eb []float64) bool {
	for i := range a {
		tol := 2 * math.Sqrt(ea[i]*ea[i]+eb[i]*eb[i])
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// Integrate runs the full pipeline — auto-tuning, decorrelation, sampling
// — and reduces every installed observable's accumulator into a mean and
// error bar via its configured estimator. The walker must already be
// placed (SetX or NewRandomX) and a trial move installed before calling
// this.
func (it *Integrator) Integrate(nmc int) (*Result, error) {
	if it.move == nil {
		return nil, mcierr.NewStateError("Integrate", "no trial move installed")
	}
	if nmc < 1 {
		return nil, mcierr.NewConfigError("Integrate", "nmc must be >= 1")
	}
	if !it.pdfs.HasPDF() && !it.dom.IsFinite() {
		return nil, mcierr.NewConfigError("Integrate", "no sampling function installed and domain is unbounded: cannot integrate")
	}

	// Step-size tuning and equilibration both only matter to a PDF-driven
	// Markov chain; doStepRandom ignores the trial move's step sizes
	// entirely and draws independent points, so running either here would
	// just burn samples for a uniform quadrature run.
	if it.pdfs.HasPDF() {
		if err := it.FindMRT2Step(); err != nil {
			return nil, err
		}
		it.InitialDecorrelation()
	}

	it.obs.Allocate()
	it.ResetAcceptanceCounters()
	it.sample(nmc)
	it.obs.Finalize()

	// A purely uniform sampler (no PDF installed) draws independent points
	// from the domain rather than from a normalized density, so the running
	// mean estimates the integral divided by the domain volume; scale back
	// up to recover the integral itself.
	scale := 1.0
	if !it.pdfs.HasPDF() {
		scale = it.dom.Volume()
	}

	res := &Result{AcceptanceRate: it.GetAcceptanceRate(), NSamples: nmc}
	for _, e := range it.obs.Entries() {
		avg, errv, estErr := EstimateEntry(e)
		if estErr != nil {
			return nil, estErr
		}
		if scale != 1.0 {
			for i := range avg {
				avg[i] *= scale
				errv[i] *= scale
			}
		}
		res.Names = append(res.Names, e.Name)
		res.Avg = append(res.Avg, avg)
		res.Err = append(res.Err, errv)
	}
	it.obs.Deallocate()
	return res, nil
}
