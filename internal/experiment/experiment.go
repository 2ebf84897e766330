package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/mcintegrate/internal/config"
	"github.com/san-kum/mcintegrate/internal/estimator"
	"github.com/san-kum/mcintegrate/internal/integrator"
	"github.com/san-kum/mcintegrate/internal/observable"
	"github.com/san-kum/mcintegrate/internal/trial"
)

// Experiment ties a Config to a Registry-resolved distribution and drives
// a single Integrator run end to end.
type Experiment struct {
	cfg *config.Config
	reg *Registry
	it  *integrator.Integrator
}

// New builds an experiment from cfg, resolving its distribution via reg.
func New(cfg *config.Config, reg *Registry) *Experiment {
	return &Experiment{cfg: cfg, reg: reg}
}

// Setup resolves the configured distribution and wires the Integrator:
// domain, PDF, trial move, random stream, and the standard identity and
// quadratic demo observables.
func (e *Experiment) Setup() error {
	p, dom, err := e.reg.Build(e.cfg)
	if err != nil {
		return err
	}

	it := integrator.New(e.cfg.NDim)
	if err := it.SetDomain(dom); err != nil {
		return err
	}
	if err := it.AddSamplingFunction(p); err != nil {
		return err
	}

	move := trial.NewUniformBlock(e.cfg.NDim, e.cfg.TrialMoveVecLen, initSteps(e.cfg), nil)
	if err := it.SetTrialMove(move); err != nil {
		return err
	}

	if err := it.SetTargetAcceptanceRate(e.cfg.TargetAcceptanceRate); err != nil {
		return err
	}
	it.SetSeed(e.cfg.Seed)
	it.SetNFindMRT2Iterations(e.cfg.NFindMRT2Iterations)
	it.SetNDecorrelationSteps(e.cfg.NDecorrelationSteps)

	kind := parseKind(e.cfg.AccumulatorKind)
	estKind := defaultEstimKind(kind)
	if err := it.AddObservable("x", observable.Identity(e.cfg.NDim), kind, e.cfg.NBlocks, e.cfg.NMC, e.cfg.Nskip, e.cfg.Equil, estKind); err != nil {
		return err
	}
	if err := it.AddObservable("x2", observable.Quadratic(e.cfg.NDim), kind, e.cfg.NBlocks, e.cfg.NMC, e.cfg.Nskip, e.cfg.Equil, estKind); err != nil {
		return err
	}

	if err := it.NewRandomX(); err != nil {
		return err
	}

	e.it = it
	return nil
}

// initSteps builds the single initial step size NewUniformBlock expects;
// every block shares one step-size type, so the slice always has length 1.
func initSteps(cfg *config.Config) []float64 {
	return []float64{cfg.InitStepSize}
}

func parseKind(s string) observable.Kind {
	switch s {
	case "simple":
		return observable.KindSimple
	case "block":
		return observable.KindBlock
	default:
		return observable.KindFull
	}
}

// defaultEstimKind pairs each storage strategy with the estimator that
// makes sense over what it stores: Simple has no blocking structure to
// exploit, Block's rows are already block means, and Full's raw samples
// support the correlated blocker.
func defaultEstimKind(kind observable.Kind) estimator.Kind {
	switch kind {
	case observable.KindSimple:
		return estimator.KindNoop
	case observable.KindBlock:
		return estimator.KindUncorrelated
	default:
		return estimator.KindCorrelated
	}
}

// Run executes the integration and returns the combined result. ctx is
// currently unused by the single-worker path but kept so call sites can
// pass a cancellable context without an API change once longer scenario
// runs grow cooperative cancellation.
func (e *Experiment) Run(ctx context.Context) (*integrator.Result, error) {
	if e.it == nil {
		return nil, fmt.Errorf("experiment not set up")
	}
	return e.it.Integrate(e.cfg.NMC)
}

// Integrator exposes the underlying integrator for adding observers or
// trace writers before Run.
func (e *Experiment) Integrator() *integrator.Integrator { return e.it }
