// Package reduce runs an ensemble of independent Integrators concurrently
// and combines their estimates the way cooperating MPI ranks would:
// average the means, and combine the per-rank standard errors in
// quadrature.
package reduce

import (
	"context"
	"math"
	"sync"

	"github.com/san-kum/mcintegrate/internal/integrator"
)

// Factory builds one fresh, fully configured Integrator for worker index
// idx, already seeded distinctly from every other worker.
type Factory func(idx int) (*integrator.Integrator, error)

// Ensemble runs NWorkers independent integrations of the same quantity
// and reduces their Results into a single estimate.
type Ensemble struct {
	build    Factory
	nworkers int
}

// NewEnsemble builds an ensemble of nworkers integrators, each produced by
// calling build with its worker index.
func NewEnsemble(build Factory, nworkers int) *Ensemble {
	return &Ensemble{build: build, nworkers: nworkers}
}

// Run executes every worker's Integrate(nmc) concurrently and combines the
// results: the combined mean is the average of the per-worker means, and
// the combined error is sqrt(sum of squared per-worker errors) / nworkers
// — the same reduction a set of cooperating ranks would perform, making
// each worker's statistics directly comparable to what SetNRanks(nworkers)
// expects it to gather per round.
func (e *Ensemble) Run(ctx context.Context, nmc int) (*integrator.Result, error) {
	results := make([]*integrator.Result, e.nworkers)
	errs := make([]error, e.nworkers)

	var wg sync.WaitGroup
	for i := 0; i < e.nworkers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if ctx.Err() != nil {
				errs[idx] = ctx.Err()
				return
			}
			it, err := e.build(idx)
			if err != nil {
				errs[idx] = err
				return
			}
			it.SetNRanks(e.nworkers)
			results[idx], errs[idx] = it.Integrate(nmc)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return combine(results), nil
}

// combine averages means across workers and reduces errors in quadrature.
func combine(results []*integrator.Result) *integrator.Result {
	n := len(results)
	first := results[0]
	nobs := len(first.Names)

	out := &integrator.Result{
		Names:    first.Names,
		Avg:      make([][]float64, nobs),
		Err:      make([][]float64, nobs),
		NSamples: first.NSamples,
	}

	accRate := 0.0
	for _, r := range results {
		accRate += r.AcceptanceRate
	}
	out.AcceptanceRate = accRate / float64(n)

	for j := 0; j < nobs; j++ {
		ncol := len(first.Avg[j])
		avg := make([]float64, ncol)
		errv := make([]float64, ncol)
		for _, r := range results {
			for k := 0; k < ncol; k++ {
				avg[k] += r.Avg[j][k]
				errv[k] += r.Err[j][k] * r.Err[j][k]
			}
		}
		for k := 0; k < ncol; k++ {
			avg[k] /= float64(n)
			errv[k] = math.Sqrt(errv[k]) / float64(n)
		}
		out.Avg[j] = avg
		out.Err[j] = errv
	}
	return out
}
