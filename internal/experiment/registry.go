package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/mcintegrate/internal/config"
	"github.com/san-kum/mcintegrate/internal/domain"
	"github.com/san-kum/mcintegrate/internal/pdf"
)

// distFactory builds the SamplingFunction and Domain for a named
// distribution family from its config.
type distFactory func(cfg *config.Config) (pdf.SamplingFunction, domain.Domain)

// Registry maps distribution names to their SamplingFunction/Domain
// factories — the experiment-level analogue of looking up a model by
// name.
type Registry struct {
	dists map[string]distFactory
}

// NewRegistry builds a registry pre-populated with every demo
// distribution this module ships.
func NewRegistry() *Registry {
	r := &Registry{dists: make(map[string]distFactory)}

	r.dists["gaussian"] = func(cfg *config.Config) (pdf.SamplingFunction, domain.Domain) {
		return pdf.Gaussian(cfg.NDim), domain.NewUnbounded(cfg.NDim)
	}
	r.dists["doublewell"] = func(cfg *config.Config) (pdf.SamplingFunction, domain.Domain) {
		return pdf.DoubleWell(cfg.NDim, cfg.DistParams.DoubleWellA, cfg.DistParams.DoubleWellB), domain.NewUnbounded(cfg.NDim)
	}
	r.dists["exponential"] = func(cfg *config.Config) (pdf.SamplingFunction, domain.Domain) {
		return pdf.ExponentialModulus(cfg.NDim), domain.NewUnbounded(cfg.NDim)
	}
	r.dists["vonmises"] = func(cfg *config.Config) (pdf.SamplingFunction, domain.Domain) {
		mu := make([]float64, cfg.NDim)
		return pdf.NewVonMises(cfg.DistParams.VonMisesKappa, mu), domain.NewOrthoPeriodic(cfg.NDim, 0, 2*math.Pi)
	}

	return r
}

// Build resolves a distribution name into its SamplingFunction and
// Domain, or an error if the name is unknown.
func (r *Registry) Build(cfg *config.Config) (pdf.SamplingFunction, domain.Domain, error) {
	fn, ok := r.dists[cfg.Distribution]
	if !ok {
		return nil, nil, fmt.Errorf("unknown distribution: %s", cfg.Distribution)
	}
	p, d := fn(cfg)
	return p, d, nil
}

// ListDistributions lists every registered distribution name.
func (r *Registry) ListDistributions() []string {
	names := make([]string, 0, len(r.dists))
	for name := range r.dists {
		names = append(names, name)
	}
	return names
}
