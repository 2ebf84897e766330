// Package optim implements a recursive grid search over integration
// config parameters, minimizing a scalar objective computed from each
// run's Result.
package optim

import (
	"context"
	"math"

	"github.com/san-kum/mcintegrate/internal/experiment"
	"github.com/san-kum/mcintegrate/internal/integrator"
)

// GridSearch exhaustively evaluates every combination of named parameter
// values, keeping the combination that minimizes the objective.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch builds a search over params, each varied across the
// matching entry of ranges.
func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Objective extracts a scalar to minimize from an integration result —
// e.g. the error bar on a particular observable component, or the
// distance of the acceptance rate from some target.
type Objective func(result *integrator.Result) float64

// Search evaluates every point of the grid, building each experiment via
// buildExperiment(params) and scoring its result with objective. It
// returns the best parameter combination found and its score.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, objective, &best, &bestParams)

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) {
	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return
		}
		if err := exp.Setup(); err != nil {
			return
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return
		}

		val := objective(result)
		if val < *best {
			*best = val
			params := make(map[string]float64, len(current))
			for k, v := range current {
				params[k] = v
			}
			*bestParams = params
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, buildExperiment, objective, best, bestParams)
	}
}

// ErrorObjective builds an Objective minimizing the error bar of
// observable obsIdx's component colIdx.
func ErrorObjective(obsIdx, colIdx int) Objective {
	return func(result *integrator.Result) float64 {
		if obsIdx >= len(result.Err) || colIdx >= len(result.Err[obsIdx]) {
			return math.Inf(1)
		}
		return result.Err[obsIdx][colIdx]
	}
}

// AcceptanceDistanceObjective builds an Objective minimizing the distance
// of the realized acceptance rate from target.
func AcceptanceDistanceObjective(target float64) Objective {
	return func(result *integrator.Result) float64 {
		return math.Abs(result.AcceptanceRate - target)
	}
}
