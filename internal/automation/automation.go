// Package automation runs scripted sequences of integration runs: named
// scenarios loaded from YAML, and parameter sweeps over a single Config
// field.
package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/mcintegrate/internal/config"
	"github.com/san-kum/mcintegrate/internal/experiment"
	"github.com/san-kum/mcintegrate/internal/integrator"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of integration runs, each described by
// a full Config.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run in a scenario, with an optional human-readable
// label for the result.
type ScenarioStep struct {
	Label  string        `yaml:"label"`
	Config config.Config `yaml:"config"`
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// StepResult pairs a scenario step's label with its integration result.
type StepResult struct {
	Label  string
	Result *integrator.Result
}

// RunScenario executes every step in order, stopping at the first error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Printf("running step %d/%d: %s\n", i+1, len(scenario.Steps), step.Label)

		cfg := step.Config
		exp := experiment.New(&cfg, registry)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Label: step.Label, Result: result})
	}

	return results, nil
}

// Sweep varies a single numeric field of Config across NumSteps evenly
// spaced values between Min and Max, running one full integration per
// value.
type Sweep struct {
	Base     config.Config
	Field    FieldSetter
	Min, Max float64
	NumSteps int
}

// FieldSetter writes one value into a copy of a Config, abstracting over
// which field a sweep varies (target acceptance rate, step size, nblocks,
// ...).
type FieldSetter func(cfg *config.Config, value float64)

// TargetAcceptanceRateField sweeps Config.TargetAcceptanceRate.
func TargetAcceptanceRateField(cfg *config.Config, value float64) { cfg.TargetAcceptanceRate = value }

// InitStepSizeField sweeps Config.InitStepSize.
func InitStepSizeField(cfg *config.Config, value float64) { cfg.InitStepSize = value }

// NBlocksField sweeps Config.NBlocks, rounding to the nearest integer.
func NBlocksField(cfg *config.Config, value float64) { cfg.NBlocks = int(value + 0.5) }

// SweepResult pairs the swept value with the resulting integration.
type SweepResult struct {
	Value  float64
	Result *integrator.Result
}

// RunSweep executes one integration per swept value, in order.
func RunSweep(ctx context.Context, sweep *Sweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep requires at least 1 step")
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	step := 0.0
	if sweep.NumSteps > 1 {
		step = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		value := sweep.Min + float64(i)*step
		cfg := sweep.Base
		sweep.Field(&cfg, value)

		exp := experiment.New(&cfg, registry)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("sweep step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("sweep step %d run: %w", i+1, err)
		}
		results = append(results, SweepResult{Value: value, Result: result})
		fmt.Printf("sweep %d/%d: value=%.6g acceptance=%.3f\n", i+1, sweep.NumSteps, value, result.AcceptanceRate)
	}

	return results, nil
}
