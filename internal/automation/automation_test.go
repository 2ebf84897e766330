package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mcintegrate/internal/config"
	"github.com/san-kum/mcintegrate/internal/experiment"
)

func smallConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.NDim = 1
	cfg.NMC = 300
	cfg.TrialMoveVecLen = 1
	cfg.AccumulatorKind = "full"
	return *cfg
}

func TestRunScenarioExecutesEachStep(t *testing.T) {
	scenario := &Scenario{
		Name: "smoke",
		Steps: []ScenarioStep{
			{Label: "first", Config: smallConfig()},
			{Label: "second", Config: smallConfig()},
		},
	}
	results, err := RunScenario(context.Background(), scenario, experiment.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results)=%d, want 2", len(results))
	}
	if results[0].Label != "first" || results[1].Label != "second" {
		t.Fatalf("labels out of order: %v", results)
	}
}

func TestLoadScenarioRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	content := `
name: test-scenario
description: a tiny scenario
steps:
  - label: run1
    config:
      distribution: gaussian
      ndim: 1
      nmc: 100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}
	if scenario.Name != "test-scenario" || len(scenario.Steps) != 1 {
		t.Fatalf("scenario=%+v", scenario)
	}
	if scenario.Steps[0].Config.NDim != 1 {
		t.Fatalf("step config ndim=%d, want 1", scenario.Steps[0].Config.NDim)
	}
}

func TestRunSweepVariesField(t *testing.T) {
	base := smallConfig()
	sweep := &Sweep{
		Base:     base,
		Field:    TargetAcceptanceRateField,
		Min:      0.2,
		Max:      0.6,
		NumSteps: 3,
	}
	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results)=%d, want 3", len(results))
	}
	if results[0].Value != 0.2 || results[2].Value != 0.6 {
		t.Fatalf("sweep endpoints=%v,%v want 0.2,0.6", results[0].Value, results[2].Value)
	}
}

func TestRunSweepRejectsZeroSteps(t *testing.T) {
	sweep := &Sweep{Base: smallConfig(), Field: InitStepSizeField, Min: 0.1, Max: 1, NumSteps: 0}
	if _, err := RunSweep(context.Background(), sweep, experiment.NewRegistry()); err == nil {
		t.Fatal("expected error for NumSteps=0")
	}
}

func TestNBlocksFieldRounds(t *testing.T) {
	cfg := config.DefaultConfig()
	NBlocksField(cfg, 7.6)
	if cfg.NBlocks != 8 {
		t.Fatalf("NBlocksField(7.6) -> NBlocks=%d, want 8", cfg.NBlocks)
	}
}
