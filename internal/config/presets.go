package config

// Presets holds named, ready-to-run configurations per distribution,
// the way a CLI's --preset flag or a scenario file's "preset:" key
// resolves a shorthand into a full Config.
var Presets = map[string]map[string]*Config{
	"gaussian": {
		"quick": {
			Distribution: "gaussian", NDim: 3, NMC: 20000, Seed: 1,
			TargetAcceptanceRate: 0.5, TrialMoveVecLen: 1, InitStepSize: 1.0,
			NFindMRT2Iterations: -50, NDecorrelationSteps: -2000,
			AccumulatorKind: "full", NBlocks: 16, Estimator: "correlated", Nskip: 1,
		},
		"precise": {
			Distribution: "gaussian", NDim: 3, NMC: 2000000, Seed: 1,
			TargetAcceptanceRate: 0.5, TrialMoveVecLen: 1, InitStepSize: 1.0,
			NFindMRT2Iterations: -100, NDecorrelationSteps: -20000,
			AccumulatorKind: "full", NBlocks: 64, Estimator: "correlated", Nskip: 1,
		},
		"highdim": {
			Distribution: "gaussian", NDim: 20, NMC: 500000, Seed: 1,
			TargetAcceptanceRate: 0.4, TrialMoveVecLen: 1, InitStepSize: 1.0,
			NFindMRT2Iterations: -100, NDecorrelationSteps: -20000,
			AccumulatorKind: "full", NBlocks: 32, Estimator: "correlated", Nskip: 1,
		},
	},
	"doublewell": {
		"bistable": {
			Distribution: "doublewell", NDim: 2, NMC: 500000, Seed: 1,
			TargetAcceptanceRate: 0.5, TrialMoveVecLen: 1, InitStepSize: 1.0,
			NFindMRT2Iterations: -50, NDecorrelationSteps: -20000,
			AccumulatorKind: "full", NBlocks: 32, Estimator: "correlated", Nskip: 1,
			DistParams: DistParamsConfig{DoubleWellA: 1.0, DoubleWellB: 2.0},
		},
		"shallow": {
			Distribution: "doublewell", NDim: 2, NMC: 200000, Seed: 1,
			TargetAcceptanceRate: 0.5, TrialMoveVecLen: 1, InitStepSize: 1.5,
			NFindMRT2Iterations: -50, NDecorrelationSteps: -5000,
			AccumulatorKind: "full", NBlocks: 32, Estimator: "correlated", Nskip: 1,
			DistParams: DistParamsConfig{DoubleWellA: 0.3, DoubleWellB: 1.0},
		},
	},
	"exponential": {
		"laplace": {
			Distribution: "exponential", NDim: 4, NMC: 300000, Seed: 1,
			TargetAcceptanceRate: 0.5, TrialMoveVecLen: 1, InitStepSize: 2.0,
			NFindMRT2Iterations: -50, NDecorrelationSteps: -5000,
			AccumulatorKind: "full", NBlocks: 32, Estimator: "correlated", Nskip: 1,
		},
	},
	"vonmises": {
		"ring": {
			Distribution: "vonmises", NDim: 1, NMC: 300000, Seed: 1,
			TargetAcceptanceRate: 0.5, TrialMoveVecLen: 1, InitStepSize: 1.0,
			NFindMRT2Iterations: -50, NDecorrelationSteps: -5000,
			AccumulatorKind: "full", NBlocks: 32, Estimator: "correlated", Nskip: 1,
			DistParams: DistParamsConfig{VonMisesKappa: 3.0},
		},
		"sharp": {
			Distribution: "vonmises", NDim: 1, NMC: 300000, Seed: 1,
			TargetAcceptanceRate: 0.3, TrialMoveVecLen: 1, InitStepSize: 0.5,
			NFindMRT2Iterations: -80, NDecorrelationSteps: -5000,
			AccumulatorKind: "full", NBlocks: 32, Estimator: "correlated", Nskip: 1,
			DistParams: DistParamsConfig{VonMisesKappa: 10.0},
		},
	},
}

// GetPreset looks up a named preset under a distribution family, returning
// nil if either the family or the preset name is unknown.
func GetPreset(distribution, preset string) *Config {
	family, ok := Presets[distribution]
	if !ok {
		return nil
	}
	cfg, ok := family[preset]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets lists preset names available for a distribution family, or
// nil if the family is unknown.
func ListPresets(distribution string) []string {
	family, ok := Presets[distribution]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(family))
	for name := range family {
		names = append(names, name)
	}
	return names
}
