package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Distribution != "gaussian" {
		t.Errorf("expected distribution gaussian, got %s", cfg.Distribution)
	}
	if cfg.NDim <= 0 {
		t.Error("ndim should be positive")
	}
	if cfg.NMC <= 0 {
		t.Error("nmc should be positive")
	}
	if cfg.TargetAcceptanceRate <= 0 || cfg.TargetAcceptanceRate >= 1 {
		t.Error("target acceptance rate should be in (0,1)")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gaussian", "quick")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.NDim != 3 {
		t.Errorf("expected ndim 3, got %d", cfg.NDim)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("gaussian", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "quick"); cfg != nil {
		t.Error("expected nil for nonexistent distribution")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("gaussian")
	if len(presets) == 0 {
		t.Error("expected presets for gaussian")
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent distribution")
	}
}
