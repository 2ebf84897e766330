package diagnostics

import (
	"math"
	"testing"
)

func TestAcceptanceTracker(t *testing.T) {
	tr := NewAcceptanceTracker()
	if tr.Name() != "acceptance_rate" {
		t.Fatalf("Name()=%q", tr.Name())
	}
	tr.OnStep(0, nil, true)
	tr.OnStep(1, nil, false)
	tr.OnStep(2, nil, true)
	if v := tr.Value(); math.Abs(v-2.0/3.0) > 1e-12 {
		t.Fatalf("Value()=%g, want 2/3", v)
	}
	tr.Reset()
	if tr.Value() != 0 {
		t.Fatalf("Value() after Reset = %g, want 0", tr.Value())
	}
}

func TestAcceptanceTrackerEmpty(t *testing.T) {
	tr := NewAcceptanceTracker()
	if tr.Value() != 0 {
		t.Fatalf("Value() with no steps = %g, want 0", tr.Value())
	}
}

func TestDisplacementTracker(t *testing.T) {
	tr := NewDisplacementTracker()
	tr.OnStep(0, []float64{0, 0}, true)
	tr.OnStep(1, []float64{3, 4}, true) // displacement 5
	tr.OnStep(2, []float64{3, 4}, true) // displacement 0

	want := 2.5 // mean of 5 and 0
	if v := tr.Value(); math.Abs(v-want) > 1e-9 {
		t.Fatalf("Value()=%g, want %g", v, want)
	}

	tr.Reset()
	if tr.Value() != 0 {
		t.Fatalf("Value() after Reset = %g, want 0", tr.Value())
	}
}

func TestDisplacementTrackerSingleSample(t *testing.T) {
	tr := NewDisplacementTracker()
	tr.OnStep(0, []float64{1, 1}, true)
	if v := tr.Value(); v != 0 {
		t.Fatalf("Value() with one sample = %g, want 0", v)
	}
}
