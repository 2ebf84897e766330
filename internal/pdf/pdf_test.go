package pdf

import (
	"math"
	"testing"

	"github.com/san-kum/mcintegrate/internal/walker"
)

func TestGaussianValueAndAcceptance(t *testing.T) {
	g := Gaussian(2)
	g.ComputeOldProtoValues([]float64{0, 0})

	v0 := g.Value(g.ProtoOld())
	if math.Abs(v0-1.0) > 1e-12 {
		t.Fatalf("Value at origin = %g, want 1", v0)
	}

	var pvNew [2]float64
	g.ProtoValues([]float64{1, 0}, pvNew[:])
	acc := g.Acceptance(g.ProtoOld(), pvNew[:])
	want := math.Exp(-1)
	if math.Abs(acc-want) > 1e-12 {
		t.Fatalf("Acceptance = %g, want %g", acc, want)
	}
}

func TestContainerJointAcceptanceFullPath(t *testing.T) {
	c := NewContainer()
	c.Add(Gaussian(2))
	x := []float64{0, 0}
	c.InitializeProtoValues(x)

	wlk := walker.New(2)
	copy(wlk.Xold, x)
	copy(wlk.Xnew, []float64{1, 0})
	wlk.MarkAllChanged()

	acc := c.ComputeAcceptance(wlk)
	want := math.Exp(-1)
	if math.Abs(acc-want) > 1e-9 {
		t.Fatalf("ComputeAcceptance (full path) = %g, want %g", acc, want)
	}
}

func TestContainerJointAcceptanceSelectivePath(t *testing.T) {
	c := NewContainer()
	c.Add(Gaussian(3))
	x := []float64{0, 0, 0}
	c.InitializeProtoValues(x)

	wlk := walker.New(3)
	copy(wlk.Xold, x)
	copy(wlk.Xnew, x)
	wlk.Xnew[1] = 2
	wlk.MarkChanged([]int{1})

	acc := c.ComputeAcceptance(wlk)
	want := math.Exp(-4)
	if math.Abs(acc-want) > 1e-9 {
		t.Fatalf("ComputeAcceptance (selective path) = %g, want %g", acc, want)
	}
}

func TestContainerCommitRollback(t *testing.T) {
	c := NewContainer()
	g := Gaussian(1)
	c.Add(g)
	c.InitializeProtoValues([]float64{0})

	g.ProtoValues([]float64{5}, g.ProtoNew())
	c.NewToOld()
	if g.ProtoOld()[0] != 25 {
		t.Fatalf("NewToOld did not commit: ProtoOld=%v", g.ProtoOld())
	}

	g.ProtoValues([]float64{9}, g.ProtoNew())
	c.OldToNew()
	if g.ProtoNew()[0] != 25 {
		t.Fatalf("OldToNew did not roll back: ProtoNew=%v", g.ProtoNew())
	}
}

func TestDoubleWellBimodal(t *testing.T) {
	dw := DoubleWell(1, 1.0, 1.0)
	dw.ComputeOldProtoValues([]float64{0})
	atMode := dw.Value(dw.ProtoOld())

	var pvAway [1]float64
	dw.ProtoValues([]float64{1}, pvAway[:])
	atWell := dw.Value(pvAway[:])

	if atWell <= atMode {
		t.Fatalf("double well: density at well (%g) should exceed density at x=0 (%g)", atWell, atMode)
	}
}

func TestExponentialModulusSymmetric(t *testing.T) {
	e := ExponentialModulus(1)
	e.ComputeOldProtoValues([]float64{0})

	var pvPos, pvNeg [1]float64
	e.ProtoValues([]float64{2}, pvPos[:])
	e.ProtoValues([]float64{-2}, pvNeg[:])
	if pvPos[0] != pvNeg[0] {
		t.Fatalf("|x| potential not symmetric: phi(2)=%g phi(-2)=%g", pvPos[0], pvNeg[0])
	}
}

func TestHasPDFAndLen(t *testing.T) {
	c := NewContainer()
	if c.HasPDF() {
		t.Fatal("empty container reports HasPDF() = true")
	}
	c.Add(Gaussian(1))
	if !c.HasPDF() || c.Len() != 1 {
		t.Fatalf("HasPDF()=%v Len()=%d, want true,1", c.HasPDF(), c.Len())
	}
	c.Clear()
	if c.HasPDF() || c.Len() != 0 {
		t.Fatalf("after Clear: HasPDF()=%v Len()=%d, want false,0", c.HasPDF(), c.Len())
	}
}

func TestObservationHook(t *testing.T) {
	c := NewContainer()
	called := false
	c.SetObservationHook(func(x []float64) { called = true })
	c.PrepareObservation([]float64{1, 2})
	if !called {
		t.Fatal("PrepareObservation did not invoke the registered hook")
	}
}
