package observable

import (
	"math"
	"testing"

	"github.com/san-kum/mcintegrate/internal/estimator"
	"github.com/san-kum/mcintegrate/internal/walker"
)

func TestIdentityAndQuadratic(t *testing.T) {
	id := Identity(3)
	out := make([]float64, 3)
	id.ComputeObservables([]float64{1, -2, 3}, out)
	if out[0] != 1 || out[1] != -2 || out[2] != 3 {
		t.Fatalf("Identity output=%v", out)
	}

	q := Quadratic(3)
	q.ComputeObservables([]float64{1, -2, 3}, out)
	if out[0] != 1 || out[1] != 4 || out[2] != 9 {
		t.Fatalf("Quadratic output=%v", out)
	}
}

func TestSimpleAccumulatorLifecycle(t *testing.T) {
	acc := NewSimple()
	acc.Allocate(2)
	acc.Accumulate([]float64{1, 2}, 0)
	acc.Accumulate([]float64{3, 4}, 1)
	acc.Finalize(2)

	if !acc.Finalized() {
		t.Fatal("Finalized() = false after Finalize")
	}
	data := acc.StoredData()
	if len(data) != 1 || data[0][0] != 2 || data[0][1] != 3 {
		t.Fatalf("StoredData=%v, want [[2 3]]", data)
	}

	acc.Reset()
	if acc.Finalized() {
		t.Fatal("Finalized() = true after Reset")
	}
	acc.Deallocate()
}

func TestBlockAccumulatorPartitions(t *testing.T) {
	acc := NewBlock(2)
	acc.Allocate(1)
	for i := 0; i < 4; i++ {
		acc.Accumulate([]float64{float64(i)}, i)
	}
	acc.Finalize(4)

	data := acc.StoredData()
	if len(data) != 2 {
		t.Fatalf("len(StoredData())=%d, want 2", len(data))
	}
	if math.Abs(data[0][0]-0.5) > 1e-12 {
		t.Errorf("block 0 mean=%g, want 0.5", data[0][0])
	}
	if math.Abs(data[1][0]-2.5) > 1e-12 {
		t.Errorf("block 1 mean=%g, want 2.5", data[1][0])
	}
}

func TestFullAccumulatorStoresEverySample(t *testing.T) {
	acc := NewFull(0)
	acc.Allocate(1)
	for i := 0; i < 5; i++ {
		acc.Accumulate([]float64{float64(i)}, i)
	}
	acc.Finalize(5)

	data := acc.StoredData()
	if len(data) != 5 {
		t.Fatalf("len(StoredData())=%d, want 5", len(data))
	}
	for i, row := range data {
		if row[0] != float64(i) {
			t.Fatalf("row %d = %v, want [%d]", i, row, i)
		}
	}
}

func TestNewAccumulatorDispatch(t *testing.T) {
	if NewAccumulator(KindSimple, 0, 0).Kind() != KindSimple {
		t.Fatal("expected KindSimple")
	}
	if NewAccumulator(KindBlock, 4, 0).Kind() != KindBlock {
		t.Fatal("expected KindBlock")
	}
	if NewAccumulator(KindFull, 0, 16).Kind() != KindFull {
		t.Fatal("expected KindFull")
	}
}

func TestContainerAddObservableValidation(t *testing.T) {
	c := NewContainer(2)
	if err := c.AddObservable("bad-ndim", Identity(3), KindSimple, 0, 0, 1, 0, estimator.KindNoop); err == nil {
		t.Fatal("expected error on ndim mismatch")
	}
	if err := c.AddObservable("bad-nskip", Identity(2), KindSimple, 0, 0, 0, 0, estimator.KindNoop); err == nil {
		t.Fatal("expected error on nskip < 1")
	}
	if err := c.AddObservable("bad-nblocks", Identity(2), KindBlock, 0, 0, 1, 0, estimator.KindUncorrelated); err == nil {
		t.Fatal("expected error on KindBlock with nblocks < 1")
	}
	if err := c.AddObservable("ok", Identity(2), KindSimple, 0, 0, 1, 0, estimator.KindNoop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len()=%d, want 1", c.Len())
	}
}

func TestContainerObserveHonorsEquilAndNskip(t *testing.T) {
	c := NewContainer(1)
	_ = c.AddObservable("x", Identity(1), KindFull, 0, 0, 2, 3, estimator.KindCorrelated)
	c.Allocate()

	wlk := walker.New(1)
	for step := 0; step < 10; step++ {
		wlk.Xold[0] = float64(step)
		wlk.MarkAllChanged()
		wlk.Accepted = true
		c.Observe(wlk, step)
	}
	c.Finalize()

	e := c.Entries()[0]
	data := e.Acc.StoredData()
	// steps 0,1,2 skipped by equil=3; remaining steps 3..9 (7 samples) kept
	// every Nskip=2-th, i.e. indices 0,2,4,6 among those 7 -> 4 samples.
	if len(data) != 4 {
		t.Fatalf("len(data)=%d, want 4", len(data))
	}
	if data[0][0] != 3 {
		t.Fatalf("first kept sample=%v, want [3]", data[0])
	}
}

func TestContainerResetAndDeallocate(t *testing.T) {
	c := NewContainer(1)
	_ = c.AddObservable("x", Identity(1), KindSimple, 0, 0, 1, 0, estimator.KindNoop)
	c.Allocate()
	wlk := walker.New(1)
	wlk.Xold[0] = 1
	wlk.MarkAllChanged()
	wlk.Accepted = true
	c.Observe(wlk, 0)
	c.Finalize()
	c.Reset()
	if c.Entries()[0].Acc.Finalized() {
		t.Fatal("accumulator still finalized after Container.Reset")
	}
	c.Deallocate()
}

// nonSelective forwards only the plain Function methods, deliberately not
// promoting PerParticleSquare's UpdatedObservable, so it never satisfies
// Selective — a guaranteed full-evaluation twin to compare against.
type nonSelective struct{ inner *PerParticleSquare }

func (n nonSelective) NDim() int { return n.inner.NDim() }
func (n nonSelective) NObs() int { return n.inner.NObs() }
func (n nonSelective) ComputeObservables(x, out []float64) { n.inner.ComputeObservables(x, out) }

func TestSelectiveUpdateMatchesFullEvaluation(t *testing.T) {
	ndim := 2
	full := NewContainer(ndim)
	sel := NewContainer(ndim)
	_ = full.AddObservable("full", nonSelective{inner: NewPerParticleSquare(ndim)}, KindFull, 0, 0, 1, 0, estimator.KindCorrelated)
	_ = sel.AddObservable("sel", NewPerParticleSquare(ndim), KindFull, 0, 0, 1, 0, estimator.KindCorrelated)
	full.Allocate()
	sel.Allocate()

	// a 2-particle walk: alternately move particle 0 then particle 1, one
	// coordinate at a time, mirroring a particle-at-a-time trial move.
	positions := [][]float64{{0, 0}, {1, 0}, {1, 2}, {3, 2}, {3, 5}}
	changedIdx := []int{0, 1, 0, 1}

	wlkFull := walker.New(ndim)
	wlkSel := walker.New(ndim)
	copy(wlkFull.Xold, positions[0])
	copy(wlkSel.Xold, positions[0])

	for step := 1; step < len(positions); step++ {
		idx := changedIdx[step-1]
		copy(wlkFull.Xold, positions[step])
		copy(wlkSel.Xold, positions[step])
		wlkFull.Nchanged, wlkFull.ChangedIdx[0] = 1, idx
		wlkSel.Nchanged, wlkSel.ChangedIdx[0] = 1, idx
		wlkFull.Accepted, wlkSel.Accepted = true, true
		full.Observe(wlkFull, step-1)
		sel.Observe(wlkSel, step-1)
	}
	full.Finalize()
	sel.Finalize()

	fullData := full.Entries()[0].Acc.StoredData()
	selData := sel.Entries()[0].Acc.StoredData()
	if len(fullData) != len(selData) {
		t.Fatalf("trace length mismatch: full=%d selective=%d", len(fullData), len(selData))
	}
	for i := range fullData {
		for j := range fullData[i] {
			if fullData[i][j] != selData[i][j] {
				t.Fatalf("row %d mismatch: full=%v selective=%v", i, fullData[i], selData[i])
			}
		}
	}
}

func TestKindString(t *testing.T) {
	if KindSimple.String() != "simple" || KindBlock.String() != "block" || KindFull.String() != "full" {
		t.Fatalf("Kind.String() mismatch: %s %s %s", KindSimple, KindBlock, KindFull)
	}
}
