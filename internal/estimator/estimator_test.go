package estimator

import (
	"math"
	"testing"
)

func constRows(n, ncol int, v float64) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, ncol)
		for j := range row {
			row[j] = v
		}
		rows[i] = row
	}
	return rows
}

func TestUncorrelatedConstantSeriesZeroError(t *testing.T) {
	rows := constRows(10, 2, 3.0)
	est := NewUncorrelated()
	avg, errv, err := est.Estimate(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg[0] != 3.0 || avg[1] != 3.0 {
		t.Fatalf("avg=%v, want [3 3]", avg)
	}
	if errv[0] != 0 || errv[1] != 0 {
		t.Fatalf("errv=%v, want [0 0] for a constant series", errv)
	}
}

func TestUncorrelatedEmptyRows(t *testing.T) {
	est := NewUncorrelated()
	if _, _, err := est.Estimate(nil); err == nil {
		t.Fatal("expected error for zero rows")
	}
}

func TestUncorrelatedSingleRowNoVariance(t *testing.T) {
	est := NewUncorrelated()
	avg, errv, err := est.Estimate([][]float64{{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg[0] != 1 || avg[1] != 2 {
		t.Fatalf("avg=%v, want [1 2]", avg)
	}
	if errv[0] != 0 || errv[1] != 0 {
		t.Fatalf("errv=%v, want [0 0] for a single sample", errv)
	}
}

func TestBlockPartitionsAndErrors(t *testing.T) {
	rows := make([][]float64, 8)
	for i := range rows {
		rows[i] = []float64{float64(i)}
	}
	b := NewBlock(4)
	avg, errv, err := b.Estimate(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(avg[0]-3.5) > 1e-12 {
		t.Fatalf("avg=%v, want [3.5]", avg)
	}
	if errv[0] <= 0 {
		t.Fatalf("errv=%v, want a positive spread across block means", errv)
	}
}

func TestBlockRejectsInvalidNBlocks(t *testing.T) {
	rows := constRows(4, 1, 1)
	b := NewBlock(10)
	if _, _, err := b.Estimate(rows); err == nil {
		t.Fatal("expected error when nblocks > nsamples")
	}
}

func TestCorrelatedConstantSeriesZeroError(t *testing.T) {
	rows := constRows(16, 1, 5.0)
	c := NewCorrelated()
	avg, errv, err := c.Estimate(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg[0] != 5.0 {
		t.Fatalf("avg=%v, want [5]", avg)
	}
	if errv[0] > 1e-9 {
		t.Fatalf("errv=%v, want ~0 for a constant series", errv)
	}
}

func TestCorrelatedTrimsToPowerOfTwo(t *testing.T) {
	rows := constRows(13, 1, 1.0) // not a power of two
	c := NewCorrelated()
	if _, _, err := c.Estimate(rows); err != nil {
		t.Fatalf("unexpected error with non-power-of-two input: %v", err)
	}
}

func TestCorrelatedDetectsRisingVariance(t *testing.T) {
	// A strongly correlated alternating-run series: naive level-0 variance
	// should be smaller than what blocking reveals once pairs cross the
	// correlation length.
	n := 64
	rows := make([][]float64, n)
	for i := range rows {
		v := 0.0
		if (i/8)%2 == 0 {
			v = 1.0
		}
		rows[i] = []float64{v}
	}
	c := NewCorrelated()
	_, errv, err := c.Estimate(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errv[0] <= 0 {
		t.Fatalf("errv=%v, want a positive plateau error for correlated data", errv)
	}
	_, naive, err := NewUncorrelated().Estimate(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errv[0] <= naive[0] {
		t.Fatalf("blocked errv=%v, want it above the naive level-0 error %v", errv, naive)
	}
}

func TestMJBlockerMeanAndErrorOnPeriodicSeries(t *testing.T) {
	rows := make([][]float64, 20)
	for i := range rows {
		rows[i] = []float64{float64(i % 3)}
	}
	mj := NewMJBlocker(10)
	avg, errv, err := mj.Estimate(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg[0] <= 0 {
		t.Fatalf("avg=%v, want a positive mean", avg)
	}
	if errv[0] < 0 {
		t.Fatalf("errv=%v, want non-negative", errv)
	}
}

func TestMJBlockerRejectsBadNBlocks(t *testing.T) {
	rows := constRows(5, 1, 1)
	mj := NewMJBlocker(1)
	if _, _, err := mj.Estimate(rows); err == nil {
		t.Fatal("expected error for nblocks < 2")
	}
}

func TestLargestPow2LE(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 2, 7: 4, 8: 8, 9: 8, 1023: 512}
	for n, want := range cases {
		if got := largestPow2LE(n); got != want {
			t.Errorf("largestPow2LE(%d) = %d, want %d", n, got, want)
		}
	}
}
