// Package estimator turns an Accumulator's stored rows into a mean and
// error bar per observable component, using one of several blocking
// strategies of increasing sophistication about intra-run correlation.
package estimator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mcintegrate/internal/mcierr"
)

// Kind names one of the estimator strategies an observable can be paired
// with at installation time, independent of which Accumulator storage
// strategy backs it.
type Kind int

const (
	// KindNoop means no error bar is computed at all; pairs with a Simple
	// accumulator's running sum. Cannot be combined with an equilibration
	// warm-up (there would be nothing to measure convergence against).
	KindNoop Kind = iota
	// KindUncorrelated treats every stored row as an independent sample.
	KindUncorrelated
	// KindCorrelated applies the Flyvbjerg-Petersen pairwise blocker and
	// reports the largest error estimate over all blocking levels. It does
	// not search for a plateau in the blocking curve and does not pick a
	// block size.
	KindCorrelated
	// KindMJBlocker applies the jackknife-over-blocks estimator, which
	// tolerates non-power-of-two sample counts without trimming.
	KindMJBlocker
)

func (k Kind) String() string {
	switch k {
	case KindNoop:
		return "noop"
	case KindUncorrelated:
		return "uncorrelated"
	case KindCorrelated:
		return "correlated"
	case KindMJBlocker:
		return "mjblocker"
	default:
		return "unknown"
	}
}

// Select builds the Estimator for kind. nblocks is only consulted by
// KindMJBlocker (the jackknife block count); other kinds ignore it.
func Select(kind Kind, nblocks int) Estimator {
	switch kind {
	case KindUncorrelated:
		return NewUncorrelated()
	case KindCorrelated:
		return NewCorrelated()
	case KindMJBlocker:
		return NewMJBlocker(nblocks)
	default:
		return NewUncorrelated()
	}
}

// Estimator reduces a set of rows (whose interpretation depends on which
// Accumulator produced them — raw samples for Full, block means for
// Block/Correlated/MJBlocker) into one mean and one standard error per
// column.
type Estimator interface {
	Name() string
	Estimate(rows [][]float64) (avg, errv []float64, err error)
}

// column extracts column j of rows into a fresh slice, the shape
// gonum.org/v1/gonum/stat's routines expect (they operate on a single
// float64 slice, not row-major matrices).
func column(rows [][]float64, j int) []float64 {
	col := make([]float64, len(rows))
	for i, row := range rows {
		col[i] = row[j]
	}
	return col
}

// meanAndVar computes the column-wise sample mean and standard error of
// the mean, sqrt(var/n) with Bessel-corrected var, across rows, treating every row as an
// independent draw. This is the Uncorrelated estimator's core and the
// final step every other estimator falls back to once it has reduced
// correlated samples into effectively independent block means.
func meanAndVar(rows [][]float64) (avg, errv []float64, err error) {
	n := len(rows)
	if n == 0 {
		return nil, nil, mcierr.NewStateError("Estimate", "no accumulated samples")
	}
	ncol := len(rows[0])
	avg = make([]float64, ncol)
	errv = make([]float64, ncol)
	if n < 2 {
		for j := range avg {
			avg[j] = rows[0][j]
		}
		return avg, errv, nil // no variance estimate possible from one sample
	}
	for j := 0; j < ncol; j++ {
		mean, variance := stat.MeanVariance(column(rows, j), nil) // Bessel-corrected
		avg[j] = mean
		errv[j] = math.Sqrt(variance / float64(n))
	}
	return avg, errv, nil
}

// Uncorrelated treats every row as an independent sample: the textbook
// mean and standard-error-of-the-mean, with no attempt to detect or
// correct for autocorrelation between rows.
type Uncorrelated struct{}

func NewUncorrelated() Uncorrelated { return Uncorrelated{} }

func (Uncorrelated) Name() string { return "uncorrelated" }

func (Uncorrelated) Estimate(rows [][]float64) (avg, errv []float64, err error) {
	return meanAndVar(rows)
}

// Block partitions rows (typically raw Full samples, but block means also
// work) into a fixed number of contiguous groups, averages each group,
// then applies Uncorrelated to the group means. Grouping suppresses
// short-range correlation at the cost of a coarser sample count.
type Block struct {
	NBlocks int
}

func NewBlock(nblocks int) Block { return Block{NBlocks: nblocks} }

func (Block) Name() string { return "block" }

func (b Block) Estimate(rows [][]float64) (avg, errv []float64, err error) {
	n := len(rows)
	if n == 0 {
		return nil, nil, mcierr.NewStateError("Estimate", "no accumulated samples")
	}
	nblocks := b.NBlocks
	if nblocks < 1 || nblocks > n {
		return nil, nil, mcierr.NewConfigError("Estimate", "block estimator requires 1 <= nblocks <= nsamples")
	}
	ncol := len(rows[0])
	perBlock := n / nblocks
	means := make([][]float64, nblocks)
	for b := 0; b < nblocks; b++ {
		start := b * perBlock
		end := start + perBlock
		if b == nblocks-1 {
			end = n
		}
		row := make([]float64, ncol)
		for _, r := range rows[start:end] {
			for j, v := range r {
				row[j] += v
			}
		}
		count := float64(end - start)
		for j := range row {
			row[j] /= count
		}
		means[b] = row
	}
	return meanAndVar(means)
}

// Correlated implements Flyvbjerg-Petersen pairwise renormalization
// blocking: repeatedly average adjacent pairs of rows, halving the sample
// count and (for correlated data) approximately doubling the naive
// variance-of-the-mean estimate at each level, until it plateaus. The
// input is trimmed down to the largest power of two <= len(rows), since
// the pairing halves cleanly only then; any remainder rows are dropped.
type Correlated struct{}

func NewCorrelated() Correlated { return Correlated{} }

func (Correlated) Name() string { return "correlated" }

// largestPow2LE returns the largest power of two not exceeding n.
func largestPow2LE(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func (Correlated) Estimate(rows [][]float64) (avg, errv []float64, err error) {
	n := len(rows)
	if n < 2 {
		return nil, nil, mcierr.NewStateError("Estimate", "correlated estimator needs at least 2 samples")
	}
	trimmed := largestPow2LE(n)
	work := rows[:trimmed]
	ncol := len(work[0])

	avg = make([]float64, ncol)
	for j := 0; j < ncol; j++ {
		avg[j] = stat.Mean(column(work, j), nil)
	}

	// bestErr[j] tracks the maximum naive-variance-of-the-mean observed
	// across blocking levels: a genuinely correlated series shows this
	// quantity rising then plateauing as block size exceeds the
	// correlation length, and the plateau is the right error estimate.
	// An uncorrelated series instead stays flat from level 0, so taking
	// the max is a safe, non-underestimating choice either way. It is a
	// conservative stand-in for "first plateau": the noisy few-block tail
	// at the deepest levels can spike above the true plateau and make this
	// estimator overestimate the error on a short run.
	bestErr := make([]float64, ncol)
	cur := work
	for len(cur) >= 2 {
		m := len(cur)
		sq := make([]float64, ncol)
		for _, row := range cur {
			for j, v := range row {
				d := v - avg[j]
				sq[j] += d * d
			}
		}
		for j := range sq {
			variance := sq[j] / float64(m) / float64(m-1)
			se := math.Sqrt(variance)
			if se > bestErr[j] {
				bestErr[j] = se
			}
		}
		next := make([][]float64, m/2)
		for b := 0; b < m/2; b++ {
			row := make([]float64, ncol)
			for j := 0; j < ncol; j++ {
				row[j] = 0.5 * (cur[2*b][j] + cur[2*b+1][j])
			}
			next[b] = row
		}
		cur = next
	}
	return avg, bestErr, nil
}

// MJBlocker is a multivariate jackknife blocker: it builds n leave-one-
// block-out means (n = len(rows) after trimming to a convenient block
// count) and estimates the variance of the mean from the spread of the
// jackknife replicates, which is robust to the moderate correlation
// remaining after blocking without requiring rows to be a power of two.
type MJBlocker struct {
	NBlocks int
}

func NewMJBlocker(nblocks int) MJBlocker { return MJBlocker{NBlocks: nblocks} }

func (MJBlocker) Name() string { return "mjblocker" }

func (m MJBlocker) Estimate(rows [][]float64) (avg, errv []float64, err error) {
	n := len(rows)
	nblocks := m.NBlocks
	if nblocks < 2 || nblocks > n {
		return nil, nil, mcierr.NewConfigError("Estimate", "mjblocker requires 2 <= nblocks <= nsamples")
	}
	ncol := len(rows[0])
	perBlock := n / nblocks

	blockSum := make([][]float64, nblocks)
	total := make([]float64, ncol)
	for b := 0; b < nblocks; b++ {
		start := b * perBlock
		end := start + perBlock
		if b == nblocks-1 {
			end = n
		}
		s := make([]float64, ncol)
		for _, r := range rows[start:end] {
			for j, v := range r {
				s[j] += v
			}
		}
		blockSum[b] = s
		for j, v := range s {
			total[j] += v
		}
	}

	avg = make([]float64, ncol)
	for j, v := range total {
		avg[j] = v / float64(n)
	}

	// jackknife replicate b: the mean excluding block b.
	replicates := make([][]float64, nblocks)
	for b := 0; b < nblocks; b++ {
		start := b * perBlock
		end := start + perBlock
		if b == nblocks-1 {
			end = n
		}
		excluded := end - start
		rep := make([]float64, ncol)
		for j := range rep {
			rep[j] = (total[j] - blockSum[b][j]) / float64(n-excluded)
		}
		replicates[b] = rep
	}

	errv = make([]float64, ncol)
	repMean := make([]float64, ncol)
	for _, rep := range replicates {
		for j, v := range rep {
			repMean[j] += v
		}
	}
	for j := range repMean {
		repMean[j] /= float64(nblocks)
	}
	for _, rep := range replicates {
		for j, v := range rep {
			d := v - repMean[j]
			errv[j] += d * d
		}
	}
	factor := float64(nblocks-1) / float64(nblocks)
	for j := range errv {
		errv[j] = math.Sqrt(factor * errv[j])
	}
	return avg, errv, nil
}
