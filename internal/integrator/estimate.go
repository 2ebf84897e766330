package integrator

import (
	"github.com/san-kum/mcintegrate/internal/estimator"
	"github.com/san-kum/mcintegrate/internal/observable"
)

// EstimateEntry reduces an entry's stored rows into a mean and error bar
// using its installed estimator, independent of which storage strategy
// backed it. estimator.KindNoop (paired with a Simple accumulator's
// running sum) reports zero error rather than running any estimator.
func EstimateEntry(e *observable.Entry) (avg, errv []float64, err error) {
	rows := e.Acc.StoredData()
	if e.EstimKind == estimator.KindNoop {
		avg = append([]float64{}, rows[0]...)
		errv = make([]float64, len(avg))
		return avg, errv, nil
	}
	nblocks := len(rows)
	return estimator.Select(e.EstimKind, nblocks).Estimate(rows)
}

// EstimateEntryWith reduces an entry's stored rows using an explicitly
// chosen estimator, bypassing the Kind-based default in EstimateEntry.
func EstimateEntryWith(e *observable.Entry, est estimator.Estimator) (avg, errv []float64, err error) {
	return est.Estimate(e.Acc.StoredData())
}
