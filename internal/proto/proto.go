// Package proto implements the "proto-value" pattern shared by sampling
// functions and trial moves: a function that benefits from persistent
// temporaries implements Compute once and inherits NewToOld/OldToNew
// commit/rollback semantics from the embedded Base.
package proto

// Base owns the two proto-value buffers every ProtoFunction needs: Old holds
// the values for the last accepted walker position, New holds the values
// for the currently proposed one. After ComputeOld both slots equal the
// freshly computed values; after a successful step both slots are equal
// again, now for the accepted position.
type Base struct {
	Old []float64
	New []float64
}

// Init allocates both buffers for nproto proto-values.
func (b *Base) Init(nproto int) {
	b.Old = make([]float64, nproto)
	b.New = make([]float64, nproto)
}

// NProto reports how many proto-values are tracked.
func (b *Base) NProto() int { return len(b.Old) }

// NewToOld commits the proposed proto-values as accepted.
func (b *Base) NewToOld() { copy(b.Old, b.New) }

// OldToNew rolls the proposed proto-values back to the accepted ones.
func (b *Base) OldToNew() { copy(b.New, b.Old) }

// ComputeOld evaluates compute(x) into the New slot and commits it to Old,
// leaving both slots equal to the freshly computed values for x. Concrete
// ProtoFunctions (SamplingFunctions, TrialMoves with per-coordinate
// bookkeeping) call this from their own ComputeOldProtoValues.
func (b *Base) ComputeOld(x []float64, compute func(x, out []float64)) {
	compute(x, b.New)
	b.NewToOld()
}
