// Package walker holds the shared per-step record the rest of the engine
// reads and writes during a Metropolis step.
package walker

// State is the walker's current and proposed positions plus the bookkeeping
// a selective (few-coordinate) move needs to describe what changed.
//
// Invariants: Xold is mutated only by a commit (NewToOld/OldToNew), never by
// a TrialMove directly. When Nchanged == len(Xold), ChangedIdx is considered
// to enumerate 0..ndim and callers may ignore its contents.
type State struct {
	Xold       []float64
	Xnew       []float64
	Nchanged   int
	ChangedIdx []int
	Accepted   bool
}

// New allocates a walker of the given dimension.
func New(ndim int) *State {
	return &State{
		Xold:       make([]float64, ndim),
		Xnew:       make([]float64, ndim),
		ChangedIdx: make([]int, ndim),
	}
}

// NDim reports the walker's dimensionality.
func (w *State) NDim() int { return len(w.Xold) }

// NewToOld copies Xnew into Xold (step accepted).
func (w *State) NewToOld() { copy(w.Xold, w.Xnew) }

// OldToNew copies Xold into Xnew (step rejected, roll back).
func (w *State) OldToNew() { copy(w.Xnew, w.Xold) }

// MarkAllChanged sets Nchanged to the full dimension, as a full-coordinate
// move does; ChangedIdx is left stale since callers must ignore it per the
// invariant above.
func (w *State) MarkAllChanged() { w.Nchanged = len(w.Xold) }

// MarkChanged records that a block move touched exactly the given ascending
// indices.
func (w *State) MarkChanged(idx []int) {
	w.Nchanged = copy(w.ChangedIdx, idx)
}
