package pdf

import "math"

// trigTable provides precomputed cosine values with linear interpolation,
// used to accelerate the VonMises demo PDF's hot loop when it runs inside a
// tight accept/reject cycle over an angular (periodic) domain.
type trigTable struct {
	cos []float64
	n   int
}

func newTrigTable(n int) *trigTable {
	t := &trigTable{cos: make([]float64, n), n: n}
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		t.cos[i] = math.Cos(angle)
	}
	return t
}

// defaultTrigTable is shared by every VonMises instance; 4096 entries give
// ~0.0015 rad resolution, well below Metropolis step sizes in practice.
var defaultTrigTable = newTrigTable(4096)

func (t *trigTable) Cos(x float64) float64 {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	idx := x * float64(t.n) / (2 * math.Pi)
	i := int(idx)
	frac := idx - float64(i)
	i0 := i % t.n
	i1 := (i + 1) % t.n
	return t.cos[i0]*(1-frac) + t.cos[i1]*frac
}

// VonMises is a separable periodic density π(θ) ∝ exp(κ·Σ cos(θ_i-μ_i)),
// the angular analogue of an isotropic Gaussian, meant to be paired with an
// OrthoPeriodic domain of extent 2π per dimension.
type VonMises struct {
	Base
	kappa float64
	mu    []float64
}

// NewVonMises builds a VonMises PDF with concentration kappa and per-
// dimension mode mu (length ndim).
func NewVonMises(kappa float64, mu []float64) *VonMises {
	v := &VonMises{kappa: kappa, mu: append([]float64{}, mu...)}
	v.Init(len(mu), len(mu), v.protoFunction)
	return v
}

func (v *VonMises) protoFunction(x, out []float64) {
	for i, xi := range x {
		out[i] = -v.kappa * defaultTrigTable.Cos(xi-v.mu[i])
	}
}

func (v *VonMises) Value(proto []float64) float64 {
	sum := 0.0
	for _, p := range proto {
		sum += p
	}
	return safeExp(-sum)
}

func (v *VonMises) Acceptance(protoOld, protoNew []float64) float64 {
	delta := 0.0
	for i := range protoOld {
		delta += protoOld[i] - protoNew[i]
	}
	return safeExp(delta)
}

func (v *VonMises) UpdatedAcceptance(xold, xnew []float64, nchanged int, changedIdx []int, pvOld, pvNew []float64) float64 {
	delta := 0.0
	for k := 0; k < nchanged; k++ {
		i := changedIdx[k]
		pvNew[i] = -v.kappa * defaultTrigTable.Cos(xnew[i]-v.mu[i])
		delta += pvOld[i] - pvNew[i]
	}
	return safeExp(delta)
}
