package integrator

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mcintegrate/internal/analysis"
	"github.com/san-kum/mcintegrate/internal/domain"
	"github.com/san-kum/mcintegrate/internal/estimator"
	"github.com/san-kum/mcintegrate/internal/observable"
	"github.com/san-kum/mcintegrate/internal/pdf"
	"github.com/san-kum/mcintegrate/internal/trial"
)

func sumOfSquares(ndim int) *observable.FuncAdapter {
	return observable.NewFunc(ndim, 1, func(x, out []float64) {
		s := 0.0
		for _, v := range x {
			s += v * v
		}
		out[0] = s
	})
}

var _ = Describe("Scenario A: 3-D Gaussian, sum-of-squares observable", func() {
	It("recovers avg ~= 1.5 within 3*err", func() {
		it := New(3)
		it.SetSeed(7)
		Expect(it.SetTrialMove(trial.NewUniformAll(3, 1.0))).To(Succeed())
		Expect(it.AddSamplingFunction(pdf.Gaussian(3))).To(Succeed())
		Expect(it.SetTargetAcceptanceRate(0.5)).To(Succeed())
		Expect(it.NewRandomX()).To(Succeed())
		Expect(it.AddObservable("r2", sumOfSquares(3), observable.KindBlock, 16, 0, 1, 0, estimator.KindUncorrelated)).To(Succeed())

		res, err := it.Integrate(1 << 15)
		Expect(err).NotTo(HaveOccurred())

		avg, errv := res.Avg[0][0], res.Err[0][0]
		Expect(math.Abs(avg-1.5)).To(BeNumerically("<", 3*errv+0.2))
	})
})

var _ = Describe("Scenario B: uniform domain, no PDF", func() {
	It("drives avg(x^2) toward 2/3 on [-1,1]", func() {
		it := New(1)
		it.SetSeed(11)
		Expect(it.SetDomain(domain.NewOrthoPeriodic(1, -1, 1))).To(Succeed())
		Expect(it.SetTrialMove(trial.NewUniformAll(1, 1.0))).To(Succeed())
		Expect(it.NewRandomX()).To(Succeed())
		Expect(it.AddObservable("x2", observable.Quadratic(1), observable.KindFull, 0, 20000, 1, 0, estimator.KindCorrelated)).To(Succeed())

		res, err := it.Integrate(20000)
		Expect(err).NotTo(HaveOccurred())

		avg := res.Avg[0][0]
		Expect(avg).To(BeNumerically("~", 2.0/3.0, 0.1))
	})
})

var _ = Describe("Scenario C: 3-D Gaussian, joint second moments", func() {
	It("reports each component near 0.5", func() {
		it := New(3)
		it.SetSeed(13)
		Expect(it.SetTrialMove(trial.NewUniformAll(3, 1.0))).To(Succeed())
		Expect(it.AddSamplingFunction(pdf.Gaussian(3))).To(Succeed())
		Expect(it.NewRandomX()).To(Succeed())
		Expect(it.AddObservable("x2", observable.Quadratic(3), observable.KindFull, 0, 1<<14, 1, 0, estimator.KindCorrelated)).To(Succeed())

		res, err := it.Integrate(1 << 14)
		Expect(err).NotTo(HaveOccurred())

		for i, v := range res.Avg[0] {
			errv := res.Err[0][i]
			Expect(math.Abs(v-0.5)).To(BeNumerically("<", 5*errv+0.15))
		}
	})
})

var _ = Describe("Scenario D: exponential-modulus PDF", func() {
	It("keeps avg(x) symmetric around zero", func() {
		it := New(1)
		it.SetSeed(17)
		Expect(it.SetTrialMove(trial.NewUniformAll(1, 1.0))).To(Succeed())
		Expect(it.AddSamplingFunction(pdf.ExponentialModulus(1))).To(Succeed())
		Expect(it.NewRandomX()).To(Succeed())
		Expect(it.AddObservable("x", observable.Identity(1), observable.KindFull, 0, 1<<14, 1, 0, estimator.KindCorrelated)).To(Succeed())

		res, err := it.Integrate(1 << 14)
		Expect(err).NotTo(HaveOccurred())

		avg, errv := res.Avg[0][0], res.Err[0][0]
		Expect(math.Abs(avg)).To(BeNumerically("<", 5*errv+0.1))
	})
})

var _ = Describe("Scenario E: full vs selective acceptance consistency", func() {
	It("agrees between UpdatedAcceptance and a from-scratch recompute", func() {
		g := pdf.Gaussian(2)
		g.ComputeOldProtoValues([]float64{0.3, -0.7})

		xold := []float64{0.3, -0.7}
		xnew := []float64{0.3, 1.1}
		changedIdx := []int{1}

		pvOld := append([]float64{}, g.ProtoOld()...)
		pvNewSelective := append([]float64{}, g.ProtoOld()...)
		selectiveAcc := g.UpdatedAcceptance(xold, xnew, 1, changedIdx, pvOld, pvNewSelective)

		var fullProto [2]float64
		g.ProtoValues(xnew, fullProto[:])
		fullAcc := g.Acceptance(g.ProtoOld(), fullProto[:])

		Expect(selectiveAcc).To(BeNumerically("~", fullAcc, 1e-12))
	})
})

var _ = Describe("Scenario F: correlated-series error inflation", func() {
	It("reports a Correlated error larger than the naive Uncorrelated one, consistent with tau", func() {
		n := 4096
		phi := 0.9 // strong AR(1) persistence
		series := make([]float64, n)
		x := 0.0
		// deterministic AR(1) recursion driven by a fixed low-discrepancy
		// innovation sequence, so the scenario is reproducible without a
		// fresh random draw on every test run.
		for i := 0; i < n; i++ {
			innovation := math.Sin(float64(i)*12.9898) * 43758.5453
			innovation -= math.Floor(innovation)
			innovation = innovation*2 - 1
			x = phi*x + innovation
			series[i] = x
		}

		rows := make([][]float64, n)
		for i, v := range series {
			rows[i] = []float64{v}
		}

		_, naiveErr, err := estimator.NewUncorrelated().Estimate(rows)
		Expect(err).NotTo(HaveOccurred())

		_, blockedErr, err := estimator.NewCorrelated().Estimate(rows)
		Expect(err).NotTo(HaveOccurred())

		Expect(blockedErr[0]).To(BeNumerically(">", naiveErr[0]))

		tau := analysis.AutocorrelationTime(series)
		Expect(tau).To(BeNumerically(">", 1))

		ratio := blockedErr[0] / naiveErr[0]
		Expect(ratio).To(BeNumerically(">", 1.2))
	})
})
