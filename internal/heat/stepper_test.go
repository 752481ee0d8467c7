package heat_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/heatwire/internal/heat"
)

func mustRun(p heat.Params) heat.History {
	GinkgoHelper()
	hist, err := heat.Simulate(p)
	Expect(err).NotTo(HaveOccurred())
	return hist
}

var _ = Describe("Stepper", func() {
	var p heat.Params

	BeforeEach(func() {
		p = heat.DefaultParams()
		p.Steps = 200
	})

	Describe("Run", func() {
		It("records total_steps+1 snapshots", func() {
			for _, steps := range []int{0, 1, 7, 200} {
				p.Steps = steps
				Expect(mustRun(p)).To(HaveLen(steps + 1))
			}
		})

		It("starts from the initial field", func() {
			hist := mustRun(p)
			f0 := hist[0]
			Expect(f0[0]).To(Equal(100.0))
			for _, v := range f0[1:] {
				Expect(v).To(BeZero())
			}
		})

		It("returns only the initial field for zero steps", func() {
			p.Steps = 0
			f0, err := heat.Initialize(p.Length, p.Points, p.HotEnd)
			Expect(err).NotTo(HaveOccurred())
			hist := mustRun(p)
			Expect(hist).To(HaveLen(1))
			Expect(hist[0].Equal(f0)).To(BeTrue())
		})

		It("keeps the hot end pinned", func() {
			for k, f := range mustRun(p) {
				Expect(f[0]).To(Equal(p.HotEnd), "step %d", k)
			}
		})

		It("never updates the last index", func() {
			hist := mustRun(p)
			last := p.Points - 1
			for k := range hist {
				Expect(hist[k][last]).To(Equal(hist[0][last]), "step %d", k)
			}
		})

		It("stays within the previous step's bounds when stable", func() {
			Expect(p.Stable()).To(BeTrue())
			hist := mustRun(p)
			for k := 1; k < len(hist); k++ {
				lo, hi := hist[k-1].Min(), hist[k-1].Max()
				for i := 1; i < p.Points-1; i++ {
					Expect(hist[k][i]).To(BeNumerically(">=", lo), "step %d index %d", k, i)
					Expect(hist[k][i]).To(BeNumerically("<=", hi), "step %d index %d", k, i)
				}
			}
		})

		It("overshoots once the stability threshold is exceeded", func() {
			p.Points = 10
			p.Dt = 0.6 * p.MaxStableDt() / heat.StabilityLimit
			p.AllowUnstable = true
			Expect(p.Fourier()).To(BeNumerically("~", 0.6, 1e-9))

			hist := mustRun(p)
			violated := false
			for k := 1; k < len(hist) && !violated; k++ {
				lo, hi := hist[k-1].Min(), hist[k-1].Max()
				for i := 1; i < p.Points-1; i++ {
					if hist[k][i] < lo || hist[k][i] > hi {
						violated = true
						break
					}
				}
			}
			Expect(violated).To(BeTrue())
		})

		It("is deterministic", func() {
			Expect(mustRun(p).Equal(mustRun(p))).To(BeTrue())
		})

		It("does not alias snapshots", func() {
			hist := mustRun(p)
			hist[1][1] = -1
			Expect(hist[2][1]).NotTo(Equal(-1.0))
			Expect(hist[0][1]).To(BeZero())
		})

		It("rejects negative step counts", func() {
			s, err := heat.NewStepper(p)
			Expect(err).NotTo(HaveOccurred())
			f0, _ := heat.Initialize(p.Length, p.Points, p.HotEnd)
			_, err = s.Run(f0, -1)
			Expect(err).To(MatchError(heat.ErrInvalidConfiguration))
		})
	})

	Describe("the five point wire", func() {
		It("diffuses the boundary into index 1 only after one step", func() {
			p = heat.Params{Length: 1.25, Points: 5, Dt: 0.01, Alpha: 0.01, HotEnd: 100, Steps: 1}
			Expect(p.Dx()).To(Equal(0.25))

			hist := mustRun(p)
			Expect(hist[0]).To(Equal(heat.Field{100, 0, 0, 0, 0}))
			Expect(hist[1][0]).To(Equal(100.0))
			Expect(hist[1][1]).To(BeNumerically("~", 0.16, 1e-12))
			Expect(hist[1][2:]).To(Equal(heat.Field{0, 0, 0}))
		})
	})

	Describe("Step", func() {
		It("leaves its input untouched", func() {
			s, err := heat.NewStepper(p)
			Expect(err).NotTo(HaveOccurred())
			f := heat.Field{100, 50, 25, 10, 0}
			before := f.Clone()
			next := s.Step(f)
			Expect(f.Equal(before)).To(BeTrue())
			Expect(next.Equal(f)).To(BeFalse())
		})

		It("matches the stencil formula", func() {
			s, err := heat.NewStepper(p)
			Expect(err).NotTo(HaveOccurred())
			f := heat.Field{100, 40, 30, 5, 1}
			next := s.Step(f)
			r := s.Fourier()
			for i := 1; i < len(f)-1; i++ {
				want := f[i] + r*(f[i-1]-2*f[i]+f[i+1])
				Expect(next[i]).To(Equal(want))
			}
			Expect(next[len(f)-1]).To(Equal(1.0))
		})
	})

	Describe("Advance", func() {
		It("tracks the step counter and time", func() {
			s, err := heat.NewStepper(p)
			Expect(err).NotTo(HaveOccurred())
			f0, _ := heat.Initialize(p.Length, p.Points, p.HotEnd)
			s.Reset(f0)
			var last heat.Field
			for i := 0; i < 3; i++ {
				last = s.Advance()
			}
			Expect(s.Steps()).To(Equal(3))
			Expect(s.Time()).To(BeNumerically("~", 0.03, 1e-12))

			hist, err := s.Run(f0, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(hist[3].Equal(last)).To(BeTrue())
		})
	})

	Describe("insulated far end", func() {
		It("mirrors the neighbouring point", func() {
			p.FarEnd = heat.FarEndInsulated
			hist := mustRun(p)
			n := p.Points
			for k := 1; k < len(hist); k++ {
				Expect(hist[k][n-1]).To(Equal(hist[k][n-2]))
			}
			Expect(hist.Last()[n-1]).To(BeNumerically(">", 0))
		})
	})

	Describe("spatial parallelism", func() {
		It("produces the same history as the serial loop", func() {
			p.Points = 10000
			p.Length = 1
			p.Alpha = 1e-6
			p.Dt = 0.4 * p.MaxStableDt()
			p.Steps = 5

			serial := mustRun(p)
			p.Workers = 4
			parallel := mustRun(p)
			Expect(parallel.Equal(serial)).To(BeTrue())
		})
	})
})

var _ = Describe("NewStepper", func() {
	It("rejects configurations above the stability threshold", func() {
		p := heat.DefaultParams()
		p.Dt = 2 * p.MaxStableDt()
		_, err := heat.NewStepper(p)
		Expect(err).To(MatchError(heat.ErrNumericInstability))

		var ie *heat.InstabilityError
		Expect(err).To(BeAssignableToTypeOf(ie))
		ie = err.(*heat.InstabilityError)
		Expect(ie.Fourier).To(BeNumerically("~", 1.0, 1e-9))
		Expect(ie.MaxDt).To(BeNumerically("~", p.MaxStableDt(), 1e-15))
	})

	It("accepts the threshold itself", func() {
		p := heat.Params{Length: 1, Points: 4, Dt: 0.0625, Alpha: 0.5, HotEnd: 100, Steps: 10}
		Expect(p.Fourier()).To(Equal(heat.StabilityLimit))
		_, err := heat.NewStepper(p)
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("rejects structurally invalid parameters",
		func(mutate func(*heat.Params), field string) {
			p := heat.DefaultParams()
			mutate(&p)
			_, err := heat.NewStepper(p)
			Expect(err).To(MatchError(heat.ErrInvalidConfiguration))
			var ce *heat.ConfigError
			Expect(err).To(BeAssignableToTypeOf(ce))
			Expect(err.(*heat.ConfigError).Field).To(Equal(field))
		},
		Entry("too few points", func(p *heat.Params) { p.Points = 2 }, "points"),
		Entry("zero length", func(p *heat.Params) { p.Length = 0 }, "length"),
		Entry("negative length", func(p *heat.Params) { p.Length = -1 }, "length"),
		Entry("NaN length", func(p *heat.Params) { p.Length = math.NaN() }, "length"),
		Entry("zero dt", func(p *heat.Params) { p.Dt = 0 }, "dt"),
		Entry("negative alpha", func(p *heat.Params) { p.Alpha = -0.1 }, "alpha"),
		Entry("negative steps", func(p *heat.Params) { p.Steps = -1 }, "steps"),
		Entry("unknown far end", func(p *heat.Params) { p.FarEnd = "radiative" }, "far_end"),
	)
})
