package heat_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/heatwire/internal/heat"
)

var _ = Describe("Initialize", func() {
	It("pins index 0 and zeroes the rest", func() {
		f, err := heat.Initialize(1.0, 4, 75)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(heat.Field{75, 0, 0, 0}))
	})

	It("rejects short grids and non-positive lengths", func() {
		_, err := heat.Initialize(1.0, 2, 100)
		Expect(err).To(MatchError(heat.ErrInvalidConfiguration))
		_, err = heat.Initialize(0, 10, 100)
		Expect(err).To(MatchError(heat.ErrInvalidConfiguration))
		_, err = heat.Initialize(math.Inf(1), 10, 100)
		Expect(err).To(MatchError(heat.ErrInvalidConfiguration))
	})
})

var _ = Describe("Field", func() {
	It("reports finiteness", func() {
		Expect(heat.Field{1, 2}.IsValid()).To(BeTrue())
		Expect(heat.Field{1, math.NaN()}.IsValid()).To(BeFalse())
		Expect(heat.Field{math.Inf(-1)}.IsValid()).To(BeFalse())
	})

	It("reduces", func() {
		f := heat.Field{4, -1, 3}
		Expect(f.Min()).To(Equal(-1.0))
		Expect(f.Max()).To(Equal(4.0))
		Expect(f.Content(0.5)).To(Equal(3.0))
	})

	It("clones independently", func() {
		f := heat.Field{1, 2, 3}
		c := f.Clone()
		c[0] = 9
		Expect(f[0]).To(Equal(1.0))
	})
})

var _ = Describe("History", func() {
	hist := heat.History{{100, 0, 0}, {100, 10, 0}, {100, 15, 0}}

	It("indexes safely", func() {
		Expect(hist.At(1)).To(Equal(heat.Field{100, 10, 0}))
		Expect(hist.At(3)).To(BeNil())
		Expect(hist.At(-1)).To(BeNil())
		Expect(hist.Last()).To(Equal(heat.Field{100, 15, 0}))
	})

	It("derives times, bounds and probes", func() {
		Expect(hist.Times(0.5)).To(Equal([]float64{0, 0.5, 1}))
		lo, hi := hist.Bounds()
		Expect(lo).To(Equal(0.0))
		Expect(hi).To(Equal(100.0))
		Expect(hist.Probe(1)).To(Equal([]float64{0, 10, 15}))
	})
})

var _ = Describe("Positions", func() {
	It("spans the wire inclusively", func() {
		Expect(heat.Positions(1, 5)).To(Equal([]float64{0, 0.25, 0.5, 0.75, 1}))
	})
})
