package metrics

import (
	"math"

	"github.com/san-kum/heatwire/internal/heat"
)

// Overshoot tracks how far any interior value of step k lands outside the
// range of step k-1. A stable explicit scheme never overshoots.
type Overshoot struct {
	name   string
	lo, hi float64
	seen   bool
	max    float64
}

func NewOvershoot() *Overshoot {
	return &Overshoot{name: "max_overshoot"}
}

func (o *Overshoot) Name() string { return o.name }

func (o *Overshoot) Observe(_ int, _ float64, f heat.Field) {
	if o.seen {
		for i := 1; i < len(f)-1; i++ {
			switch {
			case f[i] < o.lo:
				o.max = math.Max(o.max, o.lo-f[i])
			case f[i] > o.hi:
				o.max = math.Max(o.max, f[i]-o.hi)
			}
		}
	}
	o.lo, o.hi, o.seen = f.Min(), f.Max(), true
}

func (o *Overshoot) Value() float64 { return o.max }

func (o *Overshoot) Reset() {
	o.lo, o.hi, o.max, o.seen = 0, 0, 0, false
}

// Boundedness is the fraction of snapshots staying inside the initial range.
type Boundedness struct {
	name       string
	lo, hi     float64
	samples    int
	violations int
}

func NewBoundedness() *Boundedness {
	return &Boundedness{name: "boundedness"}
}

func (b *Boundedness) Name() string { return b.name }

func (b *Boundedness) Observe(_ int, _ float64, f heat.Field) {
	if b.samples == 0 {
		b.lo, b.hi = f.Min(), f.Max()
	}
	b.samples++
	if f.Min() < b.lo || f.Max() > b.hi {
		b.violations++
	}
}

func (b *Boundedness) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Boundedness) Reset() {
	b.samples, b.violations = 0, 0
}

// BoundaryDrift is the largest deviation of index 0 from the hot-end value.
type BoundaryDrift struct {
	name   string
	hotEnd float64
	drift  float64
}

func NewBoundaryDrift(hotEnd float64) *BoundaryDrift {
	return &BoundaryDrift{name: "boundary_drift", hotEnd: hotEnd}
}

func (d *BoundaryDrift) Name() string { return d.name }

func (d *BoundaryDrift) Observe(_ int, _ float64, f heat.Field) {
	if len(f) == 0 {
		return
	}
	d.drift = math.Max(d.drift, math.Abs(f[0]-d.hotEnd))
}

func (d *BoundaryDrift) Value() float64 { return d.drift }
func (d *BoundaryDrift) Reset()         { d.drift = 0 }
