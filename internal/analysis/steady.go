package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/heatwire/internal/heat"
)

// SteadyState returns the fixed point of the stepper for an n point wire.
// A frozen far end gives the straight line from hot to far; an insulated
// far end lets the whole wire reach hot.
func SteadyState(n int, hot, far float64, farEnd heat.FarEnd) heat.Field {
	if n <= 0 {
		return heat.Field{}
	}
	f := make(heat.Field, n)
	if farEnd == heat.FarEndInsulated || n == 1 {
		for i := range f {
			f[i] = hot
		}
		return f
	}
	floats.Span(f, hot, far)
	return f
}

// SteadyStateFor derives the steady state from p and the initial far end value.
func SteadyStateFor(p heat.Params, initial heat.Field) heat.Field {
	far := 0.0
	if len(initial) > 0 {
		far = initial[len(initial)-1]
	}
	return SteadyState(p.Points, p.HotEnd, far, p.FarEnd)
}

func Residual(f, steady heat.Field) float64 {
	if len(f) != len(steady) {
		return math.NaN()
	}
	return floats.Distance(f, steady, 2)
}

// PenetrationDepth is the position of the first grid point colder than
// fraction of the hot end. It returns the full length when every point is
// at least that warm.
func PenetrationDepth(f heat.Field, dx, fraction float64) float64 {
	if len(f) == 0 {
		return 0
	}
	threshold := fraction * f[0]
	for i, v := range f {
		if v < threshold {
			return float64(i) * dx
		}
	}
	return float64(len(f)-1) * dx
}
