package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/heatwire/internal/heat"
)

var ErrTooFewSamples = errors.New("analysis: need at least two positive residuals")

// DecayRate fits ln(residual) = a - rate*t over snapshots from index from
// onwards and returns rate. Zero residuals are skipped.
func DecayRate(history heat.History, steady heat.Field, dt float64, from int) (float64, error) {
	from = max(from, 0)
	var ts, ys []float64
	for k := from; k < history.Len(); k++ {
		r := Residual(history[k], steady)
		if !(r > 0) || math.IsInf(r, 0) {
			continue
		}
		ts = append(ts, float64(k)*dt)
		ys = append(ys, math.Log(r))
	}
	if len(ts) < 2 {
		return 0, ErrTooFewSamples
	}
	_, slope := stat.LinearRegression(ts, ys, nil, false)
	return -slope, nil
}

// TheoreticalDecayRate is -ln(g)/dt for the amplification factor g of the
// slowest discrete mode. With a frozen far end the n-2 interior points see
// Dirichlet conditions on both sides; an insulated far end mirrors the last
// interior point. It returns NaN when the slowest mode does not decay
// monotonically.
func TheoreticalDecayRate(p heat.Params) float64 {
	interior := p.Points - 2
	if interior < 1 || p.Dt <= 0 {
		return math.NaN()
	}
	var theta float64
	if p.FarEnd == heat.FarEndInsulated {
		theta = math.Pi / float64(2*interior+1)
	} else {
		theta = math.Pi / float64(interior+1)
	}
	s := math.Sin(theta / 2)
	g := 1 - 4*p.Fourier()*s*s
	if g <= 0 {
		return math.NaN()
	}
	return -math.Log(g) / p.Dt
}
