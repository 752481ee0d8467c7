package analysis

import (
	"github.com/san-kum/heatwire/internal/heat"
)

// Summary collects the analysis of the final snapshot of a run.
type Summary struct {
	Residual             float64   `json:"residual"`
	PenetrationDepth     float64   `json:"penetration_depth"`
	DecayRate            float64   `json:"decay_rate"`
	TheoreticalDecayRate float64   `json:"theoretical_decay_rate"`
	DominantMode         int       `json:"dominant_mode"`
	Spectrum             []float64 `json:"spectrum"`
}

// Summarize analyses history. The decay fit skips the first fitFrom
// snapshots, where faster modes still dominate; a failed fit leaves
// DecayRate at zero.
func Summarize(p heat.Params, history heat.History, fitFrom int, fraction float64) Summary {
	if history.Len() == 0 {
		return Summary{}
	}
	steady := SteadyStateFor(p, history[0])
	last := history.Last()

	s := Summary{
		Residual:             Residual(last, steady),
		PenetrationDepth:     PenetrationDepth(last, p.Dx(), fraction),
		TheoreticalDecayRate: TheoreticalDecayRate(p),
		Spectrum:             SpatialSpectrum(last, steady),
	}
	s.DominantMode = DominantMode(s.Spectrum)
	if rate, err := DecayRate(history, steady, p.Dt, fitFrom); err == nil {
		s.DecayRate = rate
	}
	return s
}
