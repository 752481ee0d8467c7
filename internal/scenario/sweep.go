package scenario

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/sim"
)

// Sweep varies one parameter of Base over Count evenly spaced values.
type Sweep struct {
	Base     heat.Params
	Param    string
	Min, Max float64
	Count    int
	Parallel int
}

// SweepResult summarises one point of a sweep.
type SweepResult struct {
	Value     float64
	Fourier   float64
	Stable    bool
	Diverged  bool
	Steps     int
	FinalMax  float64
	Overshoot float64
	Err       error
}

var sweepable = map[string]func(*heat.Params, float64){
	"dt":      func(p *heat.Params, v float64) { p.Dt = v },
	"alpha":   func(p *heat.Params, v float64) { p.Alpha = v },
	"length":  func(p *heat.Params, v float64) { p.Length = v },
	"hot_end": func(p *heat.Params, v float64) { p.HotEnd = v },
	"points":  func(p *heat.Params, v float64) { p.Points = int(v + 0.5) },
}

func SweepParams() []string {
	return []string{"alpha", "dt", "hot_end", "length", "points"}
}

// Members builds one member per sweep value. Unstable points are allowed so
// the sweep can show where the scheme breaks down.
func (s *Sweep) Members() ([]sim.Member, []float64, error) {
	set, ok := sweepable[s.Param]
	if !ok {
		return nil, nil, fmt.Errorf("cannot sweep %q (want one of %v)", s.Param, SweepParams())
	}
	if s.Count < 2 {
		return nil, nil, fmt.Errorf("sweep needs at least 2 values, got %d", s.Count)
	}

	values := floats.Span(make([]float64, s.Count), s.Min, s.Max)
	members := make([]sim.Member, len(values))
	for i, v := range values {
		p := s.Base
		set(&p, v)
		p.AllowUnstable = true
		members[i] = sim.Member{Name: fmt.Sprintf("%s=%g", s.Param, v), Params: p}
	}
	return members, values, nil
}

// Run executes the sweep. Diverging points are reported, not returned as
// errors; only configuration errors abort.
func (s *Sweep) Run(ctx context.Context, newMetrics func(heat.Params) []sim.Metric, opts ...sim.Option) ([]SweepResult, error) {
	members, values, err := s.Members()
	if err != nil {
		return nil, err
	}
	results, errs := sim.NewEnsemble(members, s.Parallel, newMetrics, opts...).RunAll(ctx)

	out := make([]SweepResult, len(members))
	for i, m := range members {
		sr := SweepResult{
			Value:   values[i],
			Fourier: m.Params.Fourier(),
			Stable:  m.Params.Stable(),
			Err:     errs[i],
		}
		if errors.Is(errs[i], heat.ErrNonFinite) {
			sr.Diverged = true
		}
		if r := results[i]; r != nil {
			sr.Steps = r.StepsTaken
			if last := r.History.Last(); last != nil {
				sr.FinalMax = last.Max()
			}
			sr.Overshoot = r.Metrics["max_overshoot"]
		}
		out[i] = sr
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
