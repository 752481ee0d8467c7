package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/heatwire/internal/heat"
)

// Member is one named configuration of an ensemble.
type Member struct {
	Name   string
	Params heat.Params
}

// Ensemble runs independent configurations concurrently. Each member gets
// its own Simulator and a fresh metric set from newMetrics(member params).
type Ensemble struct {
	members      []Member
	limit        int
	newMetrics   func(heat.Params) []Metric
	newObservers func(Member) []Observer
	opts         []Option
}

func NewEnsemble(members []Member, limit int, newMetrics func(heat.Params) []Metric, opts ...Option) *Ensemble {
	return &Ensemble{members: members, limit: limit, newMetrics: newMetrics, opts: opts}
}

// ObserveWith attaches per-member observers, e.g. a labelled metrics recorder.
// fn is called from the goroutine that calls Run, once per member.
func (e *Ensemble) ObserveWith(fn func(Member) []Observer) *Ensemble {
	e.newObservers = fn
	return e
}

func (e *Ensemble) simulator(m Member) *Simulator {
	opts := append([]Option{}, e.opts...)
	if e.newMetrics != nil {
		opts = append(opts, WithMetrics(e.newMetrics(m.Params)...))
	}
	if e.newObservers != nil {
		opts = append(opts, WithObservers(e.newObservers(m)...))
	}
	return New(m.Params, opts...)
}

// Run returns results in member order. The first failing member cancels the rest.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.members))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, m := range e.members {
		s := e.simulator(m)
		g.Go(func() error {
			res, err := s.Run(ctx)
			if err != nil {
				return &MemberError{Name: m.Name, Wrapped: err}
			}
			res.Name = m.Name
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunAll runs every member regardless of failures. errs[i] is the
// *MemberError of member i, or nil; results[i] holds whatever the member
// produced, partial or nil when it could not start.
func (e *Ensemble) RunAll(ctx context.Context) (results []*Result, errs []error) {
	results = make([]*Result, len(e.members))
	errs = make([]error, len(e.members))

	var g errgroup.Group
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, m := range e.members {
		s := e.simulator(m)
		g.Go(func() error {
			res, err := s.Run(ctx)
			if res != nil {
				res.Name = m.Name
			}
			results[i] = res
			if err != nil {
				errs[i] = &MemberError{Name: m.Name, Wrapped: err}
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

type MemberError struct {
	Name    string
	Wrapped error
}

func (e *MemberError) Error() string { return e.Name + ": " + e.Wrapped.Error() }
func (e *MemberError) Unwrap() error { return e.Wrapped }
