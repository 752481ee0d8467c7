package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/heatwire/internal/heat"
)

type Simulator struct {
	params    heat.Params
	metrics   []Metric
	observers []Observer
	logger    *zap.Logger
}

type Option func(*Simulator)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(ms ...Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, ms...) }
}

func WithObservers(obs ...Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, obs...) }
}

func New(p heat.Params, opts ...Option) *Simulator {
	s := &Simulator{
		params:    p,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Params() heat.Params    { return s.params }
func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run initialises the wire and advances it Params.Steps times. On
// cancellation or a non-finite snapshot the partial result is returned
// together with the error.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	p := s.params
	log := s.logger.With(
		zap.Int("points", p.Points),
		zap.Float64("dt", p.Dt),
		zap.Float64("alpha", p.Alpha),
		zap.Float64("fourier", p.Fourier()),
	)

	stepper, err := heat.NewStepper(p)
	if err != nil {
		log.Error("invalid run configuration", zap.Error(err))
		return nil, err
	}
	f0, err := heat.Initialize(p.Length, p.Points, p.HotEnd)
	if err != nil {
		return nil, err
	}
	if !p.Stable() {
		log.Warn("running above the stability threshold; output will diverge",
			zap.Float64("max_stable_dt", p.MaxStableDt()))
	}

	result := &Result{
		Params:  p,
		History: make(heat.History, 0, p.Steps+1),
		Times:   make([]float64, 0, p.Steps+1),
		Metrics: make(map[string]float64),
		Fourier: stepper.Fourier(),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	log.Info("run started", zap.Int("steps", p.Steps), zap.Float64("hot_end", p.HotEnd))
	start := time.Now()

	stepper.Reset(f0)
	s.record(result, 0, 0, f0.Clone())

	for k := 1; k <= p.Steps; k++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			s.collect(result)
			log.Info("run canceled", zap.Int("step", k-1))
			return result, ctx.Err()
		default:
		}

		f := stepper.Advance()
		t := stepper.Time()
		if !f.IsValid() {
			result.Elapsed = time.Since(start)
			s.collect(result)
			err := &StepError{Step: k, Time: t, Wrapped: heat.ErrNonFinite}
			log.Error("run diverged", zap.Error(err))
			return result, err
		}
		s.record(result, k, t, f)
		result.StepsTaken++
	}

	result.Elapsed = time.Since(start)
	s.collect(result)
	log.Info("run finished",
		zap.Int("steps", result.StepsTaken),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

func (s *Simulator) record(result *Result, step int, t float64, f heat.Field) {
	result.History = append(result.History, f)
	result.Times = append(result.Times, t)
	for _, m := range s.metrics {
		m.Observe(step, t, f)
	}
	for _, obs := range s.observers {
		obs.OnStep(step, t, f)
	}
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
