package sim

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/heatwire/internal/heat"
)

type countMetric struct {
	count int
	last  float64
}

func (c *countMetric) Name() string { return "count" }
func (c *countMetric) Observe(step int, t float64, f heat.Field) {
	c.count++
	c.last = f[1]
}
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset()         { c.count, c.last = 0, 0 }

type stepRecorder struct {
	steps []int
	times []float64
}

func (r *stepRecorder) OnStep(step int, t float64, f heat.Field) {
	r.steps = append(r.steps, step)
	r.times = append(r.times, t)
}

func smallParams() heat.Params {
	p := heat.DefaultParams()
	p.Points = 10
	p.Steps = 20
	return p
}

func TestSimulatorRun(t *testing.T) {
	p := smallParams()
	metric := &countMetric{}
	rec := &stepRecorder{}

	s := New(p, WithMetrics(metric), WithObservers(rec))
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.History) != p.Steps+1 {
		t.Errorf("expected %d snapshots, got %d", p.Steps+1, len(result.History))
	}
	if len(result.Times) != p.Steps+1 {
		t.Errorf("expected %d times, got %d", p.Steps+1, len(result.Times))
	}
	if result.StepsTaken != p.Steps {
		t.Errorf("expected %d steps taken, got %d", p.Steps, result.StepsTaken)
	}
	if got := result.Metrics["count"]; got != float64(p.Steps+1) {
		t.Errorf("expected metric to see %d snapshots, got %v", p.Steps+1, got)
	}
	if len(rec.steps) != p.Steps+1 || rec.steps[0] != 0 || rec.steps[p.Steps] != p.Steps {
		t.Errorf("observer saw steps %v", rec.steps)
	}
	if rec.times[0] != 0 {
		t.Errorf("first observed time should be 0, got %v", rec.times[0])
	}

	want, err := heat.Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !result.History.Equal(want) {
		t.Error("orchestrated history differs from heat.Simulate")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*heat.Params)
		target error
	}{
		{"too few points", func(p *heat.Params) { p.Points = 2 }, heat.ErrInvalidConfiguration},
		{"zero length", func(p *heat.Params) { p.Length = 0 }, heat.ErrInvalidConfiguration},
		{"negative steps", func(p *heat.Params) { p.Steps = -3 }, heat.ErrInvalidConfiguration},
		{"unstable", func(p *heat.Params) { p.Dt = 10 * p.MaxStableDt() }, heat.ErrNumericInstability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := smallParams()
			tt.mutate(&p)
			result, err := New(p).Run(context.Background())
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			if result != nil {
				t.Error("no result should be produced for a rejected configuration")
			}
		})
	}
}

func TestSimulatorUnstableWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := smallParams()
	p.Dt = 1.2 * p.MaxStableDt()
	p.AllowUnstable = true

	if _, err := New(p, WithLogger(zap.New(core))).Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if logs.FilterMessageSnippet("stability threshold").Len() != 1 {
		t.Errorf("expected one stability warning, got %v", logs.All())
	}
}

func TestSimulatorDiverges(t *testing.T) {
	p := smallParams()
	p.HotEnd = 1e300
	p.Dt = 2 * p.MaxStableDt()
	p.AllowUnstable = true
	p.Steps = 200

	result, err := New(p).Run(context.Background())
	if !errors.Is(err, heat.ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	var se *StepError
	if !errors.As(err, &se) || se.Step <= 0 {
		t.Fatalf("expected StepError with a step, got %v", err)
	}
	if result == nil || len(result.History) != se.Step {
		t.Errorf("expected partial history of %d snapshots", se.Step)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(smallParams()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.History) != 1 {
		t.Error("expected only the initial snapshot before cancellation")
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Step: 150, Time: 1.5, Wrapped: heat.ErrNonFinite}
	expected := "step 150 (t=1.5000): heat: field contains NaN or Inf"
	if err.Error() != expected {
		t.Errorf("StepError.Error() = %q, want %q", err.Error(), expected)
	}
}
