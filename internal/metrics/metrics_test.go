package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/sim"
)

func runWith(t *testing.T, p heat.Params) *sim.Result {
	t.Helper()
	result, err := sim.New(p, sim.WithMetrics(Defaults(p)...)).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return result
}

func TestDefaultsStableRun(t *testing.T) {
	p := heat.DefaultParams()
	p.Steps = 100
	result := runWith(t, p)

	if v := result.Metrics["max_overshoot"]; v != 0 {
		t.Errorf("stable run overshoot = %v, want 0", v)
	}
	if v := result.Metrics["boundary_drift"]; v != 0 {
		t.Errorf("boundary drift = %v, want 0", v)
	}
	if v := result.Metrics["boundedness"]; v != 1 {
		t.Errorf("boundedness = %v, want 1", v)
	}

	want := result.History.Last().Content(p.Dx())
	if v := result.Metrics["heat_content"]; math.Abs(v-want) > 1e-12 {
		t.Errorf("heat content = %v, want %v", v, want)
	}
	if result.Metrics["heat_content"] <= p.HotEnd*p.Dx() {
		t.Error("heat should have entered the wire")
	}
}

func TestDefaultsUnstableRun(t *testing.T) {
	p := heat.DefaultParams()
	p.Points = 10
	p.Steps = 100
	p.Dt = 1.4 * p.MaxStableDt()
	p.AllowUnstable = true
	result := runWith(t, p)

	if result.Metrics["max_overshoot"] <= 0 {
		t.Error("unstable run should overshoot")
	}
	if result.Metrics["boundedness"] >= 1 {
		t.Error("unstable run should leave the initial range")
	}
}

func TestOvershoot(t *testing.T) {
	o := NewOvershoot()
	o.Observe(0, 0, heat.Field{10, 0, 0})
	o.Observe(1, 0, heat.Field{10, 12, -3})
	o.Observe(2, 0, heat.Field{10, -4, 0})

	// step 1 interior index 1 exceeds 10 by 2; step 2 index 1 is 1 below -3
	if got := o.Value(); got != 2 {
		t.Errorf("overshoot = %v, want 2", got)
	}

	o.Reset()
	if o.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestBoundaryDrift(t *testing.T) {
	d := NewBoundaryDrift(100)
	d.Observe(0, 0, heat.Field{100, 0})
	d.Observe(1, 0, heat.Field{99.5, 0})
	if d.Value() != 0.5 {
		t.Errorf("drift = %v, want 0.5", d.Value())
	}
	d.Reset()
	if d.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestBoundednessEmpty(t *testing.T) {
	if NewBoundedness().Value() != 1 {
		t.Error("no samples should count as bounded")
	}
}
