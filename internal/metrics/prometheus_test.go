package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/sim"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	p := heat.DefaultParams()
	p.Steps = 25
	obs := rec.ForRun("test", p.Dx())
	if _, err := sim.New(p, sim.WithObservers(obs)).Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got := testutil.ToFloat64(rec.steps.WithLabelValues("test")); got != 25 {
		t.Errorf("steps counter = %v, want 25", got)
	}
	if got := testutil.ToFloat64(rec.maxTemp.WithLabelValues("test")); got != p.HotEnd {
		t.Errorf("max temperature = %v, want %v", got, p.HotEnd)
	}

	path := filepath.Join(t.TempDir(), "heat.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `heatwire_steps_total{run="test"} 25`) {
		t.Errorf("textfile missing steps counter:\n%s", data)
	}
}

func TestRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRecorder(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRecorder(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
