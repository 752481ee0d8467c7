package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/heatwire/internal/heat"
)

// Metric accumulates a scalar over the snapshots of a run.
type Metric interface {
	Name() string
	Observe(step int, t float64, f heat.Field)
	Value() float64
	Reset()
}

// Observer is notified of every snapshot, the initial field included.
type Observer interface {
	OnStep(step int, t float64, f heat.Field)
}

type Result struct {
	Name       string
	Params     heat.Params
	History    heat.History
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Fourier    float64
	Elapsed    time.Duration
}

// StepError reports the step at which a run failed.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
