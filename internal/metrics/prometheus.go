package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/heatwire/internal/heat"
)

// Recorder publishes per-step progress of runs to a Prometheus registry.
// It is safe to share across concurrent runs; the run label separates them.
type Recorder struct {
	steps   *prometheus.CounterVec
	maxTemp *prometheus.GaugeVec
	content *prometheus.GaugeVec
	run     string
	dx      float64
}

func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heatwire_steps_total",
			Help: "Diffusion steps applied.",
		}, []string{"run"}),
		maxTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "heatwire_max_temperature",
			Help: "Largest temperature in the latest snapshot.",
		}, []string{"run"}),
		content: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "heatwire_heat_content",
			Help: "sum(T)*dx of the latest snapshot.",
		}, []string{"run"}),
	}
	for _, c := range []prometheus.Collector{r.steps, r.maxTemp, r.content} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ForRun returns an observer bound to one run label and grid spacing.
func (r *Recorder) ForRun(run string, dx float64) *Recorder {
	c := *r
	c.run, c.dx = run, dx
	return &c
}

func (r *Recorder) OnStep(step int, _ float64, f heat.Field) {
	if step > 0 {
		r.steps.WithLabelValues(r.run).Inc()
	}
	r.maxTemp.WithLabelValues(r.run).Set(f.Max())
	r.content.WithLabelValues(r.run).Set(f.Content(r.dx))
}

// WriteTextfile dumps every metric gathered by g in the text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
