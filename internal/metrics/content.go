package metrics

import (
	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/sim"
)

// HeatContent reports sum(T)*dx of the most recent snapshot.
type HeatContent struct {
	name  string
	dx    float64
	value float64
}

func NewHeatContent(dx float64) *HeatContent {
	return &HeatContent{name: "heat_content", dx: dx}
}

func (h *HeatContent) Name() string { return h.name }

func (h *HeatContent) Observe(_ int, _ float64, f heat.Field) {
	h.value = f.Content(h.dx)
}

func (h *HeatContent) Value() float64 { return h.value }
func (h *HeatContent) Reset()         { h.value = 0 }

// Defaults is the metric set attached to every CLI run.
func Defaults(p heat.Params) []sim.Metric {
	return []sim.Metric{
		NewHeatContent(p.Dx()),
		NewOvershoot(),
		NewBoundaryDrift(p.HotEnd),
		NewBoundedness(),
	}
}
