package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/render"
)

// PlotProfile draws one snapshot against grid index on a fixed [lo, hi] axis.
func PlotProfile(f heat.Field, lo, hi float64, caption string, width, height int) string {
	if len(f) == 0 {
		return ""
	}
	return asciigraph.Plot(finiteOnly(f, lo, hi),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(lo),
		asciigraph.UpperBound(hi),
		asciigraph.Precision(1),
		asciigraph.Caption(caption),
	)
}

// PlotProbe draws the temperature at grid index i over every snapshot.
func PlotProbe(history heat.History, i, width, height int) string {
	series := history.Probe(i)
	if len(series) == 0 {
		return ""
	}
	lo, hi := history.Bounds()
	return asciigraph.Plot(finiteOnly(series, lo, hi),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(fmt.Sprintf("T[%d] over %d steps", i, len(series)-1)),
	)
}

func finiteOnly(vs []float64, lo, hi float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		switch {
		case math.IsNaN(v) || math.IsInf(v, -1):
			out[i] = lo
		case math.IsInf(v, 1):
			out[i] = hi
		default:
			out[i] = v
		}
	}
	return out
}

// HeatStrip renders f as width background-coloured cells on the cool-warm
// scale. Grids wider than the strip are sampled.
func HeatStrip(f heat.Field, lo, hi float64, width int) string {
	if len(f) == 0 || width <= 0 {
		return ""
	}
	var b strings.Builder
	for x := 0; x < width; x++ {
		v := f[x*len(f)/width]
		c := render.CoolWarm(v, lo, hi)
		hex := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
		b.WriteString(lipgloss.NewStyle().Background(hex).Render(" "))
	}
	return b.String()
}
