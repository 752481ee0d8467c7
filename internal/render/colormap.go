package render

import (
	"image/color"
	"math"
)

var (
	coolEnd = [3]float64{59, 76, 192}
	midGrey = [3]float64{221, 221, 221}
	warmEnd = [3]float64{180, 4, 38}
)

// CoolWarm maps v in [lo, hi] onto a blue-grey-red diverging scale.
// Values outside the range are clamped; NaN maps to the midpoint.
func CoolWarm(v, lo, hi float64) color.RGBA {
	t := 0.5
	if hi > lo && !math.IsNaN(v) {
		t = (v - lo) / (hi - lo)
	}
	t = math.Max(0, math.Min(1, t))

	from, to, s := coolEnd, midGrey, t*2
	if t > 0.5 {
		from, to, s = midGrey, warmEnd, (t-0.5)*2
	}
	return color.RGBA{
		R: lerp(from[0], to[0], s),
		G: lerp(from[1], to[1], s),
		B: lerp(from[2], to[2], s),
		A: 255,
	}
}

func lerp(a, b, s float64) uint8 {
	return uint8(math.Round(a + (b-a)*s))
}
