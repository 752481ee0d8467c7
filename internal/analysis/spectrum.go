package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/heatwire/internal/heat"
)

// SpatialSpectrum returns |X_k|^2/n for k = 0..n/2 where X is the DFT of
// f - steady.
func SpatialSpectrum(f, steady heat.Field) []float64 {
	n := len(f)
	if n == 0 || n != len(steady) {
		return nil
	}
	dev := make([]float64, n)
	for i := range f {
		dev[i] = f[i] - steady[i]
	}
	coeffs := fft.FFTReal(dev)

	ps := make([]float64, n/2+1)
	for k := range ps {
		a := cmplx.Abs(coeffs[k])
		ps[k] = a * a / float64(n)
	}
	return ps
}

// DominantMode is the index of the largest non-DC entry of a spectrum.
func DominantMode(ps []float64) int {
	best := 0
	for k := 1; k < len(ps); k++ {
		if best == 0 || ps[k] > ps[best] {
			best = k
		}
	}
	return best
}
