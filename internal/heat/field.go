package heat

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Field holds the temperature at each grid point, index 0 being the hot end.
type Field []float64

// Initialize returns n zeros with index 0 set to the hot-end temperature.
func Initialize(length float64, n int, hotEnd float64) (Field, error) {
	if n < MinPoints {
		return nil, invalid("points", n, "must be >= 3")
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, invalid("length", length, "must be positive and finite")
	}
	f := make(Field, n)
	f[0] = hotEnd
	return f, nil
}

func (f Field) Clone() Field {
	c := make(Field, len(f))
	copy(c, f)
	return c
}

func (f Field) IsValid() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (f Field) Min() float64 {
	if len(f) == 0 {
		return 0
	}
	return floats.Min(f)
}

func (f Field) Max() float64 {
	if len(f) == 0 {
		return 0
	}
	return floats.Max(f)
}

// Content approximates the integral of temperature along the wire.
func (f Field) Content(dx float64) float64 {
	return floats.Sum(f) * dx
}

// Equal reports bit-for-bit equality.
func (f Field) Equal(other Field) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if math.Float64bits(f[i]) != math.Float64bits(other[i]) {
			return false
		}
	}
	return true
}

// History is the ordered sequence of snapshots produced by a run.
type History []Field

func (h History) Len() int { return len(h) }

// At returns snapshot k, or nil when k is out of range.
func (h History) At(k int) Field {
	if k < 0 || k >= len(h) {
		return nil
	}
	return h[k]
}

func (h History) Last() Field {
	if len(h) == 0 {
		return nil
	}
	return h[len(h)-1]
}

// Times returns k*dt for every snapshot.
func (h History) Times(dt float64) []float64 {
	t := make([]float64, len(h))
	for k := range t {
		t[k] = float64(k) * dt
	}
	return t
}

// Bounds returns the extreme temperatures across all snapshots.
func (h History) Bounds() (lo, hi float64) {
	if len(h) == 0 {
		return 0, 0
	}
	lo, hi = h[0].Min(), h[0].Max()
	for _, f := range h[1:] {
		lo = math.Min(lo, f.Min())
		hi = math.Max(hi, f.Max())
	}
	return lo, hi
}

// Probe extracts the temperature at index i over time.
func (h History) Probe(i int) []float64 {
	out := make([]float64, 0, len(h))
	for _, f := range h {
		if i >= 0 && i < len(f) {
			out = append(out, f[i])
		}
	}
	return out
}

// Equal reports bit-for-bit equality of every snapshot.
func (h History) Equal(other History) bool {
	if len(h) != len(other) {
		return false
	}
	for k := range h {
		if !h[k].Equal(other[k]) {
			return false
		}
	}
	return true
}

// Positions returns n evenly spaced plot coordinates from 0 to length inclusive.
func Positions(length float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	x := make([]float64, n)
	if n == 1 {
		return x
	}
	return floats.Span(x, 0, length)
}
