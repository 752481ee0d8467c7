package heat

import (
	"fmt"
	"math"
)

const (
	// MinPoints is the smallest grid with at least one interior point.
	MinPoints = 3

	// StabilityLimit bounds the mesh Fourier number of the explicit scheme.
	StabilityLimit = 0.5
)

// FarEnd selects how the last grid point evolves.
type FarEnd string

const (
	// FarEndFrozen leaves the last index at its initial value.
	FarEndFrozen FarEnd = "frozen"
	// FarEndInsulated copies the updated value at n-2 into n-1 (zero flux).
	FarEndInsulated FarEnd = "insulated"
)

func ParseFarEnd(s string) (FarEnd, error) {
	switch FarEnd(s) {
	case "", FarEndFrozen:
		return FarEndFrozen, nil
	case FarEndInsulated:
		return FarEndInsulated, nil
	}
	return "", invalid("far_end", s, "must be frozen or insulated")
}

// Params configures a single simulation run.
type Params struct {
	Length        float64 `json:"length"`   // wire length, m
	Points        int     `json:"points"`   // grid point count n
	Dt            float64 `json:"dt"`       // time step, s
	Alpha         float64 `json:"alpha"`    // thermal diffusivity, m^2/s
	HotEnd        float64 `json:"hot_end"`  // boundary temperature at index 0
	Steps         int     `json:"steps"`    // number of time steps
	FarEnd        FarEnd  `json:"far_end"`
	AllowUnstable bool    `json:"allow_unstable,omitempty"`
	Workers       int     `json:"workers,omitempty"` // 0 or 1 runs serially; <0 uses GOMAXPROCS
}

// DefaultParams mirrors the reference wire: 1 m, 50 points, 500 steps of 10 ms.
func DefaultParams() Params {
	return Params{
		Length: 1.0,
		Points: 50,
		Dt:     0.01,
		Alpha:  0.01,
		HotEnd: 100,
		Steps:  500,
		FarEnd: FarEndFrozen,
	}
}

func (p Params) Dx() float64 {
	if p.Points <= 0 {
		return 0
	}
	return p.Length / float64(p.Points)
}

// Fourier returns the mesh Fourier number alpha*dt/dx^2.
func (p Params) Fourier() float64 {
	dx := p.Dx()
	if dx == 0 {
		return math.Inf(1)
	}
	return p.Alpha * p.Dt / (dx * dx)
}

// MaxStableDt is the largest dt keeping the scheme within StabilityLimit.
func (p Params) MaxStableDt() float64 {
	if p.Alpha <= 0 {
		return math.Inf(1)
	}
	dx := p.Dx()
	return StabilityLimit * dx * dx / p.Alpha
}

func (p Params) Stable() bool {
	return p.Fourier() <= StabilityLimit
}

// Duration is the simulated time covered by Steps.
func (p Params) Duration() float64 {
	return float64(p.Steps) * p.Dt
}

// Validate checks structural validity; it does not enforce stability.
func (p Params) Validate() error {
	if p.Points < MinPoints {
		return invalid("points", p.Points, "must be >= 3")
	}
	if !finite(p.Length) || p.Length <= 0 {
		return invalid("length", p.Length, "must be positive and finite")
	}
	if dx := p.Dx(); !(dx > 0) {
		return invalid("dx", dx, "must be positive")
	}
	if !finite(p.Dt) || p.Dt <= 0 {
		return invalid("dt", p.Dt, "must be positive and finite")
	}
	if !finite(p.Alpha) || p.Alpha < 0 {
		return invalid("alpha", p.Alpha, "must be non-negative and finite")
	}
	if !finite(p.HotEnd) {
		return invalid("hot_end", p.HotEnd, "must be finite")
	}
	if p.Steps < 0 {
		return invalid("steps", p.Steps, "must be >= 0")
	}
	if _, err := ParseFarEnd(string(p.FarEnd)); err != nil {
		return err
	}
	return nil
}

// CheckStability returns an *InstabilityError when r exceeds StabilityLimit.
func (p Params) CheckStability() error {
	if r := p.Fourier(); r > StabilityLimit {
		return &InstabilityError{Fourier: r, MaxDt: p.MaxStableDt()}
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("L=%gm n=%d dx=%g dt=%gs alpha=%g hot=%g steps=%d far=%s r=%.4f",
		p.Length, p.Points, p.Dx(), p.Dt, p.Alpha, p.HotEnd, p.Steps, p.farEnd(), p.Fourier())
}

func (p Params) farEnd() FarEnd {
	if p.FarEnd == "" {
		return FarEndFrozen
	}
	return p.FarEnd
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
