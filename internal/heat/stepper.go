package heat

// Stepper advances a Field by the explicit three-point stencil.
type Stepper struct {
	dx, dt, alpha float64
	r             float64
	farEnd        FarEnd
	workers       int

	current Field
	steps   int
}

// NewStepper validates p and returns a stepper for its grid. Configurations
// above the stability threshold fail unless p.AllowUnstable is set.
func NewStepper(p Params) (*Stepper, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !p.AllowUnstable {
		if err := p.CheckStability(); err != nil {
			return nil, err
		}
	}
	return &Stepper{
		dx:      p.Dx(),
		dt:      p.Dt,
		alpha:   p.Alpha,
		r:       p.Fourier(),
		farEnd:  p.farEnd(),
		workers: p.Workers,
	}, nil
}

func (s *Stepper) Dx() float64      { return s.dx }
func (s *Stepper) Dt() float64      { return s.dt }
func (s *Stepper) Alpha() float64   { return s.alpha }
func (s *Stepper) Fourier() float64 { return s.r }
func (s *Stepper) Steps() int       { return s.steps }
func (s *Stepper) Time() float64    { return float64(s.steps) * s.dt }

// Current returns a copy of the field the stepper holds.
func (s *Stepper) Current() Field { return s.current.Clone() }

// Step computes the next field from f without modifying it. Index 0 is
// carried over unchanged; the last index is carried over unless the far end
// is insulated.
func (s *Stepper) Step(f Field) Field {
	next := f.Clone()
	n := len(f)
	if n < MinPoints {
		return next
	}

	interior := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			next[i] = f[i] + s.r*(f[i-1]-2*f[i]+f[i+1])
		}
	}
	if s.workers != 0 && s.workers != 1 && n-2 >= parallelThreshold {
		ParallelFor(1, n-1, s.workers, interior)
	} else {
		interior(1, n-1)
	}

	if s.farEnd == FarEndInsulated {
		next[n-1] = next[n-2]
	}
	return next
}

// Reset makes f the current field and zeroes the step counter.
func (s *Stepper) Reset(f Field) {
	s.current = f.Clone()
	s.steps = 0
}

// Advance steps the current field once and returns the new snapshot.
func (s *Stepper) Advance() Field {
	s.current = s.Step(s.current)
	s.steps++
	return s.current.Clone()
}

// Run applies Step totalSteps times starting from initial. Entry 0 of the
// returned History is a copy of initial.
func (s *Stepper) Run(initial Field, totalSteps int) (History, error) {
	if totalSteps < 0 {
		return nil, invalid("steps", totalSteps, "must be >= 0")
	}
	if len(initial) < MinPoints {
		return nil, invalid("points", len(initial), "must be >= 3")
	}

	s.Reset(initial)
	hist := make(History, 0, totalSteps+1)
	hist = append(hist, s.current.Clone())
	for k := 0; k < totalSteps; k++ {
		s.current = s.Step(s.current)
		s.steps++
		hist = append(hist, s.current)
	}
	return hist, nil
}

// Simulate initialises the field described by p and runs it to completion.
func Simulate(p Params) (History, error) {
	s, err := NewStepper(p)
	if err != nil {
		return nil, err
	}
	f0, err := Initialize(p.Length, p.Points, p.HotEnd)
	if err != nil {
		return nil, err
	}
	return s.Run(f0, p.Steps)
}
