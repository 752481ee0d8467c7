// Package heat implements the explicit finite-difference solver for
// one-dimensional heat diffusion along a thin wire.
//
// The package defines the core types of a simulation run:
//
//   - [Field]: temperatures at n grid points spaced dx = L/n apart
//   - [History]: one Field snapshot per time step, initial state included
//   - [Params]: the configuration of a single run
//   - [Stepper]: applies the three-point stencil once per step
//
// # Example
//
//	p := heat.DefaultParams()
//	s, err := heat.NewStepper(p)
//	if err != nil {
//	    return err
//	}
//	f0, _ := heat.Initialize(p.Length, p.Points, p.HotEnd)
//	hist, err := s.Run(f0, p.Steps)
//
// # Stability
//
// The explicit scheme only produces bounded output while the mesh Fourier
// number r = alpha*dt/dx^2 stays at or below 0.5. [NewStepper] rejects
// configurations above the threshold with [ErrNumericInstability] unless
// [Params.AllowUnstable] is set.
//
// # Boundaries
//
// Index 0 is pinned to the hot-end temperature for the whole run. The last
// index is never touched by the interior loop and keeps its initial value
// ([FarEndFrozen]); [FarEndInsulated] mirrors index n-2 instead.
package heat
