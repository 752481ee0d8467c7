// Package analysis characterises how a heat run approaches equilibrium.
//
//   - [SteadyState]: the profile a run converges to
//   - [Residual]: L2 distance of a snapshot from steady state
//   - [PenetrationDepth]: how far heat has reached along the wire
//   - [DecayRate]: measured exponential decay of the residual
//   - [TheoreticalDecayRate]: decay of the slowest discrete mode
//   - [SpatialSpectrum]: power spectrum of the deviation from steady state
//
// # Checking a run
//
// A stable run settles at the rate of its slowest mode:
//
//	measured, _ := analysis.DecayRate(hist, steady, p.Dt, 100)
//	predicted := analysis.TheoreticalDecayRate(p)
package analysis
