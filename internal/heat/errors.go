package heat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration indicates structurally invalid run parameters.
	ErrInvalidConfiguration = errors.New("heat: invalid configuration")

	// ErrNumericInstability indicates alpha*dt/dx^2 exceeds the explicit scheme's bound.
	ErrNumericInstability = errors.New("heat: numeric instability (alpha*dt/dx^2 > 0.5)")

	// ErrNonFinite indicates a snapshot containing NaN or Inf.
	ErrNonFinite = errors.New("heat: field contains NaN or Inf")
)

// ConfigError names the parameter that failed validation.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", ErrInvalidConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// InstabilityError carries the offending Fourier number and the largest
// stable time step for the same grid.
type InstabilityError struct {
	Fourier float64
	MaxDt   float64
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%s: r=%.4f, dt must be <= %.6g", ErrNumericInstability, e.Fourier, e.MaxDt)
}

func (e *InstabilityError) Unwrap() error {
	return ErrNumericInstability
}

func invalid(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
