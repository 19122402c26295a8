// Package simerr implements the error taxonomy of the simulation core: a
// small set of sentinel-comparable error types, each carrying the offending
// quantity, so callers can both errors.Is-match on category and recover the
// detail for diagnostics.
package simerr

import "fmt"

// Sentinel errors usable with errors.Is. Each concrete error type below
// wraps one of these via Unwrap.
var (
	ErrPlacementInfeasible  = fmt.Errorf("placement infeasible")
	ErrDomainInvalid        = fmt.Errorf("domain invalid")
	ErrNumericalInstability = fmt.Errorf("numerical instability")
	ErrIndexOutOfBounds     = fmt.Errorf("index out of bounds")
	ErrNotImplemented       = fmt.Errorf("not implemented")
)

// PlacementInfeasibleError reports that Monte-Carlo placement exhausted its
// trial budget before finding a non-overlapping slot for every agent.
type PlacementInfeasibleError struct {
	Trials   int
	Attempts int
	Placed   int
	Total    int
}

func (e *PlacementInfeasibleError) Error() string {
	return fmt.Sprintf("placement infeasible: placed %d/%d agents after %d trials (budget %d)",
		e.Placed, e.Total, e.Attempts, e.Trials)
}

func (e *PlacementInfeasibleError) Unwrap() error { return ErrPlacementInfeasible }

// DomainInvalidError reports a malformed domain: zero area, a target
// outside the domain, or a disconnected target/agent region.
type DomainInvalidError struct {
	Reason string
}

func (e *DomainInvalidError) Error() string {
	return fmt.Sprintf("domain invalid: %s", e.Reason)
}

func (e *DomainInvalidError) Unwrap() error { return ErrDomainInvalid }

// NumericalInstabilityError reports a non-finite position, velocity, or
// force (and, for three-circle stores, orientation, angular velocity, or
// torque) detected after integration.
type NumericalInstabilityError struct {
	Field string // e.g. "position", "velocity", "force", "torque"
	Index int
	Time  float64
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("numerical instability: agent %d field %q non-finite at t=%g", e.Index, e.Field, e.Time)
}

func (e *NumericalInstabilityError) Unwrap() error { return ErrNumericalInstability }

// IndexOutOfBoundsError reports an accessor used with an invalid index.
type IndexOutOfBoundsError struct {
	Index int
	Bound int
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index out of bounds: %d not in [0, %d)", e.Index, e.Bound)
}

func (e *IndexOutOfBoundsError) Unwrap() error { return ErrIndexOutOfBounds }

// NotImplementedError reports a configuration-time request for an
// unavailable algorithm or feature.
type NotImplementedError struct {
	Feature string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("not implemented: %s", e.Feature)
}

func (e *NotImplementedError) Unwrap() error { return ErrNotImplemented }
