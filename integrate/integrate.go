// Package integrate implements the adaptive-timestep symplectic integrator
// (C8): the CFL-like step-size bound and the semi-implicit Euler position
// and orientation update, clearing forces afterward.
package integrate

import (
	"math"

	"github.com/akmonengine/crowdsim/agent"
	"github.com/akmonengine/crowdsim/simerr"
	"github.com/akmonengine/crowdsim/vec2"
)

// StepBounds holds the adaptive step-size clamp range.
type StepBounds struct {
	DtMin, DtMax float64
}

// AdaptiveDt computes the CFL-like bound of spec.md §4.6:
// dt = clamp(r_min / (2*max(v_max, v_target_max)), dt_min, dt_max).
// It returns bounds.DtMax when the store has no active agents.
func AdaptiveDt(s *agent.Store, bounds StepBounds) float64 {
	active := s.ActiveIndices()
	if len(active) == 0 {
		return bounds.DtMax
	}

	vMax := 0.0
	vTargetMax := 0.0
	rMin := math.Inf(1)
	for _, i := range active {
		if v := vec2.Length(s.Velocity[i]); v > vMax {
			vMax = v
		}
		if s.TargetVelocity[i] > vTargetMax {
			vTargetMax = s.TargetVelocity[i]
		}
		if s.Radius[i] < rMin {
			rMin = s.Radius[i]
		}
	}

	denom := 2 * math.Max(vMax, vTargetMax)
	var dt float64
	if denom <= 0 {
		dt = bounds.DtMax
	} else {
		dt = rMin / denom
	}

	return clamp(dt, bounds.DtMin, bounds.DtMax)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Step advances every active agent by semi-implicit Euler over dt: update
// velocity (and angular velocity, for three-circle stores) from the
// currently accumulated force/torque, then advance position (and
// orientation), then recompute shoulder positions. Before clearing forces
// for the next step, every active agent's position, velocity, force (and,
// for three-circle stores, orientation, angular velocity, torque) is
// checked for non-finite values; the first one found is reported as a
// *simerr.NumericalInstabilityError and the step's forces/torques are left
// uncleared so the caller can inspect the state that produced the fault.
func Step(s *agent.Store, dt float64, timeTotal float64) error {
	active := s.ActiveIndices()

	for _, i := range active {
		accel := s.Force[i].Mul(1 / s.Mass[i])
		s.Velocity[i] = s.Velocity[i].Add(accel.Mul(dt))
		s.Position[i] = s.Position[i].Add(s.Velocity[i].Mul(dt))
	}

	if s.Model == agent.ThreeCircle {
		for _, i := range active {
			angularAccel := s.Torque[i] / s.InertiaRot[i]
			s.AngularVelocity[i] += angularAccel * dt
			s.Orientation[i] = vec2.WrapAngle(s.Orientation[i] + s.AngularVelocity[i]*dt)
		}
		s.UpdateShoulders()
	}

	if err := checkFinite(s, active, timeTotal); err != nil {
		return err
	}

	s.ResetMotion()
	return nil
}

func checkFinite(s *agent.Store, active []int, timeTotal float64) error {
	for _, i := range active {
		if !finiteVec2(s.Position[i]) {
			return &simerr.NumericalInstabilityError{Field: "position", Index: i, Time: timeTotal}
		}
		if !finiteVec2(s.Velocity[i]) {
			return &simerr.NumericalInstabilityError{Field: "velocity", Index: i, Time: timeTotal}
		}
		if !finiteVec2(s.Force[i]) {
			return &simerr.NumericalInstabilityError{Field: "force", Index: i, Time: timeTotal}
		}
	}

	if s.Model != agent.ThreeCircle {
		return nil
	}
	for _, i := range active {
		if !finiteScalar(s.Orientation[i]) {
			return &simerr.NumericalInstabilityError{Field: "orientation", Index: i, Time: timeTotal}
		}
		if !finiteScalar(s.AngularVelocity[i]) {
			return &simerr.NumericalInstabilityError{Field: "angular_velocity", Index: i, Time: timeTotal}
		}
		if !finiteScalar(s.Torque[i]) {
			return &simerr.NumericalInstabilityError{Field: "torque", Index: i, Time: timeTotal}
		}
	}
	return nil
}

func finiteScalar(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func finiteVec2(v vec2.Vec2) bool {
	return finiteScalar(v[0]) && finiteScalar(v[1])
}
