// Package force implements the force and torque kernels (C5): the
// adjusting drive toward a target velocity/orientation, Gaussian
// fluctuation noise, Helbing's exponential social force against walls, the
// anticipatory power-law social force between agent pairs, and the
// physical contact force with damping.
package force

import (
	"math"
	"math/rand"

	"github.com/akmonengine/crowdsim/vec2"
)

// Default constants for the Helbing exponential social force and the
// contact-with-damping force, recovered from the original force model
// (agent-agent/agent-wall social strength/range and contact
// stiffness/friction/damping). The wall constants are used directly by the
// interaction driver. The contact constants are reference values:
// agent.Tunables carries its own Mu/Kappa/Damping, and a zero field there
// is used as zero, not replaced by these defaults.
const (
	DefaultWallSocialA = 2000.0 // N
	DefaultWallSocialB = 0.08   // m

	DefaultMu      = 1.2e5 // kg/s^2, contact normal stiffness
	DefaultKappa   = 4.0e4 // kg/(m*s), contact tangential (sliding friction) stiffness
	DefaultDamping = 500.0 // N*s/m, contact normal damping
)

// powerLawExponent is the exponent m in the anticipatory social force; the
// formula below is specialized to m=2, matching the canonical crowd model.
const powerLawExponent = 2.0

// AdjustingForce drives the agent's velocity toward targetVelocity*targetDirection
// over the relaxation time tauAdj.
func AdjustingForce(mass float64, velocity vec2.Vec2, targetVelocity float64, targetDirection vec2.Vec2, tauAdj float64) vec2.Vec2 {
	desired := targetDirection.Mul(targetVelocity)
	return desired.Sub(velocity).Mul(mass / tauAdj)
}

// AdjustingTorque is the rotational analogue of AdjustingForce.
func AdjustingTorque(inertiaRot, orientation, targetOrientation, angularVelocity, tauRot float64) float64 {
	delta := vec2.WrapAngle(targetOrientation-orientation) / math.Pi
	return (inertiaRot / tauRot) * (delta - angularVelocity)
}

// FluctuationForce samples a random force of magnitude drawn from a
// half-normal N(0, std^2) truncated to [0, 3*std] by rejection, with a
// uniformly random direction, scaled by mass.
func FluctuationForce(rng *rand.Rand, mass, std float64) vec2.Vec2 {
	if std <= 0 {
		return vec2.Vec2{}
	}
	magnitude := truncatedHalfNormal(rng, std)
	angle := rng.Float64()*2*math.Pi - math.Pi
	return vec2.FromAngle(angle).Mul(mass * magnitude)
}

// FluctuationTorque is the rotational analogue of FluctuationForce: a
// signed truncated-normal magnitude (no direction to sample), scaled by
// the moment of inertia.
func FluctuationTorque(rng *rand.Rand, inertiaRot, std float64) float64 {
	if std <= 0 {
		return 0
	}
	magnitude := truncatedHalfNormal(rng, std)
	if rng.Float64() < 0.5 {
		magnitude = -magnitude
	}
	return inertiaRot * magnitude
}

// truncatedHalfNormal draws |N(0,std^2)| by rejection, truncated to [0, 3*std].
func truncatedHalfNormal(rng *rand.Rand, std float64) float64 {
	const bound = 3.0
	for {
		x := math.Abs(rng.NormFloat64()) * std
		if x <= bound*std {
			return x
		}
	}
}

// HelbingSocial computes the exponential social force A*exp(-h/B)*n against
// a static obstacle, where h is the skin-to-skin distance and n the unit
// normal from the obstacle toward the agent.
func HelbingSocial(h float64, n vec2.Vec2, a, b float64) vec2.Vec2 {
	return n.Mul(a * math.Exp(-h/b))
}

// PowerLawSocial computes the anticipatory time-to-collision social force
// on agent i from agent j, given their relative position xij = x_i - x_j,
// relative velocity vij = v_i - v_j, summed contact radius rij, and the
// per-pair strength k, relaxation tau0, and clamp fMax. Returns the zero
// vector when no collision is predicted (a < 1e-3, negative discriminant,
// or tau outside [0, 999]).
func PowerLawSocial(xij, vij vec2.Vec2, rij, k, tau0, fMax float64) vec2.Vec2 {
	a := vec2.Dot(vij, vij)
	if math.Abs(a) < 1e-3 {
		return vec2.Vec2{}
	}
	b := -vec2.Dot(xij, vij)
	c := vec2.Dot(xij, xij) - rij*rij
	delta := b*b - a*c
	if delta < 0 {
		return vec2.Vec2{}
	}
	sqrtDelta := math.Sqrt(delta)
	tau := (b - sqrtDelta) / a
	if tau < 0 || tau > 999 {
		return vec2.Vec2{}
	}

	num := vij.Mul(b).Add(xij.Mul(a))
	direction := vij.Sub(num.Mul(1 / sqrtDelta))

	coef := -(k / (a * math.Pow(tau, powerLawExponent))) * math.Exp(-tau/tau0) * (powerLawExponent/tau + 1/tau0)
	f := direction.Mul(coef)

	if length := vec2.Length(f); length > fMax && fMax > 0 {
		f = f.Mul(fMax / length)
	}
	return f
}

// ContactForce computes the physical contact-with-damping force, valid
// only when h < 0 (interpenetration). n is the unit normal from body 1
// toward body 0, v is the relative velocity (v0 - v1), t = rotate270(n) is
// the tangent.
func ContactForce(h float64, n vec2.Vec2, v vec2.Vec2, mu, kappa, damping float64) vec2.Vec2 {
	if h >= 0 {
		return vec2.Vec2{}
	}
	t := vec2.Rotate270(n)
	tangentialSpeed := vec2.Dot(v, t)
	normalSpeed := vec2.Dot(v, n)

	springTerm := n.Mul(mu).Sub(t.Mul(kappa * tangentialSpeed)).Mul(-h)
	dampingTerm := n.Mul(damping * normalSpeed)
	return springTerm.Add(dampingTerm)
}
