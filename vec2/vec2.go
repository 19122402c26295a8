// Package vec2 provides the 2D vector primitives shared by every other
// package in the simulation core: dot/cross products, perpendicular
// rotations, and angle conversions.
package vec2

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is the simulation's 2D vector type, an alias over mgl64.Vec2 so that
// Add/Sub/Mul/Dot/Len come from the vetted library and only the
// domain-specific operations below are hand-written.
type Vec2 = mgl64.Vec2

// zeroEpsilon is the threshold below which a vector's length is treated as
// zero for the purposes of Unit and Angle.
const zeroEpsilon = 1e-12

// Dot returns a·b.
func Dot(a, b Vec2) float64 {
	return a.Dot(b)
}

// Cross returns the scalar (z-component) cross product aₓbᵧ − aᵧbₓ.
func Cross(a, b Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// Length returns ‖a‖.
func Length(a Vec2) float64 {
	return a.Len()
}

// Unit returns a/‖a‖, or the zero vector if a is (numerically) zero-length.
func Unit(a Vec2) Vec2 {
	l := a.Len()
	if l < zeroEpsilon {
		return Vec2{}
	}
	return a.Mul(1 / l)
}

// Rotate90 rotates a by +90°: (x, y) → (−y, x).
func Rotate90(a Vec2) Vec2 {
	return Vec2{-a[1], a[0]}
}

// Rotate270 rotates a by −90° (i.e. +270°): (x, y) → (y, −x).
func Rotate270(a Vec2) Vec2 {
	return Vec2{a[1], -a[0]}
}

// FromAngle returns the unit vector (cos θ, sin θ).
func FromAngle(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{c, s}
}

// Angle returns atan2(aᵧ, aₓ).
func Angle(a Vec2) float64 {
	return math.Atan2(a[1], a[0])
}

// WrapAngle wraps theta into (−π, π].
func WrapAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}
