// Package scenario implements scenario assembly (C11): Monte-Carlo
// rejection placement of non-overlapping agents and truncated-normal body
// parameter sampling.
package scenario

import (
	"math"
	"math/rand"

	"github.com/akmonengine/crowdsim/obstacle"
	"github.com/akmonengine/crowdsim/simerr"
	"github.com/akmonengine/crowdsim/vec2"
)

// trialBudgetFactor is the Monte-Carlo trial cap per spec.md §4.8: 100*N
// total trials across all N placements before failing loudly.
const trialBudgetFactor = 100

// Limits bounds a uniform sampling rectangle.
type Limits struct {
	Min, Max float64
}

// RandomPositions draws len(radii) non-overlapping positions inside xlim x
// ylim, none overlapping each other or any obstacle segment, by Monte-Carlo
// rejection. Returns PlacementInfeasibleError if the 100*N trial budget is
// exhausted before every slot is filled.
func RandomPositions(rng *rand.Rand, radii []float64, xlim, ylim Limits, walls []obstacle.Obstacle) ([]vec2.Vec2, error) {
	n := len(radii)
	positions := make([]vec2.Vec2, n)
	budget := trialBudgetFactor * n
	if budget == 0 {
		return positions, nil
	}

	placed := 0
	trials := 0
	for placed < n {
		if trials >= budget {
			return nil, &simerr.PlacementInfeasibleError{Trials: budget, Attempts: trials, Placed: placed, Total: n}
		}
		trials++

		candidate := vec2.Vec2{
			xlim.Min + rng.Float64()*(xlim.Max-xlim.Min),
			ylim.Min + rng.Float64()*(ylim.Max-ylim.Min),
		}
		r := radii[placed]

		if overlapsAny(candidate, r, positions[:placed], radii[:placed]) {
			continue
		}
		if overlapsWalls(candidate, r, walls) {
			continue
		}

		positions[placed] = candidate
		placed++
	}
	return positions, nil
}

func overlapsAny(p vec2.Vec2, r float64, placed []vec2.Vec2, placedRadii []float64) bool {
	for i, q := range placed {
		if vec2.Length(p.Sub(q)) <= r+placedRadii[i] {
			return true
		}
	}
	return false
}

func overlapsWalls(p vec2.Vec2, r float64, walls []obstacle.Obstacle) bool {
	for _, w := range walls {
		rel := p.Sub(w.P0)
		l := vec2.Dot(rel, w.Tangent)
		var d float64
		switch {
		case l < 0:
			d = vec2.Length(p.Sub(w.P0))
		case l > w.Length:
			d = vec2.Length(p.Sub(w.P1))
		default:
			d = math.Abs(vec2.Dot(rel, w.Normal))
		}
		if d <= r {
			return true
		}
	}
	return false
}

// TruncatedNormal draws a value from N(loc, (scale/std)^2), truncated
// symmetrically to [loc-scale, loc+scale] by rejection (std sigma-widths of
// truncation, default 3), per spec.md §4.8.
func TruncatedNormal(rng *rand.Rand, loc, scale, std float64) float64 {
	if std <= 0 {
		std = 3.0
	}
	sigma := scale / std
	for {
		x := rng.NormFloat64() * sigma
		if math.Abs(x) <= scale {
			return loc + x
		}
	}
}

// BodyTypeMeans holds the population-level means/scales from which
// individual body parameters are sampled, plus the fixed geometry
// multipliers for the three-circle model.
type BodyTypeMeans struct {
	Mass, MassScale                   float64
	Radius, RadiusScale               float64
	KTorso, KShoulder, KTorsoShoulder float64
	InertiaRot                        float64
	TargetVelocity                    float64
	TargetAngularVelocity             float64
}

// SampledBody is one agent's sampled physical parameters.
type SampledBody struct {
	Mass, Radius                     float64
	RTorso, RShoulder, RTorsoShoulder float64
}

// SampleBody draws one agent's mass and trunk radius from truncated
// normals around the body type's means, deriving torso/shoulder/offset
// radii as fixed multiples of the sampled trunk radius.
func SampleBody(rng *rand.Rand, bt BodyTypeMeans) SampledBody {
	mass := TruncatedNormal(rng, bt.Mass, bt.MassScale, 3.0)
	radius := TruncatedNormal(rng, bt.Radius, bt.RadiusScale, 3.0)
	return SampledBody{
		Mass:           mass,
		Radius:         radius,
		RTorso:         bt.KTorso * radius,
		RShoulder:      bt.KShoulder * radius,
		RTorsoShoulder: bt.KTorsoShoulder * radius,
	}
}
