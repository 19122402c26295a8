// Package geom implements the skin-to-skin distance/normal/moment-arm
// kernels (C4): circle/circle, three-circle/three-circle, circle/line, and
// three-circle/line.
package geom

import (
	"math"

	"github.com/akmonengine/crowdsim/obstacle"
	"github.com/akmonengine/crowdsim/vec2"
)

// DistanceCircleCircle returns the skin-to-skin distance h and the unit
// normal pointing from body 1 towards body 0. If the two centers coincide
// (d = 0), the normal is the zero vector and h = −(r0+r1).
func DistanceCircleCircle(x0 vec2.Vec2, r0 float64, x1 vec2.Vec2, r1 float64) (h float64, n vec2.Vec2) {
	d := x0.Sub(x1)
	dist := vec2.Length(d)
	h = dist - (r0 + r1)
	n = vec2.Unit(d)
	return h, n
}

// DistanceThreeCircle computes the minimum skin-to-skin distance over the
// 3×3 disk pairs of two three-circle bodies (torso, left shoulder, right
// shoulder, in that enumeration order), the normal at the closest pair, and
// the two moment arms (from each body's torso center to the point r*n from
// its chosen disk's center, x0+r0*n for body 0 and x1-r1*n for body 1: the
// side of each disk facing away from the other body). NaN is used as the initial minimum so the first disk pair
// is always accepted; ties keep the earlier (lower enumeration index) pair.
func DistanceThreeCircle(x0 [3]vec2.Vec2, r0 [3]float64, x1 [3]vec2.Vec2, r1 [3]float64) (hMin float64, n vec2.Vec2, rMoment0, rMoment1 vec2.Vec2) {
	hMin = math.NaN()
	var chosenI, chosenJ int

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h, nij := DistanceCircleCircle(x0[i], r0[i], x1[j], r1[j])
			if math.IsNaN(hMin) || h < hMin {
				hMin = h
				n = nij
				chosenI, chosenJ = i, j
			}
		}
	}

	rMoment0 = x0[chosenI].Add(n.Mul(r0[chosenI])).Sub(x0[0])
	rMoment1 = x1[chosenJ].Sub(n.Mul(r1[chosenJ])).Sub(x1[0])
	return
}

// DistanceCircleLine returns the skin-to-skin distance and normal between a
// disk and a line segment obstacle. The projection of the disk center onto
// the segment is clamped to the segment's endpoints; beyond an endpoint, the
// distance is to that endpoint rather than the infinite line.
func DistanceCircleLine(x vec2.Vec2, r float64, o obstacle.Obstacle) (h float64, n vec2.Vec2) {
	rel := x.Sub(o.P0)
	l := vec2.Dot(rel, o.Tangent)

	switch {
	case l > o.Length:
		d := x.Sub(o.P1)
		h = vec2.Length(d) - r
		n = vec2.Unit(d)
	case l < 0:
		d := x.Sub(o.P0)
		h = vec2.Length(d) - r
		n = vec2.Unit(d)
	default:
		ln := vec2.Dot(rel, o.Normal)
		h = math.Abs(ln) - r
		if ln < 0 {
			n = o.Normal.Mul(-1)
		} else {
			n = o.Normal
		}
	}
	return h, n
}

// DistanceThreeCircleLine minimizes DistanceCircleLine over the three disks
// of a three-circle body, returning the minimum distance, its normal, and
// the moment arm from the torso center to the point x+r*n of the chosen
// disk (the side of the disk facing away from the wall).
func DistanceThreeCircleLine(x [3]vec2.Vec2, r [3]float64, o obstacle.Obstacle) (hMin float64, n vec2.Vec2, rMoment vec2.Vec2) {
	hMin = math.NaN()
	var chosen int

	for i := 0; i < 3; i++ {
		h, ni := DistanceCircleLine(x[i], r[i], o)
		if math.IsNaN(hMin) || h < hMin {
			hMin = h
			n = ni
			chosen = i
		}
	}

	rMoment = x[chosen].Add(n.Mul(r[chosen])).Sub(x[0])
	return
}
