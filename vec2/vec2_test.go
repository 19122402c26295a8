package vec2

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotateRoundTrip(t *testing.T) {
	vs := []Vec2{{1, 0}, {0, 1}, {3, 4}, {-2, 5}, {0, 0}}
	for _, v := range vs {
		got := Rotate90(Rotate270(v))
		assert.InDeltaf(t, v[0], got[0], 1e-12, "x for %v", v)
		assert.InDeltaf(t, v[1], got[1], 1e-12, "y for %v", v)
	}
}

func TestUnitZeroLength(t *testing.T) {
	u := Unit(Vec2{0, 0})
	assert.Equal(t, Vec2{0, 0}, u)
}

func TestUnitNormalizes(t *testing.T) {
	u := Unit(Vec2{3, 4})
	assert.InDelta(t, 1.0, Length(u), 1e-12)
	assert.InDelta(t, 0.6, u[0], 1e-12)
	assert.InDelta(t, 0.8, u[1], 1e-12)
}

func TestCross(t *testing.T) {
	assert.InDelta(t, 1.0, Cross(Vec2{1, 0}, Vec2{0, 1}), 1e-12)
	assert.InDelta(t, 0.0, Cross(Vec2{2, 3}, Vec2{2, 3}), 1e-12)
}

func TestFromAngleAndAngleRoundTrip(t *testing.T) {
	for _, theta := range []float64{0, math.Pi / 4, math.Pi / 2, math.Pi - 0.01, -math.Pi / 3} {
		v := FromAngle(theta)
		assert.InDelta(t, theta, Angle(v), 1e-9)
	}
}

func TestWrapAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{-3 * math.Pi, math.Pi},
		{math.Pi/2 + 2*math.Pi, math.Pi / 2},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, WrapAngle(c.in), 1e-9)
	}
}

func TestRotate90IsPerpendicular(t *testing.T) {
	v := Vec2{3, 7}
	r := Rotate90(v)
	assert.InDelta(t, 0.0, Dot(v, r), 1e-12)
}
