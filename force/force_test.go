package force

import (
	"math/rand"
	"testing"

	"github.com/akmonengine/crowdsim/vec2"
	"github.com/stretchr/testify/assert"
)

func TestAdjustingForceZeroAtTarget(t *testing.T) {
	f := AdjustingForce(70, vec2.Vec2{1.5, 0}, 1.5, vec2.Vec2{1, 0}, 0.5)
	assert.Equal(t, vec2.Vec2{0, 0}, f)
}

func TestAdjustingForceNonZero(t *testing.T) {
	f := AdjustingForce(70, vec2.Vec2{0, 0}, 1.5, vec2.Vec2{1, 0}, 0.5)
	assert.InDelta(t, 70/0.5*1.5, f[0], 1e-9)
}

func TestFluctuationForceZeroStd(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	f := FluctuationForce(rng, 70, 0)
	assert.Equal(t, vec2.Vec2{0, 0}, f)
}

func TestFluctuationForceBoundedMagnitude(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const mass, std = 70.0, 0.2
	for i := 0; i < 1000; i++ {
		f := FluctuationForce(rng, mass, std)
		assert.LessOrEqual(t, vec2.Length(f), mass*3*std+1e-9)
	}
}

func TestHelbingSocialDecaysWithDistance(t *testing.T) {
	near := HelbingSocial(0.0, vec2.Vec2{1, 0}, DefaultWallSocialA, DefaultWallSocialB)
	far := HelbingSocial(1.0, vec2.Vec2{1, 0}, DefaultWallSocialA, DefaultWallSocialB)
	assert.Greater(t, vec2.Length(near), vec2.Length(far))
}

func TestPowerLawSocialZeroWhenStationaryRelativeVelocity(t *testing.T) {
	// a = v_ij . v_ij = 0 < 1e-3 threshold: no force regardless of position.
	f := PowerLawSocial(vec2.Vec2{1, 0}, vec2.Vec2{0, 0}, 0.5, 1.5, 3.0, 2000)
	assert.Equal(t, vec2.Vec2{0, 0}, f)
}

func TestPowerLawSocialZeroWhenNoCollisionPredicted(t *testing.T) {
	// Moving apart: relative position and velocity point the same way, so
	// b = -x.v < 0 and tau = (b - sqrt(delta))/a < 0: no collision.
	f := PowerLawSocial(vec2.Vec2{5, 0}, vec2.Vec2{1, 0}, 0.5, 1.5, 3.0, 2000)
	assert.Equal(t, vec2.Vec2{0, 0}, f)
}

func TestPowerLawSocialFiniteAndClamped(t *testing.T) {
	// Head-on approach predicts a real, positive, bounded tau.
	xij := vec2.Vec2{3, 0}
	vij := vec2.Vec2{-2, 0}
	f := PowerLawSocial(xij, vij, 0.5, 1.5, 3.0, 50.0)
	assert.True(t, vec2.Length(f) > 0)
	assert.LessOrEqual(t, vec2.Length(f), 50.0+1e-9)
}

func TestContactForceZeroWhenSeparated(t *testing.T) {
	f := ContactForce(0.1, vec2.Vec2{1, 0}, vec2.Vec2{0, 0}, DefaultMu, DefaultKappa, DefaultDamping)
	assert.Equal(t, vec2.Vec2{0, 0}, f)
}

func TestContactForceRepulsiveOnOverlap(t *testing.T) {
	f := ContactForce(-0.01, vec2.Vec2{1, 0}, vec2.Vec2{0, 0}, DefaultMu, DefaultKappa, DefaultDamping)
	assert.Greater(t, f[0], 0.0)
}

func TestContactForceDampingReducesOutwardForceOnApproach(t *testing.T) {
	// Approaching along the normal (v.n < 0) should reduce the net outward
	// force relative to zero relative velocity.
	withoutDamping := ContactForce(-0.01, vec2.Vec2{1, 0}, vec2.Vec2{0, 0}, DefaultMu, DefaultKappa, 0)
	approaching := ContactForce(-0.01, vec2.Vec2{1, 0}, vec2.Vec2{-1, 0}, DefaultMu, DefaultKappa, DefaultDamping)
	assert.Less(t, approaching[0], withoutDamping[0])
}
