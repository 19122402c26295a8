package scenario

import (
	"math/rand"
	"testing"

	"github.com/akmonengine/crowdsim/obstacle"
	"github.com/akmonengine/crowdsim/simerr"
	"github.com/akmonengine/crowdsim/vec2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomPositionsNonOverlapping(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	radii := make([]float64, 30)
	for i := range radii {
		radii[i] = 0.25
	}
	positions, err := RandomPositions(rng, radii, Limits{0, 10}, Limits{0, 10}, nil)
	require.NoError(t, err)

	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			d := vec2.Length(positions[i].Sub(positions[j]))
			assert.GreaterOrEqual(t, d, radii[i]+radii[j])
		}
	}
}

func TestRandomPositionsRespectsWalls(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	radii := []float64{0.3, 0.3}
	walls := []obstacle.Obstacle{obstacle.New(vec2.Vec2{0, 5}, vec2.Vec2{10, 5})}
	positions, err := RandomPositions(rng, radii, Limits{0, 10}, Limits{0, 10}, walls)
	require.NoError(t, err)

	for i, p := range positions {
		assert.GreaterOrEqual(t, mathAbs(p[1]-5), radii[i])
	}
}

func mathAbs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestRandomPositionsInfeasibleWhenOverpacked(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// 50 agents of radius 5 cannot possibly fit non-overlapping in a 1x1 box.
	radii := make([]float64, 50)
	for i := range radii {
		radii[i] = 5.0
	}
	_, err := RandomPositions(rng, radii, Limits{0, 1}, Limits{0, 1}, nil)
	require.Error(t, err)
	var placementErr *simerr.PlacementInfeasibleError
	require.ErrorAs(t, err, &placementErr)
}

func TestTruncatedNormalStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		x := TruncatedNormal(rng, 70, 15, 3.0)
		assert.InDelta(t, 70, x, 15+1e-9)
	}
}

func TestSampleBodyDerivesGeometryFromRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	bt := BodyTypeMeans{
		Mass: 73.5, MassScale: 15, Radius: 0.195, RadiusScale: 0.025,
		KTorso: 0.5882, KShoulder: 0.3725, KTorsoShoulder: 0.6275,
	}
	b := SampleBody(rng, bt)
	assert.InDelta(t, bt.KTorso*b.Radius, b.RTorso, 1e-12)
	assert.InDelta(t, bt.KShoulder*b.Radius, b.RShoulder, 1e-12)
	assert.InDelta(t, bt.KTorsoShoulder*b.Radius, b.RTorsoShoulder, 1e-12)
}
