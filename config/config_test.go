package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
population_size: 50
three_circle: true
body_type:
  mass: 73.5
  mass_scale: 15
  radius: 0.195
  radius_scale: 0.025
  k_torso: 0.5882
  k_shoulder: 0.3725
  k_torso_shoulder: 0.6275
  target_velocity: 1.25
tunables:
  tau_adj: 0.5
  k_soc: 1.5
  tau_0: 3.0
  mu: 120000
  kappa: 40000
  damping: 500
  std_rand_force: 0.1
  sight_soc: 3.0
  sight_wall: 1.0
  force_social_max: 2000
  force_wall_max: 2000
simulation:
  dt_min: 0.0001
  dt_max: 0.01
  neighbor_radius: 0.5
  neighbor_capacity: 4
  seed: 42
navigation:
  step: 0.01
  radius: 0.3
  value: 0.5
`

func TestLoadParsesScenario(t *testing.T) {
	s, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 50, s.PopulationSize)
	assert.True(t, s.ThreeCircle)
	assert.InDelta(t, 73.5, s.BodyType.Mass, 1e-9)
	assert.InDelta(t, 1.5, s.Tunables.KSoc, 1e-9)
	assert.Equal(t, int64(42), s.Simulation.Seed)
	assert.InDelta(t, 0.01, s.Navigation.Step, 1e-9)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(strings.NewReader("not: [valid"))
	require.Error(t, err)
}
