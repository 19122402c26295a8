// Package config loads the YAML-tagged records that parameterize a
// scenario: per-agent tunables, body-type sampling means, and the
// simulation's global numerical and navigation parameters.
package config

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Tunables mirrors agent.Tunables for YAML loading; the demo command
// (cmd/crowdsim-demo) converts this into agent.Tunables once per scenario.
type Tunables struct {
	TauAdj         float64 `yaml:"tau_adj"`
	KSoc           float64 `yaml:"k_soc"`
	Tau0           float64 `yaml:"tau_0"`
	Mu             float64 `yaml:"mu"`
	Kappa          float64 `yaml:"kappa"`
	Damping        float64 `yaml:"damping"`
	StdRandForce   float64 `yaml:"std_rand_force"`
	SightSoc       float64 `yaml:"sight_soc"`
	SightWall      float64 `yaml:"sight_wall"`
	ForceSocialMax float64 `yaml:"force_social_max"`
	ForceWallMax   float64 `yaml:"force_wall_max"`
	ForceTotalMax  float64 `yaml:"force_total_max"`
	TauRot         float64 `yaml:"tau_rot"`
	StdRandTorque  float64 `yaml:"std_rand_torque"`
}

// BodyTypeMeans mirrors scenario.BodyTypeMeans for YAML loading.
type BodyTypeMeans struct {
	Mass           float64 `yaml:"mass"`
	MassScale      float64 `yaml:"mass_scale"`
	Radius         float64 `yaml:"radius"`
	RadiusScale    float64 `yaml:"radius_scale"`
	KTorso         float64 `yaml:"k_torso"`
	KShoulder      float64 `yaml:"k_shoulder"`
	KTorsoShoulder float64 `yaml:"k_torso_shoulder"`
	InertiaRot     float64 `yaml:"inertia_rot"`
	TargetVelocity float64 `yaml:"target_velocity"`
}

// SimulationParameters holds the global numerical knobs (step bounds,
// neighbor list, RNG seed) listed as ingress parameters in spec.md §6; the
// navigation knobs are in NavigationParameters.
type SimulationParameters struct {
	DtMin            float64 `yaml:"dt_min"`
	DtMax            float64 `yaml:"dt_max"`
	NeighborRadius   float64 `yaml:"neighbor_radius"`
	NeighborCapacity int     `yaml:"neighbor_capacity"`
	Seed             int64   `yaml:"seed"`
}

// NavigationParameters configures the Eikonal field build.
type NavigationParameters struct {
	Step   float64 `yaml:"step"`
	Radius float64 `yaml:"radius"`
	Value  float64 `yaml:"value"`
}

// Scenario is the top-level YAML document: one body type, one set of
// tunables shared by the whole population, and the simulation/navigation
// parameters.
type Scenario struct {
	BodyType       BodyTypeMeans        `yaml:"body_type"`
	Tunables       Tunables             `yaml:"tunables"`
	Simulation     SimulationParameters `yaml:"simulation"`
	Navigation     NavigationParameters `yaml:"navigation"`
	ThreeCircle    bool                 `yaml:"three_circle"`
	PopulationSize int                  `yaml:"population_size"`
}

// Load decodes a Scenario from YAML.
func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
