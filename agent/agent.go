// Package agent implements the agent store (C2): a structure-of-arrays
// holding all per-agent state for both body models (single disk and
// three-disk "torso + shoulders"), plus the Tunables record each agent
// carries.
package agent

import (
	"github.com/akmonengine/crowdsim/simerr"
	"github.com/akmonengine/crowdsim/vec2"
	"github.com/google/uuid"
)

// BodyModel is a whole-population property: every agent in a Store shares
// the same body model.
type BodyModel int

const (
	Circular BodyModel = iota
	ThreeCircle
)

// Tunables holds the per-agent tunable parameters read by the force
// kernels. It is set once per agent when the scenario is assembled (the
// demo command converts config.Tunables into it) and stored immutably in
// the agent Store's parallel arrays.
type Tunables struct {
	TauAdj         float64
	KSoc           float64
	Tau0           float64
	Mu             float64
	Kappa          float64
	Damping        float64
	StdRandForce   float64
	SightSoc       float64
	SightWall      float64
	ForceSocialMax float64
	ForceWallMax   float64
	// ForceTotalMax clamps the total per-agent force after the interaction
	// phase has summed all contributions; 0 means no clamp. This is a
	// SPEC_FULL.md addition (§4, "Supplemental from original_source"), not
	// part of any single force kernel.
	ForceTotalMax float64

	// Rotational tunables, meaningful only when the Store's Model is
	// ThreeCircle.
	TauRot        float64
	StdRandTorque float64
}

// Body geometry for the three-circle model.
type ThreeCircleGeometry struct {
	RTorso         float64
	RShoulder      float64
	RTorsoShoulder float64
}

// Store is the structure-of-arrays agent container. All slices are indexed
// by the same agent index; Active gates which indices are live.
type Store struct {
	Model BodyModel

	ID []uuid.UUID

	// Translational fields, present for both body models.
	Mass            []float64
	Radius          []float64
	Position        []vec2.Vec2
	Velocity        []vec2.Vec2
	TargetVelocity  []float64
	TargetDirection []vec2.Vec2
	Force           []vec2.Vec2

	Tunable []Tunables

	// Rotational fields, populated only when Model == ThreeCircle.
	InertiaRot            []float64
	Orientation           []float64
	AngularVelocity       []float64
	TargetOrientation     []float64
	TargetAngularVelocity []float64
	Torque                []float64
	Geometry              []ThreeCircleGeometry

	// Derived each step by UpdateShoulders, valid only when Model ==
	// ThreeCircle.
	PositionLeftShoulder  []vec2.Vec2
	PositionRightShoulder []vec2.Vec2

	Active []bool
}

// NewStore creates an empty Store for the given body model with preallocated
// capacity.
func NewStore(model BodyModel, capacity int) *Store {
	s := &Store{
		Model:           model,
		ID:              make([]uuid.UUID, 0, capacity),
		Mass:            make([]float64, 0, capacity),
		Radius:          make([]float64, 0, capacity),
		Position:        make([]vec2.Vec2, 0, capacity),
		Velocity:        make([]vec2.Vec2, 0, capacity),
		TargetVelocity:  make([]float64, 0, capacity),
		TargetDirection: make([]vec2.Vec2, 0, capacity),
		Force:           make([]vec2.Vec2, 0, capacity),
		Tunable:         make([]Tunables, 0, capacity),
		Active:          make([]bool, 0, capacity),
	}
	if model == ThreeCircle {
		s.InertiaRot = make([]float64, 0, capacity)
		s.Orientation = make([]float64, 0, capacity)
		s.AngularVelocity = make([]float64, 0, capacity)
		s.TargetOrientation = make([]float64, 0, capacity)
		s.TargetAngularVelocity = make([]float64, 0, capacity)
		s.Torque = make([]float64, 0, capacity)
		s.Geometry = make([]ThreeCircleGeometry, 0, capacity)
		s.PositionLeftShoulder = make([]vec2.Vec2, 0, capacity)
		s.PositionRightShoulder = make([]vec2.Vec2, 0, capacity)
	}
	return s
}

// Len returns the number of agents (active or not) in the store.
func (s *Store) Len() int {
	return len(s.Position)
}

// CircularParams bundles the construction arguments for a single-disk
// agent, shared by both body models.
type CircularParams struct {
	Mass, Radius    float64
	Position        vec2.Vec2
	Velocity        vec2.Vec2
	TargetVelocity  float64
	TargetDirection vec2.Vec2
	Tunable         Tunables
}

// ThreeCircleParams extends CircularParams with the rotational and shoulder
// geometry fields required by the three-circle body model.
type ThreeCircleParams struct {
	CircularParams
	InertiaRot            float64
	Orientation           float64
	AngularVelocity       float64
	TargetOrientation     float64
	TargetAngularVelocity float64
	Geometry              ThreeCircleGeometry
}

// AddCircular appends a single-disk agent and returns its index. Valid for
// either body model (three-circle agents still have these fields); use
// AddThreeCircle to also populate the rotational fields.
func (s *Store) AddCircular(p CircularParams) int {
	idx := len(s.Position)
	s.ID = append(s.ID, uuid.New())
	s.Mass = append(s.Mass, p.Mass)
	s.Radius = append(s.Radius, p.Radius)
	s.Position = append(s.Position, p.Position)
	s.Velocity = append(s.Velocity, p.Velocity)
	s.TargetVelocity = append(s.TargetVelocity, p.TargetVelocity)
	s.TargetDirection = append(s.TargetDirection, vec2.Unit(p.TargetDirection))
	s.Force = append(s.Force, vec2.Vec2{})
	s.Tunable = append(s.Tunable, p.Tunable)
	s.Active = append(s.Active, true)

	if s.Model == ThreeCircle {
		s.InertiaRot = append(s.InertiaRot, 0)
		s.Orientation = append(s.Orientation, 0)
		s.AngularVelocity = append(s.AngularVelocity, 0)
		s.TargetOrientation = append(s.TargetOrientation, 0)
		s.TargetAngularVelocity = append(s.TargetAngularVelocity, 0)
		s.Torque = append(s.Torque, 0)
		s.Geometry = append(s.Geometry, ThreeCircleGeometry{})
		s.PositionLeftShoulder = append(s.PositionLeftShoulder, p.Position)
		s.PositionRightShoulder = append(s.PositionRightShoulder, p.Position)
	}
	return idx
}

// AddThreeCircle appends a three-circle agent and returns its index. The
// Store must have been created with model ThreeCircle.
func (s *Store) AddThreeCircle(p ThreeCircleParams) (int, error) {
	if s.Model != ThreeCircle {
		return 0, &simerr.DomainInvalidError{Reason: "AddThreeCircle called on a Circular store"}
	}
	idx := s.AddCircular(p.CircularParams)
	s.InertiaRot[idx] = p.InertiaRot
	s.Orientation[idx] = p.Orientation
	s.AngularVelocity[idx] = p.AngularVelocity
	s.TargetOrientation[idx] = p.TargetOrientation
	s.TargetAngularVelocity[idx] = p.TargetAngularVelocity
	s.Geometry[idx] = p.Geometry
	s.updateShoulder(idx)
	return idx, nil
}

// ActiveIndices returns the indices of active agents in ascending order,
// the stable enumeration order required for determinism (spec.md §3.1).
func (s *Store) ActiveIndices() []int {
	out := make([]int, 0, len(s.Active))
	for i, active := range s.Active {
		if active {
			out = append(out, i)
		}
	}
	return out
}

// Deactivate sets an agent's active flag to false; it is then skipped by
// ActiveIndices and all downstream enumerations.
func (s *Store) Deactivate(i int) error {
	if i < 0 || i >= len(s.Active) {
		return &simerr.IndexOutOfBoundsError{Index: i, Bound: len(s.Active)}
	}
	s.Active[i] = false
	return nil
}

// ResetMotion zeroes Force (and Torque, for three-circle stores) for every
// agent. Idempotent: calling it twice in a row is the same as calling it
// once.
func (s *Store) ResetMotion() {
	for i := range s.Force {
		s.Force[i] = vec2.Vec2{}
	}
	for i := range s.Torque {
		s.Torque[i] = 0
	}
}

// AddForce accumulates a force contribution on agent i.
func (s *Store) AddForce(i int, f vec2.Vec2) {
	s.Force[i] = s.Force[i].Add(f)
}

// AddTorque accumulates a torque contribution on agent i (three-circle
// stores only).
func (s *Store) AddTorque(i int, t float64) {
	s.Torque[i] += t
}

// UpdateShoulders recomputes PositionLeftShoulder/PositionRightShoulder
// for every active agent from the current Position and Orientation. Only
// meaningful for three-circle stores; a no-op otherwise.
func (s *Store) UpdateShoulders() {
	if s.Model != ThreeCircle {
		return
	}
	for _, i := range s.ActiveIndices() {
		s.updateShoulder(i)
	}
}

func (s *Store) updateShoulder(i int) {
	offset := vec2.Rotate270(vec2.FromAngle(s.Orientation[i])).Mul(s.Geometry[i].RTorsoShoulder)
	s.PositionLeftShoulder[i] = s.Position[i].Sub(offset)
	s.PositionRightShoulder[i] = s.Position[i].Add(offset)
}

// TorsoAndShoulders returns the three disk centers (torso, left shoulder,
// right shoulder) and radii for a three-circle agent, in the fixed
// enumeration order used for tie-breaking throughout geom.
func (s *Store) TorsoAndShoulders(i int) (centers [3]vec2.Vec2, radii [3]float64) {
	g := s.Geometry[i]
	centers = [3]vec2.Vec2{s.Position[i], s.PositionLeftShoulder[i], s.PositionRightShoulder[i]}
	radii = [3]float64{g.RTorso, g.RShoulder, g.RShoulder}
	return
}

// Validate checks the construction-time invariants of spec.md §3.1:
// positive radius/mass, non-negative target velocity, and (for
// three-circle) positive torso/shoulder radii with non-negative offset.
func (s *Store) Validate() error {
	for i := range s.Position {
		if s.Radius[i] <= 0 {
			return &simerr.DomainInvalidError{Reason: "agent radius must be > 0"}
		}
		if s.Mass[i] <= 0 {
			return &simerr.DomainInvalidError{Reason: "agent mass must be > 0"}
		}
		if s.TargetVelocity[i] < 0 {
			return &simerr.DomainInvalidError{Reason: "agent target velocity must be >= 0"}
		}
		if s.Model == ThreeCircle {
			g := s.Geometry[i]
			if g.RTorso <= 0 || g.RShoulder <= 0 || g.RTorsoShoulder < 0 {
				return &simerr.DomainInvalidError{Reason: "three-circle geometry must have positive torso/shoulder radii and non-negative offset"}
			}
		}
	}
	return nil
}
