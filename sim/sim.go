// Package sim implements the simulation driver (C10): orchestration of the
// per-step phases (navigate, adjust and fluctuation, interact, integrate,
// with integrate clearing forces for the next step), snapshot egress, and
// an event stream for deactivations and completed steps.
package sim

import (
	"math/rand"
	"sync"

	"github.com/akmonengine/crowdsim/agent"
	"github.com/akmonengine/crowdsim/force"
	"github.com/akmonengine/crowdsim/grid"
	"github.com/akmonengine/crowdsim/integrate"
	"github.com/akmonengine/crowdsim/interaction"
	"github.com/akmonengine/crowdsim/nav"
	"github.com/akmonengine/crowdsim/obstacle"
	"github.com/akmonengine/crowdsim/simlog"
	"github.com/akmonengine/crowdsim/vec2"
)

// Params bundles the scalar simulation parameters read each step.
type Params struct {
	integrate.StepBounds
	CellSize float64 // spatial grid cell size; must be >= 2*max_radius+sight_soc.
	Workers  int     // worker count for the parallel interaction reduction; 1 disables parallelism.

	// NeighborCapacity, when > 0, maintains a k-nearest neighbor list each
	// step (spec.md §4.4's optional neighbor-list maintenance), considering
	// only pairs within NeighborRadius. 0 disables neighbor-list
	// maintenance entirely.
	NeighborCapacity int
	NeighborRadius   float64
}

// Simulation owns the agent store, obstacle store, navigation field, and
// per-step scratch state needed to advance the model.
type Simulation struct {
	Agents    *agent.Store
	Obstacles *obstacle.Store
	Nav       *nav.Field
	Params    Params

	rng    *rand.Rand
	events Events

	// Neighbors holds the current step's k-nearest neighbor list, rebuilt
	// by interact each step when Params.NeighborCapacity > 0; nil
	// otherwise.
	Neighbors *interaction.NeighborList

	TimeTotal float64
}

// New constructs a Simulation with the given deterministic RNG seed.
func New(agents *agent.Store, obstacles *obstacle.Store, navField *nav.Field, params Params, seed int64) *Simulation {
	if params.Workers < 1 {
		params.Workers = 1
	}
	return &Simulation{
		Agents:    agents,
		Obstacles: obstacles,
		Nav:       navField,
		Params:    params,
		rng:       rand.New(rand.NewSource(seed)),
		events:    newEvents(),
	}
}

// Subscribe registers a listener for the given event type.
func (s *Simulation) Subscribe(t EventType, l EventListener) {
	s.events.Subscribe(t, l)
}

// Deactivate clears agent i's active flag and emits AgentDeactivated at
// the next flush (immediately, since it has no per-step buffering needs).
func (s *Simulation) Deactivate(i int) error {
	if err := s.Agents.Deactivate(i); err != nil {
		return err
	}
	s.events.emit(AgentDeactivatedEvent{Index: i})
	s.events.flush()
	return nil
}

// Step advances the simulation by one adaptive timestep, running the phases
// in a fixed order: navigate → adjust + fluctuation → interact → integrate;
// integrate ends by clearing force/torque, which serves as the reset for the
// next step. Returns a Snapshot of the state the step produced,
// including the force/torque that drove it — captured before integrate.Step
// clears them for the next step, since that is the only point at which they
// are observable. If integrate.Step detects a non-finite position,
// velocity, force, orientation, angular velocity, or torque, Step returns a
// *simerr.NumericalInstabilityError and leaves the agent store exactly as
// integrate.Step left it (forces/torques uncleared, TimeTotal not advanced)
// for inspection.
func (s *Simulation) Step() (Snapshot, error) {
	s.navigate()
	s.fluctuateAndAdjust()
	s.interact()

	dt := integrate.AdaptiveDt(s.Agents, s.Params.StepBounds)
	forces := append([]vec2.Vec2(nil), s.Agents.Force...)
	var torques []float64
	if s.Agents.Model == agent.ThreeCircle {
		torques = append([]float64(nil), s.Agents.Torque...)
	}

	newTimeTotal := s.TimeTotal + dt
	if err := integrate.Step(s.Agents, dt, newTimeTotal); err != nil {
		return Snapshot{}, err
	}
	s.TimeTotal = newTimeTotal

	snap := s.snapshotFrom(forces, torques, dt)

	s.events.emit(StepCompletedEvent{Dt: dt, TimeTotal: s.TimeTotal})
	s.events.flush()

	simlog.Logger().Debug("step complete", "dt", dt, "time_total", s.TimeTotal)
	return snap, nil
}

// navigate writes each active agent's target_direction from a navigation
// field lookup at its current position, when a field is attached.
func (s *Simulation) navigate() {
	if s.Nav == nil {
		return
	}
	for _, i := range s.Agents.ActiveIndices() {
		s.Agents.TargetDirection[i] = s.Nav.Lookup(s.Agents.Position[i])
	}
}

// fluctuateAndAdjust applies the per-agent adjusting and fluctuation
// force/torque kernels; these have no pairwise write conflicts so they run
// directly against the shared store regardless of worker count.
func (s *Simulation) fluctuateAndAdjust() {
	for _, i := range s.Agents.ActiveIndices() {
		t := s.Agents.Tunable[i]

		adj := force.AdjustingForce(s.Agents.Mass[i], s.Agents.Velocity[i], s.Agents.TargetVelocity[i], s.Agents.TargetDirection[i], t.TauAdj)
		s.Agents.AddForce(i, adj)

		fluct := force.FluctuationForce(s.rng, s.Agents.Mass[i], t.StdRandForce)
		s.Agents.AddForce(i, fluct)

		if s.Agents.Model == agent.ThreeCircle {
			adjRot := force.AdjustingTorque(s.Agents.InertiaRot[i], s.Agents.Orientation[i], s.Agents.TargetOrientation[i], s.Agents.AngularVelocity[i], t.TauRot)
			s.Agents.AddTorque(i, adjRot)

			fluctRot := force.FluctuationTorque(s.rng, s.Agents.InertiaRot[i], t.StdRandTorque)
			s.Agents.AddTorque(i, fluctRot)
		}
	}
}

// interact runs the pairwise agent-agent and agent-obstacle interaction
// kernels and accumulates the resulting forces/torques. Pair work is
// partitioned into contiguous chunks across Params.Workers, each worker
// writing into its own force/torque buffers; buffers are summed into the
// store in fixed worker order afterward, so the result is bitwise
// reproducible for a given (pair list, worker count) regardless of
// goroutine scheduling.
func (s *Simulation) interact() {
	n := s.Agents.Len()
	if n == 0 {
		return
	}

	bl := grid.Build(s.Agents.Position, s.Params.CellSize)
	pairs := bl.Pairs()

	rotational := s.Agents.Model == agent.ThreeCircle

	buffers := make([]partialBuffer, s.Params.Workers)
	for w := range buffers {
		buffers[w] = newPartialBuffer(n, rotational)
	}

	task(s.Params.Workers, len(pairs), func(w, start, end int) {
		buf := &buffers[w]
		for _, p := range pairs[start:end] {
			r := interaction.ComputePair(s.Agents, p.I, p.J)
			buf.force[p.I] = buf.force[p.I].Add(r.ForceI)
			buf.force[p.J] = buf.force[p.J].Add(r.ForceJ)
			if rotational {
				buf.torque[p.I] += r.TorqueI
				buf.torque[p.J] += r.TorqueJ
			}
		}
	})

	for _, buf := range buffers {
		buf.addTo(s.Agents)
	}

	s.updateNeighbors(pairs)

	obstacleBuffers := make([]partialBuffer, s.Params.Workers)
	for w := range obstacleBuffers {
		obstacleBuffers[w] = newPartialBuffer(n, rotational)
	}

	active := s.Agents.ActiveIndices()
	task(s.Params.Workers, len(active), func(w, start, end int) {
		buf := &obstacleBuffers[w]
		for _, i := range active[start:end] {
			for _, o := range s.Obstacles.Obstacles {
				r := interaction.ComputeObstacle(s.Agents, i, o)
				if !r.InSight {
					continue
				}
				buf.force[i] = buf.force[i].Add(r.Force)
				if rotational {
					buf.torque[i] += r.Torque
				}
			}
		}
	})
	for _, buf := range obstacleBuffers {
		buf.addTo(s.Agents)
	}

	s.clampTotalForce()
}

// updateNeighbors rebuilds Neighbors from this step's pair list when
// Params.NeighborCapacity > 0, keeping only pairs within NeighborRadius.
// Run sequentially (not worker-chunked): NeighborList.offer mutates a
// shared per-agent slot shared by both sides of a pair, so splitting it
// across workers would reintroduce the same class of race the force/torque
// reduction above was rewritten to avoid.
func (s *Simulation) updateNeighbors(pairs []grid.Pair) {
	if s.Params.NeighborCapacity <= 0 {
		s.Neighbors = nil
		return
	}

	nl := interaction.NewNeighborList(s.Agents.Len(), s.Params.NeighborCapacity)
	for _, p := range pairs {
		r := interaction.ComputePair(s.Agents, p.I, p.J)
		if r.H <= s.Params.NeighborRadius {
			nl.Consider(p.I, p.J, r.H)
		}
	}
	s.Neighbors = nl
}

// clampTotalForce applies the ForceTotalMax clamp (an addition to the
// base interaction spec, §4 of the expanded spec) once per step, after all
// interaction contributions have been summed.
func (s *Simulation) clampTotalForce() {
	for _, i := range s.Agents.ActiveIndices() {
		max := s.Agents.Tunable[i].ForceTotalMax
		if max <= 0 {
			continue
		}
		if l := vec2.Length(s.Agents.Force[i]); l > max {
			s.Agents.Force[i] = s.Agents.Force[i].Mul(max / l)
		}
	}
}

// partialBuffer accumulates one worker's share of force/torque
// contributions, indexed by the global agent index.
type partialBuffer struct {
	force  []vec2.Vec2
	torque []float64
}

func newPartialBuffer(n int, rotational bool) partialBuffer {
	b := partialBuffer{force: make([]vec2.Vec2, n)}
	if rotational {
		b.torque = make([]float64, n)
	}
	return b
}

func (b *partialBuffer) addTo(s *agent.Store) {
	for i, f := range b.force {
		if f != (vec2.Vec2{}) {
			s.AddForce(i, f)
		}
	}
	for i, t := range b.torque {
		if t != 0 {
			s.AddTorque(i, t)
		}
	}
}

// Snapshot is the per-step egress record of spec.md §6: positions,
// velocities, orientations, angular velocities, forces, torques, the
// active mask, and the Δt/time bookkeeping for the step that produced it.
// Fields are copies, safe to retain across further Step calls.
type Snapshot struct {
	Positions         []vec2.Vec2
	Velocities        []vec2.Vec2
	Orientations      []float64
	AngularVelocities []float64
	Forces            []vec2.Vec2
	Torques           []float64
	Active            []bool
	DtUsed            float64
	TimeTotal         float64
}

// snapshotFrom builds a Snapshot from the store's current
// position/velocity/orientation/active state combined with explicit
// force/torque buffers, so a caller holding a pre-reset copy (Step) and one
// reading the store directly (Snapshot) share one assembly path.
func (s *Simulation) snapshotFrom(forces []vec2.Vec2, torques []float64, dtUsed float64) Snapshot {
	snap := Snapshot{
		Positions:  append([]vec2.Vec2(nil), s.Agents.Position...),
		Velocities: append([]vec2.Vec2(nil), s.Agents.Velocity...),
		Forces:     append([]vec2.Vec2(nil), forces...),
		Active:     append([]bool(nil), s.Agents.Active...),
		DtUsed:     dtUsed,
		TimeTotal:  s.TimeTotal,
	}
	if s.Agents.Model == agent.ThreeCircle {
		snap.Orientations = append([]float64(nil), s.Agents.Orientation...)
		snap.AngularVelocities = append([]float64(nil), s.Agents.AngularVelocity...)
		snap.Torques = append([]float64(nil), torques...)
	}
	return snap
}

// Snapshot copies out the current agent state for ad-hoc inspection between
// steps. Forces/Torques reflect whatever is currently accumulated in the
// store, which is zero immediately after Step returns (its ResetMotion has
// already run) — use the Snapshot Step itself returns to see the
// force/torque that produced that step.
func (s *Simulation) Snapshot(dtUsed float64) Snapshot {
	return s.snapshotFrom(s.Agents.Force, s.Agents.Torque, dtUsed)
}

// task partitions [0, dataSize) into workersCount contiguous chunks and
// runs fn(workerIndex, start, end) for each in its own goroutine, blocking
// until all complete. A chunked worker-pool helper that passes the worker
// index through so each goroutine can address its own scratch buffer.
func task(workersCount, dataSize int, fn func(worker, start, end int)) {
	if workersCount <= 1 || dataSize <= 1 {
		fn(0, 0, dataSize)
		return
	}

	var wg sync.WaitGroup
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for w := 0; w < workersCount; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > dataSize {
			end = dataSize
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			fn(worker, start, end)
		}(w, start, end)
	}
	wg.Wait()
}
