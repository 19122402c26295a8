package sim

import (
	"math"
	"testing"

	"github.com/akmonengine/crowdsim/agent"
	"github.com/akmonengine/crowdsim/integrate"
	"github.com/akmonengine/crowdsim/obstacle"
	"github.com/akmonengine/crowdsim/simerr"
	"github.com/akmonengine/crowdsim/vec2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headOnAgents() *agent.Store {
	s := agent.NewStore(agent.Circular, 2)
	tun := agent.Tunables{
		TauAdj: 0.5, KSoc: 1.5, Tau0: 3.0, Mu: 1.2e5, Kappa: 4.0e4, Damping: 500,
		SightSoc: 3.0, SightWall: 1.0, ForceSocialMax: 2000, ForceWallMax: 2000,
	}
	s.AddCircular(agent.CircularParams{
		Mass: 70, Radius: 0.25, Position: vec2.Vec2{3, 5}, TargetVelocity: 1.5,
		TargetDirection: vec2.Vec2{1, 0}, Tunable: tun,
	})
	s.AddCircular(agent.CircularParams{
		Mass: 70, Radius: 0.25, Position: vec2.Vec2{7, 5}, TargetVelocity: 1.5,
		TargetDirection: vec2.Vec2{-1, 0}, Tunable: tun,
	})
	return s
}

func newTestSimulation(s *agent.Store, workers int) *Simulation {
	params := Params{
		StepBounds: integrate.StepBounds{DtMin: 1e-4, DtMax: 0.05},
		CellSize:   4.0,
		Workers:    workers,
	}
	return New(s, obstacle.NewStore(nil), nil, params, 7)
}

func TestTwoHeadOnAgentsNeverOverlap(t *testing.T) {
	s := newTestSimulation(headOnAgents(), 1)
	for step := 0; step < 500; step++ {
		_, err := s.Step()
		require.NoError(t, err)
	}
	d := vec2.Length(s.Agents.Position[0].Sub(s.Agents.Position[1]))
	assert.GreaterOrEqual(t, d, s.Agents.Radius[0]+s.Agents.Radius[1]-1e-6)
}

func TestDeterministicAcrossRunsWithSameSeed(t *testing.T) {
	runOnce := func() []vec2.Vec2 {
		s := newTestSimulation(headOnAgents(), 1)
		for step := 0; step < 50; step++ {
			_, err := s.Step()
			require.NoError(t, err)
		}
		return s.Agents.Position
	}

	a := runOnce()
	b := runOnce()
	assert.Equal(t, a, b)
}

func TestDeterministicAcrossWorkerCounts(t *testing.T) {
	run := func(workers int) []vec2.Vec2 {
		s := newTestSimulation(headOnAgents(), workers)
		for step := 0; step < 50; step++ {
			_, err := s.Step()
			require.NoError(t, err)
		}
		return s.Agents.Position
	}

	single := run(1)
	multi := run(4)
	for i := range single {
		assert.InDelta(t, single[i][0], multi[i][0], 1e-9)
		assert.InDelta(t, single[i][1], multi[i][1], 1e-9)
	}
}

func TestDeactivateEmitsEvent(t *testing.T) {
	s := newTestSimulation(headOnAgents(), 1)
	var got []AgentDeactivatedEvent
	s.Subscribe(AgentDeactivated, func(e Event) {
		got = append(got, e.(AgentDeactivatedEvent))
	})

	require.NoError(t, s.Deactivate(0))
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Index)
	assert.False(t, s.Agents.Active[0])
}

func TestStepCompletedEventCarriesDt(t *testing.T) {
	s := newTestSimulation(headOnAgents(), 1)
	var dts []float64
	s.Subscribe(StepCompleted, func(e Event) {
		dts = append(dts, e.(StepCompletedEvent).Dt)
	})

	_, err := s.Step()
	require.NoError(t, err)
	require.Len(t, dts, 1)
	assert.Greater(t, dts[0], 0.0)
}

func TestSnapshotCopiesAreIndependent(t *testing.T) {
	s := newTestSimulation(headOnAgents(), 1)
	snap := s.Snapshot(0.01)
	_, err := s.Step()
	require.NoError(t, err)
	assert.NotEqual(t, snap.Positions[0], s.Agents.Position[0])
}

func TestStepSnapshotCarriesForcesBeforeReset(t *testing.T) {
	s := newTestSimulation(headOnAgents(), 1)

	snap, err := s.Step()
	require.NoError(t, err)

	assert.NotEqual(t, vec2.Vec2{}, snap.Forces[0])
	assert.NotEqual(t, vec2.Vec2{}, snap.Forces[1])
	assert.Equal(t, vec2.Vec2{}, s.Agents.Force[0])
	assert.Equal(t, vec2.Vec2{}, s.Agents.Force[1])
}

func TestNeighborsPopulatedWhenCapacityConfigured(t *testing.T) {
	s := newTestSimulation(headOnAgents(), 1)
	s.Params.NeighborCapacity = 1
	s.Params.NeighborRadius = 10.0

	_, err := s.Step()
	require.NoError(t, err)

	require.NotNil(t, s.Neighbors)
	assert.Equal(t, 1, s.Neighbors.Neighbors(0)[0])
	assert.Equal(t, 0, s.Neighbors.Neighbors(1)[0])
}

func TestNeighborsNilWhenCapacityZero(t *testing.T) {
	s := newTestSimulation(headOnAgents(), 1)

	_, err := s.Step()
	require.NoError(t, err)

	assert.Nil(t, s.Neighbors)
}

func TestStepPropagatesNumericalInstability(t *testing.T) {
	s := newTestSimulation(headOnAgents(), 1)
	s.Agents.Velocity[0] = vec2.Vec2{math.Inf(1), 0}

	_, err := s.Step()

	var instability *simerr.NumericalInstabilityError
	require.ErrorAs(t, err, &instability)
}
