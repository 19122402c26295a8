// Package interaction implements the pairwise interaction driver (C6):
// agent-agent and agent-obstacle dispatch per body model, torque assembly,
// and optional k-nearest neighbor-list maintenance.
package interaction

import (
	"math"

	"github.com/akmonengine/crowdsim/agent"
	"github.com/akmonengine/crowdsim/force"
	"github.com/akmonengine/crowdsim/geom"
	"github.com/akmonengine/crowdsim/obstacle"
	"github.com/akmonengine/crowdsim/vec2"
)

// PairResult is the full outcome of dispatching one agent-agent pair: the
// force/torque contribution on each side, and the skin-to-skin distance h
// used for sight-gating and neighbor-list maintenance.
type PairResult struct {
	ForceI, ForceJ   vec2.Vec2
	TorqueI, TorqueJ float64
	H                float64
}

// ComputePair is the pure dispatch of spec.md §4.4 for one ordered pair
// i<j: distance/normal/moment-arm computation for the active body model,
// sight-gated social force, contact-gated physical force. It only reads
// from s; callers decide how and when to apply the result, which is what
// makes it safe to call concurrently for disjoint or overlapping pairs.
func ComputePair(s *agent.Store, i, j int) PairResult {
	x := s.Position[i].Sub(s.Position[j])
	d := vec2.Length(x)
	rTot := s.Radius[i] + s.Radius[j]
	h := d - rTot

	sight := s.Tunable[i].SightSoc
	if d > sight {
		return PairResult{H: h}
	}

	var n, rMomentI, rMomentJ vec2.Vec2
	var forceI, forceJ vec2.Vec2

	if s.Model == agent.ThreeCircle {
		centersI, radiiI := s.TorsoAndShoulders(i)
		centersJ, radiiJ := s.TorsoAndShoulders(j)
		h, n, rMomentI, rMomentJ = geom.DistanceThreeCircle(centersI, radiiI, centersJ, radiiJ)
		vij := s.Velocity[i].Sub(s.Velocity[j])
		forceI = threeCircleSocial(centersI, radiiI, centersJ, radiiJ, vij, s.Tunable[i])
		forceJ = forceI.Mul(-1)
	} else {
		n = vec2.Unit(x)
		forceI = force.PowerLawSocial(x, s.Velocity[i].Sub(s.Velocity[j]), rTot,
			s.Tunable[i].KSoc, s.Tunable[i].Tau0, s.Tunable[i].ForceSocialMax)
		forceJ = forceI.Mul(-1)
	}

	if h < 0 {
		v := s.Velocity[i].Sub(s.Velocity[j])
		fc := force.ContactForce(h, n, v, s.Tunable[i].Mu, s.Tunable[i].Kappa, s.Tunable[i].Damping)
		forceI = forceI.Add(fc)
		forceJ = forceJ.Sub(fc)
	}

	result := PairResult{ForceI: forceI, ForceJ: forceJ, H: h}
	if s.Model == agent.ThreeCircle {
		result.TorqueI = vec2.Cross(rMomentI, forceI)
		result.TorqueJ = vec2.Cross(rMomentJ, forceJ)
	}
	return result
}

// AgentPair computes and immediately applies one pair's interaction to the
// shared store: not safe to call concurrently for pairs that share an
// agent index. Neighbor-list maintenance, when nl is non-nil, runs
// unconditionally of the sight gate. Sequential callers (tests, small
// scenarios) use this directly; the parallel driver in package sim instead
// calls ComputePair and reduces into per-worker buffers.
func AgentPair(s *agent.Store, i, j int, nl *NeighborList) {
	r := ComputePair(s, i, j)

	s.AddForce(i, r.ForceI)
	s.AddForce(j, r.ForceJ)
	if s.Model == agent.ThreeCircle {
		s.AddTorque(i, r.TorqueI)
		s.AddTorque(j, r.TorqueJ)
	}

	if nl != nil {
		nl.Consider(i, j, r.H)
	}
}

// threeCircleSocial sums the anticipatory power-law force over the 3x3
// disk-pairs of two three-circle bodies, per spec.md §4.3: "Three-circle
// variants of the social force evaluate it on each disk-pair and sum."
func threeCircleSocial(centersI [3]vec2.Vec2, radiiI [3]float64, centersJ [3]vec2.Vec2, radiiJ [3]float64, vij vec2.Vec2, t agent.Tunables) vec2.Vec2 {
	var sum vec2.Vec2
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			xij := centersI[a].Sub(centersJ[b])
			rij := radiiI[a] + radiiJ[b]
			sum = sum.Add(force.PowerLawSocial(xij, vij, rij, t.KSoc, t.Tau0, t.ForceSocialMax))
		}
	}
	return sum
}

// ObstacleResult is the outcome of dispatching one agent-obstacle pair.
type ObstacleResult struct {
	Force   vec2.Vec2
	Torque  float64
	H       float64
	InSight bool
}

// ComputeObstacle is the pure dispatch of spec.md §4.4 for one
// agent-obstacle pair: Helbing wall social force gated by sight_wall,
// contact force gated by h<0. Only reads from s.
func ComputeObstacle(s *agent.Store, i int, o obstacle.Obstacle) ObstacleResult {
	var h float64
	var n, rMoment vec2.Vec2
	var f vec2.Vec2

	if s.Model == agent.ThreeCircle {
		centers, radii := s.TorsoAndShoulders(i)
		h, n, rMoment = geom.DistanceThreeCircleLine(centers, radii, o)
		f = threeCircleWallSocial(centers, radii, o, s.Tunable[i])
	} else {
		h, n = geom.DistanceCircleLine(s.Position[i], s.Radius[i], o)
		f = force.HelbingSocial(h, n, force.DefaultWallSocialA, force.DefaultWallSocialB)
	}

	if max := s.Tunable[i].ForceWallMax; max > 0 {
		if length := vec2.Length(f); length > max {
			f = f.Mul(max / length)
		}
	}

	if h > s.Tunable[i].SightWall {
		return ObstacleResult{H: h, InSight: false}
	}

	if h < 0 {
		fc := force.ContactForce(h, n, s.Velocity[i], s.Tunable[i].Mu, s.Tunable[i].Kappa, s.Tunable[i].Damping)
		f = f.Add(fc)
	}

	result := ObstacleResult{Force: f, H: h, InSight: true}
	if s.Model == agent.ThreeCircle {
		result.Torque = vec2.Cross(rMoment, f)
	}
	return result
}

// AgentObstacle computes and immediately applies one agent-obstacle
// interaction to the shared store.
func AgentObstacle(s *agent.Store, i int, o obstacle.Obstacle) {
	r := ComputeObstacle(s, i, o)
	if !r.InSight {
		return
	}

	s.AddForce(i, r.Force)
	if s.Model == agent.ThreeCircle {
		s.AddTorque(i, r.Torque)
	}
}

func threeCircleWallSocial(centers [3]vec2.Vec2, radii [3]float64, o obstacle.Obstacle, t agent.Tunables) vec2.Vec2 {
	var sum vec2.Vec2
	for k := 0; k < 3; k++ {
		h, n := geom.DistanceCircleLine(centers[k], radii[k], o)
		sum = sum.Add(force.HelbingSocial(h, n, force.DefaultWallSocialA, force.DefaultWallSocialB))
	}
	return sum
}

// NeighborList maintains, per agent, the K spatially nearest other agents
// seen so far this step (by skin-to-skin distance h), replacing the
// current worst (maximum h) slot whenever a closer candidate arrives, per
// spec.md §4.4 step 5. Ties are broken by keeping the existing occupant.
type NeighborList struct {
	k         int
	neighbors [][]int
	distances [][]float64
	maxIndex  []int
}

// NewNeighborList allocates an empty k-nearest buffer for n agents, every
// slot initialized to "unfilled" (index -1, distance +Inf).
func NewNeighborList(n, k int) *NeighborList {
	nl := &NeighborList{
		k:         k,
		neighbors: make([][]int, n),
		distances: make([][]float64, n),
		maxIndex:  make([]int, n),
	}
	for i := 0; i < n; i++ {
		nl.neighbors[i] = make([]int, k)
		nl.distances[i] = make([]float64, k)
		for s := 0; s < k; s++ {
			nl.neighbors[i][s] = -1
			nl.distances[i][s] = math.Inf(1)
		}
	}
	return nl
}

// Consider offers pair (i, j) at distance h to both agents' buffers.
func (nl *NeighborList) Consider(i, j int, h float64) {
	nl.offer(i, j, h)
	nl.offer(j, i, h)
}

func (nl *NeighborList) offer(self, other int, h float64) {
	row := nl.distances[self]
	maxIdx := 0
	maxVal := row[0]
	for s := 1; s < nl.k; s++ {
		if row[s] > maxVal {
			maxVal = row[s]
			maxIdx = s
		}
	}
	if h < maxVal {
		row[maxIdx] = h
		nl.neighbors[self][maxIdx] = other
	}
}

// Neighbors returns agent i's current k-nearest buffer (unfilled slots are
// -1), in internal slot order (not sorted by distance).
func (nl *NeighborList) Neighbors(i int) []int {
	return nl.neighbors[i]
}

// Distances returns the distances parallel to Neighbors(i).
func (nl *NeighborList) Distances(i int) []float64 {
	return nl.distances[i]
}
