// Package obstacle holds the linear obstacle store (C3): immutable line
// segments bounding the domain, each with a precomputed tangent, normal,
// and length.
package obstacle

import "github.com/akmonengine/crowdsim/vec2"

// Obstacle is a single linear obstacle segment, immutable after construction.
type Obstacle struct {
	P0, P1  vec2.Vec2
	Tangent vec2.Vec2
	Normal  vec2.Vec2
	Length  float64
}

// New builds an Obstacle from its two endpoints, precomputing tangent,
// normal, and length. A degenerate (zero-length) segment gets a zero
// tangent/normal; callers constructing obstacle sets should reject these
// before assembling a scenario.
func New(p0, p1 vec2.Vec2) Obstacle {
	d := p1.Sub(p0)
	length := vec2.Length(d)
	tangent := vec2.Unit(d)
	return Obstacle{
		P0:      p0,
		P1:      p1,
		Tangent: tangent,
		Normal:  vec2.Rotate90(tangent),
		Length:  length,
	}
}

// Store is an immutable array of obstacles.
type Store struct {
	Obstacles []Obstacle
}

// NewStore builds a Store from a list of segment endpoint pairs.
func NewStore(segments [][2]vec2.Vec2) *Store {
	obstacles := make([]Obstacle, len(segments))
	for i, seg := range segments {
		obstacles[i] = New(seg[0], seg[1])
	}
	return &Store{Obstacles: obstacles}
}

// Len returns the number of obstacles in the store.
func (s *Store) Len() int {
	return len(s.Obstacles)
}
