package obstacle

import (
	"testing"

	"github.com/akmonengine/crowdsim/vec2"
	"github.com/stretchr/testify/assert"
)

func TestNewPrecomputesDerivedFields(t *testing.T) {
	o := New(vec2.Vec2{0, 0}, vec2.Vec2{4, 0})
	assert.InDelta(t, 4.0, o.Length, 1e-12)
	assert.InDelta(t, 1.0, o.Tangent[0], 1e-12)
	assert.InDelta(t, 0.0, o.Tangent[1], 1e-12)
	// normal = rotate90(tangent)
	assert.InDelta(t, 0.0, o.Normal[0], 1e-12)
	assert.InDelta(t, 1.0, o.Normal[1], 1e-12)
}

func TestNewStore(t *testing.T) {
	s := NewStore([][2]vec2.Vec2{
		{{0, 0}, {1, 0}},
		{{0, 0}, {0, 1}},
	})
	assert.Equal(t, 2, s.Len())
	assert.InDelta(t, 1.0, s.Obstacles[0].Length, 1e-12)
	assert.InDelta(t, 1.0, s.Obstacles[1].Length, 1e-12)
}

func TestDegenerateSegmentZeroTangent(t *testing.T) {
	o := New(vec2.Vec2{1, 1}, vec2.Vec2{1, 1})
	assert.Equal(t, 0.0, o.Length)
	assert.Equal(t, vec2.Vec2{0, 0}, o.Tangent)
	assert.Equal(t, vec2.Vec2{0, 0}, o.Normal)
}
