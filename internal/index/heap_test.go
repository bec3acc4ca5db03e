package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKBest_KeepsKNearest(t *testing.T) {
	best := newKBest(3)
	best.Offer("far", 9)
	best.Offer("near", 1)
	best.Offer("mid", 5)
	best.Offer("nearer", 0.5)
	best.Offer("farther", 12)

	hits := best.Sorted()
	assert.Equal(t, []SearchHit{
		{ID: "nearer", Distance: 0.5},
		{ID: "near", Distance: 1},
		{ID: "mid", Distance: 5},
	}, hits)
}

func TestKBest_WorstIsInfUntilFull(t *testing.T) {
	best := newKBest(2)
	assert.True(t, math.IsInf(float64(best.Worst()), 1))

	best.Offer("a", 1)
	assert.False(t, best.Full())
	assert.True(t, math.IsInf(float64(best.Worst()), 1))

	best.Offer("b", 3)
	assert.True(t, best.Full())
	assert.Equal(t, float32(3), best.Worst())
}

func TestKBest_EqualDistanceKeepsIncumbent(t *testing.T) {
	best := newKBest(1)
	best.Offer("first", 2)
	best.Offer("second", 2)

	hits := best.Sorted()
	assert.Equal(t, []SearchHit{{ID: "first", Distance: 2}}, hits)
}

func TestKBest_SortedBreaksTiesByID(t *testing.T) {
	best := newKBest(3)
	best.Offer("zeta", 1)
	best.Offer("alpha", 1)
	best.Offer("mid", 1)

	hits := best.Sorted()
	assert.Equal(t, "alpha", hits[0].ID)
	assert.Equal(t, "mid", hits[1].ID)
	assert.Equal(t, "zeta", hits[2].ID)
}

func TestKBest_ZeroKIsEmpty(t *testing.T) {
	best := newKBest(0)
	best.Offer("a", 1)
	assert.Empty(t, best.Sorted())
}
