package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKDTree_DeletedNodeStillRoutes(t *testing.T) {
	// Given: a tree where the root is tombstoned
	tree := NewKDTree(2)
	vectors := [][]float32{{5, 5}, {2, 2}, {8, 8}, {1, 1}, {9, 9}}
	ids := []string{"m", "a", "b", "c", "d"}
	require.NoError(t, tree.Build(vectors, ids))

	rootID := tree.root.id
	assert.True(t, tree.Delete(rootID))

	// Then: search traverses through the tombstone and finds both sides
	hits, err := tree.Search([]float32{5, 5}, 4)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	for _, h := range hits {
		assert.NotEqual(t, rootID, h.ID)
	}
}

func TestKDTree_AddDescendsByAxis(t *testing.T) {
	tree := NewKDTree(2)
	require.NoError(t, tree.Add([]float32{5, 5}, "root"))
	require.NoError(t, tree.Add([]float32{2, 9}, "left"))
	require.NoError(t, tree.Add([]float32{8, 1}, "right"))

	// Root splits on axis 0: x<5 goes left, x>=5 goes right.
	require.NotNil(t, tree.root.left)
	require.NotNil(t, tree.root.right)
	assert.Equal(t, "left", tree.root.left.id)
	assert.Equal(t, "right", tree.root.right.id)
	// Children split on axis 1.
	assert.Equal(t, 1, tree.root.left.axis)
	assert.Equal(t, 1, tree.root.right.axis)
}

func TestKDTree_LenExcludesTombstones(t *testing.T) {
	vectors, ids := randomVectors(30, 10, 3)
	tree := NewKDTree(3)
	require.NoError(t, tree.Build(vectors, ids))

	assert.True(t, tree.Delete("v3"))
	assert.True(t, tree.Delete("v7"))
	assert.Equal(t, 8, tree.Len())
}

func TestKDTree_RebuildDropsTombstones(t *testing.T) {
	vectors, ids := randomVectors(31, 10, 3)
	tree := NewKDTree(3)
	require.NoError(t, tree.Build(vectors, ids))
	tree.Delete("v0")

	// A fresh Build wipes routing tombstones along with everything else.
	require.NoError(t, tree.Build(vectors[1:], ids[1:]))
	assert.Equal(t, 9, tree.Len())
	assert.False(t, tree.Delete("v0"))
}

func TestKDTree_FarSidePruningStillFindsTrueNeighbor(t *testing.T) {
	// A point close to the splitting hyperplane must still be found when
	// the descent initially goes down the other side.
	tree := NewKDTree(2)
	vectors := [][]float32{{5, 0}, {1, 0}, {9, 0}, {5.1, 0}}
	ids := []string{"split", "farleft", "farright", "justright"}
	require.NoError(t, tree.Build(vectors, ids))

	hits, err := tree.Search([]float32{4.9, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "split", hits[0].ID)
	assert.Equal(t, "justright", hits[1].ID)
}
