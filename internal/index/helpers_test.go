package index

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomVectors generates count deterministic random vectors with ids
// "v0".."vN". A fixed seed keeps failures reproducible.
func randomVectors(seed int64, count, dims int) ([][]float32, []string) {
	rng := rand.New(rand.NewSource(seed))
	vectors := make([][]float32, count)
	ids := make([]string, count)
	for i := range vectors {
		v := make([]float32, dims)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		vectors[i] = v
		ids[i] = fmt.Sprintf("v%d", i)
	}
	return vectors, ids
}

// exactVariants returns one fresh instance of every exact index type.
// HNSW is approximate and tested separately.
func exactVariants(dims int) map[string]VectorIndex {
	return map[string]VectorIndex{
		TypeLinear:   NewLinearIndex(dims),
		TypeBallTree: NewBallTree(dims, DefaultLeafSize),
		TypeKDTree:   NewKDTree(dims),
	}
}

// requireSameHits asserts two result sets agree on ids and distances.
// Exact indices must return identical slices given the deterministic tie
// order (distance, then id).
func requireSameHits(t *testing.T, want, got []SearchHit) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].ID, got[i].ID, "hit %d id", i)
		require.InDelta(t, want[i].Distance, got[i].Distance, 1e-5, "hit %d distance", i)
	}
}
