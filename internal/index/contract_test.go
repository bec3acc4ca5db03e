package index

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The exact variants share one behavioral contract; these tests run every
// variant through it, with the linear scan doubling as the ground truth
// for the tree indices.

func TestExactIndices_SearchReturnsAscendingDistances(t *testing.T) {
	const dims = 8
	vectors, ids := randomVectors(1, 200, dims)
	query := vectors[0]

	for name, idx := range exactVariants(dims) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Build(vectors, ids))

			hits, err := idx.Search(query, 10)
			require.NoError(t, err)
			require.Len(t, hits, 10)

			for i := 1; i < len(hits); i++ {
				assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
			}
			// The query is itself an indexed vector.
			assert.Equal(t, "v0", hits[0].ID)
			assert.InDelta(t, 0, hits[0].Distance, 1e-6)
		})
	}
}

func TestExactIndices_KLargerThanSizeReturnsAll(t *testing.T) {
	const dims = 4
	vectors, ids := randomVectors(2, 5, dims)

	for name, idx := range exactVariants(dims) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Build(vectors, ids))

			hits, err := idx.Search(vectors[2], 50)
			require.NoError(t, err)
			assert.Len(t, hits, 5)
		})
	}
}

func TestExactIndices_EmptyIndexYieldsEmptySlice(t *testing.T) {
	const dims = 4
	query := make([]float32, dims)

	for name, idx := range exactVariants(dims) {
		t.Run(name, func(t *testing.T) {
			hits, err := idx.Search(query, 3)
			require.NoError(t, err)
			assert.Empty(t, hits)
			assert.Zero(t, idx.Len())
		})
	}
}

func TestExactIndices_DimensionMismatchRejected(t *testing.T) {
	const dims = 4

	for name, idx := range exactVariants(dims) {
		t.Run(name, func(t *testing.T) {
			short := make([]float32, dims-1)

			err := idx.Add(short, "bad")
			assert.ErrorIs(t, err, ErrDimensionMismatch)

			_, err = idx.Search(short, 3)
			assert.ErrorIs(t, err, ErrDimensionMismatch)

			err = idx.Build([][]float32{short}, []string{"bad"})
			assert.ErrorIs(t, err, ErrDimensionMismatch)

			var dimErr *DimensionError
			require.True(t, errors.As(err, &dimErr))
			assert.Equal(t, dims, dimErr.Expected)
			assert.Equal(t, dims-1, dimErr.Got)
		})
	}
}

func TestExactIndices_DeleteRemovesFromResults(t *testing.T) {
	const dims = 8
	vectors, ids := randomVectors(3, 60, dims)
	query := vectors[10]

	for name, idx := range exactVariants(dims) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Build(vectors, ids))

			assert.True(t, idx.Delete("v10"))
			assert.False(t, idx.Delete("v10"), "second delete of same id should miss")
			assert.False(t, idx.Delete("no-such-id"))

			hits, err := idx.Search(query, 60)
			require.NoError(t, err)
			assert.Len(t, hits, 59)
			for _, h := range hits {
				assert.NotEqual(t, "v10", h.ID)
			}
		})
	}
}

func TestExactIndices_OnlineAddVisibleInSearch(t *testing.T) {
	const dims = 8
	vectors, ids := randomVectors(4, 40, dims)

	for name, idx := range exactVariants(dims) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Build(vectors, ids))

			extra := make([]float32, dims)
			copy(extra, vectors[7])
			extra[0] += 0.001
			require.NoError(t, idx.Add(extra, "extra"))
			assert.Equal(t, 41, idx.Len())

			hits, err := idx.Search(extra, 1)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, "extra", hits[0].ID)
		})
	}
}

func TestExactIndices_BuildReplacesPriorState(t *testing.T) {
	const dims = 4
	first, firstIDs := randomVectors(5, 30, dims)
	second, secondIDs := randomVectors(6, 10, dims)

	for name, idx := range exactVariants(dims) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Build(first, firstIDs))
			require.NoError(t, idx.Build(second, secondIDs))
			assert.Equal(t, 10, idx.Len())

			hits, err := idx.Search(second[0], 30)
			require.NoError(t, err)
			assert.Len(t, hits, 10)
		})
	}
}

// TestExactIndices_IncrementalMatchesBatchBuild checks that growing an
// index one Add at a time from empty answers every query exactly like a
// single batch Build of the same data. The small ball tree leaf forces
// repeated online splits along the way.
func TestExactIndices_IncrementalMatchesBatchBuild(t *testing.T) {
	const dims = 8
	vectors, ids := randomVectors(9, 120, dims)
	queries, _ := randomVectors(10, 20, dims)

	variants := map[string]func() VectorIndex{
		TypeLinear:   func() VectorIndex { return NewLinearIndex(dims) },
		TypeBallTree: func() VectorIndex { return NewBallTree(dims, 8) },
		TypeKDTree:   func() VectorIndex { return NewKDTree(dims) },
	}
	for name, newIndex := range variants {
		t.Run(name, func(t *testing.T) {
			batch := newIndex()
			require.NoError(t, batch.Build(vectors, ids))

			incremental := newIndex()
			for i := range vectors {
				require.NoError(t, incremental.Add(vectors[i], ids[i]))
			}
			require.Equal(t, batch.Len(), incremental.Len())

			for _, query := range queries {
				want, err := batch.Search(query, 10)
				require.NoError(t, err)
				got, err := incremental.Search(query, 10)
				require.NoError(t, err)
				requireSameHits(t, want, got)
			}
		})
	}
}

// TestTreeIndices_MatchLinearOracle cross-checks the tree indices against
// the exhaustive scan over randomized build / add / delete workloads.
func TestTreeIndices_MatchLinearOracle(t *testing.T) {
	const (
		dims    = 12
		initial = 300
		queries = 25
	)
	vectors, ids := randomVectors(7, initial, dims)

	oracle := NewLinearIndex(dims)
	require.NoError(t, oracle.Build(vectors, ids))

	trees := map[string]VectorIndex{
		TypeBallTree: NewBallTree(dims, DefaultLeafSize),
		TypeKDTree:   NewKDTree(dims),
	}
	for name, idx := range trees {
		require.NoError(t, idx.Build(vectors, ids), name)
	}

	rng := rand.New(rand.NewSource(8))
	mutate := func(i int) {
		// Interleave online inserts and deletes between query rounds.
		v := make([]float32, dims)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		id := fmt.Sprintf("new%d", i)
		require.NoError(t, oracle.Add(v, id))
		for name, idx := range trees {
			require.NoError(t, idx.Add(v, id), name)
		}

		victim := fmt.Sprintf("v%d", rng.Intn(initial))
		removed := oracle.Delete(victim)
		for name, idx := range trees {
			assert.Equal(t, removed, idx.Delete(victim), "%s delete %s", name, victim)
		}
	}

	for i := 0; i < queries; i++ {
		mutate(i)

		query := make([]float32, dims)
		for j := range query {
			query[j] = rng.Float32()*2 - 1
		}
		k := 1 + rng.Intn(15)

		want, err := oracle.Search(query, k)
		require.NoError(t, err)
		for name, idx := range trees {
			got, err := idx.Search(query, k)
			require.NoError(t, err, name)
			requireSameHits(t, want, got)
		}
	}
}
