// Package index provides the in-memory vector index family for CorpusDB:
// an exhaustive linear scan, a metric ball tree, a k-d tree, and an HNSW
// graph, all behind a common contract, plus the manager that keeps every
// enabled index consistent with the chunk store.
package index

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch indicates a vector whose length differs from
	// the index dimension. Match with errors.Is.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrUnknownIndex indicates a search against an index name that is
	// not configured.
	ErrUnknownIndex = errors.New("unknown index")
)

// DimensionError carries the expected and actual vector lengths.
// It matches ErrDimensionMismatch under errors.Is.
type DimensionError struct {
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// SearchHit is a single kNN result: a chunk id and its Euclidean distance
// to the query.
type SearchHit struct {
	ID       string
	Distance float32
}

// VectorIndex is the contract every index variant implements.
//
// Build discards prior state and bulk-loads the given entries. Add and
// Delete mutate online. Indices append on Add without checking for
// duplicate ids; the Manager guarantees replace-on-duplicate by issuing
// Delete before Add. Search returns up to k hits in ascending distance
// order with ties broken by id; an empty index yields an empty slice,
// not an error.
type VectorIndex interface {
	Build(vectors [][]float32, ids []string) error
	Add(vector []float32, id string) error
	Delete(id string) bool
	Search(query []float32, k int) ([]SearchHit, error)
	Len() int
}

// checkDim validates a vector against the index dimension.
func checkDim(dims int, v []float32) error {
	if len(v) != dims {
		return &DimensionError{Expected: dims, Got: len(v)}
	}
	return nil
}

// checkBatch validates a Build batch: paired lengths and per-vector dims.
func checkBatch(dims int, vectors [][]float32, ids []string) error {
	if len(vectors) != len(ids) {
		return fmt.Errorf("vectors/ids length mismatch: %d vs %d", len(vectors), len(ids))
	}
	for _, v := range vectors {
		if err := checkDim(dims, v); err != nil {
			return err
		}
	}
	return nil
}
