package index

import (
	"github.com/coder/hnsw"
)

// HNSW adapts the coder/hnsw graph to the VectorIndex contract with
// Euclidean distance. String ids are interned to uint64 graph keys.
//
// Deletes are lazy: only the id mappings are dropped and the graph node is
// orphaned, which sidesteps graph-repair issues when removing the last
// node. Orphans are swept away by the next Build. Searches over-fetch by
// the orphan count so k live results can still be returned.
//
// HNSW is approximate; it is wired as an additional index variant and is
// exempt from the exact-oracle properties the tree indices satisfy.
type HNSW struct {
	dims  int
	graph *hnsw.Graph[uint64]

	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

// HNSW graph parameters, balanced for a few hundred thousand vectors.
const (
	hnswM        = 16
	hnswEfSearch = 64
)

// NewHNSW creates an empty HNSW index for vectors of the given dimension.
func NewHNSW(dims int) *HNSW {
	return &HNSW{
		dims:   dims,
		graph:  newGraph(),
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}
}

func newGraph() *hnsw.Graph[uint64] {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.EuclideanDistance
	g.M = hnswM
	g.EfSearch = hnswEfSearch
	return g
}

// Build replaces the index contents with the given batch, discarding any
// orphaned nodes from previous lazy deletes.
func (x *HNSW) Build(vectors [][]float32, ids []string) error {
	if err := checkBatch(x.dims, vectors, ids); err != nil {
		return err
	}
	x.graph = newGraph()
	x.idMap = make(map[string]uint64, len(ids))
	x.keyMap = make(map[uint64]string, len(ids))
	x.nextKey = 0
	for i, v := range vectors {
		if err := x.Add(v, ids[i]); err != nil {
			return err
		}
	}
	return nil
}

// Add inserts one entry into the graph.
func (x *HNSW) Add(vector []float32, id string) error {
	if err := checkDim(x.dims, vector); err != nil {
		return err
	}
	if oldKey, exists := x.idMap[id]; exists {
		// Lazy-orphan the previous node rather than repairing the graph.
		delete(x.keyMap, oldKey)
	}
	key := x.nextKey
	x.nextKey++

	vec := make([]float32, len(vector))
	copy(vec, vector)
	x.graph.Add(hnsw.MakeNode(key, vec))
	x.idMap[id] = key
	x.keyMap[key] = id
	return nil
}

// Delete lazily removes the entry with the given id.
func (x *HNSW) Delete(id string) bool {
	key, ok := x.idMap[id]
	if !ok {
		return false
	}
	delete(x.idMap, id)
	delete(x.keyMap, key)
	return true
}

// Search returns up to k approximate nearest neighbors in ascending
// distance order.
func (x *HNSW) Search(query []float32, k int) ([]SearchHit, error) {
	if err := checkDim(x.dims, query); err != nil {
		return nil, err
	}
	if len(x.idMap) == 0 || k <= 0 {
		return []SearchHit{}, nil
	}
	// Over-fetch past orphaned nodes so lazy deletes do not starve results.
	fetch := k + (x.graph.Len() - len(x.idMap))
	nodes := x.graph.Search(query, fetch)

	best := newKBest(k)
	for _, node := range nodes {
		id, live := x.keyMap[node.Key]
		if !live {
			continue
		}
		best.Offer(id, Distance(query, node.Value))
	}
	return best.Sorted(), nil
}

// Len returns the number of live entries.
func (x *HNSW) Len() int { return len(x.idMap) }

var _ VectorIndex = (*HNSW)(nil)
