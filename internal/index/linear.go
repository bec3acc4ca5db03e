package index

// LinearIndex stores vectors and ids in parallel slices and answers kNN
// queries by exhaustive scan. It is exact, and doubles as the ground-truth
// oracle for the tree indices in tests.
//
// Complexity: Build O(N), Search O(N·D + N·log k), Delete O(N) scan with
// O(1) swap-remove, memory O(N·D).
type LinearIndex struct {
	dims    int
	vectors [][]float32
	ids     []string
}

// NewLinearIndex creates an empty linear index for vectors of the given
// dimension.
func NewLinearIndex(dims int) *LinearIndex {
	return &LinearIndex{dims: dims}
}

// Build replaces the index contents with the given batch.
func (x *LinearIndex) Build(vectors [][]float32, ids []string) error {
	if err := checkBatch(x.dims, vectors, ids); err != nil {
		return err
	}
	x.vectors = make([][]float32, len(vectors))
	x.ids = make([]string, len(ids))
	for i, v := range vectors {
		vec := make([]float32, len(v))
		copy(vec, v)
		x.vectors[i] = vec
	}
	copy(x.ids, ids)
	return nil
}

// Add appends an entry. Duplicate ids are the caller's concern.
func (x *LinearIndex) Add(vector []float32, id string) error {
	if err := checkDim(x.dims, vector); err != nil {
		return err
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)
	x.vectors = append(x.vectors, vec)
	x.ids = append(x.ids, id)
	return nil
}

// Delete removes the entry with the given id by swapping it with the last
// entry and truncating. Returns whether a removal occurred.
func (x *LinearIndex) Delete(id string) bool {
	for i, existing := range x.ids {
		if existing == id {
			last := len(x.ids) - 1
			x.vectors[i] = x.vectors[last]
			x.ids[i] = x.ids[last]
			x.vectors[last] = nil
			x.vectors = x.vectors[:last]
			x.ids = x.ids[:last]
			return true
		}
	}
	return false
}

// Search returns up to k nearest neighbors in ascending distance order.
func (x *LinearIndex) Search(query []float32, k int) ([]SearchHit, error) {
	if err := checkDim(x.dims, query); err != nil {
		return nil, err
	}
	best := newKBest(k)
	for i, vec := range x.vectors {
		best.Offer(x.ids[i], Distance(query, vec))
	}
	return best.Sorted(), nil
}

// Len returns the number of indexed entries.
func (x *LinearIndex) Len() int { return len(x.ids) }

var _ VectorIndex = (*LinearIndex)(nil)
