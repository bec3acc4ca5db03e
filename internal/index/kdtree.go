package index

import "sort"

// KDTree is an axis-aligned binary space partition over the vector space.
// It is built once from a batch with median splits on a cycling axis and
// queried with a heap-based descent that prunes the far side of each
// splitting hyperplane.
//
// Online inserts descend by axis comparison and attach at an empty slot;
// deletes tombstone the node in place. Neither rebalances, so a
// growth-triggered Rebuild restores both balance and compactness.
type KDTree struct {
	dims int
	root *kdNode
	// live entry count; tombstoned nodes are excluded
	size int
	byID map[string]*kdNode
}

type kdNode struct {
	vector  []float32
	id      string
	axis    int
	deleted bool
	left    *kdNode
	right   *kdNode
}

// NewKDTree creates an empty k-d tree for vectors of the given dimension.
func NewKDTree(dims int) *KDTree {
	return &KDTree{dims: dims, byID: make(map[string]*kdNode)}
}

// Build replaces the tree contents with the given batch.
func (t *KDTree) Build(vectors [][]float32, ids []string) error {
	if err := checkBatch(t.dims, vectors, ids); err != nil {
		return err
	}
	idx := make([]int, len(vectors))
	for i := range idx {
		idx[i] = i
	}
	t.byID = make(map[string]*kdNode, len(vectors))
	t.root = t.buildNode(vectors, ids, idx, 0)
	t.size = len(vectors)
	return nil
}

// buildNode builds a subtree from the entries selected by idx, splitting
// at the median along depth%dims.
func (t *KDTree) buildNode(vectors [][]float32, ids []string, idx []int, depth int) *kdNode {
	if len(idx) == 0 {
		return nil
	}
	axis := depth % t.dims
	sort.SliceStable(idx, func(a, b int) bool {
		return vectors[idx[a]][axis] < vectors[idx[b]][axis]
	})
	mid := len(idx) / 2
	i := idx[mid]
	vec := make([]float32, t.dims)
	copy(vec, vectors[i])
	n := &kdNode{vector: vec, id: ids[i], axis: axis}
	t.byID[ids[i]] = n
	n.left = t.buildNode(vectors, ids, idx[:mid], depth+1)
	n.right = t.buildNode(vectors, ids, idx[mid+1:], depth+1)
	return n
}

// Add inserts one entry by descending axis comparisons to an empty slot.
// No rebalancing is performed.
func (t *KDTree) Add(vector []float32, id string) error {
	if err := checkDim(t.dims, vector); err != nil {
		return err
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)

	depth := 0
	slot := &t.root
	for *slot != nil {
		n := *slot
		if vec[n.axis] < n.vector[n.axis] {
			slot = &n.left
		} else {
			slot = &n.right
		}
		depth++
	}
	n := &kdNode{vector: vec, id: id, axis: depth % t.dims}
	*slot = n
	t.byID[id] = n
	t.size++
	return nil
}

// Delete tombstones the entry with the given id. The node stays in the
// tree as a routing point but is skipped by Search and excluded from Len.
func (t *KDTree) Delete(id string) bool {
	n, ok := t.byID[id]
	if !ok {
		return false
	}
	n.deleted = true
	delete(t.byID, id)
	t.size--
	return true
}

// Search returns up to k nearest neighbors in ascending distance order.
func (t *KDTree) Search(query []float32, k int) ([]SearchHit, error) {
	if err := checkDim(t.dims, query); err != nil {
		return nil, err
	}
	best := newKBest(k)
	t.search(t.root, query, best)
	return best.Sorted(), nil
}

func (t *KDTree) search(n *kdNode, query []float32, best *kBest) {
	if n == nil {
		return
	}
	if !n.deleted {
		best.Offer(n.id, Distance(query, n.vector))
	}
	diff := query[n.axis] - n.vector[n.axis]
	near, far := n.left, n.right
	if diff >= 0 {
		near, far = n.right, n.left
	}
	t.search(near, query, best)
	// The far side can only hold a better candidate if the hyperplane is
	// closer than the current worst.
	if !best.Full() || abs32(diff) <= best.Worst() {
		t.search(far, query, best)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Len returns the number of live entries.
func (t *KDTree) Len() int { return t.size }

var _ VectorIndex = (*KDTree)(nil)
