package index

// BallTree is a binary metric tree partitioning points into nested balls.
// Every node covers a ball (centroid, radius) containing all points in its
// subtree. Leaves hold up to leafSize points; internal nodes hold two
// children and no points.
//
// Online inserts refresh ancestor balls with the midpoint-of-children
// over-approximation, which keeps the ball invariant but loosens bounds
// over many inserts; the Manager schedules growth-triggered rebuilds to
// restore tight pruning.
type BallTree struct {
	dims     int
	leafSize int
	root     *ballNode
	size     int
	// byID retains each entry's vector so Delete can run a guided descent
	// and Len/containment checks stay O(1).
	byID map[string][]float32
}

type ballNode struct {
	centroid []float32
	radius   float32
	count    int

	// leaf payload; nil for internal nodes
	points [][]float32
	ids    []string

	left  *ballNode
	right *ballNode
}

func (n *ballNode) isLeaf() bool { return n.left == nil && n.right == nil }

// DefaultLeafSize is the leaf bucket capacity used when none is configured.
const DefaultLeafSize = 32

// NewBallTree creates an empty ball tree for vectors of the given dimension.
// leafSize values below 1 fall back to DefaultLeafSize.
func NewBallTree(dims, leafSize int) *BallTree {
	if leafSize < 1 {
		leafSize = DefaultLeafSize
	}
	return &BallTree{
		dims:     dims,
		leafSize: leafSize,
		byID:     make(map[string][]float32),
	}
}

// Build replaces the tree contents with the given batch.
func (t *BallTree) Build(vectors [][]float32, ids []string) error {
	if err := checkBatch(t.dims, vectors, ids); err != nil {
		return err
	}
	points := make([][]float32, len(vectors))
	byID := make(map[string][]float32, len(vectors))
	for i, v := range vectors {
		vec := make([]float32, len(v))
		copy(vec, v)
		points[i] = vec
		byID[ids[i]] = vec
	}
	idsCopy := make([]string, len(ids))
	copy(idsCopy, ids)

	t.root = t.buildNode(points, idsCopy)
	t.size = len(points)
	t.byID = byID
	return nil
}

// buildNode recursively partitions points into a subtree. The caller
// relinquishes ownership of both slices.
func (t *BallTree) buildNode(points [][]float32, ids []string) *ballNode {
	if len(points) == 0 {
		return nil
	}
	n := &ballNode{
		centroid: mean(points),
		count:    len(points),
	}
	for _, p := range points {
		if d := Distance(p, n.centroid); d > n.radius {
			n.radius = d
		}
	}
	if len(points) <= t.leafSize {
		n.points = points
		n.ids = ids
		return n
	}

	p1, p2 := farthestPair(points)
	var leftPts, rightPts [][]float32
	var leftIDs, rightIDs []string
	for i, p := range points {
		// ties go left
		if Distance(p, p1) <= Distance(p, p2) {
			leftPts = append(leftPts, p)
			leftIDs = append(leftIDs, ids[i])
		} else {
			rightPts = append(rightPts, p)
			rightIDs = append(rightIDs, ids[i])
		}
	}
	// Degenerate duplicates can land everything on one side; fall back to
	// a median split so recursion always terminates. The halves are copied
	// into fresh slices: sibling leaves must never share a backing array,
	// or a later append into one leaf would overwrite the other.
	if len(leftPts) == 0 || len(rightPts) == 0 {
		mid := len(points) / 2
		leftPts = append([][]float32(nil), points[:mid]...)
		leftIDs = append([]string(nil), ids[:mid]...)
		rightPts = append([][]float32(nil), points[mid:]...)
		rightIDs = append([]string(nil), ids[mid:]...)
	}

	n.left = t.buildNode(leftPts, leftIDs)
	n.right = t.buildNode(rightPts, rightIDs)
	return n
}

// farthestPair approximates the two mutually farthest points with the
// two-pass heuristic: from an arbitrary anchor, p1 is the farthest point,
// and p2 is the farthest point from p1. O(n) instead of the exact O(n²).
func farthestPair(points [][]float32) (p1, p2 []float32) {
	anchor := points[0]
	p1 = anchor
	var maxD float32 = -1
	for _, p := range points {
		if d := Distance(anchor, p); d > maxD {
			maxD = d
			p1 = p
		}
	}
	p2 = p1
	maxD = -1
	for _, p := range points {
		if d := Distance(p1, p); d > maxD {
			maxD = d
			p2 = p
		}
	}
	return p1, p2
}

// Add inserts one entry online: descend to the closest leaf, append, split
// the leaf if it overflows, and refresh ancestor balls on the way back up.
func (t *BallTree) Add(vector []float32, id string) error {
	if err := checkDim(t.dims, vector); err != nil {
		return err
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)

	if t.root == nil || t.root.count == 0 {
		t.root = t.buildNode([][]float32{vec}, []string{id})
	} else {
		t.insert(t.root, vec, id)
	}
	t.byID[id] = vec
	t.size++
	return nil
}

func (t *BallTree) insert(n *ballNode, p []float32, id string) {
	if n.isLeaf() {
		n.points = append(n.points, p)
		n.ids = append(n.ids, id)
		if len(n.points) > t.leafSize {
			// Overflow: rebuild this node from its bucket, turning it
			// into an internal node with two leaf children.
			*n = *t.buildNode(n.points, n.ids)
		} else {
			refreshLeaf(n)
		}
		return
	}
	if Distance(p, n.left.centroid) <= Distance(p, n.right.centroid) {
		t.insert(n.left, p, id)
	} else {
		t.insert(n.right, p, id)
	}
	refreshInternal(n)
}

// refreshLeaf recomputes a leaf's ball exactly from its points.
func refreshLeaf(n *ballNode) {
	n.count = len(n.points)
	if n.count == 0 {
		// Keep the stale centroid as a placeholder; the zero radius makes
		// the empty leaf prune immediately.
		n.radius = 0
		return
	}
	n.centroid = mean(n.points)
	n.radius = 0
	for _, p := range n.points {
		if d := Distance(p, n.centroid); d > n.radius {
			n.radius = d
		}
	}
}

// refreshInternal rebounds an internal node from its children without
// touching descendants: centroid is the midpoint of the child centroids
// and the radius covers both child balls. This over-approximates the true
// ball, preserving the containment invariant at the cost of looser bounds.
func refreshInternal(n *ballNode) {
	l, r := n.left, n.right
	n.count = l.count + r.count
	switch {
	case n.count == 0:
		// Both subtrees drained: collapse to an empty leaf.
		n.left, n.right = nil, nil
		n.points, n.ids = nil, nil
		n.radius = 0
		return
	case l.count == 0:
		n.centroid = r.centroid
		n.radius = r.radius
		return
	case r.count == 0:
		n.centroid = l.centroid
		n.radius = l.radius
		return
	}
	n.centroid = midpoint(l.centroid, r.centroid)
	dl := Distance(n.centroid, l.centroid) + l.radius
	dr := Distance(n.centroid, r.centroid) + r.radius
	if dl > dr {
		n.radius = dl
	} else {
		n.radius = dr
	}
}

// Delete removes the entry with the given id. It first walks the tree
// guided by ball containment; centroid drift from online inserts can make
// the guided walk miss, in which case it falls back to a full traversal.
func (t *BallTree) Delete(id string) bool {
	vec, ok := t.byID[id]
	if !ok {
		return false
	}
	if !t.remove(t.root, vec, id, true) {
		// Guided descent missed; the point is still somewhere in the tree.
		t.remove(t.root, vec, id, false)
	}
	delete(t.byID, id)
	t.size--
	return true
}

// remove searches for (vec, id) and removes it from its leaf, refreshing
// balls on the unwind. With guided set, subtrees whose ball cannot contain
// vec are pruned.
func (t *BallTree) remove(n *ballNode, vec []float32, id string, guided bool) bool {
	if n == nil || n.count == 0 {
		return false
	}
	if guided && Distance(vec, n.centroid) > n.radius {
		return false
	}
	if n.isLeaf() {
		for i, existing := range n.ids {
			if existing == id {
				last := len(n.ids) - 1
				n.points[i] = n.points[last]
				n.ids[i] = n.ids[last]
				n.points[last] = nil
				n.points = n.points[:last]
				n.ids = n.ids[:last]
				refreshLeaf(n)
				return true
			}
		}
		return false
	}
	removed := t.remove(n.left, vec, id, guided)
	if !removed {
		removed = t.remove(n.right, vec, id, guided)
	}
	if removed {
		refreshInternal(n)
	}
	return removed
}

// Search returns up to k nearest neighbors in ascending distance order.
func (t *BallTree) Search(query []float32, k int) ([]SearchHit, error) {
	if err := checkDim(t.dims, query); err != nil {
		return nil, err
	}
	best := newKBest(k)
	t.search(t.root, query, best)
	return best.Sorted(), nil
}

func (t *BallTree) search(n *ballNode, query []float32, best *kBest) {
	if n == nil || n.count == 0 {
		return
	}
	dc := Distance(query, n.centroid)
	if best.Full() && dc-n.radius > best.Worst() {
		return
	}
	if n.isLeaf() {
		for i, p := range n.points {
			best.Offer(n.ids[i], Distance(query, p))
		}
		return
	}
	// Best-first: the child with the closer centroid is likelier to tighten
	// the heap early and let the sibling prune.
	near, far := n.left, n.right
	if Distance(query, far.centroid) < Distance(query, near.centroid) {
		near, far = far, near
	}
	t.search(near, query, best)
	t.search(far, query, best)
}

// Len returns the number of indexed entries.
func (t *BallTree) Len() int { return t.size }

var _ VectorIndex = (*BallTree)(nil)
