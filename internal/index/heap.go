package index

import (
	"container/heap"
	"math"
	"sort"
)

// kBest keeps the k nearest candidates seen so far in a bounded max-heap,
// so the root is always the current worst candidate and pruning tests are
// O(1). Used by every exact index variant.
type kBest struct {
	k    int
	hits hitHeap
}

func newKBest(k int) *kBest {
	return &kBest{k: k, hits: make(hitHeap, 0, k)}
}

// Offer considers a candidate. When the heap is full, a candidate only
// displaces the current worst if it is strictly closer; equal distances
// keep the incumbent, which makes tie order deterministic for a given
// insertion sequence.
func (b *kBest) Offer(id string, distance float32) {
	if b.k <= 0 {
		return
	}
	if len(b.hits) < b.k {
		heap.Push(&b.hits, SearchHit{ID: id, Distance: distance})
		return
	}
	if distance < b.hits[0].Distance {
		b.hits[0] = SearchHit{ID: id, Distance: distance}
		heap.Fix(&b.hits, 0)
	}
}

// Full reports whether k candidates have been collected.
func (b *kBest) Full() bool { return len(b.hits) >= b.k }

// Worst returns the distance of the current worst candidate, or +Inf
// while the heap is not full.
func (b *kBest) Worst() float32 {
	if !b.Full() {
		return float32(math.Inf(1))
	}
	return b.hits[0].Distance
}

// Sorted drains the heap into a slice ordered by ascending distance,
// ties broken by id.
func (b *kBest) Sorted() []SearchHit {
	out := make([]SearchHit, len(b.hits))
	copy(out, b.hits)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// hitHeap is a max-heap of SearchHit keyed by distance.
type hitHeap []SearchHit

func (h hitHeap) Len() int            { return len(h) }
func (h hitHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h hitHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *hitHeap) Push(x any) { *h = append(*h, x.(SearchHit)) }
func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
