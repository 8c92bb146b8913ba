package spatial

import "container/heap"

// Neighbor is a single k-nearest result.
type Neighbor[K comparable] struct {
	Key      K
	Distance float64
}

// maxHeap keeps the k best neighbours found so far with the farthest one at
// the top, so it can be replaced when a closer point turns up.
type maxHeap[K comparable] []Neighbor[K]

// Len returns the size of the heap.
func (h maxHeap[K]) Len() int { return len(h) }

// Less puts the larger distance on top.
func (h maxHeap[K]) Less(i, j int) bool { return h[i].Distance > h[j].Distance }

// Swap swaps the elements at indices i and j.
func (h maxHeap[K]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push adds an element to the heap.
func (h *maxHeap[K]) Push(x any) { *h = append(*h, x.(Neighbor[K])) }

// Pop removes and returns the farthest element.
func (h *maxHeap[K]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// offer inserts n if the heap is not full or n beats the current worst.
func (h *maxHeap[K]) offer(n Neighbor[K], k int) {
	if h.Len() < k {
		heap.Push(h, n)
		return
	}
	if n.Distance < (*h)[0].Distance {
		(*h)[0] = n
		heap.Fix(h, 0)
	}
}

// worst returns the distance at the top of the heap.
func (h maxHeap[K]) worst() float64 {
	return h[0].Distance
}

// newMaxHeap creates an empty max-heap with the given capacity.
func newMaxHeap[K comparable](capacity int) *maxHeap[K] {
	h := make(maxHeap[K], 0, capacity)
	heap.Init(&h)
	return &h
}
