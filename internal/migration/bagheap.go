package migration

import "container/heap"

// bagHeap is a max-heap of bags keyed by task count, with ties broken by
// the smallest member id. Merged bags are popped and reinserted; keys are
// never decreased in place.
type bagHeap []*bag

func newBagHeap(bags []*bag) *bagHeap {
	h := make(bagHeap, len(bags))
	copy(h, bags)
	heap.Init(&h)
	return &h
}

func (h bagHeap) Len() int { return len(h) }

func (h bagHeap) Less(i, j int) bool {
	if h[i].taskCount != h[j].taskCount {
		return h[i].taskCount > h[j].taskCount
	}
	return h[i].minMember() < h[j].minMember()
}

func (h bagHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *bagHeap) Push(x any) {
	*h = append(*h, x.(*bag))
}

func (h *bagHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
