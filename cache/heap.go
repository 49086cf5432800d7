package cache

import "container/heap"

// expiryEvent is one (expiration, key) pair in a shard's eviction heap.
// Multiple events for the same key may coexist; only the one whose
// timestamp equals the key's current Entry.Expiration is authoritative —
// the rest are stale and are discarded lazily when popped.
type expiryEvent struct {
	at  int64
	key string
}

// expiryHeap is a min-heap of expiryEvent ordered by earliest expiration.
// Ties are broken by key so that iteration order is deterministic given the
// same sequence of pushes, rather than arbitrary.
type expiryHeap []expiryEvent

func (h expiryHeap) Len() int { return len(h) }

func (h expiryHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].key < h[j].key
}

func (h expiryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *expiryHeap) Push(x any) {
	*h = append(*h, x.(expiryEvent))
}

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

var _ heap.Interface = (*expiryHeap)(nil)
