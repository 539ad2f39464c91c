package attack

// item is a queued node with the distance and victim it was reached with.
type item struct {
	dist   int
	target int
	node   int
}

func (a item) less(b item) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	if a.target != b.target {
		return a.target < b.target
	}
	return a.node < b.node
}

// itemHeap implements a min-heap of items ordered by (dist, target, node).
type itemHeap []item

func (h itemHeap) Len() int           { return len(h) }
func (h itemHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h itemHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) {
	*h = append(*h, x.(item))
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
