package algorithms

// Unlabeled marks a node that no seed reaches.
const Unlabeled = -1

// MultiSourceBFS runs an unweighted breadth-first search from all seeds at
// once over nodes 0..n-1. Every reached node gets the seed it is nearest to
// and its hop distance; unreached nodes keep Unlabeled and -1.
//
// Seeds are enqueued in the given order and a node is claimed by the first
// frontier to reach it, so among equally near seeds the earlier one wins.
// Duplicate seeds are ignored.
func MultiSourceBFS(n int, seeds []int, neighbors func(u int) []int) (label, dist []int) {
	label = make([]int, n)
	dist = make([]int, n)
	for i := range label {
		label[i] = Unlabeled
		dist[i] = -1
	}

	queue := make([]int, 0, n)
	for _, s := range seeds {
		if label[s] != Unlabeled {
			continue
		}
		label[s] = s
		dist[s] = 0
		queue = append(queue, s)
	}

	for head := 0; head < len(queue); head++ {
		u := queue[head]
		for _, v := range neighbors(u) {
			if label[v] != Unlabeled {
				continue
			}
			label[v] = label[u]
			dist[v] = dist[u] + 1
			queue = append(queue, v)
		}
	}

	return label, dist
}

// BFSDistances returns hop distances from source over nodes 0..n-1,
// -1 for unreachable nodes.
func BFSDistances(n, source int, neighbors func(u int) []int) []int {
	_, dist := MultiSourceBFS(n, []int{source}, neighbors)
	return dist
}
