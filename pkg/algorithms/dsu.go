package algorithms

// DisjointSets is a union-find structure with path compression and
// union by size.
type DisjointSets struct {
	parent []int
	size   []int // size[i] is the size of the tree rooted at i
}

// NewDisjointSets creates n singleton sets
func NewDisjointSets(n int) *DisjointSets {
	ds := &DisjointSets{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := 0; i < n; i++ {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	return ds
}

// Find returns the representative of x's set, compressing the path on the way.
func (ds *DisjointSets) Find(x int) int {
	root := x
	for ds.parent[root] != root {
		root = ds.parent[root]
	}
	for ds.parent[x] != root {
		next := ds.parent[x]
		ds.parent[x] = root
		x = next
	}
	return root
}

// Joined reports whether x and y are in the same set
func (ds *DisjointSets) Joined(x, y int) bool {
	return ds.Find(x) == ds.Find(y)
}

// Union merges the sets of x and y, hanging the smaller tree under the larger.
// It returns false if they were already joined.
func (ds *DisjointSets) Union(x, y int) bool {
	x, y = ds.Find(x), ds.Find(y)
	if x == y {
		return false
	}
	if ds.size[x] > ds.size[y] {
		x, y = y, x
	}
	ds.parent[x] = y
	ds.size[y] += ds.size[x]
	return true
}

// SetSize returns the number of elements in x's set
func (ds *DisjointSets) SetSize(x int) int {
	return ds.size[ds.Find(x)]
}
