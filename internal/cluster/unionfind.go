// Package cluster groups source records into merge clusters via union-find
// over shared normalized keys.
package cluster

import "sort"

// UnionFind is a disjoint-set structure over a fixed arena of record
// indices: explicit parent and rank arrays, no object back-pointers. The
// flat representation keeps unions cheap and the final partition trivially
// serializable for audit output.
type UnionFind struct {
	parent []int
	rank   []int
}

// NewUnionFind creates a UnionFind over n elements, each its own set.
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// Find returns the set representative for x, with path halving.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing a and b.
func (uf *UnionFind) Union(a, b int) {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// Connected reports whether a and b are in the same set.
func (uf *UnionFind) Connected(a, b int) bool {
	return uf.Find(a) == uf.Find(b)
}

// Groups returns the partition as index slices, each sorted ascending,
// ordered by smallest member. The ordering is a function of the partition
// alone, not of union call order.
func (uf *UnionFind) Groups() [][]int {
	byRoot := make(map[int][]int)
	for i := range uf.parent {
		root := uf.Find(i)
		byRoot[root] = append(byRoot[root], i)
	}
	// One group per root. Union-by-rank picks roots by tree depth, not by
	// index, so a root need not be its group's smallest member.
	groups := make([][]int, 0, len(byRoot))
	for _, g := range byRoot {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(a, b int) bool {
		return groups[a][0] < groups[b][0]
	})
	return groups
}
