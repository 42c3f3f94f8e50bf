package contractor

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"go.uber.org/zap"
)

// UnionFind implements a disjoint-set with path halving and union by rank.
type UnionFind struct {
	parent []int32
	rank   []byte
}

func NewUnionFind(n int) *UnionFind {
	parent := make([]int32, n)
	for i := range parent {
		parent[i] = int32(i)
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
	}
}

func (uf *UnionFind) Find(x int32) int32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *UnionFind) Union(x, y int32) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// WeakComponents labels nodes that are connected when edge direction is
// ignored. Nodes with different labels can never reach each other.
func WeakComponents(g *datastructure.Graph) ([]int32, int) {
	n := g.NumNodes()
	uf := NewUnionFind(n)
	for _, e := range g.Edges {
		uf.Union(e.From, e.To)
	}

	label := make(map[int32]int32)
	comp := make([]int32, n)
	for u := int32(0); u < int32(n); u++ {
		root := uf.Find(u)
		id, ok := label[root]
		if !ok {
			id = int32(len(label))
			label[root] = id
		}
		comp[u] = id
	}
	return comp, len(label)
}

// ComputeComponents stores weak and strong component labels in g.
func ComputeComponents(g *datastructure.Graph, logger *zap.Logger) {
	weak, weakCount := WeakComponents(g)
	strong, strongCount := KosarajuSCC(g)
	g.SetComponents(weak, strong)
	logger.Info("connected components",
		zap.Int("weak", weakCount),
		zap.Int("strong", strongCount))
}
