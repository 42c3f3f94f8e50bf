package contractor

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"
)

type dfsFrame struct {
	node int32
	next int32
}

// KosarajuSCC labels every node with its strongly connected component and
// returns the labels plus the component count. Both passes use an explicit
// stack, road graphs are too deep for recursion.
func KosarajuSCC(g *datastructure.Graph) ([]int32, int) {
	n := int32(g.NumNodes())
	order := make([]int32, 0, n)
	visited := make([]bool, n)

	stack := make([]dfsFrame, 0)
	for s := int32(0); s < n; s++ {
		if visited[s] {
			continue
		}
		visited[s] = true
		stack = append(stack, dfsFrame{node: s, next: g.FirstOut[s]})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < g.FirstOut[top.node+1] {
				to := g.Edges[top.next].To
				top.next++
				if !visited[to] {
					visited[to] = true
					stack = append(stack, dfsFrame{node: to, next: g.FirstOut[to]})
				}
				continue
			}
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	order = util.ReverseG[int32](order)

	comp := make([]int32, n)
	for i := range comp {
		comp[i] = -1
	}
	count := int32(0)
	for _, s := range order {
		if comp[s] >= 0 {
			continue
		}
		comp[s] = count
		stack = append(stack[:0], dfsFrame{node: s, next: g.FirstIn[s]})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < g.FirstIn[top.node+1] {
				from := g.Edges[g.InEdges[top.next]].From
				top.next++
				if comp[from] < 0 {
					comp[from] = count
					stack = append(stack, dfsFrame{node: from, next: g.FirstIn[from]})
				}
				continue
			}
			stack = stack[:len(stack)-1]
		}
		count++
	}
	return comp, int(count)
}
