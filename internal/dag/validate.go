package dag

import (
	"github.com/vk/jigsaw/internal/scheduler"
)

// Validate checks that the graph is acyclic. AddEdge already refuses cycle
// closing edges, so this only fails if that invariant was broken; Run calls
// it before executing anything.
func (g *Graph) Validate() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, err := g.orderLocked()
	return err
}

// Order returns node ids in the order Run executes them.
func (g *Graph) Order() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	idx, err := g.orderLocked()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(idx))
	for i, n := range idx {
		ids[i] = g.ordered[n].id
	}
	return ids, nil
}

// dependentIndices returns, per node index, the indices of its dependents.
func (g *Graph) dependentIndices() [][]int {
	out := make([][]int, len(g.ordered))
	for i, n := range g.ordered {
		for _, d := range n.dependents {
			out[i] = append(out[i], g.nodes[d].index)
		}
	}
	return out
}

func (g *Graph) orderLocked() ([]int, error) {
	dependents := g.dependentIndices()
	order := scheduler.Order(dependents)
	if len(order) == len(g.ordered) {
		return order, nil
	}
	return nil, &CycleDetectedError{Path: g.findCycle(dependents)}
}

// findCycle performs a DFS over insertion indices and returns one cycle as
// node ids, first and last element equal.
func (g *Graph) findCycle(dependents [][]int) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(dependents))
	parent := make([]int, len(dependents))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range dependents[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back edge u -> v: walk parents from u back to v.
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range dependents {
		if color[i] == white && dfs(i) {
			break
		}
	}

	out := make([]string, 0, len(cycle))
	for i := len(cycle) - 1; i >= 0; i-- {
		out = append(out, g.ordered[cycle[i]].id)
	}
	return out
}
