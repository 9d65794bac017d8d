// Package pattern detects the structural shape of a state graph.
package pattern

import (
	"sort"

	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
)

type Kind string

const (
	Linear       Kind = "Linear"
	Tree         Kind = "Tree"
	Cycle        Kind = "Cycle"
	Disconnected Kind = "Disconnected"
	Unknown      Kind = "Unknown"
)

// Report describes the shape of a graph.
type Report struct {
	Kind            Kind
	NodeCount       int
	EdgeCount       int
	MaxOutDegree    int
	MaxInDegree     int
	CycleMembers    []string
	Components      int
	BranchingFactor float64
	MaxDepth        int
}

// Analyze inspects g without modifying it. Checks run in a fixed order:
// too small, cycle, merge point, disconnected, linear, tree.
func Analyze(g *stategraph.Graph) Report {
	n := g.Len()
	r := Report{NodeCount: n, EdgeCount: len(g.Edges)}
	for i := 0; i < n; i++ {
		r.MaxOutDegree = max(r.MaxOutDegree, g.OutDegree(i))
		r.MaxInDegree = max(r.MaxInDegree, g.InDegree(i))
	}
	if n > 0 {
		r.BranchingFactor = float64(len(g.Edges)) / float64(n)
	}
	r.Components = components(g)

	members := cycleMembers(g)
	if len(members) == 0 {
		r.MaxDepth = longestPath(g)
	}

	switch {
	case n < 2:
		r.Kind = Unknown
	case len(members) > 0:
		r.Kind = Cycle
		r.CycleMembers = members
	case r.MaxInDegree > 1:
		r.Kind = Unknown
	case r.Components > 1:
		r.Kind = Disconnected
	case r.MaxOutDegree <= 1:
		r.Kind = Linear
	default:
		r.Kind = Tree
	}
	return r
}

const (
	white = iota
	gray
	black
)

// hasCycle runs an iterative depth-first search and reports whether a back edge exists.
func hasCycle(g *stategraph.Graph) bool {
	n := g.Len()
	color := make([]int, n)

	type frame struct {
		node int
		next int
	}
	for root := 0; root < n; root++ {
		if color[root] != white {
			continue
		}
		color[root] = gray
		frames := []frame{{node: root}}

		for len(frames) > 0 {
			top := &frames[len(frames)-1]
			out := g.Outgoing(top.node)
			if top.next == len(out) {
				color[top.node] = black
				frames = frames[:len(frames)-1]
				continue
			}
			to := out[top.next].To
			top.next++

			switch color[to] {
			case white:
				color[to] = gray
				frames = append(frames, frame{node: to})
			case gray:
				return true
			}
		}
	}
	return false
}

// cycleMembers returns the sorted keys of nodes lying on a directed cycle,
// that is nodes of strongly connected components with more than one node or a self-loop.
func cycleMembers(g *stategraph.Graph) []string {
	if !hasCycle(g) {
		return nil
	}

	n := g.Len()
	order := finishOrder(g)

	comp := make([]int, n)
	for i := range comp {
		comp[i] = -1
	}
	size := make(map[int]int)
	for i := len(order) - 1; i >= 0; i-- {
		root := order[i]
		if comp[root] != -1 {
			continue
		}
		stack := []int{root}
		comp[root] = root
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size[root]++
			for _, e := range g.Incoming(v) {
				if comp[e.From] == -1 {
					comp[e.From] = root
					stack = append(stack, e.From)
				}
			}
		}
	}

	var members []string
	for i := 0; i < n; i++ {
		if size[comp[i]] > 1 || selfLoop(g, i) {
			members = append(members, g.Nodes[i].Key.String())
		}
	}
	sort.Strings(members)
	return members
}

// finishOrder lists nodes by depth-first finishing time.
func finishOrder(g *stategraph.Graph) []int {
	n := g.Len()
	visited := make([]bool, n)
	order := make([]int, 0, n)

	type frame struct {
		node int
		next int
	}
	for root := 0; root < n; root++ {
		if visited[root] {
			continue
		}
		visited[root] = true
		frames := []frame{{node: root}}
		for len(frames) > 0 {
			top := &frames[len(frames)-1]
			out := g.Outgoing(top.node)
			if top.next == len(out) {
				order = append(order, top.node)
				frames = frames[:len(frames)-1]
				continue
			}
			to := out[top.next].To
			top.next++
			if !visited[to] {
				visited[to] = true
				frames = append(frames, frame{node: to})
			}
		}
	}
	return order
}

func selfLoop(g *stategraph.Graph, i int) bool {
	for _, e := range g.Outgoing(i) {
		if e.To == i {
			return true
		}
	}
	return false
}

// components counts weakly connected components.
func components(g *stategraph.Graph) int {
	n := g.Len()
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	count := n
	for _, e := range g.Edges {
		a, b := find(e.From), find(e.To)
		if a != b {
			parent[a] = b
			count--
		}
	}
	return count
}

// longestPath returns the number of edges on the longest path of an acyclic graph.
func longestPath(g *stategraph.Graph) int {
	n := g.Len()
	indeg := make([]int, n)
	for i := 0; i < n; i++ {
		indeg[i] = g.InDegree(i)
	}
	queue := make([]int, 0, n)
	for i, d := range indeg {
		if d == 0 {
			queue = append(queue, i)
		}
	}

	depth := make([]int, n)
	best := 0
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, e := range g.Outgoing(v) {
			if depth[v]+1 > depth[e.To] {
				depth[e.To] = depth[v] + 1
				best = max(best, depth[e.To])
			}
			indeg[e.To]--
			if indeg[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}
	return best
}
