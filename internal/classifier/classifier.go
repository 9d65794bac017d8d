// Package classifier assigns lifecycle classes to the states of a graph.
package classifier

import (
	"math/big"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
)

// Summary counts nodes per class.
type Summary map[stategraph.Classification]int

// Classify sets the class of every node of g. Structural classes come from the node's edges;
// rules then override them in order, the first match winning. now supplies current_time and defaults to time.Now.
func Classify(g *stategraph.Graph, rules []Rule, now func() time.Time) Summary {
	if now == nil {
		now = time.Now
	}
	nowMs := big.NewInt(now().UnixMilli())

	summary := make(Summary, len(stategraph.Classifications))
	for i, n := range g.Nodes {
		n.Class = structural(g, i)
		ctx := evalContext{graph: g, index: i, node: n, nowMs: nowMs}
		for _, r := range rules {
			if r.cond != nil && r.cond.eval(ctx) {
				n.Class = r.State
				break
			}
		}
		summary[n.Class]++
	}
	return summary
}

func structural(g *stategraph.Graph, i int) stategraph.Classification {
	in := hasIncoming(g, i)
	out := g.OutDegree(i) > 0
	switch {
	case !in && out:
		return stategraph.Initial
	case in && out:
		return stategraph.Active
	case in && !out:
		return stategraph.Completed
	default:
		return stategraph.Unknown
	}
}

// hasIncoming treats an unobserved predecessor held at the script address as provenance.
func hasIncoming(g *stategraph.Graph, i int) bool {
	if g.InDegree(i) > 0 {
		return true
	}
	if g.ScriptAddress == "" {
		return false
	}
	for _, p := range g.Nodes[i].UnresolvedPredecessors {
		if p.Address == g.ScriptAddress {
			return true
		}
	}
	return false
}
