package stategraph

import "fmt"

// KeyedEdge is an edge addressed by node keys instead of arena indices, as stored by repositories.
type KeyedEdge struct {
	From          string
	To            string
	TxHash        string
	InputIndex    int
	Redeemer      string
	RedeemerIndex *uint64
}

// KeyedEdges returns the edges of g addressed by node keys, in insertion order.
func (g *Graph) KeyedEdges() []KeyedEdge {
	out := make([]KeyedEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		out = append(out, KeyedEdge{
			From:          g.Nodes[e.From].Key.String(),
			To:            g.Nodes[e.To].Key.String(),
			TxHash:        e.TxHash,
			InputIndex:    e.InputIndex,
			Redeemer:      e.Redeemer,
			RedeemerIndex: e.RedeemerIndex,
		})
	}
	return out
}

// Assemble rebuilds a graph from stored nodes and edges. Node order is kept.
func Assemble(scriptAddress string, nodes []*Node, edges []KeyedEdge) (*Graph, error) {
	g := newGraph(scriptAddress)
	outputs := make(map[string]int)
	var order []string

	for _, n := range nodes {
		key := n.Key.String()
		if _, dup := g.index[key]; dup {
			return nil, fmt.Errorf("assemble graph: duplicate state %s", key)
		}
		g.addNode(n)
		if _, ok := outputs[n.Key.TxHash]; !ok {
			order = append(order, n.Key.TxHash)
		}
		outputs[n.Key.TxHash] = max(outputs[n.Key.TxHash], int(n.Key.Index)+1)
	}
	for _, hash := range order {
		g.observe(hash, outputs[hash])
	}

	for _, e := range edges {
		from, ok := g.index[e.From]
		if !ok {
			return nil, fmt.Errorf("assemble graph: edge from unknown state %s", e.From)
		}
		to, ok := g.index[e.To]
		if !ok {
			return nil, fmt.Errorf("assemble graph: edge to unknown state %s", e.To)
		}
		g.addEdge(Edge{
			From:          from,
			To:            to,
			TxHash:        e.TxHash,
			InputIndex:    e.InputIndex,
			Redeemer:      e.Redeemer,
			RedeemerIndex: e.RedeemerIndex,
		})
	}
	return g, nil
}
