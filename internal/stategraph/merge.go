package stategraph

// Merge returns the union of a and b keyed by node key. Nodes of a win over nodes of b with the same key;
// edges are deduplicated by transaction, endpoints and input index.
//
// Merge is a library entry point for callers holding snapshots that were built separately, such as two
// stored runs of one address. The analyzer grows its own snapshots with Builder.Extend and never calls it.
func Merge(a, b *Graph) *Graph {
	switch {
	case a == nil && b == nil:
		return newGraph("")
	case a == nil:
		return b.Clone()
	case b == nil:
		return a.Clone()
	}

	g := a.Clone()
	if g.ScriptAddress == "" {
		g.ScriptAddress = b.ScriptAddress
	}

	for _, n := range b.Nodes {
		if _, ok := g.index[n.Key.String()]; ok {
			continue
		}
		g.addNode(n.clone())
	}

	type edgeKey struct {
		tx       string
		from, to string
		input    int
	}
	seen := make(map[edgeKey]struct{}, len(g.Edges)+len(b.Edges))
	for _, e := range g.Edges {
		seen[edgeKey{e.TxHash, g.Nodes[e.From].Key.String(), g.Nodes[e.To].Key.String(), e.InputIndex}] = struct{}{}
	}
	for _, e := range b.Edges {
		from, to := b.Nodes[e.From].Key.String(), b.Nodes[e.To].Key.String()
		k := edgeKey{e.TxHash, from, to, e.InputIndex}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		e.From, e.To = g.index[from], g.index[to]
		g.addEdge(e)
	}

	for _, hash := range b.txOrder {
		if !g.HasTransaction(hash) {
			g.observe(hash, b.txs[hash])
		}
	}

	known := make(map[Warning]struct{}, len(g.warnings))
	for _, w := range g.warnings {
		known[w] = struct{}{}
	}
	for _, w := range b.warnings {
		if _, dup := known[w]; !dup {
			g.warnings = append(g.warnings, w)
			known[w] = struct{}{}
		}
	}
	return g
}
