package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
)

// DOT writes the state graph of r as a Graphviz digraph. Nodes are filled by class,
// edges are labelled by redeemer and styled from the schema's transitions table.
func DOT(w io.Writer, r *analysis.Result) error {
	bw := bufio.NewWriter(w)
	g := r.Graph

	fmt.Fprintln(bw, "digraph StateGraph {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=box, style=filled];")
	fmt.Fprintln(bw)

	for _, n := range g.Nodes {
		key := n.Key.String()
		label := fmt.Sprintf("%s#%d\\n%s", Short(n.TxHash), n.Key.Index, n.Class)
		fmt.Fprintf(bw, "  %s [label=%s, fillcolor=%s];\n", dotID(key), quote(label), quote(n.Class.Color()))
	}
	if len(g.Edges) > 0 {
		fmt.Fprintln(bw)
	}

	for _, e := range g.Edges {
		attrs := []string{"label=" + quote(EdgeLabel(r, e.Redeemer))}
		if t, ok := r.Schema.Transition(e.Redeemer); ok {
			if t.Color != "" {
				attrs = append(attrs, "color="+quote(t.Color))
			}
			if t.Style != "" {
				attrs = append(attrs, "style="+quote(t.Style))
			}
		}
		fmt.Fprintf(bw, "  %s -> %s [%s];\n",
			dotID(g.Nodes[e.From].Key.String()), dotID(g.Nodes[e.To].Key.String()), strings.Join(attrs, ", "))
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotID(key string) string {
	return quote(strings.NewReplacer("#", "_", "-", "_").Replace(key))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
