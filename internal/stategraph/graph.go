// Package stategraph builds the state-transition graph of a script address from its transactions.
package stategraph

import (
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
)

// Classification is the role of a state in the contract lifecycle.
type Classification string

const (
	Initial   Classification = "Initial"
	Active    Classification = "Active"
	Completed Classification = "Completed"
	Failed    Classification = "Failed"
	Locked    Classification = "Locked"
	Unknown   Classification = "Unknown"
)

var Classifications = []Classification{Initial, Active, Completed, Failed, Locked, Unknown}

// Color is the display colour used by the renderers.
func (c Classification) Color() string {
	switch c {
	case Initial:
		return "lightblue"
	case Active:
		return "lightgreen"
	case Completed:
		return "green"
	case Failed:
		return "red"
	case Locked:
		return "yellow"
	default:
		return "gray"
	}
}

// Datum is the payload attached to a state. Raw is kept even when decoding failed.
type Datum struct {
	Hash   string
	Raw    []byte
	Value  datum.Value
	Err    error
	Fields *schema.Mapping
}

func (d *Datum) Decoded() bool {
	return d != nil && d.Err == nil && d.Value != nil
}

// Predecessor is a consumed output that was never observed as a state.
type Predecessor struct {
	Ref     model.Ref
	Address string
}

// Spend records the transaction input that consumed a state.
type Spend struct {
	TxHash        string
	InputIndex    int
	Redeemer      string
	RedeemerIndex *uint64
}

// Node is one UTxO held at the analyzed address.
type Node struct {
	Key         model.Ref
	TxHash      string
	Output      model.Output
	Datum       *Datum
	BlockHeight uint64
	Slot        uint64
	BlockTime   time.Time
	Class       Classification

	SpentBy                *Spend
	UnresolvedPredecessors []Predecessor
	Warnings               []string
}

func (n *Node) clone() *Node {
	c := *n
	if n.Datum != nil {
		d := *n.Datum
		c.Datum = &d
	}
	if n.SpentBy != nil {
		s := *n.SpentBy
		c.SpentBy = &s
	}
	c.UnresolvedPredecessors = append([]Predecessor(nil), n.UnresolvedPredecessors...)
	c.Warnings = append([]string(nil), n.Warnings...)
	return &c
}

// Edge is a spend of From by a transaction that created To. From and To index Graph.Nodes.
type Edge struct {
	From          int
	To            int
	TxHash        string
	InputIndex    int
	Redeemer      string
	RedeemerIndex *uint64
}

type WarningKind string

const (
	WarningMalformed      WarningKind = "malformed_transaction"
	WarningRedeemerDecode WarningKind = "redeemer_decode"
)

// Warning is a problem with a whole transaction. Problems with a single state are kept on the node.
type Warning struct {
	TxHash  string
	Kind    WarningKind
	Message string
}

// Graph is the state-transition graph. Nodes are unique by key; parallel edges are kept.
// A graph is written by one builder and read concurrently afterwards.
type Graph struct {
	ScriptAddress string
	Nodes         []*Node
	Edges         []Edge

	index    map[string]int
	out      [][]int
	in       [][]int
	txs      map[string]int
	txOrder  []string
	warnings []Warning
}

func newGraph(scriptAddress string) *Graph {
	return &Graph{
		ScriptAddress: scriptAddress,
		index:         make(map[string]int),
		txs:           make(map[string]int),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

func (g *Graph) Node(key string) (*Node, bool) {
	i, ok := g.index[key]
	if !ok {
		return nil, false
	}
	return g.Nodes[i], true
}

func (g *Graph) NodeIndex(key string) (int, bool) {
	i, ok := g.index[key]
	return i, ok
}

// Outgoing returns the edges leaving node i in insertion order.
func (g *Graph) Outgoing(i int) []Edge {
	return g.edges(g.out, i)
}

// Incoming returns the edges entering node i in insertion order.
func (g *Graph) Incoming(i int) []Edge {
	return g.edges(g.in, i)
}

func (g *Graph) edges(adj [][]int, i int) []Edge {
	if i < 0 || i >= len(adj) {
		return nil
	}
	out := make([]Edge, 0, len(adj[i]))
	for _, e := range adj[i] {
		out = append(out, g.Edges[e])
	}
	return out
}

func (g *Graph) OutDegree(i int) int {
	if i < 0 || i >= len(g.out) {
		return 0
	}
	return len(g.out[i])
}

func (g *Graph) InDegree(i int) int {
	if i < 0 || i >= len(g.in) {
		return 0
	}
	return len(g.in[i])
}

// Warnings returns the transaction-level warnings collected while building.
func (g *Graph) Warnings() []Warning {
	return append([]Warning(nil), g.warnings...)
}

// Transactions returns the hashes of the processed transactions in processing order.
func (g *Graph) Transactions() []string {
	return append([]string(nil), g.txOrder...)
}

func (g *Graph) HasTransaction(hash string) bool {
	_, ok := g.txs[hash]
	return ok
}

// Clone returns a deep copy that can be extended or reclassified independently.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		ScriptAddress: g.ScriptAddress,
		Nodes:         make([]*Node, len(g.Nodes)),
		Edges:         append([]Edge(nil), g.Edges...),
		index:         make(map[string]int, len(g.index)),
		out:           cloneAdjacency(g.out),
		in:            cloneAdjacency(g.in),
		txs:           make(map[string]int, len(g.txs)),
		txOrder:       append([]string(nil), g.txOrder...),
		warnings:      append([]Warning(nil), g.warnings...),
	}
	for i, n := range g.Nodes {
		c.Nodes[i] = n.clone()
	}
	for k, v := range g.index {
		c.index[k] = v
	}
	for k, v := range g.txs {
		c.txs[k] = v
	}
	return c
}

func cloneAdjacency(adj [][]int) [][]int {
	out := make([][]int, len(adj))
	for i, a := range adj {
		out[i] = append([]int(nil), a...)
	}
	return out
}

func (g *Graph) addNode(n *Node) int {
	i := len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	g.index[n.Key.String()] = i
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return i
}

func (g *Graph) addEdge(e Edge) {
	i := len(g.Edges)
	g.Edges = append(g.Edges, e)
	g.out[e.From] = append(g.out[e.From], i)
	g.in[e.To] = append(g.in[e.To], i)
}

func (g *Graph) observe(hash string, outputs int) {
	g.txs[hash] = outputs
	g.txOrder = append(g.txOrder, hash)
}
