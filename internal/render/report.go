// Package render formats analysis results as JSON, text tables and Graphviz DOT.
package render

import (
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
)

// Report is the serializable view of a result, shared by the JSON output and the HTTP API.
type Report struct {
	RunID        string            `json:"run_id"`
	Address      string            `json:"address"`
	Network      string            `json:"network"`
	Contract     string            `json:"contract,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Summary      Counts            `json:"summary"`
	Pattern      Pattern           `json:"pattern"`
	Transactions []TransactionView `json:"transactions"`
	States       []StateView       `json:"states"`
	Transitions  []TransitionView  `json:"transitions"`
	Warnings     []string          `json:"warnings"`
}

type Counts struct {
	TotalTransactions int            `json:"total_transactions"`
	TotalStates       int            `json:"total_states"`
	TotalTransitions  int            `json:"total_transitions"`
	TotalDatums       int            `json:"total_datums"`
	Classes           map[string]int `json:"classes"`
}

type Pattern struct {
	Kind            string   `json:"kind"`
	NodeCount       int      `json:"node_count"`
	EdgeCount       int      `json:"edge_count"`
	MaxOutDegree    int      `json:"max_out_degree"`
	MaxInDegree     int      `json:"max_in_degree"`
	Components      int      `json:"components"`
	BranchingFactor float64  `json:"branching_factor"`
	MaxDepth        int      `json:"max_depth"`
	CycleMembers    []string `json:"cycle_members,omitempty"`
}

type TransactionView struct {
	Hash    string    `json:"hash"`
	Block   uint64    `json:"block"`
	Slot    uint64    `json:"slot"`
	Time    time.Time `json:"time"`
	Inputs  int       `json:"inputs"`
	Outputs int       `json:"outputs"`
}

type StateView struct {
	Key           string      `json:"key"`
	TxHash        string      `json:"tx_hash"`
	OutputIndex   uint32      `json:"output_index"`
	Class         string      `json:"class"`
	Lovelace      string      `json:"lovelace"`
	Block         uint64      `json:"block"`
	Slot          uint64      `json:"slot"`
	DatumHash     string      `json:"datum_hash,omitempty"`
	Datum         string      `json:"datum,omitempty"`
	DatumError    string      `json:"datum_error,omitempty"`
	Fields        []FieldView `json:"fields,omitempty"`
	SpentBy       string      `json:"spent_by,omitempty"`
	SpentRedeemer string      `json:"spent_redeemer,omitempty"`
	Warnings      []string    `json:"warnings,omitempty"`
}

type FieldView struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Value  string `json:"value"`
	TypeOK bool   `json:"type_ok"`
}

type TransitionView struct {
	From     string `json:"from"`
	To       string `json:"to"`
	TxHash   string `json:"tx_hash"`
	Redeemer string `json:"redeemer,omitempty"`
	Label    string `json:"label,omitempty"`
}

// NewReport flattens r. Classes with no states are reported as zero.
func NewReport(r *analysis.Result) Report {
	g := r.Graph
	rep := Report{
		RunID:        r.RunID,
		Address:      r.Address,
		Network:      string(r.Network),
		CreatedAt:    r.CreatedAt,
		Transactions: make([]TransactionView, 0, len(r.Transactions)),
		States:       make([]StateView, 0, g.Len()),
		Transitions:  make([]TransitionView, 0, len(g.Edges)),
		Warnings:     append([]string{}, r.Warnings...),
	}
	if r.Schema != nil {
		rep.Contract = r.Schema.Contract.Name
	}

	rep.Summary = Counts{
		TotalTransactions: len(r.Transactions),
		TotalStates:       g.Len(),
		TotalTransitions:  len(g.Edges),
		Classes:           make(map[string]int, len(stategraph.Classifications)),
	}
	for _, c := range stategraph.Classifications {
		rep.Summary.Classes[string(c)] = r.Summary[c]
	}

	rep.Pattern = Pattern{
		Kind:            string(r.Report.Kind),
		NodeCount:       r.Report.NodeCount,
		EdgeCount:       r.Report.EdgeCount,
		MaxOutDegree:    r.Report.MaxOutDegree,
		MaxInDegree:     r.Report.MaxInDegree,
		Components:      r.Report.Components,
		BranchingFactor: r.Report.BranchingFactor,
		MaxDepth:        r.Report.MaxDepth,
		CycleMembers:    r.Report.CycleMembers,
	}

	for _, tx := range r.Transactions {
		rep.Transactions = append(rep.Transactions, TransactionView{
			Hash:    tx.Hash,
			Block:   tx.BlockHeight,
			Slot:    tx.Slot,
			Time:    tx.BlockTime,
			Inputs:  len(tx.Inputs),
			Outputs: len(tx.Outputs),
		})
	}

	for _, n := range g.Nodes {
		if n.Datum != nil {
			rep.Summary.TotalDatums++
		}
		rep.States = append(rep.States, NewStateView(n))
	}

	for _, e := range g.Edges {
		rep.Transitions = append(rep.Transitions, TransitionView{
			From:     g.Nodes[e.From].Key.String(),
			To:       g.Nodes[e.To].Key.String(),
			TxHash:   e.TxHash,
			Redeemer: e.Redeemer,
			Label:    EdgeLabel(r, e.Redeemer),
		})
	}
	return rep
}

// NewStateView flattens one state.
func NewStateView(n *stategraph.Node) StateView {
	v := StateView{
		Key:         n.Key.String(),
		TxHash:      n.TxHash,
		OutputIndex: n.Key.Index,
		Class:       string(n.Class),
		Lovelace:    n.Output.Lovelace().String(),
		Block:       n.BlockHeight,
		Slot:        n.Slot,
		Warnings:    n.Warnings,
	}
	if d := n.Datum; d != nil {
		v.DatumHash = d.Hash
		switch {
		case d.Err != nil:
			v.DatumError = d.Err.Error()
		case d.Value != nil:
			v.Datum = datum.Humanize(d.Value)
		}
		if d.Fields != nil {
			for _, f := range d.Fields.Fields {
				v.Fields = append(v.Fields, FieldView{Name: f.Name, Type: f.Type, Value: f.Display(), TypeOK: f.TypeOK})
			}
		}
	}
	if n.SpentBy != nil {
		v.SpentBy = n.SpentBy.TxHash
		v.SpentRedeemer = n.SpentBy.Redeemer
	}
	return v
}

// EdgeLabel is the schema label of a redeemer, falling back to its name.
func EdgeLabel(r *analysis.Result, redeemer string) string {
	if label, ok := r.Schema.TransitionLabel(redeemer); ok {
		return label
	}
	return redeemer
}
