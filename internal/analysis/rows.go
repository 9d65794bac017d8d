package analysis

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strings"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/classifier"
	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/pattern"
	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
	"github.com/goodnatureofminers/stateinsight7000/pkg/safe"
)

// Rows flattens a result into repository rows.
func Rows(r *Result) (model.AnalysisRun, []model.StateNode, []model.Transition) {
	g := r.Graph
	run := model.AnalysisRun{
		RunID:            r.RunID,
		Address:          r.Address,
		Network:          r.Network,
		Pattern:          string(r.Report.Kind),
		NodeCount:        safe.ClampUint32(r.Report.NodeCount),
		EdgeCount:        safe.ClampUint32(r.Report.EdgeCount),
		MaxOutDegree:     safe.ClampUint32(r.Report.MaxOutDegree),
		Components:       safe.ClampUint32(r.Report.Components),
		BranchingFactor:  r.Report.BranchingFactor,
		MaxDepth:         safe.ClampUint32(r.Report.MaxDepth),
		CycleMembers:     append([]string{}, r.Report.CycleMembers...),
		TransactionCount: safe.ClampUint32(len(r.Transactions)),
		Warnings:         append([]string{}, r.Warnings...),
		CreatedAt:        r.CreatedAt,
	}

	nodes := make([]model.StateNode, 0, g.Len())
	for i, n := range g.Nodes {
		row := model.StateNode{
			RunID:       r.RunID,
			Position:    safe.ClampUint32(i),
			Ref:         n.Key.String(),
			TxHash:      n.TxHash,
			OutputIndex: n.Key.Index,
			Address:     n.Output.Address,
			Class:       string(n.Class),
			BlockHeight: n.BlockHeight,
			Slot:        n.Slot,
			BlockTime:   n.BlockTime,
			Warnings:    append([]string{}, n.Warnings...),
			Amounts:     amounts(n.Output),
		}
		if l := n.Output.Lovelace(); l.IsUint64() {
			row.Lovelace = l.Uint64()
		} else {
			row.Lovelace = math.MaxUint64
		}
		if n.Datum != nil {
			row.DatumHash = n.Datum.Hash
			row.DatumCBOR = hex.EncodeToString(n.Datum.Raw)
		}
		if n.SpentBy != nil {
			row.SpentByTx = n.SpentBy.TxHash
			row.SpentRedeemer = n.SpentBy.Redeemer
		}
		nodes = append(nodes, row)
	}

	transitions := make([]model.Transition, 0, len(g.Edges))
	for i, e := range g.KeyedEdges() {
		transitions = append(transitions, model.Transition{
			RunID:         r.RunID,
			Position:      safe.ClampUint32(i),
			FromRef:       e.From,
			ToRef:         e.To,
			TxHash:        e.TxHash,
			InputIndex:    safe.ClampUint32(e.InputIndex),
			Redeemer:      e.Redeemer,
			RedeemerIndex: e.RedeemerIndex,
		})
	}
	return run, nodes, transitions
}

// FromRows rebuilds a result from stored rows. Datums are decoded again and mapped through s when given;
// stored classes are kept as they were at analysis time.
func FromRows(run model.AnalysisRun, rows []model.StateNode, transitions []model.Transition, s *schema.Schema) (*Result, error) {
	nodes := make([]*stategraph.Node, 0, len(rows))
	summary := make(classifier.Summary)
	for _, row := range rows {
		n := &stategraph.Node{
			Key:         model.Ref{TxHash: row.TxHash, Index: row.OutputIndex},
			TxHash:      row.TxHash,
			Output:      model.Output{Address: row.Address},
			BlockHeight: row.BlockHeight,
			Slot:        row.Slot,
			BlockTime:   row.BlockTime,
			Class:       stategraph.Classification(row.Class),
			Warnings:    row.Warnings,
		}
		switch {
		case len(row.Amounts) > 0:
			out, err := outputAmounts(row.Amounts)
			if err != nil {
				return nil, fmt.Errorf("state %s: %w", row.Ref, err)
			}
			n.Output.Amounts = out
		case row.Lovelace > 0:
			n.Output.Amounts = []model.Amount{{Unit: model.LovelaceUnit, Quantity: newUint(row.Lovelace)}}
		}
		if row.DatumHash != "" || row.DatumCBOR != "" {
			raw, err := hex.DecodeString(row.DatumCBOR)
			if err != nil {
				return nil, fmt.Errorf("state %s: datum cbor: %w", row.Ref, err)
			}
			d := &stategraph.Datum{Hash: row.DatumHash, Raw: raw}
			if len(raw) > 0 {
				d.Value, d.Err = datum.Decode(raw)
				if d.Err == nil {
					d.Fields = schema.Resolve(d.Value, s)
				}
			}
			n.Datum = d
		}
		if row.SpentByTx != "" {
			n.SpentBy = &stategraph.Spend{TxHash: row.SpentByTx, Redeemer: row.SpentRedeemer}
		}
		summary[n.Class]++
		nodes = append(nodes, n)
	}

	edges := make([]stategraph.KeyedEdge, 0, len(transitions))
	for _, t := range transitions {
		idx, err := safe.Int(t.InputIndex)
		if err != nil {
			return nil, fmt.Errorf("transition %s->%s: %w", t.FromRef, t.ToRef, err)
		}
		edges = append(edges, stategraph.KeyedEdge{
			From:          t.FromRef,
			To:            t.ToRef,
			TxHash:        t.TxHash,
			InputIndex:    idx,
			Redeemer:      t.Redeemer,
			RedeemerIndex: t.RedeemerIndex,
		})
	}

	g, err := stategraph.Assemble(run.Address, nodes, edges)
	if err != nil {
		return nil, err
	}
	return &Result{
		RunID:     run.RunID,
		Address:   run.Address,
		Network:   run.Network,
		Schema:    s,
		Graph:     g,
		Summary:   summary,
		Report:    pattern.Analyze(g),
		Warnings:  run.Warnings,
		CreatedAt: run.CreatedAt,
	}, nil
}

// amounts sums the output's quantities per unit as decimal strings.
func amounts(o model.Output) map[string]string {
	if len(o.Amounts) == 0 {
		return nil
	}
	totals := make(map[string]*big.Int, len(o.Amounts))
	for _, a := range o.Amounts {
		if a.Quantity == nil {
			continue
		}
		t, ok := totals[a.Unit]
		if !ok {
			t = new(big.Int)
			totals[a.Unit] = t
		}
		t.Add(t, a.Quantity)
	}
	out := make(map[string]string, len(totals))
	for unit, t := range totals {
		out[unit] = t.String()
	}
	return out
}

// outputAmounts parses stored quantities back, lovelace first and the other units sorted.
func outputAmounts(stored map[string]string) ([]model.Amount, error) {
	units := make([]string, 0, len(stored))
	for unit := range stored {
		units = append(units, unit)
	}
	slices.SortFunc(units, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == model.LovelaceUnit:
			return -1
		case b == model.LovelaceUnit:
			return 1
		}
		return strings.Compare(a, b)
	})
	out := make([]model.Amount, 0, len(units))
	for _, unit := range units {
		q, ok := new(big.Int).SetString(stored[unit], 10)
		if !ok {
			return nil, fmt.Errorf("amount %s: invalid quantity %q", unit, stored[unit])
		}
		out = append(out, model.Amount{Unit: unit, Quantity: q})
	}
	return out, nil
}

func newUint(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
