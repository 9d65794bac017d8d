package stategraph

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
	"github.com/goodnatureofminers/stateinsight7000/pkg/safe"
)

// ErrNoTransactions is returned by Build when RequireTransactions is set and the input is empty.
var ErrNoTransactions = errors.New("no transactions to analyze")

// ErrDatumUnavailable marks a datum whose hash is known but whose payload is not.
var ErrDatumUnavailable = errors.New("datum payload unavailable")

// EdgeExpansion selects how a transaction with several inputs and outputs is turned into edges.
type EdgeExpansion int

const (
	// AllPairs links every consumed state to every produced state.
	AllPairs EdgeExpansion = iota
	// SingleMerge links every consumed state to the first produced state only.
	SingleMerge
)

func (e EdgeExpansion) String() string {
	if e == SingleMerge {
		return "single-merge"
	}
	return "all-pairs"
}

// ParseEdgeExpansion accepts the names produced by EdgeExpansion.String.
func ParseEdgeExpansion(s string) (EdgeExpansion, error) {
	switch s {
	case "", "all-pairs":
		return AllPairs, nil
	case "single-merge":
		return SingleMerge, nil
	}
	return AllPairs, fmt.Errorf("unknown edge expansion %q", s)
}

// DecodeFunc decodes a datum or redeemer payload; hash may be empty.
type DecodeFunc func(hash string, raw []byte) (datum.Value, error)

type Option func(*Builder)

// WithScriptAddress restricts states to outputs paying to addr. Empty keeps every output.
func WithScriptAddress(addr string) Option {
	return func(b *Builder) {
		b.address = addr
	}
}

func WithSchema(s *schema.Schema) Option {
	return func(b *Builder) {
		b.schema = s
	}
}

// WithDatumDecoder replaces the builder's private decode cache.
func WithDatumDecoder(fn DecodeFunc) Option {
	return func(b *Builder) {
		if fn != nil {
			b.decode = fn
		}
	}
}

func WithEdgeExpansion(e EdgeExpansion) Option {
	return func(b *Builder) {
		b.expansion = e
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// RequireTransactions makes Build fail with ErrNoTransactions on empty input.
func RequireTransactions() Option {
	return func(b *Builder) {
		b.requireTxs = true
	}
}

// Builder turns an ordered transaction list into a Graph.
type Builder struct {
	address    string
	schema     *schema.Schema
	decode     DecodeFunc
	expansion  EdgeExpansion
	requireTxs bool
	logger     *zap.Logger
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		decode: datum.NewCache().Decode,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Named("stategraph")
	return b
}

// Build processes txs in list order. Malformed transactions are skipped and reported through Graph.Warnings.
func (b *Builder) Build(txs []model.Transaction) (*Graph, error) {
	if len(txs) == 0 && b.requireTxs {
		return nil, ErrNoTransactions
	}
	g := newGraph(b.address)
	for i := range txs {
		b.apply(g, &txs[i])
	}
	return g, nil
}

// Extend continues prev with newTxs without modifying it. Transactions already in prev are skipped with
// the same duplicate warning Build records, so the result matches a Build over the concatenated list.
func (b *Builder) Extend(prev *Graph, newTxs []model.Transaction) *Graph {
	var g *Graph
	if prev == nil {
		g = newGraph(b.address)
	} else {
		g = prev.Clone()
	}
	for i := range newTxs {
		b.apply(g, &newTxs[i])
	}
	return g
}

func (b *Builder) apply(g *Graph, tx *model.Transaction) {
	if reason := b.malformed(g, tx); reason != "" {
		g.warnings = append(g.warnings, Warning{TxHash: tx.Hash, Kind: WarningMalformed, Message: reason})
		b.logger.Warn("skip malformed transaction",
			zap.String("tx_hash", tx.Hash),
			zap.String("reason", reason),
		)
		return
	}

	produced := b.addOutputs(g, tx)
	g.observe(tx.Hash, len(tx.Outputs))
	b.addInputs(g, tx, produced)
}

func (b *Builder) malformed(g *Graph, tx *model.Transaction) string {
	if tx.Hash == "" {
		return "transaction hash is empty"
	}
	if g.HasTransaction(tx.Hash) {
		return "duplicate transaction hash"
	}
	if _, err := safe.Uint32(len(tx.Outputs)); err != nil {
		return fmt.Sprintf("too many outputs: %v", err)
	}
	for i, in := range tx.Inputs {
		if in.TxHash == tx.Hash {
			return fmt.Sprintf("input %d references its own transaction", i)
		}
		outputs, seen := g.txs[in.TxHash]
		if seen && int64(in.Index) >= int64(outputs) {
			return fmt.Sprintf("input %d references %s which has %d outputs", i, in.Ref(), outputs)
		}
	}
	return ""
}

func (b *Builder) addOutputs(g *Graph, tx *model.Transaction) []int {
	var produced []int
	for i, out := range tx.Outputs {
		if b.address != "" && out.Address != b.address {
			continue
		}
		idx, err := safe.Uint32(i)
		if err != nil {
			continue
		}
		n := &Node{
			Key:         model.Ref{TxHash: tx.Hash, Index: idx},
			TxHash:      tx.Hash,
			Output:      out,
			BlockHeight: tx.BlockHeight,
			Slot:        tx.Slot,
			BlockTime:   tx.BlockTime,
			Class:       Unknown,
		}
		if out.Datum != nil {
			n.Datum = b.resolveDatum(n, out.Datum)
		}
		produced = append(produced, g.addNode(n))
	}
	return produced
}

func (b *Builder) resolveDatum(n *Node, ref *model.DatumRef) *Datum {
	d := &Datum{Hash: ref.Hash, Raw: ref.Raw}
	if len(ref.Raw) == 0 {
		d.Err = ErrDatumUnavailable
		n.Warnings = append(n.Warnings, fmt.Sprintf("datum %s: %v", ref.Hash, ErrDatumUnavailable))
		return d
	}
	if d.Hash == "" {
		d.Hash = datum.Hash(ref.Raw)
	}

	v, err := b.decode(d.Hash, ref.Raw)
	if err != nil {
		d.Err = err
		n.Warnings = append(n.Warnings, "datum: "+err.Error())
		return d
	}
	d.Value = v
	if b.schema != nil {
		d.Fields = schema.Resolve(v, b.schema)
		for _, w := range d.Fields.Warnings {
			n.Warnings = append(n.Warnings, "schema: "+w)
		}
	}
	return d
}

func (b *Builder) addInputs(g *Graph, tx *model.Transaction, produced []int) {
	redeemers := b.spendRedeemers(g, tx)
	positions := canonicalPositions(tx.Inputs)

	for i, in := range tx.Inputs {
		if in.Collateral || in.Reference {
			continue
		}
		ref := in.Ref()

		if from, ok := g.index[ref.String()]; ok {
			spend := &Spend{TxHash: tx.Hash, InputIndex: i}
			if r, ok := redeemers[positions[i]]; ok {
				spend.Redeemer, spend.RedeemerIndex = r.name, r.index
			}
			g.Nodes[from].SpentBy = spend

			targets := produced
			if b.expansion == SingleMerge && len(targets) > 1 {
				targets = targets[:1]
			}
			for _, to := range targets {
				g.addEdge(Edge{
					From:          from,
					To:            to,
					TxHash:        tx.Hash,
					InputIndex:    i,
					Redeemer:      spend.Redeemer,
					RedeemerIndex: spend.RedeemerIndex,
				})
			}
			continue
		}

		if g.HasTransaction(ref.TxHash) {
			// observed transaction, output went elsewhere
			continue
		}

		for _, to := range produced {
			n := g.Nodes[to]
			n.UnresolvedPredecessors = append(n.UnresolvedPredecessors, Predecessor{Ref: ref, Address: in.Address})
			n.Warnings = append(n.Warnings, fmt.Sprintf("predecessor %s was not observed", ref))
		}
	}
}

type namedRedeemer struct {
	name  string
	index *uint64
}

// spendRedeemers resolves the spend redeemers of tx keyed by canonical input position.
func (b *Builder) spendRedeemers(g *Graph, tx *model.Transaction) map[int]namedRedeemer {
	out := make(map[int]namedRedeemer)
	for _, r := range tx.Redeemers {
		if r.Tag != model.RedeemerSpend {
			continue
		}
		pos, err := safe.Int(r.Index)
		if err != nil {
			continue
		}
		v, err := b.decode("", r.Raw)
		if err != nil {
			g.warnings = append(g.warnings, Warning{
				TxHash:  tx.Hash,
				Kind:    WarningRedeemerDecode,
				Message: fmt.Sprintf("spend redeemer %d: %v", r.Index, err),
			})
			continue
		}
		c, ok := v.(datum.Constr)
		if !ok {
			out[pos] = namedRedeemer{name: datum.Humanize(v)}
			continue
		}
		idx := c.Index
		out[pos] = namedRedeemer{name: b.schema.RedeemerName(idx), index: &idx}
	}
	return out
}

// canonicalPositions maps each spending input to its position in the ledger's sorted input set.
// Collateral and reference inputs are not part of that set and map to -1.
func canonicalPositions(inputs []model.Input) []int {
	spending := make([]int, 0, len(inputs))
	for i, in := range inputs {
		if !in.Collateral && !in.Reference {
			spending = append(spending, i)
		}
	}
	sort.SliceStable(spending, func(a, c int) bool {
		return inputs[spending[a]].Ref().Less(inputs[spending[c]].Ref())
	})

	positions := make([]int, len(inputs))
	for i := range positions {
		positions[i] = -1
	}
	for pos, i := range spending {
		positions[i] = pos
	}
	return positions
}
