package stategraph

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
)

const scriptAddr = "addr_test1wscript"

const (
	datumAnswer   = "d8799f182aff" // Constr 0 [42]
	redeemUnlock  = "d87980"       // Constr 0 []
	redeemCancel  = "d87b80"       // Constr 2 []
	datumTruncate = "d8799f18"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		Contract: schema.Contract{Name: "Test", ScriptAddress: scriptAddr},
		Datum: schema.Datum{
			Type:   schema.TypeConstr,
			Fields: []schema.Field{{Name: "answer", Type: schema.TypeInt}},
		},
		Redeemers: []schema.Redeemer{
			{Name: "Unlock", ConstructorIndex: 0},
			{Name: "Cancel", ConstructorIndex: 2},
		},
	}
}

func raw(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func scriptOut(t *testing.T, datumHex string) model.Output {
	t.Helper()
	out := model.Output{Address: scriptAddr}
	if datumHex != "" {
		out.Datum = &model.DatumRef{Raw: raw(t, datumHex)}
	}
	return out
}

func walletOut() model.Output {
	return model.Output{Address: "addr_test1wallet"}
}

func spend(hash string, idx uint32) model.Input {
	return model.Input{TxHash: hash, Index: idx}
}

func redeemer(t *testing.T, idx uint32, h string) model.Redeemer {
	t.Helper()
	return model.Redeemer{Tag: model.RedeemerSpend, Index: idx, Raw: raw(t, h)}
}

func edgeStrings(g *Graph) []string {
	out := make([]string, 0, len(g.Edges))
	for _, e := range g.KeyedEdges() {
		out = append(out, fmt.Sprintf("%s->%s@%s/%d:%s", e.From, e.To, e.TxHash, e.InputIndex, e.Redeemer))
	}
	return out
}

func nodeKeys(g *Graph) []string {
	out := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n.Key.String())
	}
	return out
}

func equalStrings(a, b []string) bool {
	return strings.Join(a, ",") == strings.Join(b, ",")
}

// vestingChain locks, partially unlocks and finally unlocks to a wallet.
func vestingChain(t *testing.T) []model.Transaction {
	return []model.Transaction{
		{
			Hash:        "t1",
			BlockHeight: 10,
			Inputs:      []model.Input{{TxHash: "w0", Index: 0, Address: "addr_test1wallet"}},
			Outputs:     []model.Output{scriptOut(t, datumAnswer), walletOut()},
		},
		{
			Hash:        "t2",
			BlockHeight: 11,
			Inputs:      []model.Input{spend("t1", 0)},
			Outputs:     []model.Output{walletOut(), scriptOut(t, datumAnswer)},
			Redeemers:   []model.Redeemer{redeemer(t, 0, redeemUnlock)},
		},
		{
			Hash:        "t3",
			BlockHeight: 12,
			Inputs:      []model.Input{spend("t2", 1)},
			Outputs:     []model.Output{walletOut()},
			Redeemers:   []model.Redeemer{redeemer(t, 0, redeemCancel)},
		},
	}
}

func TestBuildEmpty(t *testing.T) {
	g, err := NewBuilder().Build(nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if g.Len() != 0 || len(g.Edges) != 0 || len(g.Warnings()) != 0 {
		t.Fatalf("expected empty graph, got %d nodes %d edges", g.Len(), len(g.Edges))
	}

	_, err = NewBuilder(RequireTransactions()).Build(nil)
	if !errors.Is(err, ErrNoTransactions) {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}
}

func TestBuildChain(t *testing.T) {
	g, err := NewBuilder(WithScriptAddress(scriptAddr), WithSchema(testSchema())).Build(vestingChain(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if want := []string{"t1#0", "t2#1"}; !equalStrings(nodeKeys(g), want) {
		t.Fatalf("nodes = %v, want %v", nodeKeys(g), want)
	}
	if want := []string{"t1#0->t2#1@t2/0:Unlock"}; !equalStrings(edgeStrings(g), want) {
		t.Fatalf("edges = %v, want %v", edgeStrings(g), want)
	}

	first, _ := g.Node("t1#0")
	if len(first.UnresolvedPredecessors) != 1 || first.UnresolvedPredecessors[0].Ref.String() != "w0#0" {
		t.Fatalf("unresolved = %+v", first.UnresolvedPredecessors)
	}
	if first.UnresolvedPredecessors[0].Address != "addr_test1wallet" {
		t.Fatalf("predecessor address = %q", first.UnresolvedPredecessors[0].Address)
	}
	if len(first.Warnings) != 1 {
		t.Fatalf("warnings = %v", first.Warnings)
	}
	if first.BlockHeight != 10 || first.Class != Unknown {
		t.Fatalf("node = %+v", first)
	}
	if !first.Datum.Decoded() {
		t.Fatalf("datum not decoded: %v", first.Datum.Err)
	}
	if f, ok := first.Datum.Fields.Field("answer"); !ok || !datum.Equal(f.Value, datum.NewInt(42)) {
		t.Fatalf("answer = %+v, %v", f, ok)
	}
	if first.Datum.Hash != datum.Hash(raw(t, datumAnswer)) {
		t.Fatalf("datum hash = %q", first.Datum.Hash)
	}

	last, _ := g.Node("t2#1")
	if last.SpentBy == nil || last.SpentBy.TxHash != "t3" || last.SpentBy.Redeemer != "Cancel" {
		t.Fatalf("SpentBy = %+v", last.SpentBy)
	}
	if last.SpentBy.RedeemerIndex == nil || *last.SpentBy.RedeemerIndex != 2 {
		t.Fatalf("redeemer index = %v", last.SpentBy.RedeemerIndex)
	}
	if g.OutDegree(1) != 0 || g.InDegree(1) != 1 || g.OutDegree(0) != 1 {
		t.Fatalf("degrees: out(0)=%d in(1)=%d out(1)=%d", g.OutDegree(0), g.InDegree(1), g.OutDegree(1))
	}
	if got := g.Transactions(); !equalStrings(got, []string{"t1", "t2", "t3"}) {
		t.Fatalf("transactions = %v", got)
	}
}

func TestBuildWithoutAddressFilter(t *testing.T) {
	g, err := NewBuilder().Build(vestingChain(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if want := []string{"t1#0", "t1#1", "t2#0", "t2#1", "t3#0"}; !equalStrings(nodeKeys(g), want) {
		t.Fatalf("nodes = %v, want %v", nodeKeys(g), want)
	}
	if want := []string{
		"t1#0->t2#0@t2/0:redeemer#0",
		"t1#0->t2#1@t2/0:redeemer#0",
		"t2#1->t3#0@t3/0:redeemer#2",
	}; !equalStrings(edgeStrings(g), want) {
		t.Fatalf("edges = %v, want %v", edgeStrings(g), want)
	}
}

func TestBuildEdgeExpansion(t *testing.T) {
	txs := []model.Transaction{
		{Hash: "t1", Outputs: []model.Output{scriptOut(t, datumAnswer), scriptOut(t, datumAnswer)}},
		{
			Hash:    "t2",
			Inputs:  []model.Input{spend("t1", 0), spend("t1", 1)},
			Outputs: []model.Output{scriptOut(t, datumAnswer), scriptOut(t, datumAnswer)},
		},
	}

	tests := []struct {
		name      string
		expansion EdgeExpansion
		want      []string
	}{
		{
			name:      "all pairs",
			expansion: AllPairs,
			want: []string{
				"t1#0->t2#0@t2/0:", "t1#0->t2#1@t2/0:",
				"t1#1->t2#0@t2/1:", "t1#1->t2#1@t2/1:",
			},
		},
		{
			name:      "single merge",
			expansion: SingleMerge,
			want:      []string{"t1#0->t2#0@t2/0:", "t1#1->t2#0@t2/1:"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewBuilder(WithScriptAddress(scriptAddr), WithEdgeExpansion(tt.expansion)).Build(txs)
			if err != nil {
				t.Fatalf("Build returned error: %v", err)
			}
			if !equalStrings(edgeStrings(g), tt.want) {
				t.Fatalf("edges = %v, want %v", edgeStrings(g), tt.want)
			}
		})
	}
}

func TestBuildRedeemerCanonicalOrder(t *testing.T) {
	txs := []model.Transaction{
		{Hash: "bb", Outputs: []model.Output{scriptOut(t, datumAnswer)}},
		{Hash: "aa", Outputs: []model.Output{scriptOut(t, datumAnswer)}},
		{
			Hash: "cc",
			// listed out of ledger order, and with collateral that must not shift positions
			Inputs: []model.Input{
				spend("bb", 0),
				{TxHash: "00", Index: 0, Collateral: true},
				spend("aa", 0),
			},
			Outputs: []model.Output{scriptOut(t, datumAnswer)},
			Redeemers: []model.Redeemer{
				redeemer(t, 0, redeemCancel),
				redeemer(t, 1, redeemUnlock),
				{Tag: model.RedeemerMint, Index: 0, Raw: raw(t, redeemUnlock)},
			},
		},
	}
	g, err := NewBuilder(WithScriptAddress(scriptAddr), WithSchema(testSchema())).Build(txs)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	want := []string{"bb#0->cc#0@cc/0:Unlock", "aa#0->cc#0@cc/2:Cancel"}
	if !equalStrings(edgeStrings(g), want) {
		t.Fatalf("edges = %v, want %v", edgeStrings(g), want)
	}
	out, _ := g.Node("cc#0")
	if len(out.UnresolvedPredecessors) != 0 {
		t.Fatalf("collateral recorded as predecessor: %+v", out.UnresolvedPredecessors)
	}
}

func TestBuildSkipsMalformedTransactions(t *testing.T) {
	txs := []model.Transaction{
		{Hash: "t1", Outputs: []model.Output{scriptOut(t, datumAnswer)}},
		{Hash: "t1", Outputs: []model.Output{scriptOut(t, datumAnswer)}},
		{Hash: "self", Inputs: []model.Input{spend("self", 0)}, Outputs: []model.Output{scriptOut(t, "")}},
		{Hash: "range", Inputs: []model.Input{spend("t1", 5)}, Outputs: []model.Output{scriptOut(t, "")}},
		{Hash: "", Outputs: []model.Output{scriptOut(t, "")}},
		{Hash: "t2", Inputs: []model.Input{spend("t1", 0)}, Outputs: []model.Output{scriptOut(t, datumAnswer)}},
	}
	g, err := NewBuilder(WithScriptAddress(scriptAddr)).Build(txs)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if want := []string{"t1#0", "t2#0"}; !equalStrings(nodeKeys(g), want) {
		t.Fatalf("nodes = %v, want %v", nodeKeys(g), want)
	}
	warnings := g.Warnings()
	if len(warnings) != 4 {
		t.Fatalf("warnings = %+v", warnings)
	}
	for _, w := range warnings {
		if w.Kind != WarningMalformed {
			t.Fatalf("unexpected warning kind %+v", w)
		}
	}
	if warnings[0].TxHash != "t1" || !strings.Contains(warnings[0].Message, "duplicate") {
		t.Fatalf("first warning = %+v", warnings[0])
	}
	if !strings.Contains(warnings[2].Message, "has 1 outputs") {
		t.Fatalf("range warning = %+v", warnings[2])
	}
}

func TestBuildKeepsUndecodableDatum(t *testing.T) {
	txs := []model.Transaction{
		{Hash: "t1", Outputs: []model.Output{
			scriptOut(t, datumTruncate),
			{Address: scriptAddr, Datum: &model.DatumRef{Hash: "feed"}},
		}},
	}
	g, err := NewBuilder(WithScriptAddress(scriptAddr)).Build(txs)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	broken, ok := g.Node("t1#0")
	if !ok {
		t.Fatalf("node with undecodable datum was dropped")
	}
	var de *datum.DecodeError
	if !errors.As(broken.Datum.Err, &de) {
		t.Fatalf("expected *datum.DecodeError, got %v", broken.Datum.Err)
	}
	if hex.EncodeToString(broken.Datum.Raw) != datumTruncate {
		t.Fatalf("raw bytes not retained: %x", broken.Datum.Raw)
	}
	if broken.Datum.Decoded() || len(broken.Warnings) != 1 {
		t.Fatalf("node = %+v", broken)
	}

	hashOnly, _ := g.Node("t1#1")
	if !errors.Is(hashOnly.Datum.Err, ErrDatumUnavailable) || hashOnly.Datum.Hash != "feed" {
		t.Fatalf("hash-only datum = %+v", hashOnly.Datum)
	}
}

func TestBuildSchemaMismatchWarnings(t *testing.T) {
	txs := []model.Transaction{
		{Hash: "t1", Outputs: []model.Output{scriptOut(t, "d87a9f4101ff")}}, // Constr 1 [h'01']
	}
	g, err := NewBuilder(WithSchema(testSchema())).Build(txs)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	n := g.Nodes[0]
	if !n.Datum.Fields.Mismatch {
		t.Fatalf("expected mismatch")
	}
	if len(n.Warnings) != 2 || !strings.HasPrefix(n.Warnings[0], "schema: ") {
		t.Fatalf("warnings = %v", n.Warnings)
	}
}

func TestBuildIgnoresWalletAndReferenceInputs(t *testing.T) {
	txs := []model.Transaction{
		{Hash: "t1", Outputs: []model.Output{scriptOut(t, datumAnswer), walletOut()}},
		{
			Hash: "t2",
			Inputs: []model.Input{
				spend("t1", 1),
				{TxHash: "t1", Index: 0, Reference: true},
			},
			Outputs: []model.Output{scriptOut(t, datumAnswer)},
		},
	}
	g, err := NewBuilder(WithScriptAddress(scriptAddr)).Build(txs)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(g.Edges) != 0 {
		t.Fatalf("edges = %v", edgeStrings(g))
	}
	first, _ := g.Node("t1#0")
	second, _ := g.Node("t2#0")
	if first.SpentBy != nil || len(second.UnresolvedPredecessors) != 0 || len(second.Warnings) != 0 {
		t.Fatalf("unexpected provenance: %+v %+v", first, second)
	}
}

func TestBuildUsesInjectedDecoder(t *testing.T) {
	calls := 0
	decode := func(hash string, raw []byte) (datum.Value, error) {
		calls++
		return datum.Decode(raw)
	}
	txs := []model.Transaction{{Hash: "t1", Outputs: []model.Output{scriptOut(t, datumAnswer)}}}
	if _, err := NewBuilder(WithDatumDecoder(decode)).Build(txs); err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("decoder called %d times", calls)
	}
}

func TestExtendMatchesBuild(t *testing.T) {
	txs := vestingChain(t)
	b := NewBuilder(WithScriptAddress(scriptAddr), WithSchema(testSchema()))

	full, err := b.Build(txs)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	for split := 0; split <= len(txs); split++ {
		prefix, err := b.Build(txs[:split])
		if err != nil {
			t.Fatalf("Build returned error: %v", err)
		}
		prefixKeys := nodeKeys(prefix)

		extended := b.Extend(prefix, txs[split:])
		if !equalStrings(nodeKeys(extended), nodeKeys(full)) {
			t.Fatalf("split %d: nodes = %v, want %v", split, nodeKeys(extended), nodeKeys(full))
		}
		if !equalStrings(edgeStrings(extended), edgeStrings(full)) {
			t.Fatalf("split %d: edges = %v, want %v", split, edgeStrings(extended), edgeStrings(full))
		}
		if !equalStrings(nodeKeys(prefix), prefixKeys) {
			t.Fatalf("split %d: Extend modified its input", split)
		}
		for i, key := range prefixKeys {
			if idx, _ := extended.NodeIndex(key); idx != i {
				t.Fatalf("split %d: key %s moved from %d to %d", split, key, i, idx)
			}
		}
	}

	again := b.Extend(full, txs)
	if !equalStrings(nodeKeys(again), nodeKeys(full)) || !equalStrings(edgeStrings(again), edgeStrings(full)) {
		t.Fatalf("re-extending with known transactions changed the graph")
	}
}

func TestExtendReportsDuplicatesLikeBuild(t *testing.T) {
	txs := vestingChain(t)
	b := NewBuilder(WithScriptAddress(scriptAddr), WithSchema(testSchema()))

	for split := 0; split <= len(txs); split++ {
		prefix, _ := b.Build(txs[:split])
		// Every known transaction is replayed, then the unseen tail is repeated.
		newTxs := append(append([]model.Transaction{}, txs...), txs[split:]...)

		extended := b.Extend(prefix, newTxs)
		built, _ := b.Build(append(append([]model.Transaction{}, txs[:split]...), newTxs...))

		got, want := extended.Warnings(), built.Warnings()
		if len(got) != len(want) {
			t.Fatalf("split %d: warnings = %v, want %v", split, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("split %d: warning %d = %+v, want %+v", split, i, got[i], want[i])
			}
		}
		dupes := 0
		for _, w := range got {
			if w.Kind == WarningMalformed && w.Message == "duplicate transaction hash" {
				dupes++
			}
		}
		if dupes != len(txs) {
			t.Fatalf("split %d: duplicate warnings = %d, want %d", split, dupes, len(txs))
		}
		if !equalStrings(edgeStrings(extended), edgeStrings(built)) {
			t.Fatalf("split %d: edges = %v, want %v", split, edgeStrings(extended), edgeStrings(built))
		}
	}
}

func TestMerge(t *testing.T) {
	txs := vestingChain(t)
	b := NewBuilder(WithScriptAddress(scriptAddr))
	left, _ := b.Build(txs[:2])
	right, _ := b.Build(txs[1:])
	full, _ := b.Build(txs)

	merged := Merge(full, left)
	if !equalStrings(nodeKeys(merged), nodeKeys(full)) || !equalStrings(edgeStrings(merged), edgeStrings(full)) {
		t.Fatalf("merging a subgraph changed the graph: %v %v", nodeKeys(merged), edgeStrings(merged))
	}

	union := Merge(left, right)
	if want := []string{"t1#0", "t2#1"}; !equalStrings(nodeKeys(union), want) {
		t.Fatalf("nodes = %v, want %v", nodeKeys(union), want)
	}
	if len(union.Edges) != 1 {
		t.Fatalf("edges = %v", edgeStrings(union))
	}

	self := Merge(full, full)
	if len(self.Nodes) != len(full.Nodes) || len(self.Edges) != len(full.Edges) {
		t.Fatalf("Merge is not idempotent")
	}
	if Merge(nil, nil).Len() != 0 {
		t.Fatalf("merging nothing should be empty")
	}
}

func TestMergeOfExtendedSnapshot(t *testing.T) {
	txs := vestingChain(t)
	b := NewBuilder(WithScriptAddress(scriptAddr), WithSchema(testSchema()))

	for split := 0; split <= len(txs); split++ {
		prefix, _ := b.Build(txs[:split])
		extended := b.Extend(prefix, txs[split:])

		merged := Merge(prefix, extended)
		if !equalStrings(nodeKeys(merged), nodeKeys(extended)) {
			t.Fatalf("split %d: nodes = %v, want %v", split, nodeKeys(merged), nodeKeys(extended))
		}
		if !equalStrings(edgeStrings(merged), edgeStrings(extended)) {
			t.Fatalf("split %d: edges = %v, want %v", split, edgeStrings(merged), edgeStrings(extended))
		}
		for i, n := range prefix.Nodes {
			if merged.Nodes[i].Key != n.Key {
				t.Fatalf("split %d: prefix node %s moved", split, n.Key)
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g, _ := NewBuilder(WithScriptAddress(scriptAddr)).Build(vestingChain(t))
	c := g.Clone()
	c.Nodes[0].Class = Failed
	c.Nodes[0].Warnings = append(c.Nodes[0].Warnings, "extra")
	if g.Nodes[0].Class != Unknown || len(g.Nodes[0].Warnings) != 1 {
		t.Fatalf("clone shares node state")
	}
}

func TestAssemble(t *testing.T) {
	g, _ := NewBuilder(WithScriptAddress(scriptAddr), WithSchema(testSchema())).Build(vestingChain(t))

	rebuilt, err := Assemble(g.ScriptAddress, g.Clone().Nodes, g.KeyedEdges())
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if !equalStrings(edgeStrings(rebuilt), edgeStrings(g)) || !equalStrings(nodeKeys(rebuilt), nodeKeys(g)) {
		t.Fatalf("rebuilt graph differs")
	}

	_, err = Assemble("", g.Nodes, []KeyedEdge{{From: "nope#0", To: "t1#0"}})
	if err == nil {
		t.Fatalf("expected error for unknown edge endpoint")
	}
	_, err = Assemble("", []*Node{g.Nodes[0], g.Nodes[0]}, nil)
	if err == nil {
		t.Fatalf("expected error for duplicate node")
	}
}

func TestParseEdgeExpansion(t *testing.T) {
	for _, e := range []EdgeExpansion{AllPairs, SingleMerge} {
		got, err := ParseEdgeExpansion(e.String())
		if err != nil || got != e {
			t.Fatalf("ParseEdgeExpansion(%q) = %v, %v", e.String(), got, err)
		}
	}
	if _, err := ParseEdgeExpansion("star"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClassificationColor(t *testing.T) {
	want := map[Classification]string{
		Initial:   "lightblue",
		Active:    "lightgreen",
		Completed: "green",
		Failed:    "red",
		Locked:    "yellow",
		Unknown:   "gray",
	}
	for _, c := range Classifications {
		if c.Color() != want[c] {
			t.Fatalf("%s.Color() = %q, want %q", c, c.Color(), want[c])
		}
	}
}
