// Package cborfile loads transactions from a dump of raw ledger CBOR, one transaction per line:
//
//	<block height> <slot> <hex transaction cbor>
//
// Blank lines and lines starting with # are ignored.
package cborfile

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gouroboros/ledger"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/source"
	"github.com/goodnatureofminers/stateinsight7000/pkg/safe"
)

const maxLineSize = 16 << 20

// Load reads a dump file into an in-memory source.
func Load(path string) (*source.Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	txs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return source.NewMemory(txs), nil
}

// Parse decodes every transaction line of r in order.
// Input addresses are filled in when the consumed output appears earlier in the dump.
func Parse(r io.Reader) ([]model.Transaction, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	addresses := make(map[model.Ref]string)
	var txs []model.Transaction
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		tx, ok, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		for i := range tx.Inputs {
			if addr, found := addresses[tx.Inputs[i].Ref()]; found {
				tx.Inputs[i].Address = addr
			}
		}
		for i, out := range tx.Outputs {
			ref, err := outputRef(tx.Hash, i)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			addresses[ref] = out.Address
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	return txs, nil
}

func outputRef(hash string, i int) (model.Ref, error) {
	idx, err := safe.Uint32(i)
	if err != nil {
		return model.Ref{}, fmt.Errorf("transaction %s output index: %w", hash, err)
	}
	return model.Ref{TxHash: hash, Index: idx}, nil
}

func parseLine(text string) (model.Transaction, bool, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return model.Transaction{}, false, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	block, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("block height: %w", err)
	}
	slot, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("slot: %w", err)
	}
	raw, err := hex.DecodeString(fields[2])
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("transaction hex: %w", err)
	}

	tx, ok, err := DecodeTransaction(raw)
	if err != nil {
		return model.Transaction{}, false, err
	}
	tx.BlockHeight = block
	tx.Slot = slot
	return tx, ok, nil
}

// DecodeTransaction converts ledger CBOR into the analyzer model.
// It reports ok=false for transactions whose scripts failed, since those only consume collateral.
func DecodeTransaction(raw []byte) (model.Transaction, bool, error) {
	txType, err := ledger.DetermineTransactionType(raw)
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("determine transaction era: %w", err)
	}
	ltx, err := ledger.NewTransactionFromCbor(txType, raw)
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("decode transaction: %w", err)
	}
	if !ltx.IsValid() {
		return model.Transaction{}, false, nil
	}

	tx := model.Transaction{Hash: ltx.Hash()}
	for _, in := range ltx.Inputs() {
		tx.Inputs = append(tx.Inputs, model.Input{TxHash: in.Id().String(), Index: in.Index()})
	}
	for _, in := range ltx.Collateral() {
		tx.Inputs = append(tx.Inputs, model.Input{TxHash: in.Id().String(), Index: in.Index(), Collateral: true})
	}
	for _, in := range ltx.ReferenceInputs() {
		tx.Inputs = append(tx.Inputs, model.Input{TxHash: in.Id().String(), Index: in.Index(), Reference: true})
	}

	witnesses := ltx.Witnesses()
	witnessDatums := make(map[string][]byte)
	if witnesses != nil {
		for _, pd := range witnesses.PlutusData() {
			cborData := pd.Cbor()
			witnessDatums[datum.Hash(cborData)] = cborData
		}
	}

	for _, out := range ltx.Outputs() {
		tx.Outputs = append(tx.Outputs, convertOutput(out, witnessDatums))
	}

	if witnesses != nil && witnesses.Redeemers() != nil {
		redeemers := witnesses.Redeemers()
		for _, idx := range redeemers.Indexes(lcommon.RedeemerTagSpend) {
			index, err := safe.Uint32(idx)
			if err != nil {
				return model.Transaction{}, false, fmt.Errorf("redeemer index: %w", err)
			}
			value, units := redeemers.Value(idx, lcommon.RedeemerTagSpend)
			r := model.Redeemer{
				Tag:     model.RedeemerSpend,
				Index:   index,
				ExUnits: model.ExUnits{Mem: uint64(max(units.Memory, 0)), Steps: uint64(max(units.Steps, 0))},
			}
			if value.Value != nil {
				r.Raw = value.Cbor()
			}
			tx.Redeemers = append(tx.Redeemers, r)
		}
	}
	return tx, true, nil
}

func convertOutput(out lcommon.TransactionOutput, witnessDatums map[string][]byte) model.Output {
	o := model.Output{
		Address: out.Address().String(),
		Amounts: []model.Amount{{Unit: model.LovelaceUnit, Quantity: new(big.Int).SetUint64(out.Amount())}},
	}
	if assets := out.Assets(); assets != nil {
		for _, policy := range assets.Policies() {
			for _, name := range assets.Assets(policy) {
				qty := assets.Asset(policy, name)
				if qty == nil {
					continue
				}
				o.Amounts = append(o.Amounts, model.Amount{
					Unit:     policy.String() + hex.EncodeToString(name),
					Quantity: new(big.Int).Set(qty),
				})
			}
		}
	}

	sort.Slice(o.Amounts[1:], func(i, j int) bool { return o.Amounts[1+i].Unit < o.Amounts[1+j].Unit })

	switch {
	case out.Datum() != nil && out.Datum().Value != nil:
		raw := out.Datum().Cbor()
		o.Datum = &model.DatumRef{Hash: datum.Hash(raw), Raw: raw}
	case out.DatumHash() != nil:
		hash := out.DatumHash().String()
		o.Datum = &model.DatumRef{Hash: hash, Raw: witnessDatums[hash]}
	}
	return o
}
