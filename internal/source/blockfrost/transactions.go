package blockfrost

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/source"
	"golang.org/x/sync/errgroup"
)

type addressTx struct {
	TxHash      string `json:"tx_hash"`
	TxIndex     int    `json:"tx_index"`
	BlockHeight uint64 `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
}

type txContent struct {
	Hash        string `json:"hash"`
	BlockHeight uint64 `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
	Slot        uint64 `json:"slot"`
	Index       int    `json:"index"`
}

type amount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type utxoInput struct {
	Address     string   `json:"address"`
	Amount      []amount `json:"amount"`
	TxHash      string   `json:"tx_hash"`
	OutputIndex uint32   `json:"output_index"`
	Collateral  bool     `json:"collateral"`
	Reference   bool     `json:"reference"`
}

type utxoOutput struct {
	Address     string   `json:"address"`
	Amount      []amount `json:"amount"`
	OutputIndex uint32   `json:"output_index"`
	DataHash    *string  `json:"data_hash"`
	InlineDatum *string  `json:"inline_datum"`
	Collateral  bool     `json:"collateral"`
}

type txUTxOs struct {
	Hash    string       `json:"hash"`
	Inputs  []utxoInput  `json:"inputs"`
	Outputs []utxoOutput `json:"outputs"`
}

type txRedeemer struct {
	TxIndex          uint32 `json:"tx_index"`
	Purpose          string `json:"purpose"`
	RedeemerDataHash string `json:"redeemer_data_hash"`
	UnitMem          string `json:"unit_mem"`
	UnitSteps        string `json:"unit_steps"`
}

type datumCBOR struct {
	CBOR string `json:"cbor"`
}

// TransactionsByAddress lists one page of address transactions and resolves each in full.
// An address unknown to the indexer yields an empty page.
func (c *Client) TransactionsByAddress(ctx context.Context, address string, q source.Query) ([]model.Transaction, error) {
	q = q.Normalize()
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("count", strconv.Itoa(q.Count))
	params.Set("order", string(q.Order))

	var listed []addressTx
	err := c.get(ctx, "address_transactions", "/addresses/"+url.PathEscape(address)+"/transactions", params, &listed)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list transactions of %s: %w", address, err)
	}

	txs := make([]model.Transaction, len(listed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, item := range listed {
		g.Go(func() error {
			tx, err := c.transaction(gctx, item.TxHash)
			if err != nil {
				return fmt.Errorf("resolve transaction %s: %w", item.TxHash, err)
			}
			txs[i] = *tx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(listed))
	for _, item := range listed {
		index[item.TxHash] = item.TxIndex
	}
	less := func(a, b model.Transaction) bool {
		if a.BlockHeight != b.BlockHeight {
			return a.BlockHeight < b.BlockHeight
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return index[a.Hash] < index[b.Hash]
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if q.Order == source.OrderDesc {
			return less(txs[j], txs[i])
		}
		return less(txs[i], txs[j])
	})
	return txs, nil
}

// Transaction resolves a single transaction with its inputs, outputs, datums and redeemers.
func (c *Client) Transaction(ctx context.Context, hash string) (*model.Transaction, error) {
	tx, err := c.transaction(ctx, hash)
	if isNotFound(err) {
		return nil, fmt.Errorf("transaction %s: %w", hash, source.ErrNotFound)
	}
	return tx, err
}

func (c *Client) transaction(ctx context.Context, hash string) (*model.Transaction, error) {
	var content txContent
	if err := c.get(ctx, "tx", "/txs/"+hash, nil, &content); err != nil {
		return nil, err
	}
	var utxos txUTxOs
	if err := c.get(ctx, "tx_utxos", "/txs/"+hash+"/utxos", nil, &utxos); err != nil {
		return nil, err
	}
	var redeemers []txRedeemer
	if err := c.get(ctx, "tx_redeemers", "/txs/"+hash+"/redeemers", nil, &redeemers); err != nil && !isNotFound(err) {
		return nil, err
	}

	tx := &model.Transaction{
		Hash:        content.Hash,
		BlockHeight: content.BlockHeight,
		Slot:        content.Slot,
		BlockTime:   time.Unix(content.BlockTime, 0).UTC(),
	}
	for _, in := range utxos.Inputs {
		tx.Inputs = append(tx.Inputs, model.Input{
			TxHash:     in.TxHash,
			Index:      in.OutputIndex,
			Address:    in.Address,
			Collateral: in.Collateral,
			Reference:  in.Reference,
		})
	}

	outputs := make([]utxoOutput, 0, len(utxos.Outputs))
	for _, out := range utxos.Outputs {
		// collateral return outputs only exist when the scripts fail
		if !out.Collateral {
			outputs = append(outputs, out)
		}
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].OutputIndex < outputs[j].OutputIndex })
	for _, out := range outputs {
		o, err := c.output(ctx, out)
		if err != nil {
			return nil, err
		}
		tx.Outputs = append(tx.Outputs, o)
	}

	for _, r := range redeemers {
		tag := model.RedeemerTag(r.Purpose)
		red := model.Redeemer{Tag: tag, Index: r.TxIndex}
		red.ExUnits.Mem, _ = strconv.ParseUint(r.UnitMem, 10, 64)
		red.ExUnits.Steps, _ = strconv.ParseUint(r.UnitSteps, 10, 64)
		if tag == model.RedeemerSpend && r.RedeemerDataHash != "" {
			raw, err := c.datum(ctx, r.RedeemerDataHash)
			if err != nil {
				return nil, err
			}
			red.Raw = raw
		}
		tx.Redeemers = append(tx.Redeemers, red)
	}
	return tx, nil
}

func (c *Client) output(ctx context.Context, out utxoOutput) (model.Output, error) {
	o := model.Output{Address: out.Address}
	for _, a := range out.Amount {
		q, ok := new(big.Int).SetString(a.Quantity, 10)
		if !ok {
			return model.Output{}, fmt.Errorf("invalid quantity %q for %s", a.Quantity, a.Unit)
		}
		o.Amounts = append(o.Amounts, model.Amount{Unit: a.Unit, Quantity: q})
	}

	switch {
	case out.InlineDatum != nil && *out.InlineDatum != "":
		raw, err := hex.DecodeString(*out.InlineDatum)
		if err != nil {
			return model.Output{}, fmt.Errorf("inline datum of output %d: %w", out.OutputIndex, err)
		}
		o.Datum = &model.DatumRef{Raw: raw}
		if out.DataHash != nil {
			o.Datum.Hash = *out.DataHash
		}
	case out.DataHash != nil && *out.DataHash != "":
		raw, err := c.datum(ctx, *out.DataHash)
		if err != nil {
			return model.Output{}, err
		}
		o.Datum = &model.DatumRef{Hash: *out.DataHash, Raw: raw}
	}
	return o, nil
}

// datum returns the CBOR behind a datum hash, or nil when the indexer has never seen the preimage.
func (c *Client) datum(ctx context.Context, hash string) ([]byte, error) {
	var body datumCBOR
	err := c.get(ctx, "datum_cbor", "/scripts/datum/"+hash+"/cbor", nil, &body)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("datum %s: %w", hash, err)
	}
	raw, err := hex.DecodeString(body.CBOR)
	if err != nil {
		return nil, fmt.Errorf("datum %s: %w", hash, err)
	}
	return raw, nil
}
