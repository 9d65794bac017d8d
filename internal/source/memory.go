package source

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
)

// Memory serves a fixed transaction list, paging it the way the hosted indexer does.
type Memory struct {
	txs []model.Transaction
}

// NewMemory keeps txs in the given order, which is taken as chain order.
func NewMemory(txs []model.Transaction) *Memory {
	return &Memory{txs: txs}
}

// Len returns the number of transactions held.
func (m *Memory) Len() int {
	return len(m.txs)
}

// TransactionsByAddress returns the transactions with an input or output at the address.
func (m *Memory) TransactionsByAddress(ctx context.Context, address string, q Query) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q = q.Normalize()

	var matched []model.Transaction
	for _, tx := range m.txs {
		if touches(tx, address) {
			matched = append(matched, tx)
		}
	}
	if q.Order == OrderDesc {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	start := (q.Page - 1) * q.Count
	if start >= len(matched) {
		return nil, nil
	}
	end := min(start+q.Count, len(matched))

	out := make([]model.Transaction, 0, end-start)
	for _, tx := range matched[start:end] {
		out = append(out, clone(tx))
	}
	return out, nil
}

// Transaction returns a single transaction by hash.
func (m *Memory) Transaction(ctx context.Context, hash string) (*model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, tx := range m.txs {
		if tx.Hash == hash {
			c := clone(tx)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("transaction %s: %w", hash, ErrNotFound)
}

func touches(tx model.Transaction, address string) bool {
	for _, in := range tx.Inputs {
		if in.Address == address {
			return true
		}
	}
	for _, out := range tx.Outputs {
		if out.Address == address {
			return true
		}
	}
	return false
}

func clone(tx model.Transaction) model.Transaction {
	tx.Inputs = append([]model.Input(nil), tx.Inputs...)
	tx.Outputs = append([]model.Output(nil), tx.Outputs...)
	tx.Redeemers = append([]model.Redeemer(nil), tx.Redeemers...)
	return tx
}
