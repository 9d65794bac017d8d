// Package source defines where analyzed transactions come from.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
)

// ErrNotFound is returned when a transaction is unknown to the source.
var ErrNotFound = errors.New("not found")

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder validates a listing order.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case OrderAsc, OrderDesc:
		return Order(s), nil
	case "":
		return OrderAsc, nil
	}
	return "", fmt.Errorf("invalid order %q: must be asc or desc", s)
}

// Query pages through the transactions of an address. Page starts at 1.
type Query struct {
	Page  int
	Count int
	Order Order
}

// DefaultPageSize is the largest page the hosted indexer accepts.
const DefaultPageSize = 100

// Normalize fills zero fields with defaults and clamps Count.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Count < 1 || q.Count > DefaultPageSize {
		q.Count = DefaultPageSize
	}
	if q.Order == "" {
		q.Order = OrderAsc
	}
	return q
}

// Source provides transactions that touch an address.
type Source interface {
	TransactionsByAddress(ctx context.Context, address string, q Query) ([]model.Transaction, error)
	Transaction(ctx context.Context, hash string) (*model.Transaction, error)
}

// FetchAll pages through an address until a short page is returned or limit transactions are collected.
// A limit of zero means no limit.
func FetchAll(ctx context.Context, src Source, address string, order Order, pageSize, limit int) ([]model.Transaction, error) {
	q := Query{Page: 1, Count: pageSize, Order: order}.Normalize()

	var all []model.Transaction
	for {
		page, err := src.TransactionsByAddress(ctx, address, q)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", q.Page, err)
		}
		all = append(all, page...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if len(page) < q.Count {
			return all, nil
		}
		q.Page++
	}
}
