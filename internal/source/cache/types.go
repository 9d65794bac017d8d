package cache

import (
	"context"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/source"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Upstream interface {
		TransactionsByAddress(ctx context.Context, address string, q source.Query) ([]model.Transaction, error)
		Transaction(ctx context.Context, hash string) (*model.Transaction, error)
	}
	Metrics interface {
		ObserveLookup(operation string, hit bool)
	}
)
