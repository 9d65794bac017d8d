// Package cache keeps indexer responses in badger so repeated analyses do not hit the network.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/source"
	"go.uber.org/zap"
)

var errMiss = errors.New("cache miss")

// Source is a source.Source decorator that serves entries younger than the TTL from badger.
type Source struct {
	upstream Upstream
	db       *badger.DB
	ttl      time.Duration
	metrics  Metrics
	logger   *zap.Logger
}

// New wraps upstream. A non-positive ttl disables caching.
func New(upstream Upstream, db *badger.DB, ttl time.Duration, metrics Metrics, logger *zap.Logger) (*Source, error) {
	if upstream == nil {
		return nil, errors.New("cache upstream is required")
	}
	if db == nil {
		return nil, errors.New("cache database is required")
	}
	if metrics == nil {
		return nil, errors.New("cache metrics is required")
	}
	return &Source{
		upstream: upstream,
		db:       db,
		ttl:      ttl,
		metrics:  metrics,
		logger:   logger.Named("cache"),
	}, nil
}

// AddressKey names a cached address page.
func AddressKey(address string, q source.Query) string {
	q = q.Normalize()
	return fmt.Sprintf("addr_txs_%s_%d_%d_%s", address, q.Page, q.Count, q.Order)
}

// TransactionKey names a cached transaction.
func TransactionKey(hash string) string {
	return "tx_" + hash
}

func (s *Source) TransactionsByAddress(ctx context.Context, address string, q source.Query) ([]model.Transaction, error) {
	key := AddressKey(address, q)
	var txs []model.Transaction
	if s.load(key, &txs) {
		s.metrics.ObserveLookup("address_transactions", true)
		return txs, nil
	}
	s.metrics.ObserveLookup("address_transactions", false)

	txs, err := s.upstream.TransactionsByAddress(ctx, address, q)
	if err != nil {
		return nil, err
	}
	s.store(key, txs)
	for i := range txs {
		s.store(TransactionKey(txs[i].Hash), txs[i])
	}
	return txs, nil
}

func (s *Source) Transaction(ctx context.Context, hash string) (*model.Transaction, error) {
	key := TransactionKey(hash)
	var tx model.Transaction
	if s.load(key, &tx) {
		s.metrics.ObserveLookup("transaction", true)
		return &tx, nil
	}
	s.metrics.ObserveLookup("transaction", false)

	got, err := s.upstream.Transaction(ctx, hash)
	if err != nil {
		return nil, err
	}
	s.store(key, got)
	return got, nil
}

// load reports whether key was found and decoded into out. Read failures count as misses.
func (s *Source) load(key string, out any) bool {
	if s.ttl <= 0 {
		return false
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errMiss
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if err != nil && !errors.Is(err, errMiss) {
		s.logger.Warn("read cache entry failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// store writes value under key with the configured TTL. Failures are logged and ignored.
func (s *Source) store(key string, value any) {
	if s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("encode cache entry failed", zap.String("key", key), zap.Error(err))
		return
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), raw).WithTTL(s.ttl))
	})
	if err != nil {
		s.logger.Warn("write cache entry failed", zap.String("key", key), zap.Error(err))
	}
}
