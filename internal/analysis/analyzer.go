// Package analysis runs the decode, build, classify and pattern stages over a transaction history.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/classifier"
	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/pattern"
	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
	"github.com/goodnatureofminers/stateinsight7000/pkg/workerpool"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	stageDecode   = "decode"
	stageBuild    = "build"
	stageClassify = "classify"
	stageAnalyze  = "analyze"
)

// Config tunes an Analyzer.
type Config struct {
	// Address restricts states to outputs at this address. Empty means the schema's script address.
	Address         string
	Network         model.Network
	EdgeExpansion   stategraph.EdgeExpansion
	MaxTransactions int
	DecodeWorkers   int
	// Now supplies current_time for rules and run timestamps.
	Now func() time.Time
}

// Result is one analyzed snapshot of an address.
type Result struct {
	RunID        string
	Address      string
	Network      model.Network
	Schema       *schema.Schema
	Graph        *stategraph.Graph
	Summary      classifier.Summary
	Report       pattern.Report
	Transactions []model.Transaction
	Warnings     []string
	CreatedAt    time.Time
}

// Analyzer turns transactions into classified state graphs.
type Analyzer struct {
	cfg     Config
	metrics Metrics
	logger  *zap.Logger
}

func NewAnalyzer(cfg Config, metrics Metrics, logger *zap.Logger) (*Analyzer, error) {
	if metrics == nil {
		return nil, errors.New("analysis metrics is required")
	}
	if cfg.DecodeWorkers <= 0 {
		cfg.DecodeWorkers = 4
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Analyzer{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.Named("analysis").With(zap.String("network", string(cfg.Network))),
	}, nil
}

// Run analyzes txs from scratch. s may be nil.
func (a *Analyzer) Run(ctx context.Context, txs []model.Transaction, s *schema.Schema) (*Result, error) {
	return a.run(ctx, nil, txs, s)
}

// Extend analyzes newTxs on top of prev, keeping prev's states and keys. prev is not modified.
func (a *Analyzer) Extend(ctx context.Context, prev *Result, newTxs []model.Transaction) (*Result, error) {
	if prev == nil {
		return nil, errors.New("extend: previous result is required")
	}
	return a.run(ctx, prev, newTxs, prev.Schema)
}

func (a *Analyzer) run(ctx context.Context, prev *Result, txs []model.Transaction, s *schema.Schema) (res *Result, err error) {
	defer func() {
		if res != nil {
			a.metrics.ObserveRun(err, res.Graph.Len(), len(res.Graph.Edges))
		} else {
			a.metrics.ObserveRun(err, 0, 0)
		}
	}()

	address := a.address(s)
	res = &Result{
		RunID:     uuid.NewString(),
		Address:   address,
		Network:   a.cfg.Network,
		Schema:    s,
		CreatedAt: a.cfg.Now().UTC(),
	}

	var all []model.Transaction
	if prev != nil {
		all = append(all, prev.Transactions...)
	}
	known := make(map[string]struct{}, len(all))
	for _, tx := range all {
		known[tx.Hash] = struct{}{}
	}
	var fresh []model.Transaction
	for _, tx := range txs {
		if _, ok := known[tx.Hash]; ok {
			continue
		}
		known[tx.Hash] = struct{}{}
		fresh = append(fresh, tx)
	}
	if limit := a.cfg.MaxTransactions; limit > 0 && len(all)+len(fresh) > limit {
		keep := max(limit-len(all), 0)
		res.Warnings = append(res.Warnings, fmt.Sprintf("input capped at %d of %d transactions", limit, len(all)+len(fresh)))
		a.logger.Warn("transaction cap reached", zap.Int("limit", limit), zap.Int("dropped", len(fresh)-keep))
		fresh = fresh[:keep]
	}
	res.Transactions = append(all, fresh...)

	cache := datum.NewCache()
	started := time.Now()
	err = a.decode(ctx, cache, fresh)
	a.metrics.ObserveStage(stageDecode, err, started)
	if err != nil {
		return nil, fmt.Errorf("decode datums: %w", err)
	}
	builder := stategraph.NewBuilder(
		stategraph.WithScriptAddress(address),
		stategraph.WithSchema(s),
		stategraph.WithDatumDecoder(cache.Decode),
		stategraph.WithEdgeExpansion(a.cfg.EdgeExpansion),
		stategraph.WithLogger(a.logger),
	)
	started = time.Now()
	if prev != nil {
		res.Graph = builder.Extend(prev.Graph, fresh)
	} else {
		res.Graph, err = builder.Build(fresh)
	}
	a.metrics.ObserveStage(stageBuild, err, started)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	a.metrics.ObserveDecodes(cache.Stats())

	started = time.Now()
	rules, ruleWarnings := classifier.CompileRules(s)
	res.Summary = classifier.Classify(res.Graph, rules, a.cfg.Now)
	a.metrics.ObserveStage(stageClassify, nil, started)
	res.Warnings = append(res.Warnings, ruleWarnings...)

	started = time.Now()
	res.Report = pattern.Analyze(res.Graph)
	a.metrics.ObserveStage(stageAnalyze, nil, started)

	for _, w := range res.Graph.Warnings() {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s: %s", w.Kind, w.TxHash, w.Message))
	}

	a.logger.Info("analysis finished",
		zap.String("run_id", res.RunID),
		zap.String("address", address),
		zap.Int("transactions", len(res.Transactions)),
		zap.Int("states", res.Graph.Len()),
		zap.Int("transitions", len(res.Graph.Edges)),
		zap.String("pattern", string(res.Report.Kind)),
	)
	return res, nil
}

func (a *Analyzer) address(s *schema.Schema) string {
	if a.cfg.Address != "" {
		return a.cfg.Address
	}
	if s != nil {
		return s.Contract.ScriptAddress
	}
	return ""
}

type payload struct {
	hash string
	raw  []byte
}

// decode warms cache with every distinct datum and redeemer of txs. Decode failures stay in the cache.
func (a *Analyzer) decode(ctx context.Context, cache *datum.Cache, txs []model.Transaction) error {
	seen := make(map[string]struct{})
	var items []payload
	add := func(hash string, raw []byte) {
		if len(raw) == 0 {
			return
		}
		if hash == "" {
			hash = datum.Hash(raw)
		}
		if _, ok := seen[hash]; ok {
			return
		}
		seen[hash] = struct{}{}
		items = append(items, payload{hash: hash, raw: raw})
	}
	for _, tx := range txs {
		for _, out := range tx.Outputs {
			if out.Datum != nil {
				add(out.Datum.Hash, out.Datum.Raw)
			}
		}
		for _, r := range tx.Redeemers {
			add("", r.Raw)
		}
	}

	_, err := workerpool.Map(ctx, a.cfg.DecodeWorkers, items, func(_ context.Context, p payload) (struct{}, error) {
		_, _ = cache.Decode(p.hash, p.raw)
		return struct{}{}, nil
	})
	return err
}
