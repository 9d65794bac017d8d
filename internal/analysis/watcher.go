package analysis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/clock"
	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
	"github.com/goodnatureofminers/stateinsight7000/internal/source"
	"go.uber.org/zap"
)

// WatcherConfig tunes a Watcher.
type WatcherConfig struct {
	Address  string
	Interval time.Duration
	PageSize int
	// SchemaPath enables reloading the schema when the file changes.
	SchemaPath string
}

// Watcher polls a source and publishes a new Result whenever the address history grows
// or the schema file changes.
type Watcher struct {
	analyzer  *Analyzer
	source    Source
	metrics   WatcherMetrics
	publisher Publisher
	logger    *zap.Logger
	sleep     clock.SleepFunc
	cfg       WatcherConfig

	schema    *schema.Schema
	reloads   chan *schema.Schema
	snapshots chan *Result

	mu      sync.RWMutex
	current *Result
}

// NewWatcher builds a Watcher. publisher may be nil.
func NewWatcher(
	analyzer *Analyzer,
	src Source,
	s *schema.Schema,
	cfg WatcherConfig,
	metrics WatcherMetrics,
	publisher Publisher,
	logger *zap.Logger,
) (*Watcher, error) {
	if analyzer == nil {
		return nil, errors.New("watcher analyzer is required")
	}
	if src == nil {
		return nil, errors.New("watcher source is required")
	}
	if metrics == nil {
		return nil, errors.New("watcher metrics is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	address := cfg.Address
	if address == "" && s != nil {
		address = s.Contract.ScriptAddress
	}
	if address == "" {
		return nil, errors.New("watcher address is required")
	}
	cfg.Address = address

	return &Watcher{
		analyzer:  analyzer,
		source:    src,
		metrics:   metrics,
		publisher: publisher,
		logger:    logger.Named("watcher").With(zap.String("address", address)),
		sleep:     clock.SleepWithContext,
		cfg:       cfg,
		schema:    s,
		reloads:   make(chan *schema.Schema, 1),
		snapshots: make(chan *Result, 1),
	}, nil
}

// Snapshots delivers published results. Only the newest unread one is kept.
// The channel is closed when Run returns.
func (w *Watcher) Snapshots() <-chan *Result {
	return w.snapshots
}

// Latest returns the most recent result, or nil before the first poll succeeds.
func (w *Watcher) Latest() *Result {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Run polls until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.snapshots)

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if w.cfg.SchemaPath != "" {
		fw, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("watch schema: %w", err)
		}
		if err := fw.Add(filepath.Dir(w.cfg.SchemaPath)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("watch schema directory: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.watchSchema(ctx, fw)
		}()
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn("poll failed", zap.Error(err), zap.Duration("sleep", w.cfg.Interval))
		}
		if err := w.sleep(ctx, w.cfg.Interval); err != nil {
			return err
		}
	}
}

func (w *Watcher) poll(ctx context.Context) (err error) {
	started := time.Now()
	var newTxs int
	defer func() {
		w.metrics.ObservePoll(err, newTxs, started)
	}()

	w.pendingReload()
	prev := w.Latest()
	// Compared against the snapshot so a reload survives a failed poll.
	reloaded := prev != nil && prev.Schema != w.schema

	var res *Result
	switch {
	case prev == nil:
		txs, err := source.FetchAll(ctx, w.source, w.cfg.Address, source.OrderAsc, w.cfg.PageSize, w.analyzer.cfg.MaxTransactions)
		if err != nil {
			return fmt.Errorf("fetch history: %w", err)
		}
		newTxs = len(txs)
		if res, err = w.analyzer.Run(ctx, txs, w.schema); err != nil {
			return err
		}
	default:
		fresh, err := w.fetchNew(ctx, prev)
		if err != nil {
			return fmt.Errorf("fetch new transactions: %w", err)
		}
		newTxs = len(fresh)
		switch {
		case reloaded:
			all := append(append([]model.Transaction{}, prev.Transactions...), fresh...)
			res, err = w.analyzer.Run(ctx, all, w.schema)
		case len(fresh) > 0:
			res, err = w.analyzer.Extend(ctx, prev, fresh)
		default:
			w.logger.Debug("no new transactions")
			return nil
		}
		if err != nil {
			return err
		}
	}

	w.publish(res)
	if w.publisher != nil {
		if err := w.publisher.Persist(ctx, res); err != nil {
			w.logger.Error("persist snapshot failed", zap.String("run_id", res.RunID), zap.Error(err))
		}
	}
	return nil
}

// fetchNew pages the address newest first until it reaches a known transaction,
// returning the unseen ones in chain order.
func (w *Watcher) fetchNew(ctx context.Context, prev *Result) ([]model.Transaction, error) {
	known := make(map[string]struct{}, len(prev.Transactions))
	for _, tx := range prev.Transactions {
		known[tx.Hash] = struct{}{}
	}

	var fresh []model.Transaction
	q := source.Query{Page: 1, Count: w.cfg.PageSize, Order: source.OrderDesc}.Normalize()
	for {
		page, err := w.source.TransactionsByAddress(ctx, w.cfg.Address, q)
		if err != nil {
			return nil, err
		}
		reached := false
		for _, tx := range page {
			if _, ok := known[tx.Hash]; ok {
				reached = true
				break
			}
			fresh = append(fresh, tx)
		}
		if reached || len(page) < q.Count {
			break
		}
		q.Page++
	}

	for i, j := 0, len(fresh)-1; i < j; i, j = i+1, j-1 {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	}
	return fresh, nil
}

func (w *Watcher) publish(r *Result) {
	w.mu.Lock()
	w.current = r
	w.mu.Unlock()

	select {
	case w.snapshots <- r:
	default:
		select {
		case <-w.snapshots:
		default:
		}
		w.snapshots <- r
	}
	w.logger.Info("snapshot published",
		zap.String("run_id", r.RunID),
		zap.Int("transactions", len(r.Transactions)),
		zap.Int("states", r.Graph.Len()),
	)
}

func (w *Watcher) pendingReload() bool {
	select {
	case s := <-w.reloads:
		w.schema = s
		return true
	default:
		return false
	}
}

func (w *Watcher) watchSchema(ctx context.Context, fw *fsnotify.Watcher) {
	defer fw.Close()
	target := filepath.Clean(w.cfg.SchemaPath)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("schema watch error", zap.Error(err))
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			s, err := w.loadSchema()
			w.metrics.ObserveSchemaReload(err)
			if err != nil {
				w.logger.Warn("schema reload rejected", zap.Error(err))
				continue
			}
			w.logger.Info("schema reloaded", zap.String("contract", s.Contract.Name))
			select {
			case <-w.reloads:
			default:
			}
			w.reloads <- s
		}
	}
}

func (w *Watcher) loadSchema() (*schema.Schema, error) {
	s, err := schema.Load(w.cfg.SchemaPath)
	if err != nil {
		return nil, err
	}
	for _, issue := range schema.Validate(s) {
		if issue.Severity == schema.SeverityError {
			return nil, fmt.Errorf("schema %s: %s", w.cfg.SchemaPath, issue.Message)
		}
	}
	return s, nil
}
