package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/pkg/batcher"
	"go.uber.org/zap"
)

const (
	persistFlushSize     = 1000
	persistFlushInterval = 2 * time.Second
	persistRPS           = 20
)

// Persister writes results to a repository. Run rows are written synchronously;
// states and transitions go through batchers so watch mode does not block on storage.
type Persister struct {
	repo        Repository
	logger      *zap.Logger
	nodes       *batcher.Batcher[model.StateNode]
	transitions *batcher.Batcher[model.Transition]
}

func NewPersister(repo Repository, logger *zap.Logger) (*Persister, error) {
	if repo == nil {
		return nil, errors.New("persister repository is required")
	}
	logger = logger.Named("persister")
	onError := func(kind string) batcher.Option {
		return batcher.WithFlushErrorHandler(func(err error, size int) {
			logger.Error("persist batch failed", zap.String("kind", kind), zap.Int("size", size), zap.Error(err))
		})
	}

	return &Persister{
		repo:   repo,
		logger: logger,
		nodes: batcher.New(logger.Named("nodes"), repo.InsertStateNodes,
			persistFlushSize, persistFlushInterval, persistRPS, onError("state_nodes")),
		transitions: batcher.New(logger.Named("transitions"), repo.InsertTransitions,
			persistFlushSize, persistFlushInterval, persistRPS, onError("transitions")),
	}, nil
}

// Start launches the background flushers.
func (p *Persister) Start(ctx context.Context) {
	p.nodes.Start(ctx)
	p.transitions.Start(ctx)
}

// Stop flushes what is buffered and stops the flushers.
func (p *Persister) Stop() {
	p.nodes.Stop()
	p.transitions.Stop()
}

// Persist stores the run row and queues its states and transitions.
func (p *Persister) Persist(ctx context.Context, r *Result) error {
	run, nodes, transitions := Rows(r)
	if err := p.repo.InsertAnalysisRun(ctx, run); err != nil {
		return fmt.Errorf("insert analysis run %s: %w", run.RunID, err)
	}
	for _, n := range nodes {
		if err := p.nodes.Add(ctx, n); err != nil {
			return fmt.Errorf("queue state %s: %w", n.Ref, err)
		}
	}
	for _, t := range transitions {
		if err := p.transitions.Add(ctx, t); err != nil {
			return fmt.Errorf("queue transition %s->%s: %w", t.FromRef, t.ToRef, err)
		}
	}
	p.logger.Debug("run queued",
		zap.String("run_id", run.RunID),
		zap.Int("states", len(nodes)),
		zap.Int("transitions", len(transitions)),
	)
	return nil
}

// Save writes a result synchronously, without batching. Used by one-shot commands.
func Save(ctx context.Context, repo Repository, r *Result) error {
	run, nodes, transitions := Rows(r)
	if err := repo.InsertAnalysisRun(ctx, run); err != nil {
		return fmt.Errorf("insert analysis run %s: %w", run.RunID, err)
	}
	if err := repo.InsertStateNodes(ctx, nodes); err != nil {
		return fmt.Errorf("insert states of run %s: %w", run.RunID, err)
	}
	if err := repo.InsertTransitions(ctx, transitions); err != nil {
		return fmt.Errorf("insert transitions of run %s: %w", run.RunID, err)
	}
	return nil
}
