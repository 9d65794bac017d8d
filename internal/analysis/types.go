package analysis

import (
	"context"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/source"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		ObserveStage(stage string, err error, started time.Time)
		ObserveRun(err error, nodes, edges int)
		ObserveDecodes(hits, misses int)
	}
	WatcherMetrics interface {
		ObservePoll(err error, newTxs int, started time.Time)
		ObserveSchemaReload(err error)
	}
	Source interface {
		TransactionsByAddress(ctx context.Context, address string, q source.Query) ([]model.Transaction, error)
		Transaction(ctx context.Context, hash string) (*model.Transaction, error)
	}
	Repository interface {
		InsertAnalysisRun(ctx context.Context, run model.AnalysisRun) error
		InsertStateNodes(ctx context.Context, nodes []model.StateNode) error
		InsertTransitions(ctx context.Context, transitions []model.Transition) error
	}
	Publisher interface {
		Persist(ctx context.Context, r *Result) error
	}
)
