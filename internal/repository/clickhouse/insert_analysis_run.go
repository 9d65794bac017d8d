package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
)

const insertAnalysisRunQuery = `
INSERT INTO analysis_runs (
	run_id,
	address,
	network,
	pattern,
	node_count,
	edge_count,
	max_out_degree,
	components,
	branching_factor,
	max_depth,
	cycle_members,
	transaction_count,
	warnings,
	created_at
) VALUES`

// InsertAnalysisRun stores the summary row of a run.
func (r *Repository) InsertAnalysisRun(ctx context.Context, run model.AnalysisRun) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_analysis_run", r.network, err, start)
	}()

	batch, err := r.conn.PrepareBatch(ctx, insertAnalysisRunQuery)
	if err != nil {
		return fmt.Errorf("prepare analysis run batch: %w", err)
	}

	if err = batch.Append(
		run.RunID,
		run.Address,
		string(run.Network),
		run.Pattern,
		run.NodeCount,
		run.EdgeCount,
		run.MaxOutDegree,
		run.Components,
		run.BranchingFactor,
		run.MaxDepth,
		nonNil(run.CycleMembers),
		run.TransactionCount,
		nonNil(run.Warnings),
		run.CreatedAt,
	); err != nil {
		_ = batch.Abort()
		return fmt.Errorf("append analysis run: %w", err)
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}
	return nil
}

// nonNil keeps Array(String) columns from receiving a nil slice.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
