package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
)

// ErrNotFound is returned when no run matches.
var ErrNotFound = errors.New("analysis run not found")

const analysisRunColumns = `
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
	created_at`

const analysisRunQuery = `
SELECT` + analysisRunColumns + `
FROM analysis_runs
WHERE run_id = ?
LIMIT 1`

const latestAnalysisRunQuery = `
SELECT` + analysisRunColumns + `
FROM analysis_runs
WHERE network = ? AND address = ?
ORDER BY created_at DESC, run_id DESC
LIMIT 1`

// AnalysisRun returns the run with the given id.
func (r *Repository) AnalysisRun(ctx context.Context, runID string) (run model.AnalysisRun, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("analysis_run", r.network, err, start)
	}()

	return r.queryRun(ctx, analysisRunQuery, runID)
}

// LatestAnalysisRun returns the newest run stored for address on the repository's network.
func (r *Repository) LatestAnalysisRun(ctx context.Context, address string) (run model.AnalysisRun, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("latest_analysis_run", r.network, err, start)
	}()

	return r.queryRun(ctx, latestAnalysisRunQuery, string(r.network), address)
}

func (r *Repository) queryRun(ctx context.Context, query string, args ...any) (run model.AnalysisRun, err error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return run, fmt.Errorf("query analysis run: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return run, fmt.Errorf("iterate analysis runs: %w", err)
		}
		return run, ErrNotFound
	}

	var network string
	if err = rows.Scan(
		&run.RunID,
		&run.Address,
		&network,
		&run.Pattern,
		&run.NodeCount,
		&run.EdgeCount,
		&run.MaxOutDegree,
		&run.Components,
		&run.BranchingFactor,
		&run.MaxDepth,
		&run.CycleMembers,
		&run.TransactionCount,
		&run.Warnings,
		&run.CreatedAt,
	); err != nil {
		return run, fmt.Errorf("scan analysis run: %w", err)
	}
	run.Network = model.Network(network)
	return run, nil
}
