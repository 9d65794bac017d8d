package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
)

const transitionsQuery = `
SELECT
	position,
	from_ref,
	to_ref,
	tx_hash,
	input_index,
	redeemer,
	redeemer_index
FROM state_transitions
WHERE run_id = ?
ORDER BY position ASC`

// Transitions returns the edges of a run in their stored order.
func (r *Repository) Transitions(ctx context.Context, runID string) (transitions []model.Transition, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("transitions", r.network, err, start)
	}()

	rows, err := r.conn.Query(ctx, transitionsQuery, runID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	for rows.Next() {
		t := model.Transition{RunID: runID}
		if err = rows.Scan(
			&t.Position,
			&t.FromRef,
			&t.ToRef,
			&t.TxHash,
			&t.InputIndex,
			&t.Redeemer,
			&t.RedeemerIndex,
		); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		transitions = append(transitions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return transitions, nil
}
