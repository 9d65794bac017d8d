package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
)

const insertTransitionsQuery = `
INSERT INTO state_transitions (
	run_id,
	position,
	from_ref,
	to_ref,
	tx_hash,
	input_index,
	redeemer,
	redeemer_index
) VALUES`

// InsertTransitions stores the edges of a run.
func (r *Repository) InsertTransitions(ctx context.Context, transitions []model.Transition) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_transitions", r.network, err, start)
	}()

	if len(transitions) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertTransitionsQuery)
	if err != nil {
		return fmt.Errorf("prepare transitions batch: %w", err)
	}

	for _, t := range transitions {
		if err = batch.Append(
			t.RunID,
			t.Position,
			t.FromRef,
			t.ToRef,
			t.TxHash,
			t.InputIndex,
			t.Redeemer,
			t.RedeemerIndex,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append transition %s->%s: %w", t.FromRef, t.ToRef, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert transitions: %w", err)
	}
	return nil
}
