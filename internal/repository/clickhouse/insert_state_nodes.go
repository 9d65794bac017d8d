package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
)

const insertStateNodesQuery = `
INSERT INTO state_nodes (
	run_id,
	position,
	ref,
	tx_hash,
	output_index,
	address,
	lovelace,
	datum_hash,
	datum_cbor,
	class,
	block_height,
	slot,
	block_time,
	spent_by_tx,
	spent_redeemer,
	warnings,
	amounts
) VALUES`

// InsertStateNodes stores the states of a run.
func (r *Repository) InsertStateNodes(ctx context.Context, nodes []model.StateNode) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_state_nodes", r.network, err, start)
	}()

	if len(nodes) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertStateNodesQuery)
	if err != nil {
		return fmt.Errorf("prepare state nodes batch: %w", err)
	}

	for _, n := range nodes {
		if err = batch.Append(
			n.RunID,
			n.Position,
			n.Ref,
			n.TxHash,
			n.OutputIndex,
			n.Address,
			n.Lovelace,
			n.DatumHash,
			n.DatumCBOR,
			n.Class,
			n.BlockHeight,
			n.Slot,
			n.BlockTime,
			n.SpentByTx,
			n.SpentRedeemer,
			nonNil(n.Warnings),
			nonNilMap(n.Amounts),
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append state node %s: %w", n.Ref, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert state nodes: %w", err)
	}
	return nil
}
