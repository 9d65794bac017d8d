package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
)

const stateNodesQuery = `
SELECT
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
FROM state_nodes
WHERE run_id = ?
ORDER BY position ASC`

// StateNodes returns the states of a run in their stored order.
func (r *Repository) StateNodes(ctx context.Context, runID string) (nodes []model.StateNode, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("state_nodes", r.network, err, start)
	}()

	rows, err := r.conn.Query(ctx, stateNodesQuery, runID)
	if err != nil {
		return nil, fmt.Errorf("query state nodes: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	for rows.Next() {
		n := model.StateNode{RunID: runID}
		if err = rows.Scan(
			&n.Position,
			&n.Ref,
			&n.TxHash,
			&n.OutputIndex,
			&n.Address,
			&n.Lovelace,
			&n.DatumHash,
			&n.DatumCBOR,
			&n.Class,
			&n.BlockHeight,
			&n.Slot,
			&n.BlockTime,
			&n.SpentByTx,
			&n.SpentRedeemer,
			&n.Warnings,
			&n.Amounts,
		); err != nil {
			return nil, fmt.Errorf("scan state node: %w", err)
		}
		nodes = append(nodes, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state nodes: %w", err)
	}
	return nodes, nil
}
