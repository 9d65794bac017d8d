package main

import (
	"errors"
	"fmt"

	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/repository/clickhouse"
	"go.uber.org/zap"
)

type showCommand struct {
	app *app

	RunID   string `long:"run-id" description:"stored run to render"`
	Address string `short:"a" long:"address" description:"render the latest run of this address"`
	Schema  string `long:"schema" description:"contract schema used for field names and labels"`
	Output  string `short:"o" long:"output" default:"table" choice:"tui" choice:"json" choice:"table" choice:"dot" description:"output format"`
}

func (c *showCommand) Execute(_ []string) error {
	a := c.app
	if c.RunID == "" && c.Address == "" {
		return errors.New("either --run-id or --address is required")
	}
	s, err := a.loadSchema(c.Schema)
	if err != nil {
		return err
	}
	repo, err := a.newRepository()
	if err != nil {
		return err
	}
	defer func() {
		_ = repo.Close()
	}()

	var run model.AnalysisRun
	if c.RunID != "" {
		run, err = repo.AnalysisRun(a.ctx, c.RunID)
	} else {
		run, err = repo.LatestAnalysisRun(a.ctx, c.Address)
	}
	if errors.Is(err, clickhouse.ErrNotFound) {
		return fmt.Errorf("no stored run found: %w", err)
	}
	if err != nil {
		return err
	}

	nodes, err := repo.StateNodes(a.ctx, run.RunID)
	if err != nil {
		return err
	}
	transitions, err := repo.Transitions(a.ctx, run.RunID)
	if err != nil {
		return err
	}
	res, err := analysis.FromRows(run, nodes, transitions, s)
	if err != nil {
		return fmt.Errorf("rebuild run %s: %w", run.RunID, err)
	}
	a.logger.Info("loaded analysis run",
		zap.String("run_id", run.RunID),
		zap.String("address", run.Address),
		zap.Time("created_at", run.CreatedAt),
	)

	if c.Output == outputTUI {
		return runTUI(a, res, nil)
	}
	return write(a.out, c.Output, res)
}
