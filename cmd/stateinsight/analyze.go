package main

import (
	"errors"
	"fmt"

	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
	"github.com/goodnatureofminers/stateinsight7000/internal/metrics"
	"github.com/goodnatureofminers/stateinsight7000/internal/repository/clickhouse"
	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
	"github.com/goodnatureofminers/stateinsight7000/internal/source"
	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
	"go.uber.org/zap"
)

type analysisOptions struct {
	Address         string `short:"a" long:"address" description:"script address (default: the schema's)"`
	Schema          string `long:"schema" description:"contract schema file (toml or yaml)"`
	EdgeExpansion   string `long:"edge-expansion" default:"all-pairs" choice:"all-pairs" choice:"single-merge" description:"edges for transactions with several inputs and outputs"`
	MaxTransactions int    `long:"max-transactions" description:"analyze at most this many transactions"`
	PageSize        int    `long:"page-size" default:"100" description:"transactions per source page"`
	DecodeWorkers   int    `long:"decode-workers" default:"4" description:"concurrent datum decoders"`
}

// prepared is what every analysing command needs before it starts.
type prepared struct {
	schema   *schema.Schema
	address  string
	source   analysis.Source
	analyzer *analysis.Analyzer
	close    func()
}

func (a *app) prepare(o analysisOptions) (*prepared, error) {
	s, err := a.loadSchema(o.Schema)
	if err != nil {
		return nil, err
	}
	address, err := a.resolveAddress(o.Address, s)
	if err != nil {
		return nil, err
	}
	expansion, err := stategraph.ParseEdgeExpansion(o.EdgeExpansion)
	if err != nil {
		return nil, err
	}
	analyzer, err := analysis.NewAnalyzer(analysis.Config{
		Address:         address,
		Network:         a.opts.network(),
		EdgeExpansion:   expansion,
		MaxTransactions: o.MaxTransactions,
		DecodeWorkers:   o.DecodeWorkers,
	}, metrics.NewAnalysis(a.opts.network()), a.logger.Named("analysis"))
	if err != nil {
		return nil, err
	}
	src, closeSrc, err := a.newSource()
	if err != nil {
		return nil, err
	}
	startMetricsServer(a.ctx, a.opts.MetricsAddr, a.logger)
	return &prepared{schema: s, address: address, source: src, analyzer: analyzer, close: closeSrc}, nil
}

func (a *app) newRepository() (*clickhouse.Repository, error) {
	if a.opts.ClickhouseDSN == "" {
		return nil, errors.New("--clickhouse-dsn is required")
	}
	repo, err := clickhouse.NewRepository(a.opts.ClickhouseDSN, a.opts.network(), metrics.NewClickhouseRepository())
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}
	return repo, nil
}

type analyzeCommand struct {
	app *app

	Analysis analysisOptions `group:"Analysis"`
	Output   string          `short:"o" long:"output" default:"tui" choice:"tui" choice:"json" choice:"table" choice:"dot" description:"output format"`
	Persist  bool            `long:"persist" description:"store the run in ClickHouse"`
}

func (c *analyzeCommand) Execute(_ []string) error {
	a := c.app
	p, err := a.prepare(c.Analysis)
	if err != nil {
		return err
	}
	defer p.close()

	txs, err := source.FetchAll(a.ctx, p.source, p.address, source.OrderAsc, c.Analysis.PageSize, c.Analysis.MaxTransactions)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}
	a.logger.Info("fetched transactions", zap.String("address", p.address), zap.Int("count", len(txs)))

	res, err := p.analyzer.Run(a.ctx, txs, p.schema)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		a.logger.Warn("analysis warning", zap.String("warning", w))
	}

	if c.Persist {
		repo, err := a.newRepository()
		if err != nil {
			return err
		}
		defer func() {
			_ = repo.Close()
		}()
		if err := analysis.Save(a.ctx, repo, res); err != nil {
			return err
		}
		a.logger.Info("stored analysis run", zap.String("run_id", res.RunID))
	}

	if c.Output == outputTUI {
		return runTUI(a, res, nil)
	}
	return write(a.out, c.Output, res)
}
