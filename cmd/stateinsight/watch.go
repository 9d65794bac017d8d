package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
	"github.com/goodnatureofminers/stateinsight7000/internal/metrics"
	"github.com/goodnatureofminers/stateinsight7000/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type followOptions struct {
	Interval time.Duration `long:"interval" default:"30s" description:"polling interval"`
	Persist  bool          `long:"persist" description:"store every snapshot in ClickHouse"`
}

// follower is a running watcher with its optional persister.
type follower struct {
	watcher   *analysis.Watcher
	persister *analysis.Persister
	close     func()
}

func (a *app) follow(o analysisOptions, f followOptions) (*follower, error) {
	p, err := a.prepare(o)
	if err != nil {
		return nil, err
	}
	closers := []func(){p.close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		publisher analysis.Publisher
		persister *analysis.Persister
	)
	if f.Persist {
		repo, err := a.newRepository()
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, func() { _ = repo.Close() })
		persister, err = analysis.NewPersister(repo, a.logger.Named("persister"))
		if err != nil {
			closeAll()
			return nil, err
		}
		publisher = persister
	}

	w, err := analysis.NewWatcher(p.analyzer, p.source, p.schema, analysis.WatcherConfig{
		Address:    p.address,
		Interval:   f.Interval,
		PageSize:   o.PageSize,
		SchemaPath: o.Schema,
	}, metrics.NewWatcher(a.opts.network()), publisher, a.logger.Named("watcher"))
	if err != nil {
		closeAll()
		return nil, err
	}
	return &follower{watcher: w, persister: persister, close: closeAll}, nil
}

// run drives the watcher until ctx ends; the persister is drained afterwards.
func (f *follower) run(ctx context.Context) error {
	if f.persister != nil {
		f.persister.Start(ctx)
		defer f.persister.Stop()
	}
	return f.watcher.Run(ctx)
}

type watchCommand struct {
	app *app

	Analysis analysisOptions `group:"Analysis"`
	Follow   followOptions   `group:"Watch"`
	Output   string          `short:"o" long:"output" default:"tui" choice:"tui" choice:"json" choice:"table" description:"output format; json and table print every snapshot"`
}

func (c *watchCommand) Execute(_ []string) error {
	a := c.app
	f, err := a.follow(c.Analysis, c.Follow)
	if err != nil {
		return err
	}
	defer f.close()

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.run(ctx)
	})

	if c.Output == outputTUI {
		g.Go(func() error {
			defer cancel()
			first, ok := <-f.watcher.Snapshots()
			if !ok {
				return nil
			}
			return runTUI(a, first, f.watcher.Snapshots())
		})
	} else {
		g.Go(func() error {
			for res := range f.watcher.Snapshots() {
				if err := write(a.out, c.Output, res); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type serveCommand struct {
	app *app

	Analysis analysisOptions `group:"Analysis"`
	Follow   followOptions   `group:"Watch"`
	Addr     string          `long:"addr" env:"STATEINSIGHT_ADDR" default:":8080" description:"HTTP listen address"`
}

func (c *serveCommand) Execute(_ []string) error {
	a := c.app
	f, err := a.follow(c.Analysis, c.Follow)
	if err != nil {
		return err
	}
	defer f.close()

	srv := transport.NewServer(c.Addr, transport.NewRouter(f.watcher, a.logger.Named("http")))
	g, ctx := errgroup.WithContext(a.ctx)
	g.Go(func() error {
		return f.run(ctx)
	})
	g.Go(func() error {
		// drain snapshots, the API reads Latest
		for range f.watcher.Snapshots() {
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("Shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		a.logger.Info("Starting HTTP server", zap.String("addr", c.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
