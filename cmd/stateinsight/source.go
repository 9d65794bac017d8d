package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
	"github.com/goodnatureofminers/stateinsight7000/internal/metrics"
	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
	"github.com/goodnatureofminers/stateinsight7000/internal/source/blockfrost"
	"github.com/goodnatureofminers/stateinsight7000/internal/source/cache"
	"github.com/goodnatureofminers/stateinsight7000/internal/source/cborfile"
	"github.com/goodnatureofminers/stateinsight7000/internal/source/mock"
	"go.uber.org/zap"
)

const (
	sourceMock       = "mock"
	sourceBlockfrost = "blockfrost"
	sourceCBORFile   = "cborfile"
)

// newSource builds the configured transaction source. The returned close func is never nil.
func (a *app) newSource() (analysis.Source, func(), error) {
	noop := func() {}
	switch a.opts.Source {
	case sourceMock:
		return mock.New(), noop, nil
	case sourceCBORFile:
		if a.opts.CBOR == "" {
			return nil, noop, errors.New("--cbor-file is required for the cborfile source")
		}
		src, err := cborfile.Load(a.opts.CBOR)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	case sourceBlockfrost:
		return a.newBlockfrost()
	}
	return nil, noop, fmt.Errorf("unknown source %q", a.opts.Source)
}

func (a *app) newBlockfrost() (analysis.Source, func(), error) {
	noop := func() {}
	bf := a.opts.Blockfrost
	client, err := blockfrost.NewClient(blockfrost.Config{
		ProjectID:  bf.APIKey,
		Network:    a.opts.network(),
		BaseURL:    bf.BaseURL,
		RPS:        bf.RPS,
		MaxRetries: bf.MaxRetries,
		RetryDelay: bf.RetryDelay,
		Timeout:    bf.Timeout,
	}, metrics.NewBlockfrostClient(a.opts.network()), a.logger.Named("blockfrost"))
	if err != nil {
		return nil, noop, fmt.Errorf("init blockfrost client: %w", err)
	}
	if a.opts.Cache.Disabled {
		return client, noop, nil
	}

	dir := a.opts.Cache.Dir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, noop, fmt.Errorf("resolve cache dir: %w", err)
		}
		dir = filepath.Join(base, "stateinsight7000", string(a.opts.network()))
	}
	db, err := cache.OpenDB(dir, a.logger.Named("cache"))
	if err != nil {
		return nil, noop, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			a.logger.Warn("close cache", zap.Error(err))
		}
	}
	cached, err := cache.New(client, db, a.opts.Cache.TTL, metrics.NewSourceCache(), a.logger.Named("cache"))
	if err != nil {
		closeDB()
		return nil, noop, err
	}
	return cached, closeDB, nil
}

// loadSchema reads and validates path. An empty path means no schema.
func (a *app) loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return nil, nil
	}
	s, err := schema.Load(path)
	if err != nil {
		return nil, err
	}
	issues := schema.Validate(s)
	for _, issue := range issues {
		if issue.Severity == schema.SeverityWarning {
			a.logger.Warn("schema issue", zap.String("path", path), zap.String("issue", issue.Message))
		}
	}
	if schema.HasErrors(issues) {
		return nil, fmt.Errorf("schema %s is invalid, run schema-validate for details", path)
	}
	return s, nil
}

// resolveAddress picks the explicit address, then the schema's, then the mock contract's.
func (a *app) resolveAddress(address string, s *schema.Schema) (string, error) {
	if address != "" {
		return address, nil
	}
	if s != nil && s.Contract.ScriptAddress != "" {
		return s.Contract.ScriptAddress, nil
	}
	if a.opts.Source == sourceMock {
		return mock.ScriptAddress, nil
	}
	return "", errors.New("--address is required when the schema names no script address")
}
