// Package blockfrost reads script address history from the Blockfrost REST API.
package blockfrost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const maxRetryDelay = 30 * time.Second

var baseURLs = map[model.Network]string{
	model.Mainnet: "https://cardano-mainnet.blockfrost.io/api/v0",
	model.Preprod: "https://cardano-preprod.blockfrost.io/api/v0",
	model.Preview: "https://cardano-preview.blockfrost.io/api/v0",
	model.Testnet: "https://cardano-testnet.blockfrost.io/api/v0",
}

// Config configures the API client.
type Config struct {
	ProjectID string
	Network   model.Network
	// BaseURL overrides the per-network endpoint.
	BaseURL     string
	RPS         int
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
	Concurrency int
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("blockfrost: status %d", e.Code)
	}
	return fmt.Sprintf("blockfrost: status %d: %s", e.Code, e.Message)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	var de *decodeError
	return !errors.As(err, &de)
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// Client is a rate limited, retrying Blockfrost client implementing source.Source.
type Client struct {
	http        *http.Client
	baseURL     string
	projectID   string
	limiter     ratelimit.Limiter
	breaker     *gobreaker.CircuitBreaker
	metrics     Metrics
	logger      *zap.Logger
	// timer is nil outside tests.
	timer       backoff.Timer
	maxRetries  int
	retryDelay  time.Duration
	concurrency int
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config, metrics Metrics, logger *zap.Logger) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("blockfrost project id is required")
	}
	if metrics == nil {
		return nil, errors.New("blockfrost metrics is required")
	}
	base := cfg.BaseURL
	if base == "" {
		var ok bool
		if base, ok = baseURLs[cfg.Network]; !ok {
			return nil, fmt.Errorf("no blockfrost endpoint for network %q", cfg.Network)
		}
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	logger = logger.Named("blockfrost").With(zap.String("network", string(cfg.Network)))

	c := &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(base, "/"),
		projectID:   cfg.ProjectID,
		limiter:     ratelimit.New(cfg.RPS),
		metrics:     metrics,
		logger:      logger,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		concurrency: cfg.Concurrency,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "blockfrost",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", zap.Stringer("from", from), zap.Stringer("to", to))
			metrics.SetBreakerOpen(to == gobreaker.StateOpen)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
	})
	return c, nil
}

// get fetches path and decodes the JSON body into out, retrying transient failures.
func (c *Client) get(ctx context.Context, operation, path string, query url.Values, out any) (err error) {
	started := time.Now()
	defer func() {
		observed := err
		if isNotFound(err) {
			observed = nil
		}
		c.metrics.Observe(operation, observed, started)
	}()

	attempts := 0
	op := func() error {
		attempts++
		callErr := c.attempt(ctx, path, query, out)
		if callErr != nil && !retryable(callErr) {
			return backoff.Permanent(callErr)
		}
		return callErr
	}
	notify := func(retryErr error, delay time.Duration) {
		c.metrics.ObserveRetry(operation)
		c.logger.Debug("retrying request",
			zap.String("operation", operation),
			zap.Int("attempt", attempts),
			zap.Duration("delay", delay),
			zap.Error(retryErr),
		)
	}
	return backoff.RetryNotifyWithTimer(op, c.newBackOff(ctx), notify, c.timer)
}

// newBackOff returns the jittered exponential schedule for one request, bounded by maxRetries and ctx.
func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryDelay
	exp.MaxInterval = maxRetryDelay
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)
}

func (c *Client) attempt(ctx context.Context, path string, query url.Values, out any) error {
	c.limiter.Take()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, path, query, out)
	})
	return err
}

func (c *Client) do(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("project_id", c.projectID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &body)
		return &StatusError{Code: resp.StatusCode, Message: body.Message}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}
