// Package httpclient provides the resilient HTTP GET helper shared by the
// upstream provider clients: bounded retries with exponential backoff,
// Retry-After awareness, a circuit breaker per upstream, and classification
// of failures into the domain error kinds.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/tyson-swetnam/raws-mcp/internal/domain"
)

// Config controls timeout and retry behaviour for one upstream.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Client wraps an http.Client with retries and a circuit breaker. One Client
// is constructed per upstream so a failing provider trips only its own
// breaker.
type Client struct {
	name    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	cfg     Config
	logger  *slog.Logger
}

// New creates a resilient client named after its upstream. The breaker opens
// after five consecutive failures and probes again after thirty seconds.
func New(name string, cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 8 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		name:    name,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		cfg:     cfg,
		logger:  logger,
	}
}

// GetJSON fetches fullURL and decodes the response body into out. Transient
// failures (network errors, 5xx, 429) are retried with exponential backoff,
// honoring any Retry-After hint when it exceeds the computed delay. Permanent
// failures (other 4xx) are returned immediately. All failures wrap a domain
// error kind, so callers classify with errors.Is.
func (c *Client) GetJSON(ctx context.Context, fullURL string, header http.Header, out any) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}

		retryAfter, err := c.attempt(ctx, fullURL, header, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt >= c.cfg.MaxRetries {
			return lastErr
		}

		delay := c.backoff(attempt)
		if retryAfter > delay {
			delay = retryAfter
		}
		c.logger.Warn("upstream request failed, retrying",
			"upstream", c.name, "attempt", attempt+1, "delay", delay, "error", err)

		if !sleepWithContext(ctx, delay) {
			return lastErr
		}
	}
}

// attempt runs one request through the breaker. The second return is the
// provider's Retry-After hint, zero when absent.
func (c *Client) attempt(ctx context.Context, fullURL string, header http.Header, out any) (time.Duration, error) {
	var retryAfter time.Duration

	_, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: create request: %v", domain.ErrBadRequest, err)
		}
		req.Header.Set("Accept", "application/json")
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUnavailable, err)
			}
			return nil, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			return nil, fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: status %d", domain.ErrStationNotFound, resp.StatusCode)
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUnavailable, resp.StatusCode, bodySnippet(resp.Body))
		default:
			return nil, fmt.Errorf("%w: status %d: %s", domain.ErrBadRequest, resp.StatusCode, bodySnippet(resp.Body))
		}
	})

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return 0, fmt.Errorf("%w: circuit breaker open for %s", domain.ErrUnavailable, c.name)
	}
	return retryAfter, err
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.cfg.BaseDelay << attempt
	if delay > c.cfg.MaxDelay || delay <= 0 {
		return c.cfg.MaxDelay
	}
	return delay
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrUnavailable)
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func bodySnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return string(b)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
