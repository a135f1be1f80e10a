package takeoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Fetcher pulls the complete measurement hierarchy for a (document, page)
// key. Implementations must not cache: every call is a fresh full-state
// pull, which is the reconciliation primitive.
type Fetcher interface {
	Fetch(ctx context.Context, documentID uuid.UUID, pageNumber int) (*PageState, error)
}

// ClientConfig contains configuration for the takeoff HTTP client.
type ClientConfig struct {
	// BaseURL is the base URL of the takeoff service.
	// Example: "http://localhost:8000"
	BaseURL string

	// Timeout is the maximum duration for a single request attempt.
	// Default: 30s
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts after the
	// initial request. Default: 3
	MaxRetries int

	// MaxIdleConns controls connection pool size.
	MaxIdleConns int

	// MaxIdleConnsPerHost controls per-host connection pool size.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept.
	IdleConnTimeout time.Duration
}

// Health tracks the observed health of the takeoff service.
type Health struct {
	// IsHealthy indicates whether the service is currently considered healthy
	IsHealthy bool

	// LastCheck is when the health status was last updated
	LastCheck time.Time

	// ConsecutiveFailures counts failures since the last success
	ConsecutiveFailures int

	// LastError is the most recent error (nil if healthy)
	LastError error

	// LastSuccessfulFetch is when a snapshot was last pulled successfully
	LastSuccessfulFetch time.Time

	// TotalFetches and FailedFetches are lifetime counters
	TotalFetches  int64
	FailedFetches int64
}

// Client is the HTTP implementation of Fetcher. It provides connection
// pooling, bounded exponential-backoff retry, timeout handling, and health
// monitoring of the takeoff service.
type Client struct {
	config ClientConfig
	client *http.Client
	logger *slog.Logger

	health   Health
	healthMu sync.RWMutex

	// onRetry, when set, is invoked once per retry attempt (for metrics)
	onRetry func()
}

// unhealthyThreshold is the number of consecutive failures after which the
// takeoff service is reported unhealthy.
const unhealthyThreshold = 3

// NewClient creates a takeoff client with connection pooling.
func NewClient(config ClientConfig) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: slog.Default().With("component", "takeoff.client"),
		health: Health{
			IsHealthy: true, // Start optimistic
			LastCheck: time.Now(),
		},
	}
}

// OnRetry registers a callback invoked once per retry attempt.
func (c *Client) OnRetry(fn func()) {
	c.onRetry = fn
}

// IsHealthy returns the current health status of the takeoff service.
func (c *Client) IsHealthy() bool {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health.IsHealthy
}

// GetHealth returns detailed health information.
func (c *Client) GetHealth() Health {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health
}

// updateHealth records the outcome of a fetch.
func (c *Client) updateHealth(success bool, err error) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	c.health.LastCheck = time.Now()
	c.health.TotalFetches++

	if success {
		c.health.IsHealthy = true
		c.health.ConsecutiveFailures = 0
		c.health.LastError = nil
		c.health.LastSuccessfulFetch = time.Now()
		return
	}

	c.health.FailedFetches++
	c.health.ConsecutiveFailures++
	c.health.LastError = err

	if c.health.ConsecutiveFailures >= unhealthyThreshold {
		c.health.IsHealthy = false
		c.logger.Warn("takeoff service marked unhealthy",
			"consecutive_failures", c.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// Fetch pulls the full page state for the given key. Transient failures
// (transport errors, 5xx) are retried with exponential backoff up to
// MaxRetries; 4xx responses and context cancellation are not retried.
// On exhaustion it returns a *FetchError. A context deadline surfaces
// as *TimeoutError; caller cancellation is returned as context.Canceled.
func (c *Client) Fetch(ctx context.Context, documentID uuid.UUID, pageNumber int) (*PageState, error) {
	endpoint, err := c.stateURL(documentID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to build state URL: %w", err)
	}

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			c.logger.Debug("retrying state fetch",
				"document_id", documentID,
				"page_number", pageNumber,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)
			if c.onRetry != nil {
				c.onRetry()
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		attempts++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err

			if ctx.Err() != nil {
				c.updateHealth(false, err)
				if errors.Is(ctx.Err(), context.Canceled) {
					return nil, ctx.Err()
				}
				return nil, &TimeoutError{Timeout: c.config.Timeout}
			}

			c.logger.Warn("state fetch failed, will retry",
				"document_id", documentID,
				"page_number", pageNumber,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			state, err := decodeState(resp.Body)
			resp.Body.Close()
			if err != nil {
				c.updateHealth(false, err)
				return nil, err
			}
			c.updateHealth(true, nil)
			return state, nil
		}

		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client error: retrying cannot help
			ferr := &FetchError{
				StatusCode: resp.StatusCode,
				Attempts:   attempts,
				Message:    string(errorBody),
			}
			c.updateHealth(false, ferr)
			return nil, ferr
		}

		lastErr = &FetchError{
			StatusCode: resp.StatusCode,
			Attempts:   attempts,
			Message:    string(errorBody),
		}
		c.logger.Warn("state fetch returned error status, will retry",
			"document_id", documentID,
			"page_number", pageNumber,
			"status", resp.StatusCode,
			"attempt", attempt+1,
		)
	}

	ferr := &FetchError{
		Attempts: attempts,
		Message:  "retries exhausted",
		Cause:    lastErr,
	}
	if fe, ok := lastErr.(*FetchError); ok {
		ferr.StatusCode = fe.StatusCode
		ferr.Message = fe.Message
		ferr.Cause = fe.Cause
	}
	c.updateHealth(false, ferr)
	return nil, ferr
}

// stateURL builds the GetAllConditionsState URL for the given key.
func (c *Client) stateURL(documentID uuid.UUID, pageNumber int) (string, error) {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	rel := &url.URL{Path: "/api/Conditions/GetAllConditionsState"}
	u := base.ResolveReference(rel)

	q := u.Query()
	q.Set("documentId", documentID.String())
	q.Set("pageNumber", strconv.Itoa(pageNumber))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// decodeState parses a page state response body.
func decodeState(r io.Reader) (*PageState, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Cause: fmt.Errorf("failed to read response: %w", err)}
	}

	var state PageState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, &ParseError{Cause: fmt.Errorf("failed to unmarshal response: %w", err)}
	}

	return &state, nil
}
