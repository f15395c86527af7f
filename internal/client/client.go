// Package client talks to the remote governance control plane: policy
// retrieval, evaluation submission, and metrics push. It never sends
// governed text, only receipts and aggregates.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/govgate/govgate/internal/logger"
)

// Config configures the API client. Callers construct and own it; there
// is no package-level default client.
type Config struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	Logger         *logger.Logger
	UserAgent      string
}

// Client is the API entry point. Resource groups hang off it.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logger.Logger

	Policies    *PolicyService
	Evaluations *EvaluationService
	Metrics     *MetricsService
}

// New validates cfg and builds a client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = 500 * time.Millisecond
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "govgate/0.1.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger.WithComponent("client"),
	}
	c.Policies = &PolicyService{client: c}
	c.Evaluations = &EvaluationService{client: c}
	c.Metrics = &MetricsService{client: c}
	return c, nil
}

// APIError is a non-retryable response from the control plane.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// do issues one request with exponential-backoff retry. Server errors
// and transport failures retry up to MaxRetries; client errors are
// permanent and surface immediately as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + path

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("request failed, will retry",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err),
			)
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return data, nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			c.logger.Warn("server error, will retry",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
			)
			return nil, fmt.Errorf("server error: status %d", resp.StatusCode)
		default:
			return nil, backoff.Permanent(&APIError{
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(data)),
			})
		}
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.cfg.BackoffInitial
	expo.MaxInterval = c.cfg.BackoffMax

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries)),
	)
	if err != nil {
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
