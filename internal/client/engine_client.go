// Package client talks to the remote backtest/scan computation engine.
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

	"golang.org/x/time/rate"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:5000"
	DefaultTimeout   = 60 * time.Second
	DefaultRateLimit = 5 // requests per second

	maxResponseSize = 32 << 20
)

// EngineClient calls the engine's JSON API.
type EngineClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*EngineClient)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *EngineClient) {
		c.logger = logger
	}
}

// WithRateLimit sets the request rate; zero or less disables limiting.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *EngineClient) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *EngineClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *EngineClient) {
		c.httpClient = hc
	}
}

// NewEngineClient creates a client for the engine at baseURL.
func NewEngineClient(baseURL string, opts ...ClientOption) *EngineClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &EngineClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the engine address.
func (c *EngineClient) BaseURL() string { return c.baseURL }

// RemoteError is a failed engine call. Message is the engine's own error
// text when it sent one, otherwise a generic transport message.
type RemoteError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.Err }

// Backtest runs POST /api/backtest.
func (c *EngineClient) Backtest(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error) {
	var result models.BacktestResult
	if err := c.do(ctx, http.MethodPost, "/api/backtest", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Scan runs POST /api/scan.
func (c *EngineClient) Scan(ctx context.Context, req models.ScanRequest) ([]models.ScanRow, error) {
	var rows []models.ScanRow
	if err := c.do(ctx, http.MethodPost, "/api/scan", req, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Screener runs POST /api/screener and returns the matching tickers.
func (c *EngineClient) Screener(ctx context.Context, req models.ScreenerRequest) ([]string, error) {
	var tickers []string
	if err := c.do(ctx, http.MethodPost, "/api/screener", req, &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// Tickers fetches the ticker catalog from GET /api/all-tickers.
func (c *EngineClient) Tickers(ctx context.Context) ([]string, error) {
	var tickers []string
	if err := c.do(ctx, http.MethodGet, "/api/all-tickers", nil, &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// Ping checks that the engine answers at its root. Any status below 500
// counts as reachable. Pings bypass the rate limiter.
func (c *EngineClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Message: "engine unreachable", Endpoint: "/", Err: err}
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &RemoteError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("engine returned %d", resp.StatusCode), Endpoint: "/"}
	}
	return nil
}

// do performs a rate-limited JSON request and decodes the response into result.
func (c *EngineClient) do(ctx context.Context, method, path string, data, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var bodyReader io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("Engine request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error().Str("method", method).Str("path", path).Int64("duration_ms", duration.Milliseconds()).Err(err).Msg("Engine request failed")
		return &RemoteError{Endpoint: path, Message: "could not reach the computation engine", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &RemoteError{StatusCode: resp.StatusCode, Endpoint: path, Message: "failed to read engine response", Err: err}
	}

	c.logger.Debug().Str("path", path).Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("Engine response")

	if resp.StatusCode >= 400 {
		return parseErrorResponse(path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(sanitizeNonFinite(body), result); err != nil {
		return &RemoteError{StatusCode: resp.StatusCode, Endpoint: path, Message: "engine returned an unreadable response", Err: err}
	}
	return nil
}

// parseErrorResponse extracts the engine's {"error": "..."} message.
func parseErrorResponse(path string, statusCode int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &RemoteError{StatusCode: statusCode, Endpoint: path, Message: errResp.Error}
	}
	return &RemoteError{StatusCode: statusCode, Endpoint: path, Message: fmt.Sprintf("engine returned %d", statusCode)}
}
