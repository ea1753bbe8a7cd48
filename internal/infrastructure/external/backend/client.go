// Package backend implements the SkillSpring backend API client.
// This package handles all communication with the backend platform,
// including the four dashboard feeds, the AI assistant endpoint, and
// raw passthrough for the learning resource proxy routes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/assistant"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/learning"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
	"github.com/skillspring-hub/skillspring-dashboard/pkg/circuitbreaker"
	"github.com/skillspring-hub/skillspring-dashboard/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the backend API client.
type ClientConfig struct {
	// BaseURL is the backend API base URL
	BaseURL string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RateLimiterConfig for API rate limiting
	RateLimiterConfig RateLimiterConfig

	// CircuitBreakerConfig for fault tolerance
	CircuitBreakerConfig circuitbreaker.Config

	// RetryConfig for retry behavior
	RetryConfig retry.Config

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables debug logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:              baseURL,
		Timeout:              30 * time.Second,
		RateLimiterConfig:    DefaultRateLimiterConfig(),
		CircuitBreakerConfig: circuitbreaker.DefaultConfig("backend-api"),
		RetryConfig:          retry.DefaultConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the SkillSpring backend API client.
//
// The client holds no credential of its own. Every call takes the
// session's bearer token so one client instance serves all sessions.
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	logger         *slog.Logger
	rateLimiter    *RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	mapper         *Mapper
}

// NewClient creates a new backend API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:         config.Logger,
		rateLimiter:    NewRateLimiter(config.RateLimiterConfig),
		circuitBreaker: circuitbreaker.New(config.CircuitBreakerConfig),
		mapper:         NewMapper(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// FEED OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// FetchLearningPaths fetches the learning paths feed.
func (c *Client) FetchLearningPaths(ctx context.Context, token string) ([]*learning.Path, error) {
	var response PathsResponseDTO
	if err := c.doRequest(ctx, http.MethodGet, "/learning/paths", token, nil, &response); err != nil {
		return nil, fmt.Errorf("fetch learning paths: %w", err)
	}

	return c.mapper.PathsFromDTO(response), nil
}

// FetchRecommendations fetches the job recommendations feed.
func (c *Client) FetchRecommendations(ctx context.Context, token string) ([]*opportunity.JobRecommendation, error) {
	var response JobsResponseDTO
	if err := c.doRequest(ctx, http.MethodGet, "/jobs/recommendations", token, nil, &response); err != nil {
		return nil, fmt.Errorf("fetch recommendations: %w", err)
	}

	return c.mapper.JobsFromDTO(response), nil
}

// FetchStats fetches the dashboard stats feed.
func (c *Client) FetchStats(ctx context.Context, token string) (shared.DashboardStats, error) {
	var response StatsDTO
	if err := c.doRequest(ctx, http.MethodGet, "/student/dashboard/stats", token, nil, &response); err != nil {
		return shared.DashboardStats{}, fmt.Errorf("fetch stats: %w", err)
	}

	return c.mapper.StatsFromDTO(response), nil
}

// FetchOpportunities fetches the live opportunities feed.
func (c *Client) FetchOpportunities(ctx context.Context, token string) (opportunity.Snapshot, error) {
	var response OpportunitiesResponseDTO
	if err := c.doRequest(ctx, http.MethodGet, "/opportunities/live", token, nil, &response); err != nil {
		return opportunity.EmptySnapshot(), fmt.Errorf("fetch opportunities: %w", err)
	}

	return c.mapper.SnapshotFromDTO(response), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSISTANT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Ask sends a chat message to the AI assistant and returns its reply verbatim.
func (c *Client) Ask(ctx context.Context, token, message string, actx assistant.Context) (string, error) {
	request := AssistantRequestDTO{
		Message: message,
		Context: AssistantContextDTO{
			Role:       actx.Role,
			Profession: actx.Profession,
		},
	}

	var response AssistantResponseDTO
	if err := c.doRequest(ctx, http.MethodPost, "/ai/chat/student-assistant", token, request, &response); err != nil {
		return "", fmt.Errorf("ask assistant: %w", err)
	}

	return response.Response, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PROXY PASSTHROUGH
// ══════════════════════════════════════════════════════════════════════════════

// Forward performs a raw GET against the backend, passing the caller's
// Authorization header through unchanged and returning the response body.
// Proxy traffic is interactive, so it skips the retry loop and the
// circuit breaker; a failure surfaces to the caller immediately.
func (c *Client) Forward(ctx context.Context, authHeader, path string) ([]byte, error) {
	if authHeader == "" {
		return nil, shared.ErrNoCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, shared.WrapError("backend", "Forward", shared.ErrServiceUnavailable, "upstream request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, shared.WrapError("backend", "Forward", shared.ErrExternalService, "upstream returned an error",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	return body, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs an HTTP request with rate limiting, circuit breaking, and retries.
// An empty token fails before any network traffic happens.
func (c *Client) doRequest(ctx context.Context, method, path, token string, body any, result any) error {
	if token == "" {
		return shared.ErrNoCredential
	}

	if err := c.circuitBreaker.Allow(); err != nil {
		return shared.WrapError("backend", "Request", shared.ErrServiceUnavailable, "circuit breaker rejected request", err)
	}

	cfg := c.config.RetryConfig
	cfg.RetryIf = isRetryable
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.logger.Warn("backend request retry",
			"method", method, "path", path, "attempt", attempt, "delay", delay, "error", err)

		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.rateLimiter.RecordRateLimitHit(rateLimitErr.RetryAfter)
		}
	}

	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		if err := c.rateLimiter.Allow(ctx); err != nil {
			return retry.Permanent(fmt.Errorf("rate limiter: %w", err))
		}
		return c.doSingleRequest(ctx, method, path, token, body, result)
	})
	if err != nil {
		c.circuitBreaker.RecordFailure()
		return c.classify(err)
	}

	c.circuitBreaker.RecordSuccess()
	return nil
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, method, path, token string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return retry.Permanent(fmt.Errorf("marshal body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	if c.config.Debug {
		c.logger.Debug("backend api request", "method", method, "path", path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "rate limit exceeded",
		}
	}

	// Credential problems will not heal on retry.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return retry.Permanent(shared.WrapError("backend", "Request", shared.ErrUnauthorized,
			"backend rejected credential", fmt.Errorf("status %d", resp.StatusCode)))
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIErrorDTO{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode < 500 {
			return retry.Permanent(apiErr)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return retry.Permanent(fmt.Errorf("unmarshal response: %w", err))
		}
	}

	return nil
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}

	// Transport-level failures are generally worth another attempt.
	return true
}

// classify maps a settled request error onto the shared backend taxonomy.
func (c *Client) classify(err error) error {
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return shared.WrapError("backend", "Request", shared.ErrRateLimited, "backend API rate limit exceeded", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return shared.WrapError("backend", "Request", shared.ErrTimeout, "backend API request timeout", err)
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 500 {
			return shared.WrapError("backend", "Request", shared.ErrServiceUnavailable, "backend API is unavailable", err)
		}
		return shared.WrapError("backend", "Request", shared.ErrExternalService, "backend API rejected request", err)
	}

	return shared.WrapError("backend", "Request", shared.ErrServiceUnavailable, "backend API is unreachable", err)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy checks if the backend API is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// ClientStatus is a point-in-time view of the client's protective layers.
type ClientStatus struct {
	RateLimiter    RateLimiterStatus
	CircuitBreaker circuitbreaker.Status
}

// Status returns the current status of the client.
func (c *Client) Status() ClientStatus {
	return ClientStatus{
		RateLimiter:    c.rateLimiter.Status(),
		CircuitBreaker: c.circuitBreaker.Status(),
	}
}

// Reset resets the rate limiter and circuit breaker.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.circuitBreaker.Reset()
}
