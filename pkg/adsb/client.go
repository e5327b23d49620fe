package adsb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout for feed requests
	DefaultTimeout = 10 * time.Second

	// DefaultRequestsPerSecond is the client-side request budget.
	// airplanes.live documents 1 request per second; RapidAPI plans are
	// metered per month, so the same budget is a safe default.
	DefaultRequestsPerSecond = 1.0
)

// ClientConfig contains settings shared by every feed client.
type ClientConfig struct {
	// BaseURL is the API base URL (custom for testing)
	BaseURL string

	// APIKey is the provider key, sent only by providers that need one
	APIKey string

	// Host is the RapidAPI host header value (ADS-B Exchange only)
	Host string

	// RequestsPerSecond limits the API call rate (0 = DefaultRequestsPerSecond)
	RequestsPerSecond float64

	// Timeout for each request (0 = DefaultTimeout)
	Timeout time.Duration
}

// httpFeed holds the request plumbing common to the feed clients.
type httpFeed struct {
	// baseURL is the API base URL
	baseURL string

	// httpClient is the HTTP client used for API requests
	httpClient *http.Client

	// rateLimiter enforces the client-side request budget
	rateLimiter *rate.Limiter

	// headers are added to every request
	headers http.Header
}

func newHTTPFeed(cfg ClientConfig) httpFeed {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return httpFeed{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		headers:     http.Header{},
	}
}

// fetch performs one GET against url and decodes the aircraft list.
func (f *httpFeed) fetch(ctx context.Context, url string) ([]Record, error) {
	// Wait for rate limiter
	if err := f.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range f.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft data: %w", err)
	}
	defer resp.Body.Close()

	// Check for rate limit (HTTP 429)
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "Rate limit exceeded",
			Headers:    extractRateLimitHeaders(resp.Header),
		}
	}

	// Check other error status codes
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	// Parse response
	var apiResp feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	return apiResp.Aircraft, nil
}

// StatusError is returned when the feed answers with a non-success status
// other than 429.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}
