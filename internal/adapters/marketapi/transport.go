package marketapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"stockCharts/internal/ports"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxRetries  = 3
	defaultRetryDelay  = 500 * time.Millisecond
	defaultDelay429    = 5 * time.Second
	maxLoggedBody      = 200
)

// transport performs GET requests with retries. Transient failures (network
// errors, 5xx and 429) are retried; other statuses fail immediately.
type transport struct {
	client     *http.Client
	logger     ports.Logger
	maxRetries int
	retryDelay time.Duration
	delay429   time.Duration
}

func newTransport(client *http.Client, logger ports.Logger) *transport {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &transport{
		client:     client,
		logger:     logger,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		delay429:   defaultDelay429,
	}
}

// get returns the body of a 200 response for url. logURL is url with credentials removed.
func (t *transport) get(ctx context.Context, url, logURL string) ([]byte, error) {
	var lastErr error
	var lastStatus int
	for attempt := 0; attempt < t.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := t.retryDelay
			if lastStatus == http.StatusTooManyRequests {
				backoff = t.delay429
			}
			t.logger.Debug(ctx, "Retrying upstream request", map[string]interface{}{
				"url": logURL, "attempt": attempt, "backoff": backoff.String(),
			})
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ports.ErrTimeout, ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ports.ErrInvalidRequest, err)
		}
		req.Header.Set("Accept", "application/json")
		resp, err := t.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ports.ErrProviderUnavailable, err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: read body: %v", ports.ErrProviderUnavailable, err)
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		lastStatus = resp.StatusCode
		lastErr = statusError(resp.StatusCode, body)
		t.logger.Warn(ctx, "Upstream returned non-OK status", map[string]interface{}{
			"url": logURL, "status": resp.StatusCode, "body": truncateForLog(body),
		})
		if !retryable(resp.StatusCode) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// statusError maps an HTTP status to the matching sentinel.
func statusError(status int, body []byte) error {
	var mapped error
	switch {
	case status == http.StatusTooManyRequests:
		mapped = ports.ErrRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		mapped = ports.ErrAuthenticationFailed
	case status == http.StatusNotFound:
		mapped = ports.ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		mapped = ports.ErrInvalidRequest
	case status >= 500:
		mapped = ports.ErrProviderUnavailable
	default:
		mapped = ports.ErrUnknown
	}
	return fmt.Errorf("%w: http %d: %s", mapped, status, truncateForLog(body))
}

func truncateForLog(b []byte) string {
	if len(b) <= maxLoggedBody {
		return string(b)
	}
	return string(b[:maxLoggedBody]) + "..."
}
