package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"answerbot/internal/domain"
)

// retryPolicy retries transient provider failures with exponential backoff.
// Once attempts are exhausted the error wraps domain.ErrModelUnavailable, so
// callers get the pipeline's model-outage sentinel without re-wrapping.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

func newRetryPolicy(maxAttempts int, logger *slog.Logger) retryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return retryPolicy{maxAttempts: maxAttempts, baseDelay: time.Second, logger: logger}
}

// retryableStatus reports whether a response status is worth another attempt:
// rate limits and server-side errors, never 4xx client mistakes.
func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

// do executes the request until it yields a non-retryable response. buildReq
// is called per attempt since a request body reader cannot be resent.
func (p retryPolicy) do(ctx context.Context, client *http.Client, buildReq func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			base := time.Duration(attempt*attempt) * p.baseDelay
			jitter := time.Duration(rand.Int64N(int64(base/2 + 1)))
			backoff := base + jitter
			p.logger.Warn("retrying model request", "attempt", attempt+1, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			p.logger.Warn("model request failed", "error", err, "attempt", attempt+1)
			continue
		}

		if retryableStatus(resp.StatusCode) {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
			p.logger.Warn("model endpoint error", "status", resp.StatusCode, "attempt", attempt+1)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w: after %d attempts: %v", domain.ErrModelUnavailable, p.maxAttempts, lastErr)
}
