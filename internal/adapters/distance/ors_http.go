package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"moving-quote-service/internal/domain"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxAttempts   = 4
	maxRetryAfter = 5 * time.Second
	maxErrorBody  = 4096
)

// statusError is a non-2xx answer from OpenRouteService.
type statusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ors status %d: %s", e.Code, e.Body)
}

// Rate limits and server-side failures are worth another attempt; other client errors are not.
func (e *statusError) retryable() bool {
	switch e.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// callJSON sends one ORS request with retries and decodes the JSON answer into out.
// Every failure wraps domain.ErrProviderUnavailable.
func (o *ORSClient) callJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode %s request: %w", domain.ErrProviderUnavailable, path, err)
		}
		payload = b
	}

	endpoint := o.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		return o.newRequest(ctx, method, endpoint, r)
	})
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrProviderUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrProviderUnavailable, path, err)
	}
	return nil
}

func (o *ORSClient) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (o *ORSClient) do(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	return nil, &statusError{
		Code:       resp.StatusCode,
		Body:       strings.TrimSpace(string(b)),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// doWithRetry retries transient failures with exponential backoff. A Retry-After
// header on a rate-limited answer replaces the backoff for that attempt.
func (o *ORSClient) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := o.backoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := o.do(req)
		if err == nil {
			return resp, nil
		}

		wait, retry := retryPlan(err, backoff)
		if !retry || attempt == maxAttempts {
			return nil, err
		}

		zap.L().Debug("retrying ors request",
			zap.String("path", req.URL.Path),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}
}

func retryPlan(err error, backoff time.Duration) (time.Duration, bool) {
	var se *statusError
	if errors.As(err, &se) {
		if !se.retryable() {
			return 0, false
		}
		if se.RetryAfter > 0 {
			return se.RetryAfter, true
		}
		return backoff, true
	}

	// The caller's deadline is final; other network errors are transient.
	var netErr net.Error
	if errors.As(err, &netErr) && !errors.Is(err, context.DeadlineExceeded) {
		return backoff, true
	}
	return 0, false
}

// parseRetryAfter reads a delay in seconds; HTTP dates and absurd values are ignored.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}
