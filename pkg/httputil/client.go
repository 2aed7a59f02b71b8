package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/wonny/vwapcast/pkg/logger"
)

// Client is an HTTP client wrapper with retry, rate limiting and logging
// ⭐ SSOT: 모든 외부 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	httpClient  *http.Client
	logger      *logger.Logger
	retryConfig RetryConfig
	limiter     *rate.Limiter
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	MaxElapsedTime time.Duration
	Enabled        bool
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// New creates a new HTTP client
// ⭐ SSOT: http.Client 인스턴스는 여기서만 생성
func New(log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // archives can be large
		},
		logger: log,
		retryConfig: RetryConfig{
			InitialDelay:   1 * time.Second,
			MaxDelay:       10 * time.Second,
			MaxElapsedTime: 1 * time.Minute,
			Enabled:        true,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// WithTimeout sets the per-request timeout
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(initialDelay, maxElapsed time.Duration) *Client {
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.MaxElapsedTime = maxElapsed
	c.retryConfig.Enabled = true
	return c
}

// DisableRetry disables automatic retry
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c
}

// WithRateLimit sets requests per second (burst 1). rps <= 0 disables limiting.
func (c *Client) WithRateLimit(rps float64) *Client {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	return c
}

// Get performs a GET request. Non-2xx responses are returned as *StatusError.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	startTime := time.Now()

	c.logger.WithField("url", url).Debug("HTTP request started")

	var resp *http.Response
	operation := func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(fmt.Errorf("rate limit wait failed: %w", err))
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create GET request: %w", err))
		}

		r, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if r.StatusCode < 200 || r.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, r.Body)
			r.Body.Close()
			statusErr := &StatusError{StatusCode: r.StatusCode, URL: url}
			if !IsRetryableError(r.StatusCode) {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}
		resp = r
		return nil
	}

	var err error
	if c.retryConfig.Enabled {
		err = backoff.RetryNotify(operation, c.backoff(ctx), func(err error, wait time.Duration) {
			c.logger.WithFields(map[string]interface{}{
				"url":   url,
				"delay": wait.String(),
				"error": err.Error(),
			}).Warn("Retrying HTTP request")
		})
	} else {
		err = operation()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	}

	duration := time.Since(startTime)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"url":      url,
			"duration": duration.String(),
			"error":    err.Error(),
		}).Error("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    duration.String(),
	}).Debug("HTTP request completed")

	return resp, nil
}

// Download fetches url into dst, writing through a temp file in the same directory
func (c *Client) Download(ctx context.Context, url, dst string) (int64, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("create download dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", url, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("move download: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"url":   url,
		"path":  dst,
		"bytes": n,
	}).Info("Download completed")

	return n, nil
}

func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryConfig.InitialDelay
	b.MaxInterval = c.retryConfig.MaxDelay
	b.MaxElapsedTime = c.retryConfig.MaxElapsedTime
	return backoff.WithContext(b, ctx)
}

// IsRetryableError checks if a status code should be retried
func IsRetryableError(statusCode int) bool {
	// Retry on 5xx server errors and 429 Too Many Requests
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
