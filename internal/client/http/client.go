package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RequestOption modifies an outgoing request.
type RequestOption func(*http.Request)

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// HTTPError is returned for responses with a 4xx or 5xx status.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// StatusCode extracts the HTTP status of err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// RetryConfig configures the retry behavior
type RetryConfig struct {
	MaxRetries           int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	Multiplier           float64
	MaxElapsedTime       time.Duration
	RetryableStatusCodes []int
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:           3,
		InitialInterval:      100 * time.Millisecond,
		MaxInterval:          5 * time.Second,
		Multiplier:           2.0,
		MaxElapsedTime:       30 * time.Second,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

func (rc *RetryConfig) retryable(status int) bool {
	for _, code := range rc.RetryableStatusCodes {
		if code == status {
			return true
		}
	}
	return false
}

func (rc *RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = rc.InitialInterval
	exp.MaxInterval = rc.MaxInterval
	exp.Multiplier = rc.Multiplier
	exp.MaxElapsedTime = rc.MaxElapsedTime
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(rc.MaxRetries)), ctx)
}

// HTTPClient is a JSON client with retries on transient failures.
type HTTPClient struct {
	httpClient     *http.Client
	baseURL        string
	defaultHeaders map[string]string
	retryConfig    *RetryConfig
	logger         *zap.Logger
}

func NewHTTPClient(options ...ClientOption) *HTTPClient {
	client := &HTTPClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		defaultHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		retryConfig: DefaultRetryConfig(),
		logger:      logger.Log,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *HTTPClient) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *HTTPClient) { c.defaultHeaders[key] = value }
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *HTTPClient) { c.httpClient.Timeout = timeout }
}

// WithRetryConfig replaces the retry policy; nil disables retries.
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *HTTPClient) { c.retryConfig = config }
}

func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *HTTPClient) { c.httpClient.Transport = rt }
}

func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) { req.Header.Set(key, value) }
}

func WithQueryParam(key, value string) RequestOption {
	return func(req *http.Request) {
		q := req.URL.Query()
		q.Add(key, value)
		req.URL.RawQuery = q.Encode()
	}
}

func (c *HTTPClient) GetBaseURL() string { return c.baseURL }

// DoJSON sends body as JSON and decodes a successful response into out,
// which may be nil. Error responses come back as *HTTPError.
func (c *HTTPClient) DoJSON(ctx context.Context, method, path string, body, out interface{}, options ...RequestOption) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
	}
	url := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	var (
		status  int
		resBody []byte
	)
	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "failed to create request"))
		}
		for k, v := range c.defaultHeaders {
			req.Header.Set(k, v)
		}
		for _, option := range options {
			option(req)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return errors.Wrapf(err, "%s %s", method, url)
		}
		defer resp.Body.Close()
		resBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "failed to read response body")
		}
		status = resp.StatusCode
		if status >= 400 {
			httpErr := &HTTPError{StatusCode: status, Method: method, URL: url, Body: string(resBody)}
			if c.retryConfig != nil && c.retryConfig.retryable(status) {
				return httpErr
			}
			return backoff.Permanent(httpErr)
		}
		return nil
	}

	start := time.Now()
	var err error
	if c.retryConfig != nil && c.retryConfig.MaxRetries > 0 {
		err = backoff.RetryNotify(operation, c.retryConfig.backOff(ctx), func(err error, wait time.Duration) {
			c.logger.Warn("Retrying HTTP request",
				zap.String("method", method),
				zap.String("url", url),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		})
	} else {
		err = operation()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	}
	duration := time.Since(start)
	if err != nil {
		c.logger.Debug("HTTP request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return err
	}
	c.logger.Debug("HTTP request successful",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	)
	if out == nil || len(resBody) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(resBody, out), "failed to decode response")
}
