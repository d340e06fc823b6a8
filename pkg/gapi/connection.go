package gapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// gzipThreshold is the smallest request body worth compressing.
const gzipThreshold = 1024

// Connection issues JSON requests against one REST service root, e.g.
// https://pubsub.googleapis.com/v1. It is shared by reference between all
// handles created from a client and is never mutated after construction.
type Connection struct {
	service string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	limiter *rate.Limiter
	gzip    bool
}

// Option configures a Connection.
type Option func(*Connection)

// WithHTTPClient sets the client used for round trips, typically an authenticated one.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connection) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit paces outgoing requests to rps per second. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Connection) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithGzip enables gzip request bodies for payloads above a small threshold.
func WithGzip(enabled bool) Option {
	return func(c *Connection) {
		c.gzip = enabled
	}
}

// NewConnection returns a Connection for the named service rooted at baseURL.
func NewConnection(service, baseURL string, opts ...Option) *Connection {
	c := &Connection{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the connection was built with.
func (c *Connection) BaseURL() string {
	return c.baseURL
}

// Response is a successful (2xx) reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the JSON body into out. Empty bodies leave out untouched.
func (r *Response) Decode(out any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Connection) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

func (c *Connection) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

func (c *Connection) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

func (c *Connection) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do performs one round trip. Non-2xx replies are returned as *APIError.
func (c *Connection) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	requestDuration.WithLabelValues(c.service).Observe(elapsed.Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(c.service, method, "error").Inc()
		c.logger.Debug("request failed",
			zap.String("service", c.service),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	requestsTotal.WithLabelValues(c.service, method, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("request done",
		zap.String("service", c.service),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, data)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func (c *Connection) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var (
		reader   io.Reader
		encoding string
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		if c.gzip && len(data) >= gzipThreshold {
			data, err = compress(data)
			if err != nil {
				return nil, err
			}
			encoding = "gzip"
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}

	return req, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress request: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress request: %w", err)
	}
	return buf.Bytes(), nil
}
