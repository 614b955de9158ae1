// Package binance implements the venue connector for the Binance spot REST API.
package binance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/pkg/ratelimit"
)

const (
	defaultBaseURL          = "https://api.binance.com"
	defaultHTTPTimeout      = 10 * time.Second
	defaultRetryBackoffBase = 150 * time.Millisecond

	codeInvalidSymbol = -1121
)

// ErrSymbolNotFound indicates that the requested symbol is not listed.
var ErrSymbolNotFound = errors.New("binance: symbol not found")

// APIError is the error envelope Binance returns with non-2xx responses.
type APIError struct {
	Status int    `json:"-"`
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance: http status %d: code %d: %s", e.Status, e.Code, e.Msg)
}

// Client talks to the public, unauthenticated market endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	limiter    *ratelimit.Limiter
	now        func() time.Time
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the REST host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithMaxRetries adjusts the per-request retry budget.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
	}
}

// WithRateLimit spaces outgoing requests at least interval apart.
func WithRateLimit(interval time.Duration) Option {
	return func(c *Client) {
		c.limiter = ratelimit.New(interval)
	}
}

// WithClock overrides the time source used where Binance omits timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a Binance REST client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// get issues a GET against path and decodes the JSON body into result.
// Transport failures and 5xx/429 responses are retried; 4xx responses are not.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var lastErr error
	backoff := defaultRetryBackoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var retryable bool
		retryable, lastErr = c.do(ctx, endpoint, result)
		if lastErr == nil || !retryable || ctx.Err() != nil {
			return lastErr
		}
		if attempt < c.maxRetries {
			logx.WithContext(ctx).Debugf("binance: GET %s attempt %d failed: %v", path, attempt+1, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, endpoint string, result any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("binance: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("binance: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode}
		if sonic.ConfigFastest.Unmarshal(body, apiErr) != nil || apiErr.Msg == "" {
			apiErr.Msg = strings.TrimSpace(string(body))
		}
		if apiErr.Code == codeInvalidSymbol {
			return false, fmt.Errorf("%w: %s", ErrSymbolNotFound, apiErr.Msg)
		}
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return retryable, apiErr
	}
	if result == nil {
		return false, nil
	}
	if err := sonic.ConfigFastest.NewDecoder(resp.Body).Decode(result); err != nil {
		return false, fmt.Errorf("binance: decode response: %w", err)
	}
	return false, nil
}

// MarketID maps a unified symbol such as BTC/USDT to the venue id BTCUSDT.
func MarketID(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if base, _, ok := strings.Cut(s, ":"); ok {
		s = base
	}
	return strings.ReplaceAll(s, "/", "")
}
