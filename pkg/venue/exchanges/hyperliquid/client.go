// Package hyperliquid implements the venue connector for the Hyperliquid
// public info endpoint.
package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/pkg/ratelimit"
)

const (
	defaultBaseURL          = "https://api.hyperliquid.xyz/info"
	defaultHTTPTimeout      = 10 * time.Second
	defaultRetryBackoffBase = 150 * time.Millisecond

	// QuoteAsset is the settlement currency every Hyperliquid perp is quoted in.
	QuoteAsset = "USDC"
)

// ErrSymbolNotFound indicates that the requested symbol is not listed.
var ErrSymbolNotFound = errors.New("hyperliquid: symbol not found")

// Client wraps access to the Hyperliquid info endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	limiter    *ratelimit.Limiter
	now        func() time.Time

	symbolsMu sync.RWMutex
	coinIndex map[string]string
	universe  map[string]UniverseEntry
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

// WithBaseURL overrides the default info endpoint URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
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

// WithClock overrides the time source used to stamp tickers and candle windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a Hyperliquid API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// doRequest posts an InfoRequest and decodes the response into result.
func (c *Client) doRequest(ctx context.Context, req InfoRequest, result any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("hyperliquid: encode request: %w", err)
	}
	var lastErr error
	backoff := defaultRetryBackoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		lastErr = c.post(ctx, payload, result)
		if lastErr == nil {
			return nil
		}
		var decodeErr *decodeError
		if errors.As(lastErr, &decodeErr) || ctx.Err() != nil {
			return lastErr
		}
		if attempt < c.maxRetries {
			logx.WithContext(ctx).Debugf("hyperliquid: %s attempt %d failed: %v", req.Type, attempt+1, lastErr)
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

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "hyperliquid: decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (c *Client) post(ctx context.Context, payload []byte, result any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("hyperliquid: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("hyperliquid: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("hyperliquid: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("hyperliquid: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

func (c *Client) coinFromCache(symbol string) (string, bool) {
	key := normalizeKey(symbol)
	if key == "" {
		return "", false
	}
	c.symbolsMu.RLock()
	coin, ok := c.coinIndex[key]
	c.symbolsMu.RUnlock()
	return coin, ok
}

func (c *Client) refreshUniverse(ctx context.Context) (map[string]UniverseEntry, error) {
	var payload MetaAndAssetCtxsResponse
	if err := c.doRequest(ctx, InfoRequest{Type: "metaAndAssetCtxs"}, &payload); err != nil {
		return nil, err
	}

	index := make(map[string]string, len(payload.Universe))
	universe := make(map[string]UniverseEntry, len(payload.Universe))
	for _, entry := range payload.Universe {
		coin := strings.TrimSpace(entry.Name)
		key := normalizeKey(coin)
		if key == "" {
			continue
		}
		index[key] = coin
		universe[coin] = entry
	}

	c.symbolsMu.Lock()
	c.coinIndex = index
	c.universe = universe
	c.symbolsMu.Unlock()
	return universe, nil
}

// coinFor maps a unified symbol such as BTC/USDC onto the venue coin name.
func (c *Client) coinFor(ctx context.Context, symbol string) (string, error) {
	if coin, ok := c.coinFromCache(symbol); ok {
		return coin, nil
	}
	if _, err := c.refreshUniverse(ctx); err != nil {
		return "", err
	}
	if coin, ok := c.coinFromCache(symbol); ok {
		return coin, nil
	}
	return "", fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

// normalizeKey reduces BTC/USDC, btc, BTCUSDT and similar spellings to the
// upper-cased base coin.
func normalizeKey(symbol string) string {
	trimmed := strings.TrimSpace(symbol)
	if base, _, ok := strings.Cut(trimmed, "/"); ok {
		trimmed = base
	}
	if base, _, ok := strings.Cut(trimmed, ":"); ok {
		trimmed = base
	}
	for _, quote := range []string{"USDT", "USDC"} {
		if len(trimmed) > len(quote) && strings.EqualFold(trimmed[len(trimmed)-len(quote):], quote) {
			trimmed = trimmed[:len(trimmed)-len(quote)]
			break
		}
	}
	return strings.ToUpper(trimmed)
}

// UnifiedSymbol renders a coin as the unified BASE/USDC symbol.
func UnifiedSymbol(coin string) string {
	return coin + "/" + QuoteAsset
}
