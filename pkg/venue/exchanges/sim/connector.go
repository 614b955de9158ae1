// Package sim provides a deterministic in-memory venue used by tests and the
// test environment.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cryptodata-api/pkg/venue"
)

// ErrSymbolNotFound indicates the symbol is not listed on the simulated venue.
var ErrSymbolNotFound = errors.New("sim: symbol not found")

const (
	baseTimestampMs = int64(1600000000000)
	candleStepMs    = int64(60000)
	defaultPrice    = 10000.0
)

// Connector serves fixed market data from memory.
type Connector struct {
	mu     sync.Mutex
	id     string
	prices map[string]float64
	calls  map[string]int
}

// Option configures a Connector.
type Option func(*Connector)

// WithPrice lists symbol at the given last price.
func WithPrice(symbol string, price float64) Option {
	return func(c *Connector) {
		c.prices[canonical(symbol)] = price
	}
}

// New constructs a simulated venue listing BTC/USDT and ETH/USDT.
func New(id string, opts ...Option) *Connector {
	c := &Connector{
		id: id,
		prices: map[string]float64{
			"BTC/USDT": defaultPrice,
			"ETH/USDT": 350.0,
		},
		calls: make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func init() {
	venue.RegisterConnector("sim", func(id string, _ *venue.ConnectorConfig) (venue.Connector, error) {
		return New(id), nil
	})
}

func canonical(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

// Calls returns how many times the named capability was invoked.
func (c *Connector) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *Connector) record(method, symbol string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
	if symbol == "" {
		return 0, nil
	}
	price, ok := c.prices[canonical(symbol)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return price, nil
}

// FetchTicker implements venue.Connector.
func (c *Connector) FetchTicker(ctx context.Context, symbol string) (*venue.Ticker, error) {
	price, err := c.record("FetchTicker", symbol)
	if err != nil {
		return nil, err
	}
	return &venue.Ticker{Symbol: canonical(symbol), Last: price, Timestamp: baseTimestampMs}, nil
}

// FetchOrderBook implements venue.Connector.
func (c *Connector) FetchOrderBook(ctx context.Context, symbol string, depth int) (*venue.OrderBook, error) {
	price, err := c.record("FetchOrderBook", symbol)
	if err != nil {
		return nil, err
	}
	book := &venue.OrderBook{
		Symbol:    canonical(symbol),
		Bids:      []venue.Level{{price, 1}, {price - 5, 2}},
		Asks:      []venue.Level{{price + 10, 1}, {price + 15, 2}},
		Timestamp: baseTimestampMs,
	}
	if depth > 0 {
		book.Bids = truncateLevels(book.Bids, depth)
		book.Asks = truncateLevels(book.Asks, depth)
	}
	return book, nil
}

// FetchTrades implements venue.Connector.
func (c *Connector) FetchTrades(ctx context.Context, symbol string, limit int) ([]venue.Trade, error) {
	price, err := c.record("FetchTrades", symbol)
	if err != nil {
		return nil, err
	}
	trades := []venue.Trade{
		{ID: "1", Price: price, Amount: 0.5, Side: "buy", Timestamp: baseTimestampMs},
		{ID: "2", Price: price - 2, Amount: 0.25, Side: "sell", Timestamp: baseTimestampMs + 100000},
	}
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades, nil
}

// FetchOHLCV implements venue.Connector. Candles are one step apart starting
// at the fixture base time or at since, whichever is later.
func (c *Connector) FetchOHLCV(ctx context.Context, symbol, timeframe string, since *int64, limit int) ([]venue.OHLCV, error) {
	price, err := c.record("FetchOHLCV", symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 2
	}
	start := baseTimestampMs
	if since != nil && *since > start {
		start = *since - *since%candleStepMs
	}
	rows := make([]venue.OHLCV, 0, limit)
	for i := 0; i < limit; i++ {
		open := price + float64(i)*20
		rows = append(rows, venue.OHLCV{
			Timestamp: start + int64(i)*candleStepMs,
			Open:      open,
			High:      open + 50,
			Low:       open - 50,
			Close:     open + 20,
			Volume:    15 + float64(i)*5,
		})
	}
	return rows, nil
}

// LoadMarkets implements venue.Connector.
func (c *Connector) LoadMarkets(ctx context.Context) (map[string]venue.Market, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["LoadMarkets"]++
	symbols := make([]string, 0, len(c.prices))
	for symbol := range c.prices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	markets := make(map[string]venue.Market, len(symbols))
	for _, symbol := range symbols {
		base, quote, _ := strings.Cut(symbol, "/")
		markets[symbol] = venue.Market{
			Symbol: symbol,
			ID:     base + quote,
			Base:   base,
			Quote:  quote,
			Active: true,
		}
	}
	return markets, nil
}

func truncateLevels(levels []venue.Level, depth int) []venue.Level {
	if len(levels) <= depth {
		return levels
	}
	return levels[:depth]
}
