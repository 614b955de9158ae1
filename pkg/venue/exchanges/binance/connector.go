package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"cryptodata-api/pkg/venue"
)

const (
	maxTradesLimit = 1000
	maxKlinesLimit = 1000
	defaultLimit   = 100
)

// depthBuckets are the order book sizes Binance accepts.
var depthBuckets = []int{5, 10, 20, 50, 100, 500, 1000, 5000}

var _ venue.Connector = (*Client)(nil)

func init() {
	venue.RegisterConnector("binance", func(_ string, cfg *venue.ConnectorConfig) (venue.Connector, error) {
		opts := []Option{
			WithMaxRetries(cfg.MaxRetries),
			WithRateLimit(cfg.RateLimit),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		return NewClient(opts...), nil
	})
}

// FetchTicker returns the last traded price from the rolling 24h ticker.
func (c *Client) FetchTicker(ctx context.Context, symbol string) (*venue.Ticker, error) {
	var resp tickerResponse
	query := url.Values{"symbol": {MarketID(symbol)}}
	if err := c.get(ctx, "/api/v3/ticker/24hr", query, &resp); err != nil {
		return nil, err
	}
	last, err := parseFloat(resp.LastPrice)
	if err != nil {
		return nil, fmt.Errorf("binance: ticker %s last price: %w", resp.Symbol, err)
	}
	return &venue.Ticker{Symbol: symbol, Last: last, Timestamp: resp.CloseTime}, nil
}

// FetchOrderBook requests the smallest supported book covering depth and
// truncates it. Binance omits a timestamp, so the response time is used.
func (c *Client) FetchOrderBook(ctx context.Context, symbol string, depth int) (*venue.OrderBook, error) {
	var resp depthResponse
	query := url.Values{
		"symbol": {MarketID(symbol)},
		"limit":  {strconv.Itoa(depthBucket(depth))},
	}
	if err := c.get(ctx, "/api/v3/depth", query, &resp); err != nil {
		return nil, err
	}
	bids, err := convertLevels(resp.Bids, depth)
	if err != nil {
		return nil, err
	}
	asks, err := convertLevels(resp.Asks, depth)
	if err != nil {
		return nil, err
	}
	return &venue.OrderBook{
		Symbol:    symbol,
		Bids:      bids,
		Asks:      asks,
		Timestamp: c.now().UnixMilli(),
	}, nil
}

// FetchTrades returns recent public trades, oldest first. A buyer-maker trade
// was initiated by the seller.
func (c *Client) FetchTrades(ctx context.Context, symbol string, limit int) ([]venue.Trade, error) {
	var resp []tradeResponse
	query := url.Values{
		"symbol": {MarketID(symbol)},
		"limit":  {strconv.Itoa(clamp(limit, maxTradesLimit))},
	}
	if err := c.get(ctx, "/api/v3/trades", query, &resp); err != nil {
		return nil, err
	}
	trades := make([]venue.Trade, 0, len(resp))
	for _, t := range resp {
		price, err := parseFloat(t.Price)
		if err != nil {
			return nil, fmt.Errorf("binance: trade %d price: %w", t.ID, err)
		}
		qty, err := parseFloat(t.Qty)
		if err != nil {
			return nil, fmt.Errorf("binance: trade %d qty: %w", t.ID, err)
		}
		side := "buy"
		if t.IsBuyerMaker {
			side = "sell"
		}
		trades = append(trades, venue.Trade{
			ID:        strconv.FormatInt(t.ID, 10),
			Price:     price,
			Amount:    qty,
			Side:      side,
			Timestamp: t.Time,
		})
	}
	return trades, nil
}

// FetchOHLCV returns klines starting at since when given, otherwise the most
// recent limit klines.
func (c *Client) FetchOHLCV(ctx context.Context, symbol, timeframe string, since *int64, limit int) ([]venue.OHLCV, error) {
	query := url.Values{
		"symbol":   {MarketID(symbol)},
		"interval": {timeframe},
		"limit":    {strconv.Itoa(clamp(limit, maxKlinesLimit))},
	}
	if since != nil {
		query.Set("startTime", strconv.FormatInt(*since, 10))
	}
	var resp []klineRow
	if err := c.get(ctx, "/api/v3/klines", query, &resp); err != nil {
		return nil, err
	}
	rows := make([]venue.OHLCV, 0, len(resp))
	for i, raw := range resp {
		row, err := raw.toOHLCV()
		if err != nil {
			return nil, fmt.Errorf("binance: kline %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadMarkets lists every spot pair as BASE/QUOTE. Only TRADING pairs are active.
func (c *Client) LoadMarkets(ctx context.Context) (map[string]venue.Market, error) {
	var resp exchangeInfoResponse
	if err := c.get(ctx, "/api/v3/exchangeInfo", nil, &resp); err != nil {
		return nil, err
	}
	markets := make(map[string]venue.Market, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.BaseAsset == "" || s.QuoteAsset == "" {
			continue
		}
		unified := s.BaseAsset + "/" + s.QuoteAsset
		markets[unified] = venue.Market{
			Symbol: unified,
			ID:     s.Symbol,
			Base:   s.BaseAsset,
			Quote:  s.QuoteAsset,
			Active: s.Status == "TRADING",
		}
	}
	return markets, nil
}

func (k klineRow) toOHLCV() (venue.OHLCV, error) {
	if len(k) < 6 {
		return venue.OHLCV{}, fmt.Errorf("expected at least 6 fields, got %d", len(k))
	}
	openTime, ok := k[0].(float64)
	if !ok {
		return venue.OHLCV{}, fmt.Errorf("open time has type %T", k[0])
	}
	row := venue.OHLCV{Timestamp: int64(openTime)}
	dst := []*float64{&row.Open, &row.High, &row.Low, &row.Close, &row.Volume}
	for i, d := range dst {
		raw, ok := k[i+1].(string)
		if !ok {
			return venue.OHLCV{}, fmt.Errorf("field %d has type %T", i+1, k[i+1])
		}
		v, err := parseFloat(raw)
		if err != nil {
			return venue.OHLCV{}, err
		}
		*d = v
	}
	return row, nil
}

func convertLevels(raw [][2]string, depth int) ([]venue.Level, error) {
	if depth > 0 && len(raw) > depth {
		raw = raw[:depth]
	}
	out := make([]venue.Level, 0, len(raw))
	for _, lvl := range raw {
		px, err := parseFloat(lvl[0])
		if err != nil {
			return nil, fmt.Errorf("binance: level price: %w", err)
		}
		qty, err := parseFloat(lvl[1])
		if err != nil {
			return nil, fmt.Errorf("binance: level qty: %w", err)
		}
		out = append(out, venue.Level{px, qty})
	}
	return out, nil
}

func depthBucket(depth int) int {
	for _, b := range depthBuckets {
		if depth <= b {
			return b
		}
	}
	return depthBuckets[len(depthBuckets)-1]
}

func clamp(limit, max int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > max:
		return max
	default:
		return limit
	}
}

func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
