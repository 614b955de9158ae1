package hyperliquid

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"cryptodata-api/pkg/venue"
)

const defaultCandleLimit = 100

var intervalDurations = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"8h":  8 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

var _ venue.Connector = (*Client)(nil)

func init() {
	venue.RegisterConnector("hyperliquid", func(_ string, cfg *venue.ConnectorConfig) (venue.Connector, error) {
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

// FetchTicker returns the current mid price. Hyperliquid does not stamp mids,
// so the request time is used.
func (c *Client) FetchTicker(ctx context.Context, symbol string) (*venue.Ticker, error) {
	coin, err := c.coinFor(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var mids AllMidsResponse
	if err := c.doRequest(ctx, InfoRequest{Type: "allMids"}, &mids); err != nil {
		return nil, err
	}
	raw, ok := mids[coin]
	if !ok {
		return nil, fmt.Errorf("%w: no mid price for %s", ErrSymbolNotFound, coin)
	}
	price, err := parseFloat(raw)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: mid price for %s: %w", coin, err)
	}
	return &venue.Ticker{
		Symbol:    UnifiedSymbol(coin),
		Last:      price,
		Timestamp: c.now().UnixMilli(),
	}, nil
}

// FetchOrderBook returns the aggregated level-2 book truncated to depth.
func (c *Client) FetchOrderBook(ctx context.Context, symbol string, depth int) (*venue.OrderBook, error) {
	coin, err := c.coinFor(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var book L2BookResponse
	if err := c.doRequest(ctx, InfoRequest{Type: "l2Book", Coin: coin}, &book); err != nil {
		return nil, err
	}
	result := &venue.OrderBook{Symbol: UnifiedSymbol(coin), Timestamp: book.Time}
	if len(book.Levels) > 0 {
		if result.Bids, err = convertLevels(book.Levels[0], depth); err != nil {
			return nil, err
		}
	}
	if len(book.Levels) > 1 {
		if result.Asks, err = convertLevels(book.Levels[1], depth); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// FetchTrades returns the most recent public fills, newest last.
func (c *Client) FetchTrades(ctx context.Context, symbol string, limit int) ([]venue.Trade, error) {
	coin, err := c.coinFor(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var raw []RecentTrade
	if err := c.doRequest(ctx, InfoRequest{Type: "recentTrades", Coin: coin}, &raw); err != nil {
		return nil, err
	}
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].Time < raw[j].Time })
	if limit > 0 && len(raw) > limit {
		raw = raw[len(raw)-limit:]
	}
	trades := make([]venue.Trade, 0, len(raw))
	for _, t := range raw {
		price, err := parseFloat(t.Px)
		if err != nil {
			return nil, fmt.Errorf("hyperliquid: trade %d price: %w", t.TID, err)
		}
		size, err := parseFloat(t.Sz)
		if err != nil {
			return nil, fmt.Errorf("hyperliquid: trade %d size: %w", t.TID, err)
		}
		trades = append(trades, venue.Trade{
			ID:        strconv.FormatInt(t.TID, 10),
			Price:     price,
			Amount:    size,
			Side:      tradeSide(t.Side),
			Timestamp: t.Time,
		})
	}
	return trades, nil
}

// FetchOHLCV returns candles ascending by open time. Without since the window
// ends now and covers limit intervals.
func (c *Client) FetchOHLCV(ctx context.Context, symbol, timeframe string, since *int64, limit int) ([]venue.OHLCV, error) {
	step, ok := intervalDurations[timeframe]
	if !ok {
		return nil, fmt.Errorf("hyperliquid: unsupported interval %q", timeframe)
	}
	if limit <= 0 {
		limit = defaultCandleLimit
	}
	coin, err := c.coinFor(ctx, symbol)
	if err != nil {
		return nil, err
	}

	end := c.now().UTC()
	start := end.Add(-step * time.Duration(limit))
	if since != nil {
		start = time.UnixMilli(*since).UTC()
		if windowEnd := start.Add(step * time.Duration(limit)); windowEnd.Before(end) {
			end = windowEnd
		}
	}

	var response CandleResponse
	request := InfoRequest{
		Type: "candleSnapshot",
		Req: CandleSnapshotRequest{
			Coin:      coin,
			Interval:  timeframe,
			StartTime: start.UnixMilli(),
			EndTime:   end.UnixMilli(),
		},
	}
	if err := c.doRequest(ctx, request, &response); err != nil {
		return nil, err
	}

	rows := make([]venue.OHLCV, 0, len(response))
	for _, item := range response {
		row := venue.OHLCV{Timestamp: item.T}
		fields := []struct {
			dst *float64
			raw string
		}{
			{&row.Open, item.O}, {&row.High, item.H}, {&row.Low, item.L}, {&row.Close, item.C}, {&row.Volume, item.V},
		}
		for _, f := range fields {
			if *f.dst, err = parseFloat(f.raw); err != nil {
				return nil, fmt.Errorf("hyperliquid: candle %d: %w", item.T, err)
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Timestamp < rows[j].Timestamp })
	if len(rows) > limit {
		if since != nil {
			rows = rows[:limit]
		} else {
			rows = rows[len(rows)-limit:]
		}
	}
	return rows, nil
}

// LoadMarkets lists every perp as COIN/USDC. Delisted coins are inactive.
func (c *Client) LoadMarkets(ctx context.Context) (map[string]venue.Market, error) {
	universe, err := c.refreshUniverse(ctx)
	if err != nil {
		return nil, err
	}
	markets := make(map[string]venue.Market, len(universe))
	for coin, entry := range universe {
		symbol := UnifiedSymbol(coin)
		markets[symbol] = venue.Market{
			Symbol: symbol,
			ID:     coin,
			Base:   coin,
			Quote:  QuoteAsset,
			Active: !entry.IsDelisted,
		}
	}
	return markets, nil
}

func convertLevels(levels []L2Level, depth int) ([]venue.Level, error) {
	if depth > 0 && len(levels) > depth {
		levels = levels[:depth]
	}
	out := make([]venue.Level, 0, len(levels))
	for _, lvl := range levels {
		px, err := parseFloat(lvl.Px)
		if err != nil {
			return nil, fmt.Errorf("hyperliquid: level price: %w", err)
		}
		sz, err := parseFloat(lvl.Sz)
		if err != nil {
			return nil, fmt.Errorf("hyperliquid: level size: %w", err)
		}
		out = append(out, venue.Level{px, sz})
	}
	return out, nil
}

func tradeSide(side string) string {
	switch side {
	case "B":
		return "buy"
	case "A":
		return "sell"
	default:
		return ""
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
