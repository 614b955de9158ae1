package venue

import "context"

// Connector is the read-only capability set a trading venue exposes. All
// timestamps are raw upstream values in epoch milliseconds; zero means the
// venue did not report one.
type Connector interface {
	// FetchTicker returns the latest traded price for symbol.
	FetchTicker(ctx context.Context, symbol string) (*Ticker, error)
	// FetchOrderBook returns up to depth price levels per side.
	FetchOrderBook(ctx context.Context, symbol string, depth int) (*OrderBook, error)
	// FetchTrades returns up to limit recent public trades.
	FetchTrades(ctx context.Context, symbol string, limit int) ([]Trade, error)
	// FetchOHLCV returns candles for timeframe starting at since (ms) when set.
	FetchOHLCV(ctx context.Context, symbol, timeframe string, since *int64, limit int) ([]OHLCV, error)
	// LoadMarkets returns the listed markets keyed by unified symbol.
	LoadMarkets(ctx context.Context) (map[string]Market, error)
}

// Ticker is the raw latest-price payload.
type Ticker struct {
	Symbol    string
	Last      float64
	Timestamp int64
}

// Level is a single [price, size] order book entry.
type Level [2]float64

// OrderBook is the raw depth payload, best prices first.
type OrderBook struct {
	Symbol    string
	Bids      []Level
	Asks      []Level
	Timestamp int64
}

// Trade is a raw public trade. Side is venue-reported and may be empty.
type Trade struct {
	ID        string
	Price     float64
	Amount    float64
	Side      string
	Timestamp int64
}

// OHLCV is a raw candle row.
type OHLCV struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Market describes a listed instrument.
type Market struct {
	Symbol string // Unified symbol, e.g. "BTC/USDT"
	ID     string // Venue-native identifier, e.g. "BTCUSDT"
	Base   string
	Quote  string
	Active bool
}
