package marketdata

// Level is one [price, size] order book entry.
type Level [2]float64

// Ticker is the latest price snapshot. Timestamps are epoch seconds.
type Ticker struct {
	Venue     string
	Symbol    string
	Price     float64
	Timestamp int64
}

type OrderBook struct {
	Venue     string
	Symbol    string
	Bids      []Level
	Asks      []Level
	Timestamp int64
}

// Trade sides after normalisation.
const (
	SideBuy     = "buy"
	SideSell    = "sell"
	SideUnknown = "unknown"
)

type TradeRecord struct {
	Price     float64
	Amount    float64
	Side      string
	Timestamp int64
	TradeID   string
}

type TradeHistory struct {
	Venue  string
	Symbol string
	Trades []TradeRecord
}

type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// CandleSeries holds candles ordered ascending by timestamp.
type CandleSeries struct {
	Venue    string
	Symbol   string
	Interval string
	Candles  []Candle
}

// CandleQuery selects a candle range. Start and End are epoch seconds; a nil
// bound is open.
type CandleQuery struct {
	Venue    string
	Symbol   string
	Interval string
	Start    *int64
	End      *int64
	Limit    int
}
