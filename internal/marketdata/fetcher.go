package marketdata

import (
	"context"
	"sort"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/cache"
	"cryptodata-api/pkg/ratelimit"
	"cryptodata-api/pkg/venue"
)

const (
	DefaultOrderBookLimit = 20
	DefaultTradesLimit    = 20
	DefaultCandlesLimit   = 100

	defaultMaxAttempts = 3
	defaultBackoffStep = 750 * time.Millisecond
)

const (
	opTicker    = "ticker"
	opOrderBook = "orderbook"
	opTrades    = "trades"
	opCandles   = "ohlcv"
	opSymbols   = "symbols"
)

var intervals = []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"}

// supportedIntervals indexes intervals for GetCandles.
var supportedIntervals = func() map[string]struct{} {
	set := make(map[string]struct{}, len(intervals))
	for _, interval := range SupportedIntervals() {
		set[interval] = struct{}{}
	}
	return set
}()

// SupportedIntervals returns the accepted candle intervals, shortest first.
func SupportedIntervals() []string {
	return append([]string(nil), intervals...)
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Fetcher orchestrates validated, cached, rate limited and retried market
// data fetches across venues.
type Fetcher struct {
	registry Registry
	gate     *Gate
	cache    *cache.Cache
	limiter  *ratelimit.Limiter

	ttl         cache.TTLSet
	maxAttempts int
	backoffStep time.Duration
	sleep       Sleeper
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTTLs overrides the market and symbol list cache lifetimes.
func WithTTLs(ttl cache.TTLSet) Option {
	return func(f *Fetcher) {
		f.ttl = ttl
	}
}

// WithRetry sets the attempt budget and the linear backoff step. Attempt n is
// followed by a pause of n*step before the next one.
func WithRetry(maxAttempts int, step time.Duration) Option {
	return func(f *Fetcher) {
		if maxAttempts > 0 {
			f.maxAttempts = maxAttempts
		}
		if step >= 0 {
			f.backoffStep = step
		}
	}
}

// WithSleeper replaces the backoff sleep, mainly for tests.
func WithSleeper(s Sleeper) Option {
	return func(f *Fetcher) {
		if s != nil {
			f.sleep = s
		}
	}
}

// NewFetcher wires the shared cache, limiter and registry into a Fetcher.
func NewFetcher(registry Registry, c *cache.Cache, limiter *ratelimit.Limiter, opts ...Option) *Fetcher {
	f := &Fetcher{
		registry:    registry,
		cache:       c,
		limiter:     limiter,
		ttl:         cache.TTLSet{Market: 20 * time.Second, Symbols: 5 * time.Minute},
		maxAttempts: defaultMaxAttempts,
		backoffStep: defaultBackoffStep,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.gate = NewGate(registry, c, f.ttl.Symbols)
	return f
}

// Gate exposes the validation gate shared with the fetcher.
func (f *Fetcher) Gate() *Gate { return f.gate }

// ListVenues returns the supported venue ids.
func (f *Fetcher) ListVenues() []string { return f.registry.Venues() }

// ValidatePair runs the venue and symbol checks without fetching data.
func (f *Fetcher) ValidatePair(ctx context.Context, venueID, symbol string) error {
	return f.validate(ctx, venueID, symbol)
}

func (f *Fetcher) validate(ctx context.Context, venueID, symbol string) error {
	if err := f.gate.ValidateVenue(venueID); err != nil {
		return err
	}
	return f.gate.ValidateSymbol(ctx, venueID, symbol)
}

// GetTicker returns the latest price for symbol on venueID.
func (f *Fetcher) GetTicker(ctx context.Context, venueID, symbol string) (*Ticker, error) {
	if err := f.validate(ctx, venueID, symbol); err != nil {
		return nil, err
	}
	key := cache.TickerKey(venueID, symbol)
	if t, ok := lookup[*Ticker](f.cache, opTicker, key); ok {
		return t, nil
	}
	raw, err := fetchWithRetry(ctx, f, opTicker, venueID, symbol, func(ctx context.Context, c venue.Connector) (*venue.Ticker, error) {
		return c.FetchTicker(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	t := &Ticker{
		Venue:     venueID,
		Symbol:    symbol,
		Price:     raw.Last,
		Timestamp: toSeconds(raw.Timestamp),
	}
	f.cache.Set(key, t, f.ttl.Market)
	return t, nil
}

// GetOrderBook returns up to limit levels per side. A non-positive limit uses
// DefaultOrderBookLimit.
func (f *Fetcher) GetOrderBook(ctx context.Context, venueID, symbol string, limit int) (*OrderBook, error) {
	if limit <= 0 {
		limit = DefaultOrderBookLimit
	}
	if err := f.validate(ctx, venueID, symbol); err != nil {
		return nil, err
	}
	key := cache.OrderBookKey(venueID, symbol, limit)
	if b, ok := lookup[*OrderBook](f.cache, opOrderBook, key); ok {
		return b, nil
	}
	raw, err := fetchWithRetry(ctx, f, opOrderBook, venueID, symbol, func(ctx context.Context, c venue.Connector) (*venue.OrderBook, error) {
		return c.FetchOrderBook(ctx, symbol, limit)
	})
	if err != nil {
		return nil, err
	}
	b := &OrderBook{
		Venue:     venueID,
		Symbol:    symbol,
		Bids:      convertLevels(raw.Bids),
		Asks:      convertLevels(raw.Asks),
		Timestamp: toSeconds(raw.Timestamp),
	}
	f.cache.Set(key, b, f.ttl.Market)
	return b, nil
}

// GetTrades returns at most limit recent trades. A non-positive limit uses
// DefaultTradesLimit.
func (f *Fetcher) GetTrades(ctx context.Context, venueID, symbol string, limit int) (*TradeHistory, error) {
	if limit <= 0 {
		limit = DefaultTradesLimit
	}
	if err := f.validate(ctx, venueID, symbol); err != nil {
		return nil, err
	}
	key := cache.TradesKey(venueID, symbol, limit)
	if h, ok := lookup[*TradeHistory](f.cache, opTrades, key); ok {
		return h, nil
	}
	raw, err := fetchWithRetry(ctx, f, opTrades, venueID, symbol, func(ctx context.Context, c venue.Connector) ([]venue.Trade, error) {
		return c.FetchTrades(ctx, symbol, limit)
	})
	if err != nil {
		return nil, err
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}
	trades := make([]TradeRecord, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, TradeRecord{
			Price:     t.Price,
			Amount:    t.Amount,
			Side:      normalizeSide(t.Side),
			Timestamp: toSeconds(t.Timestamp),
			TradeID:   t.ID,
		})
	}
	h := &TradeHistory{Venue: venueID, Symbol: symbol, Trades: trades}
	f.cache.Set(key, h, f.ttl.Market)
	return h, nil
}

// GetCandles returns candles ascending by timestamp. The upstream call only
// takes a start bound, so candles after q.End are dropped locally. A zero
// start is treated as no bound.
func (f *Fetcher) GetCandles(ctx context.Context, q CandleQuery) (*CandleSeries, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultCandlesLimit
	}
	if err := f.gate.ValidateVenue(q.Venue); err != nil {
		return nil, err
	}
	// The interval is checked before the symbol so a bad interval never
	// reaches the venue, not even for market metadata.
	if _, ok := supportedIntervals[q.Interval]; !ok {
		return nil, &Error{Kind: KindUnsupportedInterval, Venue: q.Venue, Symbol: q.Symbol, Interval: q.Interval}
	}
	if err := f.gate.ValidateSymbol(ctx, q.Venue, q.Symbol); err != nil {
		return nil, err
	}
	if q.Start != nil && *q.Start == 0 {
		q.Start = nil
	}
	key := cache.CandlesKey(q.Venue, q.Symbol, q.Interval, q.Start, q.End, q.Limit)
	if s, ok := lookup[*CandleSeries](f.cache, opCandles, key); ok {
		return s, nil
	}
	var since *int64
	if q.Start != nil {
		ms := *q.Start * 1000
		since = &ms
	}
	raw, err := fetchWithRetry(ctx, f, opCandles, q.Venue, q.Symbol, func(ctx context.Context, c venue.Connector) ([]venue.OHLCV, error) {
		return c.FetchOHLCV(ctx, q.Symbol, q.Interval, since, q.Limit)
	})
	if err != nil {
		return nil, err
	}
	candles := make([]Candle, 0, len(raw))
	for _, row := range raw {
		ts := toSeconds(row.Timestamp)
		if q.End != nil && ts > *q.End {
			continue
		}
		candles = append(candles, Candle{
			Timestamp: ts,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
		})
	}
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Timestamp < candles[j].Timestamp })
	s := &CandleSeries{Venue: q.Venue, Symbol: q.Symbol, Interval: q.Interval, Candles: candles}
	f.cache.Set(key, s, f.ttl.Market)
	return s, nil
}

// GetSymbols returns the sorted symbols listed on venueID.
func (f *Fetcher) GetSymbols(ctx context.Context, venueID string) ([]string, error) {
	if err := f.gate.ValidateVenue(venueID); err != nil {
		return nil, err
	}
	key := cache.SymbolsKey(venueID)
	if symbols, ok := lookup[[]string](f.cache, opSymbols, key); ok {
		return symbols, nil
	}
	markets, err := fetchWithRetry(ctx, f, opSymbols, venueID, "", func(ctx context.Context, c venue.Connector) (map[string]venue.Market, error) {
		return c.LoadMarkets(ctx)
	})
	if err != nil {
		return nil, err
	}
	symbols := marketSymbols(markets)
	f.cache.Set(key, symbols, f.ttl.Symbols)
	return symbols, nil
}

// fetchWithRetry runs call up to maxAttempts times, waiting on the shared
// limiter before each attempt and backing off linearly between attempts.
func fetchWithRetry[T any](ctx context.Context, f *Fetcher, op, venueID, symbol string,
	call func(context.Context, venue.Connector) (T, error)) (T, error) {
	var zero T
	conn, err := f.registry.Connector(venueID)
	if err != nil {
		return zero, &Error{Kind: KindConnectorInit, Venue: venueID, Symbol: symbol, Op: op, Err: err}
	}

	logger := logx.WithContext(ctx)
	start := time.Now()
	var lastErr error
	attempt := 0
	for attempt < f.maxAttempts {
		attempt++
		if err := f.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}
		result, err := call(ctx, conn)
		if err == nil {
			fetchAttempts.WithLabelValues(venueID, op, "success").Inc()
			fetchDuration.WithLabelValues(venueID, op).Observe(time.Since(start).Seconds())
			return result, nil
		}
		lastErr = err
		fetchAttempts.WithLabelValues(venueID, op, "error").Inc()
		logger.Errorw("fetch attempt failed",
			logx.Field("op", op),
			logx.Field("venue", venueID),
			logx.Field("symbol", symbol),
			logx.Field("attempt", attempt),
			logx.Field("error", err.Error()))
		if attempt == f.maxAttempts {
			break
		}
		if err := f.sleep(ctx, f.backoffStep*time.Duration(attempt)); err != nil {
			lastErr = err
			break
		}
	}
	return zero, &Error{Kind: KindFetchFailed, Venue: venueID, Symbol: symbol, Op: op, Attempts: attempt, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// toSeconds truncates a millisecond epoch to seconds.
func toSeconds(ms int64) int64 { return ms / 1000 }

func convertLevels(levels []venue.Level) []Level {
	out := make([]Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, Level(l))
	}
	return out
}

func normalizeSide(side string) string {
	switch side {
	case SideBuy, SideSell:
		return side
	default:
		return SideUnknown
	}
}
