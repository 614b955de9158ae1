package marketdata

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/cache"
	"cryptodata-api/pkg/venue"
)

// Registry is the subset of venue.Registry used by the gate and the fetcher.
type Registry interface {
	Venues() []string
	Known(id string) bool
	Connector(id string) (venue.Connector, error)
}

var _ Registry = (*venue.Registry)(nil)

// Gate validates venue and symbol input before any cache or rate limiter work.
type Gate struct {
	registry   Registry
	cache      *cache.Cache
	symbolsTTL time.Duration
}

// NewGate builds a gate that memoizes venue symbol lists in c for symbolsTTL.
func NewGate(registry Registry, c *cache.Cache, symbolsTTL time.Duration) *Gate {
	return &Gate{registry: registry, cache: c, symbolsTTL: symbolsTTL}
}

// ValidateVenue fails with KindUnsupportedVenue when id has no connector.
func (g *Gate) ValidateVenue(id string) error {
	if !g.registry.Known(id) {
		return &Error{Kind: KindUnsupportedVenue, Venue: id}
	}
	return nil
}

// ValidateSymbol fails with KindInvalidPair when symbol is not listed on the
// venue or the listing cannot be loaded.
func (g *Gate) ValidateSymbol(ctx context.Context, id, symbol string) error {
	symbols, err := g.symbols(ctx, id)
	if err != nil {
		var mdErr *Error
		if errors.As(err, &mdErr) {
			return err
		}
		logx.WithContext(ctx).Errorw("load markets for validation failed",
			logx.Field("venue", id), logx.Field("symbol", symbol), logx.Field("error", err.Error()))
		return &Error{Kind: KindInvalidPair, Venue: id, Symbol: symbol, Err: err}
	}
	i := sort.SearchStrings(symbols, symbol)
	if i >= len(symbols) || symbols[i] != symbol {
		return &Error{Kind: KindInvalidPair, Venue: id, Symbol: symbol}
	}
	return nil
}

// symbols returns the sorted symbol list for a venue, sharing the cache entry
// with Fetcher.GetSymbols.
func (g *Gate) symbols(ctx context.Context, id string) ([]string, error) {
	key := cache.SymbolsKey(id)
	if symbols, ok := lookup[[]string](g.cache, "symbols", key); ok {
		return symbols, nil
	}
	conn, err := g.registry.Connector(id)
	if err != nil {
		return nil, &Error{Kind: KindConnectorInit, Venue: id, Err: err}
	}
	markets, err := conn.LoadMarkets(ctx)
	if err != nil {
		return nil, err
	}
	symbols := marketSymbols(markets)
	g.cache.Set(key, symbols, g.symbolsTTL)
	return symbols, nil
}

func marketSymbols(markets map[string]venue.Market) []string {
	symbols := make([]string, 0, len(markets))
	for symbol := range markets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// lookup reads key from c and asserts its type. A value of any other type is
// treated as a miss.
func lookup[T any](c *cache.Cache, op, key string) (T, bool) {
	var zero T
	raw, ok := c.Get(key)
	if !ok {
		cacheLookups.WithLabelValues(op, "miss").Inc()
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		cacheLookups.WithLabelValues(op, "miss").Inc()
		return zero, false
	}
	cacheLookups.WithLabelValues(op, "hit").Inc()
	return v, true
}
