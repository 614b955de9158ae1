package cache

import (
	"strconv"
	"strings"
	"time"

	"cryptodata-api/internal/config"
)

// Namespace prefixes every key produced by this package.
const Namespace = "cryptodata"

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Market  time.Duration
	Symbols time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.FetchConf) TTLSet {
	return TTLSet{
		Market:  durationOrDefault(cfg.CacheTTL, 20*time.Second),
		Symbols: durationOrDefault(cfg.SymbolsTTL, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// TickerKey identifies a latest-price lookup.
func TickerKey(venue, symbol string) string {
	return formatKey("ticker", venue, symbol)
}

// OrderBookKey identifies an order book lookup at a given depth.
func OrderBookKey(venue, symbol string, limit int) string {
	return formatKey("orderbook", venue, symbol, strconv.Itoa(limit))
}

// TradesKey identifies a recent-trades lookup.
func TradesKey(venue, symbol string, limit int) string {
	return formatKey("tradehistory", venue, symbol, strconv.Itoa(limit))
}

// CandlesKey identifies a candle lookup. Absent bounds render as "none" so that
// a missing bound never collides with a present one.
func CandlesKey(venue, symbol, interval string, start, end *int64, limit int) string {
	return formatKey("ohlcv", venue, symbol, interval, optionalInt(start), optionalInt(end), strconv.Itoa(limit))
}

// SymbolsKey identifies the listed-symbols lookup for a venue.
func SymbolsKey(venue string) string {
	return formatKey("symbols", venue)
}

func optionalInt(v *int64) string {
	if v == nil {
		return "none"
	}
	return strconv.FormatInt(*v, 10)
}
