// Package stream produces periodic price frames for a set of symbols.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"cryptodata-api/internal/marketdata"
)

const (
	defaultInterval   = time.Second
	defaultMaxSymbols = 20
	defaultWorkers    = 4
)

// ErrNoPrices is returned when no symbol in a subscription could be priced.
var ErrNoPrices = errors.New("stream: no prices available")

// PriceSource resolves the latest ticker for one symbol.
type PriceSource interface {
	GetTicker(ctx context.Context, venueID, symbol string) (*marketdata.Ticker, error)
}

// Subscription names the venue and symbols a client wants prices for.
type Subscription struct {
	Venue   string
	Symbols []string
}

// Frame is one push to a subscriber.
type Frame struct {
	Prices    map[string]float64 `json:"prices"`
	Timestamp int64              `json:"timestamp"`
}

// Streamer fans ticker lookups out over a bounded worker pool.
type Streamer struct {
	source     PriceSource
	interval   time.Duration
	maxSymbols int
	workers    int
	now        func() time.Time
}

// Option configures a Streamer.
type Option func(*Streamer)

func WithInterval(d time.Duration) Option {
	return func(s *Streamer) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithMaxSymbols(n int) Option {
	return func(s *Streamer) {
		if n > 0 {
			s.maxSymbols = n
		}
	}
}

func WithWorkers(n int) Option {
	return func(s *Streamer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewStreamer builds a Streamer over source.
func NewStreamer(source PriceSource, opts ...Option) *Streamer {
	s := &Streamer{
		source:     source,
		interval:   defaultInterval,
		maxSymbols: defaultMaxSymbols,
		workers:    defaultWorkers,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the spacing between frames.
func (s *Streamer) Interval() time.Duration { return s.interval }

// Normalize deduplicates and sorts the subscription symbols and enforces the
// symbol cap.
func (s *Streamer) Normalize(sub Subscription) (Subscription, error) {
	if sub.Venue == "" {
		return sub, errors.New("stream: venue is required")
	}
	seen := make(map[string]struct{}, len(sub.Symbols))
	symbols := make([]string, 0, len(sub.Symbols))
	for _, symbol := range sub.Symbols {
		if symbol == "" {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}
	if len(symbols) == 0 {
		return sub, errors.New("stream: at least one symbol is required")
	}
	if len(symbols) > s.maxSymbols {
		return sub, fmt.Errorf("stream: at most %d symbols per subscription, got %d", s.maxSymbols, len(symbols))
	}
	sort.Strings(symbols)
	return Subscription{Venue: sub.Venue, Symbols: symbols}, nil
}

type quote struct {
	symbol string
	price  float64
}

// Snapshot prices every symbol concurrently. Symbols that fail are logged and
// left out of the frame; ErrNoPrices is returned when all of them fail.
func (s *Streamer) Snapshot(ctx context.Context, sub Subscription) (Frame, error) {
	logger := logx.WithContext(ctx)
	prices, err := mr.MapReduce(func(source chan<- string) {
		for _, symbol := range sub.Symbols {
			source <- symbol
		}
	}, func(symbol string, writer mr.Writer[quote], cancel func(error)) {
		ticker, err := s.source.GetTicker(ctx, sub.Venue, symbol)
		if err != nil {
			logger.Errorw("stream price lookup failed",
				logx.Field("venue", sub.Venue), logx.Field("symbol", symbol), logx.Field("error", err.Error()))
			return
		}
		writer.Write(quote{symbol: symbol, price: ticker.Price})
	}, func(pipe <-chan quote, writer mr.Writer[map[string]float64], cancel func(error)) {
		prices := make(map[string]float64, len(sub.Symbols))
		for q := range pipe {
			prices[q.symbol] = q.price
		}
		writer.Write(prices)
	}, mr.WithContext(ctx), mr.WithWorkers(s.workers))
	if err != nil {
		return Frame{}, err
	}
	if len(prices) == 0 {
		return Frame{}, ErrNoPrices
	}
	return Frame{Prices: prices, Timestamp: s.now().Unix()}, nil
}

// Run emits a frame immediately and then once per interval until ctx is done
// or emit fails. Ticks without any price are skipped.
func (s *Streamer) Run(ctx context.Context, sub Subscription, emit func(Frame) error) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		frame, err := s.Snapshot(ctx, sub)
		switch {
		case err == nil:
			if err := emit(frame); err != nil {
				return err
			}
		case errors.Is(err, ErrNoPrices):
		default:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
