package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodata-api/internal/marketdata"
)

type fakeSource struct {
	mu     sync.Mutex
	prices map[string]float64
	calls  int
}

func (f *fakeSource) GetTicker(ctx context.Context, venueID, symbol string) (*marketdata.Ticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	price, ok := f.prices[symbol]
	if !ok {
		return nil, &marketdata.Error{Kind: marketdata.KindInvalidPair, Venue: venueID, Symbol: symbol}
	}
	return &marketdata.Ticker{Venue: venueID, Symbol: symbol, Price: price}, nil
}

func TestSnapshotCollectsPrices(t *testing.T) {
	src := &fakeSource{prices: map[string]float64{"BTC/USDT": 10000, "ETH/USDT": 350}}
	s := NewStreamer(src, WithWorkers(2))

	frame, err := s.Snapshot(context.Background(), Subscription{Venue: "sim", Symbols: []string{"BTC/USDT", "ETH/USDT", "DOGE/USDT"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"BTC/USDT": 10000, "ETH/USDT": 350}, frame.Prices)
	assert.Equal(t, 3, src.calls)
}

func TestSnapshotNoPrices(t *testing.T) {
	s := NewStreamer(&fakeSource{})
	_, err := s.Snapshot(context.Background(), Subscription{Venue: "sim", Symbols: []string{"DOGE/USDT"}})
	assert.True(t, errors.Is(err, ErrNoPrices))
}

func TestNormalize(t *testing.T) {
	s := NewStreamer(&fakeSource{}, WithMaxSymbols(2))

	sub, err := s.Normalize(Subscription{Venue: "sim", Symbols: []string{"ETH/USDT", "", "BTC/USDT", "ETH/USDT"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, sub.Symbols)

	_, err = s.Normalize(Subscription{Venue: "sim"})
	assert.Error(t, err)
	_, err = s.Normalize(Subscription{Symbols: []string{"BTC/USDT"}})
	assert.Error(t, err)
	_, err = s.Normalize(Subscription{Venue: "sim", Symbols: []string{"A", "B", "C"}})
	assert.Error(t, err)
}

func TestRunEmitsUntilCancelled(t *testing.T) {
	src := &fakeSource{prices: map[string]float64{"BTC/USDT": 10000}}
	s := NewStreamer(src, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var frames []Frame
	err := s.Run(ctx, Subscription{Venue: "sim", Symbols: []string{"BTC/USDT"}}, func(f Frame) error {
		frames = append(frames, f)
		if len(frames) == 3 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, frames, 3)
	assert.InDelta(t, 10000.0, frames[2].Prices["BTC/USDT"], 1e-9)
}

func TestRunStopsOnEmitError(t *testing.T) {
	src := &fakeSource{prices: map[string]float64{"BTC/USDT": 1}}
	s := NewStreamer(src, WithInterval(time.Millisecond))
	closed := errors.New("client gone")

	err := s.Run(context.Background(), Subscription{Venue: "sim", Symbols: []string{"BTC/USDT"}}, func(Frame) error {
		return closed
	})
	assert.ErrorIs(t, err, closed)
}
