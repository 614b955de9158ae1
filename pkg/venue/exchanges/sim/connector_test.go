package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimConnector_BasicFlow(t *testing.T) {
	c := New("sim")
	ctx := context.Background()

	ticker, err := c.FetchTicker(ctx, "btc/usdt")
	require.NoError(t, err)
	assert.Equal(t, "BTC/USDT", ticker.Symbol)
	assert.InDelta(t, 10000.0, ticker.Last, 1e-9)
	assert.Equal(t, int64(1600000000000), ticker.Timestamp)

	book, err := c.FetchOrderBook(ctx, "BTC/USDT", 1)
	require.NoError(t, err)
	assert.Len(t, book.Bids, 1)
	assert.Len(t, book.Asks, 1)
	assert.Greater(t, book.Asks[0][0], book.Bids[0][0], "asks should sit above bids")

	trades, err := c.FetchTrades(ctx, "BTC/USDT", 1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "buy", trades[0].Side)

	assert.Equal(t, 1, c.Calls("FetchTicker"))
	assert.Equal(t, 1, c.Calls("FetchTrades"))
}

func TestSimConnector_OHLCV(t *testing.T) {
	c := New("sim")
	ctx := context.Background()

	rows, err := c.FetchOHLCV(ctx, "ETH/USDT", "1m", nil, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(1600000000000), rows[0].Timestamp)
	assert.Equal(t, int64(1600000060000), rows[1].Timestamp)

	since := int64(1600000125000)
	rows, err = c.FetchOHLCV(ctx, "ETH/USDT", "1m", &since, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1600000120000), rows[0].Timestamp, "since should align to the candle step")
}

func TestSimConnector_UnknownSymbol(t *testing.T) {
	c := New("sim")
	_, err := c.FetchTicker(context.Background(), "FOO/BAR")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSymbolNotFound))
}

func TestSimConnector_LoadMarkets(t *testing.T) {
	c := New("sim", WithPrice("SOL/USDT", 20))
	markets, err := c.LoadMarkets(context.Background())
	require.NoError(t, err)
	assert.Len(t, markets, 3)
	sol := markets["SOL/USDT"]
	assert.Equal(t, "SOLUSDT", sol.ID)
	assert.Equal(t, "SOL", sol.Base)
	assert.Equal(t, "USDT", sol.Quote)
	assert.True(t, sol.Active)
}
