package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodata-api/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCacheSetGetExpire(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1600000000, 0)}
	c := New(WithClock(clock.Now))

	c.Set("k", "v", 20*time.Second)
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", got)

	clock.Advance(19 * time.Second)
	_, ok = c.Get("k")
	require.True(t, ok, "entry should survive until the ttl elapses")

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	require.False(t, ok, "entry must be absent once now == expiresAt")
	require.Equal(t, 0, c.Len(), "expired entry should be evicted on access")
}

func TestCacheRealClockExpiry(t *testing.T) {
	c := New()
	c.Set("k", 42, 30*time.Millisecond)

	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 42, got)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCacheOverwrite(t *testing.T) {
	c := New()
	c.Set("k", "v1", time.Minute)
	c.Set("k", "v2", time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)
}

func TestCacheOverwriteRefreshesExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New(WithClock(clock.Now))

	c.Set("k", "v1", time.Second)
	clock.Advance(2 * time.Second)
	c.Set("k", "v2", time.Second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)
}

func TestCacheClear(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	require.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			for j := 0; j < 200; j++ {
				c.Set(key, j, time.Millisecond*time.Duration(j%3))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 4)
}

func TestKeys(t *testing.T) {
	start := int64(1600000000)
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ticker", TickerKey("binance", "BTC/USDT"), "cryptodata:ticker:binance:BTC/USDT"},
		{"orderbook", OrderBookKey("binance", "BTC/USDT", 20), "cryptodata:orderbook:binance:BTC/USDT:20"},
		{"trades", TradesKey("kraken", "ETH/USDT", 5), "cryptodata:tradehistory:kraken:ETH/USDT:5"},
		{"candles no bounds", CandlesKey("binance", "BTC/USDT", "1m", nil, nil, 100), "cryptodata:ohlcv:binance:BTC/USDT:1m:none:none:100"},
		{"candles start only", CandlesKey("binance", "BTC/USDT", "1h", &start, nil, 10), "cryptodata:ohlcv:binance:BTC/USDT:1h:1600000000:none:10"},
		{"symbols", SymbolsKey("binance"), "cryptodata:symbols:binance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestCandlesKeyDistinguishesBounds(t *testing.T) {
	v := int64(1600000000)
	startOnly := CandlesKey("binance", "BTC/USDT", "1m", &v, nil, 100)
	endOnly := CandlesKey("binance", "BTC/USDT", "1m", nil, &v, 100)
	assert.NotEqual(t, startOnly, endOnly)

	w := int64(1600000000)
	assert.Equal(t, startOnly, CandlesKey("binance", "BTC/USDT", "1m", &w, nil, 100))
}

func TestNewTTLSet(t *testing.T) {
	ttl := NewTTLSet(config.FetchConf{CacheTTL: 20, SymbolsTTL: 300})
	assert.Equal(t, 20*time.Second, ttl.Market)
	assert.Equal(t, 5*time.Minute, ttl.Symbols)

	defaults := NewTTLSet(config.FetchConf{})
	assert.Equal(t, 20*time.Second, defaults.Market)
	assert.Equal(t, 5*time.Minute, defaults.Symbols)

	disabled := NewTTLSet(config.FetchConf{CacheTTL: -1, SymbolsTTL: -1})
	assert.Zero(t, disabled.Market)
	assert.Zero(t, disabled.Symbols)
}
