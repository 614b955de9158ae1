package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "cryptodata-api/pkg/venue/exchanges/binance"
	_ "cryptodata-api/pkg/venue/exchanges/hyperliquid"
	_ "cryptodata-api/pkg/venue/exchanges/sim"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cryptodata.yaml", "Name: cryptodata-api\nHost: 127.0.0.1\nPort: 8888\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.True(t, cfg.IsTestEnv())
	assert.Equal(t, "OK", cfg.Status)
	assert.Equal(t, 20, cfg.Fetch.CacheTTL)
	assert.Equal(t, 300, cfg.Fetch.SymbolsTTL)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Fetch.RateLimit())
	backoff, err := cfg.Fetch.Backoff()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, backoff)
	assert.Equal(t, path, cfg.MainPath())
	assert.Equal(t, dir, cfg.BaseDir())

	venues := cfg.VenueConfig()
	assert.Equal(t, []string{"binance", "hyperliquid"}, venues.IDs())
}

func TestLoadHydratesVenueSection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "venues.yaml", "venues:\n  paper:\n    type: sim\n    rate_limit: ${PAPER_RATE_LIMIT}\n")
	path := writeFile(t, dir, "cryptodata.yaml", `Name: cryptodata-api
Port: 8888
Env: dev
Status: ${APP_STATUS}
Fetch:
  CacheTTL: 5
  RateLimitInterval: 0.25
Venues:
  File: venues.yaml
`)
	t.Setenv("APP_STATUS", "degraded")
	t.Setenv("PAPER_RATE_LIMIT", "50ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.False(t, cfg.IsTestEnv())
	assert.Equal(t, "degraded", cfg.Status)
	assert.Equal(t, 5, cfg.Fetch.CacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.RateLimit())

	require.True(t, cfg.Venues.Loaded())
	assert.Equal(t, filepath.Join(dir, "venues.yaml"), cfg.Venues.File)
	venues := cfg.VenueConfig()
	require.Contains(t, venues.Venues, "paper")
	assert.Equal(t, 50*time.Millisecond, venues.Venues["paper"].RateLimit)
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cryptodata.yaml", "Name: cryptodata-api\nPort: 8888\nEnv: staging\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env must be one of")
}

func TestLoadMissingVenueFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cryptodata.yaml", "Name: cryptodata-api\nPort: 8888\nVenues:\n  File: missing.yaml\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load venue config")
}

func TestFetchConfValidate(t *testing.T) {
	valid := FetchConf{CacheTTL: 20, SymbolsTTL: 300, RateLimitInterval: 1, MaxAttempts: 3, BackoffStep: "750ms"}

	tests := []struct {
		name    string
		mutate  func(*FetchConf)
		wantErr string
	}{
		{name: "valid", mutate: func(*FetchConf) {}},
		{name: "zero limiter disables limiting", mutate: func(f *FetchConf) { f.RateLimitInterval = 0 }},
		{name: "empty backoff", mutate: func(f *FetchConf) { f.BackoffStep = "" }},
		{name: "cache ttl", mutate: func(f *FetchConf) { f.CacheTTL = 0 }, wantErr: "cacheTTL"},
		{name: "symbols ttl", mutate: func(f *FetchConf) { f.SymbolsTTL = -1 }, wantErr: "symbolsTTL"},
		{name: "negative interval", mutate: func(f *FetchConf) { f.RateLimitInterval = -0.5 }, wantErr: "rateLimitInterval"},
		{name: "attempts", mutate: func(f *FetchConf) { f.MaxAttempts = 0 }, wantErr: "maxAttempts"},
		{name: "bad backoff", mutate: func(f *FetchConf) { f.BackoffStep = "soon" }, wantErr: "backoffStep"},
		{name: "negative backoff", mutate: func(f *FetchConf) { f.BackoffStep = "-1s" }, wantErr: "backoffStep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStreamConfTickInterval(t *testing.T) {
	d, err := StreamConf{}.TickInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	d, err = StreamConf{Interval: "250ms"}.TickInterval()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	_, err = StreamConf{Interval: "0s"}.TickInterval()
	assert.Error(t, err)
}

func TestShippedConfigFiles(t *testing.T) {
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	// Resolved against the module root from this package directory.
	cfg, err := Load("etc/cryptodata.yaml")
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.False(t, cfg.IsTestEnv(), "the shipped config never exposes the simulated venue")
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, time.Second, cfg.Fetch.RateLimit())
	assert.True(t, cfg.Venues.Loaded())

	venues := cfg.VenueConfig()
	assert.Equal(t, []string{"binance", "hyperliquid"}, venues.IDs())
	for _, id := range venues.IDs() {
		assert.Equal(t, 1200*time.Millisecond, venues.Venues[id].RateLimit)
		assert.Equal(t, 10*time.Second, venues.Venues[id].HTTPTimeout)
		assert.Zero(t, venues.Venues[id].MaxRetries, "retries are owned by the fetcher")
	}
}

func TestEnvIsNormalised(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		want     string
		wantTest bool
	}{
		{name: "empty defaults to test", env: "", want: "test", wantTest: true},
		{name: "upper case test", env: "TEST", want: "test", wantTest: true},
		{name: "padded prod", env: " Prod ", want: "prod", wantTest: false},
		{name: "dev", env: "dev", want: "dev", wantTest: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Env:    tt.env,
				Fetch:  FetchConf{CacheTTL: 20, SymbolsTTL: 300, RateLimitInterval: 1, MaxAttempts: 3},
				Stream: StreamConf{Interval: "1s"},
			}
			require.NoError(t, cfg.Validate())
			assert.Equal(t, tt.want, cfg.Env)
			assert.Equal(t, tt.wantTest, cfg.IsTestEnv())
		})
	}
}

func TestIsTestEnvIgnoresCase(t *testing.T) {
	assert.True(t, (&Config{Env: "TEST"}).IsTestEnv())
	assert.False(t, (&Config{Env: "PROD"}).IsTestEnv())
}
