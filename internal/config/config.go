package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"

	"cryptodata-api/pkg/confkit"
	"cryptodata-api/pkg/venue"
)

// FetchConf tunes the fetch orchestration: cache lifetimes, the shared rate
// limit and the retry budget.
type FetchConf struct {
	CacheTTL          int     `json:",default=20"`  // seconds, market data
	SymbolsTTL        int     `json:",default=300"` // seconds, venue symbol lists
	RateLimitInterval float64 `json:",default=1.0"` // seconds between upstream calls
	MaxAttempts       int     `json:",default=3"`
	BackoffStep       string  `json:",default=750ms"`
}

// StreamConf configures the price streaming websocket.
type StreamConf struct {
	Interval   string `json:",default=1s"`
	MaxSymbols int    `json:",default=20"`
	Workers    int    `json:",default=4"`
}

// ProfilingConf enables continuous profiling when ServerAddress is set.
type ProfilingConf struct {
	ServerAddress   string `json:",optional"`
	ApplicationName string `json:",default=cryptodata-api"`
}

type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod.
	// The test environment also exposes the simulated venue.
	Env       string        `json:",default=test"`
	Status    string        `json:",default=OK"`
	Fetch     FetchConf     `json:",optional"`
	Stream    StreamConf    `json:",optional"`
	Profiling ProfilingConf `json:",optional"`

	Venues confkit.Section[venue.Config] `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsTestEnv() bool {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	return env == "test" || env == ""
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Venues.Hydrate(cfg.baseDir, venue.LoadConfig); err != nil {
		return nil, fmt.Errorf("load venue config: %w", err)
	}
	return &cfg, nil
}

// resolvePath makes path absolute. A relative path missing from the working
// directory is looked up under the module root, so the default etc/ file is
// found when running from a subdirectory.
func resolvePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) {
		return absPath, nil
	}
	if fileExists(absPath) {
		return absPath, nil
	}
	root, err := confkit.ProjectRoot()
	if err != nil {
		return absPath, nil
	}
	if candidate := filepath.Join(root, path); fileExists(candidate) {
		return candidate, nil
	}
	return absPath, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (c *Config) Validate() error {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	switch env {
	case "":
		c.Env = "test"
	case "test", "dev", "prod":
		c.Env = env
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	if err := c.Fetch.Validate(); err != nil {
		return err
	}
	return c.Stream.Validate()
}

// Validate checks the fetch tuning values.
func (f FetchConf) Validate() error {
	if f.CacheTTL <= 0 {
		return errors.New("config: fetch.cacheTTL must be positive")
	}
	if f.SymbolsTTL <= 0 {
		return errors.New("config: fetch.symbolsTTL must be positive")
	}
	if f.RateLimitInterval < 0 {
		return errors.New("config: fetch.rateLimitInterval cannot be negative")
	}
	if f.MaxAttempts < 1 {
		return errors.New("config: fetch.maxAttempts must be at least 1")
	}
	if _, err := f.Backoff(); err != nil {
		return err
	}
	return nil
}

// RateLimit converts RateLimitInterval into a duration.
func (f FetchConf) RateLimit() time.Duration {
	return time.Duration(f.RateLimitInterval * float64(time.Second))
}

// Backoff parses BackoffStep. An empty value means no delay between attempts.
func (f FetchConf) Backoff() (time.Duration, error) {
	raw := strings.TrimSpace(f.BackoffStep)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid fetch.backoffStep %q: %w", f.BackoffStep, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: fetch.backoffStep cannot be negative, got %s", d)
	}
	return d, nil
}

// Validate checks the stream settings.
func (s StreamConf) Validate() error {
	if _, err := s.TickInterval(); err != nil {
		return err
	}
	if s.MaxSymbols < 0 {
		return errors.New("config: stream.maxSymbols cannot be negative")
	}
	if s.Workers < 0 {
		return errors.New("config: stream.workers cannot be negative")
	}
	return nil
}

// TickInterval parses Interval, defaulting to one second.
func (s StreamConf) TickInterval() (time.Duration, error) {
	raw := strings.TrimSpace(s.Interval)
	if raw == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid stream.interval %q: %w", s.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: stream.interval must be positive, got %s", d)
	}
	return d, nil
}

// VenueConfig returns the hydrated venue section, or the built-in public
// venues when no venue file is configured.
func (c *Config) VenueConfig() *venue.Config {
	if c.Venues.Loaded() {
		return c.Venues.Value
	}
	return venue.DefaultConfig()
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
