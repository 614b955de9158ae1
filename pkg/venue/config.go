package venue

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"cryptodata-api/pkg/confkit"
)

// DefaultRateLimit is the per-connector self limit applied when a venue does
// not configure one.
const DefaultRateLimit = 1200 * time.Millisecond

// Config describes the set of venues the service can reach.
type Config struct {
	Venues map[string]*ConnectorConfig `yaml:"venues"`
}

// ConnectorConfig represents configuration for a single venue connector.
type ConnectorConfig struct {
	Type    string `yaml:"type"`
	BaseURL string `yaml:"base_url"`

	HTTPTimeoutRaw string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
	RateLimitRaw   string        `yaml:"rate_limit"`
	RateLimit      time.Duration `yaml:"-"`
	MaxRetries     int           `yaml:"max_retries"`
}

// Builder constructs a Connector for the venue id from configuration.
type Builder func(id string, cfg *ConnectorConfig) (Connector, error)

var (
	builderRegistry   = make(map[string]Builder)
	builderRegistryMu sync.RWMutex
)

// RegisterConnector registers a connector constructor under a type name.
func RegisterConnector(typeName string, builder Builder) {
	builderRegistryMu.Lock()
	defer builderRegistryMu.Unlock()
	builderRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupBuilder(typeName string) (Builder, bool) {
	builderRegistryMu.RLock()
	defer builderRegistryMu.RUnlock()
	builder, ok := builderRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// DefaultConfig lists the public venues enabled when no venue file is configured.
func DefaultConfig() *Config {
	cfg := &Config{Venues: map[string]*ConnectorConfig{
		"binance":     {Type: "binance"},
		"hyperliquid": {Type: "hyperliquid"},
	}}
	_ = cfg.normalise()
	return cfg
}

// LoadConfig reads venue configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open venue config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read venue config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal venue config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Add registers an extra venue entry, replacing any existing one with the same id.
func (c *Config) Add(id string, entry *ConnectorConfig) error {
	if c.Venues == nil {
		c.Venues = make(map[string]*ConnectorConfig)
	}
	if entry == nil {
		entry = &ConnectorConfig{}
	}
	entry.expandEnv()
	if err := entry.parseDurations(id); err != nil {
		return err
	}
	if err := entry.validate(id); err != nil {
		return err
	}
	c.Venues[id] = entry
	return nil
}

func (c *Config) normalise() error {
	if c.Venues == nil {
		c.Venues = make(map[string]*ConnectorConfig)
	}
	for id, entry := range c.Venues {
		if entry == nil {
			entry = &ConnectorConfig{}
			c.Venues[id] = entry
		}
		entry.expandEnv()
		if entry.Type == "" {
			entry.Type = id
		}
		if err := entry.parseDurations(id); err != nil {
			return err
		}
	}
	return nil
}

func (p *ConnectorConfig) expandEnv() {
	p.Type = strings.TrimSpace(os.ExpandEnv(p.Type))
	p.BaseURL = strings.TrimSpace(os.ExpandEnv(p.BaseURL))
	p.HTTPTimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.HTTPTimeoutRaw))
	p.RateLimitRaw = strings.TrimSpace(os.ExpandEnv(p.RateLimitRaw))
}

func (p *ConnectorConfig) parseDurations(id string) error {
	if p.HTTPTimeoutRaw != "" {
		d, err := time.ParseDuration(p.HTTPTimeoutRaw)
		if err != nil {
			return fmt.Errorf("venue %s: invalid http_timeout %q: %w", id, p.HTTPTimeoutRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("venue %s: http_timeout must be positive, got %s", id, d)
		}
		p.HTTPTimeout = d
	}
	p.RateLimit = DefaultRateLimit
	if p.RateLimitRaw != "" {
		d, err := time.ParseDuration(p.RateLimitRaw)
		if err != nil {
			return fmt.Errorf("venue %s: invalid rate_limit %q: %w", id, p.RateLimitRaw, err)
		}
		if d < 0 {
			return fmt.Errorf("venue %s: rate_limit cannot be negative, got %s", id, d)
		}
		p.RateLimit = d
	}
	return nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Venues) == 0 {
		return fmt.Errorf("venue config: venues cannot be empty")
	}
	for id, entry := range c.Venues {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("venue config: venue id cannot be empty")
		}
		if err := entry.validate(id); err != nil {
			return err
		}
	}
	return nil
}

func (p *ConnectorConfig) validate(id string) error {
	if p == nil {
		return fmt.Errorf("venue config: venue %s is nil", id)
	}
	if strings.TrimSpace(p.Type) == "" {
		return fmt.Errorf("venue config: venue %s must specify type", id)
	}
	if _, ok := lookupBuilder(p.Type); !ok {
		return fmt.Errorf("venue config: venue %s has unsupported type %q", id, p.Type)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("venue config: venue %s max_retries cannot be negative", id)
	}
	return nil
}

// IDs returns the configured venue ids in sorted order.
func (c *Config) IDs() []string {
	ids := make([]string, 0, len(c.Venues))
	for id := range c.Venues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Factories returns one lazy constructor per configured venue. Nothing is
// built until a factory is invoked.
func (c *Config) Factories() map[string]Factory {
	result := make(map[string]Factory, len(c.Venues))
	for id, entry := range c.Venues {
		id, entry := id, entry
		result[id] = func() (Connector, error) {
			builder, ok := lookupBuilder(entry.Type)
			if !ok {
				return nil, fmt.Errorf("venue %s: unsupported type %q", id, entry.Type)
			}
			return builder(id, entry)
		}
	}
	return result
}
