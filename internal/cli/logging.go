package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/config"
	"cryptodata-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Listen: %s:%d", cfg.Host, cfg.Port),
		fmt.Sprintf("Status: %s", cfg.Status),
		fmt.Sprintf("Cache TTL (market/symbols): %ds / %ds", cfg.Fetch.CacheTTL, cfg.Fetch.SymbolsTTL),
		fmt.Sprintf("Rate limit interval: %s", cfg.Fetch.RateLimit()),
		fmt.Sprintf("Retry: %d attempts, backoff step %s", cfg.Fetch.MaxAttempts, orDefault(cfg.Fetch.BackoffStep, "none")),
		sectionLine("Venue config", cfg.Venues),
		fmt.Sprintf("Venues: %s", strings.Join(cfg.VenueConfig().IDs(), ", ")),
		fmt.Sprintf("Stream: every %s, max %d symbols, %d workers",
			orDefault(cfg.Stream.Interval, "1s"), cfg.Stream.MaxSymbols, cfg.Stream.Workers),
		fmt.Sprintf("Profiling: %s", presence(strings.TrimSpace(cfg.Profiling.ServerAddress) != "")),
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: defaults", name)
	}
}
