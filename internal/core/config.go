package core

import (
	"time"

	"musicpin/internal/i18n"
	"musicpin/pkg/fuzzy"
	"musicpin/pkg/musiclink"
)

// Configuration defaults.
const (
	DefaultServerPort         = 8080
	DefaultRateLimitPerMinute = 60
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
)

type Config struct {
	Providers ProvidersConfig
	Upstream  UpstreamConfig
	Resolve   ResolveConfig
	Server    ServerConfig
	Log       LogConfig
	App       AppConfig
}

// ProvidersConfig holds one externally supplied base URL per provider.
type ProvidersConfig struct {
	SBYBaseURL string
	XFBaseURL  string
	XZGBaseURL string
	LZBaseURL  string
	CGGBaseURL string
}

// BaseURLs returns the configured base URLs keyed by provider, skipping empty ones.
func (p ProvidersConfig) BaseURLs() map[musiclink.Provider]string {
	urls := map[musiclink.Provider]string{
		musiclink.ProviderSBY: p.SBYBaseURL,
		musiclink.ProviderXF:  p.XFBaseURL,
		musiclink.ProviderXZG: p.XZGBaseURL,
		musiclink.ProviderLZ:  p.LZBaseURL,
		musiclink.ProviderCGG: p.CGGBaseURL,
	}
	for provider, url := range urls {
		if url == "" {
			delete(urls, provider)
		}
	}
	return urls
}

type UpstreamConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	PageSize     int
}

type ResolveConfig struct {
	SplitPartMin       float64
	WholeRecordMin     float64
	SingleFieldMin     float64
	DisabledInterfaces []string // "platform:provider" pairs.
}

// Thresholds returns the relevance thresholds.
func (r ResolveConfig) Thresholds() fuzzy.Thresholds {
	return fuzzy.Thresholds{
		SplitPartMin:   r.SplitPartMin,
		WholeRecordMin: r.WholeRecordMin,
		SingleFieldMin: r.SingleFieldMin,
	}
}

type ServerConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	RateLimitPerMinute int
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language string
}

func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			Timeout:      musiclink.DefaultRequestTimeout,
			MaxBodyBytes: musiclink.DefaultMaxBodyBytes,
			PageSize:     musiclink.DefaultPageSize,
		},
		Resolve: ResolveConfig{
			SplitPartMin:   fuzzy.DefaultSplitPartMin,
			WholeRecordMin: fuzzy.DefaultWholeRecordMin,
			SingleFieldMin: fuzzy.DefaultSingleFieldMin,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: DefaultServerPort,
			// Resolution probes providers one after another, so a request may
			// take several upstream timeouts.
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       2 * time.Minute,
			RateLimitPerMinute: DefaultRateLimitPerMinute,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		App: AppConfig{
			Language: i18n.DefaultLanguage,
		},
	}
}
