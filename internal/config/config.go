package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// FetchConfig configures the static page fetcher.
type FetchConfig struct {
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyBytes     int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSec   float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	BreakerThreshold int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// RenderConfig configures the browser-rendering service used for
// JavaScript-heavy sites.
type RenderConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Token       string `yaml:"token" mapstructure:"token"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	WaitMs      int    `yaml:"wait_ms" mapstructure:"wait_ms"`
}

// DiscoveryConfig configures URL discovery (sitemaps and crawl fallback).
type DiscoveryConfig struct {
	MaxURLs        int `yaml:"max_urls" mapstructure:"max_urls"`
	MaxSitemaps    int `yaml:"max_sitemaps" mapstructure:"max_sitemaps"`
	CrawlDepth     int `yaml:"crawl_depth" mapstructure:"crawl_depth"`
	CrawlPerLevel  int `yaml:"crawl_per_level" mapstructure:"crawl_per_level"`
	MaxRecommended int `yaml:"max_recommended" mapstructure:"max_recommended"`
}

// ScrapeConfig configures a full scrape run.
type ScrapeConfig struct {
	MaxConcurrentAgencies int  `yaml:"max_concurrent_agencies" mapstructure:"max_concurrent_agencies"`
	MaxPagesPerAgency     int  `yaml:"max_pages_per_agency" mapstructure:"max_pages_per_agency"`
	AgencyTimeoutSecs     int  `yaml:"agency_timeout_secs" mapstructure:"agency_timeout_secs"`
	RenderFallback        bool `yaml:"render_fallback" mapstructure:"render_fallback"`
}

// AnthropicConfig holds settings for the AI extraction tier.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
}

// OutputConfig configures where finished profiles are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AGENCY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "agency-scraper.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.user_agent", "AgencyProfileBot/1.0 (+https://inhuren.nl/bot)")
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.max_body_bytes", 5*1024*1024)
	v.SetDefault("fetch.requests_per_sec", 1.0)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.initial_backoff_ms", 1000)
	v.SetDefault("fetch.max_backoff_ms", 30000)
	v.SetDefault("fetch.breaker_threshold", 5)
	v.SetDefault("fetch.breaker_reset_secs", 60)
	v.SetDefault("render.timeout_secs", 60)
	v.SetDefault("render.wait_ms", 2500)
	v.SetDefault("discovery.max_urls", 500)
	v.SetDefault("discovery.max_sitemaps", 20)
	v.SetDefault("discovery.crawl_depth", 2)
	v.SetDefault("discovery.crawl_per_level", 30)
	v.SetDefault("discovery.max_recommended", 15)
	v.SetDefault("scrape.max_concurrent_agencies", 4)
	v.SetDefault("scrape.max_pages_per_agency", 15)
	v.SetDefault("scrape.agency_timeout_secs", 900)
	v.SetDefault("scrape.render_fallback", true)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.enabled", false)
	v.SetDefault("output.dir", "profiles")
	v.SetDefault("output.pretty", true)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
