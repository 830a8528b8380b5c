// Package config provides configuration management for mediagate using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort         = 8080
	defaultServerTimeout      = 30 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultRequestTimeout     = 30 * time.Second
	defaultMaxRedirects       = 5
	defaultConnectionPoolSize = 100
	defaultKeepAlive          = 60 * time.Second
	defaultRateLimitMax       = 100
	defaultRateLimitWindow    = 60 * time.Second
	defaultWrapperRateLimit   = 10
	defaultRegistryTTL        = 5 * time.Minute
	defaultSweepInterval      = 60 * time.Second
	defaultThumbnailCacheTTL  = 24 * time.Hour
	defaultHLSSegmentTTL      = 1 * time.Hour
	defaultMuxerMaxDuration   = 60 * time.Second
	defaultStreamingWindow    = 500 * 1024 // 500 KiB
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Transport TransportConfig `mapstructure:"transport"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// TransportConfig holds C1 HTTP transport configuration.
type TransportConfig struct {
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	MaxRedirects       int           `mapstructure:"max_redirects"`
	ConnectionPoolSize int           `mapstructure:"connection_pool_size"`
	KeepAlive          time.Duration `mapstructure:"keep_alive"`
	UserAgent          string        `mapstructure:"user_agent"`
}

// GatewayConfig holds C9 gateway middleware configuration.
type GatewayConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	APIKeys          []string      `mapstructure:"api_keys"`
	RateLimitEnabled bool          `mapstructure:"rate_limit_enabled"`
	RateLimitMax     int           `mapstructure:"rate_limit_max"`
	RateLimitWindow  time.Duration `mapstructure:"rate_limit_window"`
	WrapperRateLimit int           `mapstructure:"wrapper_rate_limit"`
}

// ExtractorConfig holds C3/C4/C5 extraction configuration.
type ExtractorConfig struct {
	// Profile gates wrapper-backed platforms: "vercel" (native-only) or "full".
	Profile         string `mapstructure:"profile"`
	PythonAPIURL    string `mapstructure:"python_api_url"`
	TikTokHelperAPI string `mapstructure:"tiktok_helper_api"`
	FacebookCookie  string `mapstructure:"facebook_cookie"`
	InstagramCookie string `mapstructure:"instagram_cookie"`
	TwitterCookie   string `mapstructure:"twitter_cookie"`
}

// RegistryConfig holds C7 URL registry configuration.
type RegistryConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// DeliveryConfig holds C8 delivery proxy configuration.
type DeliveryConfig struct {
	StreamingWindow   ByteSize      `mapstructure:"streaming_window"`
	MuxerBinary       string        `mapstructure:"muxer_binary"`
	MuxerMaxDuration  time.Duration `mapstructure:"muxer_max_duration"`
	ThumbnailCacheTTL time.Duration `mapstructure:"thumbnail_cache_ttl"`
	HLSSegmentTTL     time.Duration `mapstructure:"hls_segment_ttl"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with MEDIAGATE_ and use underscores for
// nesting, e.g. MEDIAGATE_SERVER_PORT=8080. A handful of unprefixed names
// from the original wrapper-service contract (ALLOWED_ORIGINS, API_KEYS,
// EXTRACTOR_PROFILE, PYTHON_API_URL, RATE_LIMIT_ENABLED, RATE_LIMIT_MAX,
// RATE_LIMIT_WINDOW, REQUEST_TIMEOUT, and the per-platform *_COOKIE vars) are
// bound individually so existing deployment scripts keep working.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mediagate")
		v.AddConfigPath("$HOME/.mediagate")
	}

	v.SetEnvPrefix("MEDIAGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv binds the spec's un-prefixed environment variable names
// (inherited from the wrapper-service contract) onto their mapstructure keys.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("gateway.allowed_origins", "ALLOWED_ORIGINS")
	_ = v.BindEnv("gateway.api_keys", "API_KEYS")
	_ = v.BindEnv("extractor.profile", "EXTRACTOR_PROFILE")
	_ = v.BindEnv("extractor.python_api_url", "PYTHON_API_URL")
	_ = v.BindEnv("gateway.rate_limit_enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("gateway.rate_limit_max", "RATE_LIMIT_MAX")
	_ = v.BindEnv("gateway.rate_limit_window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("transport.request_timeout", "REQUEST_TIMEOUT")
	_ = v.BindEnv("extractor.facebook_cookie", "FACEBOOK_COOKIE")
	_ = v.BindEnv("extractor.instagram_cookie", "INSTAGRAM_COOKIE")
	_ = v.BindEnv("extractor.twitter_cookie", "TWITTER_COOKIE")
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults
// are in place.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	v.SetDefault("transport.request_timeout", defaultRequestTimeout)
	v.SetDefault("transport.max_redirects", defaultMaxRedirects)
	v.SetDefault("transport.connection_pool_size", defaultConnectionPoolSize)
	v.SetDefault("transport.keep_alive", defaultKeepAlive)
	v.SetDefault("transport.user_agent", "mediagate/1.0")

	v.SetDefault("gateway.allowed_origins", []string{})
	v.SetDefault("gateway.api_keys", []string{})
	v.SetDefault("gateway.rate_limit_enabled", true)
	v.SetDefault("gateway.rate_limit_max", defaultRateLimitMax)
	v.SetDefault("gateway.rate_limit_window", defaultRateLimitWindow)
	v.SetDefault("gateway.wrapper_rate_limit", defaultWrapperRateLimit)

	v.SetDefault("extractor.profile", "full")
	v.SetDefault("extractor.python_api_url", "http://127.0.0.1:5000")
	v.SetDefault("extractor.tiktok_helper_api", "http://127.0.0.1:3035/api/hybrid/video_data")

	v.SetDefault("registry.ttl", defaultRegistryTTL)
	v.SetDefault("registry.sweep_interval", defaultSweepInterval)

	v.SetDefault("delivery.streaming_window", int64(defaultStreamingWindow))
	v.SetDefault("delivery.muxer_binary", "")
	v.SetDefault("delivery.muxer_max_duration", defaultMuxerMaxDuration)
	v.SetDefault("delivery.thumbnail_cache_ttl", defaultThumbnailCacheTTL)
	v.SetDefault("delivery.hls_segment_ttl", defaultHLSSegmentTTL)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	validProfiles := map[string]bool{"vercel": true, "full": true}
	if !validProfiles[c.Extractor.Profile] {
		return fmt.Errorf("extractor.profile must be one of: vercel, full")
	}

	if c.Registry.TTL <= 0 {
		return fmt.Errorf("registry.ttl must be positive")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsVercelProfile reports whether wrapper-backed platforms are disabled.
func (c *ExtractorConfig) IsVercelProfile() bool {
	return c.Profile == "vercel"
}

// ServerCookie returns the configured Tier-B cookie for the given platform
// name ("facebook", "instagram", "twitter"), or "" if none is configured.
func (c *ExtractorConfig) ServerCookie(platform string) string {
	switch platform {
	case "facebook":
		return c.FacebookCookie
	case "instagram":
		return c.InstagramCookie
	case "twitter":
		return c.TwitterCookie
	default:
		return ""
	}
}
