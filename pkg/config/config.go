package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Feed types understood by FeedConfig.Type.
const (
	FeedADSBExchange  = "adsbexchange"
	FeedAirplanesLive = "airplanes.live"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Feed     FeedConfig     `json:"feed"`
	Ticker   TickerConfig   `json:"ticker"`
	Observer ObserverConfig `json:"observer"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host"`

	// AllowedOrigins is the CORS allow list for the resolution endpoint
	AllowedOrigins []string `json:"allowed_origins"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// FeedConfig selects and tunes the live-traffic feed.
type FeedConfig struct {
	// Type is "adsbexchange" (RapidAPI) or "airplanes.live"
	Type string `json:"type"`

	// BaseURL overrides the feed's public endpoint (empty = provider default)
	BaseURL string `json:"base_url"`

	// Host is sent as X-RapidAPI-Host (adsbexchange only)
	Host string `json:"host,omitempty"`

	// APIKey is sent as X-RapidAPI-Key; keep it in OVERHEAD_FEED_API_KEY
	APIKey string `json:"api_key,omitempty"`

	// Radius is the query radius in the feed's native unit
	Radius int `json:"radius"`

	// RequestsPerSecond caps outbound calls
	RequestsPerSecond float64 `json:"requests_per_second"`

	// TimeoutSeconds bounds one feed request
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Timeout returns TimeoutSeconds as a duration.
func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// TickerConfig holds the display refresh and animation timing.
type TickerConfig struct {
	PollIntervalMs     int `json:"poll_interval_ms"`
	ScrambleIntervalMs int `json:"scramble_interval_ms"`
	SettleAfterMs      int `json:"settle_after_ms"`
}

// PollInterval returns the feed polling period.
func (t TickerConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalMs) * time.Millisecond
}

// ScrambleInterval returns the per-cell scramble period.
func (t TickerConfig) ScrambleInterval() time.Duration {
	return time.Duration(t.ScrambleIntervalMs) * time.Millisecond
}

// SettleAfter returns how long a reveal runs before every cell settles.
func (t TickerConfig) SettleAfter() time.Duration {
	return time.Duration(t.SettleAfterMs) * time.Millisecond
}

// ObserverConfig is the default position used when none is given on the
// command line.
type ObserverConfig struct {
	// Name is a friendly identifier for this observer location
	Name string `json:"name"`

	// Latitude in decimal degrees (-90 to +90)
	Latitude float64 `json:"latitude"`

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64 `json:"longitude"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `json:"level"`

	// Format is "text" or "json"
	Format string `json:"format"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
// Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		Feed: FeedConfig{
			Type:              FeedADSBExchange,
			Radius:            10,
			RequestsPerSecond: 1.0,
			TimeoutSeconds:    10,
		},
		Ticker: TickerConfig{
			PollIntervalMs:     20000,
			ScrambleIntervalMs: 50,
			SettleAfterMs:      1000,
		},
		Observer: ObserverConfig{
			Name: "Primary Observer",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Feed.Type {
	case FeedADSBExchange, FeedAirplanesLive:
	default:
		return fmt.Errorf("unknown feed type %q", c.Feed.Type)
	}
	if c.Feed.Radius <= 0 {
		return fmt.Errorf("feed radius must be positive, got %d", c.Feed.Radius)
	}
	if c.Feed.RequestsPerSecond <= 0 {
		return fmt.Errorf("feed requests_per_second must be positive, got %g", c.Feed.RequestsPerSecond)
	}
	if c.Feed.TimeoutSeconds <= 0 {
		return fmt.Errorf("feed timeout_seconds must be positive, got %d", c.Feed.TimeoutSeconds)
	}
	if c.Ticker.PollIntervalMs <= 0 || c.Ticker.ScrambleIntervalMs <= 0 || c.Ticker.SettleAfterMs <= 0 {
		return fmt.Errorf("ticker intervals must be positive: %+v", c.Ticker)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This allows the feed key to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("OVERHEAD_PORT"); port != "" {
		c.Server.Port = port
	}
	if apiKey := os.Getenv("OVERHEAD_FEED_API_KEY"); apiKey != "" {
		c.Feed.APIKey = apiKey
	}
	if baseURL := os.Getenv("OVERHEAD_FEED_BASE_URL"); baseURL != "" {
		c.Feed.BaseURL = baseURL
	}
	if level := os.Getenv("OVERHEAD_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}
