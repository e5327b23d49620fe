package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that DefaultConfig returns valid defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Expected addr 0.0.0.0:8080, got %s", cfg.Server.Addr())
	}

	if cfg.Feed.Type != FeedADSBExchange {
		t.Errorf("Expected adsbexchange feed, got %s", cfg.Feed.Type)
	}
	if cfg.Feed.Radius != 10 {
		t.Errorf("Expected radius 10, got %d", cfg.Feed.Radius)
	}
	if cfg.Feed.Timeout() != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %v", cfg.Feed.Timeout())
	}

	if cfg.Ticker.PollInterval() != 20*time.Second {
		t.Errorf("Expected 20s poll interval, got %v", cfg.Ticker.PollInterval())
	}
	if cfg.Ticker.ScrambleInterval() != 50*time.Millisecond {
		t.Errorf("Expected 50ms scramble interval, got %v", cfg.Ticker.ScrambleInterval())
	}
	if cfg.Ticker.SettleAfter() != time.Second {
		t.Errorf("Expected 1s settle, got %v", cfg.Ticker.SettleAfter())
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

// TestLoadNonExistentFile tests that Load returns default config when file doesn't exist.
func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}
	if cfg.Feed.Radius != 10 {
		t.Error("Did not get default config for non-existent file")
	}
}

// TestLoadPartialConfig tests that missing sections keep their defaults.
func TestLoadPartialConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.json")
	body := `{"feed": {"type": "airplanes.live", "base_url": "https://api.airplanes.live/v2"},
	          "observer": {"latitude": 40.6895, "longitude": -74.1745}}`
	if err := os.WriteFile(configPath, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Feed.Type != FeedAirplanesLive {
		t.Errorf("Expected airplanes.live, got %s", cfg.Feed.Type)
	}
	if cfg.Feed.Radius != 10 {
		t.Errorf("Expected default radius to survive, got %d", cfg.Feed.Radius)
	}
	if cfg.Observer.Latitude != 40.6895 {
		t.Errorf("Expected latitude 40.6895, got %f", cfg.Observer.Latitude)
	}
	if cfg.Ticker.PollIntervalMs != 20000 {
		t.Errorf("Expected default poll interval, got %d", cfg.Ticker.PollIntervalMs)
	}
}

// TestLoadInvalidJSON tests error handling for malformed JSON.
func TestLoadInvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.json")
	if err := os.WriteFile(configPath, []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

// TestSaveConfig tests that a saved config loads back unchanged.
func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.json")

	cfg := DefaultConfig()
	cfg.Server.Port = "9999"
	cfg.Observer.Name = "Test Save"
	cfg.Ticker.PollIntervalMs = 5000

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Server.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", loaded.Server.Port)
	}
	if loaded.Observer.Name != "Test Save" {
		t.Errorf("Expected observer name 'Test Save', got %s", loaded.Observer.Name)
	}
	if loaded.Ticker.PollIntervalMs != 5000 {
		t.Errorf("Expected poll interval 5000, got %d", loaded.Ticker.PollIntervalMs)
	}
}

// TestEnvironmentOverrides tests environment variable overrides.
func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("OVERHEAD_PORT", "7777")
	t.Setenv("OVERHEAD_FEED_API_KEY", "env-key")
	t.Setenv("OVERHEAD_FEED_BASE_URL", "http://feed.local")
	t.Setenv("OVERHEAD_LOG_LEVEL", "debug")

	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	for _, path := range []string{configPath, "/nonexistent/config.json"} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if cfg.Server.Port != "7777" {
			t.Errorf("%s: expected port 7777 from env, got %s", path, cfg.Server.Port)
		}
		if cfg.Feed.APIKey != "env-key" {
			t.Errorf("%s: expected API key from env, got %s", path, cfg.Feed.APIKey)
		}
		if cfg.Feed.BaseURL != "http://feed.local" {
			t.Errorf("%s: expected base URL from env, got %s", path, cfg.Feed.BaseURL)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("%s: expected debug level from env, got %s", path, cfg.Logging.Level)
		}
	}
}

// TestValidate tests rejection of unusable settings.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "Defaults", mutate: func(*Config) {}},
		{name: "Airplanes.live", mutate: func(c *Config) { c.Feed.Type = FeedAirplanesLive }},
		{name: "Unknown feed", mutate: func(c *Config) { c.Feed.Type = "opensky" }, wantErr: "unknown feed type"},
		{name: "Zero radius", mutate: func(c *Config) { c.Feed.Radius = 0 }, wantErr: "radius"},
		{name: "Zero rate", mutate: func(c *Config) { c.Feed.RequestsPerSecond = 0 }, wantErr: "requests_per_second"},
		{name: "Zero timeout", mutate: func(c *Config) { c.Feed.TimeoutSeconds = 0 }, wantErr: "timeout_seconds"},
		{name: "Negative poll", mutate: func(c *Config) { c.Ticker.PollIntervalMs = -1 }, wantErr: "ticker"},
		{name: "Zero settle", mutate: func(c *Config) { c.Ticker.SettleAfterMs = 0 }, wantErr: "ticker"},
		{name: "JSON logs", mutate: func(c *Config) { c.Logging.Format = "JSON" }},
		{name: "Unknown log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
