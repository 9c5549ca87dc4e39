package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	os.Setenv("CINEVO_TMDB_API_KEY", "test-key")
	defer os.Unsetenv("CINEVO_TMDB_API_KEY")

	// Reset cfg to nil to force reload
	cfg = nil

	err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	config := Get()
	if config.TMDB.APIKey != "test-key" {
		t.Errorf("expected api key from env, got %s", config.TMDB.APIKey)
	}
	if config.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("expected default base url, got %s", config.TMDB.BaseURL)
	}
	if config.TMDB.RetryAttempts != 1 {
		t.Errorf("expected single attempt by default, got %d", config.TMDB.RetryAttempts)
	}
	if config.Database.Driver != "sqlite" {
		t.Errorf("expected default driver 'sqlite', got %s", config.Database.Driver)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", config.Logging.Level)
	}
	if config.API.Port != 8080 {
		t.Errorf("expected default API port 8080, got %d", config.API.Port)
	}
	if config.History.MaxSize != 50 {
		t.Errorf("expected default history size 50, got %d", config.History.MaxSize)
	}
	if config.Favorites.StorageKey != "cinevoFavorites" {
		t.Errorf("expected favorites key 'cinevoFavorites', got %s", config.Favorites.StorageKey)
	}
	if len(config.Streaming.Sources) != 4 {
		t.Fatalf("expected 4 default sources, got %d", len(config.Streaming.Sources))
	}
	if config.Streaming.Sources[0].Key != "vidsrc" {
		t.Errorf("expected first source 'vidsrc', got %s", config.Streaming.Sources[0].Key)
	}
	if len(config.Subtitles.Languages) != 4 {
		t.Errorf("expected 4 subtitle languages, got %d", len(config.Subtitles.Languages))
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	os.Setenv("CINEVO_LOGGING_LEVEL", "invalid")
	defer os.Unsetenv("CINEVO_LOGGING_LEVEL")

	cfg = nil
	err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "logging.level must be one of") {
		t.Errorf("expected error about log level, got: %s", err.Error())
	}
}

func TestGet_ReturnsDefaultWhenNotLoaded(t *testing.T) {
	cfg = nil
	c := Get()
	if c.Content.DefaultPoster != "https://via.placeholder.com/500x750" {
		t.Errorf("expected placeholder poster, got %s", c.Content.DefaultPoster)
	}
}

func TestGetAppLogLevel_ModularConfig(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			App: LogLevelConfig{Level: "debug"},
		},
	}

	level := cfg.GetAppLogLevel()
	if level != "debug" {
		t.Errorf("expected app log level 'debug', got %s", level)
	}
}

func TestGetAppLogLevel_LegacyFallback(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level: "warn",
		},
	}

	level := cfg.GetAppLogLevel()
	if level != "warn" {
		t.Errorf("expected app log level 'warn' from legacy config, got %s", level)
	}
}

func TestGetAppLogLevel_DefaultFallback(t *testing.T) {
	cfg := &Config{}

	level := cfg.GetAppLogLevel()
	if level != "info" {
		t.Errorf("expected default app log level 'info', got %s", level)
	}
}

func TestGetDatabaseLogLevel_ModularConfig(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:    "debug",
			Database: LogLevelConfig{Level: "error"},
		},
	}

	level := cfg.GetDatabaseLogLevel()
	if level != "error" {
		t.Errorf("expected database log level 'error', got %s", level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"invalid app level", func(c *Config) { c.Logging.App.Level = "loud" }, "logging.app.level"},
		{"invalid db level", func(c *Config) { c.Logging.Database.Level = "quiet" }, "logging.database.level"},
		{"invalid format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"postgres without user", func(c *Config) { c.Database.Driver = "postgres" }, "database.user"},
		{"postgres with credentials", func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.User = "cinevo"
			c.Database.DBName = "cinevo"
		}, ""},
		{"zero history size", func(c *Config) { c.History.MaxSize = 0 }, "history.max_size"},
		{"unknown default source", func(c *Config) { c.Streaming.Default = "nope" }, "streaming.default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError == "" {
				if err != nil {
					t.Errorf("unexpected validation error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected validation error containing %q, got nil", tt.expectError)
			}
			if !strings.Contains(err.Error(), tt.expectError) {
				t.Errorf("expected error containing %q, got %q", tt.expectError, err.Error())
			}
		})
	}
}

func TestCacheTTL(t *testing.T) {
	c := Default()
	if c.CacheTTL() != time.Hour {
		t.Errorf("expected 1h TTL, got %v", c.CacheTTL())
	}

	c.Performance.CacheDurationMS = 0
	if c.CacheTTL() != 0 {
		t.Errorf("expected no expiry, got %v", c.CacheTTL())
	}
}

func TestEnabledSources(t *testing.T) {
	c := Default()
	c.Streaming.Sources[1].Enabled = false

	sources := c.EnabledSources()
	if len(sources) != 3 {
		t.Fatalf("expected 3 enabled sources, got %d", len(sources))
	}
	for _, s := range sources {
		if s.Key == "superembed" {
			t.Error("disabled source should be skipped")
		}
	}

	c.Streaming.Enabled = false
	if len(c.EnabledSources()) != 0 {
		t.Error("expected no sources when streaming is disabled")
	}
}
