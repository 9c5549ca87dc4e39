package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	API         APIConfig         `mapstructure:"api"`
	Site        SiteConfig        `mapstructure:"site"`
	TMDB        TMDBConfig        `mapstructure:"tmdb"`
	Streaming   StreamingConfig   `mapstructure:"streaming"`
	Subtitles   SubtitlesConfig   `mapstructure:"subtitles"`
	Performance PerformanceConfig `mapstructure:"performance"`
	Content     ContentConfig     `mapstructure:"content"`
	Favorites   FavoritesConfig   `mapstructure:"favorites"`
	History     HistoryConfig     `mapstructure:"history"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite or postgres
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Legacy field (deprecated but supported)
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	App      LogLevelConfig `mapstructure:"app"`
	Database LogLevelConfig `mapstructure:"database"`
}

// LogLevelConfig represents log level configuration for a specific component
type LogLevelConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// APIConfig holds API server settings
type APIConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// SiteConfig holds presentation settings that affect API responses
type SiteConfig struct {
	Title    string `mapstructure:"title"`
	Language string `mapstructure:"language"`
}

// TMDBConfig holds TMDB API settings
type TMDBConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	ImageBase         string  `mapstructure:"image_base"`
	Language          string  `mapstructure:"language"`
	Region            string  `mapstructure:"region"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RetryAttempts     int     `mapstructure:"retry_attempts"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// StreamingConfig holds the embed sources used to build player links
type StreamingConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Default string         `mapstructure:"default"`
	Sources []SourceConfig `mapstructure:"sources"`
}

// SourceConfig describes one embed source
type SourceConfig struct {
	Key         string `mapstructure:"key"`
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	Quality     string `mapstructure:"quality"`
	Enabled     bool   `mapstructure:"enabled"`
	Reliability string `mapstructure:"reliability"`
}

// SubtitlesConfig holds subtitle lookup settings
type SubtitlesConfig struct {
	Enabled             bool             `mapstructure:"enabled"`
	AutoLoad            bool             `mapstructure:"auto_load"`
	DefaultLanguage     string           `mapstructure:"default_language"`
	Languages           []LanguageConfig `mapstructure:"languages"`
	OpenSubtitlesAPIKey string           `mapstructure:"opensubtitles_api_key"`
	SubDLAPIKey         string           `mapstructure:"subdl_api_key"`
	TimeoutSeconds      int              `mapstructure:"timeout_seconds"`
}

// LanguageConfig is one entry of the subtitle language selector
type LanguageConfig struct {
	Code    string `mapstructure:"code"`
	Default bool   `mapstructure:"default"`
}

// PerformanceConfig holds content cache settings
type PerformanceConfig struct {
	CacheEnabled    bool  `mapstructure:"cache_enabled"`
	CacheDurationMS int64 `mapstructure:"cache_duration_ms"`
}

// ContentConfig holds grid and placeholder settings
type ContentConfig struct {
	ItemsPerPage         int    `mapstructure:"items_per_page"`
	PostersPerGrid       int    `mapstructure:"posters_per_grid"`
	DescriptionMaxLength int    `mapstructure:"description_max_length"`
	DefaultPoster        string `mapstructure:"default_poster"`
	DefaultBackdrop      string `mapstructure:"default_backdrop"`
}

// FavoritesConfig holds favorites store settings
type FavoritesConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	MaxFavorites int    `mapstructure:"max_favorites"`
	StorageKey   string `mapstructure:"storage_key"`
}

// HistoryConfig holds watch history settings
type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	MaxSize    int    `mapstructure:"max_size"`
	StorageKey string `mapstructure:"storage_key"`
}

var cfg *Config

// bindEnvWithAlternatives binds a viper key to environment variables with alternative names
// This allows supporting both CINEVO_TMDB_API_KEY and TMDB_API_KEY for the same config key
func bindEnvWithAlternatives(key string, alternatives ...string) {
	viper.BindEnv(key)
	for _, alt := range alternatives {
		if value := os.Getenv(alt); value != "" {
			viper.Set(key, value)
			break
		}
	}
}

// Load reads configuration from file and environment variables
func Load() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cinevo")

	setDefaults()

	viper.SetEnvPrefix("CINEVO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvWithAlternatives("database.driver", "DB_DRIVER")
	bindEnvWithAlternatives("database.path", "DB_PATH")
	bindEnvWithAlternatives("database.host", "DB_HOST")
	bindEnvWithAlternatives("database.port", "DB_PORT")
	bindEnvWithAlternatives("database.user", "DB_USER")
	bindEnvWithAlternatives("database.password", "DB_PASSWORD")
	bindEnvWithAlternatives("database.dbname", "DB_NAME")
	bindEnvWithAlternatives("database.sslmode", "DB_SSLMODE")

	bindEnvWithAlternatives("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format")
	viper.BindEnv("logging.app.level")
	viper.BindEnv("logging.database.level")

	bindEnvWithAlternatives("api.port", "API_PORT")
	viper.BindEnv("site.language")

	bindEnvWithAlternatives("tmdb.api_key", "TMDB_API_KEY")
	viper.BindEnv("tmdb.base_url")
	viper.BindEnv("tmdb.image_base")
	viper.BindEnv("tmdb.language")
	viper.BindEnv("tmdb.region")
	viper.BindEnv("tmdb.timeout_seconds")
	viper.BindEnv("tmdb.retry_attempts")
	viper.BindEnv("tmdb.requests_per_second")

	viper.BindEnv("streaming.enabled")
	viper.BindEnv("streaming.default")

	viper.BindEnv("subtitles.enabled")
	viper.BindEnv("subtitles.default_language")
	bindEnvWithAlternatives("subtitles.opensubtitles_api_key", "OPENSUBTITLES_API_KEY")
	bindEnvWithAlternatives("subtitles.subdl_api_key", "SUBDL_API_KEY")

	viper.BindEnv("performance.cache_enabled")
	viper.BindEnv("performance.cache_duration_ms")

	viper.BindEnv("favorites.max_favorites")
	viper.BindEnv("favorites.storage_key")
	viper.BindEnv("history.max_size")
	viper.BindEnv("history.storage_key")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// Set replaces the current configuration (primarily for testing)
func Set(c *Config) {
	cfg = c
}

// Reload reloads the configuration from file
func Reload() error {
	return Load()
}

// Default returns the built-in configuration without reading files or env
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite", Path: "./data/cinevo.db", Host: "localhost", Port: 5432, SSLMode: "disable"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		API:      APIConfig{Port: 8080},
		Site:     SiteConfig{Title: "Cinevo Box", Language: "ar"},
		TMDB: TMDBConfig{
			BaseURL:        "https://api.themoviedb.org/3",
			ImageBase:      "https://image.tmdb.org/t/p/w500",
			Language:       "ar-AR",
			Region:         "SA",
			TimeoutSeconds: 10,
			RetryAttempts:  1,
		},
		Streaming: StreamingConfig{Enabled: true, Default: "vidsrc", Sources: defaultSources()},
		Subtitles: SubtitlesConfig{
			Enabled:         true,
			AutoLoad:        true,
			DefaultLanguage: "ar",
			Languages:       defaultLanguages(),
			TimeoutSeconds:  10,
		},
		Performance: PerformanceConfig{CacheEnabled: true, CacheDurationMS: 3600000},
		Content: ContentConfig{
			ItemsPerPage:         20,
			PostersPerGrid:       6,
			DescriptionMaxLength: 200,
			DefaultPoster:        "https://via.placeholder.com/500x750",
			DefaultBackdrop:      "https://via.placeholder.com/1200x600",
		},
		Favorites: FavoritesConfig{Enabled: true, MaxFavorites: 999, StorageKey: "cinevoFavorites"},
		History:   HistoryConfig{Enabled: true, MaxSize: 50, StorageKey: "watchHistory"},
	}
}

func defaultSources() []SourceConfig {
	return []SourceConfig{
		{Key: "vidsrc", Name: "VidSrc", URL: "https://vidsrc.to/embed/movie/", Quality: "1080p", Enabled: true, Reliability: "high"},
		{Key: "superembed", Name: "SuperEmbed", URL: "https://superembed.stream/embed/", Quality: "1080p", Enabled: true, Reliability: "high"},
		{Key: "flixhq", Name: "FlixHQ", URL: "https://flixhq.to/embed/", Quality: "1080p", Enabled: true, Reliability: "high"},
		{Key: "autoembed", Name: "AutoEmbed", URL: "https://autoembed.to/embed/", Quality: "1080p", Enabled: true, Reliability: "high"},
	}
}

func defaultLanguages() []LanguageConfig {
	return []LanguageConfig{
		{Code: "ar", Default: true},
		{Code: "en"},
		{Code: "es"},
		{Code: "fr"},
	}
}

func setDefaults() {
	d := Default()

	// Database defaults
	viper.SetDefault("database.driver", d.Database.Driver)
	viper.SetDefault("database.path", d.Database.Path)
	viper.SetDefault("database.host", d.Database.Host)
	viper.SetDefault("database.port", d.Database.Port)
	viper.SetDefault("database.sslmode", d.Database.SSLMode)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// API defaults
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("site.title", d.Site.Title)
	viper.SetDefault("site.language", d.Site.Language)

	// TMDB defaults
	viper.SetDefault("tmdb.base_url", d.TMDB.BaseURL)
	viper.SetDefault("tmdb.image_base", d.TMDB.ImageBase)
	viper.SetDefault("tmdb.language", d.TMDB.Language)
	viper.SetDefault("tmdb.region", d.TMDB.Region)
	viper.SetDefault("tmdb.timeout_seconds", d.TMDB.TimeoutSeconds)
	viper.SetDefault("tmdb.retry_attempts", d.TMDB.RetryAttempts)
	viper.SetDefault("tmdb.requests_per_second", 0)

	// Streaming defaults
	viper.SetDefault("streaming.enabled", true)
	viper.SetDefault("streaming.default", d.Streaming.Default)
	viper.SetDefault("streaming.sources", toMaps(d.Streaming.Sources))

	// Subtitle defaults
	viper.SetDefault("subtitles.enabled", true)
	viper.SetDefault("subtitles.auto_load", true)
	viper.SetDefault("subtitles.default_language", d.Subtitles.DefaultLanguage)
	viper.SetDefault("subtitles.timeout_seconds", d.Subtitles.TimeoutSeconds)
	languages := make([]map[string]interface{}, 0, len(d.Subtitles.Languages))
	for _, l := range d.Subtitles.Languages {
		languages = append(languages, map[string]interface{}{"code": l.Code, "default": l.Default})
	}
	viper.SetDefault("subtitles.languages", languages)

	// Performance defaults
	viper.SetDefault("performance.cache_enabled", true)
	viper.SetDefault("performance.cache_duration_ms", d.Performance.CacheDurationMS)

	// Content defaults
	viper.SetDefault("content.items_per_page", d.Content.ItemsPerPage)
	viper.SetDefault("content.posters_per_grid", d.Content.PostersPerGrid)
	viper.SetDefault("content.description_max_length", d.Content.DescriptionMaxLength)
	viper.SetDefault("content.default_poster", d.Content.DefaultPoster)
	viper.SetDefault("content.default_backdrop", d.Content.DefaultBackdrop)

	// Favorites and history defaults
	viper.SetDefault("favorites.enabled", true)
	viper.SetDefault("favorites.max_favorites", d.Favorites.MaxFavorites)
	viper.SetDefault("favorites.storage_key", d.Favorites.StorageKey)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.max_size", d.History.MaxSize)
	viper.SetDefault("history.storage_key", d.History.StorageKey)
}

func toMaps(sources []SourceConfig) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(sources))
	for _, s := range sources {
		out = append(out, map[string]interface{}{
			"key":         s.Key,
			"name":        s.Name,
			"url":         s.URL,
			"quality":     s.Quality,
			"enabled":     s.Enabled,
			"reliability": s.Reliability,
		})
	}
	return out
}

func validate() error {
	return cfg.Validate()
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats := map[string]bool{"json": true, "text": true}
	validDrivers := map[string]bool{"sqlite": true, "postgres": true}

	if c.Logging.Format != "" && !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.App.Level != "" && !validLevels[c.Logging.App.Level] {
		return fmt.Errorf("logging.app.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Database.Level != "" && !validLevels[c.Logging.Database.Level] {
		return fmt.Errorf("logging.database.level must be one of: debug, info, warn, error")
	}

	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres")
	}
	if c.Database.Driver == "postgres" && (c.Database.User == "" || c.Database.DBName == "") {
		return fmt.Errorf("database.user and database.dbname are required for postgres")
	}

	if c.History.MaxSize < 1 {
		return fmt.Errorf("history.max_size must be at least 1")
	}

	if c.Streaming.Default != "" && len(c.Streaming.Sources) > 0 {
		found := false
		for _, s := range c.Streaming.Sources {
			if s.Key == c.Streaming.Default {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("streaming.default %q is not a configured source", c.Streaming.Default)
		}
	}

	return nil
}

// GetAppLogLevel returns the log level for application logging
// Priority: logging.app.level → logging.level → "info"
func (c *Config) GetAppLogLevel() string {
	if c.Logging.App.Level != "" {
		return c.Logging.App.Level
	}
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	return "info"
}

// GetDatabaseLogLevel returns the log level for database logging
// Priority: logging.database.level → logging.level → "info"
func (c *Config) GetDatabaseLogLevel() string {
	if c.Logging.Database.Level != "" {
		return c.Logging.Database.Level
	}
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	return "info"
}

// CacheTTL returns the content cache lifetime; zero means entries never expire
func (c *Config) CacheTTL() time.Duration {
	if c.Performance.CacheDurationMS <= 0 {
		return 0
	}
	return time.Duration(c.Performance.CacheDurationMS) * time.Millisecond
}

// EnabledSources returns the streaming sources that are switched on, in configured order
func (c *Config) EnabledSources() []SourceConfig {
	if !c.Streaming.Enabled {
		return nil
	}
	out := make([]SourceConfig, 0, len(c.Streaming.Sources))
	for _, s := range c.Streaming.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
