package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	TMDB       TMDBConfig       `mapstructure:"tmdb"`
	Letterboxd LetterboxdConfig `mapstructure:"letterboxd"`
	Lookup     LookupConfig     `mapstructure:"lookup"`
	Report     ReportConfig     `mapstructure:"report"`
	Radarr     RadarrConfig     `mapstructure:"radarr"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// TMDBConfig holds The Movie Database API credentials and lookup settings
type TMDBConfig struct {
	APIKey     string   `mapstructure:"api_key"`
	BaseURL    string   `mapstructure:"base_url"`
	Region     string   `mapstructure:"region"`
	Language   string   `mapstructure:"language"`
	OfferTypes []string `mapstructure:"offer_types"`
}

// LetterboxdConfig holds settings for the watchlist scraper
type LetterboxdConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// LookupConfig controls concurrency and retry behaviour of availability lookups
type LookupConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BaseDelay      time.Duration `mapstructure:"base_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`
	Jitter         time.Duration `mapstructure:"jitter"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ReportConfig contains output settings
type ReportConfig struct {
	Format    string `mapstructure:"format"`
	Highlight string `mapstructure:"highlight"`
	Summary   bool   `mapstructure:"summary"`
}

// RadarrConfig holds Radarr API connection details
type RadarrConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
