package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. WATCHSCOUT_TMDB_API_KEY
const EnvPrefix = "WATCHSCOUT"

// MaxConcurrency bounds lookup.concurrency
const MaxConcurrency = 10

var (
	regionPattern = regexp.MustCompile(`^[A-Z]{2}$`)

	validOfferTypes = map[string]bool{
		"flatrate": true,
		"free":     true,
		"ads":      true,
		"rent":     true,
		"buy":      true,
	}
)

// Load loads the configuration from file. An empty configPath searches the
// working directory and ~/.config/watchscout for config.toml.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "watchscout"))
		}
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// No file in the search path; environment overrides may still carry the key.
		case errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("%w: config file not found: %s", ErrMissing, configPath)
		default:
			return nil, fmt.Errorf("%w: error reading config: %v", ErrMalformed, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: error unmarshaling config: %v", ErrMalformed, err)
	}

	// [TMDB] key = "..." is the layout older config files use
	if cfg.TMDB.APIKey == "" {
		cfg.TMDB.APIKey = v.GetString("tmdb.key")
	}

	normalize(&cfg)

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TMDB defaults
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.region", "US")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.offer_types", []string{"flatrate"})

	// Letterboxd defaults
	v.SetDefault("letterboxd.base_url", "https://letterboxd.com")
	v.SetDefault("letterboxd.user_agent", "Mozilla/5.0")

	// Lookup defaults
	v.SetDefault("lookup.concurrency", 5)
	v.SetDefault("lookup.max_attempts", 4)
	v.SetDefault("lookup.base_delay", 500*time.Millisecond)
	v.SetDefault("lookup.max_delay", 10*time.Second)
	v.SetDefault("lookup.jitter", 250*time.Millisecond)
	v.SetDefault("lookup.request_timeout", 30*time.Second)

	// Report defaults
	v.SetDefault("report.format", "text")
	v.SetDefault("report.highlight", "")
	v.SetDefault("report.summary", true)

	// Radarr defaults
	v.SetDefault("radarr.enabled", false)
	v.SetDefault("radarr.url", "")
	v.SetDefault("radarr.api_key", "")

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

func normalize(cfg *Config) {
	cfg.TMDB.APIKey = strings.TrimSpace(cfg.TMDB.APIKey)
	cfg.TMDB.Region = strings.ToUpper(strings.TrimSpace(cfg.TMDB.Region))
	cfg.TMDB.BaseURL = strings.TrimRight(cfg.TMDB.BaseURL, "/")
	cfg.Letterboxd.BaseURL = strings.TrimRight(cfg.Letterboxd.BaseURL, "/")
	cfg.Report.Format = strings.ToLower(strings.TrimSpace(cfg.Report.Format))
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)

	for i, t := range cfg.TMDB.OfferTypes {
		cfg.TMDB.OfferTypes[i] = strings.ToLower(strings.TrimSpace(t))
	}
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.APIKey == "" || cfg.TMDB.APIKey == "your-api-key-here" {
		return fmt.Errorf("%w: tmdb.api_key must be set to a valid API key", ErrMissing)
	}

	if cfg.TMDB.BaseURL == "" {
		return fmt.Errorf("%w: tmdb.base_url is required", ErrMissing)
	}

	if err := ValidateRegion(cfg.TMDB.Region); err != nil {
		return err
	}

	if len(cfg.TMDB.OfferTypes) == 0 {
		return fmt.Errorf("%w: tmdb.offer_types must list at least one offer type", ErrMalformed)
	}
	for _, t := range cfg.TMDB.OfferTypes {
		if !validOfferTypes[t] {
			return fmt.Errorf("%w: invalid tmdb.offer_types entry: %s", ErrMalformed, t)
		}
	}

	if cfg.Letterboxd.BaseURL == "" {
		return fmt.Errorf("%w: letterboxd.base_url is required", ErrMissing)
	}

	if err := ValidateConcurrency(cfg.Lookup.Concurrency); err != nil {
		return err
	}
	if cfg.Lookup.MaxAttempts < 1 || cfg.Lookup.MaxAttempts > 10 {
		return fmt.Errorf("%w: lookup.max_attempts must be between 1 and 10", ErrMalformed)
	}
	if cfg.Lookup.BaseDelay < 0 || cfg.Lookup.Jitter < 0 {
		return fmt.Errorf("%w: lookup delays must not be negative", ErrMalformed)
	}
	if cfg.Lookup.MaxDelay < cfg.Lookup.BaseDelay {
		return fmt.Errorf("%w: lookup.max_delay must not be shorter than lookup.base_delay", ErrMalformed)
	}
	if cfg.Lookup.RequestTimeout <= 0 {
		return fmt.Errorf("%w: lookup.request_timeout must be positive", ErrMalformed)
	}

	if err := ValidateFormat(cfg.Report.Format); err != nil {
		return err
	}

	if cfg.Radarr.Enabled {
		if cfg.Radarr.URL == "" {
			return fmt.Errorf("%w: radarr.url is required when radarr is enabled", ErrMissing)
		}
		if cfg.Radarr.APIKey == "" {
			return fmt.Errorf("%w: radarr.api_key is required when radarr is enabled", ErrMissing)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("%w: invalid logging level: %s", ErrMalformed, cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("%w: invalid logging format: %s", ErrMalformed, cfg.Logging.Format)
	}

	return nil
}

// ValidateRegion checks for a two-letter ISO 3166-1 country code in upper case
func ValidateRegion(region string) error {
	if !regionPattern.MatchString(region) {
		return fmt.Errorf("%w: invalid region %q (want a two-letter country code such as US)", ErrMalformed, region)
	}
	return nil
}

// ValidateConcurrency checks the number of in-flight lookups
func ValidateConcurrency(n int) error {
	if n < 1 || n > MaxConcurrency {
		return fmt.Errorf("%w: lookup.concurrency must be between 1 and %d", ErrMalformed, MaxConcurrency)
	}
	return nil
}

// ValidateFormat checks the report output format
func ValidateFormat(format string) error {
	switch format {
	case "text", "table", "json":
		return nil
	}
	return fmt.Errorf("%w: invalid report format: %s (must be 'text', 'table' or 'json')", ErrMalformed, format)
}
