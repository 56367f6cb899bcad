package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("WATCHSCOUT_TMDB_API_KEY", "")

	t.Run("minimal file uses defaults", func(t *testing.T) {
		path := writeConfig(t, "[tmdb]\napi_key = \"abc123\"\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "abc123", cfg.TMDB.APIKey)
		assert.Equal(t, "US", cfg.TMDB.Region)
		assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
		assert.Equal(t, []string{"flatrate"}, cfg.TMDB.OfferTypes)
		assert.Equal(t, 5, cfg.Lookup.Concurrency)
		assert.Equal(t, 4, cfg.Lookup.MaxAttempts)
		assert.Equal(t, 500*time.Millisecond, cfg.Lookup.BaseDelay)
		assert.Equal(t, "text", cfg.Report.Format)
		assert.True(t, cfg.Report.Summary)
		assert.False(t, cfg.Radarr.Enabled)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		path := writeConfig(t, `
[tmdb]
api_key = "abc123"
region = "pl"
future_option = true

[something_else]
value = 3
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "PL", cfg.TMDB.Region)
	})

	t.Run("legacy key layout", func(t *testing.T) {
		path := writeConfig(t, "[TMDB]\nkey = \"legacy-key\"\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "legacy-key", cfg.TMDB.APIKey)
	})

	t.Run("durations and lists", func(t *testing.T) {
		path := writeConfig(t, `
[tmdb]
api_key = "abc123"
offer_types = ["flatrate", "FREE"]

[lookup]
concurrency = 8
base_delay = "50ms"
max_delay = "2s"
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"flatrate", "free"}, cfg.TMDB.OfferTypes)
		assert.Equal(t, 8, cfg.Lookup.Concurrency)
		assert.Equal(t, 50*time.Millisecond, cfg.Lookup.BaseDelay)
		assert.Equal(t, 2*time.Second, cfg.Lookup.MaxDelay)
	})

	t.Run("missing api key", func(t *testing.T) {
		path := writeConfig(t, "[tmdb]\nregion = \"US\"\n")

		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissing)
		assert.Contains(t, err.Error(), "tmdb.api_key")
	})

	t.Run("empty api key", func(t *testing.T) {
		path := writeConfig(t, "[tmdb]\napi_key = \"   \"\n")

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrMissing)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeConfig(t, "[tmdb\napi_key = \n")

		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("file does not exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, ErrMissing)
	})
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("WATCHSCOUT_TMDB_API_KEY", "from-env")
	path := writeConfig(t, "[tmdb]\nregion = \"GB\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
	assert.Equal(t, "GB", cfg.TMDB.Region)
}

func validConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			APIKey:     "valid-api-key",
			BaseURL:    "https://api.themoviedb.org/3",
			Region:     "US",
			OfferTypes: []string{"flatrate"},
		},
		Letterboxd: LetterboxdConfig{BaseURL: "https://letterboxd.com"},
		Lookup: LookupConfig{
			Concurrency:    5,
			MaxAttempts:    3,
			BaseDelay:      time.Millisecond,
			MaxDelay:       time.Second,
			RequestTimeout: time.Second,
		},
		Report:  ReportConfig{Format: "text"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "placeholder api key",
			mutate:  func(c *Config) { c.TMDB.APIKey = "your-api-key-here" },
			wantErr: ErrMissing,
		},
		{
			name:    "region too long",
			mutate:  func(c *Config) { c.TMDB.Region = "USA" },
			wantErr: ErrMalformed,
		},
		{
			name:    "unknown offer type",
			mutate:  func(c *Config) { c.TMDB.OfferTypes = []string{"cinema"} },
			wantErr: ErrMalformed,
		},
		{
			name:    "no offer types",
			mutate:  func(c *Config) { c.TMDB.OfferTypes = nil },
			wantErr: ErrMalformed,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Lookup.Concurrency = 0 },
			wantErr: ErrMalformed,
		},
		{
			name:    "concurrency above bound",
			mutate:  func(c *Config) { c.Lookup.Concurrency = MaxConcurrency + 1 },
			wantErr: ErrMalformed,
		},
		{
			name:    "max delay below base delay",
			mutate:  func(c *Config) { c.Lookup.MaxDelay = 0 },
			wantErr: ErrMalformed,
		},
		{
			name:    "invalid format",
			mutate:  func(c *Config) { c.Report.Format = "yaml" },
			wantErr: ErrMalformed,
		},
		{
			name: "radarr enabled without key",
			mutate: func(c *Config) {
				c.Radarr = RadarrConfig{Enabled: true, URL: "http://localhost:7878"}
			},
			wantErr: ErrMissing,
		},
		{
			name:    "invalid logging level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
