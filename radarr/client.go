// Package radarr reads a Radarr library so checked films already owned can
// be marked in the report.
package radarr

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golift.io/starr"
	"golift.io/starr/radarr"

	"github.com/s0up4200/watchscout/availability"
)

// DefaultTimeout bounds every request to Radarr
const DefaultTimeout = 30 * time.Second

// Client wraps the starr Radarr client
type Client struct {
	client RadarrAPI
	logger zerolog.Logger
}

var _ availability.ResultEnricher = (*Client)(nil)

// NewClient creates a Radarr client and verifies the connection
func NewClient(url, apiKey string, logger zerolog.Logger) (*Client, error) {
	config := starr.New(apiKey, url, DefaultTimeout)
	radarrClient := radarr.New(config)

	// Test the connection
	if err := radarrClient.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to Radarr: %w", err)
	}

	return NewClientWithAPI(radarrClient, logger), nil
}

// NewClientWithAPI creates a client around an existing API implementation
func NewClientWithAPI(api RadarrAPI, logger zerolog.Logger) *Client {
	return &Client{
		client: api,
		logger: logger,
	}
}

// LibraryTMDBIDs returns the TMDB IDs of every movie in the library
func (c *Client) LibraryTMDBIDs(ctx context.Context) (map[int64]struct{}, error) {
	movies, err := c.client.GetMovieContext(ctx, &radarr.GetMovie{})
	if err != nil {
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}

	ids := make(map[int64]struct{}, len(movies))
	for _, movie := range movies {
		if movie == nil || movie.TmdbID == 0 {
			continue
		}
		ids[movie.TmdbID] = struct{}{}
	}

	c.logger.Debug().Msgf("Retrieved %d movies from Radarr", len(movies))
	return ids, nil
}

// EnrichResults marks results whose TMDB ID is in the library. The library
// is read once per call.
func (c *Client) EnrichResults(ctx context.Context, results []availability.Result) error {
	if len(results) == 0 {
		return nil
	}

	ids, err := c.LibraryTMDBIDs(ctx)
	if err != nil {
		return err
	}

	owned := 0
	for i := range results {
		if !results[i].Resolved() {
			continue
		}
		if _, ok := ids[results[i].MediaID]; ok {
			results[i].InLibrary = true
			owned++
		}
	}

	c.logger.Info().
		Int("in_library", owned).
		Int("checked", len(results)).
		Msg("Matched watchlist against Radarr library")
	return nil
}
