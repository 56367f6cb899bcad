package tmdb

import (
	"context"
)

// API defines the interface for TMDB operations
type API interface {
	// TestConnection verifies the client can reach TMDB with its credentials
	TestConnection(ctx context.Context) error

	// SearchMovies searches movies by title, optionally narrowed by release year
	SearchMovies(ctx context.Context, query string, year int) ([]Movie, error)

	// GetWatchProviders retrieves per-region watch providers for a movie
	GetWatchProviders(ctx context.Context, movieID int64) (*WatchProviders, error)
}

var _ API = (*Client)(nil)
