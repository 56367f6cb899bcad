package radarr

import (
	"context"

	"golift.io/starr/radarr"
)

// RadarrAPI is the part of the starr Radarr client the library lookup uses
type RadarrAPI interface {
	GetMovieContext(ctx context.Context, params *radarr.GetMovie) ([]*radarr.Movie, error)

	// Health check
	Ping() error
}
