package availability

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/watchscout/tmdb"
	"github.com/s0up4200/watchscout/watchlist"
)

// MetadataAPI is the subset of the TMDB client lookups depend on
type MetadataAPI interface {
	SearchMovies(ctx context.Context, query string, year int) ([]tmdb.Movie, error)
	GetWatchProviders(ctx context.Context, movieID int64) (*tmdb.WatchProviders, error)
}

// Lookuper resolves the providers of a single watchlist entry
type Lookuper interface {
	Lookup(ctx context.Context, entry watchlist.Entry, region string) (Match, error)
}

// Match is the outcome of a lookup. A zero MediaID means the title did not
// resolve, which is the normal "not available" outcome.
type Match struct {
	MediaID int64
	// Providers is sorted and free of duplicates
	Providers []string
}

// Resolved reports whether a canonical media identifier was found
func (m Match) Resolved() bool {
	return m.MediaID != 0
}

// Client resolves watchlist entries against the metadata API
type Client struct {
	api        MetadataAPI
	offerTypes []tmdb.OfferType
	logger     zerolog.Logger
}

var _ Lookuper = (*Client)(nil)

// NewClient creates a lookup client. With no offer types only subscription
// (flatrate) offers count as streamable.
func NewClient(api MetadataAPI, logger zerolog.Logger, offerTypes ...tmdb.OfferType) *Client {
	if len(offerTypes) == 0 {
		offerTypes = []tmdb.OfferType{tmdb.OfferFlatrate}
	}
	return &Client{
		api:        api,
		offerTypes: offerTypes,
		logger:     logger,
	}
}

// Lookup searches for the entry's title, takes the highest-ranked result and
// returns its providers in region. Errors are classified with Classify.
func (c *Client) Lookup(ctx context.Context, entry watchlist.Entry, region string) (Match, error) {
	movieID, err := c.resolve(ctx, entry)
	if errors.Is(err, ErrNotResolved) {
		c.logger.Debug().Str("title", entry.String()).Msg("No TMDB match")
		return Match{}, nil
	}
	if err != nil {
		return Match{}, Classify(err)
	}

	providers, err := c.api.GetWatchProviders(ctx, movieID)
	if err != nil {
		return Match{}, Classify(err)
	}

	return Match{
		MediaID:   movieID,
		Providers: c.providerNames(providers.Region(region)),
	}, nil
}

// resolve returns the first search result's ID, or ErrNotResolved.
// A year-narrowed search that finds nothing is retried without the year,
// since Letterboxd and TMDB sometimes disagree on release years.
func (c *Client) resolve(ctx context.Context, entry watchlist.Entry) (int64, error) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return 0, ErrNotResolved
	}

	movies, err := c.api.SearchMovies(ctx, title, entry.Year)
	if err != nil {
		return 0, err
	}
	if len(movies) == 0 && entry.Year > 0 {
		movies, err = c.api.SearchMovies(ctx, title, 0)
		if err != nil {
			return 0, err
		}
	}
	if len(movies) == 0 || movies[0].ID == 0 {
		return 0, ErrNotResolved
	}

	return movies[0].ID, nil
}

func (c *Client) providerNames(rp *tmdb.RegionProviders) []string {
	var names []string
	for _, offer := range c.offerTypes {
		for _, p := range rp.Offers(offer) {
			if name := strings.TrimSpace(p.Name); name != "" {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// ParseOfferTypes converts configured offer type names
func ParseOfferTypes(names []string) ([]tmdb.OfferType, error) {
	offers := make([]tmdb.OfferType, 0, len(names))
	for _, name := range names {
		offer := tmdb.OfferType(strings.ToLower(strings.TrimSpace(name)))
		switch offer {
		case tmdb.OfferFlatrate, tmdb.OfferFree, tmdb.OfferAds, tmdb.OfferRent, tmdb.OfferBuy:
			offers = append(offers, offer)
		default:
			return nil, fmt.Errorf("unknown offer type: %s", name)
		}
	}
	return offers, nil
}
