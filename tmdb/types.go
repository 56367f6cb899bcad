package tmdb

import (
	"strconv"
	"strings"
)

// OfferType is the way a provider offers a title in a region
type OfferType string

const (
	// OfferFlatrate is included in a subscription
	OfferFlatrate OfferType = "flatrate"
	// OfferFree is free to watch
	OfferFree OfferType = "free"
	// OfferAds is free with advertising
	OfferAds OfferType = "ads"
	// OfferRent is a rental
	OfferRent OfferType = "rent"
	// OfferBuy is a purchase
	OfferBuy OfferType = "buy"
)

// Movie is a movie search result
type Movie struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Popularity    float64 `json:"popularity"`
	Adult         bool    `json:"adult"`
}

// Year returns the release year, or 0 when the release date is unknown
func (m *Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// SearchResponse represents the paginated response from the search endpoint
type SearchResponse struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Movie `json:"results"`
}

// Provider is a streaming, rental or retail service
type Provider struct {
	ID              int    `json:"provider_id"`
	Name            string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

// RegionProviders lists providers in one region grouped by offer type
type RegionProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Free     []Provider `json:"free"`
	Ads      []Provider `json:"ads"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

// Offers returns the providers for the given offer type
func (rp *RegionProviders) Offers(offer OfferType) []Provider {
	if rp == nil {
		return nil
	}
	switch offer {
	case OfferFlatrate:
		return rp.Flatrate
	case OfferFree:
		return rp.Free
	case OfferAds:
		return rp.Ads
	case OfferRent:
		return rp.Rent
	case OfferBuy:
		return rp.Buy
	default:
		return nil
	}
}

// WatchProviders is the watch/providers response for one movie
type WatchProviders struct {
	ID      int64                      `json:"id"`
	Results map[string]RegionProviders `json:"results"`
}

// Region returns the providers for a region code, or nil when the movie
// has no listing there
func (wp *WatchProviders) Region(region string) *RegionProviders {
	if wp == nil {
		return nil
	}
	rp, ok := wp.Results[strings.ToUpper(region)]
	if !ok {
		return nil
	}
	return &rp
}

// statusResponse is TMDB's error body
type statusResponse struct {
	Success       *bool  `json:"success,omitempty"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
