package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client represents a TMDB API client
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: tmdb API key is required", ErrInvalidConfig)
	}

	client := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// usesBearer reports whether the credential is a v4 read access token
func (c *Client) usesBearer() bool {
	return strings.HasPrefix(c.apiKey, "eyJ")
}

// doRequest performs a GET request with authentication and decodes the JSON body into out
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if !c.usesBearer() {
		params.Set("api_key", c.apiKey)
	}

	requestURL := c.baseURL + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.usesBearer() {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Msg("Making TMDB API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
		var status statusResponse
		if json.Unmarshal(body, &status) == nil {
			apiErr.Message = status.StatusMessage
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// TestConnection tests the connection and credentials
func (c *Client) TestConnection(ctx context.Context) error {
	// configuration is the cheapest authenticated endpoint
	if err := c.doRequest(ctx, "/configuration", nil, nil); err != nil {
		return err
	}

	c.logger.Debug().Msg("Successfully connected to TMDB")
	return nil
}

// SearchMovies returns the first page of search results in TMDB's ranking order.
// A zero year searches all years.
func (c *Client) SearchMovies(ctx context.Context, query string, year int) ([]Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "true")
	params.Set("page", "1")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	if c.language != "" {
		params.Set("language", c.language)
	}

	var response SearchResponse
	if err := c.doRequest(ctx, "/search/movie", params, &response); err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}

	c.logger.Debug().
		Str("query", query).
		Int("year", year).
		Int("results", response.TotalResults).
		Msg("Searched TMDB")

	return response.Results, nil
}

// GetWatchProviders retrieves watch providers for a movie in all regions
func (c *Client) GetWatchProviders(ctx context.Context, movieID int64) (*WatchProviders, error) {
	if movieID <= 0 {
		return nil, fmt.Errorf("invalid movie ID: %d", movieID)
	}

	var response WatchProviders
	endpoint := fmt.Sprintf("/movie/%d/watch/providers", movieID)
	if err := c.doRequest(ctx, endpoint, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get watch providers for movie %d: %w", movieID, err)
	}

	return &response, nil
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
