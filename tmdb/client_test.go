package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(apiKey, zerolog.Nop(), WithBaseURL(server.URL))
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("missing API key", func(t *testing.T) {
		_, err := NewClient("  ", logger)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("options", func(t *testing.T) {
		custom := &http.Client{Timeout: 3 * time.Second}
		client, err := NewClient("key", logger,
			WithBaseURL("http://localhost:9999/3/"),
			WithLanguage("pl-PL"),
			WithHTTPClient(custom),
			WithTimeout(5*time.Second),
		)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9999/3", client.baseURL)
		assert.Equal(t, "pl-PL", client.language)
		assert.Equal(t, custom, client.httpClient)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})
}

func TestAuthentication(t *testing.T) {
	t.Run("v3 key as query parameter", func(t *testing.T) {
		client := newTestClient(t, "v3-key", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/configuration", r.URL.Path)
			assert.Equal(t, "v3-key", r.URL.Query().Get("api_key"))
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Write([]byte(`{}`))
		})
		require.NoError(t, client.TestConnection(context.Background()))
	})

	t.Run("v4 token as bearer", func(t *testing.T) {
		token := "eyJhbGciOiJIUzI1NiJ9.payload.sig"
		client := newTestClient(t, token, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.URL.Query().Get("api_key"))
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			w.Write([]byte(`{}`))
		})
		require.NoError(t, client.TestConnection(context.Background()))
	})

	t.Run("rejected credentials", func(t *testing.T) {
		client := newTestClient(t, "bad", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`))
		})

		err := client.TestConnection(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsUnauthorized())
		assert.Contains(t, apiErr.Message, "Invalid API key")
	})
}

func TestSearchMovies(t *testing.T) {
	client := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Past Lives", q.Get("query"))
		assert.Equal(t, "true", q.Get("include_adult"))

		resp := SearchResponse{Page: 1, TotalPages: 1, TotalResults: 2}
		if q.Get("year") == "2023" {
			resp.Results = []Movie{
				{ID: 666277, Title: "Past Lives", ReleaseDate: "2023-06-02"},
				{ID: 1, Title: "Past Lives", ReleaseDate: "2023-01-01"},
			}
		}
		json.NewEncoder(w).Encode(resp)
	})

	movies, err := client.SearchMovies(context.Background(), "Past Lives", 2023)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, int64(666277), movies[0].ID)
	assert.Equal(t, 2023, movies[0].Year())

	movies, err = client.SearchMovies(context.Background(), "Past Lives", 1990)
	require.NoError(t, err)
	assert.Empty(t, movies)

	_, err = client.SearchMovies(context.Background(), " ", 0)
	assert.Error(t, err)
}

func TestGetWatchProviders(t *testing.T) {
	client := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603/watch/providers", r.URL.Path)
		w.Write([]byte(`{
			"id": 603,
			"results": {
				"US": {
					"link": "https://www.themoviedb.org/movie/603/watch?locale=US",
					"flatrate": [{"provider_id": 8, "provider_name": "Netflix", "display_priority": 1}],
					"rent": [{"provider_id": 2, "provider_name": "Apple TV", "display_priority": 4}]
				},
				"PL": {"buy": [{"provider_id": 3, "provider_name": "Google Play Movies"}]}
			}
		}`))
	})

	providers, err := client.GetWatchProviders(context.Background(), 603)
	require.NoError(t, err)

	us := providers.Region("us")
	require.NotNil(t, us)
	require.Len(t, us.Offers(OfferFlatrate), 1)
	assert.Equal(t, "Netflix", us.Offers(OfferFlatrate)[0].Name)
	assert.Equal(t, "Apple TV", us.Offers(OfferRent)[0].Name)
	assert.Empty(t, us.Offers(OfferFree))

	assert.Empty(t, providers.Region("PL").Offers(OfferFlatrate))
	assert.Nil(t, providers.Region("DE"))
	assert.Nil(t, providers.Region("DE").Offers(OfferFlatrate))

	_, err = client.GetWatchProviders(context.Background(), 0)
	assert.Error(t, err)
}

func TestRateLimitError(t *testing.T) {
	client := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"status_code":25,"status_message":"Your request count is over the allowed limit."}`))
	})

	_, err := client.GetWatchProviders(context.Background(), 603)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsRateLimited())
	assert.False(t, apiErr.IsServerError())
	assert.Equal(t, 2*time.Second, apiErr.RetryAfter)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, 3*time.Second, parseRetryAfter("3", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-1", now))
	assert.Equal(t, 10*time.Second, parseRetryAfter(now.Add(10*time.Second).Format(http.TimeFormat), now))
	assert.Equal(t, time.Duration(0), parseRetryAfter(now.Add(-time.Minute).Format(http.TimeFormat), now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon", now))
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "The resource you requested could not be found."}
	assert.Equal(t, "tmdb API error: status 404: The resource you requested could not be found.", err.Error())
	assert.True(t, err.IsNotFound())

	err = &APIError{StatusCode: 503}
	assert.Equal(t, "tmdb API error: status 503", err.Error())
	assert.True(t, err.IsServerError())
	assert.False(t, err.IsUnauthorized())
}

func TestMovieYear(t *testing.T) {
	assert.Equal(t, 1999, (&Movie{ReleaseDate: "1999-03-31"}).Year())
	assert.Equal(t, 0, (&Movie{ReleaseDate: ""}).Year())
	assert.Equal(t, 0, (&Movie{ReleaseDate: "TBA"}).Year())
}
