package tmdb

import (
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the TMDB v3 API root
const DefaultBaseURL = "https://api.themoviedb.org/3"

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLanguage sets the language used for titles in search results.
func WithLanguage(language string) Option {
	return func(c *Client) {
		c.language = language
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}
