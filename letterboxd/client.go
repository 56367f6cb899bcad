package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/watchscout/watchlist"
)

const defaultMaxPages = 500

// Client reads watchlists from Letterboxd
type Client struct {
	baseURL    string
	userAgent  string
	maxPages   int
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ watchlist.Source = (*Client)(nil)

// NewClient creates a new Letterboxd client
func NewClient(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("letterboxd URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid letterboxd URL: %w", err)
	}

	client := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "Mozilla/5.0",
		maxPages:  defaultMaxPages,
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

// Entries lazily walks the user's watchlist pages in order.
func (c *Client) Entries(ctx context.Context, user string) iter.Seq2[watchlist.Entry, error] {
	return func(yield func(watchlist.Entry, error) bool) {
		user = strings.TrimSpace(user)
		if user == "" {
			yield(watchlist.Entry{}, &PageError{User: user, Page: 1, Err: ErrInvalidUser})
			return
		}

		for page := 1; c.maxPages == 0 || page <= c.maxPages; page++ {
			result, err := c.FetchPage(ctx, user, page)
			if err != nil {
				yield(watchlist.Entry{}, &PageError{User: user, Page: page, Err: err})
				return
			}

			c.logger.Debug().
				Str("user", user).
				Int("page", page).
				Int("count", len(result.Entries)).
				Msg("Retrieved watchlist page from Letterboxd")

			for _, entry := range result.Entries {
				if !yield(entry, nil) {
					return
				}
			}

			if !result.HasNext {
				return
			}
		}

		c.logger.Warn().Str("user", user).Int("max_pages", c.maxPages).Msg("Stopped at page limit")
		yield(watchlist.Entry{}, &PageError{
			User: user,
			Page: c.maxPages + 1,
			Err:  fmt.Errorf("%w: more than %d pages", ErrTooManyPages, c.maxPages),
		})
	}
}

// FetchPage fetches and parses a single watchlist page (1-based)
func (c *Client) FetchPage(ctx context.Context, user string, page int) (*Page, error) {
	body, err := c.doRequest(ctx, pagePath(user, page))
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound && page == 1 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, user)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	result, err := parsePage(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return result, nil
}

// doRequest performs a GET request and returns the body of a 200 response
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	requestURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: requestURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func pagePath(user string, page int) string {
	return fmt.Sprintf("/%s/watchlist/page/%d/", url.PathEscape(user), page)
}
