package letterboxd

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/s0up4200/watchscout/watchlist"
)

// Page is one parsed watchlist page.
type Page struct {
	Entries []watchlist.Entry
	HasNext bool
}

const posterSelector = "[data-item-slug], [data-item-name], [data-film-slug]"

var (
	nameWithYear = regexp.MustCompile(`^(.*\S)\s+\((\d{4})\)$`)
	filmLink     = regexp.MustCompile(`/film/([^/]+)/?`)
)

// parsePage extracts the films and pagination state of a watchlist page.
// It depends only on its input.
func parsePage(html []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	page := &Page{
		HasNext: doc.Find(".pagination a.next, .paginate-nextprev a.next").Length() > 0,
	}

	var parseErr error
	doc.Find(posterSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		// nested poster markup describes the same film
		if s.ParentsFiltered(posterSelector).Length() > 0 {
			return true
		}

		entry, err := parsePoster(s)
		if err != nil {
			parseErr = fmt.Errorf("film %d: %w", len(page.Entries)+1, err)
			return false
		}
		page.Entries = append(page.Entries, entry)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if page.HasNext && len(page.Entries) == 0 {
		return nil, errors.New("page links to a next page but lists no films")
	}

	return page, nil
}

func parsePoster(s *goquery.Selection) (watchlist.Entry, error) {
	var entry watchlist.Entry

	entry.ExternalID = firstAttr(s, "data-item-slug", "data-film-slug")
	if entry.ExternalID == "" {
		if m := filmLink.FindStringSubmatch(firstAttr(s, "data-item-link", "data-target-link")); m != nil {
			entry.ExternalID = m[1]
		}
	}
	if entry.ExternalID == "" {
		entry.ExternalID = firstAttr(s, "data-film-id")
	}

	if name := firstAttr(s, "data-item-name", "data-item-full-display-name"); name != "" {
		entry.Title, entry.Year = splitNameYear(name)
	}
	if entry.Title == "" {
		entry.Title = normSpace(firstAttr(s, "data-film-name"))
	}
	if entry.Title == "" {
		entry.Title = normSpace(s.Find("img").First().AttrOr("alt", ""))
	}
	if entry.Title == "" {
		return watchlist.Entry{}, fmt.Errorf("no title for %q", entry.ExternalID)
	}

	if entry.Year == 0 {
		if y, err := strconv.Atoi(firstAttr(s, "data-film-release-year")); err == nil {
			entry.Year = y
		}
	}

	return entry, nil
}

// splitNameYear splits "Title (2023)" into its parts.
func splitNameYear(name string) (string, int) {
	name = normSpace(name)
	if m := nameWithYear.FindStringSubmatch(name); m != nil {
		year, _ := strconv.Atoi(m[2])
		return m[1], year
	}
	return name, 0
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(s.AttrOr(name, "")); v != "" {
			return v
		}
	}
	return ""
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
