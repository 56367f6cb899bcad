// Package watchlist defines the films a user intends to watch and the
// contract for sources that produce them.
package watchlist

import (
	"context"
	"fmt"
	"iter"
)

// Entry is a single film on a watchlist.
type Entry struct {
	Title string `json:"title"`
	// ExternalID is the source site's identifier (a Letterboxd film slug).
	ExternalID string `json:"external_id"`
	// Year is zero when the source does not expose a release year.
	Year int `json:"year,omitempty"`
	// Position is the 0-based index of the entry in the watchlist.
	Position int `json:"position"`
}

// String returns "Title (Year)", or just the title when the year is unknown.
func (e Entry) String() string {
	if e.Year > 0 {
		return fmt.Sprintf("%s (%d)", e.Title, e.Year)
	}
	return e.Title
}

// Source yields a user's watchlist in watchlist order.
//
// Entries is lazy: pages are requested as the sequence is consumed. The
// sequence stops after the first non-nil error. It is not restartable
// mid-way; ranging over it again fetches from the start.
type Source interface {
	Entries(ctx context.Context, user string) iter.Seq2[Entry, error]
}

// Collect materializes a watchlist, assigning positions in yield order.
func Collect(seq iter.Seq2[Entry, error]) ([]Entry, error) {
	var entries []Entry
	for entry, err := range seq {
		if err != nil {
			return nil, err
		}
		entry.Position = len(entries)
		entries = append(entries, entry)
	}
	return entries, nil
}

// Fetch is shorthand for Collect(src.Entries(ctx, user)).
func Fetch(ctx context.Context, src Source, user string) ([]Entry, error) {
	return Collect(src.Entries(ctx, user))
}
