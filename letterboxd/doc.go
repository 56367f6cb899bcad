// Package letterboxd reads a user's public watchlist from letterboxd.com.
//
// Letterboxd has no public watchlist API, so the client requests the HTML
// watchlist pages and extracts each film's title, release year and slug.
// Pages are requested lazily and in order, following the "next" pagination
// link until the last page.
//
// # Usage
//
//	client, err := letterboxd.NewClient("https://letterboxd.com", logger,
//		letterboxd.WithTimeout(20*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	entries, err := watchlist.Fetch(ctx, client, "someuser")
//
// # Markup
//
// Two poster layouts are understood: the legacy one, where each film is a
// li.poster-container holding a div.film-poster with data-film-slug and an
// img whose alt text is the title, and the current one, where a
// react-component element carries data-item-slug and data-item-name in the
// form "Title (Year)".
//
// # Error Handling
//
//   - ErrNotFound: the user (or their watchlist) does not exist
//   - ErrUnreachable: transport failure or unexpected HTTP status
//   - ErrParse: a page could not be interpreted
//   - ErrInvalidUser: the user handle is empty
//   - ErrTooManyPages: pagination went past the configured page limit
//
// Every error is wrapped in a *PageError recording the page number.
package letterboxd
