// Package tmdb provides a client for The Movie Database (TMDB) v3 API.
//
// Only the endpoints needed to answer "where can I stream this film?" are
// implemented: movie search and per-movie watch providers. Watch-provider
// data is supplied to TMDB by JustWatch and is keyed by ISO 3166-1 region.
//
// # Usage
//
//	client, err := tmdb.NewClient(
//		"your-api-key-or-read-token",
//		logger,
//		tmdb.WithTimeout(30*time.Second),
//		tmdb.WithLanguage("en-US"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	movies, err := client.SearchMovies(ctx, "Past Lives", 2023)
//	providers, err := client.GetWatchProviders(ctx, movies[0].ID)
//	flatrate := providers.Region("US").Offers(tmdb.OfferFlatrate)
//
// # Authentication
//
// Both credential kinds TMDB issues are accepted. A v4 read access token
// (a JWT, starting with "eyJ") is sent as a bearer token; anything else is
// treated as a v3 API key and sent as the api_key query parameter.
//
// # Error Handling
//
// Non-200 responses are returned as *APIError, which carries the status
// code, TMDB's status message and any Retry-After hint:
//
//	var apiErr *tmdb.APIError
//	if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
//		time.Sleep(apiErr.RetryAfter)
//	}
package tmdb
