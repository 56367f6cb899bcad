package availability

import (
	"cmp"
	"slices"
	"time"

	"github.com/s0up4200/watchscout/watchlist"
)

// Status is the outcome of checking one entry
type Status string

const (
	// StatusOK means the lookup completed; providers may still be empty
	StatusOK Status = "ok"
	// StatusDegraded means the lookup failed after retries and is shown as not available
	StatusDegraded Status = "degraded"
	// StatusSkipped means the run was cancelled before the entry was checked
	StatusSkipped Status = "skipped"
)

// Result is the availability of one watchlist entry in one region
type Result struct {
	Entry watchlist.Entry `json:"entry"`
	// MediaID is the TMDB movie ID, zero when the title did not resolve
	MediaID   int64     `json:"tmdb_id,omitempty"`
	Providers []string  `json:"providers"`
	Region    string    `json:"region"`
	QueriedAt time.Time `json:"queried_at,omitzero"`
	Status    Status    `json:"status"`
	Warning   string    `json:"warning,omitempty"`
	Attempts  int       `json:"attempts,omitempty"`
	InLibrary bool      `json:"in_library,omitempty"`
}

// Available reports whether at least one provider offers the film
func (r *Result) Available() bool {
	return len(r.Providers) > 0
}

// Resolved reports whether the title matched a TMDB movie
func (r *Result) Resolved() bool {
	return r.MediaID != 0
}

// Report is the ordered outcome of a run: Results[i] belongs to the i-th
// watchlist entry
type Report struct {
	User        string    `json:"user"`
	Region      string    `json:"region"`
	GeneratedAt time.Time `json:"generated_at"`
	// Partial is set when the run was cancelled before every entry was checked
	Partial bool     `json:"partial"`
	Results []Result `json:"results"`
}

// Counts tallies results by outcome
func (r *Report) Counts() (available, unavailable, degraded, skipped int) {
	for i := range r.Results {
		switch res := &r.Results[i]; {
		case res.Status == StatusSkipped:
			skipped++
		case res.Status == StatusDegraded:
			degraded++
		case res.Available():
			available++
		default:
			unavailable++
		}
	}
	return available, unavailable, degraded, skipped
}

// ProviderCount is the number of films a provider offers
type ProviderCount struct {
	Provider string `json:"provider"`
	Films    int    `json:"films"`
}

// ProviderSummary counts films per provider, most films first then by name
func (r *Report) ProviderSummary() []ProviderCount {
	counts := make(map[string]int)
	for i := range r.Results {
		for _, p := range r.Results[i].Providers {
			counts[p]++
		}
	}

	summary := make([]ProviderCount, 0, len(counts))
	for provider, films := range counts {
		summary = append(summary, ProviderCount{Provider: provider, Films: films})
	}
	slices.SortFunc(summary, func(a, b ProviderCount) int {
		if c := cmp.Compare(b.Films, a.Films); c != 0 {
			return c
		}
		return cmp.Compare(a.Provider, b.Provider)
	})
	return summary
}
