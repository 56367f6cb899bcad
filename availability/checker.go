package availability

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/watchscout/backoff"
	"github.com/s0up4200/watchscout/watchlist"
)

// Concurrency bounds for in-flight lookups
const (
	DefaultConcurrency = 5
	MaxConcurrency     = 10
)

// ResultEnricher adds information from another source to checked results
type ResultEnricher interface {
	EnrichResults(ctx context.Context, results []Result) error
}

// Checker looks up a whole watchlist with bounded concurrency
type Checker struct {
	lookup      Lookuper
	policy      backoff.Policy
	concurrency int
	observer    func(Result)
	enrichers   []ResultEnricher
	now         func() time.Time
	logger      zerolog.Logger
}

// CheckerOption configures a Checker
type CheckerOption func(*Checker)

// WithConcurrency sets the number of lookups in flight, clamped to [1, MaxConcurrency]
func WithConcurrency(n int) CheckerOption {
	return func(c *Checker) {
		c.concurrency = min(max(n, 1), MaxConcurrency)
	}
}

// WithPolicy sets the per-entry retry policy
func WithPolicy(p backoff.Policy) CheckerOption {
	return func(c *Checker) {
		c.policy = p
	}
}

// WithObserver registers fn to be called once per completed entry. It is
// called from worker goroutines and must be safe for concurrent use.
func WithObserver(fn func(Result)) CheckerOption {
	return func(c *Checker) {
		c.observer = fn
	}
}

// WithEnrichers adds enrichers that run after all lookups finish
func WithEnrichers(enrichers ...ResultEnricher) CheckerOption {
	return func(c *Checker) {
		c.enrichers = append(c.enrichers, enrichers...)
	}
}

// WithClock overrides time.Now for timestamps
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChecker creates a checker with sensible defaults
func NewChecker(lookup Lookuper, logger zerolog.Logger, opts ...CheckerOption) *Checker {
	c := &Checker{
		lookup:      lookup,
		policy:      backoff.DefaultPolicy,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check looks up every entry and returns one result per entry in input
// order. Once ctx is done no new lookups start; entries that did not
// complete are marked skipped and the report is flagged partial.
func (c *Checker) Check(ctx context.Context, user string, entries []watchlist.Entry, region string) Report {
	report := Report{
		User:        user,
		Region:      region,
		GeneratedAt: c.now(),
		Results:     make([]Result, len(entries)),
	}

	for i, entry := range entries {
		entry.Position = i
		report.Results[i] = Result{
			Entry:     entry,
			Region:    region,
			Providers: []string{},
			Status:    StatusSkipped,
			Warning:   "not checked: run interrupted",
		}
	}

	// A plain group: one failing entry must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i := range report.Results {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			// each goroutine owns report.Results[i]
			result, done := c.checkOne(ctx, report.Results[i])
			if !done {
				return nil
			}
			report.Results[i] = result

			if c.observer != nil {
				c.observer(result)
			}
			return nil
		})
	}

	_ = g.Wait()

	for i := range report.Results {
		if report.Results[i].Status == StatusSkipped {
			report.Partial = true
			break
		}
	}

	if ctx.Err() == nil {
		c.enrich(ctx, report.Results)
	}

	available, unavailable, degraded, skipped := report.Counts()
	c.logger.Info().
		Int("entries", len(entries)).
		Int("available", available).
		Int("unavailable", unavailable).
		Int("degraded", degraded).
		Int("skipped", skipped).
		Msg("Availability check finished")

	return report
}

// checkOne runs a lookup under the retry policy. It returns false when the
// run was cancelled before the lookup completed.
func (c *Checker) checkOne(ctx context.Context, result Result) (Result, bool) {
	var match Match

	attempts, err := c.policy.Do(ctx, func() error {
		m, err := c.lookup.Lookup(ctx, result.Entry, result.Region)
		if err != nil {
			return Classify(err)
		}
		match = m
		return nil
	}, Retryable, func(attempt int, err error, wait time.Duration) {
		c.logger.Debug().
			Err(err).
			Str("title", result.Entry.String()).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Retrying availability lookup")
	})

	if err != nil && ctx.Err() != nil {
		return result, false
	}

	result.Attempts = attempts
	result.QueriedAt = c.now()
	result.Warning = ""

	if err != nil {
		result.Status = StatusDegraded
		result.Warning = warningFor(err)
		c.logger.Warn().
			Err(err).
			Str("title", result.Entry.String()).
			Int("attempts", attempts).
			Msg("Availability lookup failed")
		return result, true
	}

	result.Status = StatusOK
	result.MediaID = match.MediaID
	if match.Providers != nil {
		result.Providers = match.Providers
	}
	return result, true
}

func (c *Checker) enrich(ctx context.Context, results []Result) {
	for _, enricher := range c.enrichers {
		if err := enricher.EnrichResults(ctx, results); err != nil {
			// Log but don't fail the entire run
			c.logger.Warn().
				Err(err).
				Type("enricher", enricher).
				Msg("Failed to enrich results")
		}
	}
}

func warningFor(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "lookup failed: rate limited by TMDB"
	case errors.Is(err, ErrTransient):
		return "lookup failed: TMDB unreachable"
	case errors.Is(err, ErrRejected):
		return "lookup failed: rejected by TMDB"
	default:
		return "lookup failed: " + err.Error()
	}
}
