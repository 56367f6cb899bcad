package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/watchscout/availability"
	"github.com/s0up4200/watchscout/backoff"
	"github.com/s0up4200/watchscout/config"
	"github.com/s0up4200/watchscout/letterboxd"
	"github.com/s0up4200/watchscout/radarr"
	"github.com/s0up4200/watchscout/report"
	"github.com/s0up4200/watchscout/tmdb"
	"github.com/s0up4200/watchscout/watchlist"
)

// errInterrupted is returned after a partial report has been written
var errInterrupted = errors.New("run interrupted before every film was checked")

// rootCmd represents the base command
var rootCmd = newRootCmd()

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetVersion sets the version shown by --version
func SetVersion(version, buildTime string) {
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// flags holds command line overrides of the configuration
type flags struct {
	cfgFile     string
	region      string
	format      string
	concurrency int
	highlight   string
	noSummary   bool
	noProgress  bool
	timeout     time.Duration
}

// app is the state shared between PreRunE and RunE of one invocation
type app struct {
	flags  flags
	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "watchscout <letterboxd-user>",
		Short: "Show which films on a Letterboxd watchlist are streaming",
		Long: `watchscout reads a user's public Letterboxd watchlist and looks up every film
on The Movie Database to show where it is currently streaming in a region.

Films are listed in watchlist order with their streaming services, or
"not available" when no service in the region offers them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE:       a.initialize,
		RunE:          a.run,
	}

	f := cmd.Flags()
	f.StringVar(&a.flags.cfgFile, "config", "", "config file (default is ./config.toml or ~/.config/watchscout/config.toml)")
	f.StringVarP(&a.flags.region, "region", "r", "", "two-letter country code to check availability in (overrides tmdb.region)")
	f.StringVarP(&a.flags.format, "format", "o", "", "output format: text, table or json (overrides report.format)")
	f.IntVarP(&a.flags.concurrency, "concurrency", "c", 0, "number of parallel TMDB lookups (overrides lookup.concurrency)")
	f.StringVar(&a.flags.highlight, "highlight", "", `mark films matching an expression, e.g. 'hasProvider("Netflix")'`)
	f.BoolVar(&a.flags.noSummary, "no-summary", false, "omit the per-platform summary")
	f.BoolVar(&a.flags.noProgress, "no-progress", false, "do not show a progress bar")
	f.DurationVar(&a.flags.timeout, "timeout", 0, "abort the run after this long and print a partial report (0 = no limit)")

	return cmd
}

// initialize loads the configuration and applies flag overrides. It makes
// no network calls.
func (a *app) initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.flags.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := a.applyFlags(cmd, cfg); err != nil {
		return err
	}

	// Setup logger
	a.logger = setupLogger(cfg.Logging, cmd.ErrOrStderr())
	a.cfg = cfg

	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("letterboxd user is required")
	}

	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	if f.Changed("region") {
		region := strings.ToUpper(strings.TrimSpace(a.flags.region))
		if err := config.ValidateRegion(region); err != nil {
			return err
		}
		cfg.TMDB.Region = region
	}

	if f.Changed("format") {
		format := strings.ToLower(strings.TrimSpace(a.flags.format))
		if err := config.ValidateFormat(format); err != nil {
			return err
		}
		cfg.Report.Format = format
	}

	if f.Changed("concurrency") {
		if err := config.ValidateConcurrency(a.flags.concurrency); err != nil {
			return err
		}
		cfg.Lookup.Concurrency = a.flags.concurrency
	}

	if f.Changed("highlight") {
		cfg.Report.Highlight = a.flags.highlight
	}

	if a.flags.noSummary {
		cfg.Report.Summary = false
	}

	if a.flags.timeout < 0 {
		return fmt.Errorf("%w: --timeout must not be negative", config.ErrMalformed)
	}

	return nil
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	user := strings.TrimSpace(args[0])
	cfg := a.cfg

	// Reject a bad expression before any request is made
	highlight, err := report.CompileHighlight(cfg.Report.Highlight)
	if err != nil {
		return err
	}
	if highlight != nil {
		a.logger.Debug().Str("highlight", highlight.Expression()).Msg("Highlighting matching films")
	}

	offers, err := availability.ParseOfferTypes(cfg.TMDB.OfferTypes)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if a.flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.flags.timeout)
		defer cancel()
	}

	tmdbClient, err := tmdb.NewClient(cfg.TMDB.APIKey, a.logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithTimeout(cfg.Lookup.RequestTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	policy := backoff.Policy{
		MaxAttempts: cfg.Lookup.MaxAttempts,
		BaseDelay:   cfg.Lookup.BaseDelay,
		MaxDelay:    cfg.Lookup.MaxDelay,
		Jitter:      cfg.Lookup.Jitter,
	}

	if err := a.verifyTMDB(ctx, tmdbClient, policy); err != nil {
		return err
	}

	watchlistClient, err := letterboxd.NewClient(cfg.Letterboxd.BaseURL, a.logger,
		letterboxd.WithUserAgent(cfg.Letterboxd.UserAgent),
		letterboxd.WithTimeout(cfg.Lookup.RequestTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Letterboxd client: %w", err)
	}

	a.logger.Info().Str("user", user).Msg("Fetching watchlist")
	entries, err := watchlist.Fetch(ctx, watchlistClient, user)
	if err != nil {
		return fmt.Errorf("failed to fetch watchlist: %w", err)
	}
	a.logger.Info().Int("entries", len(entries)).Str("region", cfg.TMDB.Region).Msg("Checking availability")

	progress := newProgress(cmd.ErrOrStderr(), len(entries), !a.flags.noProgress)

	checkerOpts := []availability.CheckerOption{
		availability.WithConcurrency(cfg.Lookup.Concurrency),
		availability.WithPolicy(policy),
		availability.WithObserver(progress.observe),
	}

	// Create Radarr client if enabled
	if cfg.Radarr.Enabled {
		radarrClient, err := radarr.NewClient(cfg.Radarr.URL, cfg.Radarr.APIKey, a.logger)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Failed to create Radarr client, continuing without library status")
		} else {
			checkerOpts = append(checkerOpts, availability.WithEnrichers(radarrClient))
			a.logger.Info().Msg("Radarr integration enabled")
		}
	}

	lookup := availability.NewClient(tmdbClient, a.logger, offers...)
	rep := availability.NewChecker(lookup, a.logger, checkerOpts...).Check(ctx, user, entries, cfg.TMDB.Region)
	progress.finish()

	out, err := report.Render(rep, report.Options{
		Format:    report.Format(cfg.Report.Format),
		Highlight: cfg.Report.Highlight,
		Summary:   cfg.Report.Summary,
	})
	if err != nil {
		return err
	}

	if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if rep.Partial {
		return errInterrupted
	}
	return nil
}

// verifyTMDB checks the credentials before the watchlist is fetched. Only a
// rejected key or a request TMDB will never accept ends the run; outages
// and rate limits are retried and then left to the per-film lookups.
func (a *app) verifyTMDB(ctx context.Context, client *tmdb.Client, policy backoff.Policy) error {
	attempts, err := policy.Do(ctx, func() error {
		return availability.Classify(client.TestConnection(ctx))
	}, availability.Retryable, func(attempt int, err error, wait time.Duration) {
		a.logger.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("Retrying TMDB connection check")
	})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("failed to verify TMDB credentials: %w", ctxErr)
	}

	var apiErr *tmdb.APIError
	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
		return fmt.Errorf("TMDB rejected the configured API key: %w", err)
	}
	if availability.Retryable(err) {
		a.logger.Warn().
			Err(err).
			Int("attempts", attempts).
			Msg("Could not verify TMDB credentials, continuing")
		return nil
	}
	return fmt.Errorf("failed to verify TMDB credentials: %w", err)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	// Set log level
	level := zerolog.WarnLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(out),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
