// Package report renders availability reports for the terminal or for tooling.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/s0up4200/watchscout/availability"
)

// Format selects how a report is rendered
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

const (
	notAvailable  = "not available"
	notChecked    = "not checked"
	warningGlyph  = "⚠"
	highlightMark = "★"
)

// Options controls rendering
type Options struct {
	Format Format
	// Highlight is an optional expression; matching films are starred
	Highlight string
	// Summary appends the per-provider film counts
	Summary bool
}

// Render formats a report. It performs no I/O and renders results in
// report order, so the same report always yields the same output.
func Render(rep availability.Report, opts Options) (string, error) {
	highlight, err := CompileHighlight(opts.Highlight)
	if err != nil {
		return "", err
	}

	switch opts.Format {
	case FormatText, "":
		return renderText(&rep, highlight, opts.Summary), nil
	case FormatTable:
		return renderTable(&rep, highlight, opts.Summary), nil
	case FormatJSON:
		return renderJSON(&rep, highlight)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}
}

func renderText(rep *availability.Report, highlight *Highlighter, summary bool) string {
	var sb strings.Builder

	if rep.Partial {
		available, unavailable, degraded, _ := rep.Counts()
		fmt.Fprintf(&sb, "\n%s PARTIAL REPORT: run interrupted, %d of %d films checked\n",
			warningGlyph, available+unavailable+degraded, len(rep.Results))
	}

	if len(rep.Results) == 0 {
		fmt.Fprintf(&sb, "\n%s's watchlist is empty\n", rep.User)
		return sb.String()
	}

	// Header
	sb.WriteString("\nFilm")
	if len(rep.Results) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " on %s's watchlist streaming in %s (%d):\n\n", rep.User, rep.Region, len(rep.Results))

	for i := range rep.Results {
		isLast := i == len(rep.Results)-1
		formatResult(&sb, &rep.Results[i], isLast, highlight)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	writeCounts(&sb, rep)

	if summary {
		writeSummary(&sb, rep)
	}

	return sb.String()
}

// formatResult formats a single film as a tree node
func formatResult(sb *strings.Builder, res *availability.Result, isLast bool, highlight *Highlighter) {
	prefix := "├"
	if isLast {
		prefix = "╰"
	}

	fmt.Fprintf(sb, "%s── %s\n", prefix, titleLine(res, highlight))

	indent := "│   "
	if isLast {
		indent = "    "
	}

	fmt.Fprintf(sb, "%s%s\n", indent, providerLine(res))
	if res.Warning != "" && res.Status != availability.StatusSkipped {
		fmt.Fprintf(sb, "%s%s %s\n", indent, warningGlyph, res.Warning)
	}
}

func titleLine(res *availability.Result, highlight *Highlighter) string {
	var parts []string
	if highlight.Match(res) {
		parts = append(parts, highlightMark)
	}
	if res.Status == availability.StatusDegraded {
		parts = append(parts, warningGlyph)
	}
	parts = append(parts, res.Entry.String())
	if res.InLibrary {
		parts = append(parts, "[in library]")
	}
	return strings.Join(parts, " ")
}

func providerLine(res *availability.Result) string {
	switch {
	case res.Status == availability.StatusSkipped:
		return notChecked
	case res.Available():
		return strings.Join(res.Providers, ", ")
	default:
		return notAvailable
	}
}

func writeCounts(sb *strings.Builder, rep *availability.Report) {
	available, unavailable, degraded, skipped := rep.Counts()

	parts := []string{
		fmt.Sprintf("%d streaming", available),
		fmt.Sprintf("%d %s", unavailable, notAvailable),
	}
	if degraded > 0 {
		parts = append(parts, fmt.Sprintf("%d failed lookups", degraded))
	}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", skipped, notChecked))
	}
	fmt.Fprintf(sb, "%s\n", strings.Join(parts, " | "))
}

func writeSummary(sb *strings.Builder, rep *availability.Report) {
	summary := rep.ProviderSummary()
	if len(summary) == 0 {
		return
	}

	width := 0
	for _, pc := range summary {
		width = max(width, len(pc.Provider))
	}

	sb.WriteString("\nStreaming platforms:\n")
	for _, pc := range summary {
		noun := "films"
		if pc.Films == 1 {
			noun = "film"
		}
		fmt.Fprintf(sb, "  %-*s  %d %s\n", width, pc.Provider, pc.Films, noun)
	}
}

type jsonResult struct {
	availability.Result
	Available   bool `json:"available"`
	Highlighted bool `json:"highlighted,omitempty"`
}

type jsonReport struct {
	availability.Report
	Results   []jsonResult                 `json:"results"`
	Providers []availability.ProviderCount `json:"providers"`
}

func renderJSON(rep *availability.Report, highlight *Highlighter) (string, error) {
	out := jsonReport{
		Report:    *rep,
		Results:   make([]jsonResult, len(rep.Results)),
		Providers: rep.ProviderSummary(),
	}
	for i := range rep.Results {
		res := &rep.Results[i]
		out.Results[i] = jsonResult{
			Result:      *res,
			Available:   res.Available(),
			Highlighted: highlight.Match(res),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data) + "\n", nil
}
