package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/s0up4200/watchscout/availability"
)

func renderTable(rep *availability.Report, highlight *Highlighter, summary bool) string {
	var sb strings.Builder

	if rep.Partial {
		fmt.Fprintf(&sb, "%s PARTIAL REPORT: run interrupted\n", warningGlyph)
	}

	rows := make([][]string, 0, len(rep.Results))
	for i := range rep.Results {
		res := &rep.Results[i]

		year := ""
		if res.Entry.Year > 0 {
			year = strconv.Itoa(res.Entry.Year)
		}

		var notes []string
		if highlight.Match(res) {
			notes = append(notes, highlightMark)
		}
		if res.InLibrary {
			notes = append(notes, "in library")
		}
		if res.Status == availability.StatusDegraded {
			notes = append(notes, warningGlyph+" "+res.Warning)
		}

		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			res.Entry.Title,
			year,
			providerLine(res),
			strings.Join(notes, " "),
		})
	}

	sb.WriteString(buildTable(
		[]string{"#", "Title", "Year", "Streaming in " + rep.Region, "Notes"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
	))
	sb.WriteString("\n")

	if summary {
		counts := rep.ProviderSummary()
		if len(counts) > 0 {
			summaryRows := make([][]string, len(counts))
			for i, pc := range counts {
				summaryRows[i] = []string{pc.Provider, strconv.Itoa(pc.Films)}
			}
			sb.WriteString("\n")
			sb.WriteString(buildTable([]string{"Platform", "Films"}, summaryRows, []columnAlignment{alignLeft, alignRight}))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func buildTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
