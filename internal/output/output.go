// Package output is the rendering facade: it composes the normalizer,
// the statistics aggregator, and the table renderer into the report
// entry points callers consume.
package output

import (
	"fmt"
	"strings"

	"github.com/harrison/saltview/internal/models"
	"github.com/harrison/saltview/internal/normalize"
	"github.com/harrison/saltview/internal/render"
	"github.com/harrison/saltview/internal/stats"
)

// Filter selects which top-level rows a report includes.
type Filter string

const (
	// FilterAll keeps every row.
	FilterAll Filter = "all"
	// FilterFailuresOnly keeps rows whose outcome is not Success,
	// preserving order. Percentages keep the original total as their
	// denominator so bars stay comparable to the full run.
	FilterFailuresOnly Filter = "failures"
)

// Options is the full configuration surface of the facade.
type Options struct {
	// Glyphs must be Rich or Safe; Auto is resolved by the caller from
	// detected terminal capability before reaching the engine. Empty
	// defaults to Safe.
	Glyphs render.GlyphSet
	// Colorize wraps the Result column in ANSI color codes.
	Colorize bool
	// MaxBarSize is the plot width for 100% of elapsed time. Zero
	// selects render.DefaultMaxBarSize.
	MaxBarSize int
	// TimeUnit for duration columns and footers. Empty shows columns in
	// the per-report default (milliseconds for state reports, seconds
	// for orchestration summaries) and a humanized footer.
	TimeUnit render.Unit
	// Filter defaults to FilterAll.
	Filter Filter
	// MaxDepth bounds payload nesting. Zero selects the default
	// ceiling.
	MaxDepth int
}

func (o Options) filter() Filter {
	if o.Filter == "" {
		return FilterAll
	}
	return o.Filter
}

// Render normalizes and renders a payload of the given client kind.
// Local payloads produce one table per minion, separated by blank lines;
// runner payloads a single table titled "Orchestration".
func Render(kind normalize.ClientKind, payload map[string]any, fetcher normalize.JobFetcher, opts Options) (string, error) {
	labelHeader, columnUnit := "State", render.UnitMilliseconds
	if kind == normalize.ClientRunner {
		labelHeader, columnUnit = "Step", render.UnitSeconds
	}

	reports, err := normalize.Normalize(kind, payload, fetcher, normalize.Options{MaxDepth: opts.MaxDepth})
	if err != nil {
		return "", err
	}

	columns, err := reportColumns(labelHeader, opts, columnUnit)
	if err != nil {
		return "", err
	}

	tables := make([]string, 0, len(reports))
	for _, report := range reports {
		report.Rows = filterRows(report.Rows, opts.filter())
		// State runs span many minions; skip those the filter emptied
		// rather than rendering a bare frame.
		if len(report.Rows) == 0 && kind == normalize.ClientLocal {
			continue
		}
		table, err := render.Table(report.GroupLabel, columns, report, renderOptions(opts))
		if err != nil {
			return "", err
		}
		tables = append(tables, table)
	}
	return strings.Join(tables, "\n"), nil
}

// StateReport renders a state.apply return object: one table per minion.
// Duration columns default to milliseconds.
func StateReport(payload map[string]any, opts Options) (string, error) {
	return Render(normalize.ClientLocal, payload, nil, opts)
}

// OrchestrationSummary renders a state.orch return object as a single
// table titled "Orchestration". Failed state steps whose sub-results are
// referenced by job ID are fetched through the given fetcher when one is
// provided; the fetch is synchronous and blocking. Duration columns
// default to seconds.
func OrchestrationSummary(payload map[string]any, fetcher normalize.JobFetcher, opts Options) (string, error) {
	return Render(normalize.ClientRunner, payload, fetcher, opts)
}

// filterRows applies the top-level row filter, keeping source order. The
// report total is left untouched.
func filterRows(rows []models.ReportRow, filter Filter) []models.ReportRow {
	if filter != FilterFailuresOnly {
		return rows
	}
	kept := make([]models.ReportRow, 0, len(rows))
	for _, row := range rows {
		if row.Outcome != models.OutcomeSuccess {
			kept = append(kept, row)
		}
	}
	return kept
}

func renderOptions(opts Options) render.Options {
	return render.Options{
		Glyphs:     opts.Glyphs,
		Colorize:   opts.Colorize,
		MaxBarSize: opts.MaxBarSize,
		TimeUnit:   opts.TimeUnit,
		MaxDepth:   opts.MaxDepth,
	}
}

// reportColumns builds the shared five-column schema: label, plot bar,
// percentage, duration in the selected unit, and the colorizable result.
func reportColumns(labelHeader string, opts Options, defaultUnit render.Unit) ([]render.Column, error) {
	glyphs := opts.Glyphs
	if glyphs == "" {
		glyphs = render.GlyphsSafe
	}
	tick, err := render.BarGlyph(glyphs)
	if err != nil {
		return nil, err
	}

	unit := opts.TimeUnit
	if unit == "" {
		unit = defaultUnit
	}
	if _, _, err := render.Convert(0, unit); err != nil {
		return nil, err
	}

	return []render.Column{
		{
			Header: labelHeader,
			Align:  render.AlignLeft,
			Extract: func(row models.ReportRow, _ stats.Stats) string {
				return row.Label
			},
		},
		{
			Header: "Plot",
			Align:  render.AlignLeft,
			Extract: func(_ models.ReportRow, st stats.Stats) string {
				return strings.Repeat(tick, st.BarLength)
			},
		},
		{
			Header: "%",
			Align:  render.AlignRight,
			Extract: func(_ models.ReportRow, st stats.Stats) string {
				return fmt.Sprintf("%.2f%%", st.PercentOfTotal)
			},
		},
		{
			Header: fmt.Sprintf("Time(%s)", unit),
			Align:  render.AlignRight,
			Extract: func(row models.ReportRow, _ stats.Stats) string {
				value, _, _ := render.Convert(row.DurationMS, unit)
				return fmt.Sprintf("%.2f", value)
			},
		},
		{
			Header:         "Result",
			Align:          render.AlignLeft,
			ColorByOutcome: true,
			Extract: func(row models.ReportRow, _ stats.Stats) string {
				return row.Outcome.String()
			},
		},
	}, nil
}
