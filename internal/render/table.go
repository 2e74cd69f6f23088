// Package render lays out normalized reports as fixed-width bordered
// terminal tables.
//
// The renderer is pure: it returns a text block and never writes to the
// terminal or queries terminal state. Glyph set and colorization are
// explicit configuration resolved by the caller.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/harrison/saltview/internal/models"
	"github.com/harrison/saltview/internal/stats"
)

// Alignment positions cell text within its column.
type Alignment int

const (
	// AlignLeft pads on the right.
	AlignLeft Alignment = iota
	// AlignRight pads on the left.
	AlignRight
)

// Column describes one column of the table: its header, how to produce a
// cell from a row and its stats, and how to align it.
type Column struct {
	Header string
	Align  Alignment
	// ColorByOutcome marks the column whose text is wrapped in ANSI
	// color codes when colorization is on. Color codes never count
	// toward column width.
	ColorByOutcome bool
	Extract        func(models.ReportRow, stats.Stats) string
}

// DefaultMaxBarSize is the plot width used when Options.MaxBarSize is
// zero.
const DefaultMaxBarSize = 30

// defaultMaxDepth bounds sub-table recursion on malformed or adversarial
// nesting.
const defaultMaxDepth = 50

// Options adjusts table rendering.
type Options struct {
	// Glyphs selects the border and bar palette. Empty defaults to
	// GlyphsSafe; GlyphsAuto must be resolved by the caller first.
	Glyphs GlyphSet
	// Colorize wraps the outcome column in ANSI color codes.
	Colorize bool
	// MaxBarSize is the plot width equivalent to 100% of the total.
	MaxBarSize int
	// TimeUnit is the display unit for the footer. Empty selects a
	// humanized unit scaled to the total.
	TimeUnit Unit
	// MaxDepth is the nested sub-table ceiling. Zero selects the
	// default of 50.
	MaxDepth int
}

func (o Options) glyphs() GlyphSet {
	if o.Glyphs == "" {
		return GlyphsSafe
	}
	return o.Glyphs
}

func (o Options) maxBarSize() int {
	if o.MaxBarSize == 0 {
		return DefaultMaxBarSize
	}
	return o.MaxBarSize
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return defaultMaxDepth
	}
	return o.MaxDepth
}

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// visibleWidth measures the terminal cell width of a string with ANSI
// color codes stripped, so colorized cells never skew the layout.
func visibleWidth(s string) int {
	return runewidth.StringWidth(ansiPattern.ReplaceAllString(s, ""))
}

// outcomeScheme holds one color per outcome. Colors are force-enabled so
// the rendered block does not depend on global TTY detection; whether to
// colorize at all is the caller's explicit choice.
type outcomeScheme struct {
	success *color.Color
	fail    *color.Color
	unknown *color.Color
}

func newOutcomeScheme() *outcomeScheme {
	s := &outcomeScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		unknown: color.New(color.FgYellow),
	}
	s.success.EnableColor()
	s.fail.EnableColor()
	s.unknown.EnableColor()
	return s
}

func (s *outcomeScheme) wrap(outcome models.Outcome, text string) string {
	switch outcome {
	case models.OutcomeSuccess:
		return s.success.Sprint(text)
	case models.OutcomeFailure:
		return s.fail.Sprint(text)
	default:
		return s.unknown.Sprint(text)
	}
}

// Table renders one report as a bordered table: a titled top border, a
// header row, one row per report row, and a footer with the total elapsed
// time. Rows wrapping nested executions are followed immediately by an
// indented sub-table sharing the same options; sub-tables derive their
// percentage base from the sum of their own row durations.
func Table(title string, columns []Column, report models.Report, opts Options) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("%w: no columns", models.ErrInvalidConfiguration)
	}
	pal, err := paletteFor(opts.glyphs())
	if err != nil {
		return "", err
	}
	return renderTable(title, columns, report.Rows, report.TotalDurationMS, pal, opts, 1)
}

func renderTable(title string, columns []Column, rows []models.ReportRow, totalMS float64, pal palette, opts Options, depth int) (string, error) {
	if depth > opts.maxDepth() {
		return "", fmt.Errorf("%w: depth %d exceeds ceiling %d", models.ErrReportTooDeep, depth, opts.maxDepth())
	}

	rowStats, err := stats.Aggregate(rows, totalMS, opts.maxBarSize())
	if err != nil {
		return "", err
	}

	footer := "Total elapsed time: " + FormatDuration(totalMS)
	if opts.TimeUnit != "" {
		value, suffix, err := Convert(totalMS, opts.TimeUnit)
		if err != nil {
			return "", err
		}
		footer = fmt.Sprintf("Total elapsed time: %.2f%s", value, suffix)
	}

	scheme := newOutcomeScheme()

	// Extract every cell up front; widths are computed from visible
	// text, colorization is applied afterwards.
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(columns))
		for j, col := range columns {
			cells[i][j] = col.Extract(row, rowStats[row.Label])
		}
	}

	widths := make([]int, len(columns))
	for j, col := range columns {
		widths[j] = visibleWidth(col.Header)
		for i := range rows {
			if w := visibleWidth(cells[i][j]); w > widths[j] {
				widths[j] = w
			}
		}
	}

	// One space of padding on each side of every cell, single-glyph
	// separators between columns.
	innerWidth := len(columns) - 1
	for _, w := range widths {
		innerWidth += w + 2
	}
	if need := visibleWidth(title) + 4; innerWidth < need {
		widths[len(widths)-1] += need - innerWidth
		innerWidth = need
	}
	if need := visibleWidth(footer) + 2; innerWidth < need {
		widths[len(widths)-1] += need - innerWidth
		innerWidth = need
	}

	var b strings.Builder

	// Top border with the title embedded.
	titleSegment := pal.horizontal + " " + title + " "
	fill := innerWidth - visibleWidth(titleSegment)
	b.WriteString(pal.topLeft + titleSegment + strings.Repeat(pal.horizontal, fill) + pal.topRight + "\n")

	headers := make([]string, len(columns))
	for j, col := range columns {
		headers[j] = pad(col.Header, widths[j], col.Align)
	}
	b.WriteString(rowLine(headers, pal) + "\n")
	b.WriteString(jointLine(widths, pal, pal.cross) + "\n")

	for i, row := range rows {
		line := make([]string, len(columns))
		for j, col := range columns {
			text := pad(cells[i][j], widths[j], col.Align)
			if col.ColorByOutcome && opts.Colorize {
				text = colorizePadded(cells[i][j], widths[j], col.Align, scheme, row.Outcome)
			}
			line[j] = text
		}
		b.WriteString(rowLine(line, pal) + "\n")

		if len(row.Children) > 0 {
			sub, err := renderTable(row.Label, columns, row.Children, models.SumRowDurations(row.Children), pal, opts, depth+1)
			if err != nil {
				return "", err
			}
			b.WriteString(indentBlock(sub, "  "))
		}
	}

	b.WriteString(jointLine(widths, pal, pal.bottomTee) + "\n")
	b.WriteString(pal.vertical + " " + footer + strings.Repeat(" ", innerWidth-visibleWidth(footer)-2) + " " + pal.vertical + "\n")
	b.WriteString(pal.bottomLeft + strings.Repeat(pal.horizontal, innerWidth) + pal.bottomRight + "\n")

	return b.String(), nil
}

// pad aligns text within width using visible-width measurement.
func pad(text string, width int, align Alignment) string {
	gap := width - visibleWidth(text)
	if gap <= 0 {
		return text
	}
	if align == AlignRight {
		return strings.Repeat(" ", gap) + text
	}
	return text + strings.Repeat(" ", gap)
}

// colorizePadded pads first, then wraps only the cell text in color so
// the padding stays uncolored and widths are unaffected.
func colorizePadded(text string, width int, align Alignment, scheme *outcomeScheme, outcome models.Outcome) string {
	gap := width - visibleWidth(text)
	if gap < 0 {
		gap = 0
	}
	colored := scheme.wrap(outcome, text)
	if align == AlignRight {
		return strings.Repeat(" ", gap) + colored
	}
	return colored + strings.Repeat(" ", gap)
}

func rowLine(cells []string, pal palette) string {
	return pal.vertical + " " + strings.Join(cells, " "+pal.vertical+" ") + " " + pal.vertical
}

func jointLine(widths []int, pal palette, joint string) string {
	segments := make([]string, len(widths))
	for i, w := range widths {
		segments[i] = strings.Repeat(pal.horizontal, w+2)
	}
	return pal.leftTee + strings.Join(segments, joint) + pal.rightTee
}

// indentBlock prefixes every non-empty line of a rendered block.
func indentBlock(block, prefix string) string {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}
