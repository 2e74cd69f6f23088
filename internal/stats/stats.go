// Package stats computes the derived per-row presentation figures:
// percentage share of total duration and proportional bar length. The
// figures are attached at render time and never stored on the report
// itself.
package stats

import (
	"fmt"
	"math"

	"github.com/harrison/saltview/internal/models"
)

// Stats holds the derived figures for one row.
type Stats struct {
	// PercentOfTotal is the row's share of the report total, in [0,100].
	PercentOfTotal float64
	// BarLength is the proportional bar width in glyphs, in
	// [0, maxBarSize].
	BarLength int
}

// Aggregate computes Stats for every row, keyed by row label (unique
// within a report). When totalMS is zero every percentage and bar length
// is zero; there is no division by zero and no NaN.
//
// Rounding is per row and independent: percentages are not forced to sum
// to exactly 100 across rows.
func Aggregate(rows []models.ReportRow, totalMS float64, maxBarSize int) (map[string]Stats, error) {
	if maxBarSize <= 0 {
		return nil, fmt.Errorf("%w: max bar size must be positive, got %d", models.ErrInvalidConfiguration, maxBarSize)
	}

	out := make(map[string]Stats, len(rows))
	for _, row := range rows {
		out[row.Label] = forRow(row.DurationMS, totalMS, maxBarSize)
	}
	return out, nil
}

// forRow computes one row's figures, clamping the bar against rounding
// overshoot at 100%.
func forRow(durationMS, totalMS float64, maxBarSize int) Stats {
	if totalMS <= 0 {
		return Stats{}
	}

	percent := durationMS / totalMS * 100
	if percent > 100 {
		percent = 100
	}

	bar := int(math.Round(percent / 100 * float64(maxBarSize)))
	if bar > maxBarSize {
		bar = maxBarSize
	}
	if bar < 0 {
		bar = 0
	}

	return Stats{PercentOfTotal: percent, BarLength: bar}
}
