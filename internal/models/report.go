// Package models defines the normalized report structures shared across
// saltview. A Report is the uniform record model produced from a raw Salt
// return object; it is built once and never mutated afterwards.
package models

import "fmt"

// Outcome is the tri-state result classification of a report row.
// Salt returns `result: null` for states that could not be evaluated, so
// Unknown is a valid value and is never folded into Success or Failure.
type Outcome int

const (
	// OutcomeUnknown means the source payload carried a null or
	// unrecognizable result flag.
	OutcomeUnknown Outcome = iota
	// OutcomeSuccess means the result flag was boolean true.
	OutcomeSuccess
	// OutcomeFailure means the result flag was boolean false.
	OutcomeFailure
)

// String returns the display form used in the Result column.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "true"
	case OutcomeFailure:
		return "false"
	default:
		return "unknown"
	}
}

// ReportRow is one renderable line item: a single state of a state.apply
// run, or a single step of an orchestration run.
type ReportRow struct {
	// Label is the display name extracted from the state or step key.
	// Unique within a single report.
	Label string

	// DurationMS is the raw elapsed time in milliseconds, >= 0.
	DurationMS float64

	// Outcome classifies the row's result flag.
	Outcome Outcome

	// Detail carries the result comment when the payload supplied one.
	Detail string

	// Children holds the rows of a nested execution wrapped by this step
	// (orchestration steps only). Empty for leaf rows. A row's children
	// never contribute to its own duration or outcome.
	Children []ReportRow
}

// IsLeaf reports whether the row wraps no nested execution.
func (r ReportRow) IsLeaf() bool {
	return len(r.Children) == 0
}

// Report is one normalized execution result: a single target node's state
// run, or one orchestration run.
type Report struct {
	// GroupLabel is the target node name for state reports, or a fixed
	// orchestration title.
	GroupLabel string

	// Rows in source order.
	Rows []ReportRow

	// TotalDurationMS is the report's elapsed-time base. For state
	// reports it equals the sum of row durations; for orchestration
	// reports it is the wall-clock total reported by the source, which
	// may exceed the row sum when steps ran concurrently. Percentages
	// are always computed against this value.
	TotalDurationMS float64
}

// SumRowDurations returns the sum of the durations of the given rows.
// Used to derive the percentage base of nested sub-tables, whose totals
// are not separately reported by the source.
func SumRowDurations(rows []ReportRow) float64 {
	var total float64
	for _, row := range rows {
		total += row.DurationMS
	}
	return total
}

// Validate checks the invariants a normalizer must uphold before a Report
// is handed to the renderer.
func (r Report) Validate() error {
	if r.TotalDurationMS < 0 {
		return fmt.Errorf("report %q: negative total duration %f", r.GroupLabel, r.TotalDurationMS)
	}
	seen := make(map[string]bool, len(r.Rows))
	for _, row := range r.Rows {
		if row.DurationMS < 0 {
			return fmt.Errorf("report %q: row %q has negative duration", r.GroupLabel, row.Label)
		}
		if seen[row.Label] {
			return fmt.Errorf("report %q: duplicate row label %q", r.GroupLabel, row.Label)
		}
		seen[row.Label] = true
	}
	return nil
}
