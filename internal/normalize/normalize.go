// Package normalize turns raw Salt return objects into the uniform
// models.Report record model.
//
// Two payload shapes are supported, selected by an explicit ClientKind
// discriminator rather than shape sniffing: the flat per-minion state map
// produced by local executions, and the recursive per-step map produced by
// orchestration runs. The payload is treated as an untyped tree (the value
// of decoding JSON or YAML into map[string]any); field presence and types
// are validated explicitly and violations surface as
// models.ErrMalformedPayload.
//
// Normalization never partially succeeds: either a full Report is produced
// or an error is returned.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harrison/saltview/internal/models"
)

// ClientKind discriminates the two supported payload shapes. The values
// match the Salt API client names the payloads originate from.
type ClientKind string

const (
	// ClientLocal is the flat per-minion state.apply return shape.
	ClientLocal ClientKind = "local"
	// ClientRunner is the recursive orchestration return shape.
	ClientRunner ClientKind = "runner"
)

// DefaultMaxDepth is the recursion ceiling applied when Options.MaxDepth
// is zero. Generous: real orchestrations nest two or three levels.
const DefaultMaxDepth = 50

// OrchestrationTitle is the fixed group label of runner reports.
const OrchestrationTitle = "Orchestration"

// JobFetcher retrieves a job return object by ID. Orchestration steps that
// failed reference their sub-results by job ID instead of embedding them;
// the fetch is synchronous and any timeout or retry policy belongs to the
// implementation, not to this package.
type JobFetcher interface {
	LookupJob(jid string) (map[string]any, error)
}

// Options adjusts normalization behavior.
type Options struct {
	// MaxDepth is the payload nesting ceiling. Zero selects
	// DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Normalize decodes a raw payload of the given kind into one or more
// Reports. Local payloads produce one Report per minion; runner payloads
// produce a single orchestration Report.
func Normalize(kind ClientKind, payload map[string]any, fetcher JobFetcher, opts Options) ([]models.Report, error) {
	switch kind {
	case ClientLocal:
		return Local(payload)
	case ClientRunner:
		report, err := Runner(payload, fetcher, opts)
		if err != nil {
			return nil, err
		}
		return []models.Report{report}, nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownClientKind, kind)
	}
}

// extractID pulls the descriptive portion out of a Salt execution key of
// the form "name_|-id_|-name_|-fun". Keys without the separator are used
// verbatim.
func extractID(key string) string {
	parts := strings.Split(key, keySeparator)
	if len(parts) > 1 {
		return parts[1]
	}
	return key
}

// stepType returns the trailing segment of an orchestration step key:
// "state" for nested state executions, "function" for remote function
// calls.
func stepType(key string) string {
	parts := strings.Split(key, keySeparator)
	return parts[len(parts)-1]
}

const keySeparator = "_|-"

const stepTypeState = "state"

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// entry is a parsed leaf result plus its sort keys.
type entry struct {
	row    models.ReportRow
	runNum float64
}

// sortEntries orders parsed leaves by __run_num__, falling back to label
// order among equal run numbers so renders stay deterministic when the
// source omits run numbers (Go maps do not preserve key order).
func sortEntries(entries []entry) []models.ReportRow {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].runNum != entries[j].runNum {
			return entries[i].runNum < entries[j].runNum
		}
		return entries[i].row.Label < entries[j].row.Label
	})
	rows := make([]models.ReportRow, len(entries))
	for i, e := range entries {
		rows[i] = e.row
	}
	return rows
}

// leafRow validates and decodes one leaf result object. The result key
// must be present, but its value may be null (OutcomeUnknown); duration
// must be present and numeric.
func leafRow(key string, raw map[string]any) (entry, error) {
	resultValue, ok := raw["result"]
	if !ok {
		return entry{}, fmt.Errorf("%w: %q has no result field", models.ErrMalformedPayload, key)
	}

	var outcome models.Outcome
	switch b := resultValue.(type) {
	case bool:
		if b {
			outcome = models.OutcomeSuccess
		} else {
			outcome = models.OutcomeFailure
		}
	default:
		// null or an unrecognized type: a valid Unknown, never an
		// error and never coerced to Success.
		outcome = models.OutcomeUnknown
	}

	durationValue, ok := raw["duration"]
	if !ok {
		return entry{}, fmt.Errorf("%w: %q has no duration field", models.ErrMalformedPayload, key)
	}
	duration, ok := asFloat(durationValue)
	if !ok {
		return entry{}, fmt.Errorf("%w: %q has non-numeric duration", models.ErrMalformedPayload, key)
	}
	if duration < 0 {
		return entry{}, fmt.Errorf("%w: %q has negative duration", models.ErrMalformedPayload, key)
	}

	runNum, _ := asFloat(raw["__run_num__"])

	return entry{
		row: models.ReportRow{
			Label:      extractID(key),
			DurationMS: duration,
			Outcome:    outcome,
			Detail:     asString(raw["comment"]),
		},
		runNum: runNum,
	}, nil
}

// sortedKeys returns the map's keys in lexical order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
