package normalize

import (
	"fmt"

	"github.com/harrison/saltview/internal/models"
)

// Runner normalizes an orchestration (state.orch) return object into a
// single Report titled OrchestrationTitle.
//
// Each step's duration and outcome come from the step's own result object,
// never from its children: a step may fail on its post-conditions even
// when every nested state succeeded. The report total is the wall-clock
// figure reported by the source when present (steps may run concurrently,
// so it can exceed the step sum); otherwise it falls back to the sum of
// step durations.
func Runner(payload map[string]any, fetcher JobFetcher, opts Options) (models.Report, error) {
	data, reportedTotal, hasTotal, err := runnerEnvelope(payload)
	if err != nil {
		return models.Report{}, err
	}

	rows, err := runnerSteps(data, fetcher, 1, opts.maxDepth())
	if err != nil {
		return models.Report{}, err
	}

	total := reportedTotal
	if !hasTotal {
		total = models.SumRowDurations(rows)
	}

	report := models.Report{
		GroupLabel:      OrchestrationTitle,
		Rows:            rows,
		TotalDurationMS: total,
	}
	if err := report.Validate(); err != nil {
		return models.Report{}, err
	}
	return report, nil
}

// runnerEnvelope reduces an orchestration return object to its per-master
// step data and the reported wall-clock total. Both the direct API shape
// {"return": [{"data": {...}, "duration": N}]} and the jobs.lookup_jid
// shape {"return": [{jid: {"return": {"data": {...}}}}]} are accepted.
func runnerEnvelope(payload map[string]any) (map[string]any, float64, bool, error) {
	entryMap := payload
	if returnValue, ok := payload["return"]; ok {
		entries, ok := returnValue.([]any)
		if !ok || len(entries) == 0 {
			return nil, 0, false, fmt.Errorf("%w: orchestration return is not a non-empty list", models.ErrMalformedPayload)
		}
		entryMap, ok = asMap(entries[0])
		if !ok {
			return nil, 0, false, fmt.Errorf("%w: orchestration return entry is not a mapping", models.ErrMalformedPayload)
		}
	}

	if data, ok := asMap(entryMap["data"]); ok {
		total, hasTotal := asFloat(entryMap["duration"])
		return data, total, hasTotal, nil
	}

	// jobs.lookup_jid wraps the result one level deeper, keyed by jid.
	for _, v := range entryMap {
		inner, ok := asMap(v)
		if !ok {
			continue
		}
		ret, ok := asMap(inner["return"])
		if !ok {
			continue
		}
		if data, ok := asMap(ret["data"]); ok {
			total, hasTotal := asFloat(ret["duration"])
			return data, total, hasTotal, nil
		}
	}

	return nil, 0, false, fmt.Errorf("%w: unable to locate orchestration data", models.ErrMalformedPayload)
}

// runnerSteps decodes every master's step map into ordered rows,
// expanding nested executions into child rows.
func runnerSteps(data map[string]any, fetcher JobFetcher, depth, maxDepth int) ([]models.ReportRow, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds ceiling %d", models.ErrReportTooDeep, depth, maxDepth)
	}

	var entries []entry
	labels := make(map[string]bool)
	for _, master := range sortedKeys(data) {
		steps, ok := asMap(data[master])
		if !ok {
			return nil, fmt.Errorf("%w: master %q result is not a step mapping", models.ErrMalformedPayload, master)
		}
		for key, stepValue := range steps {
			stepData, ok := asMap(stepValue)
			if !ok {
				return nil, fmt.Errorf("%w: step %q is not a mapping", models.ErrMalformedPayload, key)
			}
			e, err := leafRow(key, stepData)
			if err != nil {
				return nil, fmt.Errorf("master %q: %w", master, err)
			}
			// Extracted IDs can collide when two steps share a
			// description; fall back to the full key, which is unique.
			if labels[e.row.Label] {
				e.row.Label = key
			}
			labels[e.row.Label] = true

			if stepType(key) == stepTypeState {
				sub, err := subResult(stepData, e.row.Outcome, fetcher)
				if err != nil {
					return nil, fmt.Errorf("step %q: %w", e.row.Label, err)
				}
				if sub != nil {
					children, err := nestedRows(sub, fetcher, depth+1, maxDepth)
					if err != nil {
						return nil, fmt.Errorf("step %q: %w", e.row.Label, err)
					}
					e.row.Children = children
				}
			}
			entries = append(entries, e)
		}
	}
	return sortEntries(entries), nil
}

// subResult locates the nested execution wrapped by a state-type step.
// Successful steps embed it under changes.ret; failed steps strip it and
// leave only a job ID, in which case it is fetched through the collaborator
// when one was provided. Returns nil when the step wraps nothing
// retrievable.
func subResult(stepData map[string]any, outcome models.Outcome, fetcher JobFetcher) (map[string]any, error) {
	if changes, ok := asMap(stepData["changes"]); ok {
		if ret, ok := asMap(changes["ret"]); ok {
			return ret, nil
		}
	}

	if outcome == models.OutcomeFailure && fetcher != nil {
		jid := asString(stepData["__jid__"])
		if jid == "" {
			if n, ok := asFloat(stepData["__jid__"]); ok {
				jid = fmt.Sprintf("%.0f", n)
			}
		}
		if jid != "" {
			fetched, err := fetcher.LookupJob(jid)
			if err != nil {
				return nil, fmt.Errorf("lookup job %s: %w", jid, err)
			}
			return fetched, nil
		}
	}

	return nil, nil
}

// nestedRows normalizes a step's sub-payload. Orchestrations can nest
// orchestrations, so the shape is detected per step: a payload carrying
// step data normalizes recursively as a runner result, anything else as a
// state return whose minions become grouping rows.
func nestedRows(payload map[string]any, fetcher JobFetcher, depth, maxDepth int) ([]models.ReportRow, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds ceiling %d", models.ErrReportTooDeep, depth, maxDepth)
	}

	if data, ok := asMap(payload["data"]); ok {
		return runnerSteps(data, fetcher, depth, maxDepth)
	}

	minions, err := unwrapReturn(payload)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ReportRow, 0, len(minions))
	for _, minionID := range sortedKeys(minions) {
		states, err := stateRows(minionID, minions[minionID])
		if err != nil {
			return nil, err
		}
		rows = append(rows, minionRow(minionID, states))
	}
	return rows, nil
}

// minionRow groups one minion's state rows under a single row labeled by
// the minion ID. The grouping row succeeds only when every state did.
func minionRow(minionID string, states []models.ReportRow) models.ReportRow {
	outcome := models.OutcomeSuccess
	for _, s := range states {
		if s.Outcome != models.OutcomeSuccess {
			outcome = models.OutcomeFailure
			break
		}
	}
	return models.ReportRow{
		Label:      minionID,
		DurationMS: models.SumRowDurations(states),
		Outcome:    outcome,
		Children:   states,
	}
}
