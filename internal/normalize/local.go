package normalize

import (
	"fmt"
	"strings"

	"github.com/harrison/saltview/internal/models"
)

// Local normalizes a state.apply return object. One Report is produced per
// minion, rows ordered by __run_num__, total duration equal to the sum of
// row durations. Reports are returned in lexical minion order.
//
// Three envelope forms are accepted: the full API shape
// {"return": [{minion: {...}}]}, the bare salt-call shape {minion: {...}},
// and the outputter indirection {"return": [{"outputter": ..., "data":
// {minion: {...}}}]}.
func Local(payload map[string]any) ([]models.Report, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	minions, err := unwrapReturn(payload)
	if err != nil {
		return nil, err
	}

	reports := make([]models.Report, 0, len(minions))
	for _, minionID := range sortedKeys(minions) {
		rows, err := stateRows(minionID, minions[minionID])
		if err != nil {
			return nil, err
		}
		report := models.Report{
			GroupLabel:      minionID,
			Rows:            rows,
			TotalDurationMS: models.SumRowDurations(rows),
		}
		if err := report.Validate(); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// unwrapReturn reduces any accepted envelope form to the per-minion map.
func unwrapReturn(payload map[string]any) (map[string]any, error) {
	returnValue, ok := payload["return"]
	if !ok {
		// salt-call shape: the payload is the minion map itself.
		return payload, nil
	}

	entries, ok := returnValue.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: return is not a list", models.ErrMalformedPayload)
	}

	minions := make(map[string]any)
	for _, e := range entries {
		entryMap, ok := asMap(e)
		if !ok {
			return nil, fmt.Errorf("%w: return entry is not a mapping", models.ErrMalformedPayload)
		}
		if asString(entryMap["outputter"]) != "" {
			if data, ok := asMap(entryMap["data"]); ok {
				entryMap = data
			}
		}
		for minionID, states := range entryMap {
			minions[minionID] = states
		}
	}
	return minions, nil
}

// stateRows decodes one minion's state map into ordered leaf rows.
func stateRows(minionID string, statesValue any) ([]models.ReportRow, error) {
	// A list in place of the state map is how Salt reports SLS
	// rendering failures.
	if list, ok := statesValue.([]any); ok && len(list) > 0 {
		if msg, ok := list[0].(string); ok && strings.Contains(msg, "Rendering SLS") {
			return nil, fmt.Errorf("%w: minion %q: %s", models.ErrMalformedPayload, minionID, msg)
		}
	}

	states, ok := asMap(statesValue)
	if !ok {
		return nil, fmt.Errorf("%w: minion %q result is not a state mapping", models.ErrMalformedPayload, minionID)
	}

	entries := make([]entry, 0, len(states))
	labels := make(map[string]bool, len(states))
	for key, stateValue := range states {
		stateData, ok := asMap(stateValue)
		if !ok {
			return nil, fmt.Errorf("%w: state %q is not a mapping", models.ErrMalformedPayload, key)
		}
		e, err := leafRow(key, stateData)
		if err != nil {
			return nil, fmt.Errorf("minion %q: %w", minionID, err)
		}
		// Extracted IDs can collide when two states share a
		// description; fall back to the full key, which is unique.
		if labels[e.row.Label] {
			e.row.Label = key
		}
		labels[e.row.Label] = true
		entries = append(entries, e)
	}
	return sortEntries(entries), nil
}
