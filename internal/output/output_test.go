package output

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/saltview/internal/models"
	"github.com/harrison/saltview/internal/normalize"
	"github.com/harrison/saltview/internal/render"
)

func statePayload() map[string]any {
	return map[string]any{
		"return": []any{
			map[string]any{
				"minion01": map[string]any{
					"cmd_|-stateA_|-stateA_|-run": map[string]any{
						"result": true, "duration": 404.0, "__run_num__": 0.0,
					},
					"cmd_|-stateB_|-stateB_|-run": map[string]any{
						"result": false, "duration": 284.0, "__run_num__": 1.0,
					},
					"cmd_|-stateC_|-stateC_|-run": map[string]any{
						"result": nil, "duration": 271.0, "__run_num__": 2.0,
					},
				},
			},
		},
	}
}

func orchPayload() map[string]any {
	step := func(result bool, duration, runNum float64) map[string]any {
		return map[string]any{"result": result, "duration": duration, "__run_num__": runNum}
	}
	return map[string]any{
		"return": []any{
			map[string]any{
				"data": map[string]any{
					"master01": map[string]any{
						"salt_|-sync grains_|-a_|-function": step(true, 5130, 0),
						"salt_|-stage app_|-b_|-function":   step(true, 5030, 1),
						"salt_|-restart app_|-c_|-function": step(true, 5050, 2),
						"salt_|-verify app_|-d_|-function":  step(false, 5160, 3),
					},
				},
				"duration": 20370.0,
			},
		},
	}
}

func TestStateReport(t *testing.T) {
	text, err := StateReport(statePayload(), Options{})
	require.NoError(t, err)

	t.Run("one table titled by minion", func(t *testing.T) {
		assert.Contains(t, text, " minion01 ")
	})

	t.Run("rows in run order", func(t *testing.T) {
		a := strings.Index(text, "stateA")
		b := strings.Index(text, "stateB")
		c := strings.Index(text, "stateC")
		assert.True(t, a >= 0 && a < b && b < c)
	})

	t.Run("milliseconds footer by default", func(t *testing.T) {
		assert.Contains(t, text, "Total elapsed time: 959.00ms")
	})

	t.Run("tri-state outcomes render distinctly", func(t *testing.T) {
		assert.Contains(t, text, "true")
		assert.Contains(t, text, "false")
		assert.Contains(t, text, "unknown")
	})

	t.Run("expected percentage", func(t *testing.T) {
		assert.Contains(t, text, "42.13%")
	})
}

func TestStateReportFailuresOnly(t *testing.T) {
	full, err := StateReport(statePayload(), Options{})
	require.NoError(t, err)
	filtered, err := StateReport(statePayload(), Options{Filter: FilterFailuresOnly})
	require.NoError(t, err)

	t.Run("successful rows dropped, order preserved", func(t *testing.T) {
		assert.NotContains(t, filtered, "stateA")
		b := strings.Index(filtered, "stateB")
		c := strings.Index(filtered, "stateC")
		assert.True(t, b >= 0 && b < c)
	})

	t.Run("percentages keep the original denominator", func(t *testing.T) {
		percentages := regexp.MustCompile(`\d+\.\d\d%`)
		fullPercents := percentages.FindAllString(full, -1)
		filteredPercents := percentages.FindAllString(filtered, -1)
		require.Len(t, fullPercents, 3)
		require.Len(t, filteredPercents, 2)
		// stateB and stateC keep their share of the full 959ms run.
		assert.Equal(t, fullPercents[1], filteredPercents[0])
		assert.Equal(t, fullPercents[2], filteredPercents[1])
	})

	t.Run("footer keeps the original total", func(t *testing.T) {
		assert.Contains(t, filtered, "Total elapsed time: 959.00ms")
	})
}

func TestOrchestrationSummary(t *testing.T) {
	text, err := OrchestrationSummary(orchPayload(), nil, Options{})
	require.NoError(t, err)

	t.Run("titled Orchestration", func(t *testing.T) {
		assert.Contains(t, text, " Orchestration ")
	})

	t.Run("seconds footer by default", func(t *testing.T) {
		assert.Contains(t, text, "Total elapsed time: 20.37s")
	})

	t.Run("durations in seconds", func(t *testing.T) {
		assert.Contains(t, text, "5.13")
		assert.Contains(t, text, "Time(s)")
	})

	t.Run("failures only keeps the failed step", func(t *testing.T) {
		filtered, err := OrchestrationSummary(orchPayload(), nil, Options{Filter: FilterFailuresOnly})
		require.NoError(t, err)
		assert.Contains(t, filtered, "verify app")
		assert.NotContains(t, filtered, "sync grains")
		assert.Contains(t, filtered, "Total elapsed time: 20.37s")
	})
}

func TestOrchestrationSummaryDuplicateStepIDs(t *testing.T) {
	// Two steps sharing an extracted ID must keep distinct percentages;
	// a shared label would collapse their stats onto one entry.
	payload := map[string]any{
		"return": []any{
			map[string]any{
				"data": map[string]any{
					"master01": map[string]any{
						"salt_|-deploy_|-app.stage_|-function": map[string]any{
							"result": true, "duration": 900.0, "__run_num__": 0.0,
						},
						"cmd_|-deploy_|-app.verify_|-function": map[string]any{
							"result": true, "duration": 100.0, "__run_num__": 1.0,
						},
					},
				},
				"duration": 1000.0,
			},
		},
	}
	text, err := OrchestrationSummary(payload, nil, Options{})
	require.NoError(t, err)
	assert.Contains(t, text, "90.00%")
	assert.Contains(t, text, "10.00%")
}

func TestRenderDispatch(t *testing.T) {
	t.Run("local kind matches StateReport", func(t *testing.T) {
		direct, err := StateReport(statePayload(), Options{})
		require.NoError(t, err)
		dispatched, err := Render(normalize.ClientLocal, statePayload(), nil, Options{})
		require.NoError(t, err)
		assert.Equal(t, direct, dispatched)
	})

	t.Run("runner kind matches OrchestrationSummary", func(t *testing.T) {
		direct, err := OrchestrationSummary(orchPayload(), nil, Options{})
		require.NoError(t, err)
		dispatched, err := Render(normalize.ClientRunner, orchPayload(), nil, Options{})
		require.NoError(t, err)
		assert.Equal(t, direct, dispatched)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Render(normalize.ClientKind("wheel"), map[string]any{}, nil, Options{})
		assert.ErrorIs(t, err, models.ErrUnknownClientKind)
	})
}

func TestOptionsValidation(t *testing.T) {
	t.Run("auto glyphs rejected by the engine", func(t *testing.T) {
		_, err := StateReport(statePayload(), Options{Glyphs: render.GlyphsAuto})
		assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
	})

	t.Run("invalid time unit", func(t *testing.T) {
		_, err := StateReport(statePayload(), Options{TimeUnit: render.Unit("h")})
		assert.ErrorIs(t, err, models.ErrInvalidUnit)
	})

	t.Run("negative bar size", func(t *testing.T) {
		_, err := StateReport(statePayload(), Options{MaxBarSize: -3})
		assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
	})

	t.Run("malformed payload surfaces from the normalizer", func(t *testing.T) {
		payload := map[string]any{
			"minion01": map[string]any{
				"cmd_|-a_|-a_|-run": map[string]any{"duration": 1.0},
			},
		}
		_, err := StateReport(payload, Options{})
		assert.ErrorIs(t, err, models.ErrMalformedPayload)
	})
}
