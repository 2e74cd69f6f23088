package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/saltview/internal/models"
	"github.com/harrison/saltview/internal/stats"
)

func testColumns() []Column {
	return []Column{
		{Header: "State", Align: AlignLeft, Extract: func(r models.ReportRow, _ stats.Stats) string {
			return r.Label
		}},
		{Header: "Plot", Align: AlignLeft, Extract: func(_ models.ReportRow, st stats.Stats) string {
			return strings.Repeat("#", st.BarLength)
		}},
		{Header: "Result", Align: AlignLeft, ColorByOutcome: true, Extract: func(r models.ReportRow, _ stats.Stats) string {
			return r.Outcome.String()
		}},
	}
}

func testReport() models.Report {
	return models.Report{
		GroupLabel: "minion01",
		Rows: []models.ReportRow{
			{Label: "stateA", DurationMS: 404, Outcome: models.OutcomeSuccess},
			{Label: "stateB", DurationMS: 284, Outcome: models.OutcomeFailure},
			{Label: "stateC", DurationMS: 271, Outcome: models.OutcomeUnknown},
		},
		TotalDurationMS: 959,
	}
}

func TestTableLayout(t *testing.T) {
	text, err := Table("minion01", testColumns(), testReport(), Options{Glyphs: GlyphsSafe})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 8)

	t.Run("every line has the same visible width", func(t *testing.T) {
		width := visibleWidth(lines[0])
		for i, line := range lines {
			assert.Equal(t, width, visibleWidth(line), "line %d: %q", i, line)
		}
	})

	t.Run("title embedded in the top border", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(lines[0], "+"))
		assert.Contains(t, lines[0], " minion01 ")
	})

	t.Run("header row lists every column", func(t *testing.T) {
		for _, header := range []string{"State", "Plot", "Result"} {
			assert.Contains(t, lines[1], header)
		}
	})

	t.Run("footer reports total elapsed time", func(t *testing.T) {
		assert.Contains(t, text, "Total elapsed time: 959.00ms")
	})

	t.Run("column width fits every cell", func(t *testing.T) {
		// stateB's cell is wider than the header "State"; the header
		// line must be padded out to match the data lines.
		headerCells := strings.Split(strings.Trim(lines[1], "|"), "|")
		dataCells := strings.Split(strings.Trim(lines[3], "|"), "|")
		require.Equal(t, len(headerCells), len(dataCells))
		for i := range headerCells {
			assert.Equal(t, visibleWidth(headerCells[i]), visibleWidth(dataCells[i]))
		}
	})
}

func TestTableGlyphSets(t *testing.T) {
	t.Run("rich uses box drawing", func(t *testing.T) {
		text, err := Table("minion01", testColumns(), testReport(), Options{Glyphs: GlyphsRich})
		require.NoError(t, err)
		assert.Contains(t, text, "─")
		assert.Contains(t, text, "│")
		assert.NotContains(t, text, "+")
	})

	t.Run("safe is pure ASCII", func(t *testing.T) {
		text, err := Table("minion01", testColumns(), testReport(), Options{Glyphs: GlyphsSafe})
		require.NoError(t, err)
		for _, r := range text {
			assert.Less(t, int(r), 128, "non-ASCII rune %q", r)
		}
	})

	t.Run("auto is not renderable", func(t *testing.T) {
		_, err := Table("minion01", testColumns(), testReport(), Options{Glyphs: GlyphsAuto})
		assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
	})
}

func TestTableColorize(t *testing.T) {
	plain, err := Table("minion01", testColumns(), testReport(), Options{Glyphs: GlyphsSafe})
	require.NoError(t, err)
	colored, err := Table("minion01", testColumns(), testReport(), Options{Glyphs: GlyphsSafe, Colorize: true})
	require.NoError(t, err)

	t.Run("outcome column carries ANSI codes", func(t *testing.T) {
		assert.Contains(t, colored, "\x1b[32m")
		assert.Contains(t, colored, "\x1b[31m")
		assert.Contains(t, colored, "\x1b[33m")
	})

	t.Run("color codes never change the layout", func(t *testing.T) {
		assert.Equal(t, plain, ansiPattern.ReplaceAllString(colored, ""))
	})
}

func TestTableNested(t *testing.T) {
	report := models.Report{
		GroupLabel: "Orchestration",
		Rows: []models.ReportRow{
			{
				Label:      "deploy web",
				DurationMS: 2000,
				Outcome:    models.OutcomeSuccess,
				Children: []models.ReportRow{
					{Label: "install nginx", DurationMS: 1200, Outcome: models.OutcomeSuccess},
					{Label: "start nginx", DurationMS: 300, Outcome: models.OutcomeSuccess},
				},
			},
			{Label: "verify", DurationMS: 500, Outcome: models.OutcomeFailure},
		},
		TotalDurationMS: 2500,
	}

	text, err := Table("Orchestration", testColumns(), report, Options{Glyphs: GlyphsSafe})
	require.NoError(t, err)

	t.Run("sub-table follows its parent row indented", func(t *testing.T) {
		lines := strings.Split(text, "\n")
		parent := -1
		for i, line := range lines {
			if strings.Contains(line, "deploy web") && !strings.Contains(line, "+") {
				parent = i
				break
			}
		}
		require.GreaterOrEqual(t, parent, 0)
		assert.True(t, strings.HasPrefix(lines[parent+1], "  +"), "expected indented sub-table, got %q", lines[parent+1])
		assert.Contains(t, lines[parent+1], " deploy web ")
	})

	t.Run("sub-table rows are present", func(t *testing.T) {
		assert.Contains(t, text, "install nginx")
		assert.Contains(t, text, "start nginx")
	})

	t.Run("sub-table percentage base is its own sum", func(t *testing.T) {
		// 1200 of 1500 is 80%: a full 24 of 30 bar glyphs.
		assert.Contains(t, text, strings.Repeat("#", 24))
	})

	t.Run("depth ceiling", func(t *testing.T) {
		_, err := Table("Orchestration", testColumns(), report, Options{Glyphs: GlyphsSafe, MaxDepth: 1})
		assert.ErrorIs(t, err, models.ErrReportTooDeep)
	})
}

func TestTableHumanizedFooter(t *testing.T) {
	// Without an explicit unit the footer scales itself to the total.
	tests := []struct {
		name    string
		totalMS float64
		want    string
	}{
		{name: "milliseconds below a second", totalMS: 959, want: "Total elapsed time: 959.00ms"},
		{name: "seconds below a minute", totalMS: 20370, want: "Total elapsed time: 20.37s"},
		{name: "minutes above a minute", totalMS: 120001, want: "Total elapsed time: 2.00min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := models.Report{
				Rows:            []models.ReportRow{{Label: "a", DurationMS: tt.totalMS, Outcome: models.OutcomeSuccess}},
				TotalDurationMS: tt.totalMS,
			}
			text, err := Table("minion01", testColumns(), report, Options{Glyphs: GlyphsSafe})
			require.NoError(t, err)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestTableInvalidOptions(t *testing.T) {
	t.Run("negative bar size", func(t *testing.T) {
		_, err := Table("minion01", testColumns(), testReport(), Options{Glyphs: GlyphsSafe, MaxBarSize: -1})
		assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
	})

	t.Run("invalid time unit", func(t *testing.T) {
		_, err := Table("minion01", testColumns(), testReport(), Options{Glyphs: GlyphsSafe, TimeUnit: Unit("min")})
		assert.ErrorIs(t, err, models.ErrInvalidUnit)
	})

	t.Run("no columns", func(t *testing.T) {
		_, err := Table("minion01", nil, testReport(), Options{Glyphs: GlyphsSafe})
		assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
	})

	t.Run("seconds footer", func(t *testing.T) {
		text, err := Table("minion01", testColumns(), models.Report{
			Rows:            []models.ReportRow{{Label: "a", DurationMS: 20370, Outcome: models.OutcomeSuccess}},
			TotalDurationMS: 20370,
		}, Options{Glyphs: GlyphsSafe, TimeUnit: UnitSeconds})
		require.NoError(t, err)
		assert.Contains(t, text, "Total elapsed time: 20.37s")
	})
}
