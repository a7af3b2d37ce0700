package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/analytics"
)

func cell(clicks, impressions int64, ctrFraction, position float64) *analytics.PageMetrics {
	return &analytics.PageMetrics{
		Clicks:      clicks,
		Impressions: impressions,
		CTR:         analytics.NewPercent(ctrFraction),
		Position:    position,
	}
}

// threeRowTable is the fixed fixture for summary assertions: three pages,
// one period, known column values.
func threeRowTable(t *testing.T) *analytics.WideTable {
	t.Helper()

	table := analytics.NewWideTable(testWindows(1))
	table.MergeCell("https://ex.com/a", 0, cell(150, 3000, 0.10, 1.0))
	table.MergeCell("https://ex.com/b", 0, cell(100, 2000, 0.20, 2.0))
	table.MergeCell("https://ex.com/c", 0, cell(50, 1000, 0.30, 3.0))
	return table
}

func findStat(t *testing.T, summary []analytics.SummaryStat, metric analytics.Metric, period string) analytics.SummaryStat {
	t.Helper()

	for _, stat := range summary {
		if stat.Metric == metric && stat.Period == period {
			return stat
		}
	}
	t.Fatalf("no summary stat for %s %s", metric, period)
	return analytics.SummaryStat{}
}

func TestSummarizeTotalsSumCountsAndAverageRates(t *testing.T) {
	summary := analytics.Summarize(threeRowTable(t))

	clicks := findStat(t, summary, analytics.MetricClicks, "Period_1")
	assert.Equal(t, 300.0, clicks.Total, "count metrics total by sum")
	assert.Equal(t, 100.0, clicks.Avg)
	assert.Equal(t, 50.0, clicks.Min)
	assert.Equal(t, 150.0, clicks.Max)
	assert.Equal(t, 3, clicks.Pages)

	impressions := findStat(t, summary, analytics.MetricImpressions, "Period_1")
	assert.Equal(t, 6000.0, impressions.Total)

	ctr := findStat(t, summary, analytics.MetricCTR, "Period_1")
	assert.Equal(t, 20.0, ctr.Total, "rate metrics substitute the mean for the total")
	assert.Equal(t, 20.0, ctr.Avg)
	assert.Equal(t, 10.0, ctr.Min)
	assert.Equal(t, 30.0, ctr.Max)

	position := findStat(t, summary, analytics.MetricPosition, "Period_1")
	assert.Equal(t, 2.0, position.Total)
	assert.Equal(t, 2.0, position.Avg)
}

func TestSummarizeIgnoresMissingCells(t *testing.T) {
	table := analytics.NewWideTable(testWindows(2))
	table.MergeCell("https://ex.com/a", 0, cell(10, 100, 0.1, 1.0))
	table.MergeCell("https://ex.com/b", 0, cell(30, 300, 0.1, 3.0))
	table.MergeCell("https://ex.com/b", 1, cell(40, 400, 0.1, 4.0))

	summary := analytics.Summarize(table)

	first := findStat(t, summary, analytics.MetricClicks, "Period_1")
	assert.Equal(t, 2, first.Pages)
	assert.Equal(t, 20.0, first.Avg, "averages cover populated cells only, missing cells never dilute them")

	second := findStat(t, summary, analytics.MetricClicks, "Period_2")
	assert.Equal(t, 1, second.Pages)
	assert.Equal(t, 40.0, second.Total)
}

func TestSummarizeOmitsEmptyColumns(t *testing.T) {
	table := analytics.NewWideTable(testWindows(2))
	table.MergeCell("https://ex.com/a", 0, cell(10, 100, 0.1, 1.0))

	summary := analytics.Summarize(table)

	for _, stat := range summary {
		assert.Equal(t, "Period_1", stat.Period, "columns with no data produce no stats")
	}
	assert.Len(t, summary, 4)
}

func TestChangesBetweenAdjacentPeriods(t *testing.T) {
	table := analytics.NewWideTable(testWindows(3))
	table.MergeCell("https://ex.com/a", 0, cell(150, 1500, 0.10, 2.0))
	table.MergeCell("https://ex.com/a", 1, cell(100, 1000, 0.20, 4.0))
	table.MergeCell("https://ex.com/a", 2, cell(150, 3000, 0.40, 8.0))

	changes := analytics.Changes(table)

	// 1 page x 4 metrics x 2 adjacent pairs
	require.Len(t, changes, 8)
	for _, change := range changes {
		assert.Equal(t, "https://ex.com/a", change.URL)
	}

	byKey := make(map[string]analytics.ChangeRow)
	for _, change := range changes {
		byKey[string(change.Metric)+"|"+change.To] = change
	}

	clicks12 := byKey["clicks|Period_1"]
	assert.Equal(t, "Period_2", clicks12.From)
	require.NotNil(t, clicks12.Change)
	assert.Equal(t, 50.0, *clicks12.Change)

	clicks23 := byKey["clicks|Period_2"]
	assert.Equal(t, "Period_3", clicks23.From)
	require.NotNil(t, clicks23.Change)
	assert.Equal(t, -33.3, *clicks23.Change)

	ctr12 := byKey["ctr|Period_1"]
	require.NotNil(t, ctr12.Change)
	assert.Equal(t, -50.0, *ctr12.Change, "ctr changes use the numeric points, never the display string")

	position12 := byKey["position|Period_1"]
	require.NotNil(t, position12.Change)
	assert.Equal(t, -50.0, *position12.Change)
}

func TestChangesUndefinedWithoutComparableValue(t *testing.T) {
	table := analytics.NewWideTable(testWindows(2))
	// Previous period has zero clicks
	table.MergeCell("https://ex.com/zero", 0, cell(10, 100, 0.1, 1.0))
	table.MergeCell("https://ex.com/zero", 1, cell(0, 100, 0.1, 1.0))
	// Previous period missing entirely
	table.MergeCell("https://ex.com/gap", 0, cell(10, 100, 0.1, 1.0))

	changes := analytics.Changes(table)

	for _, change := range changes {
		if change.Metric != analytics.MetricClicks {
			continue
		}
		switch change.URL {
		case "https://ex.com/zero":
			assert.Nil(t, change.Change, "division by a zero previous value is undefined, not 0 or Inf")
		case "https://ex.com/gap":
			assert.Nil(t, change.Change, "a missing previous cell yields no comparison")
		}
	}

	// The undefined comparisons are still present as explicit rows
	count := 0
	for _, change := range changes {
		if change.URL == "https://ex.com/gap" {
			count++
		}
	}
	assert.Equal(t, 4, count)
}

func TestChangesSinglePeriodHasNoPairs(t *testing.T) {
	table := analytics.NewWideTable(testWindows(1))
	table.MergeCell("https://ex.com/a", 0, cell(10, 100, 0.1, 1.0))

	assert.Empty(t, analytics.Changes(table))
}

func TestMergeCellKeepsFirstValue(t *testing.T) {
	table := analytics.NewWideTable(testWindows(1))
	table.MergeCell("https://ex.com/a", 0, cell(1, 10, 0.1, 1.0))
	table.MergeCell("https://ex.com/a", 0, cell(9, 90, 0.9, 9.0))

	assert.Equal(t, int64(1), table.Page("https://ex.com/a").Periods[0].Clicks)
	assert.Len(t, table.Pages, 1)
}
