// Package analytics builds multi-period search performance reports from
// Search Console query data.
//
// The package is organized into focused modules:
//   - analytics.go: wide table model and metric definitions
//   - aggregate.go: per-URL, per-period fetching and merging
//   - format.go: metric value formatting (counts, positions, CTR percentages)
//   - comparison.go: summary statistics and period-over-period changes
//   - export.go: CSV-ready flattening of report tables
//   - toplists.go: top pages/queries/countries breakdown reports
package analytics

import (
	"searchlens/internal/periods"
)

// Metric identifies one of the search performance measures.
type Metric string

const (
	MetricClicks      Metric = "clicks"
	MetricImpressions Metric = "impressions"
	MetricCTR         Metric = "ctr"
	MetricPosition    Metric = "position"
)

// AllMetrics returns the metrics in canonical column order.
func AllMetrics() []Metric {
	return []Metric{MetricClicks, MetricImpressions, MetricCTR, MetricPosition}
}

// PageMetrics is one formatted (page, period) cell.
type PageMetrics struct {
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         Percent `json:"ctr"`
	Position    float64 `json:"position"`
}

// PageRow holds one page's metrics across all report periods. Periods is
// indexed by window position; a nil entry means the page had no data in that
// period, which is different from zeros.
type PageRow struct {
	URL     string         `json:"url"`
	Periods []*PageMetrics `json:"periods"`
}

// WideTable is the merged report: one row per page seen in any period, one
// cell per (page, period) pair. Rows keep first-seen page order so repeated
// runs over the same input produce identical tables.
type WideTable struct {
	Labels  []string
	Windows []periods.Window
	Pages   []*PageRow

	index map[string]*PageRow
}

// NewWideTable creates an empty table for the given report windows.
func NewWideTable(windows []periods.Window) *WideTable {
	return &WideTable{
		Labels:  periods.PeriodLabels(len(windows)),
		Windows: windows,
		index:   make(map[string]*PageRow),
	}
}

// MergeCell records a cell for (url, window). The first value seen for a
// cell wins; later values are discarded. windowIdx must be a valid window
// position.
func (t *WideTable) MergeCell(url string, windowIdx int, cell *PageMetrics) {
	row, ok := t.index[url]
	if !ok {
		row = &PageRow{URL: url, Periods: make([]*PageMetrics, len(t.Windows))}
		t.index[url] = row
		t.Pages = append(t.Pages, row)
	}
	if row.Periods[windowIdx] == nil {
		row.Periods[windowIdx] = cell
	}
}

// Page returns the row for url, nil when the url never produced data.
func (t *WideTable) Page(url string) *PageRow {
	return t.index[url]
}

// Empty reports whether no (url, window) pair produced data.
func (t *WideTable) Empty() bool {
	return len(t.Pages) == 0
}
