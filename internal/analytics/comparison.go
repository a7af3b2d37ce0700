package analytics

// SummaryStat aggregates one metric over one period's populated cells.
// Total is the sum for count metrics; for the rate metrics (ctr, position) a
// sum is meaningless, so Total carries the mean instead. CTR values are in
// percentage points.
type SummaryStat struct {
	Metric Metric  `json:"metric"`
	Period string  `json:"period"`
	Total  float64 `json:"total"`
	Avg    float64 `json:"avg"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Pages  int     `json:"pages"`
}

// ChangeRow is the percentage change for one page and metric between two
// adjacent periods. Change is nil when no comparison is possible.
type ChangeRow struct {
	URL    string   `json:"url"`
	Metric Metric   `json:"metric"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Change *float64 `json:"change"`
}

// Summarize computes per-metric, per-period statistics over populated cells
// only, so pages without data in a period do not dilute the averages.
// Periods where a metric has no populated cells are omitted. Results are
// ordered metric-major in canonical metric order.
func Summarize(table *WideTable) []SummaryStat {
	var summary []SummaryStat
	for _, metric := range AllMetrics() {
		for i, label := range table.Labels {
			values := columnValues(table, metric, i)
			if len(values) == 0 {
				continue
			}

			stat := SummaryStat{
				Metric: metric,
				Period: label,
				Min:    values[0],
				Max:    values[0],
				Pages:  len(values),
			}
			sum := 0.0
			for _, v := range values {
				sum += v
				if v < stat.Min {
					stat.Min = v
				}
				if v > stat.Max {
					stat.Max = v
				}
			}
			stat.Avg = sum / float64(len(values))
			if isRateMetric(metric) {
				stat.Total = stat.Avg
			} else {
				stat.Total = sum
			}
			summary = append(summary, stat)
		}
	}
	return summary
}

// Changes computes percentage changes between adjacent periods only
// (Period_1 vs Period_2, Period_2 vs Period_3, ...), one row per page,
// metric and pair. Rows whose comparison is undefined carry a nil Change so
// the gap stays visible.
func Changes(table *WideTable) []ChangeRow {
	var changes []ChangeRow
	for _, page := range table.Pages {
		for _, metric := range AllMetrics() {
			for i := 0; i+1 < len(table.Labels); i++ {
				changes = append(changes, ChangeRow{
					URL:    page.URL,
					Metric: metric,
					From:   table.Labels[i+1],
					To:     table.Labels[i],
					Change: percentageChange(page.Periods[i], page.Periods[i+1], metric),
				})
			}
		}
	}
	return changes
}

// percentageChange returns (current - previous) / previous * 100 rounded to
// 1 decimal. A missing cell on either side, or a previous value of zero,
// yields nil rather than zero or infinity.
func percentageChange(current, previous *PageMetrics, metric Metric) *float64 {
	if current == nil || previous == nil {
		return nil
	}
	prev := metricValue(previous, metric)
	if prev == 0 {
		return nil
	}
	change := roundTo((metricValue(current, metric)-prev)/prev*100, 1)
	return &change
}

func columnValues(table *WideTable, metric Metric, windowIdx int) []float64 {
	var values []float64
	for _, page := range table.Pages {
		if cell := page.Periods[windowIdx]; cell != nil {
			values = append(values, metricValue(cell, metric))
		}
	}
	return values
}

func metricValue(cell *PageMetrics, metric Metric) float64 {
	switch metric {
	case MetricClicks:
		return float64(cell.Clicks)
	case MetricImpressions:
		return float64(cell.Impressions)
	case MetricCTR:
		return cell.CTR.Points()
	case MetricPosition:
		return cell.Position
	}
	return 0
}

func isRateMetric(metric Metric) bool {
	return metric == MetricCTR || metric == MetricPosition
}
