package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// BuildMainTable flattens the wide table into CSV-ready rows: a header plus
// one row per page. Metric columns are grouped per period in window order
// (clicks_Period_1, ..., position_Period_1, clicks_Period_2, ...); cells
// with no data stay blank, never zero.
func BuildMainTable(table *WideTable) [][]string {
	header := []string{"page"}
	for _, label := range table.Labels {
		for _, metric := range AllMetrics() {
			header = append(header, fmt.Sprintf("%s_%s", metric, label))
		}
	}

	rows := [][]string{header}
	for _, page := range table.Pages {
		row := []string{page.URL}
		for i := range table.Labels {
			cell := page.Periods[i]
			for _, metric := range AllMetrics() {
				row = append(row, formatCell(cell, metric))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildSummaryTable flattens summary statistics into CSV-ready rows, one row
// per metric and period.
func BuildSummaryTable(summary []SummaryStat) [][]string {
	rows := [][]string{{"metric", "period", "total", "avg", "min", "max"}}
	for _, stat := range summary {
		rows = append(rows, []string{
			string(stat.Metric),
			stat.Period,
			formatFloat(stat.Total),
			formatFloat(stat.Avg),
			formatFloat(stat.Min),
			formatFloat(stat.Max),
		})
	}
	return rows
}

// WriteCSV serializes rows as UTF-8 CSV: header row included, no index
// column.
func WriteCSV(w io.Writer, rows [][]string) error {
	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
		return fmt.Errorf("error writing csv: %w", err)
	}
	return nil
}

func formatCell(cell *PageMetrics, metric Metric) string {
	if cell == nil {
		return ""
	}
	switch metric {
	case MetricClicks:
		return strconv.FormatInt(cell.Clicks, 10)
	case MetricImpressions:
		return strconv.FormatInt(cell.Impressions, 10)
	case MetricCTR:
		return cell.CTR.String()
	case MetricPosition:
		return formatFloat(cell.Position)
	}
	return ""
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
