package analytics

import (
	"context"
	"errors"
	"log/slog"

	"searchlens/internal/gsc"
	"searchlens/internal/periods"
)

// Fetcher is the slice of the Search Console client the aggregator consumes.
type Fetcher interface {
	Query(ctx context.Context, q gsc.Query) ([]gsc.Row, error)
}

// ErrNoData signals that every (url, period) pair came back empty or failed.
// Distinct from a partial result, which is returned without error.
var ErrNoData = errors.New("no search analytics data found for any url and period")

// Aggregate fetches metrics for every (url, window) pair and merges them
// into one wide table.
//
// The pass is strictly sequential: URLs outer, windows inner, one request at
// a time. A pair with no traffic contributes nothing (nil cell, never a zero
// row). A failed fetch is logged and treated the same way; a single pair can
// not abort the report. Identical inputs against a deterministic fetcher
// always produce identical tables.
func Aggregate(ctx context.Context, fetcher Fetcher, logger *slog.Logger, siteURL string, urls []string, windows []periods.Window) (*WideTable, error) {
	if len(urls) == 0 {
		return nil, periods.NewInvalidArgumentError("url list must not be empty")
	}
	if len(windows) == 0 {
		return nil, periods.NewInvalidArgumentError("window list must not be empty")
	}

	table := NewWideTable(windows)
	for _, url := range urls {
		for i, window := range windows {
			rows, err := fetcher.Query(ctx, gsc.Query{
				SiteURL:    siteURL,
				StartDate:  window.StartDate(),
				EndDate:    window.EndDate(),
				Dimensions: []string{"page"},
				PageFilter: url,
			})
			if err != nil {
				logger.Warn("Search analytics fetch failed, treating as missing data",
					slog.String("url", url),
					slog.String("period", table.Labels[i]),
					slog.Any("error", err))
				continue
			}
			if len(rows) == 0 {
				continue
			}
			// The page filter should make rows unique, but the API does not
			// guarantee it: first row wins.
			table.MergeCell(url, i, formatRow(rows[0]))
		}
	}

	if table.Empty() {
		return table, ErrNoData
	}
	return table, nil
}
