package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"searchlens/internal/gsc"
	"searchlens/internal/periods"
	"searchlens/internal/pkg/async"
)

const defaultTopLimit = 10

// DimensionStat is one row of a top-dimension breakdown report.
type DimensionStat struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         Percent `json:"ctr"`
	Position    float64 `json:"position"`
}

var countries = gountries.New()

var titleCaser = cases.Title(language.English)

var supportedDimensions = map[string]bool{
	"page":    true,
	"query":   true,
	"country": true,
	"device":  true,
}

// DefaultTopDimensions returns the breakdowns a top report runs when the
// caller does not pick any.
func DefaultTopDimensions() []string {
	return []string{"page", "query", "country"}
}

// IsSupportedDimension reports whether a breakdown by dimension is available.
func IsSupportedDimension(dimension string) bool {
	return supportedDimensions[dimension]
}

// TopByDimension fetches the best-performing dimension values for one site
// and window, relying on the API's default clicks-descending ordering. Keys
// are resolved to display labels (country names, title-cased device types).
func TopByDimension(ctx context.Context, fetcher Fetcher, siteURL string, window periods.Window, dimension string, limit int64) ([]DimensionStat, error) {
	if !supportedDimensions[dimension] {
		return nil, periods.NewInvalidArgumentError(fmt.Sprintf("unsupported dimension: %s", dimension))
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}

	rows, err := fetcher.Query(ctx, gsc.Query{
		SiteURL:    siteURL,
		StartDate:  window.StartDate(),
		EndDate:    window.EndDate(),
		Dimensions: []string{dimension},
		RowLimit:   limit,
	})
	if err != nil {
		return nil, err
	}

	stats := make([]DimensionStat, 0, len(rows))
	for _, row := range rows {
		key := ""
		if len(row.Keys) > 0 {
			key = row.Keys[0]
		}
		stats = append(stats, DimensionStat{
			Key:         key,
			Label:       labelForDimension(dimension, key),
			Clicks:      FormatCount(row.Clicks),
			Impressions: FormatCount(row.Impressions),
			CTR:         NewPercent(row.CTR),
			Position:    RoundPosition(row.Position),
		})
	}
	return stats, nil
}

// TopReport runs breakdowns for several dimensions concurrently through the
// worker pool. A failed dimension comes back empty; the report as a whole
// still succeeds.
func TopReport(ctx context.Context, fetcher Fetcher, logger *slog.Logger, siteURL string, window periods.Window, dimensions []string, limit int64) map[string][]DimensionStat {
	if len(dimensions) == 0 {
		dimensions = DefaultTopDimensions()
	}

	tasks := make([]async.Task[[]DimensionStat], 0, len(dimensions))
	for _, dimension := range dimensions {
		tasks = append(tasks, async.Task[[]DimensionStat]{
			Name: dimension,
			Execute: func(ctx context.Context) ([]DimensionStat, error) {
				return TopByDimension(ctx, fetcher, siteURL, window, dimension, limit)
			},
		})
	}

	pool := async.NewPool[[]DimensionStat](len(tasks))
	results := pool.Execute(ctx, tasks)

	report := make(map[string][]DimensionStat, len(results))
	for dimension, result := range results {
		if result.Err != nil {
			logger.Warn("Top report dimension failed",
				slog.String("dimension", dimension),
				slog.Any("error", result.Err))
			report[dimension] = []DimensionStat{}
			continue
		}
		report[dimension] = result.Data
	}
	return report
}

// labelForDimension resolves a raw dimension key to its display label. The
// analytics source reports countries as ISO alpha-3 codes and devices in
// upper case.
func labelForDimension(dimension, key string) string {
	switch dimension {
	case "country":
		country, err := countries.FindCountryByAlpha(strings.ToUpper(key))
		if err != nil {
			return strings.ToUpper(key)
		}
		return country.Name.Common
	case "device":
		return titleCaser.String(strings.ToLower(key))
	default:
		return key
	}
}
