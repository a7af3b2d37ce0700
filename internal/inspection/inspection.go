// Package inspection runs URL index inspections in bounded parallel batches
// and shapes the raw API payloads for display and export.
package inspection

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"google.golang.org/api/searchconsole/v1"

	"searchlens/internal/periods"
	"searchlens/internal/pkg/async"
)

// DefaultConcurrency bounds in-flight inspection calls when the caller does
// not pick a limit.
const DefaultConcurrency = 5

// verdictNotChecked marks sections the API did not evaluate for a URL.
const verdictNotChecked = "NOT_CHECKED"

// Inspector is the slice of the Search Console client the fan-out consumes.
type Inspector interface {
	Inspect(ctx context.Context, siteURL, pageURL string) (*searchconsole.UrlInspectionResult, error)
}

// Result is one URL's inspection outcome. A non-empty Error means the call
// for this URL failed; the other fields are then empty.
type Result struct {
	URL                string   `json:"url"`
	CoverageVerdict    string   `json:"coverage_verdict"`
	MobileVerdict      string   `json:"mobile_verdict"`
	RichResultsVerdict string   `json:"rich_results_verdict"`
	CoverageState      string   `json:"coverage_state"`
	IndexingState      string   `json:"indexing_state"`
	RobotsTxtState     string   `json:"robots_txt_state"`
	PageFetchState     string   `json:"page_fetch_state"`
	LastCrawlTime      string   `json:"last_crawl_time"`
	MobileIssues       []string `json:"mobile_issues,omitempty"`
	RichResultTypes    []string `json:"rich_result_types,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// Failed reports whether this URL's inspection call failed.
func (r Result) Failed() bool {
	return r.Error != ""
}

// InspectAll inspects every URL through a bounded worker pool and returns a
// result keyed by URL.
//
// One URL's failure becomes an error marker for that URL only; it never
// cancels the others. The call returns only after every URL has either
// succeeded or failed, so the map always contains every input URL. Pass a
// deadline context to bound the total wait; URLs left unprocessed at
// cancellation come back as error markers too.
func InspectAll(ctx context.Context, inspector Inspector, logger *slog.Logger, siteURL string, urls []string, maxConcurrency int) (map[string]Result, error) {
	urls = dedupe(urls)
	if len(urls) == 0 {
		return nil, periods.NewInvalidArgumentError("url list must not be empty")
	}
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultConcurrency
	}

	tasks := make([]async.Task[Result], 0, len(urls))
	for _, pageURL := range urls {
		tasks = append(tasks, async.Task[Result]{
			Name: pageURL,
			Execute: func(ctx context.Context) (Result, error) {
				raw, err := inspector.Inspect(ctx, siteURL, pageURL)
				if err != nil {
					return Result{}, err
				}
				return format(pageURL, raw), nil
			},
		})
	}

	pool := async.NewPool[Result](maxConcurrency)
	results := pool.Execute(ctx, tasks)

	out := make(map[string]Result, len(results))
	for pageURL, result := range results {
		if result.Err != nil {
			logger.Warn("URL inspection failed",
				slog.String("url", pageURL),
				slog.Any("error", result.Err))
			out[pageURL] = Result{URL: pageURL, Error: result.Err.Error()}
			continue
		}
		out[pageURL] = result.Data
	}
	return out, nil
}

// format shapes a raw inspection payload. Absent sections are tolerated: the
// verdict falls back to NOT_CHECKED and the detail fields stay empty.
func format(pageURL string, raw *searchconsole.UrlInspectionResult) Result {
	result := Result{
		URL:                pageURL,
		CoverageVerdict:    verdictNotChecked,
		MobileVerdict:      verdictNotChecked,
		RichResultsVerdict: verdictNotChecked,
	}
	if raw == nil {
		return result
	}

	if idx := raw.IndexStatusResult; idx != nil {
		result.CoverageVerdict = orNotChecked(idx.Verdict)
		result.CoverageState = idx.CoverageState
		result.IndexingState = idx.IndexingState
		result.RobotsTxtState = idx.RobotsTxtState
		result.PageFetchState = idx.PageFetchState
		result.LastCrawlTime = idx.LastCrawlTime
	}

	if mobile := raw.MobileUsabilityResult; mobile != nil {
		result.MobileVerdict = orNotChecked(mobile.Verdict)
		for _, issue := range mobile.Issues {
			if issue != nil && issue.IssueType != "" {
				result.MobileIssues = append(result.MobileIssues, issue.IssueType)
			}
		}
	}

	if rich := raw.RichResultsResult; rich != nil {
		result.RichResultsVerdict = orNotChecked(rich.Verdict)
		for _, item := range rich.DetectedItems {
			if item != nil && item.RichResultType != "" {
				result.RichResultTypes = append(result.RichResultTypes, item.RichResultType)
			}
		}
	}

	return result
}

func orNotChecked(verdict string) string {
	if verdict == "" {
		return verdictNotChecked
	}
	return verdict
}

// BuildExportTable flattens inspection results into CSV-ready rows sorted by
// URL so exports are stable regardless of completion order.
func BuildExportTable(results map[string]Result) [][]string {
	urls := make([]string, 0, len(results))
	for pageURL := range results {
		urls = append(urls, pageURL)
	}
	sort.Strings(urls)

	rows := [][]string{{
		"url",
		"coverage_verdict", "coverage_state", "indexing_state",
		"robots_txt_state", "page_fetch_state", "last_crawl_time",
		"mobile_verdict", "mobile_issues",
		"rich_results_verdict", "rich_result_types",
		"error",
	}}
	for _, pageURL := range urls {
		r := results[pageURL]
		rows = append(rows, []string{
			r.URL,
			r.CoverageVerdict, r.CoverageState, r.IndexingState,
			r.RobotsTxtState, r.PageFetchState, r.LastCrawlTime,
			r.MobileVerdict, strings.Join(r.MobileIssues, "; "),
			r.RichResultsVerdict, strings.Join(r.RichResultTypes, "; "),
			r.Error,
		})
	}
	return rows
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
