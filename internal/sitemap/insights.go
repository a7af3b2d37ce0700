package sitemap

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"time"
)

// lastModLayouts are the W3C datetime forms sitemaps use for <lastmod>.
var lastModLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02",
}

// DirectoryCount is one top-level path segment and how many URLs live under
// it.
type DirectoryCount struct {
	Directory string `json:"directory"`
	Count     int    `json:"count"`
}

// BuildExportTable flattens sitemap entries for CSV export, entry order
// preserved, one row per URL plus a header row.
func BuildExportTable(entries []Entry) [][]string {
	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, []string{"loc", "lastmod", "changefreq", "priority"})
	for _, entry := range entries {
		rows = append(rows, []string{entry.Loc, entry.LastMod, entry.ChangeFreq, entry.Priority})
	}
	return rows
}

// Insights summarizes a sitemap's structure. LastModCoverage is the share of
// URLs carrying a <lastmod>, in percent rounded to 1 decimal.
type Insights struct {
	TotalURLs        int              `json:"total_urls"`
	WithLastMod      int              `json:"with_lastmod"`
	LastModCoverage  float64          `json:"lastmod_coverage"`
	NewestLastMod    string           `json:"newest_lastmod,omitempty"`
	ChangeFreqCounts map[string]int   `json:"changefreq_counts,omitempty"`
	PriorityCounts   map[string]int   `json:"priority_counts,omitempty"`
	TopDirectories   []DirectoryCount `json:"top_directories,omitempty"`
	Domains          map[string]int   `json:"domains,omitempty"`
}

// Analyze derives insights from sitemap entries. Unparseable lastmod values
// still count toward coverage; they just never win "newest".
func Analyze(entries []Entry) *Insights {
	insights := &Insights{
		TotalURLs:        len(entries),
		ChangeFreqCounts: make(map[string]int),
		PriorityCounts:   make(map[string]int),
		Domains:          make(map[string]int),
	}

	var newest time.Time
	directories := make(map[string]int)

	for _, entry := range entries {
		if lastMod := strings.TrimSpace(entry.LastMod); lastMod != "" {
			insights.WithLastMod++
			if parsed, ok := parseLastMod(lastMod); ok && parsed.After(newest) {
				newest = parsed
				insights.NewestLastMod = lastMod
			}
		}

		if freq := strings.ToLower(strings.TrimSpace(entry.ChangeFreq)); freq != "" {
			insights.ChangeFreqCounts[freq]++
		}
		if priority := strings.TrimSpace(entry.Priority); priority != "" {
			insights.PriorityCounts[priority]++
		}

		if parsed, err := url.Parse(strings.TrimSpace(entry.Loc)); err == nil && parsed.Host != "" {
			insights.Domains[parsed.Host]++
			directories[topDirectory(parsed.EscapedPath())]++
		}
	}

	if insights.TotalURLs > 0 {
		coverage := float64(insights.WithLastMod) / float64(insights.TotalURLs) * 100
		insights.LastModCoverage = math.Round(coverage*10) / 10
	}

	insights.TopDirectories = topDirectories(directories, 10)
	return insights
}

func parseLastMod(value string) (time.Time, bool) {
	for _, layout := range lastModLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// topDirectory maps a URL path to its first segment, "/" for root-level
// pages.
func topDirectory(path string) string {
	segments := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)
	if len(segments) == 2 && segments[0] != "" {
		return "/" + segments[0]
	}
	return "/"
}

func topDirectories(counts map[string]int, limit int) []DirectoryCount {
	result := make([]DirectoryCount, 0, len(counts))
	for directory, count := range counts {
		result = append(result, DirectoryCount{Directory: directory, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Directory < result[j].Directory
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
