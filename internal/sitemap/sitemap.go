// Package sitemap fetches XML sitemaps over HTTP and derives structural
// insights from their entries.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"searchlens/internal/config"
	"searchlens/internal/periods"
)

// maxIndexDepth bounds sitemap index recursion. Indexes nesting deeper than
// this are skipped rather than followed.
const maxIndexDepth = 3

// maxSitemapBytes caps one sitemap document read. The protocol caps
// uncompressed sitemaps at 50MB.
const maxSitemapBytes = 50 * 1024 * 1024

// Entry is one <url> element of a sitemap.
type Entry struct {
	Loc        string `xml:"loc" json:"loc"`
	LastMod    string `xml:"lastmod" json:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq" json:"changefreq,omitempty"`
	Priority   string `xml:"priority" json:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []Entry  `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// FetchError represents a sitemap that could not be downloaded or parsed.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("sitemap fetch failed for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher downloads sitemaps with a bounded per-request timeout.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

func NewFetcher(cfg *config.Config, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: cfg.SitemapTimeout()},
		logger: logger,
	}
}

// NewFetcherWithClient is used by tests to inject a scripted HTTP client.
func NewFetcherWithClient(client *http.Client, logger *slog.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

// Fetch downloads a sitemap and returns its entries. A sitemap index is
// followed into its children; a child that fails to download or parse is
// logged and skipped so one broken shard does not lose the rest.
func (f *Fetcher) Fetch(ctx context.Context, sitemapURL string) ([]Entry, error) {
	if !strings.HasPrefix(sitemapURL, "http://") && !strings.HasPrefix(sitemapURL, "https://") {
		return nil, periods.NewInvalidArgumentError(fmt.Sprintf("sitemap url must be absolute http(s): %s", sitemapURL))
	}

	entries, err := f.fetch(ctx, sitemapURL, 1)
	if err != nil {
		return nil, &FetchError{URL: sitemapURL, Err: err}
	}
	return entries, nil
}

func (f *Fetcher) fetch(ctx context.Context, sitemapURL string, depth int) ([]Entry, error) {
	body, err := f.download(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err == nil {
		return set.URLs, nil
	}

	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("error parsing sitemap %s: %w", sitemapURL, err)
	}

	if depth >= maxIndexDepth {
		return nil, fmt.Errorf("sitemap index %s nested deeper than %d levels", sitemapURL, maxIndexDepth)
	}

	var entries []Entry
	for _, child := range index.Sitemaps {
		loc := strings.TrimSpace(child.Loc)
		if loc == "" {
			continue
		}
		childEntries, err := f.fetch(ctx, loc, depth+1)
		if err != nil {
			f.logger.Warn("Skipping unreadable child sitemap",
				slog.String("sitemap", loc),
				slog.Any("error", err))
			continue
		}
		entries = append(entries, childEntries...)
	}
	return entries, nil
}

func (f *Fetcher) download(ctx context.Context, sitemapURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error building sitemap request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching sitemap %s: %w", sitemapURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching sitemap %s", resp.StatusCode, sitemapURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading sitemap %s: %w", sitemapURL, err)
	}
	return body, nil
}
