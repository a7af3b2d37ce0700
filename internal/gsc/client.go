// Package gsc wraps the Google Search Console APIs behind the small surface
// the reporting engine consumes: search analytics queries, URL inspection,
// and property/sitemap listings.
package gsc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/searchconsole/v1"

	"searchlens/internal/config"
	"searchlens/internal/monitoring"
)

// dataStateAll asks the API to include fresh (not yet finalized) data, the
// same freshness the Search Console UI shows.
const dataStateAll = "all"

// Query describes one search analytics request. A zero RowLimit falls back to
// the client's configured default. PageFilter, when set, restricts rows to
// one exact page URL.
type Query struct {
	SiteURL    string
	StartDate  string
	EndDate    string
	Dimensions []string
	RowLimit   int64
	PageFilter string
	SearchType string
}

// Row is one search analytics result row. CTR is a fraction in [0,1] and
// Position is 1-based, exactly as the API reports them.
type Row struct {
	Keys        []string
	Clicks      float64
	Impressions float64
	CTR         float64
	Position    float64
}

// Property is one verified Search Console property.
type Property struct {
	SiteURL         string `json:"site_url"`
	PermissionLevel string `json:"permission_level"`
}

// Sitemap is one sitemap registered for a property.
type Sitemap struct {
	Path           string           `json:"path"`
	LastSubmitted  string           `json:"last_submitted"`
	LastDownloaded string           `json:"last_downloaded"`
	IsPending      bool             `json:"is_pending"`
	IsIndex        bool             `json:"is_index"`
	Errors         int64            `json:"errors"`
	Warnings       int64            `json:"warnings"`
	Contents       []SitemapContent `json:"contents"`
}

// SitemapContent is the per-type submitted/indexed breakdown of a sitemap.
type SitemapContent struct {
	Type      string `json:"type"`
	Submitted int64  `json:"submitted"`
	Indexed   int64  `json:"indexed"`
}

// Client talks to the Search Console APIs for one configured credential.
type Client struct {
	svc      *searchconsole.Service
	logger   *slog.Logger
	metrics  *monitoring.Metrics
	rowLimit int64
}

// NewClient builds a client using the configured credential source: a
// credentials file when set, otherwise a saved OAuth token plus client pair,
// otherwise application default credentials.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := searchconsole.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating search console service: %w", err)
	}

	return NewClientWithService(svc, logger, int64(cfg.RowLimit)), nil
}

// NewClientWithService wraps an already constructed service. Used by tests
// that point the service at a local HTTP server.
func NewClientWithService(svc *searchconsole.Service, logger *slog.Logger, rowLimit int64) *Client {
	if rowLimit <= 0 {
		rowLimit = 25000
	}
	return &Client{
		svc:      svc,
		logger:   logger,
		metrics:  monitoring.GetMetrics(),
		rowLimit: rowLimit,
	}
}

func clientOptions(ctx context.Context, cfg *config.Config) ([]option.ClientOption, error) {
	if cfg.GoogleCredentialsFile != "" {
		return []option.ClientOption{
			option.WithCredentialsFile(cfg.GoogleCredentialsFile),
			option.WithScopes(searchconsole.WebmastersReadonlyScope),
		}, nil
	}

	if cfg.GoogleTokenFile != "" {
		ts, err := tokenSourceFromFile(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return []option.ClientOption{option.WithTokenSource(ts)}, nil
	}

	return []option.ClientOption{
		option.WithScopes(searchconsole.WebmastersReadonlyScope),
	}, nil
}

// tokenSourceFromFile loads a previously saved OAuth token and pairs it with
// the configured client so expired access tokens refresh transparently.
func tokenSourceFromFile(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	raw, err := os.ReadFile(cfg.GoogleTokenFile)
	if err != nil {
		return nil, fmt.Errorf("error reading google token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("error parsing google token file: %w", err)
	}

	conf := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{searchconsole.WebmastersReadonlyScope},
	}
	return conf.TokenSource(ctx, &tok), nil
}

// Query runs one search analytics query and returns its rows. An empty
// result is an empty slice, not an error.
func (c *Client) Query(ctx context.Context, q Query) ([]Row, error) {
	req := buildQueryRequest(q, c.rowLimit)

	c.logger.Debug("Querying search analytics",
		slog.String("site", q.SiteURL),
		slog.String("start", q.StartDate),
		slog.String("end", q.EndDate),
		slog.Any("dimensions", q.Dimensions),
		slog.String("pageFilter", q.PageFilter))

	resp, err := c.svc.Searchanalytics.Query(q.SiteURL, req).Context(ctx).Do()
	if err != nil {
		c.metrics.IncAnalyticsFetches(monitoring.StatusError)
		return nil, NewTransportError(q.SiteURL, "query", err)
	}

	rows := convertRows(resp.Rows)
	if len(rows) == 0 {
		c.metrics.IncAnalyticsFetches(monitoring.StatusEmpty)
	} else {
		c.metrics.IncAnalyticsFetches(monitoring.StatusOK)
	}
	return rows, nil
}

// Inspect fetches the index inspection payload for one URL. Sections the API
// did not evaluate come back nil inside the result; callers must tolerate
// them.
func (c *Client) Inspect(ctx context.Context, siteURL, pageURL string) (*searchconsole.UrlInspectionResult, error) {
	req := &searchconsole.InspectUrlIndexRequest{
		InspectionUrl: pageURL,
		SiteUrl:       siteURL,
	}

	resp, err := c.svc.UrlInspection.Index.Inspect(req).Context(ctx).Do()
	if err != nil {
		c.metrics.IncInspections(monitoring.StatusError)
		return nil, NewTransportError(siteURL, "inspect", err)
	}

	c.metrics.IncInspections(monitoring.StatusOK)
	if resp.InspectionResult == nil {
		return &searchconsole.UrlInspectionResult{}, nil
	}
	return resp.InspectionResult, nil
}

// ListProperties returns the verified properties the credential can read,
// sorted by site URL for stable selector output.
func (c *Client) ListProperties(ctx context.Context) ([]Property, error) {
	resp, err := c.svc.Sites.List().Context(ctx).Do()
	if err != nil {
		return nil, NewTransportError("", "list properties", err)
	}

	properties := make([]Property, 0, len(resp.SiteEntry))
	for _, entry := range resp.SiteEntry {
		if entry == nil {
			continue
		}
		properties = append(properties, Property{
			SiteURL:         entry.SiteUrl,
			PermissionLevel: entry.PermissionLevel,
		})
	}

	sort.Slice(properties, func(i, j int) bool {
		return properties[i].SiteURL < properties[j].SiteURL
	})
	return properties, nil
}

// ListSitemaps returns the sitemaps registered for a property.
func (c *Client) ListSitemaps(ctx context.Context, siteURL string) ([]Sitemap, error) {
	resp, err := c.svc.Sitemaps.List(siteURL).Context(ctx).Do()
	if err != nil {
		return nil, NewTransportError(siteURL, "list sitemaps", err)
	}

	sitemaps := make([]Sitemap, 0, len(resp.Sitemap))
	for _, entry := range resp.Sitemap {
		if entry == nil {
			continue
		}
		sm := Sitemap{
			Path:           entry.Path,
			LastSubmitted:  entry.LastSubmitted,
			LastDownloaded: entry.LastDownloaded,
			IsPending:      entry.IsPending,
			IsIndex:        entry.IsSitemapsIndex,
			Errors:         entry.Errors,
			Warnings:       entry.Warnings,
		}
		for _, content := range entry.Contents {
			if content == nil {
				continue
			}
			sm.Contents = append(sm.Contents, SitemapContent{
				Type:      content.Type,
				Submitted: content.Submitted,
				Indexed:   content.Indexed,
			})
		}
		sitemaps = append(sitemaps, sm)
	}
	return sitemaps, nil
}

func buildQueryRequest(q Query, defaultRowLimit int64) *searchconsole.SearchAnalyticsQueryRequest {
	rowLimit := q.RowLimit
	if rowLimit <= 0 {
		rowLimit = defaultRowLimit
	}

	req := &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
		Dimensions: q.Dimensions,
		RowLimit:   rowLimit,
		DataState:  dataStateAll,
	}

	if q.SearchType != "" {
		req.Type = q.SearchType
	}

	if q.PageFilter != "" {
		req.DimensionFilterGroups = []*searchconsole.ApiDimensionFilterGroup{{
			Filters: []*searchconsole.ApiDimensionFilter{{
				Dimension:  "page",
				Operator:   "equals",
				Expression: q.PageFilter,
			}},
		}}
	}

	return req
}

func convertRows(apiRows []*searchconsole.ApiDataRow) []Row {
	rows := make([]Row, 0, len(apiRows))
	for _, r := range apiRows {
		if r == nil {
			continue
		}
		rows = append(rows, Row{
			Keys:        r.Keys,
			Clicks:      r.Clicks,
			Impressions: r.Impressions,
			CTR:         r.Ctr,
			Position:    r.Position,
		})
	}
	return rows
}
