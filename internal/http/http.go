// Package http contains the JSON API handlers. Every handler is a factory
// taking its dependencies and returning a fiber handler, so routes can be
// mounted against real services or test fakes alike.
package http

import (
	"context"
	"log/slog"

	"google.golang.org/api/searchconsole/v1"
	"gorm.io/gorm"

	"searchlens/internal/config"
	"searchlens/internal/gsc"
	"searchlens/internal/monitoring"
	"searchlens/internal/session"
	"searchlens/internal/sitemap"
)

// SearchService is the slice of the Search Console client the handlers
// consume. *gsc.Client satisfies it.
type SearchService interface {
	Query(ctx context.Context, q gsc.Query) ([]gsc.Row, error)
	Inspect(ctx context.Context, siteURL, pageURL string) (*searchconsole.UrlInspectionResult, error)
	ListProperties(ctx context.Context) ([]gsc.Property, error)
	ListSitemaps(ctx context.Context, siteURL string) ([]gsc.Sitemap, error)
}

// Deps bundles the dependencies the API handlers close over.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	Search   SearchService
	Sessions *session.Registry
	Sitemaps *sitemap.Fetcher
	Metrics  *monitoring.Metrics
}
