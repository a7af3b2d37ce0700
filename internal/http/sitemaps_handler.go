package http

import (
	"github.com/gofiber/fiber/v2"

	"searchlens/internal/periods"
	"searchlens/internal/sitemap"
)

// SitemapInsightsRequest names the sitemap to fetch and analyze.
type SitemapInsightsRequest struct {
	URL string `json:"url"`
}

// SitemapIndexAction lists the sitemaps registered for a property in Search
// Console.
func SitemapIndexAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		site := c.Query("site")
		if site == "" {
			return invalidArgument(c, "site is required")
		}

		sitemaps, err := deps.Search.ListSitemaps(c.UserContext(), site)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		return c.JSON(fiber.Map{
			"site":     site,
			"sitemaps": sitemaps,
		})
	}
}

// SitemapInsightsAction fetches a sitemap by URL and returns its structural
// insights.
func SitemapInsightsAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, insightsURL, err := fetchSitemapEntries(deps, c)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		return c.JSON(fiber.Map{
			"url":      insightsURL,
			"insights": sitemap.Analyze(entries),
		})
	}
}

// SitemapExportAction fetches a sitemap and streams its raw entries as CSV.
func SitemapExportAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, _, err := fetchSitemapEntries(deps, c)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		return sendCSV(c, deps.Logger, "sitemap_data.csv", sitemap.BuildExportTable(entries))
	}
}

func fetchSitemapEntries(deps Deps, c *fiber.Ctx) ([]sitemap.Entry, string, error) {
	var req SitemapInsightsRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, "", periods.NewInvalidArgumentError("malformed request body")
	}
	if req.URL == "" {
		return nil, "", periods.NewInvalidArgumentError("url is required")
	}

	entries, err := deps.Sitemaps.Fetch(c.UserContext(), req.URL)
	if err != nil {
		return nil, "", err
	}
	return entries, req.URL, nil
}
