package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"searchlens/internal/inspection"
	"searchlens/internal/periods"
	"searchlens/internal/urlists"
)

// InspectionRequest is the body of an inspection batch request. Like report
// requests, empty fields are filled from the named session.
type InspectionRequest struct {
	Site string   `json:"site"`
	URLs []string `json:"urls"`
	List string   `json:"list"`
}

func resolveInspectionParams(deps Deps, c *fiber.Ctx) (site string, urls []string, err error) {
	var req InspectionRequest
	if err := c.BodyParser(&req); err != nil {
		return "", nil, periods.NewInvalidArgumentError("malformed request body")
	}

	if sid := c.Get(HeaderSessionID); sid != "" {
		sess, err := deps.Sessions.Get(sid)
		if err != nil {
			return "", nil, err
		}
		if req.Site == "" {
			req.Site = sess.Property
		}
		if len(req.URLs) == 0 && req.List == "" {
			req.URLs = sess.URLs
		}
	}

	if req.Site == "" {
		return "", nil, periods.NewInvalidArgumentError("site is required")
	}

	urls = req.URLs
	if len(urls) == 0 && req.List != "" {
		list, err := urlists.GetListByName(deps.DB, req.List)
		if err != nil {
			return "", nil, err
		}
		urls = list.Entries()
	}
	if len(urls) == 0 {
		return "", nil, periods.NewInvalidArgumentError("urls or list is required")
	}

	return req.Site, urls, nil
}

// InspectionRunAction inspects a batch of URLs through the bounded fan-out.
// Individual failures come back as per-URL error markers, not a failed call.
func InspectionRunAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		site, urls, err := resolveInspectionParams(deps, c)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), deps.Config.InspectionTimeout())
		defer cancel()

		results, err := inspection.InspectAll(ctx, deps.Search, deps.Logger, site, urls, deps.Config.InspectionConcurrency)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		return c.JSON(fiber.Map{
			"site":    site,
			"results": results,
		})
	}
}

// InspectionExportAction runs the same batch and streams the results as CSV.
func InspectionExportAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		site, urls, err := resolveInspectionParams(deps, c)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), deps.Config.InspectionTimeout())
		defer cancel()

		results, err := inspection.InspectAll(ctx, deps.Search, deps.Logger, site, urls, deps.Config.InspectionConcurrency)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		return sendCSV(c, deps.Logger, "inspection_results.csv", inspection.BuildExportTable(results))
	}
}
