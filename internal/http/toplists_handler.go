package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"searchlens/internal/analytics"
	"searchlens/internal/periods"
)

const defaultTopDays = 30

// ReportTopAction serves the top pages/queries/countries breakdown for one
// site over a single trailing window.
func ReportTopAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		site := c.Query("site")
		if site == "" {
			return invalidArgument(c, "site is required")
		}

		days := c.QueryInt("days", defaultTopDays)
		if days < 1 {
			return invalidArgument(c, fmt.Sprintf("days must be positive, got %d", days))
		}
		limit := int64(c.QueryInt("limit", 0))

		dimensions := analytics.DefaultTopDimensions()
		if raw := c.Query("dimensions"); raw != "" {
			dimensions = splitCommaList(raw)
			for _, dimension := range dimensions {
				if !analytics.IsSupportedDimension(dimension) {
					return invalidArgument(c, fmt.Sprintf("unsupported dimension: %s", dimension))
				}
			}
		}

		windows, err := periods.NewPlanner().Plan(periods.Selector{Days: days}, 1)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}
		window := windows[0]

		report := analytics.TopReport(c.UserContext(), deps.Search, deps.Logger, site, window, dimensions, limit)

		return c.JSON(fiber.Map{
			"window": WindowView{
				Label:     periods.PeriodLabel(0),
				StartDate: window.StartDate(),
				EndDate:   window.EndDate(),
			},
			"dimensions": report,
		})
	}
}

func splitCommaList(raw string) []string {
	var parts []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
