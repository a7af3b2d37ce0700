package http

import (
	"github.com/gofiber/fiber/v2"
)

// PropertyIndexAction lists the Search Console properties the configured
// credentials can read.
func PropertyIndexAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		properties, err := deps.Search.ListProperties(c.UserContext())
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}
		return c.JSON(fiber.Map{"properties": properties})
	}
}
