package http

import (
	"github.com/gofiber/fiber/v2"

	"searchlens/internal/periods"
	"searchlens/internal/session"
)

// SessionPatchRequest carries a partial session update. Pointer fields
// distinguish "leave as is" from "set to zero value".
type SessionPatchRequest struct {
	Property *string   `json:"property"`
	URLs     *[]string `json:"urls"`
	Period   *string   `json:"period"`
	Periods  *int      `json:"periods"`
}

// SessionCreateAction starts a new empty session.
func SessionCreateAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).JSON(deps.Sessions.Create())
	}
}

// SessionShowAction returns a session by id, refreshing its idle timer.
func SessionShowAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}
		return c.JSON(sess)
	}
}

// SessionUpdateAction applies a partial update to a session. Only fields
// present in the body change; the period selector is validated before it is
// stored so later reports never trip over a stale bad value.
func SessionUpdateAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req SessionPatchRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidArgument(c, "malformed request body")
		}

		if req.Period != nil {
			if _, err := periods.ParseSelector(*req.Period); err != nil {
				return serviceError(c, deps.Logger, err)
			}
		}
		if req.Periods != nil && *req.Periods < 1 {
			return invalidArgument(c, "periods must be at least 1")
		}

		sess, err := deps.Sessions.Update(c.Params("id"), func(s *session.Session) {
			if req.Property != nil {
				s.Property = *req.Property
			}
			if req.URLs != nil {
				s.URLs = append([]string(nil), (*req.URLs)...)
			}
			if req.Period != nil {
				s.Selector = *req.Period
			}
			if req.Periods != nil {
				count := *req.Periods
				if count > deps.Config.MaxPeriods {
					count = deps.Config.MaxPeriods
				}
				s.PeriodCount = count
			}
		})
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}
		return c.JSON(sess)
	}
}
