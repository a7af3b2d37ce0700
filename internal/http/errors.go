package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"searchlens/internal/analytics"
	"searchlens/internal/gsc"
	"searchlens/internal/periods"
	"searchlens/internal/session"
	"searchlens/internal/sitemap"
	"searchlens/internal/urlists"
)

// Error codes carried in the API error body next to the message.
const (
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeNoData          = "NO_DATA_FOUND"
	codeNotFound        = "NOT_FOUND"
	codeUpstreamError   = "UPSTREAM_ERROR"
	codeInternalError   = "INTERNAL_ERROR"
)

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

func invalidArgument(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusBadRequest, codeInvalidArgument, message)
}

// serviceError maps engine errors onto API responses. Validation failures are
// the caller's fault, missing data and unknown names are 404s, and anything
// the upstream API broke on surfaces as a bad gateway.
func serviceError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	var invalidErr *periods.InvalidArgumentError
	if errors.As(err, &invalidErr) {
		return errorJSON(c, fiber.StatusBadRequest, codeInvalidArgument, invalidErr.Error())
	}

	if errors.Is(err, analytics.ErrNoData) {
		return errorJSON(c, fiber.StatusNotFound, codeNoData, err.Error())
	}

	var listNotFoundErr *urlists.URLListNotFoundError
	if errors.As(err, &listNotFoundErr) {
		return errorJSON(c, fiber.StatusNotFound, codeNotFound, listNotFoundErr.Error())
	}

	var sessionNotFoundErr *session.SessionNotFoundError
	if errors.As(err, &sessionNotFoundErr) {
		return errorJSON(c, fiber.StatusNotFound, codeNotFound, sessionNotFoundErr.Error())
	}

	var transportErr *gsc.TransportError
	if errors.As(err, &transportErr) {
		logger.Error("Upstream call failed", slog.Any("error", err))
		return errorJSON(c, fiber.StatusBadGateway, codeUpstreamError, transportErr.Error())
	}

	var fetchErr *sitemap.FetchError
	if errors.As(err, &fetchErr) {
		logger.Error("Sitemap fetch failed", slog.Any("error", err))
		return errorJSON(c, fiber.StatusBadGateway, codeUpstreamError, fetchErr.Error())
	}

	logger.Error("Unhandled error in API handler", slog.Any("error", err))
	return errorJSON(c, fiber.StatusInternalServerError, codeInternalError, "internal error")
}

// ErrorHandler converts errors that escape the handlers, router errors such
// as unknown paths included, into the same JSON error shape the handlers use.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			code := codeInvalidArgument
			if fiberErr.Code == fiber.StatusNotFound {
				code = codeNotFound
			}
			return errorJSON(c, fiberErr.Code, code, fiberErr.Message)
		}

		logger.Error("Unhandled server error", slog.Any("error", err))
		return errorJSON(c, fiber.StatusInternalServerError, codeInternalError, "internal error")
	}
}
